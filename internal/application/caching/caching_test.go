package caching

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain/repository"
	"storefront/internal/domain/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type listing struct {
	Names []string `json:"names"`
	Total int      `json:"total"`
}

func TestKey_Deterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Key("get_products", 10, 0), Key("get_products", 10, 0))
	assert.NotEqual(t, Key("get_products", 10, 0), Key("get_products", 10, 10))
	assert.Equal(t, `get_products:[10,0]`, Key(ProductsNamespace, 10, 0))
	assert.Equal(t, "get_products:[]", Key(ProductsNamespace))

	type args struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
	assert.Equal(t, Key("op", args{1, 2}), Key("op", args{Limit: 1, Offset: 2}))
}

func TestGetOrCompute(t *testing.T) {
	t.Parallel()

	cached, err := json.Marshal(listing{Names: []string{"cached"}, Total: 1})
	require.NoError(t, err)
	fresh := listing{Names: []string{"a", "b"}, Total: 2}
	freshPayload, err := json.Marshal(fresh)
	require.NoError(t, err)

	tests := []struct {
		name         string
		setupMocks   func(*mocks.MockCache)
		computeErr   error
		wantComputed bool
		want         listing
		wantErr      bool
	}{
		{
			name: "hit_skips_compute",
			setupMocks: func(c *mocks.MockCache) {
				c.EXPECT().Get(gomock.Any(), "k").Return(cached, nil)
				c.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			want: listing{Names: []string{"cached"}, Total: 1},
		},
		{
			name: "miss_computes_and_stores",
			setupMocks: func(c *mocks.MockCache) {
				c.EXPECT().Get(gomock.Any(), "k").Return(nil, repository.ErrCacheMiss)
				c.EXPECT().Set(gomock.Any(), "k", freshPayload, time.Minute).Return(nil)
			},
			wantComputed: true,
			want:         fresh,
		},
		{
			name: "unreachable_cache_fails_open",
			setupMocks: func(c *mocks.MockCache) {
				c.EXPECT().Get(gomock.Any(), "k").Return(nil, errors.New("dial tcp: connection refused"))
				c.EXPECT().Set(gomock.Any(), "k", freshPayload, time.Minute).Return(errors.New("dial tcp: connection refused"))
			},
			wantComputed: true,
			want:         fresh,
		},
		{
			name: "corrupted_entry_recomputed",
			setupMocks: func(c *mocks.MockCache) {
				c.EXPECT().Get(gomock.Any(), "k").Return([]byte("{ not json"), nil)
				c.EXPECT().Set(gomock.Any(), "k", freshPayload, time.Minute).Return(nil)
			},
			wantComputed: true,
			want:         fresh,
		},
		{
			name: "compute_error_not_cached",
			setupMocks: func(c *mocks.MockCache) {
				c.EXPECT().Get(gomock.Any(), "k").Return(nil, repository.ErrCacheMiss)
				c.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			computeErr:   errors.New("db down"),
			wantComputed: true,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockCache := mocks.NewMockCache(ctrl)
			tt.setupMocks(mockCache)

			computed := false
			got, err := GetOrCompute(context.Background(), mockCache, zap.NewNop(), "k", time.Minute,
				func(context.Context) (listing, error) {
					computed = true
					if tt.computeErr != nil {
						return listing{}, tt.computeErr
					}
					return fresh, nil
				})

			assert.Equal(t, tt.wantComputed, computed)
			if tt.wantErr {
				require.ErrorIs(t, err, tt.computeErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvalidate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := mocks.NewMockCache(ctrl)
	ctx := context.Background()

	mockCache.EXPECT().Invalidate(ctx, ProductsPattern).Return(3, nil)
	require.NoError(t, Invalidate(ctx, mockCache, zap.NewNop(), ProductsPattern))

	failure := errors.New("connection reset")
	mockCache.EXPECT().Invalidate(ctx, ProductsPattern).Return(1, failure)
	assert.ErrorIs(t, Invalidate(ctx, mockCache, zap.NewNop(), ProductsPattern), failure)
}
