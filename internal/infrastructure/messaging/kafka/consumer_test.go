package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/domain/repository/mocks"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

// fakeReader serves queued messages, then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range msgs {
		r.committed = append(r.committed, msg.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func orderMessage(t *testing.T, offset int64, req model.OrderRequest) kafka.Message {
	t.Helper()

	payload, err := json.Marshal(req)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: payload}
}

func newTestConsumer(reader messageReader, placer *mocks.MockOrderPlacer) *OrderConsumer {
	c := newOrderConsumer(reader, placer, zap.NewNop())
	c.backoff = func() retry.Backoff {
		return retry.NewConstant(time.Millisecond)
	}
	return c
}

func TestOrderConsumer_Handle(t *testing.T) {
	valid := model.OrderRequest{RequestID: "r1", UserID: 3, ProductIDs: []int64{1}, Quantities: []int{2}}

	tests := []struct {
		name    string
		value   []byte
		setup   func(placer *mocks.MockOrderPlacer)
		wantErr bool
	}{
		{
			name: "placed",
			setup: func(placer *mocks.MockOrderPlacer) {
				placer.EXPECT().Execute(gomock.Any(), valid).Return(&model.OrderResult{Total: decimal.NewFromInt(4)}, nil)
			},
		},
		{
			name:  "garbage is dropped",
			value: []byte(`{"request_id": "x", "broken": `),
			setup: func(*mocks.MockOrderPlacer) {},
		},
		{
			name:  "missing user is dropped",
			value: []byte(`{"product_ids":[1],"quantities":[1]}`),
			setup: func(*mocks.MockOrderPlacer) {},
		},
		{
			name: "insufficient stock is dropped",
			setup: func(placer *mocks.MockOrderPlacer) {
				placer.EXPECT().Execute(gomock.Any(), valid).
					Return(nil, model.NewProductError(1, "Lamp", model.ErrInsufficientStock))
			},
		},
		{
			name: "unexpected failure is dropped",
			setup: func(placer *mocks.MockOrderPlacer) {
				placer.EXPECT().Execute(gomock.Any(), valid).
					Return(nil, model.NewProductError(1, "Lamp", errors.New("failed to encode argument")))
			},
		},
		{
			name: "exhausted transaction retries are retried",
			setup: func(placer *mocks.MockOrderPlacer) {
				placer.EXPECT().Execute(gomock.Any(), valid).
					Return(nil, fmt.Errorf("transaction kept aborting: %w", model.ErrStoreUnavailable))
			},
			wantErr: true,
		},
		{
			name: "store outage is retried",
			setup: func(placer *mocks.MockOrderPlacer) {
				placer.EXPECT().Execute(gomock.Any(), valid).Return(nil, model.ErrStoreUnavailable)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			placer := mocks.NewMockOrderPlacer(gomock.NewController(t))
			tt.setup(placer)
			c := newTestConsumer(&fakeReader{}, placer)

			msg := orderMessage(t, 0, valid)
			if tt.value != nil {
				msg.Value = tt.value
			}

			err := c.handle(context.Background(), msg)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestOrderConsumer_RunCommitsAfterRetry(t *testing.T) {
	placer := mocks.NewMockOrderPlacer(gomock.NewController(t))
	req := model.OrderRequest{RequestID: "r1", UserID: 3, ProductIDs: []int64{1}, Quantities: []int{1}}
	reader := &fakeReader{messages: []kafka.Message{
		orderMessage(t, 10, req),
		{Offset: 11, Value: []byte("not json")},
	}}

	gomock.InOrder(
		placer.EXPECT().Execute(gomock.Any(), req).Return(nil, model.ErrStoreUnavailable).Times(2),
		placer.EXPECT().Execute(gomock.Any(), req).Return(&model.OrderResult{Total: decimal.NewFromInt(1)}, nil),
	)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go newTestConsumer(reader, placer).Run(ctx, &wg)

	assert.Eventually(t, func() bool {
		return len(reader.committedOffsets()) == 2
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	wg.Wait()

	assert.Equal(t, []int64{10, 11}, reader.committedOffsets())
	assert.True(t, reader.closed)
}

func TestOrderConsumer_RunStopsWithoutCommittingOnCancel(t *testing.T) {
	placer := mocks.NewMockOrderPlacer(gomock.NewController(t))
	req := model.OrderRequest{UserID: 3, ProductIDs: []int64{1}, Quantities: []int{1}}
	reader := &fakeReader{messages: []kafka.Message{orderMessage(t, 5, req)}}

	ctx, cancel := context.WithCancel(context.Background())
	placer.EXPECT().Execute(gomock.Any(), req).DoAndReturn(
		func(context.Context, model.OrderRequest) (*model.OrderResult, error) {
			cancel()
			return nil, errors.Join(model.ErrStoreUnavailable, errors.New("connection refused"))
		}).MinTimes(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go newTestConsumer(reader, placer).Run(ctx, &wg)
	wg.Wait()

	assert.Empty(t, reader.committedOffsets())
}

func TestOrderConsumer_RunMovesPastFailingMessage(t *testing.T) {
	placer := mocks.NewMockOrderPlacer(gomock.NewController(t))
	failing := model.OrderRequest{RequestID: "bad", UserID: 3, ProductIDs: []int64{1}, Quantities: []int{1}}
	next := model.OrderRequest{RequestID: "next", UserID: 3, ProductIDs: []int64{2}, Quantities: []int{1}}
	reader := &fakeReader{messages: []kafka.Message{
		orderMessage(t, 1, failing),
		orderMessage(t, 2, next),
	}}

	gomock.InOrder(
		placer.EXPECT().Execute(gomock.Any(), failing).Return(nil, errors.New("unexpected")).Times(1),
		placer.EXPECT().Execute(gomock.Any(), next).Return(&model.OrderResult{Total: decimal.NewFromInt(2)}, nil),
	)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go newTestConsumer(reader, placer).Run(ctx, &wg)

	assert.Eventually(t, func() bool {
		return len(reader.committedOffsets()) == 2
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	wg.Wait()

	assert.Equal(t, []int64{1, 2}, reader.committedOffsets())
}
