package usecases

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/application/caching"
	"storefront/internal/application/validation"
	"storefront/internal/domain/model"
	"storefront/internal/domain/repository/mocks"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestRegisterUserUseCase_Success(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	hasher := mocks.NewMockPasswordHasher(ctrl)
	uc := NewRegisterUserUseCase(users, hasher, validation.NewValidator(), zap.NewNop())

	email := gofakeit.Email()
	hasher.EXPECT().Hash("correct-horse").Return("hashed", nil)
	users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *model.User) error {
			u.ID = 42
			return nil
		})

	user, err := uc.Execute(context.Background(), " "+email+" ", "correct-horse", false)

	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, "hashed", user.HashedPassword)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
}

func TestRegisterUserUseCase_EmailTaken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	hasher := mocks.NewMockPasswordHasher(ctrl)
	uc := NewRegisterUserUseCase(users, hasher, validation.NewValidator(), zap.NewNop())

	hasher.EXPECT().Hash(gomock.Any()).Return("hashed", nil)
	users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(model.ErrEmailTaken)

	user, err := uc.Execute(context.Background(), gofakeit.Email(), "correct-horse", false)

	require.ErrorIs(t, err, model.ErrEmailTaken)
	assert.Nil(t, user)
}

func TestRegisterUserUseCase_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "bad email", email: "not-an-email", password: "correct-horse"},
		{name: "short password", email: gofakeit.Email(), password: "short"},
		{name: "empty", email: "", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			uc := NewRegisterUserUseCase(mocks.NewMockUserRepository(ctrl), mocks.NewMockPasswordHasher(ctrl),
				validation.NewValidator(), zap.NewNop())

			user, err := uc.Execute(context.Background(), tt.email, tt.password, false)

			require.ErrorIs(t, err, model.ErrValidation)
			assert.Nil(t, user)
		})
	}
}

func newAuthenticateUseCase(t *testing.T) (*AuthenticateUseCase, *mocks.MockUserRepository, *mocks.MockPasswordHasher, *mocks.MockTokenIssuer) {
	t.Helper()

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	hasher := mocks.NewMockPasswordHasher(ctrl)
	tokens := mocks.NewMockTokenIssuer(ctrl)
	return NewAuthenticateUseCase(users, hasher, tokens, zap.NewNop()), users, hasher, tokens
}

func TestAuthenticateUseCase_Login(t *testing.T) {
	t.Parallel()

	active := &model.User{ID: 1, Email: "a@example.com", HashedPassword: "h", IsActive: true}
	inactive := &model.User{ID: 2, Email: "b@example.com", HashedPassword: "h"}

	tests := []struct {
		name      string
		email     string
		setup     func(users *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenIssuer)
		wantToken string
		wantErr   error
	}{
		{
			name:  "success",
			email: active.Email,
			setup: func(users *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenIssuer) {
				users.EXPECT().GetByEmail(gomock.Any(), active.Email).Return(active, nil)
				hasher.EXPECT().Compare("h", "secret-pass").Return(nil)
				tokens.EXPECT().Issue(active.Email).Return("jwt", nil)
			},
			wantToken: "jwt",
		},
		{
			name:  "unknown email",
			email: "nobody@example.com",
			setup: func(users *mocks.MockUserRepository, _ *mocks.MockPasswordHasher, _ *mocks.MockTokenIssuer) {
				users.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, model.ErrUserNotFound)
			},
			wantErr: model.ErrInvalidCredentials,
		},
		{
			name:  "wrong password",
			email: active.Email,
			setup: func(users *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, _ *mocks.MockTokenIssuer) {
				users.EXPECT().GetByEmail(gomock.Any(), active.Email).Return(active, nil)
				hasher.EXPECT().Compare("h", "secret-pass").Return(errors.New("mismatch"))
			},
			wantErr: model.ErrInvalidCredentials,
		},
		{
			name:  "inactive user",
			email: inactive.Email,
			setup: func(users *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, _ *mocks.MockTokenIssuer) {
				users.EXPECT().GetByEmail(gomock.Any(), inactive.Email).Return(inactive, nil)
				hasher.EXPECT().Compare("h", "secret-pass").Return(nil)
			},
			wantErr: model.ErrInactiveUser,
		},
		{
			name:  "store unavailable",
			email: active.Email,
			setup: func(users *mocks.MockUserRepository, _ *mocks.MockPasswordHasher, _ *mocks.MockTokenIssuer) {
				users.EXPECT().GetByEmail(gomock.Any(), active.Email).Return(nil, model.ErrStoreUnavailable)
			},
			wantErr: model.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc, users, hasher, tokens := newAuthenticateUseCase(t)
			tt.setup(users, hasher, tokens)

			token, err := uc.Execute(context.Background(), tt.email, "secret-pass")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestAuthenticateUseCase_Resolve(t *testing.T) {
	t.Parallel()

	uc, users, _, tokens := newAuthenticateUseCase(t)
	user := &model.User{ID: 9, Email: "root@example.com", IsActive: true, IsSuperuser: true}

	tokens.EXPECT().Parse("good").Return(user.Email, nil)
	users.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	tokens.EXPECT().Parse("expired").Return("", errors.New("token is expired"))
	tokens.EXPECT().Parse("orphan").Return("gone@example.com", nil)
	users.EXPECT().GetByEmail(gomock.Any(), "gone@example.com").Return(nil, model.ErrUserNotFound)

	principal, err := uc.Resolve(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, model.Principal{UserID: 9, Email: user.Email, IsSuperuser: true}, *principal)

	_, err = uc.Resolve(context.Background(), "expired")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = uc.Resolve(context.Background(), "orphan")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestDeleteUserUseCase_CascadesProducts(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	uow := mocks.NewMockUnitOfWork(ctrl)
	tx := mocks.NewMockTx(ctrl)
	products := mocks.NewMockProductRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	files := mocks.NewMockFileStorage(ctrl)
	cache := mocks.NewMockCache(ctrl)
	uc := NewDeleteUserUseCase(uow, files, cache, zap.NewNop())

	tx.EXPECT().Products().Return(products).AnyTimes()
	tx.EXPECT().Users().Return(users).AnyTimes()

	withImage := createProduct(t, 1, "1.00", 1)
	path := "uploads/1.png"
	withImage.ImageURL = &path
	withoutImage := createProduct(t, 2, "2.00", 2)

	gomock.InOrder(
		runInTx(uow, tx),
		files.EXPECT().Delete(gomock.Any(), path).Return(nil),
		cache.EXPECT().Invalidate(gomock.Any(), caching.ProductsPattern).Return(1, nil),
	)
	gomock.InOrder(
		products.EXPECT().DeleteByOwner(gomock.Any(), customer.UserID).Return([]*model.Product{withImage, withoutImage}, nil),
		users.EXPECT().Delete(gomock.Any(), customer.UserID).Return(nil),
	)

	require.NoError(t, uc.Execute(context.Background(), customer))
}

func TestDeleteUserUseCase_NoProducts(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	uow := mocks.NewMockUnitOfWork(ctrl)
	tx := mocks.NewMockTx(ctrl)
	products := mocks.NewMockProductRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	uc := NewDeleteUserUseCase(uow, mocks.NewMockFileStorage(ctrl), mocks.NewMockCache(ctrl), zap.NewNop())

	tx.EXPECT().Products().Return(products).AnyTimes()
	tx.EXPECT().Users().Return(users).AnyTimes()

	runInTx(uow, tx)
	products.EXPECT().DeleteByOwner(gomock.Any(), customer.UserID).Return(nil, nil)
	users.EXPECT().Delete(gomock.Any(), customer.UserID).Return(nil)

	require.NoError(t, uc.Execute(context.Background(), customer))
}

func TestDeleteUserUseCase_RollbackLeavesImages(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	uow := mocks.NewMockUnitOfWork(ctrl)
	tx := mocks.NewMockTx(ctrl)
	products := mocks.NewMockProductRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	uc := NewDeleteUserUseCase(uow, mocks.NewMockFileStorage(ctrl), mocks.NewMockCache(ctrl), zap.NewNop())

	tx.EXPECT().Products().Return(products).AnyTimes()
	tx.EXPECT().Users().Return(users).AnyTimes()

	withImage := createProduct(t, 1, "1.00", 1)
	path := "uploads/1.png"
	withImage.ImageURL = &path

	runInTx(uow, tx)
	products.EXPECT().DeleteByOwner(gomock.Any(), customer.UserID).Return([]*model.Product{withImage}, nil)
	users.EXPECT().Delete(gomock.Any(), customer.UserID).Return(model.ErrUserNotFound)

	err := uc.Execute(context.Background(), customer)

	require.ErrorIs(t, err, model.ErrUserNotFound)
}
