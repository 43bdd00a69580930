package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"

	"go.uber.org/zap"
)

// AuthenticateUseCase exchanges credentials for a bearer token and resolves
// tokens back to principals.
type AuthenticateUseCase struct {
	users  repository.UserRepository
	hasher repository.PasswordHasher
	tokens repository.TokenIssuer
	logger *zap.Logger
}

func NewAuthenticateUseCase(users repository.UserRepository, hasher repository.PasswordHasher, tokens repository.TokenIssuer, logger *zap.Logger) *AuthenticateUseCase {
	return &AuthenticateUseCase{users: users, hasher: hasher, tokens: tokens, logger: logger}
}

func (uc *AuthenticateUseCase) Execute(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			uc.logger.Info("Login failed: unknown email", zap.String("email", email))
			return "", model.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := uc.hasher.Compare(user.HashedPassword, password); err != nil {
		uc.logger.Info("Login failed: wrong password", zap.Int64("user_id", user.ID))
		return "", model.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", model.ErrInactiveUser
	}

	token, err := uc.tokens.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	uc.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return token, nil
}

func (uc *AuthenticateUseCase) Resolve(ctx context.Context, token string) (*model.Principal, error) {
	subject, err := uc.tokens.Parse(token)
	if err != nil {
		uc.logger.Debug("Rejected bearer token", zap.Error(err))
		return nil, model.ErrInvalidCredentials
	}

	user, err := uc.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return nil, model.ErrInactiveUser
	}

	return &model.Principal{UserID: user.ID, Email: user.Email, IsSuperuser: user.IsSuperuser}, nil
}
