package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/application/validation"
	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"

	"go.uber.org/zap"
)

type RegisterUserUseCase struct {
	users     repository.UserRepository
	hasher    repository.PasswordHasher
	validator *validation.Validator
	logger    *zap.Logger
}

func NewRegisterUserUseCase(users repository.UserRepository, hasher repository.PasswordHasher, validator *validation.Validator, logger *zap.Logger) *RegisterUserUseCase {
	return &RegisterUserUseCase{users: users, hasher: hasher, validator: validator, logger: logger}
}

func (uc *RegisterUserUseCase) Execute(ctx context.Context, email, password string, isSuperuser bool) (*model.User, error) {
	creds := model.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := uc.validator.ValidateCredentials(creds); err != nil {
		uc.logger.Warn("Registration validation failed", zap.String("email", creds.Email), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}

	hashed, err := uc.hasher.Hash(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:          creds.Email,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    isSuperuser,
		CreatedAt:      time.Now().UTC(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			uc.logger.Info("Registration failed: email already registered", zap.String("email", user.Email))
			return nil, model.ErrEmailTaken
		}
		uc.logger.Error("Failed to save user", zap.String("email", user.Email), zap.Error(err))
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	uc.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.Bool("superuser", user.IsSuperuser))
	return user, nil
}
