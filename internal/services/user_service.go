package services

import (
	"context"
	"errors"

	"github.com/gotodo/gotodo/internal/metrics"
	"github.com/gotodo/gotodo/internal/models"
	"github.com/gotodo/gotodo/internal/repository"
	"github.com/gotodo/gotodo/internal/security"
)

// UserService defines the interface for account operations.
type UserService interface {
	Register(ctx context.Context, in models.UserCreate) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
}

// UserServiceImpl implements UserService.
type UserServiceImpl struct {
	repo   repository.UserRepository
	hasher *security.PasswordHasher
}

// NewUserService creates a new UserService instance.
func NewUserService(repo repository.UserRepository, hasher *security.PasswordHasher) *UserServiceImpl {
	return &UserServiceImpl{repo: repo, hasher: hasher}
}

// Register validates the input, hashes the password and stores the user.
func (s *UserServiceImpl) Register(ctx context.Context, in models.UserCreate) (*models.User, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return nil, &models.ValidationError{Fields: map[string]string{"password": "must be no more than 72 bytes"}}
		}
		return nil, err
	}

	user, err := s.repo.Create(ctx, in.Username, in.Email, hash)
	if err != nil {
		return nil, err
	}

	metrics.RecordUserRegistered()
	return user, nil
}

// Get returns a user by id.
func (s *UserServiceImpl) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
