package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/cookieauth/internal/models"
	"github.com/atinyakov/cookieauth/internal/repository"
)

// UserService answers queries about stored users.
type UserService struct {
	// repo is the underlying credential store.
	repo UserRepository
}

// NewUserService constructs a UserService using the provided repository.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Me returns the record of the token subject as a one-element collection.
// The lookup uses the subject id, not the email, so an email shared across
// records cannot resolve to another user.
func (s *UserService) Me(ctx context.Context, userID string) ([]models.User, error) {
	u, err := s.repo.FindUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return []models.User{u}, nil
}

// All returns every stored user.
func (s *UserService) All(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return users, nil
}
