// Package service provides the session authentication logic: issuing tokens
// at signup and login, verifying them on later requests and revoking them on
// logout. Persistence is delegated to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/cookieauth/internal/models"
	"github.com/atinyakov/cookieauth/internal/repository"
	"github.com/atinyakov/cookieauth/internal/token"
	"go.uber.org/zap"
)

// UserRepository defines the credential store operations required by the services.
type UserRepository interface {
	// CreateUser stores u and returns it with the store-assigned ID.
	// Returns repository.ErrDuplicate if the email is already registered.
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	// FindUserByCredentials returns the user matching both email and password exactly,
	// or repository.ErrNotFound.
	FindUserByCredentials(ctx context.Context, email, password string) (models.User, error)
	// FindUserByID returns the user with the given ID, or repository.ErrNotFound.
	FindUserByID(ctx context.Context, id string) (models.User, error)
	// ListUsers returns every stored user.
	ListUsers(ctx context.Context) ([]models.User, error)
	// DeleteUser removes the user with the given ID.
	DeleteUser(ctx context.Context, id string) error
}

// RevocationRepository records token ids that must no longer be accepted.
type RevocationRepository interface {
	// Revoke marks jti as revoked until the given time.
	Revoke(ctx context.Context, jti string, until time.Time) error
	// IsRevoked reports whether jti is currently revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenCodec signs and verifies session tokens.
type TokenCodec interface {
	Sign(userID, email string) (string, token.Claims, error)
	Verify(signed string) (token.Claims, error)
}

// Session is an issued session token together with its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService issues, verifies and revokes session tokens.
type AuthService struct {
	users       UserRepository
	revocations RevocationRepository
	codec       TokenCodec
	log         *zap.Logger
}

// NewAuthService constructs an AuthService. revocations may be nil, in which
// case logout only clears the client cookie.
func NewAuthService(users UserRepository, revocations RevocationRepository, codec TokenCodec, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, revocations: revocations, codec: codec, log: log}
}

// SignUp creates a user record and issues its first session. Creation and
// issuance form one step: if the token cannot be minted the new record is
// deleted again and the error is returned.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (models.User, Session, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return models.User{}, Session{}, ErrInvalidInput
	}

	u, err := s.users.CreateUser(ctx, models.User{Name: name, Email: email, Password: password})
	if errors.Is(err, repository.ErrDuplicate) {
		return models.User{}, Session{}, ErrUserExists
	}
	if err != nil {
		return models.User{}, Session{}, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	sess, err := s.issue(u)
	if err != nil {
		if delErr := s.users.DeleteUser(ctx, u.ID); delErr != nil {
			s.log.Error("failed to roll back user after token error",
				zap.String("user_id", u.ID), zap.Error(delErr))
		}
		return models.User{}, Session{}, err
	}

	return u, sess, nil
}

// Login issues a session for the user whose email and password match exactly.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.users.FindUserByCredentials(ctx, email, password)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	return s.issue(u)
}

// Verify recovers the caller's identity from a cookie value.
func (s *AuthService) Verify(ctx context.Context, cookieValue string) (token.Claims, error) {
	if cookieValue == "" {
		return token.Claims{}, ErrMissingToken
	}

	claims, err := s.codec.Verify(cookieValue)
	if err != nil {
		return token.Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if s.revocations != nil && claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return token.Claims{}, fmt.Errorf("%w: %w", ErrStoreFailure, err)
		}
		if revoked {
			return token.Claims{}, ErrInvalidToken
		}
	}

	return claims, nil
}

// Logout revokes the token in cookieValue until its natural expiry. Absent,
// invalid or already expired tokens need nothing and succeed. Revocation
// failures are logged only, so logout never fails.
func (s *AuthService) Logout(ctx context.Context, cookieValue string) {
	if cookieValue == "" || s.revocations == nil {
		return
	}

	claims, err := s.codec.Verify(cookieValue)
	if err != nil || claims.ID == "" {
		return
	}

	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); err != nil {
		s.log.Warn("failed to revoke token on logout",
			zap.String("user_id", claims.UserID), zap.Error(err))
	}
}

func (s *AuthService) issue(u models.User) (Session, error) {
	signed, claims, err := s.codec.Sign(u.ID, u.Email)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: signed, ExpiresAt: claims.ExpiresAtTime()}, nil
}
