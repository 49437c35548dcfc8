// Package token issues and verifies the signed session tokens carried in the
// auth cookie. Tokens are HS256 JWTs holding the subject id and email.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the lifetime of a session token.
const DefaultTTL = time.Hour

var (
	// ErrInvalid is returned for any token that fails verification:
	// malformed, wrongly signed, signed with another algorithm, or expired.
	ErrInvalid = errors.New("invalid token")
	// ErrEmptyKey is returned by New when no signing key is configured.
	ErrEmptyKey = errors.New("signing key is empty")
)

// Claims is the payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	// UserID is the store-assigned identifier of the subject.
	UserID string `json:"uid"`
	// Email is the subject's email at issuance time.
	Email string `json:"email"`
}

// Codec signs and verifies session tokens with a shared HMAC key.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// Option customizes a Codec.
type Option func(*Codec)

// WithClock replaces the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// New returns a Codec signing with key. A non-positive ttl falls back to DefaultTTL.
func New(key []byte, ttl time.Duration, opts ...Option) (*Codec, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Codec{key: key, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL reports the fixed lifetime of tokens minted by the codec.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Sign mints a token for the given subject. The returned claims carry the
// generated token id and the expiry baked into the token.
func (c *Codec) Sign(userID, email string) (string, Claims, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UserID: userID,
		Email:  email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks the signature and expiry of signed and returns its claims.
// Every failure wraps ErrInvalid.
func (c *Codec) Verify(signed string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &Claims{}
	tok, err := parser.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !tok.Valid || claims.UserID == "" {
		return Claims{}, ErrInvalid
	}
	return *claims, nil
}

// ExpiresAtTime returns the expiry of the token, or the zero time when absent.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
