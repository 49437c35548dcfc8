package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocationRepository stores revoked token ids as keys that expire
// together with the token they revoke.
type RedisRevocationRepository struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisRevocationRepository creates a RedisRevocationRepository writing keys under prefix.
func NewRedisRevocationRepository(client redis.UniversalClient, prefix string) *RedisRevocationRepository {
	if prefix == "" {
		prefix = "revoked"
	}
	return &RedisRevocationRepository{client: client, prefix: prefix, now: time.Now}
}

func (r *RedisRevocationRepository) key(jti string) string {
	return r.prefix + ":" + jti
}

// Revoke marks jti as revoked until the given time. Tokens already past
// until need no entry and are skipped.
func (r *RedisRevocationRepository) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(jti), until.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a revocation key for jti is still present.
func (r *RedisRevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}
