package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresRevocationRepository keeps revoked token ids in the revoked_tokens table.
// Expired rows are purged by db.StartRevocationCleaner.
type PostgresRevocationRepository struct {
	// DB is the database handle for executing queries.
	DB  *sql.DB
	now func() time.Time
}

// NewPostgresRevocationRepository creates a new PostgresRevocationRepository.
func NewPostgresRevocationRepository(db *sql.DB) *PostgresRevocationRepository {
	return &PostgresRevocationRepository{DB: db, now: time.Now}
}

// Revoke marks jti as revoked until the given time. Revoking twice keeps the first entry.
func (r *PostgresRevocationRepository) Revoke(ctx context.Context, jti string, until time.Time) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2) ON CONFLICT (jti) DO NOTHING`,
		jti, until,
	)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has an unexpired revocation entry.
func (r *PostgresRevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = $1 AND expires_at > $2)`,
		jti, r.now(),
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}
