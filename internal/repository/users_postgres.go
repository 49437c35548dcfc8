// Package repository provides persistence implementations for user records
// and revoked session tokens on PostgreSQL, MongoDB and Redis.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/cookieauth/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

const userColumns = `id, name, email, password, created_at`

// PostgresUserRepository implements user persistence using a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance with the users schema applied.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts u and returns it with the identifier and creation time
// assigned by the database. ErrDuplicate is returned when the email is taken.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	err := r.DB.QueryRowContext(
		ctx,
		`INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id, created_at`,
		u.Name, u.Email, u.Password,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// FindUserByCredentials returns the user whose email and password both match exactly.
func (r *PostgresUserRepository) FindUserByCredentials(ctx context.Context, email, password string) (models.User, error) {
	row := r.DB.QueryRowContext(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND password = $2`,
		email, password,
	)
	return scanUser(row, "find user by credentials")
}

// FindUserByID returns the user with the given identifier.
func (r *PostgresUserRepository) FindUserByID(ctx context.Context, id string) (models.User, error) {
	row := r.DB.QueryRowContext(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id::text = $1`,
		id,
	)
	return scanUser(row, "find user by id")
}

// ListUsers returns every user ordered by signup time.
func (r *PostgresUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// DeleteUser removes the user with the given identifier. Deleting a missing user is not an error.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id::text = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row, op string) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
