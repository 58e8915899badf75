// Package repository provides PostgreSQL persistence for users and
// financial entries. Every method runs as a single Gateway operation.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/FinTrack/internal/db"
	"github.com/atinyakov/FinTrack/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint failure.
const uniqueViolation = "23505"

// PostgresAuthRepository stores user accounts.
type PostgresAuthRepository struct {
	gw *db.Gateway
}

// NewPostgresAuthRepository creates a PostgresAuthRepository on top of gw.
func NewPostgresAuthRepository(gw *db.Gateway) *PostgresAuthRepository {
	return &PostgresAuthRepository{gw: gw}
}

// CreateUser inserts a new user and returns it with its assigned ID.
// If the email is already registered it returns models.ErrConflict and
// nothing is written.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	user := &models.User{Name: name, Email: email, PasswordHash: passwordHash}
	err := r.gw.Write(ctx, func(ctx context.Context, q db.Querier) error {
		taken, err := emailTaken(ctx, q, email)
		if err != nil {
			return err
		}
		if taken {
			return models.ErrConflict
		}

		err = q.QueryRowContext(ctx,
			`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
			name, email, passwordHash,
		).Scan(&user.ID)
		if isUniqueViolation(err) {
			return models.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail returns the user registered with email, or
// models.ErrNotFound.
func (r *PostgresAuthRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.gw.Read(ctx, func(ctx context.Context, q db.Querier) error {
		return q.QueryRowContext(ctx,
			`SELECT id, name, email, password_hash FROM users WHERE email = $1`,
			email,
		).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUserByEmail: %w", err)
	}
	return &u, nil
}

// emailTaken reports whether a user is already registered with email.
func emailTaken(ctx context.Context, q db.Querier, email string) (bool, error) {
	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
