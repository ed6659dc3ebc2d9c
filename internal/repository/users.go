package repository

import (
	"achievify/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// DuplicateError reports a unique constraint violation on Field.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var constraintFields = map[string]string{
	"users_username_key": "username",
	"users_email_key":    "email",
}

func (s *PostgresStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, s.db, &exists, "SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, s.db, &exists, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (full_name, username, email, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := s.db.QueryRowxContext(ctx, query, u.FullName, u.Username, u.Email, u.Phone, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if field, ok := constraintFields[pqErr.Constraint]; ok {
				return nil, &DuplicateError{Field: field}
			}
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// FindUserByLogin matches identifier exactly against username or email.
func (s *PostgresStore) FindUserByLogin(ctx context.Context, identifier string) (*models.User, error) {
	query := `
		SELECT id, full_name, username, email, phone, password_hash, created_at
		FROM users
		WHERE username = $1 OR email = $1
		ORDER BY id
		LIMIT 1
	`
	var u models.User
	if err := sqlx.GetContext(ctx, s.db, &u, query, identifier); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
