package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound        = errors.New("row not found")
	ErrNothingToUpdate = errors.New("nothing to update")
	// ErrUnknownOwner is returned when a row is inserted for a user that
	// does not exist.
	ErrUnknownOwner = errors.New("unknown owner")
)

// foreignKeyViolation is the Postgres SQLSTATE for foreign_key_violation.
const foreignKeyViolation = "23503"

// Assignment binds a fixed column name to a value. Column names always come
// from code, never from request input.
type Assignment struct {
	Column string
	Value  any
}

// ownedTable runs the per-user statements shared by every resource table.
// Each mutation is a single statement conditioned on both id and user_id,
// so the ownership check and the write cannot interleave with another
// request.
type ownedTable[T any] struct {
	db      sqlx.ExtContext
	table   string
	columns string
	orderBy string
	// touch is refreshed to now() on every update; empty for none.
	touch string
	// blob is returned by remove so the caller can clean up; empty for none.
	blob string
}

func (t ownedTable[T]) list(ctx context.Context, owner int64, filters ...Assignment) ([]T, error) {
	var b strings.Builder
	args := []any{owner}
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE user_id = $1", t.columns, t.table)
	for _, f := range filters {
		args = append(args, f.Value)
		fmt.Fprintf(&b, " AND %s = $%d", f.Column, len(args))
	}
	fmt.Fprintf(&b, " ORDER BY %s", t.orderBy)

	rows := []T{}
	if err := sqlx.SelectContext(ctx, t.db, &rows, b.String(), args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.table, err)
	}
	return rows, nil
}

// latest returns the newest row of owner, or nil when there is none.
func (t ownedTable[T]) latest(ctx context.Context, owner int64) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = $1 ORDER BY %s LIMIT 1", t.columns, t.table, t.orderBy)

	var row T
	if err := sqlx.GetContext(ctx, t.db, &row, query, owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest %s: %w", t.table, err)
	}
	return &row, nil
}

// insert adds a row for owner and returns it as stored.
func (t ownedTable[T]) insert(ctx context.Context, owner int64, values []Assignment) (*T, error) {
	cols := []string{"user_id"}
	marks := []string{"$1"}
	args := []any{owner}
	for _, v := range values {
		args = append(args, v.Value)
		cols = append(cols, v.Column)
		marks = append(marks, fmt.Sprintf("$%d", len(args)))
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.table, strings.Join(cols, ", "), strings.Join(marks, ", "), t.columns)

	var row T
	if err := sqlx.GetContext(ctx, t.db, &row, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return nil, ErrUnknownOwner
		}
		return nil, fmt.Errorf("insert %s: %w", t.table, err)
	}
	return &row, nil
}

// update applies set to the row only if owner owns it.
func (t ownedTable[T]) update(ctx context.Context, id, owner int64, set []Assignment) (*T, error) {
	if len(set) == 0 {
		return nil, ErrNothingToUpdate
	}
	args := []any{id, owner}
	parts := make([]string, 0, len(set)+1)
	for _, s := range set {
		args = append(args, s.Value)
		parts = append(parts, fmt.Sprintf("%s = $%d", s.Column, len(args)))
	}
	if t.touch != "" {
		parts = append(parts, t.touch+" = now()")
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1 AND user_id = $2 RETURNING %s",
		t.table, strings.Join(parts, ", "), t.columns)

	var row T
	if err := sqlx.GetContext(ctx, t.db, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update %s: %w", t.table, err)
	}
	return &row, nil
}

// remove deletes the row only if owner owns it and returns the blob path the
// row referenced, if any.
func (t ownedTable[T]) remove(ctx context.Context, id, owner int64) (*string, error) {
	returning := "id"
	if t.blob != "" {
		returning = t.blob
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND user_id = $2 RETURNING %s", t.table, returning)

	var ref sql.NullString
	if err := t.db.QueryRowxContext(ctx, query, id, owner).Scan(&ref); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete %s: %w", t.table, err)
	}
	if t.blob == "" || !ref.Valid {
		return nil, nil
	}
	return &ref.String, nil
}
