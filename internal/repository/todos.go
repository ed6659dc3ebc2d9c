package repository

import (
	"achievify/internal/models"
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func (s *PostgresStore) ListTodos(ctx context.Context, userID int64, done *bool) ([]models.Todo, error) {
	if done != nil {
		return s.todos.list(ctx, userID, Assignment{Column: "done", Value: *done})
	}
	return s.todos.list(ctx, userID)
}

func (s *PostgresStore) CreateTodo(ctx context.Context, userID int64, title string) (*models.Todo, error) {
	return s.todos.insert(ctx, userID, []Assignment{{Column: "title", Value: title}})
}

// TodoOwned reports whether todo id exists and belongs to userID.
func (s *PostgresStore) TodoOwned(ctx context.Context, id, userID int64) (bool, error) {
	var owned bool
	err := sqlx.GetContext(ctx, s.db, &owned, "SELECT EXISTS(SELECT 1 FROM todos WHERE id = $1 AND user_id = $2)", id, userID)
	if err != nil {
		return false, fmt.Errorf("check todo owner: %w", err)
	}
	return owned, nil
}

func (s *PostgresStore) UpdateTodo(ctx context.Context, id, userID int64, patch models.TodoPatch) (*models.Todo, error) {
	var set []Assignment
	if patch.Title != nil {
		set = append(set, Assignment{Column: "title", Value: *patch.Title})
	}
	if patch.Done != nil {
		set = append(set, Assignment{Column: "done", Value: *patch.Done})
	}
	return s.todos.update(ctx, id, userID, set)
}

func (s *PostgresStore) DeleteTodo(ctx context.Context, id, userID int64) error {
	_, err := s.todos.remove(ctx, id, userID)
	return err
}
