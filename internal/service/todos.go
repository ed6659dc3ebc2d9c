package service

import (
	"achievify/internal/models"
	"achievify/pkg/apperror"
	"achievify/pkg/logger"
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type TodoService struct {
	store    TodoStore
	validate *validator.Validate
	log      *logger.Loggers
}

func NewTodoService(store TodoStore, v *validator.Validate, log *logger.Loggers) *TodoService {
	return &TodoService{store: store, validate: v, log: log}
}

// List returns the user's todos newest first. A nil done lists all.
func (s *TodoService) List(ctx context.Context, userID int64, done *bool) ([]models.Todo, error) {
	if userID <= 0 {
		return nil, apperror.Validation("userId is required")
	}
	todos, err := s.store.ListTodos(ctx, userID, done)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (s *TodoService) Create(ctx context.Context, req models.CreateTodoRequest) (*models.Todo, error) {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, invalid(err, "userId and title are required")
	}
	todo, err := s.store.CreateTodo(ctx, req.UserID.Int64(), req.Title)
	if err != nil {
		return nil, storeError(err, "Todo not found", "create todo")
	}
	s.log.Audit.Info("Todo created", zap.Int64("user_id", todo.UserID), zap.Int64("todo_id", todo.ID))
	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, id int64, req models.UpdateTodoRequest) (*models.Todo, error) {
	if id <= 0 || req.UserID <= 0 {
		return nil, apperror.Validation("id and userId required")
	}
	patch := req.Patch()
	if patch.Empty() {
		// Ownership is still checked first so a missing todo reads as 404.
		owned, err := s.store.TodoOwned(ctx, id, req.UserID.Int64())
		if err != nil {
			return nil, fmt.Errorf("update todo: %w", err)
		}
		if !owned {
			s.missed(id, req.UserID.Int64())
			return nil, apperror.NotFound("Todo not found")
		}
		return nil, apperror.Validation("Nothing to update")
	}
	todo, err := s.store.UpdateTodo(ctx, id, req.UserID.Int64(), patch)
	if err != nil {
		err = storeError(err, "Todo not found", "update todo")
		if apperror.KindOf(err) == apperror.KindNotFound {
			s.missed(id, req.UserID.Int64())
		}
		return nil, err
	}
	return todo, nil
}

func (s *TodoService) missed(id, userID int64) {
	s.log.Security.Warn("Todo update missed", zap.Int64("todo_id", id), zap.Int64("user_id", userID))
}

func (s *TodoService) Delete(ctx context.Context, id, userID int64) error {
	if id <= 0 || userID <= 0 {
		return apperror.Validation("id and userId required")
	}
	if err := s.store.DeleteTodo(ctx, id, userID); err != nil {
		return storeError(err, "Todo not found", "delete todo")
	}
	s.log.Audit.Info("Todo deleted", zap.Int64("user_id", userID), zap.Int64("todo_id", id))
	return nil
}
