// Package service implements the application operations on top of the stores
// and the blob store. Every method returns either a value or an error whose
// kind (pkg/apperror) decides the HTTP status.
package service

import (
	"achievify/internal/models"
	"achievify/internal/repository"
	"achievify/pkg/apperror"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type UserStore interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	FindUserByLogin(ctx context.Context, identifier string) (*models.User, error)
}

type TodoStore interface {
	ListTodos(ctx context.Context, userID int64, done *bool) ([]models.Todo, error)
	CreateTodo(ctx context.Context, userID int64, title string) (*models.Todo, error)
	TodoOwned(ctx context.Context, id, userID int64) (bool, error)
	UpdateTodo(ctx context.Context, id, userID int64, patch models.TodoPatch) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id, userID int64) error
}

type TimetableStore interface {
	LatestTimetable(ctx context.Context, userID int64) (*models.TimetableEntry, error)
	CreateTimetable(ctx context.Context, userID int64, title, filePath, mime string) (*models.TimetableEntry, error)
	DeleteTimetable(ctx context.Context, id, userID int64) (*string, error)
}

type PlannerStore interface {
	GetPlannerWeek(ctx context.Context, userID int64, week string) (*models.PlannerWeek, error)
	UpsertPlannerWeek(ctx context.Context, userID int64, week string, grid models.PlannerGrid) (*models.PlannerWeek, error)
}

type WallStore interface {
	ListWallItems(ctx context.Context, userID int64, kind string) ([]models.WallItem, error)
	CreateWallItem(ctx context.Context, item models.WallItem) (*models.WallItem, error)
	DeleteWallItem(ctx context.Context, id, userID int64) (*string, error)
}

// Store is everything a single backend provides.
type Store interface {
	UserStore
	TodoStore
	TimetableStore
	PlannerStore
	WallStore
	Ping(ctx context.Context) error
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// invalid turns a validator failure into a client message. Missing fields
// get the operation's own message; length limits name the field.
func invalid(err error, missing string) error {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		for _, fe := range fields {
			if fe.Tag() == "max" && fe.Kind() == reflect.String {
				return apperror.Validation(fe.Field() + " is too long")
			}
		}
	}
	return apperror.Validation(missing)
}

// storeError maps repository sentinels onto client errors. Anything else is
// wrapped and surfaces as a server error.
func storeError(err error, notFound, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, repository.ErrUnknownOwner):
		return apperror.NotFound("User not found")
	case errors.Is(err, repository.ErrNothingToUpdate):
		return apperror.Validation("Nothing to update")
	}
	return fmt.Errorf("%s: %w", op, err)
}
