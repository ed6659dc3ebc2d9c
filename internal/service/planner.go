package service

import (
	"achievify/internal/models"
	"achievify/pkg/apperror"
	"achievify/pkg/logger"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxWeekLen = 32

type PlannerService struct {
	store    PlannerStore
	validate *validator.Validate
	log      *logger.Loggers
}

func NewPlannerService(store PlannerStore, v *validator.Validate, log *logger.Loggers) *PlannerService {
	return &PlannerService{store: store, validate: v, log: log}
}

// Load returns the saved grid for the week, or an unsaved default grid with
// a nil timestamp.
func (s *PlannerService) Load(ctx context.Context, userID int64, week string) (*models.PlannerWeek, error) {
	week = strings.TrimSpace(week)
	if userID <= 0 || week == "" {
		return nil, apperror.Validation("userId and week required")
	}
	if utf8.RuneCountInString(week) > maxWeekLen {
		return nil, apperror.Validation("week is too long")
	}
	saved, err := s.store.GetPlannerWeek(ctx, userID, week)
	if err != nil {
		return nil, fmt.Errorf("load planner: %w", err)
	}
	if saved == nil {
		return &models.PlannerWeek{Week: week, Data: models.EmptyPlannerGrid()}, nil
	}
	return saved, nil
}

// Save replaces the whole grid stored for the week.
func (s *PlannerService) Save(ctx context.Context, req models.SavePlannerRequest) (*models.PlannerWeek, error) {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, invalid(err, "userId, week, and 3x3 data required")
	}
	saved, err := s.store.UpsertPlannerWeek(ctx, req.UserID.Int64(), req.Week, req.Data)
	if err != nil {
		return nil, storeError(err, "Not found", "save planner")
	}
	s.log.Audit.Info("Planner saved", zap.Int64("user_id", req.UserID.Int64()), zap.String("week", req.Week))
	return saved, nil
}
