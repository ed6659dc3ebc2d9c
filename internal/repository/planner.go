package repository

import (
	"achievify/internal/models"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type plannerRow struct {
	DataJSON  []byte    `db:"data_json"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GetPlannerWeek returns nil when the week has never been saved.
func (s *PostgresStore) GetPlannerWeek(ctx context.Context, userID int64, week string) (*models.PlannerWeek, error) {
	query := `SELECT data_json, updated_at FROM planner_weeks WHERE user_id = $1 AND week_key = $2`

	var row plannerRow
	if err := sqlx.GetContext(ctx, s.db, &row, query, userID, week); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get planner week: %w", err)
	}

	var grid models.PlannerGrid
	if err := json.Unmarshal(row.DataJSON, &grid); err != nil {
		return nil, fmt.Errorf("decode planner week: %w", err)
	}
	return &models.PlannerWeek{Week: week, Data: grid, UpdatedAt: &row.UpdatedAt}, nil
}

// UpsertPlannerWeek replaces the whole grid stored for (userID, week).
func (s *PostgresStore) UpsertPlannerWeek(ctx context.Context, userID int64, week string, grid models.PlannerGrid) (*models.PlannerWeek, error) {
	data, err := json.Marshal(grid)
	if err != nil {
		return nil, fmt.Errorf("encode planner week: %w", err)
	}

	query := `
		INSERT INTO planner_weeks (user_id, week_key, data_json)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, week_key)
		DO UPDATE SET data_json = EXCLUDED.data_json, updated_at = now()
		RETURNING updated_at
	`
	var updatedAt time.Time
	if err := s.db.QueryRowxContext(ctx, query, userID, week, data).Scan(&updatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return nil, ErrUnknownOwner
		}
		return nil, fmt.Errorf("upsert planner week: %w", err)
	}
	return &models.PlannerWeek{Week: week, Data: grid, UpdatedAt: &updatedAt}, nil
}
