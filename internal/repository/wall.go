package repository

import (
	"achievify/internal/models"
	"context"
)

func (s *PostgresStore) ListWallItems(ctx context.Context, userID int64, kind string) ([]models.WallItem, error) {
	if kind != "" {
		return s.wall.list(ctx, userID, Assignment{Column: "kind", Value: kind})
	}
	return s.wall.list(ctx, userID)
}

// CreateWallItem inserts item for its owner. ID and CreatedAt are ignored.
func (s *PostgresStore) CreateWallItem(ctx context.Context, item models.WallItem) (*models.WallItem, error) {
	return s.wall.insert(ctx, item.UserID, []Assignment{
		{Column: "kind", Value: item.Kind},
		{Column: "text", Value: item.Text},
		{Column: "author", Value: item.Author},
		{Column: "color", Value: item.Color},
		{Column: "file_path", Value: item.FilePath},
		{Column: "mime", Value: item.Mime},
	})
}

func (s *PostgresStore) DeleteWallItem(ctx context.Context, id, userID int64) (*string, error) {
	return s.wall.remove(ctx, id, userID)
}
