package repository

import (
	"achievify/internal/models"
	"context"
)

func (s *PostgresStore) LatestTimetable(ctx context.Context, userID int64) (*models.TimetableEntry, error) {
	return s.timetables.latest(ctx, userID)
}

func (s *PostgresStore) CreateTimetable(ctx context.Context, userID int64, title, filePath, mime string) (*models.TimetableEntry, error) {
	return s.timetables.insert(ctx, userID, []Assignment{
		{Column: "title", Value: title},
		{Column: "file_path", Value: filePath},
		{Column: "mime", Value: mime},
	})
}

// DeleteTimetable returns the file path the deleted row referenced.
func (s *PostgresStore) DeleteTimetable(ctx context.Context, id, userID int64) (*string, error) {
	return s.timetables.remove(ctx, id, userID)
}
