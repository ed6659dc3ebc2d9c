package service

import (
	"achievify/internal/models"
	"achievify/pkg/apperror"
	"achievify/pkg/logger"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const maxTitleLen = 255

type TimetableService struct {
	store TimetableStore
	blobs *Blobs
	log   *logger.Loggers
}

func NewTimetableService(store TimetableStore, blobs *Blobs, log *logger.Loggers) *TimetableService {
	return &TimetableService{store: store, blobs: blobs, log: log}
}

// Current returns the newest upload of the user, or nil.
func (s *TimetableService) Current(ctx context.Context, userID int64) (*models.TimetableEntry, error) {
	if userID <= 0 {
		return nil, apperror.Validation("userId required")
	}
	entry, err := s.store.LatestTimetable(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("latest timetable: %w", err)
	}
	return entry, nil
}

// Upload stores the file and records it as the user's newest timetable.
// Older uploads are kept until deleted.
func (s *TimetableService) Upload(ctx context.Context, userID int64, title string, u *Upload) (*models.TimetableEntry, error) {
	title = strings.TrimSpace(title)
	if userID <= 0 || title == "" || u == nil {
		return nil, apperror.Validation("userId, title, file required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, apperror.Validation("title is too long")
	}

	entry, err := createWithBlob(ctx, s.blobs, u, timetablePolicy, func(path, mime string) (*models.TimetableEntry, error) {
		entry, err := s.store.CreateTimetable(ctx, userID, title, path, mime)
		if err != nil {
			return nil, storeError(err, "Not found", "create timetable")
		}
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Audit.Info("Timetable uploaded", zap.Int64("user_id", userID), zap.Int64("timetable_id", entry.ID))
	return entry, nil
}

func (s *TimetableService) Delete(ctx context.Context, id, userID int64) error {
	if id <= 0 || userID <= 0 {
		return apperror.Validation("id and userId required")
	}
	return removeWithBlob(ctx, s.blobs, timetablePolicy.feature, "Not found", func() (*string, error) {
		return s.store.DeleteTimetable(ctx, id, userID)
	})
}
