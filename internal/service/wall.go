package service

import (
	"achievify/internal/models"
	"achievify/pkg/apperror"
	"achievify/pkg/logger"
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type WallService struct {
	store    WallStore
	validate *validator.Validate
	blobs    *Blobs
	log      *logger.Loggers
}

func NewWallService(store WallStore, v *validator.Validate, blobs *Blobs, log *logger.Loggers) *WallService {
	return &WallService{store: store, validate: v, blobs: blobs, log: log}
}

// List returns the user's wall newest first. Kinds other than quote and
// image are ignored.
func (s *WallService) List(ctx context.Context, userID int64, kind string) ([]models.WallItem, error) {
	if userID <= 0 {
		return nil, apperror.Validation("userId required")
	}
	kind = strings.TrimSpace(kind)
	if kind != models.WallKindQuote && kind != models.WallKindImage {
		kind = ""
	}
	items, err := s.store.ListWallItems(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("list wall: %w", err)
	}
	return items, nil
}

func (s *WallService) AddQuote(ctx context.Context, req models.CreateQuoteRequest) (*models.WallItem, error) {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, invalid(err, "userId and text required")
	}
	text := req.Text
	item, err := s.store.CreateWallItem(ctx, models.WallItem{
		UserID: req.UserID.Int64(),
		Kind:   models.WallKindQuote,
		Text:   &text,
		Author: req.Author,
		Color:  req.Color,
	})
	if err != nil {
		return nil, storeError(err, "Not found", "create quote")
	}
	s.log.Audit.Info("Quote added", zap.Int64("user_id", item.UserID), zap.Int64("item_id", item.ID))
	return item, nil
}

// AddImage stores an image with an optional caption.
func (s *WallService) AddImage(ctx context.Context, userID int64, caption string, u *Upload) (*models.WallItem, error) {
	if userID <= 0 || u == nil {
		return nil, apperror.Validation("userId and image file required")
	}
	text := models.NullIfBlank(&caption)

	item, err := createWithBlob(ctx, s.blobs, u, wallPolicy, func(path, mime string) (*models.WallItem, error) {
		item, err := s.store.CreateWallItem(ctx, models.WallItem{
			UserID:   userID,
			Kind:     models.WallKindImage,
			Text:     text,
			FilePath: &path,
			Mime:     &mime,
		})
		if err != nil {
			return nil, storeError(err, "Not found", "create image")
		}
		return item, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Audit.Info("Image added", zap.Int64("user_id", userID), zap.Int64("item_id", item.ID))
	return item, nil
}

func (s *WallService) Delete(ctx context.Context, id, userID int64) error {
	if id <= 0 || userID <= 0 {
		return apperror.Validation("id and userId required")
	}
	return removeWithBlob(ctx, s.blobs, wallPolicy.feature, "Not found", func() (*string, error) {
		return s.store.DeleteWallItem(ctx, id, userID)
	})
}
