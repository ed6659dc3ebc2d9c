package handlers

import (
	"achievify/internal/config"
	"achievify/internal/middleware"
	"achievify/internal/models"
	"achievify/internal/service"
	"achievify/pkg/apperror"
	"achievify/pkg/logger"
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	deps *config.Dependencies
	log  *logger.Loggers
}

func New(deps *config.Dependencies) *Handler {
	return &Handler{deps: deps, log: deps.Log}
}

// ErrorHandler renders every error as {"message", "success": false, "status"}.
// Server errors are logged and replaced with a generic message.
func ErrorHandler(log *logger.Loggers) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := apperror.Status(err)
		message := apperror.Message(err)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
			if status == fiber.StatusRequestEntityTooLarge {
				message = "File too large"
			}
		}
		if status >= fiber.StatusInternalServerError {
			message = "Server error"
			log.Error.Error("Request failed",
				zap.String("request_id", middleware.RequestID(c)),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(status).JSON(fiber.Map{
			"message": message,
			"success": false,
			"status":  status,
		})
	}
}

// owner resolves the acting user. Without a bearer token the claimed id is
// trusted as is. With one, an absent claim defaults to the token's user and
// a different claim is rejected.
func (h *Handler) owner(c *fiber.Ctx, claimed int64) (int64, error) {
	tokenUser, ok := middleware.TokenUser(c)
	if !ok {
		return claimed, nil
	}
	if claimed <= 0 {
		return tokenUser, nil
	}
	if claimed != tokenUser {
		h.log.Security.Warn("userId does not match token",
			zap.Int64("claimed", claimed),
			zap.Int64("token_user", tokenUser),
		)
		return 0, apperror.Unauthorized("userId does not match token")
	}
	return claimed, nil
}

func (h *Handler) queryOwner(c *fiber.Ctx) (int64, error) {
	id, _ := models.ParseID(c.Query("userId"))
	return h.owner(c, id)
}

func (h *Handler) formOwner(c *fiber.Ctx) (int64, error) {
	id, _ := models.ParseID(c.FormValue("userId"))
	return h.owner(c, id)
}

func pathID(c *fiber.Ctx) int64 {
	id, _ := models.ParseID(c.Params("id"))
	return id
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("Invalid request body")
	}
	return nil
}

// formUpload opens the multipart file under name. A missing file yields a
// nil upload; the caller closes the returned file.
func formUpload(c *fiber.Ctx, name string) (*service.Upload, multipart.File, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &service.Upload{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Body:        f,
	}, f, nil
}
