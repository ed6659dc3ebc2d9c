package handlers

import (
	"achievify/internal/models"
	"achievify/pkg/apperror"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.deps.Store.Ping(c.UserContext()); err != nil {
		h.log.Error.Error("Health check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":    false,
			"error": "database unavailable",
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.deps.Auth.Register(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Registered"})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.deps.Auth.Login(c.UserContext(), req)
	if err != nil {
		// Login reports an unknown user as a bad request, not a 404.
		if errors.Is(err, apperror.ErrNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, apperror.Message(err))
		}
		return err
	}
	body := fiber.Map{
		"message": "Logged in",
		"user":    res.User,
	}
	if res.Token != "" {
		body["token"] = res.Token
	}
	return c.JSON(body)
}
