package handlers

import (
	"achievify/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListWall(c *fiber.Ctx) error {
	userID, err := h.queryOwner(c)
	if err != nil {
		return err
	}
	items, err := h.deps.Wall.List(c.UserContext(), userID, c.Query("kind"))
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *Handler) AddQuote(c *fiber.Ctx) error {
	var req models.CreateQuoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	userID, err := h.owner(c, req.UserID.Int64())
	if err != nil {
		return err
	}
	req.UserID = models.ID(userID)
	item, err := h.deps.Wall.AddQuote(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (h *Handler) DeleteWallItem(c *fiber.Ctx) error {
	userID, err := h.queryOwner(c)
	if err != nil {
		return err
	}
	if err := h.deps.Wall.Delete(c.UserContext(), pathID(c), userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}
