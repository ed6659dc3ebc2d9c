package handlers

import (
	"achievify/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetPlanner(c *fiber.Ctx) error {
	userID, err := h.queryOwner(c)
	if err != nil {
		return err
	}
	week, err := h.deps.Planner.Load(c.UserContext(), userID, c.Query("week"))
	if err != nil {
		return err
	}
	return c.JSON(week)
}

func (h *Handler) SavePlanner(c *fiber.Ctx) error {
	var req models.SavePlannerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	userID, err := h.owner(c, req.UserID.Int64())
	if err != nil {
		return err
	}
	req.UserID = models.ID(userID)
	saved, err := h.deps.Planner.Save(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":    "Saved",
		"week":       saved.Week,
		"data":       saved.Data,
		"updated_at": saved.UpdatedAt,
	})
}
