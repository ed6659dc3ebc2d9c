package handlers

import (
	"achievify/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListTodos(c *fiber.Ctx) error {
	userID, err := h.queryOwner(c)
	if err != nil {
		return err
	}
	var done *bool
	switch c.Query("done") {
	case "0":
		v := false
		done = &v
	case "1":
		v := true
		done = &v
	}
	todos, err := h.deps.Todos.List(c.UserContext(), userID, done)
	if err != nil {
		return err
	}
	return c.JSON(todos)
}

func (h *Handler) CreateTodo(c *fiber.Ctx) error {
	var req models.CreateTodoRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	userID, err := h.owner(c, req.UserID.Int64())
	if err != nil {
		return err
	}
	req.UserID = models.ID(userID)
	todo, err := h.deps.Todos.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(todo)
}

func (h *Handler) UpdateTodo(c *fiber.Ctx) error {
	var req models.UpdateTodoRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	userID, err := h.owner(c, req.UserID.Int64())
	if err != nil {
		return err
	}
	req.UserID = models.ID(userID)
	todo, err := h.deps.Todos.Update(c.UserContext(), pathID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(todo)
}

func (h *Handler) DeleteTodo(c *fiber.Ctx) error {
	userID, err := h.queryOwner(c)
	if err != nil {
		return err
	}
	if err := h.deps.Todos.Delete(c.UserContext(), pathID(c), userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}
