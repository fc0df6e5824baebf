package handlers

import (
	"github.com/anjiri1684/tuition_marketplace/middleware"
	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	users, err := h.Accounts.ListUsers(c.UserContext(), actor, models.Role(c.Query("role")))
	if err != nil {
		return err
	}
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return success(c, fiber.StatusOK, resp)
}

type UserStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

func (h *Handler) SetUserStatus(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errCannotParse
	}
	if req.IsActive == nil {
		return fiber.NewError(fiber.StatusBadRequest, "is_active is required")
	}

	user, err := h.Accounts.SetActive(c.UserContext(), actor, id, *req.IsActive)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, toUserResponse(user))
}
