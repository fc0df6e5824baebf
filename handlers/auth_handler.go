package handlers

import (
	"time"

	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/anjiri1684/tuition_marketplace/services"
	"github.com/gofiber/fiber/v2"
)

type UserResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return errCannotParse
	}

	user, err := h.Accounts.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	h.Notifier.Welcome(user)
	return success(c, fiber.StatusCreated, toUserResponse(user))
}

func (h *Handler) LoginUser(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return errCannotParse
	}

	token, user, err := h.Accounts.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user":  toUserResponse(user),
	})
}
