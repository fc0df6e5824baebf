package handlers

import (
	"time"

	"github.com/anjiri1684/tuition_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

var timeNow = func() time.Time { return time.Now().UTC() }

func (h *Handler) TutorRevenue(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	summary, err := h.Revenue.ForTutor(c.UserContext(), actor, c.Query("tutorEmail"))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, summary)
}

func (h *Handler) PlatformRevenue(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	summary, err := h.Revenue.Platform(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, summary)
}
