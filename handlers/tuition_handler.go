package handlers

import (
	"github.com/anjiri1684/tuition_marketplace/middleware"
	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/anjiri1684/tuition_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) CreateTuition(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	var req services.TuitionInput
	if err := c.BodyParser(&req); err != nil {
		return errCannotParse
	}

	post, err := h.Tuitions.Create(c.UserContext(), actor, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, post)
}

func (h *Handler) ListTuitions(c *fiber.Ctx) error {
	filter := services.TuitionFilter{
		Status:       models.TuitionStatus(c.Query("status")),
		Subject:      c.Query("subject"),
		Class:        c.Query("class"),
		Location:     c.Query("location"),
		StudentEmail: c.Query("studentEmail"),
		MinBudget:    c.QueryInt("minBudget"),
		MaxBudget:    c.QueryInt("maxBudget"),
		Sort:         services.TuitionSort(c.Query("sort", string(services.SortRecent))),
		Page:         c.QueryInt("page", 1),
		Limit:        c.QueryInt("limit", 20),
	}
	filter.Normalize()

	posts, total, err := h.Tuitions.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{
		"tuitions": posts,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

func (h *Handler) GetTuition(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := h.Tuitions.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, post)
}

type TuitionDecisionRequest struct {
	Status        models.TuitionStatus `json:"status"`
	ApplicationID string               `json:"application_id"`
}

// DecideTuition moves a post to approved (admin, naming the winning
// application), rejected (admin) or completed (owner or admin).
func (h *Handler) DecideTuition(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req TuitionDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return errCannotParse
	}

	switch req.Status {
	case models.TuitionApproved:
		if !actor.IsAdmin() {
			return &services.AuthorizationError{Action: "moderate tuition"}
		}
		appID, err := uuid.Parse(req.ApplicationID)
		if err != nil {
			return &services.ValidationError{
				Message: "approving a tuition requires the application to approve",
				Fields:  []services.FieldError{{Field: "application_id", Error: "is required"}},
			}
		}
		result, err := h.Approvals.Approve(c.UserContext(), actor, id, appID)
		if err != nil {
			return err
		}
		h.Notifier.ApplicationApproved(result)
		return success(c, fiber.StatusOK, result)
	case models.TuitionRejected:
		post, err := h.Tuitions.Reject(c.UserContext(), actor, id)
		if err != nil {
			return err
		}
		h.Notifier.TuitionRejected(post)
		return success(c, fiber.StatusOK, post)
	case models.TuitionCompleted:
		post, err := h.Tuitions.Complete(c.UserContext(), actor, id)
		if err != nil {
			return err
		}
		h.Notifier.TuitionCompleted(post)
		return success(c, fiber.StatusOK, post)
	}
	return &services.ValidationError{
		Message: "invalid status",
		Fields:  []services.FieldError{{Field: "status", Error: "must be one of: approved rejected completed"}},
	}
}

func (h *Handler) UpdateTuition(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req services.TuitionInput
	if err := c.BodyParser(&req); err != nil {
		return errCannotParse
	}

	post, err := h.Tuitions.UpdateDetails(c.UserContext(), actor, id, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, post)
}

func (h *Handler) MyTuitions(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	posts, err := h.Tuitions.ListMine(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, posts)
}
