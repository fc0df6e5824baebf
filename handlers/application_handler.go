package handlers

import (
	"github.com/anjiri1684/tuition_marketplace/middleware"
	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/anjiri1684/tuition_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ApplyTuitionRequest struct {
	TuitionID string `json:"tuition_id"`
	services.ApplicationInput
}

func (h *Handler) ApplyTuition(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	var req ApplyTuitionRequest
	if err := c.BodyParser(&req); err != nil {
		return errCannotParse
	}
	postID, err := uuid.Parse(req.TuitionID)
	if err != nil {
		return &services.ValidationError{
			Message: "invalid input",
			Fields:  []services.FieldError{{Field: "tuition_id", Error: "must be a valid id"}},
		}
	}

	app, err := h.Applications.Submit(c.UserContext(), actor, postID, req.ApplicationInput)
	if err != nil {
		return err
	}
	if post, err := h.Tuitions.Get(c.UserContext(), postID); err == nil {
		h.Notifier.ApplicationSubmitted(post, app)
	}
	return success(c, fiber.StatusCreated, app)
}

func (h *Handler) ListTuitionApplications(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "tuitionId")
	if err != nil {
		return err
	}
	apps, err := h.Applications.ListForPost(c.UserContext(), actor, postID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, apps)
}

type ApplicationDecisionRequest struct {
	Status models.ApplicationStatus `json:"status"`
}

// DecideApplication approves or rejects one application on behalf of the
// post owner or an admin.
func (h *Handler) DecideApplication(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req ApplicationDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return errCannotParse
	}

	switch req.Status {
	case models.ApplicationApproved:
		result, err := h.Approvals.Approve(c.UserContext(), actor, uuid.Nil, id)
		if err != nil {
			return err
		}
		h.Notifier.ApplicationApproved(result)
		return success(c, fiber.StatusOK, result)
	case models.ApplicationRejected:
		app, err := h.Approvals.Reject(c.UserContext(), actor, id)
		if err != nil {
			return err
		}
		if post, err := h.Tuitions.Get(c.UserContext(), app.TuitionPostID); err == nil {
			h.Notifier.ApplicationRejected(post, app)
		}
		return success(c, fiber.StatusOK, app)
	}
	return &services.ValidationError{
		Message: "invalid status",
		Fields:  []services.FieldError{{Field: "status", Error: "must be one of: approved rejected"}},
	}
}

func (h *Handler) EditApplication(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req services.ApplicationInput
	if err := c.BodyParser(&req); err != nil {
		return errCannotParse
	}
	app, err := h.Applications.Edit(c.UserContext(), actor, id, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, app)
}

func (h *Handler) WithdrawApplication(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Applications.Withdraw(c.UserContext(), actor, id); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"id": id, "withdrawn": true})
}

func (h *Handler) MyApplications(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	apps, err := h.Applications.ListMine(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, apps)
}
