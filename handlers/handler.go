package handlers

import (
	"errors"
	"log"

	"github.com/anjiri1684/tuition_marketplace/notifications"
	"github.com/anjiri1684/tuition_marketplace/services"
	"github.com/anjiri1684/tuition_marketplace/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler carries the services every route needs.
type Handler struct {
	Accounts      *services.AccountService
	Tuitions      *services.TuitionService
	Applications  *services.ApplicationService
	Approvals     *services.ApprovalService
	Payments      *services.PaymentService
	Revenue       *services.RevenueService
	Notifier      *notifications.Notifier
	Hub           *websocket.Hub
	WebhookSecret string
}

func success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{"status": "success", "data": data})
}

func errorBody(code, message string, fields map[string]string, retryable bool) fiber.Map {
	body := fiber.Map{"status": "error", "code": code, "message": message, "retryable": retryable}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	return body
}

var errCannotParse = &services.ValidationError{Message: "Cannot parse JSON"}

// parseID reads a uuid route parameter.
func parseID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, &services.ValidationError{
			Message: "invalid id",
			Fields:  []services.FieldError{{Field: name, Error: "must be a valid id"}},
		}
	}
	return id, nil
}

// ErrorHandler renders every error returned by a handler as the error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		ve *services.ValidationError
		ae *services.AuthorizationError
		xe *services.AuthenticationError
		ne *services.NotFoundError
		ie *services.InvalidStateError
		de *services.DuplicateError
		ce *services.ConcurrencyError
		ue *services.UnavailableError
		fe *fiber.Error
	)
	switch {
	case errors.As(err, &ve):
		var fields map[string]string
		if len(ve.Fields) > 0 {
			fields = make(map[string]string, len(ve.Fields))
			for _, f := range ve.Fields {
				fields[f.Field] = f.Error
			}
		}
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("validation_failed", ve.Message, fields, false))
	case errors.As(err, &ae):
		log.Printf("Permission denied for %s %s: %s", c.Method(), c.Path(), ae.Action)
		return c.Status(fiber.StatusForbidden).JSON(errorBody("forbidden", "permission denied", nil, false))
	case errors.As(err, &xe):
		return c.Status(fiber.StatusUnauthorized).JSON(errorBody("unauthorized", xe.Message, nil, false))
	case errors.As(err, &ne):
		return c.Status(fiber.StatusNotFound).JSON(errorBody("not_found", ne.Error(), nil, false))
	case errors.As(err, &ie):
		return c.Status(fiber.StatusConflict).JSON(errorBody("conflict", ie.Message, nil, false))
	case errors.As(err, &de):
		return c.Status(fiber.StatusConflict).JSON(errorBody("conflict", de.Message, nil, false))
	case errors.As(err, &ce):
		return c.Status(fiber.StatusConflict).JSON(errorBody("conflict", ce.Error(), nil, true))
	case errors.As(err, &ue):
		log.Printf("🔥 %s %s: %v", c.Method(), c.Path(), ue.Err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorBody("unavailable", "service temporarily unavailable, please retry", nil, true))
	case errors.As(err, &fe):
		return c.Status(fe.Code).JSON(errorBody(codeForStatus(fe.Code), fe.Message, nil, false))
	}
	log.Printf("🔥 %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody("internal", "internal server error", nil, false))
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "validation_failed"
	case fiber.StatusUnauthorized:
		return "unauthorized"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusConflict:
		return "conflict"
	case fiber.StatusServiceUnavailable:
		return "unavailable"
	}
	return "error"
}
