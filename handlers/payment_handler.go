package handlers

import (
	"crypto/subtle"
	"log"

	"github.com/anjiri1684/tuition_marketplace/middleware"
	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/anjiri1684/tuition_marketplace/services"
	"github.com/gofiber/fiber/v2"
)

const webhookSecretHeader = "X-Webhook-Secret"

// HandlePaymentWebhook records a gateway callback. Replays of a known
// transaction answer 200 without writing.
func (h *Handler) HandlePaymentWebhook(c *fiber.Ctx) error {
	secret := c.Get(webhookSecretHeader)
	if h.WebhookSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.WebhookSecret)) != 1 {
		log.Printf("⚠️ Payment webhook rejected from %s: bad or missing secret", c.IP())
		return &services.AuthorizationError{Action: "payment webhook"}
	}

	var payload services.PaymentInput
	if err := c.BodyParser(&payload); err != nil {
		return &services.ValidationError{Message: "Cannot parse webhook payload"}
	}
	log.Printf("Received payment webhook for transaction %s (%s)", payload.TransactionID, payload.Status)

	rec, written, err := h.Payments.Record(c.UserContext(), payload)
	if err != nil {
		return err
	}
	if !written {
		return success(c, fiber.StatusOK, fiber.Map{"payment": rec, "message": "Webhook already processed"})
	}
	h.Notifier.PaymentRecorded(rec)
	return success(c, fiber.StatusCreated, fiber.Map{"payment": rec, "message": "Webhook processed successfully"})
}

func (h *Handler) ListAllPayments(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	records, err := h.Payments.ListAll(c.UserContext(), actor, services.PaymentFilter{
		PayerEmail: c.Query("studentEmail"),
		PayeeEmail: c.Query("tutorEmail"),
		Status:     models.PaymentStatus(c.Query("status")),
	})
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, records)
}

// ListStudentPayments returns a student's payments with their spending summary.
func (h *Handler) ListStudentPayments(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return err
	}
	records, err := h.Payments.ListForStudent(c.UserContext(), actor, c.Query("studentEmail"))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{
		"payments": records,
		"summary":  services.Summarize(records, timeNow()),
	})
}
