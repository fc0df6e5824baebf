package routes

import (
	"github.com/anjiri1684/tuition_marketplace/handlers"
	"github.com/anjiri1684/tuition_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(api fiber.Router, h *handlers.Handler, protected fiber.Handler) {
	api.Post("/payments/webhook", h.HandlePaymentWebhook)

	api.Get("/all-payments", protected, middleware.AdminRequired(), h.ListAllPayments)
	api.Get("/payments", protected, h.ListStudentPayments)
	api.Get("/tutor-revenue", protected, h.TutorRevenue)
}
