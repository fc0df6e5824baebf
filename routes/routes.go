package routes

import (
	"github.com/anjiri1684/tuition_marketplace/handlers"
	"github.com/anjiri1684/tuition_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

// Setup mounts every route under /api/v1.
func Setup(app *fiber.App, h *handlers.Handler, jwtSecret string) {
	api := app.Group("/api/v1")
	protected := middleware.Protected(jwtSecret)

	AuthRoutes(api, h)
	TuitionRoutes(api, h, protected)
	ApplicationRoutes(api, h, protected)
	PaymentRoutes(api, h, protected)
	AdminRoutes(api, h, protected)
	RealtimeRoutes(api, h)
}
