package routes

import (
	"github.com/anjiri1684/tuition_marketplace/handlers"
	"github.com/anjiri1684/tuition_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(api fiber.Router, h *handlers.Handler, protected fiber.Handler) {
	admin := api.Group("/admin", protected, middleware.AdminRequired())

	admin.Get("/revenue", h.PlatformRevenue)

	users := admin.Group("/users")
	users.Get("", h.ListUsers)
	users.Put("/:id/status", h.SetUserStatus)
}
