package routes

import (
	"github.com/anjiri1684/tuition_marketplace/handlers"
	"github.com/anjiri1684/tuition_marketplace/middleware"
	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/gofiber/fiber/v2"
)

func TuitionRoutes(api fiber.Router, h *handlers.Handler, protected fiber.Handler) {
	api.Get("/all-tuitions", h.ListTuitions)
	api.Get("/tuitions/:id", h.GetTuition)

	api.Post("/tuitions", protected, middleware.RoleRequired(models.RoleStudent, models.RoleAdmin), h.CreateTuition)
	api.Put("/tuitions/:id", protected, h.DecideTuition)
	api.Patch("/tuitions/:id", protected, h.UpdateTuition)
	api.Get("/my-tuitions", protected, middleware.RoleRequired(models.RoleStudent), h.MyTuitions)
}
