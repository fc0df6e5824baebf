package routes

import (
	"github.com/anjiri1684/tuition_marketplace/handlers"
	"github.com/anjiri1684/tuition_marketplace/middleware"
	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/gofiber/fiber/v2"
)

func ApplicationRoutes(api fiber.Router, h *handlers.Handler, protected fiber.Handler) {
	tutorOnly := middleware.RoleRequired(models.RoleTutor)

	api.Post("/apply-tuition", protected, tutorOnly, h.ApplyTuition)
	api.Get("/tuition-applications/:tuitionId", protected, h.ListTuitionApplications)
	api.Put("/applications/:id", protected, h.DecideApplication)

	api.Patch("/tutor-applications/:id", protected, tutorOnly, h.EditApplication)
	api.Delete("/tutor-applications/:id", protected, tutorOnly, h.WithdrawApplication)
	api.Get("/my-applications", protected, tutorOnly, h.MyApplications)
}
