package teachers

import (
	"github.com/gofiber/fiber/v2"
)

func SetupTeachersRoutes(app fiber.Router, h *Handler, authMiddleware fiber.Handler) {
	api := app.Group("/api/teacher", authMiddleware)
	api.Post("/mark-complete", h.MarkCompleteAPI)
	api.Get("/salary", h.GetSalaryAPI)
	api.Get("/attendance", h.GetAttendanceAPI)
}
