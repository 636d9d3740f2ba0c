package events

import (
	"github.com/gofiber/fiber/v2"
)

// SetupEventsRoutes sets up events and course schedule routes
func SetupEventsRoutes(app fiber.Router, h *Handler, authMiddleware fiber.Handler) {
	api := app.Group("/api/events", authMiddleware)
	api.Get("/", h.GetEventsAPI)
	api.Post("/", h.CreateEventAPI)
	api.Get("/:id", h.GetEventAPI)
	api.Put("/:id", h.UpdateEventAPI)
	api.Delete("/:id", h.DeleteEventAPI)

	courses := app.Group("/api/courses", authMiddleware)
	courses.Post("/:id/schedule", h.GenerateScheduleAPI)
}
