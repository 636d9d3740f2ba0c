package teachers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"swadiq-lms/app/models"
	"swadiq-lms/app/routes/auth"
	"swadiq-lms/app/routes/helpers"
	"swadiq-lms/app/services"
)

type Handler struct {
	svc *services.Service
}

func NewHandler(svc *services.Service) *Handler {
	return &Handler{svc: svc}
}

type markCompleteRequest struct {
	// TeacherID defaults to the caller; admins may complete on a teacher's behalf
	TeacherID string `json:"teacher_id" validate:"omitempty,uuid"`
	EventID   string `json:"event_id" validate:"required,uuid"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// teacherID resolves the teacher a request is about, defaulting to the caller
func teacherID(c *fiber.Ctx, requested string) string {
	if id := strings.TrimSpace(requested); id != "" {
		return id
	}
	if actor := auth.CurrentActor(c); actor != nil {
		return actor.ID
	}
	return ""
}

// MarkCompleteAPI records that the teacher taught a class. Repeated calls
// return the existing record with already_recorded set.
func (h *Handler) MarkCompleteAPI(c *fiber.Ctx) error {
	var req markCompleteRequest
	if err := helpers.ParseBody(c, &req); err != nil {
		return helpers.ValidationError(c, err)
	}

	result, err := h.svc.MarkComplete(c.UserContext(), auth.CurrentActor(c), services.MarkCompleteInput{
		TeacherID: teacherID(c, req.TeacherID),
		EventID:   req.EventID,
		Notes:     req.Notes,
	})
	if err != nil {
		return helpers.ServiceError(c, err, "mark complete")
	}
	return c.JSON(fiber.Map{
		"success":          true,
		"attendance":       result.Record,
		"already_recorded": result.AlreadyRecorded,
	})
}

// GetSalaryAPI returns the reconciled current-month figure with history
func (h *Handler) GetSalaryAPI(c *fiber.Ctx) error {
	requested, ok := helpers.UUIDQuery(c, "teacher_id")
	if !ok {
		return nil
	}
	overview, err := h.svc.GetTeacherSalary(c.UserContext(), auth.CurrentActor(c), teacherID(c, requested))
	if err != nil {
		return helpers.ServiceError(c, err, "get teacher salary")
	}
	return helpers.Success(c, "salary", overview)
}

// GetAttendanceAPI returns the caller's attendance history, newest first
func (h *Handler) GetAttendanceAPI(c *fiber.Ctx) error {
	requested, ok := helpers.UUIDQuery(c, "teacher_id")
	if !ok {
		return nil
	}
	filter := models.AttendanceFilter{
		TeacherID: teacherID(c, requested),
		Status:    models.AttendanceStatus(c.Query("status")),
		Limit:     c.QueryInt("limit", 100),
	}
	records, err := h.svc.ListAttendance(c.UserContext(), auth.CurrentActor(c), filter)
	if err != nil {
		return helpers.ServiceError(c, err, "list attendance")
	}
	return helpers.Success(c, "attendance", records)
}
