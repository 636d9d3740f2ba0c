package events

import (
	"strings"
	"time"

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

type eventRequest struct {
	Title         string    `json:"title" validate:"required,max=255"`
	Description   string    `json:"description"`
	EventType     string    `json:"event_type" validate:"required,event_type"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required,gtefield=StartTime"`
	AllDay        bool      `json:"all_day"`
	Color         string    `json:"color" validate:"max=20"`
	CourseID      *string   `json:"course_id" validate:"omitempty,uuid"`
	TeacherID     *string   `json:"teacher_id" validate:"omitempty,uuid"`
	PaymentAmount *int64    `json:"payment_amount" validate:"omitempty,gte=0"`
}

func (r eventRequest) toModel() *models.CalendarEvent {
	return &models.CalendarEvent{
		Title:         r.Title,
		Description:   r.Description,
		EventType:     models.EventType(r.EventType),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		AllDay:        r.AllDay,
		Color:         r.Color,
		CourseID:      r.CourseID,
		TeacherID:     r.TeacherID,
		PaymentAmount: r.PaymentAmount,
	}
}

type scheduleRequest struct {
	Weekdays        []string `json:"weekdays" validate:"required,min=1,dive,weekday"`
	StartClock      string   `json:"start_clock" validate:"required,datetime=15:04"`
	DurationMinutes int      `json:"duration_minutes" validate:"required,gt=0,lte=720"`
	From            string   `json:"from" validate:"required,datetime=2006-01-02"`
	To              string   `json:"to" validate:"required,datetime=2006-01-02"`
	Color           string   `json:"color" validate:"max=20"`
}

// GetEventsAPI returns a list of events
func (h *Handler) GetEventsAPI(c *fiber.Ctx) error {
	loc := h.svc.Location()
	from, err := helpers.TimeQuery(c, "from", loc)
	if err != nil {
		return helpers.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	to, err := helpers.TimeQuery(c, "to", loc)
	if err != nil {
		return helpers.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	teacherID, ok := helpers.UUIDQuery(c, "teacher_id")
	if !ok {
		return nil
	}
	courseID, ok := helpers.UUIDQuery(c, "course_id")
	if !ok {
		return nil
	}
	filter := models.EventFilter{
		TeacherID: teacherID,
		CourseID:  courseID,
		EventType: models.EventType(c.Query("event_type")),
		From:      from,
		To:        to,
	}

	events, err := h.svc.ListEvents(c.UserContext(), auth.CurrentActor(c), filter)
	if err != nil {
		return helpers.ServiceError(c, err, "list events")
	}
	return helpers.Success(c, "events", events)
}

func (h *Handler) GetEventAPI(c *fiber.Ctx) error {
	id, ok := helpers.UUIDParam(c, "id")
	if !ok {
		return nil
	}
	event, err := h.svc.GetEvent(c.UserContext(), auth.CurrentActor(c), id)
	if err != nil {
		return helpers.ServiceError(c, err, "get event")
	}
	return helpers.Success(c, "event", event)
}

// CreateEventAPI creates a new event
func (h *Handler) CreateEventAPI(c *fiber.Ctx) error {
	var req eventRequest
	if err := helpers.ParseBody(c, &req); err != nil {
		return helpers.ValidationError(c, err)
	}

	event, err := h.svc.CreateEvent(c.UserContext(), auth.CurrentActor(c), req.toModel())
	if err != nil {
		return helpers.ServiceError(c, err, "create event")
	}
	return helpers.SuccessWithCode(c, fiber.StatusCreated, "event", event)
}

// UpdateEventAPI updates an existing event
func (h *Handler) UpdateEventAPI(c *fiber.Ctx) error {
	id, ok := helpers.UUIDParam(c, "id")
	if !ok {
		return nil
	}
	var req eventRequest
	if err := helpers.ParseBody(c, &req); err != nil {
		return helpers.ValidationError(c, err)
	}
	event := req.toModel()
	event.ID = id

	event, err := h.svc.UpdateEvent(c.UserContext(), auth.CurrentActor(c), event)
	if err != nil {
		return helpers.ServiceError(c, err, "update event")
	}
	return helpers.Success(c, "event", event)
}

// DeleteEventAPI deletes an event
func (h *Handler) DeleteEventAPI(c *fiber.Ctx) error {
	id, ok := helpers.UUIDParam(c, "id")
	if !ok {
		return nil
	}
	if err := h.svc.DeleteEvent(c.UserContext(), auth.CurrentActor(c), id); err != nil {
		return helpers.ServiceError(c, err, "delete event")
	}
	return helpers.Message(c, "Event deleted successfully")
}

// GenerateScheduleAPI projects a course's weekly schedule onto class events
func (h *Handler) GenerateScheduleAPI(c *fiber.Ctx) error {
	courseID, ok := helpers.UUIDParam(c, "id")
	if !ok {
		return nil
	}
	var req scheduleRequest
	if err := helpers.ParseBody(c, &req); err != nil {
		return helpers.ValidationError(c, err)
	}

	loc := h.svc.Location()
	from, _ := time.ParseInLocation("2006-01-02", req.From, loc)
	to, _ := time.ParseInLocation("2006-01-02", req.To, loc)
	schedule := models.CourseSchedule{
		StartClock:      req.StartClock,
		DurationMinutes: req.DurationMinutes,
		From:            from,
		To:              to,
		Color:           req.Color,
	}
	for _, d := range req.Weekdays {
		schedule.Weekdays = append(schedule.Weekdays, models.DayOfWeek(strings.ToLower(d)))
	}

	summary, err := h.svc.GenerateCourseEvents(c.UserContext(), auth.CurrentActor(c), courseID, schedule)
	if err != nil {
		return helpers.ServiceError(c, err, "generate course events")
	}
	return helpers.Success(c, "schedule", summary)
}
