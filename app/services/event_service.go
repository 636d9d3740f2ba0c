package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"

	"swadiq-lms/app/models"
)

// maxScheduleSpan bounds a single course schedule generation
const maxScheduleSpan = 366 * 24 * time.Hour

// ListEvents returns events matching filter ordered by start time.
func (s *Service) ListEvents(ctx context.Context, actor *models.Actor, filter models.EventFilter) ([]models.CalendarEvent, error) {
	if filter.EventType != "" && !filter.EventType.Valid() {
		return nil, invalid("unknown event_type %q", filter.EventType)
	}
	if err := authorize(actor, ActionViewEvents, Resource{}); err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "listing events")
	}
	if events == nil {
		events = []models.CalendarEvent{}
	}
	return events, nil
}

// GetEvent returns one event.
func (s *Service) GetEvent(ctx context.Context, actor *models.Actor, id string) (*models.CalendarEvent, error) {
	if err := authorize(actor, ActionViewEvents, Resource{}); err != nil {
		return nil, err
	}
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound, "loading event")
	}
	return event, nil
}

// CreateEvent stores a new event and projects a lecture for class events.
func (s *Service) CreateEvent(ctx context.Context, actor *models.Actor, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	if err := authorize(actor, ActionManageEvents, Resource{}); err != nil {
		return nil, err
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	event.ID = ""
	event.SourceKey = nil
	err := s.store.InTx(ctx, func(tx Repository) error {
		if err := tx.CreateEvent(ctx, event); err != nil {
			return errors.Wrap(err, "creating event")
		}
		return projectLecture(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEvent replaces an event's attributes and refreshes its lecture projection.
// Attendance already recorded against it is left untouched.
func (s *Service) UpdateEvent(ctx context.Context, actor *models.Actor, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	if err := authorize(actor, ActionManageEvents, Resource{}); err != nil {
		return nil, err
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	err := s.store.InTx(ctx, func(tx Repository) error {
		current, err := tx.GetEvent(ctx, event.ID)
		if err != nil {
			return notFound(err, ErrEventNotFound, "loading event")
		}
		event.SourceKey = current.SourceKey
		event.CreatedAt = current.CreatedAt

		referenced, err := hasAttendance(ctx, tx, event.ID)
		if err != nil {
			return err
		}
		if referenced {
			log.Printf("[EVENTS] warning: event %s is updated after attendance was recorded", event.ID)
		}

		if err := tx.UpdateEvent(ctx, event); err != nil {
			return notFound(err, ErrEventNotFound, "updating event")
		}
		if !event.IsClass() || event.TeacherID == nil {
			if referenced {
				return nil
			}
			return errors.Wrap(tx.DeleteLectureByEvent(ctx, event.ID), "dropping lecture")
		}
		return projectLecture(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// DeleteEvent removes an event that no attendance record refers to.
func (s *Service) DeleteEvent(ctx context.Context, actor *models.Actor, id string) error {
	if err := authorize(actor, ActionManageEvents, Resource{}); err != nil {
		return err
	}
	return s.store.InTx(ctx, func(tx Repository) error {
		if _, err := tx.GetEvent(ctx, id); err != nil {
			return notFound(err, ErrEventNotFound, "loading event")
		}
		referenced, err := hasAttendance(ctx, tx, id)
		if err != nil {
			return err
		}
		if referenced {
			return ErrEventHasAttendance
		}
		if err := tx.DeleteLectureByEvent(ctx, id); err != nil {
			return errors.Wrap(err, "dropping lecture")
		}
		return notFound(tx.DeleteEvent(ctx, id), ErrEventNotFound, "deleting event")
	})
}

// GenerateSummary reports a course schedule projection run
type GenerateSummary struct {
	CourseID string                 `json:"course_id"`
	Created  int                    `json:"created"`
	Existing int                    `json:"existing"`
	Events   []models.CalendarEvent `json:"events"`
}

// GenerateCourseEvents emits one class event per scheduled slot of a course.
// Slots are keyed by course and start time, so running it again only adds
// slots that do not exist yet and never overwrites edited events.
func (s *Service) GenerateCourseEvents(ctx context.Context, actor *models.Actor, courseID string, schedule models.CourseSchedule) (*GenerateSummary, error) {
	if err := authorize(actor, ActionScheduleCourse, Resource{}); err != nil {
		return nil, err
	}
	slots, err := s.scheduleSlots(schedule)
	if err != nil {
		return nil, err
	}

	summary := &GenerateSummary{CourseID: courseID, Events: []models.CalendarEvent{}}
	err = s.store.InTx(ctx, func(tx Repository) error {
		course, err := tx.GetCourse(ctx, courseID)
		if err != nil {
			return notFound(err, ErrCourseNotFound, "loading course")
		}
		for _, start := range slots {
			key := SlotKey(course.ID, start)
			event := &models.CalendarEvent{
				Title:     course.Title,
				EventType: models.EventClass,
				StartTime: start,
				EndTime:   start.Add(time.Duration(schedule.DurationMinutes) * time.Minute),
				Color:     schedule.Color,
				CourseID:  &course.ID,
				TeacherID: course.TeacherID,
				SourceKey: &key,
			}
			created, err := tx.InsertGeneratedEvent(ctx, event)
			if err != nil {
				return errors.Wrap(err, "inserting scheduled event")
			}
			if !created {
				summary.Existing++
				continue
			}
			if err := projectLecture(ctx, tx, event); err != nil {
				return err
			}
			summary.Created++
			summary.Events = append(summary.Events, *event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[EVENTS] course %s schedule: %d created, %d already present", courseID, summary.Created, summary.Existing)
	return summary, nil
}

// SlotKey is the stable identity of a generated class slot.
func SlotKey(courseID string, start time.Time) string {
	return courseID + "@" + start.UTC().Format(time.RFC3339)
}

func (s *Service) scheduleSlots(schedule models.CourseSchedule) ([]time.Time, error) {
	clock, err := time.Parse("15:04", strings.TrimSpace(schedule.StartClock))
	if err != nil {
		return nil, invalid("start_clock must be HH:MM")
	}
	if schedule.DurationMinutes <= 0 {
		return nil, invalid("duration_minutes must be positive")
	}
	if len(schedule.Weekdays) == 0 {
		return nil, invalid("at least one weekday is required")
	}
	days := make(map[time.Weekday]bool, len(schedule.Weekdays))
	for _, d := range schedule.Weekdays {
		wd, ok := models.DayOfWeek(strings.ToLower(string(d))).Weekday()
		if !ok {
			return nil, invalid("unknown weekday %q", d)
		}
		days[wd] = true
	}

	loc := s.opts.Location
	from := schedule.From.In(loc)
	to := schedule.To.In(loc)
	first := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	last := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)
	if last.Before(first) {
		return nil, invalid("to must not be before from")
	}
	if last.Sub(first) > maxScheduleSpan {
		return nil, invalid("schedule spans more than a year")
	}

	var slots []time.Time
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if !days[day.Weekday()] {
			continue
		}
		slots = append(slots, time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc))
	}
	return slots, nil
}

func validateEvent(event *models.CalendarEvent) error {
	if event == nil {
		return invalid("event is required")
	}
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return invalid("title is required")
	}
	if !event.EventType.Valid() {
		return invalid("unknown event_type %q", event.EventType)
	}
	if event.StartTime.IsZero() || event.EndTime.IsZero() {
		return invalid("start_time and end_time are required")
	}
	if event.EndTime.Before(event.StartTime) {
		return invalid("end_time must not be before start_time")
	}
	if event.PaymentAmount != nil && *event.PaymentAmount < 0 {
		return invalid("payment_amount must not be negative")
	}
	if event.IsClass() && event.TeacherID == nil {
		log.Printf("[EVENTS] warning: class event %q has no teacher and cannot be completed", event.Title)
	}
	return nil
}

// projectLecture keeps the lecture row of a class event in step with the event.
func projectLecture(ctx context.Context, tx Repository, event *models.CalendarEvent) error {
	if !event.IsClass() || event.TeacherID == nil {
		return nil
	}
	lecture := &models.Lecture{
		EventID:   event.ID,
		CourseID:  event.CourseID,
		TeacherID: *event.TeacherID,
		StartsAt:  event.StartTime,
		EndsAt:    event.EndTime,
	}
	if err := tx.UpsertLecture(ctx, lecture); err != nil {
		return errors.Wrapf(err, "projecting lecture for event %s", event.ID)
	}
	return nil
}

func hasAttendance(ctx context.Context, tx Repository, eventID string) (bool, error) {
	records, err := tx.ListAttendance(ctx, models.AttendanceFilter{EventID: eventID, Limit: 1})
	if err != nil {
		return false, errors.Wrap(err, "checking attendance")
	}
	return len(records) > 0, nil
}
