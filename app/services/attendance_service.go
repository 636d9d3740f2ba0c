package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"

	"swadiq-lms/app/models"
)

// MarkCompleteInput is the teacher's request to record a class as taught
type MarkCompleteInput struct {
	TeacherID string
	EventID   string
	Notes     string
}

// MarkCompleteResult carries the single attendance record for the pair.
// AlreadyRecorded is true when the record had already left the scheduled state.
type MarkCompleteResult struct {
	Record          *models.AttendanceRecord `json:"record"`
	AlreadyRecorded bool                     `json:"already_recorded"`
}

// MarkComplete records that the teacher taught the class event. Repeated calls
// for the same teacher/event never create a second record.
func (s *Service) MarkComplete(ctx context.Context, actor *models.Actor, in MarkCompleteInput) (*MarkCompleteResult, error) {
	in.TeacherID = strings.TrimSpace(in.TeacherID)
	in.EventID = strings.TrimSpace(in.EventID)
	if in.TeacherID == "" || in.EventID == "" {
		return nil, invalid("teacher_id and event_id are required")
	}
	if err := authorize(actor, ActionMarkComplete, Resource{OwnerID: in.TeacherID}); err != nil {
		return nil, err
	}

	var (
		result MarkCompleteResult
		event  *models.CalendarEvent
	)
	err := s.store.InTx(ctx, func(tx Repository) error {
		var err error
		event, err = tx.GetEvent(ctx, in.EventID)
		if err != nil {
			return notFound(err, ErrEventNotFound, "loading event")
		}
		if !event.IsClass() {
			return ErrEventNotClassType
		}
		teacherID, courseID, err := classAssignment(ctx, tx, event)
		if err != nil {
			return err
		}
		if teacherID != in.TeacherID {
			return ErrTeacherMismatch
		}

		existing, err := tx.GetAttendanceByTeacherEvent(ctx, in.TeacherID, in.EventID)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return errors.Wrap(err, "loading attendance")
		}
		if existing != nil && existing.Status != models.AttendanceScheduled {
			result = MarkCompleteResult{Record: existing, AlreadyRecorded: true}
			return nil
		}

		now := s.now()
		if event.StartTime.After(now) {
			return ErrEventInFuture
		}

		record := attendanceFromEvent(event, in.TeacherID, courseID)
		record.Status = models.AttendanceCompleted
		record.CompletedAt = &now
		record.Notes = strings.TrimSpace(in.Notes)

		if existing != nil {
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			record.BaseAmount = existing.BaseAmount
		}
		if record.BaseAmount <= 0 {
			if record.BaseAmount, err = s.resolveBaseAmount(ctx, tx, event.StartTime, courseID, in.TeacherID); err != nil {
				return err
			}
		}

		if existing != nil {
			ok, err := tx.UpdateAttendance(ctx, record, models.AttendanceScheduled)
			if err != nil {
				return errors.Wrap(err, "completing attendance")
			}
			if ok {
				result = MarkCompleteResult{Record: record}
				return nil
			}
		} else {
			created, err := tx.InsertAttendance(ctx, record)
			if err != nil {
				return errors.Wrap(err, "inserting attendance")
			}
			if created {
				result = MarkCompleteResult{Record: record}
				return nil
			}
		}

		// lost the race: read the winner
		winner, err := tx.GetAttendanceByTeacherEvent(ctx, in.TeacherID, in.EventID)
		if err != nil {
			return errors.Wrap(err, "loading concurrent attendance")
		}
		result = MarkCompleteResult{Record: winner, AlreadyRecorded: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyRecorded {
		log.Printf("[ATTENDANCE] teacher %s completed event %s (record %s, base %d)",
			in.TeacherID, in.EventID, result.Record.ID, result.Record.BaseAmount)
	}
	s.decorate(ctx, result.Record, event)
	return &result, nil
}

// classAssignment reads the teacher and course of a class from its lecture
// row, falling back to the event itself when no lecture was projected.
func classAssignment(ctx context.Context, tx Repository, event *models.CalendarEvent) (string, *string, error) {
	lecture, err := tx.GetLectureByEvent(ctx, event.ID)
	switch {
	case err == nil:
		return lecture.TeacherID, lecture.CourseID, nil
	case !errors.Is(err, ErrRecordNotFound):
		return "", nil, errors.Wrap(err, "loading lecture")
	case event.TeacherID == nil:
		return "", event.CourseID, nil
	}
	return *event.TeacherID, event.CourseID, nil
}

// attendanceFromEvent maps the event read shape onto the attendance write
// shape. The event's start_time is stored as class_date; nothing is copied
// by name.
func attendanceFromEvent(event *models.CalendarEvent, teacherID string, courseID *string) *models.AttendanceRecord {
	record := &models.AttendanceRecord{
		TeacherID: teacherID,
		EventID:   event.ID,
		ClassDate: event.StartTime,
	}
	if courseID != nil {
		id := *courseID
		record.CourseID = &id
	}
	return record
}

// resolveBaseAmount picks the course rate, then the teacher rate, then the configured default.
func (s *Service) resolveBaseAmount(ctx context.Context, repo Repository, at time.Time, courseID *string, teacherID string) (int64, error) {
	if courseID != nil {
		rate, err := repo.LatestPayRate(ctx, models.PayRateCourse, *courseID, at)
		if err == nil {
			return rate.Amount, nil
		}
		if !errors.Is(err, ErrRecordNotFound) {
			return 0, errors.Wrap(err, "loading course pay rate")
		}
	}
	rate, err := repo.LatestPayRate(ctx, models.PayRateTeacher, teacherID, at)
	if err == nil {
		return rate.Amount, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return 0, errors.Wrap(err, "loading teacher pay rate")
	}
	return s.opts.DefaultBaseAmount, nil
}

// ListAttendance returns attendance records newest first with display fields filled in.
func (s *Service) ListAttendance(ctx context.Context, actor *models.Actor, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("unknown status %q", filter.Status)
	}
	action := ActionViewAttendance
	if filter.TeacherID == "" {
		// the review queue spans all teachers
		action = ActionReviewAttendance
	}
	if err := authorize(actor, action, Resource{OwnerID: filter.TeacherID}); err != nil {
		return nil, err
	}
	records, err := s.store.ListAttendance(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "listing attendance")
	}
	for i := range records {
		s.decorate(ctx, &records[i], nil)
	}
	return nonNilAttendance(records), nil
}

// decorate fills the looked-up display fields. Lookup failures leave them empty.
func (s *Service) decorate(ctx context.Context, record *models.AttendanceRecord, event *models.CalendarEvent) {
	if record == nil {
		return
	}
	if event == nil || event.ID != record.EventID {
		e, err := s.store.GetEvent(ctx, record.EventID)
		if err != nil {
			return
		}
		event = e
	}
	start, end := event.StartTime, event.EndTime
	record.EventTitle = event.Title
	record.EventStart = &start
	record.EventEnd = &end
	if record.CourseID != nil {
		if course, err := s.store.GetCourse(ctx, *record.CourseID); err == nil {
			record.CourseTitle = course.Title
		}
	}
}
