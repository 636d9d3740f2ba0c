package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"swadiq-lms/app/models"
	"swadiq-lms/app/services"
)

const eventColumns = `id, title, description, event_type, start_time, end_time, all_day, color,
	course_id, teacher_id, payment_amount, source_key, created_at, updated_at`

// CreateEvent adds a new event to the database
func (r *repo) CreateEvent(ctx context.Context, event *models.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (title, description, event_type, start_time, end_time, all_day, color,
			course_id, teacher_id, payment_amount, source_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		event.Title, event.Description, event.EventType, event.StartTime, event.EndTime, event.AllDay, event.Color,
		event.CourseID, event.TeacherID, event.PaymentAmount, event.SourceKey,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

// InsertGeneratedEvent adds a schedule-generated event unless its source key already exists
func (r *repo) InsertGeneratedEvent(ctx context.Context, event *models.CalendarEvent) (bool, error) {
	query := `
		INSERT INTO calendar_events (title, description, event_type, start_time, end_time, all_day, color,
			course_id, teacher_id, payment_amount, source_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (source_key) DO NOTHING
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		event.Title, event.Description, event.EventType, event.StartTime, event.EndTime, event.AllDay, event.Color,
		event.CourseID, event.TeacherID, event.PaymentAmount, event.SourceKey,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateEvent updates an existing event
func (r *repo) UpdateEvent(ctx context.Context, event *models.CalendarEvent) error {
	query := `
		UPDATE calendar_events
		SET title = $1, description = $2, event_type = $3, start_time = $4, end_time = $5,
			all_day = $6, color = $7, course_id = $8, teacher_id = $9, payment_amount = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		event.Title, event.Description, event.EventType, event.StartTime, event.EndTime,
		event.AllDay, event.Color, event.CourseID, event.TeacherID, event.PaymentAmount, event.ID,
	).Scan(&event.UpdatedAt)
	if err == sql.ErrNoRows {
		return services.ErrRecordNotFound
	}
	return err
}

// DeleteEvent deletes an event by ID
func (r *repo) DeleteEvent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return services.ErrEventHasAttendance
		}
		return err
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return services.ErrRecordNotFound
	}
	return nil
}

func (r *repo) GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	err := r.get(ctx, &event, `SELECT `+eventColumns+` FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents retrieves events ordered by start_time
func (r *repo) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.TeacherID != "" {
		add("teacher_id = $%d", filter.TeacherID)
	}
	if filter.CourseID != "" {
		add("course_id = $%d", filter.CourseID)
	}
	if filter.EventType != "" {
		add("event_type = $%d", filter.EventType)
	}
	if filter.From != nil {
		add("end_time >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("start_time < $%d", *filter.To)
	}

	query := `SELECT ` + eventColumns + ` FROM calendar_events`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY start_time ASC, id ASC`

	events := []models.CalendarEvent{}
	if err := r.selectAll(ctx, &events, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting events")
	}
	return events, nil
}

// UpsertLecture creates or refreshes the lecture row projected from a class event
func (r *repo) UpsertLecture(ctx context.Context, lecture *models.Lecture) error {
	query := `
		INSERT INTO lectures (event_id, course_id, teacher_id, starts_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (event_id)
		DO UPDATE SET course_id = EXCLUDED.course_id, teacher_id = EXCLUDED.teacher_id,
			starts_at = EXCLUDED.starts_at, ends_at = EXCLUDED.ends_at, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		lecture.EventID, lecture.CourseID, lecture.TeacherID, lecture.StartsAt, lecture.EndsAt,
	).Scan(&lecture.ID, &lecture.CreatedAt, &lecture.UpdatedAt)
}

func (r *repo) GetLectureByEvent(ctx context.Context, eventID string) (*models.Lecture, error) {
	var lecture models.Lecture
	err := r.get(ctx, &lecture, `
		SELECT id, event_id, course_id, teacher_id, starts_at, ends_at, created_at, updated_at
		FROM lectures WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, err
	}
	return &lecture, nil
}

func (r *repo) DeleteLectureByEvent(ctx context.Context, eventID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM lectures WHERE event_id = $1`, eventID)
	return err
}

// GetCourse reads the course title/teacher owned by the enrollment subsystem
func (r *repo) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := r.get(ctx, &course, `SELECT id, title, teacher_id, created_at, updated_at FROM courses WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &course, nil
}
