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

const attendanceColumns = `id, teacher_id, event_id, course_id, status, notes, class_date,
	completed_at, approved_at, paid_at, base_amount, bonus_amount, total_amount, rejection_reason,
	created_at, updated_at`

func (r *repo) GetAttendance(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := r.get(ctx, &record, `SELECT `+attendanceColumns+` FROM class_attendance WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetAttendanceByTeacherEvent retrieves the single record of a teacher for a class event
func (r *repo) GetAttendanceByTeacherEvent(ctx context.Context, teacherID, eventID string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := r.get(ctx, &record, `SELECT `+attendanceColumns+`
		FROM class_attendance
		WHERE teacher_id = $1 AND event_id = $2`, teacherID, eventID)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// InsertAttendance saves a new record. A concurrent insert for the same
// teacher/event makes this a no-op and the caller reads the winner.
// An event deleted in the meantime is reported as not found.
func (r *repo) InsertAttendance(ctx context.Context, record *models.AttendanceRecord) (bool, error) {
	query := `INSERT INTO class_attendance (teacher_id, event_id, course_id, status, notes, class_date,
			completed_at, approved_at, paid_at, base_amount, bonus_amount, total_amount, rejection_reason,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		ON CONFLICT (teacher_id, event_id) DO NOTHING
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		record.TeacherID, record.EventID, record.CourseID, record.Status, record.Notes, record.ClassDate,
		record.CompletedAt, record.ApprovedAt, record.PaidAt, record.BaseAmount, record.BonusAmount,
		record.TotalAmount, record.RejectionReason,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if pqCode(err) == pqForeignKeyViolation {
		return false, services.ErrEventNotFound
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateAttendance writes the record only while its stored status equals expected
func (r *repo) UpdateAttendance(ctx context.Context, record *models.AttendanceRecord, expected models.AttendanceStatus) (bool, error) {
	query := `UPDATE class_attendance
		SET status = $1, notes = $2, completed_at = $3, approved_at = $4, paid_at = $5,
			base_amount = $6, bonus_amount = $7, total_amount = $8, rejection_reason = $9, updated_at = NOW()
		WHERE id = $10 AND status = $11
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		record.Status, record.Notes, record.CompletedAt, record.ApprovedAt, record.PaidAt,
		record.BaseAmount, record.BonusAmount, record.TotalAmount, record.RejectionReason,
		record.ID, expected,
	).Scan(&record.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListAttendance retrieves attendance records newest class first
func (r *repo) ListAttendance(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
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
	if filter.EventID != "" {
		add("event_id = $%d", filter.EventID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.ApprovedFrom != nil {
		add("approved_at >= $%d", *filter.ApprovedFrom)
	}
	if filter.ApprovedTo != nil {
		add("approved_at < $%d", *filter.ApprovedTo)
	}

	query := `SELECT ` + attendanceColumns + ` FROM class_attendance`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY class_date DESC, created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	records := []models.AttendanceRecord{}
	if err := r.selectAll(ctx, &records, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting attendance")
	}
	return records, nil
}
