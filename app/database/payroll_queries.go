package database

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"swadiq-lms/app/models"
)

// payableStatuses are the states counted by payroll aggregation
const payableStatuses = `('approved', 'paid')`

// SumAttendance aggregates the payable records of one teacher approved in [from, to)
func (r *repo) SumAttendance(ctx context.Context, teacherID string, from, to time.Time) (models.MonthlyTotal, error) {
	query := `SELECT $1::uuid AS teacher_id,
			COUNT(*) AS count,
			COALESCE(SUM(base_amount), 0) AS base_amount,
			COALESCE(SUM(bonus_amount), 0) AS bonus_amount,
			COALESCE(SUM(total_amount), 0) AS sum
		FROM class_attendance
		WHERE teacher_id = $1
		AND status IN ` + payableStatuses + `
		AND approved_at >= $2 AND approved_at < $3`

	var total models.MonthlyTotal
	if err := r.get(ctx, &total, query, teacherID, from, to); err != nil {
		return models.MonthlyTotal{}, err
	}
	return total, nil
}

// SumAttendanceByTeacher aggregates payable records approved in [from, to) per teacher
func (r *repo) SumAttendanceByTeacher(ctx context.Context, from, to time.Time) ([]models.MonthlyTotal, error) {
	query := `SELECT teacher_id,
			COUNT(*) AS count,
			COALESCE(SUM(base_amount), 0) AS base_amount,
			COALESCE(SUM(bonus_amount), 0) AS bonus_amount,
			COALESCE(SUM(total_amount), 0) AS sum
		FROM class_attendance
		WHERE status IN ` + payableStatuses + `
		AND approved_at >= $1 AND approved_at < $2
		GROUP BY teacher_id
		ORDER BY teacher_id`

	totals := []models.MonthlyTotal{}
	if err := r.selectAll(ctx, &totals, query, from, to); err != nil {
		return nil, errors.Wrap(err, "summing attendance by teacher")
	}
	return totals, nil
}
