package services

import (
	"context"
	"time"

	"swadiq-lms/app/models"
)

type (
	// Repository is the persistence contract of the payroll pipeline.
	// Lookups that match nothing return ErrRecordNotFound.
	Repository interface {
		CreateEvent(ctx context.Context, event *models.CalendarEvent) error
		// InsertGeneratedEvent inserts an event keyed by SourceKey; created is false when the key already exists.
		InsertGeneratedEvent(ctx context.Context, event *models.CalendarEvent) (created bool, err error)
		UpdateEvent(ctx context.Context, event *models.CalendarEvent) error
		DeleteEvent(ctx context.Context, id string) error
		GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error)
		// ListEvents returns matching events ordered by start time.
		ListEvents(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, error)

		UpsertLecture(ctx context.Context, lecture *models.Lecture) error
		GetLectureByEvent(ctx context.Context, eventID string) (*models.Lecture, error)
		DeleteLectureByEvent(ctx context.Context, eventID string) error

		GetCourse(ctx context.Context, id string) (*models.Course, error)

		GetAttendance(ctx context.Context, id string) (*models.AttendanceRecord, error)
		GetAttendanceByTeacherEvent(ctx context.Context, teacherID, eventID string) (*models.AttendanceRecord, error)
		// InsertAttendance relies on the (teacher_id, event_id) uniqueness; created is false when another row won.
		InsertAttendance(ctx context.Context, record *models.AttendanceRecord) (created bool, err error)
		// UpdateAttendance writes record only if the stored status still equals expected.
		UpdateAttendance(ctx context.Context, record *models.AttendanceRecord, expected models.AttendanceStatus) (bool, error)
		// ListAttendance returns matching records, newest first.
		ListAttendance(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
		// SumAttendance aggregates payable records of one teacher approved in [from, to).
		SumAttendance(ctx context.Context, teacherID string, from, to time.Time) (models.MonthlyTotal, error)
		// SumAttendanceByTeacher aggregates payable records approved in [from, to) per teacher.
		SumAttendanceByTeacher(ctx context.Context, from, to time.Time) ([]models.MonthlyTotal, error)

		GetMonthlySalary(ctx context.Context, id string) (*models.MonthlySalaryRecord, error)
		GetMonthlySalaryFor(ctx context.Context, teacherID string, month, year int) (*models.MonthlySalaryRecord, error)
		// UpsertMonthlySalary inserts or replaces the (teacher_id, month, year) row.
		// written is false when the stored row is already paid or cancelled.
		UpsertMonthlySalary(ctx context.Context, record *models.MonthlySalaryRecord) (written bool, err error)
		// UpdateMonthlySalaryStatus writes status/payment date only if the stored status still equals expected.
		UpdateMonthlySalaryStatus(ctx context.Context, record *models.MonthlySalaryRecord, expected models.SalaryStatus) (bool, error)
		// ListMonthlySalaries returns ledger rows newest first. Empty teacherID or zero month/year match all.
		ListMonthlySalaries(ctx context.Context, teacherID string, month, year int) ([]models.MonthlySalaryRecord, error)

		CreatePayRate(ctx context.Context, rate *models.PayRate) error
		// LatestPayRate returns the newest rate for scope/scopeID effective at or before at.
		LatestPayRate(ctx context.Context, scope models.PayRateScope, scopeID string, at time.Time) (*models.PayRate, error)
	}

	// Store is a Repository that can run a unit of work atomically.
	Store interface {
		Repository

		// InTx runs fn in a single transaction; a non-nil error from fn rolls it back.
		InTx(ctx context.Context, fn func(tx Repository) error) error
	}
)
