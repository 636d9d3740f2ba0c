package models

import "time"

// Course is the read-only view of a course owned by the enrollment subsystem
type Course struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	TeacherID *string   `json:"teacher_id,omitempty" db:"teacher_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CourseSchedule describes the weekly slots of a course between two dates.
// StartClock is "HH:MM" in the application time zone.
type CourseSchedule struct {
	Weekdays        []DayOfWeek `json:"weekdays" validate:"required,min=1,dive,required"`
	StartClock      string      `json:"start_clock" validate:"required"`
	DurationMinutes int         `json:"duration_minutes" validate:"required,gt=0,lte=720"`
	From            time.Time   `json:"from" validate:"required"`
	To              time.Time   `json:"to" validate:"required"`
	Color           string      `json:"color"`
}
