package models

import "time"

// EventType classifies a calendar event
type EventType string

const (
	EventClass      EventType = "class"
	EventAssignment EventType = "assignment"
	EventExam       EventType = "exam"
	EventPayment    EventType = "payment"
	EventHoliday    EventType = "holiday"
	EventOther      EventType = "other"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventClass, EventAssignment, EventExam, EventPayment, EventHoliday, EventOther:
		return true
	}
	return false
}

// CalendarEvent represents a calendar event, optionally tied to a course and a teacher
type CalendarEvent struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	EventType     EventType `json:"event_type" db:"event_type"`
	StartTime     time.Time `json:"start_time" db:"start_time"`
	EndTime       time.Time `json:"end_time" db:"end_time"`
	AllDay        bool      `json:"all_day" db:"all_day"`
	Color         string    `json:"color" db:"color"` // display only
	CourseID      *string   `json:"course_id,omitempty" db:"course_id"`
	TeacherID     *string   `json:"teacher_id,omitempty" db:"teacher_id"`
	PaymentAmount *int64    `json:"payment_amount,omitempty" db:"payment_amount"`
	// SourceKey is set on events generated from a course schedule (course_id@slot)
	SourceKey *string   `json:"source_key,omitempty" db:"source_key"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsClass reports whether the event is a unit of attendance.
func (e *CalendarEvent) IsClass() bool {
	return e.EventType == EventClass
}

// AssignedTo reports whether teacherID is the event's assigned teacher.
func (e *CalendarEvent) AssignedTo(teacherID string) bool {
	return e.TeacherID != nil && *e.TeacherID == teacherID
}

// EventFilter narrows down event listings. Zero values are ignored.
type EventFilter struct {
	TeacherID string
	CourseID  string
	EventType EventType
	From      *time.Time
	To        *time.Time
}

// Lecture is the attendance lookup row projected from a class event
type Lecture struct {
	ID        string    `json:"id" db:"id"`
	EventID   string    `json:"event_id" db:"event_id"`
	CourseID  *string   `json:"course_id,omitempty" db:"course_id"`
	TeacherID string    `json:"teacher_id" db:"teacher_id"`
	StartsAt  time.Time `json:"starts_at" db:"starts_at"`
	EndsAt    time.Time `json:"ends_at" db:"ends_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
