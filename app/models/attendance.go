package models

import "time"

// DefaultBaseAmount is the per-class rate used when no pay rate is configured
const DefaultBaseAmount int64 = 150

// AttendanceRecord is the completion/approval record of one teacher for one class event.
// Logically unique on (TeacherID, EventID).
type AttendanceRecord struct {
	ID              string           `json:"id" db:"id"`
	TeacherID       string           `json:"teacher_id" db:"teacher_id"`
	EventID         string           `json:"event_id" db:"event_id"`
	CourseID        *string          `json:"course_id,omitempty" db:"course_id"`
	Status          AttendanceStatus `json:"status" db:"status"`
	Notes           string           `json:"notes" db:"notes"`
	ClassDate       time.Time        `json:"class_date" db:"class_date"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty" db:"approved_at"`
	PaidAt          *time.Time       `json:"paid_at,omitempty" db:"paid_at"`
	BaseAmount      int64            `json:"base_amount" db:"base_amount"`
	BonusAmount     int64            `json:"bonus_amount" db:"bonus_amount"`
	TotalAmount     int64            `json:"total_amount" db:"total_amount"`
	RejectionReason *string          `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`

	// Looked up for display, never stored
	EventTitle  string     `json:"event_title,omitempty" db:"-"`
	EventStart  *time.Time `json:"event_start,omitempty" db:"-"`
	EventEnd    *time.Time `json:"event_end,omitempty" db:"-"`
	CourseTitle string     `json:"course_title,omitempty" db:"-"`
}

// AttendanceFilter narrows down attendance listings. Zero values are ignored.
type AttendanceFilter struct {
	TeacherID string
	EventID   string
	Status    AttendanceStatus
	// ApprovedFrom/ApprovedTo bound approved_at, half-open [from, to)
	ApprovedFrom *time.Time
	ApprovedTo   *time.Time
	Limit        int
}

// MonthlyTotal is the attendance-derived payroll figure for one teacher and month
type MonthlyTotal struct {
	TeacherID   string `json:"teacher_id" db:"teacher_id"`
	Month       int    `json:"month" db:"-"`
	Year        int    `json:"year" db:"-"`
	Count       int    `json:"count" db:"count"`
	BaseAmount  int64  `json:"base_amount" db:"base_amount"`
	BonusAmount int64  `json:"bonus_amount" db:"bonus_amount"`
	Sum         int64  `json:"sum" db:"sum"`
}
