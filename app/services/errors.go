package services

import "github.com/pkg/errors"

// Error is a domain failure with a stable machine-readable code, so callers can
// tell "already approved" from "not your class" without parsing messages.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// validation
	ErrValidation = &Error{Code: "validation_failed", Message: "validation failed"}

	// not found
	ErrEventNotFound      = &Error{Code: "event_not_found", Message: "event not found"}
	ErrAttendanceNotFound = &Error{Code: "attendance_not_found", Message: "attendance record not found"}
	ErrSalaryNotFound     = &Error{Code: "salary_not_found", Message: "monthly salary record not found"}
	ErrCourseNotFound     = &Error{Code: "course_not_found", Message: "course not found"}

	// state
	ErrEventNotClassType  = &Error{Code: "event_not_class_type", Message: "event is not a class"}
	ErrEventInFuture      = &Error{Code: "event_in_future", Message: "class has not started yet"}
	ErrTeacherMismatch    = &Error{Code: "teacher_mismatch", Message: "class is assigned to another teacher"}
	ErrInvalidTransition  = &Error{Code: "invalid_transition", Message: "invalid status transition"}
	ErrEventHasAttendance = &Error{Code: "event_has_attendance", Message: "event is referenced by attendance records"}
	ErrMonthNotEnded      = &Error{Code: "month_not_ended", Message: "month has not ended yet"}

	// access
	ErrForbidden = &Error{Code: "forbidden", Message: "insufficient permissions"}
)

// ErrRecordNotFound is returned by Store implementations when a lookup matches nothing.
var ErrRecordNotFound = errors.New("record not found")

// AsError extracts the domain error from err, if any.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

func transition(from, to interface{}) error {
	return errors.Wrapf(ErrInvalidTransition, "%v -> %v", from, to)
}

// notFound maps a store miss to the given domain error and wraps anything else.
func notFound(err error, domain *Error, op string) error {
	if errors.Is(err, ErrRecordNotFound) {
		return domain
	}
	return errors.Wrap(err, op)
}
