package models

import "time"

// AttendanceStatus is the lifecycle state of an attendance record.
type AttendanceStatus string

const (
	AttendanceScheduled AttendanceStatus = "scheduled"
	AttendanceCompleted AttendanceStatus = "completed"
	AttendanceApproved  AttendanceStatus = "approved"
	AttendanceRejected  AttendanceStatus = "rejected"
	AttendancePaid      AttendanceStatus = "paid"
)

var attendanceTransitions = map[AttendanceStatus][]AttendanceStatus{
	AttendanceScheduled: {AttendanceCompleted},
	AttendanceCompleted: {AttendanceApproved, AttendanceRejected},
	AttendanceApproved:  {AttendancePaid},
}

// Valid reports whether s is a known status.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceScheduled, AttendanceCompleted, AttendanceApproved, AttendanceRejected, AttendancePaid:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s AttendanceStatus) CanTransitionTo(next AttendanceStatus) bool {
	for _, allowed := range attendanceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s AttendanceStatus) Terminal() bool {
	return s == AttendancePaid || s == AttendanceRejected
}

// Payable reports whether records in this state count towards payroll.
func (s AttendanceStatus) Payable() bool {
	return s == AttendanceApproved || s == AttendancePaid
}

// SalaryStatus is the lifecycle state of a monthly salary ledger entry.
type SalaryStatus string

const (
	SalaryPending    SalaryStatus = "pending"
	SalaryProcessing SalaryStatus = "processing"
	SalaryPaid       SalaryStatus = "paid"
	SalaryCancelled  SalaryStatus = "cancelled"
)

var salaryTransitions = map[SalaryStatus][]SalaryStatus{
	SalaryPending:    {SalaryProcessing, SalaryPaid, SalaryCancelled},
	SalaryProcessing: {SalaryPaid, SalaryCancelled},
}

// CanTransitionTo reports whether the ledger state machine allows s -> next.
func (s SalaryStatus) CanTransitionTo(next SalaryStatus) bool {
	for _, allowed := range salaryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Role is a coarse actor role resolved by the identity provider.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// DayOfWeek defines the days of the week for schedules.
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

var weekdays = map[DayOfWeek]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

// Weekday converts d to a time.Weekday. ok is false for unknown values.
func (d DayOfWeek) Weekday() (wd time.Weekday, ok bool) {
	wd, ok = weekdays[d]
	return wd, ok
}

// PayModel decides how the ledger and the attendance total are combined.
type PayModel string

const (
	// PayModelRetainerPlusPerClass adds the ledger figure to the attendance total
	PayModelRetainerPlusPerClass PayModel = "retainer_plus_per_class"
	// PayModelPerClassOnly treats the ledger as a snapshot of the attendance total
	PayModelPerClassOnly PayModel = "per_class_only"
)

// Valid reports whether m is a known pay model.
func (m PayModel) Valid() bool {
	return m == PayModelRetainerPlusPerClass || m == PayModelPerClassOnly
}
