package models

import "time"

// MonthlySalaryRecord is the per-teacher-per-month payroll ledger entry.
// Logically unique on (TeacherID, Month, Year).
type MonthlySalaryRecord struct {
	ID           string       `json:"id" db:"id"`
	TeacherID    string       `json:"teacher_id" db:"teacher_id"`
	Month        int          `json:"month" db:"month"`
	Year         int          `json:"year" db:"year"`
	TotalClasses int          `json:"total_classes" db:"total_classes"`
	TotalAmount  int64        `json:"total_amount" db:"total_amount"`
	BonusAmount  int64        `json:"bonus_amount" db:"bonus_amount"`
	FinalAmount  int64        `json:"final_amount" db:"final_amount"`
	Status       SalaryStatus `json:"status" db:"status"`
	PaymentDate  *time.Time   `json:"payment_date,omitempty" db:"payment_date"`
	Notes        string       `json:"notes" db:"notes"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// Recompute derives FinalAmount from its components.
func (r *MonthlySalaryRecord) Recompute() {
	r.FinalAmount = r.TotalAmount + r.BonusAmount
}

// PayRateScope selects what a pay rate applies to.
type PayRateScope string

const (
	PayRateTeacher PayRateScope = "teacher"
	PayRateCourse  PayRateScope = "course"
)

// PayRate is a per-class base amount for a teacher or a course, effective from a date
type PayRate struct {
	ID            string       `json:"id" db:"id"`
	Scope         PayRateScope `json:"scope" db:"scope"`
	ScopeID       string       `json:"scope_id" db:"scope_id"`
	Amount        int64        `json:"amount" db:"amount"`
	EffectiveFrom time.Time    `json:"effective_from" db:"effective_from"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// MonthBounds returns the half-open interval [start, end) of month/year in loc.
func MonthBounds(month, year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
