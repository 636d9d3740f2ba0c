package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"swadiq-lms/app/models"
)

// ComputeMonthlyTotal sums the payable attendance of a teacher approved in month/year.
// Payable means approved or paid: settling a record keeps it in the month it
// was approved in. This is the ground truth the ledger is reconciled against.
func (s *Service) ComputeMonthlyTotal(ctx context.Context, actor *models.Actor, teacherID string, month, year int) (models.MonthlyTotal, error) {
	if err := validMonth(month, year); err != nil {
		return models.MonthlyTotal{}, err
	}
	if strings.TrimSpace(teacherID) == "" {
		return models.MonthlyTotal{}, invalid("teacher_id is required")
	}
	if err := authorize(actor, ActionViewPayroll, Resource{OwnerID: teacherID}); err != nil {
		return models.MonthlyTotal{}, err
	}
	return s.monthlyTotal(ctx, s.store, teacherID, month, year)
}

func (s *Service) monthlyTotal(ctx context.Context, repo Repository, teacherID string, month, year int) (models.MonthlyTotal, error) {
	from, to := s.monthBounds(month, year)
	total, err := repo.SumAttendance(ctx, teacherID, from, to)
	if err != nil {
		return models.MonthlyTotal{}, errors.Wrap(err, "summing attendance")
	}
	total.TeacherID = teacherID
	total.Month = month
	total.Year = year
	return total, nil
}

// Reconciliation combines the ledger figure and the attendance total for one teacher and month
type Reconciliation struct {
	TeacherID         string          `json:"teacher_id"`
	Month             int             `json:"month"`
	Year              int             `json:"year"`
	PayModel          models.PayModel `json:"pay_model"`
	LedgerAmount      int64           `json:"ledger_amount"`
	LedgerStatus      string          `json:"ledger_status,omitempty"`
	AttendanceAmount  int64           `json:"attendance_amount"`
	AttendanceClasses int             `json:"attendance_classes"`
	Earnings          int64           `json:"earnings"`
	// Discrepancy is ledger minus attendance when the ledger is meant to be a snapshot of the same classes
	Discrepancy int64 `json:"discrepancy"`
}

// Reconcile applies the pay model. Under retainer_plus_per_class the ledger and the
// attendance total are disjoint components and are added; under per_class_only the
// ledger is a snapshot of the same classes, so only the attendance total is paid
// and any difference is reported. Cancelled ledger rows count as absent.
func Reconcile(model models.PayModel, ledger *models.MonthlySalaryRecord, total models.MonthlyTotal) Reconciliation {
	r := Reconciliation{
		TeacherID:         total.TeacherID,
		Month:             total.Month,
		Year:              total.Year,
		PayModel:          model,
		AttendanceAmount:  total.Sum,
		AttendanceClasses: total.Count,
	}
	if ledger != nil && ledger.Status != models.SalaryCancelled {
		r.LedgerAmount = ledger.FinalAmount
		r.LedgerStatus = string(ledger.Status)
	}
	switch model {
	case models.PayModelPerClassOnly:
		r.Earnings = r.AttendanceAmount
		if r.LedgerStatus != "" {
			r.Discrepancy = r.LedgerAmount - r.AttendanceAmount
		}
	default:
		r.Earnings = r.LedgerAmount + r.AttendanceAmount
	}
	return r
}

// SalaryOverview is what a teacher sees on the salary page
type SalaryOverview struct {
	Reconciliation
	CurrentMonthEarnings int64                        `json:"current_month_earnings"`
	Ledger               *models.MonthlySalaryRecord  `json:"ledger,omitempty"`
	AttendanceHistory    []models.AttendanceRecord    `json:"attendance_history"`
	SalaryHistory        []models.MonthlySalaryRecord `json:"salary_history"`
}

// GetTeacherSalary returns the reconciled current-month earnings together with
// attendance and ledger history, newest first. Reads are not transactional.
func (s *Service) GetTeacherSalary(ctx context.Context, actor *models.Actor, teacherID string) (*SalaryOverview, error) {
	teacherID = strings.TrimSpace(teacherID)
	if teacherID == "" {
		return nil, invalid("teacher_id is required")
	}
	if err := authorize(actor, ActionViewSalary, Resource{OwnerID: teacherID}); err != nil {
		return nil, err
	}

	now := s.now()
	month, year := int(now.Month()), now.Year()

	total, err := s.monthlyTotal(ctx, s.store, teacherID, month, year)
	if err != nil {
		return nil, err
	}
	ledger, err := s.store.GetMonthlySalaryFor(ctx, teacherID, month, year)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			return nil, errors.Wrap(err, "loading monthly salary")
		}
		ledger = nil
	}

	attendance, err := s.store.ListAttendance(ctx, models.AttendanceFilter{TeacherID: teacherID, Limit: s.opts.HistoryLimit})
	if err != nil {
		return nil, errors.Wrap(err, "listing attendance history")
	}
	for i := range attendance {
		s.decorate(ctx, &attendance[i], nil)
	}
	salaries, err := s.store.ListMonthlySalaries(ctx, teacherID, 0, 0)
	if err != nil {
		return nil, errors.Wrap(err, "listing salary history")
	}

	rec := Reconcile(s.opts.PayModel, ledger, total)
	return &SalaryOverview{
		Reconciliation:       rec,
		CurrentMonthEarnings: rec.Earnings,
		Ledger:               ledger,
		AttendanceHistory:    nonNilAttendance(attendance),
		SalaryHistory:        nonNilSalaries(salaries),
	}, nil
}

// ReconcileMonth lists both aggregates for every teacher that has either one in month/year.
func (s *Service) ReconcileMonth(ctx context.Context, actor *models.Actor, month, year int) ([]Reconciliation, error) {
	if err := validMonth(month, year); err != nil {
		return nil, err
	}
	if err := authorize(actor, ActionViewPayroll, Resource{}); err != nil {
		return nil, err
	}
	from, to := s.monthBounds(month, year)
	totals, err := s.store.SumAttendanceByTeacher(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "summing attendance")
	}
	ledgers, err := s.store.ListMonthlySalaries(ctx, "", month, year)
	if err != nil {
		return nil, errors.Wrap(err, "listing ledger")
	}

	byTeacher := make(map[string]*models.MonthlySalaryRecord, len(ledgers))
	for i := range ledgers {
		byTeacher[ledgers[i].TeacherID] = &ledgers[i]
	}
	seen := make(map[string]bool, len(totals))
	rows := make([]Reconciliation, 0, len(totals)+len(ledgers))
	for _, t := range totals {
		t.Month, t.Year = month, year
		rows = append(rows, Reconcile(s.opts.PayModel, byTeacher[t.TeacherID], t))
		seen[t.TeacherID] = true
	}
	for _, l := range ledgers {
		if seen[l.TeacherID] {
			continue
		}
		empty := models.MonthlyTotal{TeacherID: l.TeacherID, Month: month, Year: year}
		rows = append(rows, Reconcile(s.opts.PayModel, byTeacher[l.TeacherID], empty))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TeacherID < rows[j].TeacherID })
	return rows, nil
}

// CloseSummary reports what a monthly close did
type CloseSummary struct {
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	PayModel  models.PayModel `json:"pay_model"`
	Written   int             `json:"written"`
	Skipped   int             `json:"skipped"`
	TeacherID []string        `json:"teacher_ids"`
}

// CloseMonth freezes a finished month. Under per_class_only it writes one ledger
// snapshot per teacher from the attendance total; under retainer_plus_per_class
// the ledger holds the retainer, so pending rows only move to processing.
// Paid and cancelled ledger rows are never touched.
func (s *Service) CloseMonth(ctx context.Context, actor *models.Actor, month, year int) (*CloseSummary, error) {
	if err := validMonth(month, year); err != nil {
		return nil, err
	}
	if err := authorize(actor, ActionClosePayroll, Resource{}); err != nil {
		return nil, err
	}
	from, to := s.monthBounds(month, year)
	if s.now().Before(to) {
		return nil, errors.Wrapf(ErrMonthNotEnded, "%04d-%02d", year, month)
	}

	summary := &CloseSummary{Month: month, Year: year, PayModel: s.opts.PayModel, TeacherID: []string{}}
	err := s.store.InTx(ctx, func(tx Repository) error {
		if s.opts.PayModel == models.PayModelPerClassOnly {
			return s.snapshotMonth(ctx, tx, summary, from, to)
		}
		return s.processRetainers(ctx, tx, summary)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[PAYROLL] closed %04d-%02d (%s): %d written, %d skipped",
		year, month, s.opts.PayModel, summary.Written, summary.Skipped)
	return summary, nil
}

func (s *Service) snapshotMonth(ctx context.Context, tx Repository, summary *CloseSummary, from, to time.Time) error {
	totals, err := tx.SumAttendanceByTeacher(ctx, from, to)
	if err != nil {
		return errors.Wrap(err, "summing attendance")
	}
	for _, t := range totals {
		record, err := tx.GetMonthlySalaryFor(ctx, t.TeacherID, summary.Month, summary.Year)
		switch {
		case errors.Is(err, ErrRecordNotFound):
			record = &models.MonthlySalaryRecord{TeacherID: t.TeacherID, Month: summary.Month, Year: summary.Year}
		case err != nil:
			return errors.Wrap(err, "loading monthly salary")
		case record.Status == models.SalaryPaid || record.Status == models.SalaryCancelled:
			summary.Skipped++
			continue
		}
		record.TotalClasses = t.Count
		record.TotalAmount = t.BaseAmount
		record.BonusAmount = t.BonusAmount
		record.Status = models.SalaryProcessing
		record.Recompute()
		written, err := tx.UpsertMonthlySalary(ctx, record)
		if err != nil {
			return errors.Wrap(err, "writing ledger snapshot")
		}
		if !written {
			// settled after it was read
			summary.Skipped++
			continue
		}
		summary.Written++
		summary.TeacherID = append(summary.TeacherID, t.TeacherID)
	}
	return nil
}

func (s *Service) processRetainers(ctx context.Context, tx Repository, summary *CloseSummary) error {
	ledgers, err := tx.ListMonthlySalaries(ctx, "", summary.Month, summary.Year)
	if err != nil {
		return errors.Wrap(err, "listing ledger")
	}
	for i := range ledgers {
		record := &ledgers[i]
		if record.Status != models.SalaryPending {
			summary.Skipped++
			continue
		}
		record.Status = models.SalaryProcessing
		ok, err := tx.UpdateMonthlySalaryStatus(ctx, record, models.SalaryPending)
		if err != nil {
			return errors.Wrap(err, "processing ledger")
		}
		if !ok {
			summary.Skipped++
			continue
		}
		summary.Written++
		summary.TeacherID = append(summary.TeacherID, record.TeacherID)
	}
	return nil
}

// MonthlySalaryInput is an admin-entered ledger figure
type MonthlySalaryInput struct {
	TeacherID    string
	Month        int
	Year         int
	TotalClasses int
	TotalAmount  int64
	BonusAmount  int64
	Notes        string
}

// UpsertMonthlySalary creates or replaces the ledger entry for teacher/month/year.
// Entries that are already paid or cancelled cannot be edited.
func (s *Service) UpsertMonthlySalary(ctx context.Context, actor *models.Actor, in MonthlySalaryInput) (*models.MonthlySalaryRecord, error) {
	in.TeacherID = strings.TrimSpace(in.TeacherID)
	if in.TeacherID == "" {
		return nil, invalid("teacher_id is required")
	}
	if err := validMonth(in.Month, in.Year); err != nil {
		return nil, err
	}
	if in.TotalClasses < 0 || in.TotalAmount < 0 || in.BonusAmount < 0 {
		return nil, invalid("amounts must not be negative")
	}
	if err := authorize(actor, ActionManageLedger, Resource{}); err != nil {
		return nil, err
	}

	var record *models.MonthlySalaryRecord
	err := s.store.InTx(ctx, func(tx Repository) error {
		var err error
		record, err = tx.GetMonthlySalaryFor(ctx, in.TeacherID, in.Month, in.Year)
		switch {
		case errors.Is(err, ErrRecordNotFound):
			record = &models.MonthlySalaryRecord{
				TeacherID: in.TeacherID,
				Month:     in.Month,
				Year:      in.Year,
				Status:    models.SalaryPending,
			}
		case err != nil:
			return errors.Wrap(err, "loading monthly salary")
		case record.Status == models.SalaryPaid || record.Status == models.SalaryCancelled:
			return errors.Wrapf(ErrInvalidTransition, "ledger entry is %s", record.Status)
		}
		record.TotalClasses = in.TotalClasses
		record.TotalAmount = in.TotalAmount
		record.BonusAmount = in.BonusAmount
		record.Notes = strings.TrimSpace(in.Notes)
		record.Recompute()
		written, err := tx.UpsertMonthlySalary(ctx, record)
		if err != nil {
			return errors.Wrap(err, "writing monthly salary")
		}
		if !written {
			return errors.Wrap(ErrInvalidTransition, "ledger entry was settled concurrently")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// PaySummary reports a ledger disbursement
type PaySummary struct {
	Salary         *models.MonthlySalaryRecord `json:"salary"`
	AttendancePaid int                         `json:"attendance_paid"`
}

// PayMonthlySalary confirms disbursement of a ledger entry and, in the same
// transaction, settles every approved attendance record of that teacher and month.
func (s *Service) PayMonthlySalary(ctx context.Context, actor *models.Actor, salaryID string) (*PaySummary, error) {
	if err := authorize(actor, ActionManageLedger, Resource{}); err != nil {
		return nil, err
	}
	summary := &PaySummary{}
	err := s.store.InTx(ctx, func(tx Repository) error {
		record, err := s.advanceSalary(ctx, tx, salaryID, models.SalaryPaid)
		if err != nil {
			return err
		}
		summary.Salary = record

		from, to := s.monthBounds(record.Month, record.Year)
		approved, err := tx.ListAttendance(ctx, models.AttendanceFilter{
			TeacherID:    record.TeacherID,
			Status:       models.AttendanceApproved,
			ApprovedFrom: &from,
			ApprovedTo:   &to,
		})
		if err != nil {
			return errors.Wrap(err, "listing approved attendance")
		}
		now := s.now()
		for i := range approved {
			err := advanceRecord(ctx, tx, &approved[i], models.AttendancePaid, func(r *models.AttendanceRecord) {
				r.PaidAt = &now
			})
			if err != nil {
				return err
			}
			summary.AttendancePaid++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[PAYROLL] salary %s paid to %s: %d (%d attendance records settled)",
		summary.Salary.ID, summary.Salary.TeacherID, summary.Salary.FinalAmount, summary.AttendancePaid)
	return summary, nil
}

// CancelMonthlySalary voids a ledger entry that has not been paid.
func (s *Service) CancelMonthlySalary(ctx context.Context, actor *models.Actor, salaryID string) (*models.MonthlySalaryRecord, error) {
	if err := authorize(actor, ActionManageLedger, Resource{}); err != nil {
		return nil, err
	}
	var record *models.MonthlySalaryRecord
	err := s.store.InTx(ctx, func(tx Repository) error {
		var err error
		record, err = s.advanceSalary(ctx, tx, salaryID, models.SalaryCancelled)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) advanceSalary(ctx context.Context, tx Repository, salaryID string, next models.SalaryStatus) (*models.MonthlySalaryRecord, error) {
	salaryID = strings.TrimSpace(salaryID)
	if salaryID == "" {
		return nil, invalid("salary id is required")
	}
	record, err := tx.GetMonthlySalary(ctx, salaryID)
	if err != nil {
		return nil, notFound(err, ErrSalaryNotFound, "loading monthly salary")
	}
	current := record.Status
	if !current.CanTransitionTo(next) {
		return nil, transition(current, next)
	}
	record.Status = next
	if next == models.SalaryPaid {
		now := s.now()
		record.PaymentDate = &now
	}
	ok, err := tx.UpdateMonthlySalaryStatus(ctx, record, current)
	if err != nil {
		return nil, errors.Wrap(err, "updating monthly salary")
	}
	if !ok {
		return nil, transition(current, next)
	}
	return record, nil
}

// ListMonthlySalaries returns ledger history, newest first.
func (s *Service) ListMonthlySalaries(ctx context.Context, actor *models.Actor, teacherID string, month, year int) ([]models.MonthlySalaryRecord, error) {
	action := ActionViewSalary
	if teacherID == "" {
		action = ActionManageLedger
	}
	if err := authorize(actor, action, Resource{OwnerID: teacherID}); err != nil {
		return nil, err
	}
	records, err := s.store.ListMonthlySalaries(ctx, teacherID, month, year)
	if err != nil {
		return nil, errors.Wrap(err, "listing monthly salaries")
	}
	return nonNilSalaries(records), nil
}

// PayRateInput configures a per-class base amount
type PayRateInput struct {
	Scope         models.PayRateScope
	ScopeID       string
	Amount        int64
	EffectiveFrom *time.Time
}

// SetPayRate records a new rate. Older rates stay for classes taught before EffectiveFrom.
func (s *Service) SetPayRate(ctx context.Context, actor *models.Actor, in PayRateInput) (*models.PayRate, error) {
	if in.Scope != models.PayRateTeacher && in.Scope != models.PayRateCourse {
		return nil, invalid("scope must be teacher or course")
	}
	in.ScopeID = strings.TrimSpace(in.ScopeID)
	if in.ScopeID == "" {
		return nil, invalid("scope_id is required")
	}
	if in.Amount <= 0 {
		return nil, invalid("amount must be positive")
	}
	if err := authorize(actor, ActionManageRates, Resource{}); err != nil {
		return nil, err
	}
	rate := &models.PayRate{
		Scope:         in.Scope,
		ScopeID:       in.ScopeID,
		Amount:        in.Amount,
		EffectiveFrom: s.now(),
	}
	if in.EffectiveFrom != nil {
		rate.EffectiveFrom = *in.EffectiveFrom
	}
	if err := s.store.CreatePayRate(ctx, rate); err != nil {
		return nil, errors.Wrap(err, "creating pay rate")
	}
	return rate, nil
}

func nonNilAttendance(records []models.AttendanceRecord) []models.AttendanceRecord {
	if records == nil {
		return []models.AttendanceRecord{}
	}
	return records
}

func nonNilSalaries(records []models.MonthlySalaryRecord) []models.MonthlySalaryRecord {
	if records == nil {
		return []models.MonthlySalaryRecord{}
	}
	return records
}
