package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"swadiq-lms/app/models"
)

const salaryColumns = `id, teacher_id, month, year, total_classes, total_amount, bonus_amount, final_amount,
	status, payment_date, notes, created_at, updated_at`

func (r *repo) GetMonthlySalary(ctx context.Context, id string) (*models.MonthlySalaryRecord, error) {
	var record models.MonthlySalaryRecord
	if err := r.get(ctx, &record, `SELECT `+salaryColumns+` FROM monthly_salaries WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) GetMonthlySalaryFor(ctx context.Context, teacherID string, month, year int) (*models.MonthlySalaryRecord, error) {
	var record models.MonthlySalaryRecord
	err := r.get(ctx, &record, `SELECT `+salaryColumns+`
		FROM monthly_salaries
		WHERE teacher_id = $1 AND month = $2 AND year = $3`, teacherID, month, year)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpsertMonthlySalary creates or replaces the ledger row of a teacher/month.
// Paid and cancelled rows are left alone and reported as not written.
func (r *repo) UpsertMonthlySalary(ctx context.Context, record *models.MonthlySalaryRecord) (bool, error) {
	query := `
		INSERT INTO monthly_salaries (teacher_id, month, year, total_classes, total_amount, bonus_amount,
			final_amount, status, payment_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (teacher_id, month, year)
		DO UPDATE SET total_classes = EXCLUDED.total_classes, total_amount = EXCLUDED.total_amount,
			bonus_amount = EXCLUDED.bonus_amount, final_amount = EXCLUDED.final_amount,
			status = EXCLUDED.status, payment_date = EXCLUDED.payment_date, notes = EXCLUDED.notes,
			updated_at = NOW()
		WHERE monthly_salaries.status IN ('pending', 'processing')
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		record.TeacherID, record.Month, record.Year, record.TotalClasses, record.TotalAmount, record.BonusAmount,
		record.FinalAmount, record.Status, record.PaymentDate, record.Notes,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateMonthlySalaryStatus moves a ledger row only while its stored status equals expected
func (r *repo) UpdateMonthlySalaryStatus(ctx context.Context, record *models.MonthlySalaryRecord, expected models.SalaryStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE monthly_salaries
		SET status = $1, payment_date = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`,
		record.Status, record.PaymentDate, record.ID, expected)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// ListMonthlySalaries retrieves ledger rows newest month first
func (r *repo) ListMonthlySalaries(ctx context.Context, teacherID string, month, year int) ([]models.MonthlySalaryRecord, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if teacherID != "" {
		add("teacher_id = $%d", teacherID)
	}
	if month != 0 {
		add("month = $%d", month)
	}
	if year != 0 {
		add("year = $%d", year)
	}

	query := `SELECT ` + salaryColumns + ` FROM monthly_salaries`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY year DESC, month DESC, teacher_id ASC`

	records := []models.MonthlySalaryRecord{}
	if err := r.selectAll(ctx, &records, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting monthly salaries")
	}
	return records, nil
}

// CreatePayRate records a new per-class rate
func (r *repo) CreatePayRate(ctx context.Context, rate *models.PayRate) error {
	query := `
		INSERT INTO pay_rates (scope, scope_id, amount, effective_from, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(ctx, query, rate.Scope, rate.ScopeID, rate.Amount, rate.EffectiveFrom).
		Scan(&rate.ID, &rate.CreatedAt)
}

// LatestPayRate returns the newest rate for a teacher or course effective at the given time
func (r *repo) LatestPayRate(ctx context.Context, scope models.PayRateScope, scopeID string, at time.Time) (*models.PayRate, error) {
	var rate models.PayRate
	err := r.get(ctx, &rate, `
		SELECT id, scope, scope_id, amount, effective_from, created_at
		FROM pay_rates
		WHERE scope = $1 AND scope_id = $2 AND effective_from <= $3
		ORDER BY effective_from DESC, created_at DESC
		LIMIT 1`, scope, scopeID, at)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}
