package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"swadiq-lms/app/models"
	"swadiq-lms/app/services"
)

func (r *repo) GetMonthlySalary(ctx context.Context, id string) (*models.MonthlySalaryRecord, error) {
	t, done := r.begin()
	defer done()
	s, ok := t.salaries[id]
	if !ok {
		return nil, services.ErrRecordNotFound
	}
	return &s, nil
}

func (r *repo) GetMonthlySalaryFor(ctx context.Context, teacherID string, month, year int) (*models.MonthlySalaryRecord, error) {
	t, done := r.begin()
	defer done()
	if s, ok := findSalary(t, teacherID, month, year); ok {
		return &s, nil
	}
	return nil, services.ErrRecordNotFound
}

func findSalary(t *tables, teacherID string, month, year int) (models.MonthlySalaryRecord, bool) {
	for _, s := range t.salaries {
		if s.TeacherID == teacherID && s.Month == month && s.Year == year {
			return s, true
		}
	}
	return models.MonthlySalaryRecord{}, false
}

func (r *repo) UpsertMonthlySalary(ctx context.Context, record *models.MonthlySalaryRecord) (bool, error) {
	t, done := r.begin()
	defer done()
	now := time.Now().UTC()
	if current, ok := findSalary(t, record.TeacherID, record.Month, record.Year); ok {
		if current.Status != models.SalaryPending && current.Status != models.SalaryProcessing {
			return false, nil
		}
		record.ID = current.ID
		record.CreatedAt = current.CreatedAt
	} else {
		record.ID = uuid.NewString()
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	t.salaries[record.ID] = *record
	return true, nil
}

func (r *repo) UpdateMonthlySalaryStatus(ctx context.Context, record *models.MonthlySalaryRecord, expected models.SalaryStatus) (bool, error) {
	t, done := r.begin()
	defer done()
	current, ok := t.salaries[record.ID]
	if !ok || current.Status != expected {
		return false, nil
	}
	current.Status = record.Status
	current.PaymentDate = record.PaymentDate
	current.UpdatedAt = time.Now().UTC()
	t.salaries[record.ID] = current
	record.UpdatedAt = current.UpdatedAt
	return true, nil
}

func (r *repo) ListMonthlySalaries(ctx context.Context, teacherID string, month, year int) ([]models.MonthlySalaryRecord, error) {
	t, done := r.begin()
	defer done()
	records := make([]models.MonthlySalaryRecord, 0)
	for _, s := range t.salaries {
		if teacherID != "" && s.TeacherID != teacherID {
			continue
		}
		if month != 0 && s.Month != month {
			continue
		}
		if year != 0 && s.Year != year {
			continue
		}
		records = append(records, s)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		return a.TeacherID < b.TeacherID
	})
	return records, nil
}

func (r *repo) CreatePayRate(ctx context.Context, rate *models.PayRate) error {
	t, done := r.begin()
	defer done()
	rate.ID = uuid.NewString()
	rate.CreatedAt = time.Now().UTC()
	t.rates = append(t.rates, *rate)
	return nil
}

func (r *repo) LatestPayRate(ctx context.Context, scope models.PayRateScope, scopeID string, at time.Time) (*models.PayRate, error) {
	t, done := r.begin()
	defer done()
	var latest *models.PayRate
	for i := range t.rates {
		rate := t.rates[i]
		if rate.Scope != scope || rate.ScopeID != scopeID || rate.EffectiveFrom.After(at) {
			continue
		}
		// later entries win ties on EffectiveFrom
		if latest == nil || !rate.EffectiveFrom.Before(latest.EffectiveFrom) {
			latest = &rate
		}
	}
	if latest == nil {
		return nil, services.ErrRecordNotFound
	}
	return latest, nil
}
