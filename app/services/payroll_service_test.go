package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swadiq-lms/app/models"
	"swadiq-lms/app/services"
)

func TestReconcile(t *testing.T) {
	total := models.MonthlyTotal{TeacherID: "t1", Month: 3, Year: 2025, Count: 2, Sum: 340}
	ledger := &models.MonthlySalaryRecord{TeacherID: "t1", Month: 3, Year: 2025, FinalAmount: 1000, Status: models.SalaryPending}
	cancelled := &models.MonthlySalaryRecord{TeacherID: "t1", Month: 3, Year: 2025, FinalAmount: 1000, Status: models.SalaryCancelled}
	snapshot := &models.MonthlySalaryRecord{TeacherID: "t1", Month: 3, Year: 2025, FinalAmount: 340, Status: models.SalaryProcessing}

	tests := []struct {
		name            string
		model           models.PayModel
		ledger          *models.MonthlySalaryRecord
		wantEarnings    int64
		wantDiscrepancy int64
		wantStatus      string
	}{
		{"retainer adds ledger", models.PayModelRetainerPlusPerClass, ledger, 1340, 0, "pending"},
		{"retainer without ledger", models.PayModelRetainerPlusPerClass, nil, 340, 0, ""},
		{"retainer ignores cancelled ledger", models.PayModelRetainerPlusPerClass, cancelled, 340, 0, ""},
		{"per class reports drift", models.PayModelPerClassOnly, ledger, 340, 660, "pending"},
		{"per class matching snapshot", models.PayModelPerClassOnly, snapshot, 340, 0, "processing"},
		{"per class without ledger", models.PayModelPerClassOnly, nil, 340, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := services.Reconcile(tt.model, tt.ledger, total)
			assert.Equal(t, tt.wantEarnings, r.Earnings)
			assert.Equal(t, tt.wantDiscrepancy, r.Discrepancy)
			assert.Equal(t, tt.wantStatus, r.LedgerStatus)
			assert.Equal(t, int64(340), r.AttendanceAmount)
			assert.Equal(t, 2, r.AttendanceClasses)
			assert.Equal(t, tt.model, r.PayModel)
		})
	}
}

func TestGetTeacherSalary(t *testing.T) {
	for _, tc := range []struct {
		model           models.PayModel
		wantEarnings    int64
		wantDiscrepancy int64
	}{
		{models.PayModelRetainerPlusPerClass, 1170, 0},
		{models.PayModelPerClassOnly, 170, 830},
	} {
		t.Run(string(tc.model), func(t *testing.T) {
			f := newFixture(t, tc.model)
			f.approved(t, date(time.March, 14, 9), 20)
			f.completed(t, date(time.March, 13, 9))
			_, err := f.svc.UpsertMonthlySalary(f.ctx, f.admin, services.MonthlySalaryInput{
				TeacherID: f.teacher.ID, Month: 3, Year: 2025, TotalAmount: 900, BonusAmount: 100,
			})
			require.NoError(t, err)
			_, err = f.svc.UpsertMonthlySalary(f.ctx, f.admin, services.MonthlySalaryInput{
				TeacherID: f.teacher.ID, Month: 2, Year: 2025, TotalAmount: 800,
			})
			require.NoError(t, err)

			overview, err := f.svc.GetTeacherSalary(f.ctx, f.teacher, f.teacher.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantEarnings, overview.CurrentMonthEarnings)
			assert.Equal(t, tc.wantDiscrepancy, overview.Discrepancy)
			assert.Equal(t, int64(1000), overview.LedgerAmount)
			assert.Equal(t, int64(170), overview.AttendanceAmount)
			require.NotNil(t, overview.Ledger)
			assert.Equal(t, 3, overview.Ledger.Month)

			require.Len(t, overview.AttendanceHistory, 2)
			assert.Equal(t, 14, overview.AttendanceHistory[0].ClassDate.Day())
			assert.NotEmpty(t, overview.AttendanceHistory[0].EventTitle)
			require.Len(t, overview.SalaryHistory, 2)
			assert.Equal(t, 3, overview.SalaryHistory[0].Month)
			assert.Equal(t, 2, overview.SalaryHistory[1].Month)
		})
	}
}

func TestGetTeacherSalaryAccess(t *testing.T) {
	f := newFixture(t, models.PayModelRetainerPlusPerClass)

	overview, err := f.svc.GetTeacherSalary(f.ctx, f.teacher, f.teacher.ID)
	require.NoError(t, err)
	assert.Zero(t, overview.CurrentMonthEarnings)
	assert.Nil(t, overview.Ledger)
	assert.NotNil(t, overview.AttendanceHistory)
	assert.NotNil(t, overview.SalaryHistory)

	_, err = f.svc.GetTeacherSalary(f.ctx, newTeacher(), f.teacher.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = f.svc.GetTeacherSalary(f.ctx, f.admin, f.teacher.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetTeacherSalary(f.ctx, f.admin, "")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestCloseMonthRequiresEndedMonth(t *testing.T) {
	f := newFixture(t, models.PayModelPerClassOnly)
	_, err := f.svc.CloseMonth(f.ctx, f.admin, 3, 2025)
	assert.ErrorIs(t, err, services.ErrMonthNotEnded)

	_, err = f.svc.CloseMonth(f.ctx, f.teacher, 2, 2025)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestCloseAndPayPerClassOnly(t *testing.T) {
	f := newFixture(t, models.PayModelPerClassOnly)
	first := f.approved(t, date(time.March, 10, 9), 0)
	second := f.approved(t, date(time.March, 12, 9), 50)
	pending := f.completed(t, date(time.March, 13, 9))

	f.clock.Set(date(time.April, 2, 8))
	summary, err := f.svc.CloseMonth(f.ctx, f.admin, 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Written)
	assert.Equal(t, []string{f.teacher.ID}, summary.TeacherID)

	ledgers, err := f.svc.ListMonthlySalaries(f.ctx, f.admin, f.teacher.ID, 3, 2025)
	require.NoError(t, err)
	require.Len(t, ledgers, 1)
	ledger := ledgers[0]
	assert.Equal(t, models.SalaryProcessing, ledger.Status)
	assert.Equal(t, 2, ledger.TotalClasses)
	assert.Equal(t, int64(300), ledger.TotalAmount)
	assert.Equal(t, int64(50), ledger.BonusAmount)
	assert.Equal(t, int64(350), ledger.FinalAmount)

	rows, err := f.svc.ReconcileMonth(f.ctx, f.admin, 3, 2025)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(350), rows[0].Earnings)
	assert.Zero(t, rows[0].Discrepancy)

	paid, err := f.svc.PayMonthlySalary(f.ctx, f.admin, ledger.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, paid.AttendancePaid)
	assert.Equal(t, models.SalaryPaid, paid.Salary.Status)
	require.NotNil(t, paid.Salary.PaymentDate)

	settled, err := f.svc.ListAttendance(f.ctx, f.admin, models.AttendanceFilter{TeacherID: f.teacher.ID, Status: models.AttendancePaid})
	require.NoError(t, err)
	ids := make([]string, 0, len(settled))
	for _, r := range settled {
		ids = append(ids, r.ID)
		assert.NotNil(t, r.PaidAt)
	}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
	untouched, err := f.svc.ListAttendance(f.ctx, f.admin, models.AttendanceFilter{EventID: pending.EventID})
	require.NoError(t, err)
	require.Len(t, untouched, 1)
	assert.Equal(t, models.AttendanceCompleted, untouched[0].Status)

	// paid records still count for their month
	total, err := f.svc.ComputeMonthlyTotal(f.ctx, f.admin, f.teacher.ID, 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, total.Count)
	assert.Equal(t, int64(350), total.Sum)

	_, err = f.svc.PayMonthlySalary(f.ctx, f.admin, ledger.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	again, err := f.svc.CloseMonth(f.ctx, f.admin, 3, 2025)
	require.NoError(t, err)
	assert.Zero(t, again.Written)
	assert.Equal(t, 1, again.Skipped)

	_, err = f.svc.UpsertMonthlySalary(f.ctx, f.admin, services.MonthlySalaryInput{
		TeacherID: f.teacher.ID, Month: 3, Year: 2025, TotalAmount: 1,
	})
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestCloseMonthRetainerProcessesPendingLedger(t *testing.T) {
	f := newFixture(t, models.PayModelRetainerPlusPerClass)
	other := newTeacher()

	kept, err := f.svc.UpsertMonthlySalary(f.ctx, f.admin, services.MonthlySalaryInput{
		TeacherID: f.teacher.ID, Month: 2, Year: 2025, TotalAmount: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SalaryPending, kept.Status)
	assert.Equal(t, int64(1000), kept.FinalAmount)

	voided, err := f.svc.UpsertMonthlySalary(f.ctx, f.admin, services.MonthlySalaryInput{
		TeacherID: other.ID, Month: 2, Year: 2025, TotalAmount: 500,
	})
	require.NoError(t, err)
	_, err = f.svc.CancelMonthlySalary(f.ctx, f.admin, voided.ID)
	require.NoError(t, err)

	summary, err := f.svc.CloseMonth(f.ctx, f.admin, 2, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Written)
	assert.Equal(t, 1, summary.Skipped)

	ledgers, err := f.svc.ListMonthlySalaries(f.ctx, f.admin, "", 2, 2025)
	require.NoError(t, err)
	require.Len(t, ledgers, 2)
	byTeacher := map[string]models.MonthlySalaryRecord{}
	for _, l := range ledgers {
		byTeacher[l.TeacherID] = l
	}
	assert.Equal(t, models.SalaryProcessing, byTeacher[f.teacher.ID].Status)
	assert.Equal(t, int64(1000), byTeacher[f.teacher.ID].FinalAmount)
	assert.Equal(t, models.SalaryCancelled, byTeacher[other.ID].Status)

	_, err = f.svc.CancelMonthlySalary(f.ctx, f.admin, voided.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestUpsertMonthlySalary(t *testing.T) {
	f := newFixture(t, models.PayModelRetainerPlusPerClass)
	in := services.MonthlySalaryInput{TeacherID: f.teacher.ID, Month: 1, Year: 2025, TotalClasses: 4, TotalAmount: 600, BonusAmount: 40}

	created, err := f.svc.UpsertMonthlySalary(f.ctx, f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, int64(640), created.FinalAmount)

	in.BonusAmount = 60
	updated, err := f.svc.UpsertMonthlySalary(f.ctx, f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, int64(660), updated.FinalAmount)

	_, err = f.svc.UpsertMonthlySalary(f.ctx, f.teacher, in)
	assert.ErrorIs(t, err, services.ErrForbidden)

	in.TotalAmount = -1
	_, err = f.svc.UpsertMonthlySalary(f.ctx, f.admin, in)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = f.svc.PayMonthlySalary(f.ctx, f.admin, "missing")
	assert.ErrorIs(t, err, services.ErrSalaryNotFound)

	_, err = f.svc.ListMonthlySalaries(f.ctx, f.teacher, "", 0, 0)
	assert.ErrorIs(t, err, services.ErrForbidden)
	own, err := f.svc.ListMonthlySalaries(f.ctx, f.teacher, f.teacher.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestClosePreviousMonth(t *testing.T) {
	f := newFixture(t, models.PayModelPerClassOnly)
	f.approved(t, date(time.March, 10, 9), 0)

	f.clock.Set(date(time.April, 1, 0).Add(30 * time.Minute))
	summary, err := f.svc.ClosePreviousMonth(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Month)
	assert.Equal(t, 2025, summary.Year)
	assert.Equal(t, 1, summary.Written)
}
