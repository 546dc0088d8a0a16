package payroll

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tajhr/hrpay-backend-go/internal/domain/attendance"
	"github.com/tajhr/hrpay-backend-go/internal/domain/employee"
	"github.com/tajhr/hrpay-backend-go/internal/domain/loan"
	"github.com/tajhr/hrpay-backend-go/internal/domain/payroll"
)

type memPayrollRepo struct {
	records map[string]payroll.Record
	seq     int
}

func newMemPayrollRepo() *memPayrollRepo {
	return &memPayrollRepo{records: make(map[string]payroll.Record)}
}

func (r *memPayrollRepo) findByPeriod(employeeID string, month, year int) (payroll.Record, bool) {
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.PeriodMonth == month && rec.PeriodYear == year {
			return rec, true
		}
	}
	return payroll.Record{}, false
}

func (r *memPayrollRepo) Upsert(_ context.Context, rec payroll.Record) (payroll.Record, error) {
	if existing, ok := r.findByPeriod(rec.EmployeeID, rec.PeriodMonth, rec.PeriodYear); ok {
		if existing.Status != payroll.StatusDraft {
			return payroll.Record{}, payroll.ErrRecordAlreadyPaid
		}
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else {
		r.seq++
		rec.ID = fmt.Sprintf("rec-%d", r.seq)
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()
	r.records[rec.ID] = rec
	return rec, nil
}

func (r *memPayrollRepo) GetByID(_ context.Context, id string) (payroll.Record, error) {
	rec, ok := r.records[id]
	if !ok {
		return payroll.Record{}, payroll.ErrRecordNotFound
	}
	return rec, nil
}

func (r *memPayrollRepo) GetByEmployeePeriod(_ context.Context, employeeID string, month, year int) (payroll.Record, error) {
	rec, ok := r.findByPeriod(employeeID, month, year)
	if !ok {
		return payroll.Record{}, payroll.ErrRecordNotFound
	}
	return rec, nil
}

func (r *memPayrollRepo) List(_ context.Context, _ payroll.Filter) ([]payroll.Record, int64, error) {
	out := make([]payroll.Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r *memPayrollRepo) UpdateManualFields(_ context.Context, rec payroll.Record) error {
	existing, ok := r.records[rec.ID]
	if !ok || existing.Status != payroll.StatusDraft {
		return payroll.ErrRecordNotFound
	}
	rec.CreatedAt = existing.CreatedAt
	rec.Status = existing.Status
	rec.UpdatedAt = time.Now()
	r.records[rec.ID] = rec
	return nil
}

func (r *memPayrollRepo) Finalize(_ context.Context, ids []string) error {
	for _, id := range ids {
		rec, ok := r.records[id]
		if !ok || rec.Status != payroll.StatusDraft {
			return payroll.ErrRecordNotFound
		}
		rec.Status = payroll.StatusFinalized
		r.records[id] = rec
	}
	return nil
}

func (r *memPayrollRepo) MarkPaid(_ context.Context, ids []string) error {
	for _, id := range ids {
		rec, ok := r.records[id]
		if !ok || rec.Status != payroll.StatusFinalized {
			return payroll.ErrRecordNotFound
		}
		now := time.Now()
		rec.Status = payroll.StatusPaid
		rec.PaidAt = &now
		r.records[id] = rec
	}
	return nil
}

func (r *memPayrollRepo) Delete(_ context.Context, id string) error {
	delete(r.records, id)
	return nil
}

func (r *memPayrollRepo) GetSummary(_ context.Context, month, year int) (payroll.SummaryResponse, error) {
	return payroll.SummaryResponse{PeriodMonth: month, PeriodYear: year}, nil
}

func (r *memPayrollRepo) StalePeriods(_ context.Context, _ int) ([]payroll.StalePeriod, error) {
	return nil, nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (r *fakeEmployeeRepo) Create(_ context.Context, emp employee.Employee) (employee.Employee, error) {
	r.employees[emp.ID] = emp
	return emp, nil
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *fakeEmployeeRepo) GetByCode(_ context.Context, code string) (employee.Employee, error) {
	for _, emp := range r.employees {
		if emp.EmployeeCode == code {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) List(_ context.Context, _ employee.ListEmployeeFilter) ([]employee.Employee, int64, error) {
	out, err := r.GetActive(context.Background())
	return out, int64(len(out)), err
}

func (r *fakeEmployeeRepo) GetActive(_ context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range r.employees {
		if emp.IsActive {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, _ employee.UpdateEmployeeRequest) error {
	return nil
}

func (r *fakeEmployeeRepo) SoftDelete(_ context.Context, id string) error {
	emp := r.employees[id]
	emp.IsActive = false
	r.employees[id] = emp
	return nil
}

type fakeAttendance struct {
	summary attendance.Summary
	err     error
}

func (f *fakeAttendance) MonthlySummary(_ context.Context, _ string, _ time.Month, _ int) (attendance.Summary, error) {
	return f.summary, f.err
}

type fakeLeave struct {
	days int
	err  error
}

func (f *fakeLeave) UnpaidLeaveDays(_ context.Context, _ string, _ time.Month, _ int) (int, error) {
	return f.days, f.err
}

type fakeLoans struct {
	deduction decimal.Decimal
	active    *loan.Loan
	payments  []loan.PaymentRequest
}

func (f *fakeLoans) PeriodDeduction(_ context.Context, _ string, _ decimal.Decimal) (decimal.Decimal, *loan.Loan, error) {
	if f.active == nil {
		return decimal.Zero, nil, nil
	}
	return f.deduction, f.active, nil
}

func (f *fakeLoans) ApplyPayment(_ context.Context, req loan.PaymentRequest) (loan.LoanResponse, error) {
	f.payments = append(f.payments, req)
	return loan.LoanResponse{ID: req.LoanID}, nil
}

type fixture struct {
	svc   *PayrollServiceImpl
	repo  *memPayrollRepo
	emps  *fakeEmployeeRepo
	att   *fakeAttendance
	loans *fakeLoans
}

func newFixture() *fixture {
	repo := newMemPayrollRepo()
	emps := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": {
			ID:           "emp-1",
			EmployeeCode: "1001",
			FirstName:    "Ayesha",
			LastName:     "Khan",
			GrossSalary:  decimal.NewFromInt(100_000),
			BasicSalary:  decimal.NewFromInt(100_000),
			IsActive:     true,
		},
	}}
	att := &fakeAttendance{summary: attendance.Summary{PresentDays: 26, TotalWorkingDays: 26}}
	loans := &fakeLoans{
		deduction: decimal.NewFromInt(5_000),
		active:    &loan.Loan{ID: "loan-1", Status: loan.StatusActive},
	}
	svc := NewPayrollService(nil, repo, emps, testEngine(), att, &fakeLeave{}, loans)
	return &fixture{svc: svc, repo: repo, emps: emps, att: att, loans: loans}
}

func generateOne(t *testing.T, f *fixture) payroll.RecordResponse {
	t.Helper()
	out, err := f.svc.Generate(context.Background(), payroll.GenerateRequest{PeriodMonth: 7, PeriodYear: 2025})
	require.NoError(t, err)
	require.Len(t, out, 1)
	return out[0]
}

func TestPayrollService_Generate(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rec := generateOne(t, f)

	// Basic 100,000: tax 500, EOBI 370, loan deduction 5,000.
	assert.True(t, decimal.NewFromInt(100_000).Equal(rec.GrossPay), "gross %s", rec.GrossPay)
	assert.True(t, decimal.NewFromInt(500).Equal(rec.IncomeTax))
	assert.True(t, decimal.NewFromInt(5_000).Equal(rec.LoanDeduction))
	assert.True(t, decimal.NewFromInt(5_870).Equal(rec.TotalDeductions), "deductions %s", rec.TotalDeductions)
	assert.True(t, decimal.NewFromInt(94_130).Equal(rec.NetPay), "net %s", rec.NetPay)
	assert.Equal(t, string(payroll.StatusDraft), rec.Status)
	assert.Equal(t, 26, rec.PresentDays)
}

func TestPayrollService_Generate_Idempotent(t *testing.T) {
	t.Parallel()
	f := newFixture()

	first := generateOne(t, f)
	second := generateOne(t, f)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.NetPay.Equal(second.NetPay))
	assert.Len(t, f.repo.records, 1)
}

func TestPayrollService_Generate_SkipsLockedRecords(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rec := generateOne(t, f)
	require.NoError(t, f.repo.Finalize(context.Background(), []string{rec.ID}))

	out, err := f.svc.Generate(context.Background(), payroll.GenerateRequest{PeriodMonth: 7, PeriodYear: 2025})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPayrollService_Recompute_LockedRecord(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rec := generateOne(t, f)
	require.NoError(t, f.repo.Finalize(context.Background(), []string{rec.ID}))

	_, err := f.svc.Recompute(context.Background(), "emp-1", 7, 2025)
	assert.ErrorIs(t, err, payroll.ErrRecordAlreadyPaid)
}

func TestPayrollService_ManualEdit(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rec := generateOne(t, f)

	bonus := decimal.NewFromInt(10_000)
	edited, err := f.svc.ManualEdit(context.Background(), payroll.ManualEditRequest{
		ID:               rec.ID,
		PerformanceBonus: &bonus,
	})
	require.NoError(t, err)

	// Bonus raises gross but not the taxable base, so tax stays at 500.
	assert.True(t, decimal.NewFromInt(110_000).Equal(edited.GrossPay), "gross %s", edited.GrossPay)
	assert.True(t, decimal.NewFromInt(500).Equal(edited.IncomeTax))
	assert.True(t, decimal.NewFromInt(104_130).Equal(edited.NetPay), "net %s", edited.NetPay)

	stored := f.repo.records[rec.ID]
	assert.True(t, stored.IsManual(payroll.FieldBonuses))
}

func TestPayrollService_ManualEdit_SurvivesRecompute(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rec := generateOne(t, f)
	bonus := decimal.NewFromInt(10_000)
	_, err := f.svc.ManualEdit(context.Background(), payroll.ManualEditRequest{ID: rec.ID, PerformanceBonus: &bonus})
	require.NoError(t, err)

	// Attendance changed after the edit; recompute must refresh the day
	// counts but keep the hand-entered bonus.
	f.att.summary = attendance.Summary{PresentDays: 20, AbsentDays: 6, TotalWorkingDays: 26}
	out, err := f.svc.Recompute(context.Background(), "emp-1", 7, 2025)
	require.NoError(t, err)

	assert.Equal(t, 20, out.PresentDays)
	assert.Equal(t, 6, out.AbsentDays)
	assert.True(t, bonus.Equal(out.PerformanceBonus), "bonus %s", out.PerformanceBonus)
}

func TestPayrollService_ManualEdit_LockedRecord(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rec := generateOne(t, f)
	require.NoError(t, f.repo.Finalize(context.Background(), []string{rec.ID}))

	bonus := decimal.NewFromInt(1_000)
	_, err := f.svc.ManualEdit(context.Background(), payroll.ManualEditRequest{ID: rec.ID, PerformanceBonus: &bonus})
	assert.ErrorIs(t, err, payroll.ErrRecordAlreadyPaid)
}

func TestPayrollService_MarkPaid(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rec := generateOne(t, f)
	require.NoError(t, f.svc.Finalize(context.Background(), payroll.FinalizeRequest{RecordIDs: []string{rec.ID}}))

	err := f.svc.MarkPaid(context.Background(), payroll.FinalizeRequest{RecordIDs: []string{rec.ID}})
	require.NoError(t, err)

	stored := f.repo.records[rec.ID]
	assert.Equal(t, payroll.StatusPaid, stored.Status)
	require.NotNil(t, stored.PaidAt)

	// The loan deduction went out as a repayment.
	require.Len(t, f.loans.payments, 1)
	assert.Equal(t, "loan-1", f.loans.payments[0].LoanID)
	assert.Equal(t, "Salary Deduction", f.loans.payments[0].PaymentMethod)
	assert.True(t, decimal.NewFromInt(5_000).Equal(f.loans.payments[0].Amount))
}

func TestPayrollService_MarkPaid_RequiresFinalized(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rec := generateOne(t, f)

	err := f.svc.MarkPaid(context.Background(), payroll.FinalizeRequest{RecordIDs: []string{rec.ID}})
	assert.ErrorIs(t, err, payroll.ErrRecordNotFinalized)
	assert.Empty(t, f.loans.payments)
}

func TestPayrollService_MarkPaid_AlreadyPaid(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rec := generateOne(t, f)
	require.NoError(t, f.svc.Finalize(context.Background(), payroll.FinalizeRequest{RecordIDs: []string{rec.ID}}))
	require.NoError(t, f.svc.MarkPaid(context.Background(), payroll.FinalizeRequest{RecordIDs: []string{rec.ID}}))

	err := f.svc.MarkPaid(context.Background(), payroll.FinalizeRequest{RecordIDs: []string{rec.ID}})
	assert.ErrorIs(t, err, payroll.ErrRecordAlreadyPaid)
	assert.Len(t, f.loans.payments, 1)
}

func TestPayrollService_MarkPaid_NoActiveLoanLeft(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rec := generateOne(t, f)
	require.NoError(t, f.svc.Finalize(context.Background(), payroll.FinalizeRequest{RecordIDs: []string{rec.ID}}))

	// Loan fully settled out of band between compute and payout. The
	// payout still succeeds, it just skips the repayment.
	f.loans.active = nil
	err := f.svc.MarkPaid(context.Background(), payroll.FinalizeRequest{RecordIDs: []string{rec.ID}})
	require.NoError(t, err)
	assert.Empty(t, f.loans.payments)
	assert.Equal(t, payroll.StatusPaid, f.repo.records[rec.ID].Status)
}

func TestPayrollService_Delete_PaidRecord(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rec := generateOne(t, f)
	require.NoError(t, f.svc.Finalize(context.Background(), payroll.FinalizeRequest{RecordIDs: []string{rec.ID}}))
	require.NoError(t, f.svc.MarkPaid(context.Background(), payroll.FinalizeRequest{RecordIDs: []string{rec.ID}}))

	err := f.svc.Delete(context.Background(), rec.ID)
	assert.ErrorIs(t, err, payroll.ErrRecordAlreadyPaid)
}

func TestPayrollService_CollaboratorFailureZeroesInputs(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.att.err = fmt.Errorf("device gateway down")

	rec := generateOne(t, f)

	assert.Equal(t, 0, rec.PresentDays)
	assert.Equal(t, 0, rec.TotalWorkingDays)
	// Monetary computation still runs on the zeroed day counts.
	assert.True(t, decimal.NewFromInt(100_000).Equal(rec.GrossPay))
}
