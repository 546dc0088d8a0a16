package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tajhr/hrpay-backend-go/internal/domain/attendance"
	"github.com/tajhr/hrpay-backend-go/internal/domain/employee"
	"github.com/tajhr/hrpay-backend-go/internal/domain/loan"
	"github.com/tajhr/hrpay-backend-go/internal/domain/payroll"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/database"
	"github.com/tajhr/hrpay-backend-go/internal/repository/postgresql"
)

// AttendanceSummarizer supplies the period's attendance day counts.
type AttendanceSummarizer interface {
	MonthlySummary(ctx context.Context, employeeID string, month time.Month, year int) (attendance.Summary, error)
}

// LeaveCalculator supplies the period's unpaid-leave day count.
type LeaveCalculator interface {
	UnpaidLeaveDays(ctx context.Context, employeeID string, month time.Month, year int) (int, error)
}

// LoanDeductor supplies the period's loan deduction and settles it when the
// payroll is paid out.
type LoanDeductor interface {
	PeriodDeduction(ctx context.Context, employeeID string, basicSalary decimal.Decimal) (decimal.Decimal, *loan.Loan, error)
	ApplyPayment(ctx context.Context, req loan.PaymentRequest) (loan.LoanResponse, error)
}

type PayrollServiceImpl struct {
	db           *database.DB
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	engine       *Engine
	attendance   AttendanceSummarizer
	leave        LeaveCalculator
	loans        LoanDeductor
}

func NewPayrollService(
	db *database.DB,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	engine *Engine,
	attendanceSvc AttendanceSummarizer,
	leaveSvc LeaveCalculator,
	loanSvc LoanDeductor,
) *PayrollServiceImpl {
	return &PayrollServiceImpl{
		db:           db,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		engine:       engine,
		attendance:   attendanceSvc,
		leave:        leaveSvc,
		loans:        loanSvc,
	}
}

// Generate computes payroll for the period. Without explicit employee IDs it
// runs every active employee. Finalized and paid records are never touched;
// draft records are recomputed in place, preserving manual overrides.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GenerateRequest) ([]payroll.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	employees, err := s.targetEmployees(ctx, req.EmployeeIDs)
	if err != nil {
		return nil, err
	}

	out := make([]payroll.RecordResponse, 0, len(employees))
	for _, emp := range employees {
		rec, err := s.computeOne(ctx, emp, req.PeriodMonth, req.PeriodYear)
		if err != nil {
			if errors.Is(err, errRecordLocked) {
				slog.Info("skipping locked payroll record",
					"employee_id", emp.ID, "month", req.PeriodMonth, "year", req.PeriodYear)
				continue
			}
			return nil, fmt.Errorf("failed to compute payroll for employee %s: %w", emp.ID, err)
		}
		out = append(out, toRecordResponse(rec))
	}
	return out, nil
}

// Recompute re-runs the engine for a single employee-period. Used by the
// scheduler when attendance or loan state changed after the last run.
func (s *PayrollServiceImpl) Recompute(ctx context.Context, employeeID string, month, year int) (payroll.RecordResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	rec, err := s.computeOne(ctx, emp, month, year)
	if err != nil {
		if errors.Is(err, errRecordLocked) {
			return payroll.RecordResponse{}, payroll.ErrRecordAlreadyPaid
		}
		return payroll.RecordResponse{}, err
	}
	return toRecordResponse(rec), nil
}

// errRecordLocked marks a period whose record is past draft.
var errRecordLocked = errors.New("payroll record is finalized or paid")

func (s *PayrollServiceImpl) computeOne(ctx context.Context, emp employee.Employee, month, year int) (payroll.Record, error) {
	existing, err := s.payrollRepo.GetByEmployeePeriod(ctx, emp.ID, month, year)
	switch {
	case err == nil:
		if existing.Status != payroll.StatusDraft {
			return payroll.Record{}, errRecordLocked
		}
	case errors.Is(err, payroll.ErrRecordNotFound):
		existing = payroll.Record{}
	default:
		return payroll.Record{}, fmt.Errorf("failed to load existing record: %w", err)
	}

	in, err := s.gatherInput(ctx, emp, month, year, existing)
	if err != nil {
		return payroll.Record{}, err
	}

	rec, err := s.engine.Compute(ctx, in)
	if err != nil {
		return payroll.Record{}, err
	}
	rec.ManualOverrides = existing.ManualOverrides

	saved, err := s.payrollRepo.Upsert(ctx, rec)
	if err != nil {
		return payroll.Record{}, fmt.Errorf("failed to save payroll record: %w", err)
	}
	return saved, nil
}

// gatherInput collects the period's inputs. A collaborator with no data for
// the period contributes zero values; manually overridden fields are carried
// forward from the prior record instead of being recomputed.
func (s *PayrollServiceImpl) gatherInput(ctx context.Context, emp employee.Employee, month, year int, prior payroll.Record) (ComputeInput, error) {
	in := ComputeInput{
		Employee:    emp,
		PeriodMonth: month,
		PeriodYear:  year,
	}

	summary, err := s.attendance.MonthlySummary(ctx, emp.ID, time.Month(month), year)
	if err != nil {
		slog.Warn("attendance summary unavailable, using zero day counts",
			"employee_id", emp.ID, "month", month, "year", year, "error", err)
	} else {
		in.Summary = summary
	}

	unpaidDays, err := s.leave.UnpaidLeaveDays(ctx, emp.ID, time.Month(month), year)
	if err != nil {
		slog.Warn("unpaid leave lookup unavailable, using zero days",
			"employee_id", emp.ID, "month", month, "year", year, "error", err)
	} else {
		in.UnpaidLeaveDays = unpaidDays
	}

	loanDeduction, _, err := s.loans.PeriodDeduction(ctx, emp.ID, emp.BasicSalary)
	if err != nil {
		return ComputeInput{}, err
	}
	in.LoanDeduction = loanDeduction

	if prior.IsManual(payroll.FieldOvertime) {
		in.OvertimeHours = prior.OvertimeHours
		in.OvertimeRate = prior.OvertimeRate
	}
	if prior.IsManual(payroll.FieldBonuses) {
		in.PerformanceBonus = prior.PerformanceBonus
		in.OtherBonus = prior.OtherBonus
	}
	if prior.IsManual(payroll.FieldInsurance) {
		in.Insurance = prior.Insurance
	}
	if prior.IsManual(payroll.FieldPension) {
		in.Pension = prior.Pension
	}
	if prior.IsManual(payroll.FieldOtherDeductions) {
		in.OtherDeductions = prior.OtherDeductions
	}

	return in, nil
}

func (s *PayrollServiceImpl) targetEmployees(ctx context.Context, ids []string) ([]employee.Employee, error) {
	if len(ids) == 0 {
		return s.employeeRepo.GetActive(ctx)
	}

	out := make([]employee.Employee, 0, len(ids))
	for _, id := range ids {
		emp, err := s.employeeRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, nil
}

// ManualEdit patches hand-entered fields on a draft record and flags them so
// later recomputes leave them alone. Everything derived from the patched
// values (gross, totals, net) is re-run through the engine.
func (s *PayrollServiceImpl) ManualEdit(ctx context.Context, req payroll.ManualEditRequest) (payroll.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RecordResponse{}, err
	}

	rec, err := s.payrollRepo.GetByID(ctx, req.ID)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	if rec.Status != payroll.StatusDraft {
		return payroll.RecordResponse{}, payroll.ErrRecordAlreadyPaid
	}

	emp, err := s.employeeRepo.GetByID(ctx, rec.EmployeeID)
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	in := ComputeInput{
		Employee:    emp,
		PeriodMonth: rec.PeriodMonth,
		PeriodYear:  rec.PeriodYear,
		Summary: attendance.Summary{
			PresentDays:      rec.PresentDays,
			AbsentDays:       rec.AbsentDays,
			LeaveDays:        rec.LeaveDays,
			TotalWorkingDays: rec.TotalWorkingDays,
		},
		UnpaidLeaveDays:  rec.UnpaidLeaveDays,
		OvertimeHours:    rec.OvertimeHours,
		OvertimeRate:     rec.OvertimeRate,
		PerformanceBonus: rec.PerformanceBonus,
		OtherBonus:       rec.OtherBonus,
		Insurance:        rec.Insurance,
		Pension:          rec.Pension,
		OtherDeductions:  rec.OtherDeductions,
		LoanDeduction:    rec.LoanDeduction,
	}

	overrides := rec.ManualOverrides
	flag := func(f payroll.ManualField) {
		for _, m := range overrides {
			if m == f {
				return
			}
		}
		overrides = append(overrides, f)
	}

	if req.OvertimeHours != nil {
		in.OvertimeHours = *req.OvertimeHours
		flag(payroll.FieldOvertime)
	}
	if req.OvertimeRate != nil {
		in.OvertimeRate = *req.OvertimeRate
		flag(payroll.FieldOvertime)
	}
	if req.PerformanceBonus != nil {
		in.PerformanceBonus = *req.PerformanceBonus
		flag(payroll.FieldBonuses)
	}
	if req.OtherBonus != nil {
		in.OtherBonus = *req.OtherBonus
		flag(payroll.FieldBonuses)
	}
	if req.Insurance != nil {
		in.Insurance = *req.Insurance
		flag(payroll.FieldInsurance)
	}
	if req.Pension != nil {
		in.Pension = *req.Pension
		flag(payroll.FieldPension)
	}
	if req.OtherDeductions != nil {
		in.OtherDeductions = *req.OtherDeductions
		flag(payroll.FieldOtherDeductions)
	}

	updated, err := s.engine.Compute(ctx, in)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	updated.ID = rec.ID
	updated.ManualOverrides = overrides

	if err := s.payrollRepo.UpdateManualFields(ctx, updated); err != nil {
		return payroll.RecordResponse{}, fmt.Errorf("failed to save manual edit: %w", err)
	}
	return toRecordResponse(updated), nil
}

// Finalize locks draft records against further recomputation.
func (s *PayrollServiceImpl) Finalize(ctx context.Context, req payroll.FinalizeRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	for _, id := range req.RecordIDs {
		rec, err := s.payrollRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if rec.Status != payroll.StatusDraft {
			return payroll.ErrRecordAlreadyPaid
		}
	}
	return s.payrollRepo.Finalize(ctx, req.RecordIDs)
}

// MarkPaid settles finalized records: each record's loan deduction is applied
// as a payment against the employee's active loan before the record is
// stamped paid. The whole batch runs in one transaction.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, req payroll.FinalizeRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	run := func(ctx context.Context) error {
		for _, id := range req.RecordIDs {
			rec, err := s.payrollRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			switch rec.Status {
			case payroll.StatusPaid:
				return payroll.ErrRecordAlreadyPaid
			case payroll.StatusDraft:
				return fmt.Errorf("record %s: %w", id, payroll.ErrRecordNotFinalized)
			}

			if rec.LoanDeduction.IsPositive() {
				if err := s.applyLoanDeduction(ctx, rec); err != nil {
					return err
				}
			}
		}
		return s.payrollRepo.MarkPaid(ctx, req.RecordIDs)
	}

	if s.db == nil {
		return run(ctx)
	}
	return postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		return run(context.WithValue(ctx, "tx", tx))
	})
}

func (s *PayrollServiceImpl) applyLoanDeduction(ctx context.Context, rec payroll.Record) error {
	_, activeLoan, err := s.loans.PeriodDeduction(ctx, rec.EmployeeID, rec.BasicSalary)
	if err != nil {
		return err
	}
	if activeLoan == nil {
		slog.Warn("payroll carries a loan deduction but no active loan remains",
			"record_id", rec.ID, "employee_id", rec.EmployeeID)
		return nil
	}

	_, err = s.loans.ApplyPayment(ctx, loan.PaymentRequest{
		LoanID:        activeLoan.ID,
		Amount:        rec.LoanDeduction,
		PaymentMethod: "Salary Deduction",
	})
	if err != nil {
		return fmt.Errorf("failed to apply loan deduction for record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *PayrollServiceImpl) Get(ctx context.Context, id string) (payroll.RecordResponse, error) {
	rec, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	return toRecordResponse(rec), nil
}

func (s *PayrollServiceImpl) List(ctx context.Context, filter payroll.Filter) (payroll.ListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	records, total, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListResponse{}, err
	}

	data := make([]payroll.RecordResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, toRecordResponse(rec))
	}
	return payroll.ListResponse{Data: data, TotalCount: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *PayrollServiceImpl) Summary(ctx context.Context, month, year int) (payroll.SummaryResponse, error) {
	if month < 1 || month > 12 {
		return payroll.SummaryResponse{}, payroll.ErrInvalidPeriod
	}
	return s.payrollRepo.GetSummary(ctx, month, year)
}

func (s *PayrollServiceImpl) Delete(ctx context.Context, id string) error {
	rec, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status == payroll.StatusPaid {
		return payroll.ErrRecordAlreadyPaid
	}
	return s.payrollRepo.Delete(ctx, id)
}

func toRecordResponse(rec payroll.Record) payroll.RecordResponse {
	resp := payroll.RecordResponse{
		ID:               rec.ID,
		EmployeeID:       rec.EmployeeID,
		PeriodMonth:      rec.PeriodMonth,
		PeriodYear:       rec.PeriodYear,
		BasicSalary:      rec.BasicSalary,
		TotalAllowances:  rec.TotalAllowances,
		OvertimeAmount:   rec.OvertimeAmount,
		PerformanceBonus: rec.PerformanceBonus,
		OtherBonus:       rec.OtherBonus,
		GrossPay:         rec.GrossPay,
		IncomeTax:        rec.IncomeTax,
		TaxSlabLabel:     rec.TaxSlabLabel,
		Insurance:        rec.Insurance,
		Pension:          rec.Pension,
		EOBI:             rec.EOBI,
		ProvidentFund:    rec.ProvidentFund,
		LoanDeduction:    rec.LoanDeduction,
		LeaveDeduction:   rec.LeaveDeduction,
		OtherDeductions:  rec.OtherDeductions,
		TotalDeductions:  rec.TotalDeductions,
		NetPay:           rec.NetPay,
		PresentDays:      rec.PresentDays,
		AbsentDays:       rec.AbsentDays,
		LeaveDays:        rec.LeaveDays,
		UnpaidLeaveDays:  rec.UnpaidLeaveDays,
		TotalWorkingDays: rec.TotalWorkingDays,
		Status:           string(rec.Status),
	}
	if rec.EmployeeName != nil {
		resp.EmployeeName = *rec.EmployeeName
	}
	if rec.EmployeeCode != nil {
		resp.EmployeeCode = *rec.EmployeeCode
	}
	if rec.PaidAt != nil {
		str := rec.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &str
	}
	return resp
}
