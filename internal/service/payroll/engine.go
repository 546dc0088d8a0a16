package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tajhr/hrpay-backend-go/internal/domain/attendance"
	"github.com/tajhr/hrpay-backend-go/internal/domain/employee"
	"github.com/tajhr/hrpay-backend-go/internal/domain/payroll"
	"github.com/tajhr/hrpay-backend-go/internal/domain/tax"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/validator"
	leavesvc "github.com/tajhr/hrpay-backend-go/internal/service/leave"
)

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// TaxResolver maps an annual taxable income onto the slab table.
type TaxResolver interface {
	Resolve(ctx context.Context, annualIncome decimal.Decimal) (tax.Resolution, error)
}

// EngineConfig carries the statutory constants. EOBI is a flat monthly
// contribution, not salary-dependent; the provident fund rate is a
// percentage of basic salary.
type EngineConfig struct {
	EOBIAmount        decimal.Decimal
	ProvidentFundRate decimal.Decimal
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		EOBIAmount:        decimal.NewFromInt(370),
		ProvidentFundRate: decimal.NewFromFloat(8.834),
	}
}

// Engine computes a payroll record from its inputs. It holds no state
// beyond configuration and the slab table, so identical inputs always
// produce an identical record.
type Engine struct {
	cfg EngineConfig
	tax TaxResolver
}

func NewEngine(cfg EngineConfig, resolver TaxResolver) *Engine {
	return &Engine{cfg: cfg, tax: resolver}
}

// ComputeInput is everything a single period's computation needs. The
// orchestration layer gathers it; collaborators with no data contribute
// zero values here rather than failing the run.
type ComputeInput struct {
	Employee    employee.Employee
	PeriodMonth int
	PeriodYear  int

	Summary         attendance.Summary
	UnpaidLeaveDays int

	OvertimeHours    decimal.Decimal
	OvertimeRate     decimal.Decimal
	PerformanceBonus decimal.Decimal
	OtherBonus       decimal.Decimal

	Insurance       decimal.Decimal
	Pension         decimal.Decimal
	OtherDeductions decimal.Decimal
	LoanDeduction   decimal.Decimal
}

// Compute derives the full payroll record for one employee-period. All
// monetary values are rounded to whole rupees as they are computed, and
// netPay is gross minus total deductions, exactly.
func (e *Engine) Compute(ctx context.Context, in ComputeInput) (payroll.Record, error) {
	if !validator.IsValidPeriod(in.PeriodMonth, in.PeriodYear) {
		return payroll.Record{}, payroll.ErrInvalidPeriod
	}
	if in.Employee.BasicSalary.IsNegative() || in.Employee.GrossSalary.IsNegative() {
		return payroll.Record{}, payroll.ErrNegativeSalary
	}
	if in.Summary.PresentDays < 0 || in.Summary.AbsentDays < 0 ||
		in.Summary.LeaveDays < 0 || in.Summary.TotalWorkingDays < 0 || in.UnpaidLeaveDays < 0 {
		return payroll.Record{}, payroll.ErrNegativeDayCount
	}

	basic := in.Employee.BasicSalary.Round(0)
	allowances := in.Employee.ActiveAllowanceTotal().Round(0)
	overtime := in.OvertimeHours.Mul(in.OvertimeRate).Round(0)
	performanceBonus := in.PerformanceBonus.Round(0)
	otherBonus := in.OtherBonus.Round(0)
	gross := basic.Add(allowances).Add(overtime).Add(performanceBonus).Add(otherBonus)

	// Medical is the only allowance excluded from taxable income.
	annualTaxable := basic.Add(in.Employee.TaxableAllowanceTotal()).Mul(twelve)
	resolution, err := e.tax.Resolve(ctx, annualTaxable)
	if err != nil {
		return payroll.Record{}, fmt.Errorf("failed to resolve tax slab: %w", err)
	}

	// EOBI is a flat statutory contribution deducted for every employee.
	eobi := e.cfg.EOBIAmount

	providentFund := decimal.Zero
	if in.Employee.ProvidentFundMember {
		providentFund = basic.Mul(e.cfg.ProvidentFundRate).Div(hundred).Round(0)
	}

	leaveDeduction, err := leavesvc.Deduction(in.UnpaidLeaveDays, basic)
	if err != nil {
		return payroll.Record{}, err
	}

	insurance := in.Insurance.Round(0)
	pension := in.Pension.Round(0)
	otherDeductions := in.OtherDeductions.Round(0)

	totalDeductions := resolution.MonthlyTax.
		Add(insurance).
		Add(pension).
		Add(eobi).
		Add(providentFund).
		Add(in.LoanDeduction).
		Add(otherDeductions).
		Add(leaveDeduction)

	return payroll.Record{
		EmployeeID:  in.Employee.ID,
		PeriodMonth: in.PeriodMonth,
		PeriodYear:  in.PeriodYear,

		BasicSalary:      basic,
		TotalAllowances:  allowances,
		OvertimeHours:    in.OvertimeHours,
		OvertimeRate:     in.OvertimeRate,
		OvertimeAmount:   overtime,
		PerformanceBonus: performanceBonus,
		OtherBonus:       otherBonus,
		GrossPay:         gross,

		IncomeTax:       resolution.MonthlyTax,
		TaxSlabLabel:    resolution.SlabLabel,
		Insurance:       insurance,
		Pension:         pension,
		EOBI:            eobi,
		ProvidentFund:   providentFund,
		LoanDeduction:   in.LoanDeduction,
		LeaveDeduction:  leaveDeduction,
		OtherDeductions: otherDeductions,
		TotalDeductions: totalDeductions,

		NetPay: gross.Sub(totalDeductions),

		PresentDays:      in.Summary.PresentDays,
		AbsentDays:       in.Summary.AbsentDays,
		LeaveDays:        in.Summary.LeaveDays,
		UnpaidLeaveDays:  in.UnpaidLeaveDays,
		TotalWorkingDays: in.Summary.TotalWorkingDays,

		Status: payroll.StatusDraft,
	}, nil
}
