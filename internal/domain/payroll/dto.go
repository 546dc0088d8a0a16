package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/tajhr/hrpay-backend-go/internal/pkg/validator"
)

type GenerateRequest struct {
	PeriodMonth int      `json:"period_month"`
	PeriodYear  int      `json:"period_year"`
	EmployeeIDs []string `json:"employee_ids,omitempty"` // Empty = all active employees
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidPeriod(r.PeriodMonth, r.PeriodYear) {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "month must be 1-12 and year 2020 or later"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ManualEditRequest patches hand-entered fields on a draft record. Every
// field touched here is flagged as manually overridden.
type ManualEditRequest struct {
	ID               string
	OvertimeHours    *decimal.Decimal `json:"overtime_hours,omitempty"`
	OvertimeRate     *decimal.Decimal `json:"overtime_rate,omitempty"`
	PerformanceBonus *decimal.Decimal `json:"performance_bonus,omitempty"`
	OtherBonus       *decimal.Decimal `json:"other_bonus,omitempty"`
	Insurance        *decimal.Decimal `json:"insurance,omitempty"`
	Pension          *decimal.Decimal `json:"pension,omitempty"`
	OtherDeductions  *decimal.Decimal `json:"other_deductions,omitempty"`
}

func (r *ManualEditRequest) Validate() error {
	var errs validator.ValidationErrors

	check := func(field string, d *decimal.Decimal) {
		if d != nil && d.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	check("overtime_hours", r.OvertimeHours)
	check("overtime_rate", r.OvertimeRate)
	check("performance_bonus", r.PerformanceBonus)
	check("other_bonus", r.OtherBonus)
	check("insurance", r.Insurance)
	check("pension", r.Pension)
	check("other_deductions", r.OtherDeductions)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type FinalizeRequest struct {
	RecordIDs []string `json:"record_ids"`
}

func (r *FinalizeRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.RecordIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "record_ids", Message: "at least one record is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	EmployeeName     string          `json:"employee_name,omitempty"`
	EmployeeCode     string          `json:"employee_code,omitempty"`
	PeriodMonth      int             `json:"period_month"`
	PeriodYear       int             `json:"period_year"`
	BasicSalary      decimal.Decimal `json:"basic_salary"`
	TotalAllowances  decimal.Decimal `json:"total_allowances"`
	OvertimeAmount   decimal.Decimal `json:"overtime_amount"`
	PerformanceBonus decimal.Decimal `json:"performance_bonus"`
	OtherBonus       decimal.Decimal `json:"other_bonus"`
	GrossPay         decimal.Decimal `json:"gross_pay"`
	IncomeTax        decimal.Decimal `json:"income_tax"`
	TaxSlabLabel     string          `json:"tax_slab_label,omitempty"`
	Insurance        decimal.Decimal `json:"insurance"`
	Pension          decimal.Decimal `json:"pension"`
	EOBI             decimal.Decimal `json:"eobi"`
	ProvidentFund    decimal.Decimal `json:"provident_fund"`
	LoanDeduction    decimal.Decimal `json:"loan_deduction"`
	LeaveDeduction   decimal.Decimal `json:"leave_deduction"`
	OtherDeductions  decimal.Decimal `json:"other_deductions"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	NetPay           decimal.Decimal `json:"net_pay"`
	PresentDays      int             `json:"present_days"`
	AbsentDays       int             `json:"absent_days"`
	LeaveDays        int             `json:"leave_days"`
	UnpaidLeaveDays  int             `json:"unpaid_leave_days"`
	TotalWorkingDays int             `json:"total_working_days"`
	Status           string          `json:"status"`
	PaidAt           *string         `json:"paid_at,omitempty"`
}

type Filter struct {
	PeriodMonth *int
	PeriodYear  *int
	Status      *string
	EmployeeID  *string
	Page        int
	Limit       int
}

type ListResponse struct {
	Data       []RecordResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

type SummaryResponse struct {
	PeriodMonth     int             `json:"period_month"`
	PeriodYear      int             `json:"period_year"`
	TotalEmployees  int             `json:"total_employees"`
	TotalGrossPay   decimal.Decimal `json:"total_gross_pay"`
	TotalTax        decimal.Decimal `json:"total_tax"`
	TotalEOBI       decimal.Decimal `json:"total_eobi"`
	TotalPF         decimal.Decimal `json:"total_pf"`
	TotalLoan       decimal.Decimal `json:"total_loan"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNetPay     decimal.Decimal `json:"total_net_pay"`
	DraftCount      int             `json:"draft_count"`
	FinalizedCount  int             `json:"finalized_count"`
	PaidCount       int             `json:"paid_count"`
}
