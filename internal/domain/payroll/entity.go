package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusFinalized Status = "finalized"
	StatusPaid      Status = "paid"
)

// ManualField names a monetary field that HR can override by hand. Once a
// field is flagged, auto-recompute leaves it alone; attendance-derived
// fields are always recomputed.
type ManualField string

const (
	FieldOvertime        ManualField = "overtime"
	FieldBonuses         ManualField = "bonuses"
	FieldOtherDeductions ManualField = "other_deductions"
	FieldInsurance       ManualField = "insurance"
	FieldPension         ManualField = "pension"
)

// Record is one computed payroll, keyed (employee, month, year).
type Record struct {
	ID          string
	EmployeeID  string
	PeriodMonth int
	PeriodYear  int

	// Earnings
	BasicSalary     decimal.Decimal
	TotalAllowances decimal.Decimal
	OvertimeHours   decimal.Decimal
	OvertimeRate    decimal.Decimal
	OvertimeAmount  decimal.Decimal
	PerformanceBonus decimal.Decimal
	OtherBonus      decimal.Decimal
	GrossPay        decimal.Decimal

	// Deductions
	IncomeTax       decimal.Decimal
	TaxSlabLabel    string
	Insurance       decimal.Decimal
	Pension         decimal.Decimal
	EOBI            decimal.Decimal
	ProvidentFund   decimal.Decimal
	LoanDeduction   decimal.Decimal
	LeaveDeduction  decimal.Decimal
	OtherDeductions decimal.Decimal
	TotalDeductions decimal.Decimal

	NetPay decimal.Decimal

	// Attendance-derived day counts
	PresentDays      int
	AbsentDays       int
	LeaveDays        int
	UnpaidLeaveDays  int
	TotalWorkingDays int

	// Provenance: fields HR has edited by hand. Never overwritten by
	// auto-recompute.
	ManualOverrides []ManualField

	Status    Status
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// IsManual reports whether a field carries a manual override.
func (r Record) IsManual(f ManualField) bool {
	for _, m := range r.ManualOverrides {
		if m == f {
			return true
		}
	}
	return false
}
