package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusDisbursed Status = "Disbursed"
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusDefaulted Status = "Defaulted"
)

// CanTransition encodes the loan lifecycle:
// Pending -> Approved -> Disbursed -> Active -> Completed, with
// Pending -> Rejected terminal and Active/Disbursed -> Defaulted driven by
// the overdue job.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusDisbursed
	case StatusDisbursed:
		return to == StatusActive || to == StatusCompleted || to == StatusDefaulted
	case StatusActive:
		return to == StatusCompleted || to == StatusDefaulted
	default:
		return false
	}
}

type LoanType string

const (
	TypePersonal  LoanType = "Personal"
	TypeHousing   LoanType = "Housing"
	TypeVehicle   LoanType = "Vehicle"
	TypeEducation LoanType = "Education"
	TypeMedical   LoanType = "Medical"
	TypeEmergency LoanType = "Emergency"
	TypeOther     LoanType = "Other"
)

type DeductionType string

const (
	DeductionFixed      DeductionType = "Fixed Amount"
	DeductionPercentage DeductionType = "Percentage"
)

// SalaryDeduction is the per-loan payroll deduction configuration.
type SalaryDeduction struct {
	Enabled       bool
	DeductionType DeductionType
	FixedAmount   decimal.Decimal
	Percentage    decimal.Decimal
}

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "Pending"
	InstallmentPartial InstallmentStatus = "Partial"
	InstallmentPaid    InstallmentStatus = "Paid"
	InstallmentOverdue InstallmentStatus = "Overdue"
)

// Installment is one row of the amortization schedule.
type Installment struct {
	ID            string
	LoanID        string
	Number        int
	DueDate       time.Time
	Amount        decimal.Decimal
	Principal     decimal.Decimal
	Interest      decimal.Decimal
	Balance       decimal.Decimal
	PaidAmount    decimal.Decimal
	Status        InstallmentStatus
	PaymentDate   *time.Time
	PaymentMethod *string
}

type Loan struct {
	ID                 string
	EmployeeID         string
	LoanType           LoanType
	Principal          decimal.Decimal
	InterestRate       decimal.Decimal // annual percentage
	TermMonths         int
	MonthlyInstallment decimal.Decimal
	TotalPayable       decimal.Decimal
	TotalPaid          decimal.Decimal
	OutstandingBalance decimal.Decimal
	Status             Status
	SalaryDeduction    SalaryDeduction
	ApplicationDate    time.Time
	DisbursementDate   *time.Time
	CompletionDate     *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Schedule []Installment
}
