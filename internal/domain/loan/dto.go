package loan

import (
	"github.com/shopspring/decimal"

	"github.com/tajhr/hrpay-backend-go/internal/pkg/validator"
)

type CreateLoanRequest struct {
	EmployeeID      string           `json:"employee_id"`
	LoanType        string           `json:"loan_type"`
	Principal       decimal.Decimal  `json:"principal"`
	InterestRate    decimal.Decimal  `json:"interest_rate"`
	TermMonths      int              `json:"term_months"`
	DeductionType   *string          `json:"deduction_type,omitempty"`
	FixedAmount     *decimal.Decimal `json:"fixed_amount,omitempty"`
	Percentage      *decimal.Decimal `json:"percentage,omitempty"`
	DeductionOff    bool             `json:"deduction_off,omitempty"`
}

var loanTypes = []string{"Personal", "Housing", "Vehicle", "Education", "Medical", "Emergency", "Other"}

func (r *CreateLoanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !validator.IsInSlice(r.LoanType, loanTypes) {
		errs = append(errs, validator.ValidationError{Field: "loan_type", Message: "unknown loan type"})
	}
	if r.Principal.LessThan(decimal.NewFromInt(1000)) {
		errs = append(errs, validator.ValidationError{Field: "principal", Message: "must be at least 1000"})
	}
	if r.Principal.GreaterThan(decimal.NewFromInt(10_000_000)) {
		errs = append(errs, validator.ValidationError{Field: "principal", Message: "cannot exceed 10,000,000"})
	}
	if r.InterestRate.IsNegative() || r.InterestRate.GreaterThan(decimal.NewFromInt(100)) {
		errs = append(errs, validator.ValidationError{Field: "interest_rate", Message: "must be between 0 and 100"})
	}
	if r.TermMonths < 1 || r.TermMonths > 120 {
		errs = append(errs, validator.ValidationError{Field: "term_months", Message: "must be between 1 and 120 months"})
	}
	if r.DeductionType != nil && *r.DeductionType != string(DeductionFixed) && *r.DeductionType != string(DeductionPercentage) {
		errs = append(errs, validator.ValidationError{Field: "deduction_type", Message: "must be 'Fixed Amount' or 'Percentage'"})
	}
	if r.FixedAmount != nil && r.FixedAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "fixed_amount", Message: "must be non-negative"})
	}
	if r.Percentage != nil && (r.Percentage.IsNegative() || r.Percentage.GreaterThan(decimal.NewFromInt(100))) {
		errs = append(errs, validator.ValidationError{Field: "percentage", Message: "must be between 0 and 100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PaymentRequest struct {
	LoanID        string
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
}

func (r *PaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LoanResponse struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	LoanType           string          `json:"loan_type"`
	Principal          decimal.Decimal `json:"principal"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	TermMonths         int             `json:"term_months"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	TotalPayable       decimal.Decimal `json:"total_payable"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	Status             string          `json:"status"`
	DisbursementDate   *string         `json:"disbursement_date,omitempty"`
	CompletionDate     *string         `json:"completion_date,omitempty"`
}
