package employee

import (
	"github.com/shopspring/decimal"

	"github.com/tajhr/hrpay-backend-go/internal/pkg/validator"
)

type AllowanceInput struct {
	IsActive bool            `json:"is_active"`
	Amount   decimal.Decimal `json:"amount"`
}

type AllowancesInput struct {
	HouseRent  *AllowanceInput `json:"house_rent,omitempty"`
	Medical    *AllowanceInput `json:"medical,omitempty"`
	Conveyance *AllowanceInput `json:"conveyance,omitempty"`
	Food       *AllowanceInput `json:"food,omitempty"`
	Special    *AllowanceInput `json:"special,omitempty"`
	Other      *AllowanceInput `json:"other,omitempty"`
}

type CreateEmployeeRequest struct {
	EmployeeCode        string          `json:"employee_code"`
	CNIC                string          `json:"cnic"`
	FirstName           string          `json:"first_name"`
	LastName            string          `json:"last_name"`
	Email               string          `json:"email"`
	Department          string          `json:"department"`
	Designation         string          `json:"designation"`
	HireDate            string          `json:"hire_date"`
	GrossSalary         decimal.Decimal `json:"gross_salary"`
	BasicSalary         decimal.Decimal `json:"basic_salary"`
	Allowances          AllowancesInput `json:"allowances"`
	ProvidentFundMember bool            `json:"provident_fund_member"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidEmployeeCode(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{Field: "employee_code", Message: "must be a 4-6 digit enrollment number"})
	}
	if !validator.IsValidCNIC(r.CNIC) {
		errs = append(errs, validator.ValidationError{Field: "cnic", Message: "must be a 13 digit CNIC"})
	}
	if validator.IsEmpty(r.FirstName) {
		errs = append(errs, validator.ValidationError{Field: "first_name", Message: "is required"})
	}
	if r.Email != "" && !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "is invalid"})
	}
	if _, ok := validator.IsValidDate(r.HireDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "hire_date", Message: "must be YYYY-MM-DD"})
	}
	if r.GrossSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "gross_salary", Message: "must be non-negative"})
	}
	if r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateEmployeeRequest struct {
	ID                  string
	FirstName           *string          `json:"first_name,omitempty"`
	LastName            *string          `json:"last_name,omitempty"`
	Email               *string          `json:"email,omitempty"`
	Department          *string          `json:"department,omitempty"`
	Designation         *string          `json:"designation,omitempty"`
	GrossSalary         *decimal.Decimal `json:"gross_salary,omitempty"`
	BasicSalary         *decimal.Decimal `json:"basic_salary,omitempty"`
	Allowances          *AllowancesInput `json:"allowances,omitempty"`
	ProvidentFundMember *bool            `json:"provident_fund_member,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.GrossSalary != nil && r.GrossSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "gross_salary", Message: "must be non-negative"})
	}
	if r.BasicSalary != nil && r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be non-negative"})
	}
	if r.Email != nil && *r.Email != "" && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "is invalid"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID                  string          `json:"id"`
	EmployeeCode        string          `json:"employee_code"`
	CNIC                string          `json:"cnic"`
	FirstName           string          `json:"first_name"`
	LastName            string          `json:"last_name"`
	Email               string          `json:"email,omitempty"`
	Department          string          `json:"department,omitempty"`
	Designation         string          `json:"designation,omitempty"`
	HireDate            string          `json:"hire_date"`
	GrossSalary         decimal.Decimal `json:"gross_salary"`
	BasicSalary         decimal.Decimal `json:"basic_salary"`
	ProvidentFundMember bool            `json:"provident_fund_member"`
	IsActive            bool            `json:"is_active"`
}

type ListEmployeeFilter struct {
	Department *string
	ActiveOnly bool
	Page       int
	Limit      int
}
