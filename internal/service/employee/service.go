package employee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tajhr/hrpay-backend-go/internal/domain/employee"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/database"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	db           *database.DB
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(db *database.DB, employeeRepo employee.EmployeeRepository) *EmployeeServiceImpl {
	return &EmployeeServiceImpl{db: db, employeeRepo: employeeRepo}
}

func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	hireDate, _ := validator.IsValidDate(req.HireDate)

	emp := employee.Employee{
		EmployeeCode:        req.EmployeeCode,
		CNIC:                normalizeCNIC(req.CNIC),
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		Department:          req.Department,
		Designation:         req.Designation,
		HireDate:            hireDate,
		GrossSalary:         req.GrossSalary.Round(0),
		BasicSalary:         req.BasicSalary.Round(0),
		Allowances:          buildAllowances(req.Allowances),
		ProvidentFundMember: req.ProvidentFundMember,
	}

	created, err := s.employeeRepo.Create(ctx, emp)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return toEmployeeResponse(created), nil
}

func (s *EmployeeServiceImpl) Get(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return toEmployeeResponse(emp), nil
}

func (s *EmployeeServiceImpl) List(ctx context.Context, filter employee.ListEmployeeFilter) ([]employee.EmployeeResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}

	out := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		out = append(out, toEmployeeResponse(emp))
	}
	return out, total, nil
}

func (s *EmployeeServiceImpl) Update(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !emp.IsActive {
		return employee.EmployeeResponse{}, employee.ErrEmployeeTerminated
	}

	if err := s.employeeRepo.Update(ctx, req); err != nil {
		return employee.EmployeeResponse{}, err
	}

	updated, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return toEmployeeResponse(updated), nil
}

// Terminate soft-deletes the employee; history (attendance, payroll, loans)
// stays queryable.
func (s *EmployeeServiceImpl) Terminate(ctx context.Context, id string) error {
	return s.employeeRepo.SoftDelete(ctx, id)
}

func normalizeCNIC(cnic string) string {
	return strings.ReplaceAll(cnic, "-", "")
}

func buildAllowances(in employee.AllowancesInput) employee.Allowances {
	var out employee.Allowances
	apply := func(dst *employee.Allowance, src *employee.AllowanceInput) {
		if src == nil {
			return
		}
		dst.IsActive = src.IsActive
		dst.Amount = src.Amount.Round(0)
		if dst.Amount.IsNegative() {
			dst.Amount = decimal.Zero
		}
	}
	apply(&out.HouseRent, in.HouseRent)
	apply(&out.Medical, in.Medical)
	apply(&out.Conveyance, in.Conveyance)
	apply(&out.Food, in.Food)
	apply(&out.Special, in.Special)
	apply(&out.Other, in.Other)
	return out
}

func toEmployeeResponse(emp employee.Employee) employee.EmployeeResponse {
	return employee.EmployeeResponse{
		ID:                  emp.ID,
		EmployeeCode:        emp.EmployeeCode,
		CNIC:                emp.CNIC,
		FirstName:           emp.FirstName,
		LastName:            emp.LastName,
		Email:               emp.Email,
		Department:          emp.Department,
		Designation:         emp.Designation,
		HireDate:            emp.HireDate.Format(time.DateOnly),
		GrossSalary:         emp.GrossSalary,
		BasicSalary:         emp.BasicSalary,
		ProvidentFundMember: emp.ProvidentFundMember,
		IsActive:            emp.IsActive,
	}
}
