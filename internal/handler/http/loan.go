package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tajhr/hrpay-backend-go/internal/domain/loan"
	"github.com/tajhr/hrpay-backend-go/internal/handler/http/response"
	employeesvc "github.com/tajhr/hrpay-backend-go/internal/service/employee"
	loansvc "github.com/tajhr/hrpay-backend-go/internal/service/loan"
)

type LoanHandler interface {
	CreateLoan(w http.ResponseWriter, r *http.Request)
	GetLoan(w http.ResponseWriter, r *http.Request)
	ListEmployeeLoans(w http.ResponseWriter, r *http.Request)
	ApproveLoan(w http.ResponseWriter, r *http.Request)
	RejectLoan(w http.ResponseWriter, r *http.Request)
	DisburseLoan(w http.ResponseWriter, r *http.Request)
	RecordPayment(w http.ResponseWriter, r *http.Request)
	PreviewDeduction(w http.ResponseWriter, r *http.Request)
}

type loanHandlerImpl struct {
	loanService     *loansvc.LoanServiceImpl
	employeeService *employeesvc.EmployeeServiceImpl
}

func NewLoanHandler(loanService *loansvc.LoanServiceImpl, employeeService *employeesvc.EmployeeServiceImpl) LoanHandler {
	return &loanHandlerImpl{
		loanService:     loanService,
		employeeService: employeeService,
	}
}

// CreateLoan implements LoanHandler
func (h *loanHandlerImpl) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req loan.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.loanService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Loan created successfully", result)
}

// GetLoan implements LoanHandler
func (h *loanHandlerImpl) GetLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	result, err := h.loanService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListEmployeeLoans implements LoanHandler
func (h *loanHandlerImpl) ListEmployeeLoans(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id query parameter is required", nil)
		return
	}

	results, err := h.loanService.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// ApproveLoan implements LoanHandler
func (h *loanHandlerImpl) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.loanService.Approve, "Loan approved")
}

// RejectLoan implements LoanHandler
func (h *loanHandlerImpl) RejectLoan(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.loanService.Reject, "Loan rejected")
}

// DisburseLoan implements LoanHandler
func (h *loanHandlerImpl) DisburseLoan(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.loanService.Disburse, "Loan disbursed")
}

func (h *loanHandlerImpl) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) error, message string) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	if err := fn(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.loanService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// RecordPayment implements LoanHandler - manual (non-payroll) repayment
func (h *loanHandlerImpl) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	var req loan.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.LoanID = id
	if req.PaymentMethod == "" {
		req.PaymentMethod = "Cash"
	}

	result, err := h.loanService.ApplyPayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment recorded successfully", result)
}

// PreviewDeduction implements LoanHandler - the salary deduction the next
// payroll run would take for the employee's active loan.
func (h *loanHandlerImpl) PreviewDeduction(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id query parameter is required", nil)
		return
	}

	emp, err := h.employeeService.Get(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	amount, active, err := h.loanService.PeriodDeduction(r.Context(), employeeID, emp.BasicSalary)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	preview := map[string]interface{}{
		"employee_id":      employeeID,
		"deduction_amount": amount,
	}
	if active != nil {
		preview["loan_id"] = active.ID
		preview["outstanding_balance"] = active.OutstandingBalance
	}

	response.Success(w, preview)
}
