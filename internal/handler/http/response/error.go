package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tajhr/hrpay-backend-go/internal/domain/attendance"
	"github.com/tajhr/hrpay-backend-go/internal/domain/employee"
	"github.com/tajhr/hrpay-backend-go/internal/domain/leave"
	"github.com/tajhr/hrpay-backend-go/internal/domain/loan"
	"github.com/tajhr/hrpay-backend-go/internal/domain/payroll"
	"github.com/tajhr/hrpay-backend-go/internal/domain/tax"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Employee errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, employee.ErrEmployeeCodeExists),
		errors.Is(err, employee.ErrCNICExists):
		Conflict(w, err.Error())
	case errors.Is(err, employee.ErrEmployeeTerminated),
		errors.Is(err, employee.ErrNegativeSalary):
		BadRequest(w, err.Error(), nil)

	// Attendance errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrUnknownEmployee),
		errors.Is(err, attendance.ErrInvalidStatus),
		errors.Is(err, attendance.ErrNegativeDayCount),
		errors.Is(err, attendance.ErrCheckOutBeforeIn):
		BadRequest(w, err.Error(), nil)

	// Leave errors
	case errors.Is(err, leave.ErrLeaveTypeNotFound),
		errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, leave.ErrNegativeLeaveDays),
		errors.Is(err, leave.ErrNegativeBasicSalary):
		BadRequest(w, err.Error(), nil)

	// Loan errors
	case errors.Is(err, loan.ErrLoanNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, loan.ErrActiveLoanExists),
		errors.Is(err, loan.ErrInvalidTransition),
		errors.Is(err, loan.ErrLoanAlreadySettled):
		Conflict(w, err.Error())
	case errors.Is(err, loan.ErrNoActiveLoan),
		errors.Is(err, loan.ErrNonPositivePayment),
		errors.Is(err, loan.ErrInvalidLoanTerms):
		BadRequest(w, err.Error(), nil)

	// Payroll errors
	case errors.Is(err, payroll.ErrRecordNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, payroll.ErrRecordAlreadyPaid),
		errors.Is(err, payroll.ErrRecordNotFinalized):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, payroll.ErrNegativeSalary),
		errors.Is(err, payroll.ErrNegativeDayCount):
		BadRequest(w, err.Error(), nil)

	// Tax errors
	case errors.Is(err, tax.ErrSlabNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, tax.ErrSlabTableEmpty),
		errors.Is(err, tax.ErrInvalidSlab):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
