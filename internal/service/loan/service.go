package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tajhr/hrpay-backend-go/internal/domain/employee"
	"github.com/tajhr/hrpay-backend-go/internal/domain/loan"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/database"
)

type LoanServiceImpl struct {
	db           *database.DB
	loanRepo     loan.LoanRepository
	employeeRepo employee.EmployeeRepository
}

func NewLoanService(db *database.DB, loanRepo loan.LoanRepository, employeeRepo employee.EmployeeRepository) *LoanServiceImpl {
	return &LoanServiceImpl{db: db, loanRepo: loanRepo, employeeRepo: employeeRepo}
}

// Create registers a new loan application. The EMI, total payable and
// amortization schedule are derived here, once. At most one unsettled loan
// per employee is allowed.
func (s *LoanServiceImpl) Create(ctx context.Context, req loan.CreateLoanRequest) (loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return loan.LoanResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return loan.LoanResponse{}, err
	}

	if _, err := s.loanRepo.GetActiveByEmployee(ctx, req.EmployeeID); err == nil {
		return loan.LoanResponse{}, loan.ErrActiveLoanExists
	} else if !errors.Is(err, loan.ErrNoActiveLoan) {
		return loan.LoanResponse{}, fmt.Errorf("failed to check active loans: %w", err)
	}

	emi := MonthlyInstallment(req.Principal, req.InterestRate, req.TermMonths)
	totalPayable := emi.Mul(decimal.NewFromInt(int64(req.TermMonths)))

	l := loan.Loan{
		EmployeeID:         req.EmployeeID,
		LoanType:           loan.LoanType(req.LoanType),
		Principal:          req.Principal,
		InterestRate:       req.InterestRate,
		TermMonths:         req.TermMonths,
		MonthlyInstallment: emi,
		TotalPayable:       totalPayable,
		TotalPaid:          decimal.Zero,
		OutstandingBalance: totalPayable,
		Status:             loan.StatusPending,
		ApplicationDate:    time.Now().UTC(),
		SalaryDeduction:    deductionConfig(req, emi),
	}
	l.Schedule = BuildSchedule(l)

	created, err := s.loanRepo.Create(ctx, l)
	if err != nil {
		return loan.LoanResponse{}, fmt.Errorf("failed to create loan: %w", err)
	}

	return toLoanResponse(created), nil
}

// deductionConfig defaults to a fixed deduction equal to the EMI when the
// request does not configure one.
func deductionConfig(req loan.CreateLoanRequest, emi decimal.Decimal) loan.SalaryDeduction {
	cfg := loan.SalaryDeduction{
		Enabled:       !req.DeductionOff,
		DeductionType: loan.DeductionFixed,
		FixedAmount:   emi,
		Percentage:    decimal.Zero,
	}
	if req.DeductionType != nil {
		cfg.DeductionType = loan.DeductionType(*req.DeductionType)
	}
	if req.FixedAmount != nil {
		cfg.FixedAmount = *req.FixedAmount
	}
	if req.Percentage != nil {
		cfg.Percentage = *req.Percentage
	}
	return cfg
}

func (s *LoanServiceImpl) Approve(ctx context.Context, id string) error {
	return s.transition(ctx, id, loan.StatusApproved)
}

func (s *LoanServiceImpl) Reject(ctx context.Context, id string) error {
	return s.transition(ctx, id, loan.StatusRejected)
}

func (s *LoanServiceImpl) Disburse(ctx context.Context, id string) error {
	return s.transition(ctx, id, loan.StatusDisbursed)
}

func (s *LoanServiceImpl) transition(ctx context.Context, id string, to loan.Status) error {
	l, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !loan.CanTransition(l.Status, to) {
		return loan.ErrInvalidTransition
	}
	return s.loanRepo.UpdateStatus(ctx, id, l.Status, to, time.Now().UTC())
}

// PeriodDeduction derives the current pay period's loan deduction for an
// employee. No qualifying loan yields zero, never an error: payroll
// degrades gracefully per-field.
func (s *LoanServiceImpl) PeriodDeduction(ctx context.Context, employeeID string, basicSalary decimal.Decimal) (decimal.Decimal, *loan.Loan, error) {
	l, err := s.loanRepo.GetActiveByEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, loan.ErrNoActiveLoan) {
			return decimal.Zero, nil, nil
		}
		return decimal.Zero, nil, fmt.Errorf("failed to load active loan: %w", err)
	}

	return DeductionAmount(l, basicSalary), &l, nil
}

// DeductionAmount applies the loan's salary-deduction configuration and
// clamps at the outstanding balance so the final installment never
// overpays.
func DeductionAmount(l loan.Loan, basicSalary decimal.Decimal) decimal.Decimal {
	if !l.SalaryDeduction.Enabled || !l.OutstandingBalance.IsPositive() {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch l.SalaryDeduction.DeductionType {
	case loan.DeductionPercentage:
		amount = basicSalary.Mul(l.SalaryDeduction.Percentage).Div(decimal.NewFromInt(100)).Round(0)
	default:
		amount = l.SalaryDeduction.FixedAmount
	}

	return decimal.Min(amount, l.OutstandingBalance)
}

// ApplyPayment settles a payment against the loan: oldest unsettled
// installments first, running balance decremented by the applied amount.
// The loan moves Disbursed->Active on its first payment and ->Completed
// when the balance reaches zero. Amounts beyond the outstanding balance
// are clamped, so retrying a payment after a partial failure cannot drive
// the balance negative.
func (s *LoanServiceImpl) ApplyPayment(ctx context.Context, req loan.PaymentRequest) (loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return loan.LoanResponse{}, err
	}

	l, err := s.loanRepo.GetByID(ctx, req.LoanID)
	if err != nil {
		return loan.LoanResponse{}, err
	}
	if l.Status != loan.StatusActive && l.Status != loan.StatusDisbursed {
		return loan.LoanResponse{}, loan.ErrInvalidTransition
	}
	if !l.OutstandingBalance.IsPositive() {
		return loan.LoanResponse{}, loan.ErrLoanAlreadySettled
	}

	amount := decimal.Min(req.Amount, l.OutstandingBalance)
	method := req.PaymentMethod
	if method == "" {
		method = "Salary Deduction"
	}

	now := time.Now().UTC()
	touched, applied := settle(l.Schedule, amount, method, now)

	l.TotalPaid = l.TotalPaid.Add(applied)
	l.OutstandingBalance = l.TotalPayable.Sub(l.TotalPaid)
	if l.OutstandingBalance.IsNegative() {
		l.OutstandingBalance = decimal.Zero
	}

	switch {
	case !l.OutstandingBalance.IsPositive():
		l.Status = loan.StatusCompleted
		l.CompletionDate = &now
	case l.Status == loan.StatusDisbursed:
		l.Status = loan.StatusActive
	}

	if err := s.loanRepo.SavePayment(ctx, l, touched); err != nil {
		return loan.LoanResponse{}, fmt.Errorf("failed to persist loan payment: %w", err)
	}

	slog.Info("loan payment applied",
		"loan_id", l.ID, "amount", applied.String(), "balance", l.OutstandingBalance.String(), "status", string(l.Status))

	return toLoanResponse(l), nil
}

func (s *LoanServiceImpl) Get(ctx context.Context, id string) (loan.LoanResponse, error) {
	l, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return loan.LoanResponse{}, err
	}
	return toLoanResponse(l), nil
}

func (s *LoanServiceImpl) ListByEmployee(ctx context.Context, employeeID string) ([]loan.LoanResponse, error) {
	loans, err := s.loanRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	out := make([]loan.LoanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toLoanResponse(l))
	}
	return out, nil
}

// MarkDefaults flags installments overdue and transitions loans whose due
// dates have lapsed beyond the grace window to Defaulted. Driven by the
// scheduler; the data model alone never triggers this transition.
func (s *LoanServiceImpl) MarkDefaults(ctx context.Context, grace time.Duration) error {
	cutoff := time.Now().UTC().Add(-grace)

	candidates, err := s.loanRepo.GetOverdueCandidates(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to load overdue candidates: %w", err)
	}

	for _, l := range candidates {
		flagged, err := s.loanRepo.MarkInstallmentsOverdue(ctx, l.ID, cutoff)
		if err != nil {
			slog.Error("failed to flag overdue installments", "loan_id", l.ID, "error", err)
			continue
		}
		if flagged == 0 {
			continue
		}
		if loan.CanTransition(l.Status, loan.StatusDefaulted) {
			if err := s.loanRepo.UpdateStatus(ctx, l.ID, l.Status, loan.StatusDefaulted, time.Now().UTC()); err != nil {
				slog.Error("failed to default loan", "loan_id", l.ID, "error", err)
				continue
			}
			slog.Warn("loan defaulted", "loan_id", l.ID, "overdue_installments", flagged)
		}
	}
	return nil
}

func toLoanResponse(l loan.Loan) loan.LoanResponse {
	var disbursed, completed *string
	if l.DisbursementDate != nil {
		str := l.DisbursementDate.Format("2006-01-02")
		disbursed = &str
	}
	if l.CompletionDate != nil {
		str := l.CompletionDate.Format("2006-01-02")
		completed = &str
	}

	return loan.LoanResponse{
		ID:                 l.ID,
		EmployeeID:         l.EmployeeID,
		LoanType:           string(l.LoanType),
		Principal:          l.Principal,
		InterestRate:       l.InterestRate,
		TermMonths:         l.TermMonths,
		MonthlyInstallment: l.MonthlyInstallment,
		TotalPayable:       l.TotalPayable,
		TotalPaid:          l.TotalPaid,
		OutstandingBalance: l.OutstandingBalance,
		Status:             string(l.Status),
		DisbursementDate:   disbursed,
		CompletionDate:     completed,
	}
}
