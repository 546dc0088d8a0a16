package loan

import (
	"context"
	"time"
)

type LoanRepository interface {
	Create(ctx context.Context, l Loan) (Loan, error)
	GetByID(ctx context.Context, id string) (Loan, error)
	// GetActiveByEmployee returns the earliest-disbursed loan with status
	// Active or Disbursed and outstanding balance > 0, or ErrNoActiveLoan.
	GetActiveByEmployee(ctx context.Context, employeeID string) (Loan, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Loan, error)
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error
	// SavePayment persists the loan balance and mutated schedule rows in one
	// transaction.
	SavePayment(ctx context.Context, l Loan, touched []Installment) error
	GetSchedule(ctx context.Context, loanID string) ([]Installment, error)
	// GetOverdueCandidates returns loans with pending installments due before
	// the cutoff, for the overdue job.
	GetOverdueCandidates(ctx context.Context, cutoff time.Time) ([]Loan, error)
	MarkInstallmentsOverdue(ctx context.Context, loanID string, cutoff time.Time) (int64, error)
}
