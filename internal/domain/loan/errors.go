package loan

import "errors"

var (
	ErrLoanNotFound          = errors.New("loan not found")
	ErrNoActiveLoan          = errors.New("no active loan for employee")
	ErrActiveLoanExists      = errors.New("employee already has an active loan")
	ErrInvalidTransition     = errors.New("invalid loan status transition")
	ErrNonPositivePayment    = errors.New("payment amount must be positive")
	ErrLoanAlreadySettled    = errors.New("loan has no outstanding balance")
	ErrInvalidLoanTerms      = errors.New("invalid loan terms")
)
