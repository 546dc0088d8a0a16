package payroll

import "errors"

var (
	ErrRecordNotFound     = errors.New("payroll record not found")
	ErrRecordAlreadyPaid  = errors.New("payroll record already paid, cannot modify")
	ErrRecordNotFinalized = errors.New("payroll record must be finalized before payment")
	ErrInvalidPeriod      = errors.New("invalid payroll period")
	ErrNegativeSalary     = errors.New("basic salary must be non-negative")
	ErrNegativeDayCount   = errors.New("attendance day counts must be non-negative")
	ErrEmployeeNotFound   = errors.New("employee not found")
)
