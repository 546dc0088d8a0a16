package leave

import "errors"

var (
	ErrLeaveTypeNotFound    = errors.New("leave type not found")
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrNegativeLeaveDays    = errors.New("leave days must be non-negative")
	ErrNegativeBasicSalary  = errors.New("basic salary must be non-negative")
)
