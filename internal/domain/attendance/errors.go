package attendance

import "errors"

var (
	ErrRecordNotFound    = errors.New("attendance record not found")
	ErrUnknownEmployee   = errors.New("punch references unknown employee code")
	ErrInvalidStatus     = errors.New("invalid attendance status")
	ErrNegativeDayCount  = errors.New("day counts must be non-negative")
	ErrCheckOutBeforeIn  = errors.New("check-out is before check-in")
)
