package attendance

import (
	"time"
)

// Status is the canonical day classification for one employee/date record.
type Status string

const (
	StatusPresent        Status = "Present"
	StatusAbsent         Status = "Absent"
	StatusLate           Status = "Late"
	StatusHalfDay        Status = "Half Day"
	StatusLeave          Status = "Leave"
	StatusSickLeave      Status = "Sick Leave"
	StatusPersonalLeave  Status = "Personal Leave"
	StatusMaternityLeave Status = "Maternity Leave"
	StatusPaternityLeave Status = "Paternity Leave"
	StatusHoliday        Status = "Holiday"
	StatusWeekend        Status = "Weekend"
)

// Bucket is the payroll-facing classification of a Status.
type Bucket int

const (
	BucketPresent Bucket = iota
	BucketAbsent
	BucketLeave
	BucketExcluded
)

// Classify maps every Status to its payroll bucket. Holiday and Weekend
// records never contribute to any day count.
func Classify(s Status) Bucket {
	switch s {
	case StatusPresent, StatusLate, StatusHalfDay:
		return BucketPresent
	case StatusAbsent:
		return BucketAbsent
	case StatusLeave, StatusSickLeave, StatusPersonalLeave, StatusMaternityLeave, StatusPaternityLeave:
		return BucketLeave
	default:
		return BucketExcluded
	}
}

// Record is the canonical attendance record: at most one per employee per
// calendar day. Duplicates produced by repeated device punches are merged
// before aggregation.
type Record struct {
	ID           string
	EmployeeID   string
	Date         time.Time
	Status       Status
	CheckIn      *time.Time
	CheckOut     *time.Time
	BreakMinutes int
	WorkMinutes  int
	Source       string // "device" or "manual"
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PunchEvent is a single biometric punch as delivered by the device feed.
// Timestamps are normalized to the configured local offset at ingestion.
type PunchEvent struct {
	ID           string
	EmployeeCode string
	Timestamp    time.Time
	DeviceSerial string
	ReceivedAt   time.Time
}

// Summary holds the per-month day counts consumed by payroll.
type Summary struct {
	PresentDays      int
	AbsentDays       int
	LeaveDays        int
	TotalWorkingDays int
}
