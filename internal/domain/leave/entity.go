package leave

import "time"

// LeaveType tags a leave category as paid or unpaid. Unpaid categories
// drive the salary deduction; paid ones only affect day counts.
type LeaveType struct {
	ID        string
	Name      string
	IsPaid    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestRejected RequestStatus = "Rejected"
)

// Request is an approved or pending leave spanning a date range. Payroll
// consumes approved requests read-only.
type Request struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	StartDate   time.Time
	EndDate     time.Time
	Status      RequestStatus
	Reason      string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined field
	IsPaid *bool
}
