package leave

import (
	"context"
	"time"
)

type LeaveRepository interface {
	GetApprovedInRange(ctx context.Context, employeeID string, from, to time.Time) ([]Request, error)
	GetLeaveType(ctx context.Context, id string) (LeaveType, error)
	ListLeaveTypes(ctx context.Context) ([]LeaveType, error)
}
