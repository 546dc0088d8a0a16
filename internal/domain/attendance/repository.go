package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// Canonical day records
	GetByEmployeeMonth(ctx context.Context, employeeID string, monthStart, monthEnd time.Time) ([]Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	UpsertDay(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, rec Record) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]Record, int64, error)

	// Punch ledger
	InsertPunch(ctx context.Context, punch PunchEvent) (inserted bool, err error)
	GetPunches(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) ([]PunchEvent, error)
	GetPunchEmployees(ctx context.Context, monthStart, monthEnd time.Time) ([]string, error)
}
