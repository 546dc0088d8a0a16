package payroll

import "context"

type PayrollRepository interface {
	// Upsert persists a computed record keyed (employee_id, period_month,
	// period_year). Re-running with identical inputs must leave the stored
	// row identical.
	Upsert(ctx context.Context, rec Record) (Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (Record, error)
	List(ctx context.Context, filter Filter) ([]Record, int64, error)
	UpdateManualFields(ctx context.Context, rec Record) error
	Finalize(ctx context.Context, ids []string) error
	MarkPaid(ctx context.Context, ids []string) error
	Delete(ctx context.Context, id string) error
	GetSummary(ctx context.Context, month, year int) (SummaryResponse, error)
	// StalePeriods returns (employeeID, month, year) tuples whose attendance
	// or loan state changed after the record was last computed.
	StalePeriods(ctx context.Context, limit int) ([]StalePeriod, error)
}

type StalePeriod struct {
	EmployeeID  string
	PeriodMonth int
	PeriodYear  int
}
