package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tajhr/hrpay-backend-go/internal/domain/payroll"
)

// Recomputer re-runs the payroll engine for one employee-period.
type Recomputer interface {
	Recompute(ctx context.Context, employeeID string, month, year int) (payroll.RecordResponse, error)
}

// PayrollJobs contains payroll-related cron jobs
type PayrollJobs struct {
	payrollRepo payroll.PayrollRepository
	payrollSvc  Recomputer
	batchSize   int
}

func NewPayrollJobs(payrollRepo payroll.PayrollRepository, payrollSvc Recomputer) *PayrollJobs {
	return &PayrollJobs{
		payrollRepo: payrollRepo,
		payrollSvc:  payrollSvc,
		batchSize:   100,
	}
}

// RegisterJobs registers all payroll-related cron jobs
func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("payroll_recompute_stale", interval, j.RecomputeStale)
}

// RecomputeStale re-runs the engine for draft records whose attendance or
// loan inputs changed after the record was last computed. Recomputation is
// idempotent, so overlapping runs are harmless.
func (j *PayrollJobs) RecomputeStale(ctx context.Context) error {
	periods, err := j.payrollRepo.StalePeriods(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("failed to find stale payroll periods: %w", err)
	}
	if len(periods) == 0 {
		return nil
	}

	slog.Info("Cron: Recomputing stale payroll records", "count", len(periods))

	recomputed := 0
	for _, p := range periods {
		_, err := j.payrollSvc.Recompute(ctx, p.EmployeeID, p.PeriodMonth, p.PeriodYear)
		if err != nil {
			if errors.Is(err, payroll.ErrRecordAlreadyPaid) {
				continue
			}
			slog.Error("Cron: Failed to recompute payroll",
				"employee_id", p.EmployeeID, "month", p.PeriodMonth, "year", p.PeriodYear, "error", err)
			continue
		}
		recomputed++
	}

	slog.Info("Cron: Recomputed stale payroll records", "count", recomputed)
	return nil
}
