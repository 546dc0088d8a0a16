package cron

import (
	"context"
	"log/slog"
	"time"
)

// Reconciler rebuilds canonical attendance records from the punch ledger.
type Reconciler interface {
	ReconcileAll(ctx context.Context, month time.Month, year int) error
}

// AttendanceJobs contains attendance-related cron jobs
type AttendanceJobs struct {
	attendanceSvc Reconciler
}

func NewAttendanceJobs(attendanceSvc Reconciler) *AttendanceJobs {
	return &AttendanceJobs{attendanceSvc: attendanceSvc}
}

// RegisterJobs registers all attendance-related cron jobs
func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	// Nightly, while the punch feed is quiet.
	scheduler.AddDailyJob("attendance_reconcile", 2, j.ReconcileCurrentMonth)
}

// ReconcileCurrentMonth re-derives the current month's day records from the
// punch ledger.
func (j *AttendanceJobs) ReconcileCurrentMonth(ctx context.Context) error {
	now := time.Now()
	slog.Info("Cron: Starting attendance reconciliation", "month", int(now.Month()), "year", now.Year())

	if err := j.attendanceSvc.ReconcileAll(ctx, now.Month(), now.Year()); err != nil {
		return err
	}

	// The first days of a month still see late corrections for the prior one.
	if now.Day() <= 5 {
		prev := now.AddDate(0, -1, 0)
		if err := j.attendanceSvc.ReconcileAll(ctx, prev.Month(), prev.Year()); err != nil {
			return err
		}
	}

	return nil
}
