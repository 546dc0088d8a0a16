package cron

import (
	"context"
	"time"
)

// Defaulter flags overdue installments and defaults exhausted loans.
type Defaulter interface {
	MarkDefaults(ctx context.Context, grace time.Duration) error
}

// LoanJobs contains loan-related cron jobs
type LoanJobs struct {
	loanSvc Defaulter
	grace   time.Duration
}

func NewLoanJobs(loanSvc Defaulter, grace time.Duration) *LoanJobs {
	return &LoanJobs{loanSvc: loanSvc, grace: grace}
}

// RegisterJobs registers all loan-related cron jobs
func (j *LoanJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("loan_mark_overdue", interval, j.MarkOverdue)
}

// MarkOverdue drives the Defaulted transition: installments past their due
// date plus the grace window are flagged, and their loans defaulted.
func (j *LoanJobs) MarkOverdue(ctx context.Context) error {
	return j.loanSvc.MarkDefaults(ctx, j.grace)
}
