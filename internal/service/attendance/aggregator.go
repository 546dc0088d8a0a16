package attendance

import (
	"time"

	"github.com/tajhr/hrpay-backend-go/internal/domain/attendance"
)

// Aggregate reduces one month of attendance records for a single employee
// into payroll day counts. Records are deduplicated by calendar date first,
// keeping the latest-updated record, so repeated device punches never
// overcount a day.
func Aggregate(records []attendance.Record, month time.Month, year int) (attendance.Summary, error) {
	summary := attendance.Summary{
		TotalWorkingDays: WorkingDays(month, year),
	}

	for _, rec := range dedupeByDate(records) {
		if !rec.IsActive {
			continue
		}
		switch attendance.Classify(rec.Status) {
		case attendance.BucketPresent:
			summary.PresentDays++
		case attendance.BucketAbsent:
			summary.AbsentDays++
		case attendance.BucketLeave:
			summary.LeaveDays++
		}
	}

	return summary, nil
}

// WorkingDays counts the calendar days of the month excluding Sundays.
// The plant runs a 6-day week; public holidays are carried as Holiday
// records and excluded during classification instead.
func WorkingDays(month time.Month, year int) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := 0
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Sunday {
			days++
		}
	}
	return days
}

// dedupeByDate collapses duplicate records for the same calendar day,
// keeping the one with the latest UpdatedAt.
func dedupeByDate(records []attendance.Record) []attendance.Record {
	byDate := make(map[string]attendance.Record, len(records))
	for _, rec := range records {
		key := rec.Date.Format("2006-01-02")
		prev, ok := byDate[key]
		if !ok || rec.UpdatedAt.After(prev.UpdatedAt) {
			byDate[key] = rec
		}
	}

	out := make([]attendance.Record, 0, len(byDate))
	for _, rec := range byDate {
		out = append(out, rec)
	}
	return out
}
