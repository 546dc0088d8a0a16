package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tajhr/hrpay-backend-go/internal/domain/leave"
)

// WorkingDaysPerMonth is the fixed divisor of the 26-day system: the daily
// rate is basic/26 in every month regardless of its actual length, so a day
// of unpaid leave costs the same in February as in July. Attendance and
// payroll both rely on this constant; they must never diverge.
const WorkingDaysPerMonth = 26

// Deduction converts unpaid-leave days into a salary deduction using the
// 26-day daily-rate model, rounded to whole rupees.
func Deduction(unpaidLeaveDays int, basicSalary decimal.Decimal) (decimal.Decimal, error) {
	if unpaidLeaveDays < 0 {
		return decimal.Zero, leave.ErrNegativeLeaveDays
	}
	if basicSalary.IsNegative() {
		return decimal.Zero, leave.ErrNegativeBasicSalary
	}
	if unpaidLeaveDays == 0 {
		return decimal.Zero, nil
	}

	dailyRate := basicSalary.Div(decimal.NewFromInt(WorkingDaysPerMonth))
	return dailyRate.Mul(decimal.NewFromInt(int64(unpaidLeaveDays))).Round(0), nil
}

type LeaveServiceImpl struct {
	leaveRepo leave.LeaveRepository
}

func NewLeaveService(leaveRepo leave.LeaveRepository) *LeaveServiceImpl {
	return &LeaveServiceImpl{leaveRepo: leaveRepo}
}

// UnpaidLeaveDays counts the days of approved unpaid leave falling inside
// the month. Sundays inside a leave range are not charged, consistent with
// the working-day calendar.
func (s *LeaveServiceImpl) UnpaidLeaveDays(ctx context.Context, employeeID string, month time.Month, year int) (int, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	requests, err := s.leaveRepo.GetApprovedInRange(ctx, employeeID, monthStart, monthEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to load leave requests: %w", err)
	}

	days := 0
	for _, req := range requests {
		if req.IsPaid == nil || *req.IsPaid {
			continue
		}
		days += overlapWorkingDays(req.StartDate, req.EndDate, monthStart, monthEnd)
	}
	return days, nil
}

func overlapWorkingDays(start, end, monthStart, monthEnd time.Time) int {
	if start.Before(monthStart) {
		start = monthStart
	}
	// end is inclusive; monthEnd is exclusive.
	lastDay := monthEnd.AddDate(0, 0, -1)
	if end.After(lastDay) {
		end = lastDay
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Sunday {
			days++
		}
	}
	return days
}
