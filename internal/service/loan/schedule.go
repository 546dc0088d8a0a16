package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tajhr/hrpay-backend-go/internal/domain/loan"
)

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// MonthlyInstallment computes the EMI for a principal at an annual
// percentage rate over a term in months:
//
//	P * r * (1+r)^n / ((1+r)^n - 1), r = annual/12/100
//
// A zero rate degrades to straight-line principal/term. Rounded to whole
// rupees.
func MonthlyInstallment(principal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	if termMonths <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}

	if annualRate.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(termMonths))).Round(0)
	}

	rate := annualRate.Div(twelve).Div(hundred)
	compound := rate.Add(decimal.NewFromInt(1)).Pow(decimal.NewFromInt(int64(termMonths)))
	emi := principal.Mul(rate).Mul(compound).Div(compound.Sub(decimal.NewFromInt(1)))
	return emi.Round(0)
}

// BuildSchedule generates the amortization schedule: per installment the
// interest accrues on the running balance and the remainder of the EMI
// retires principal. Due dates advance monthly from the application date.
func BuildSchedule(l loan.Loan) []loan.Installment {
	schedule := make([]loan.Installment, 0, l.TermMonths)
	remaining := l.Principal
	monthlyRate := l.InterestRate.Div(twelve).Div(hundred)

	for i := 1; i <= l.TermMonths; i++ {
		interest := remaining.Mul(monthlyRate).Round(0)
		principal := l.MonthlyInstallment.Sub(interest)
		if principal.IsNegative() {
			principal = decimal.Zero
		}
		remaining = remaining.Sub(principal)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		schedule = append(schedule, loan.Installment{
			Number:    i,
			DueDate:   l.ApplicationDate.AddDate(0, i, 0),
			Amount:    l.MonthlyInstallment,
			Principal: principal,
			Interest:  interest,
			Balance:   remaining,
			Status:    loan.InstallmentPending,
		})
	}
	return schedule
}

// settle applies a payment across the schedule, oldest unsettled
// installment first. Returns the rows it touched and the amount actually
// absorbed by the schedule.
func settle(schedule []loan.Installment, amount decimal.Decimal, method string, at time.Time) (touched []loan.Installment, applied decimal.Decimal) {
	remaining := amount

	for i := range schedule {
		if !remaining.IsPositive() {
			break
		}
		inst := &schedule[i]
		if inst.Status != loan.InstallmentPending &&
			inst.Status != loan.InstallmentOverdue &&
			inst.Status != loan.InstallmentPartial {
			continue
		}

		due := inst.Amount.Sub(inst.PaidAmount)
		pay := decimal.Min(remaining, due)
		inst.PaidAmount = inst.PaidAmount.Add(pay)

		if inst.PaidAmount.GreaterThanOrEqual(inst.Amount) {
			inst.Status = loan.InstallmentPaid
			paidAt := at
			inst.PaymentDate = &paidAt
			inst.PaymentMethod = &method
		} else {
			inst.Status = loan.InstallmentPartial
		}

		remaining = remaining.Sub(pay)
		touched = append(touched, *inst)
	}

	return touched, amount.Sub(remaining)
}
