package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tajhr/hrpay-backend-go/internal/domain/loan"
)

func TestMonthlyInstallment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		principal  decimal.Decimal
		annualRate decimal.Decimal
		termMonths int
		want       decimal.Decimal
	}{
		{
			name:       "zero rate splits principal evenly",
			principal:  decimal.NewFromInt(120_000),
			annualRate: decimal.Zero,
			termMonths: 12,
			want:       decimal.NewFromInt(10_000),
		},
		{
			name:       "12 percent over a year",
			principal:  decimal.NewFromInt(100_000),
			annualRate: decimal.NewFromInt(12),
			termMonths: 12,
			want:       decimal.NewFromInt(8_885),
		},
		{
			name:       "12 percent over six months",
			principal:  decimal.NewFromInt(60_000),
			annualRate: decimal.NewFromInt(12),
			termMonths: 6,
			want:       decimal.NewFromInt(10_353),
		},
		{
			name:       "zero rate with uneven split rounds",
			principal:  decimal.NewFromInt(100_000),
			annualRate: decimal.Zero,
			termMonths: 3,
			want:       decimal.NewFromInt(33_333),
		},
		{
			name:       "zero term yields zero",
			principal:  decimal.NewFromInt(100_000),
			annualRate: decimal.NewFromInt(10),
			termMonths: 0,
			want:       decimal.Zero,
		},
		{
			name:       "zero principal yields zero",
			principal:  decimal.Zero,
			annualRate: decimal.NewFromInt(10),
			termMonths: 12,
			want:       decimal.Zero,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MonthlyInstallment(tt.principal, tt.annualRate, tt.termMonths)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestBuildSchedule_ZeroRate(t *testing.T) {
	t.Parallel()

	l := loan.Loan{
		Principal:          decimal.NewFromInt(120_000),
		InterestRate:       decimal.Zero,
		TermMonths:         12,
		MonthlyInstallment: decimal.NewFromInt(10_000),
		ApplicationDate:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}

	schedule := BuildSchedule(l)
	require.Len(t, schedule, 12)

	for i, inst := range schedule {
		assert.Equal(t, i+1, inst.Number)
		assert.True(t, inst.Interest.IsZero(), "installment %d interest", i+1)
		assert.True(t, decimal.NewFromInt(10_000).Equal(inst.Principal))
		assert.Equal(t, loan.InstallmentPending, inst.Status)
	}

	assert.Equal(t, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), schedule[11].DueDate)
	assert.True(t, schedule[11].Balance.IsZero(), "final balance %s", schedule[11].Balance)
}

func TestBuildSchedule_InterestAccruesOnBalance(t *testing.T) {
	t.Parallel()

	l := loan.Loan{
		Principal:          decimal.NewFromInt(100_000),
		InterestRate:       decimal.NewFromInt(12),
		TermMonths:         12,
		MonthlyInstallment: decimal.NewFromInt(8_885),
		ApplicationDate:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	schedule := BuildSchedule(l)
	require.Len(t, schedule, 12)

	// First month: 1% on the full principal.
	first := schedule[0]
	assert.True(t, decimal.NewFromInt(1_000).Equal(first.Interest), "got %s", first.Interest)
	assert.True(t, decimal.NewFromInt(7_885).Equal(first.Principal), "got %s", first.Principal)
	assert.True(t, decimal.NewFromInt(92_115).Equal(first.Balance), "got %s", first.Balance)

	// Balances strictly decrease and interest shrinks with them.
	for i := 1; i < len(schedule); i++ {
		assert.True(t, schedule[i].Balance.LessThan(schedule[i-1].Balance),
			"balance did not decrease at installment %d", i+1)
		assert.True(t, schedule[i].Interest.LessThanOrEqual(schedule[i-1].Interest),
			"interest grew at installment %d", i+1)
	}
}

func pendingSchedule(amounts ...int64) []loan.Installment {
	schedule := make([]loan.Installment, 0, len(amounts))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, amt := range amounts {
		schedule = append(schedule, loan.Installment{
			Number:  i + 1,
			DueDate: base.AddDate(0, i+1, 0),
			Amount:  decimal.NewFromInt(amt),
			Status:  loan.InstallmentPending,
		})
	}
	return schedule
}

func TestSettle(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("payment spans installments oldest first", func(t *testing.T) {
		t.Parallel()

		schedule := pendingSchedule(5_000, 5_000, 5_000)
		touched, applied := settle(schedule, decimal.NewFromInt(7_500), "Bank Transfer", now)

		require.Len(t, touched, 2)
		assert.True(t, decimal.NewFromInt(7_500).Equal(applied))

		assert.Equal(t, loan.InstallmentPaid, schedule[0].Status)
		require.NotNil(t, schedule[0].PaymentDate)
		assert.Equal(t, now, *schedule[0].PaymentDate)

		assert.Equal(t, loan.InstallmentPartial, schedule[1].Status)
		assert.True(t, decimal.NewFromInt(2_500).Equal(schedule[1].PaidAmount))
		assert.Equal(t, loan.InstallmentPending, schedule[2].Status)
	})

	t.Run("partial installment tops up before the next", func(t *testing.T) {
		t.Parallel()

		schedule := pendingSchedule(5_000, 5_000)
		schedule[0].Status = loan.InstallmentPartial
		schedule[0].PaidAmount = decimal.NewFromInt(2_000)

		touched, applied := settle(schedule, decimal.NewFromInt(4_000), "Cash", now)

		require.Len(t, touched, 2)
		assert.True(t, decimal.NewFromInt(4_000).Equal(applied))
		assert.Equal(t, loan.InstallmentPaid, schedule[0].Status)
		assert.True(t, decimal.NewFromInt(1_000).Equal(schedule[1].PaidAmount))
	})

	t.Run("overdue installments absorb payments", func(t *testing.T) {
		t.Parallel()

		schedule := pendingSchedule(5_000, 5_000)
		schedule[0].Status = loan.InstallmentOverdue

		_, applied := settle(schedule, decimal.NewFromInt(5_000), "Salary Deduction", now)

		assert.True(t, decimal.NewFromInt(5_000).Equal(applied))
		assert.Equal(t, loan.InstallmentPaid, schedule[0].Status)
	})

	t.Run("excess beyond the schedule is not applied", func(t *testing.T) {
		t.Parallel()

		schedule := pendingSchedule(5_000)
		touched, applied := settle(schedule, decimal.NewFromInt(8_000), "Cash", now)

		require.Len(t, touched, 1)
		assert.True(t, decimal.NewFromInt(5_000).Equal(applied), "got %s", applied)
	})

	t.Run("paid installments are skipped", func(t *testing.T) {
		t.Parallel()

		schedule := pendingSchedule(5_000, 5_000)
		schedule[0].Status = loan.InstallmentPaid
		schedule[0].PaidAmount = decimal.NewFromInt(5_000)

		touched, _ := settle(schedule, decimal.NewFromInt(5_000), "Cash", now)

		require.Len(t, touched, 1)
		assert.Equal(t, 2, touched[0].Number)
	})
}
