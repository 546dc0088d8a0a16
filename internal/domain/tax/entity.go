package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

// Slab is one annual-income band of the FBR salaried tax table. Bands are
// ordered and non-overlapping; Ceiling is nil for the open top band.
// Annual tax within a band = BaseTax + (income - Floor) * Rate.
type Slab struct {
	ID        string
	Label     string
	Floor     decimal.Decimal
	Ceiling   *decimal.Decimal
	BaseTax   decimal.Decimal
	Rate      decimal.Decimal // marginal rate on the excess over Floor
	FiscalYear string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contains reports whether annualIncome falls inside the band.
func (s Slab) Contains(annualIncome decimal.Decimal) bool {
	if annualIncome.LessThan(s.Floor) {
		return false
	}
	if s.Ceiling == nil {
		return true
	}
	return annualIncome.LessThanOrEqual(*s.Ceiling)
}

// Resolution is the outcome of a slab lookup for one monthly payroll run.
type Resolution struct {
	MonthlyTax decimal.Decimal
	AnnualTax  decimal.Decimal
	SlabLabel  string
	Rate       decimal.Decimal
}
