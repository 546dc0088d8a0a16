package tax

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tajhr/hrpay-backend-go/internal/domain/tax"
)

// NoSlabLabel is reported when no band matches (income at or below zero, or
// an empty table). Lookup misses yield zero tax rather than an error.
const NoSlabLabel = "No Slab"

// SurchargeConfig applies the FBR high-income surcharge on top of the slab
// tax. Zero threshold disables it.
type SurchargeConfig struct {
	Threshold decimal.Decimal // annual taxable income above which surcharge applies
	Rate      decimal.Decimal // fraction of annual tax, e.g. 0.09
}

// DefaultSurcharge is the FBR 2025-2026 rule: 9% of tax when annual taxable
// income exceeds Rs 10,000,000.
func DefaultSurcharge() SurchargeConfig {
	return SurchargeConfig{
		Threshold: decimal.NewFromInt(10_000_000),
		Rate:      decimal.NewFromFloat(0.09),
	}
}

type ResolverImpl struct {
	slabRepo  tax.SlabRepository
	surcharge SurchargeConfig
}

func NewResolver(slabRepo tax.SlabRepository, surcharge SurchargeConfig) *ResolverImpl {
	return &ResolverImpl{slabRepo: slabRepo, surcharge: surcharge}
}

// Resolve maps annual taxable income to its slab and derives the monthly
// income tax, rounded to whole rupees.
func (r *ResolverImpl) Resolve(ctx context.Context, annualIncome decimal.Decimal) (tax.Resolution, error) {
	if !annualIncome.IsPositive() {
		return zeroResolution(), nil
	}

	slabs, err := r.slabRepo.GetSlabs(ctx)
	if err != nil {
		return tax.Resolution{}, fmt.Errorf("failed to load tax slabs: %w", err)
	}

	slab, ok := findSlab(slabs, annualIncome)
	if !ok {
		return zeroResolution(), nil
	}

	annualTax := slab.BaseTax.Add(annualIncome.Sub(slab.Floor).Mul(slab.Rate)).Round(0)

	if r.surcharge.Rate.IsPositive() && r.surcharge.Threshold.IsPositive() &&
		annualIncome.GreaterThan(r.surcharge.Threshold) {
		annualTax = annualTax.Add(annualTax.Mul(r.surcharge.Rate)).Round(0)
	}

	monthly := annualTax.Div(decimal.NewFromInt(12)).Round(0)

	return tax.Resolution{
		MonthlyTax: monthly,
		AnnualTax:  annualTax,
		SlabLabel:  slab.Label,
		Rate:       slab.Rate,
	}, nil
}

func findSlab(slabs []tax.Slab, annualIncome decimal.Decimal) (tax.Slab, bool) {
	for _, s := range slabs {
		if s.Contains(annualIncome) {
			return s, true
		}
	}
	return tax.Slab{}, false
}

func zeroResolution() tax.Resolution {
	return tax.Resolution{
		MonthlyTax: decimal.Zero,
		AnnualTax:  decimal.Zero,
		SlabLabel:  NoSlabLabel,
		Rate:       decimal.Zero,
	}
}

// Slabs returns the active slab table, ordered by floor.
func (r *ResolverImpl) Slabs(ctx context.Context) ([]tax.Slab, error) {
	return r.slabRepo.GetSlabs(ctx)
}

// ReplaceSlabs swaps in a new fiscal-year table after checking the bands
// are contiguous and non-overlapping.
func (r *ResolverImpl) ReplaceSlabs(ctx context.Context, fiscalYear string, slabs []tax.Slab) error {
	if len(slabs) == 0 {
		return tax.ErrSlabTableEmpty
	}

	for i, s := range slabs {
		if s.Rate.IsNegative() || s.BaseTax.IsNegative() || s.Floor.IsNegative() {
			return tax.ErrInvalidSlab
		}
		if s.Ceiling != nil && s.Ceiling.LessThanOrEqual(s.Floor) {
			return tax.ErrInvalidSlab
		}
		if i > 0 {
			prev := slabs[i-1]
			if prev.Ceiling == nil || !s.Floor.Equal(*prev.Ceiling) {
				return tax.ErrInvalidSlab
			}
		}
	}
	// Only the last band may be open-ended.
	if slabs[len(slabs)-1].Ceiling != nil {
		return tax.ErrInvalidSlab
	}

	return r.slabRepo.ReplaceSlabs(ctx, fiscalYear, slabs)
}

// SeedDefaults loads the bundled FBR table when the database has none.
func (r *ResolverImpl) SeedDefaults(ctx context.Context) error {
	existing, err := r.slabRepo.GetSlabs(ctx)
	if err != nil {
		return fmt.Errorf("failed to check tax slabs: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	return r.slabRepo.ReplaceSlabs(ctx, "2025-2026", FBR2526Slabs())
}

// FBR2526Slabs is the seed table for fiscal year 2025-2026 (salaried
// persons).
func FBR2526Slabs() []tax.Slab {
	ceil := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	return []tax.Slab{
		{Label: "Up to 600,000", Floor: decimal.Zero, Ceiling: ceil(600_000), BaseTax: decimal.Zero, Rate: decimal.Zero, FiscalYear: "2025-2026"},
		{Label: "600,001 - 1,200,000", Floor: decimal.NewFromInt(600_000), Ceiling: ceil(1_200_000), BaseTax: decimal.Zero, Rate: decimal.NewFromFloat(0.01), FiscalYear: "2025-2026"},
		{Label: "1,200,001 - 2,200,000", Floor: decimal.NewFromInt(1_200_000), Ceiling: ceil(2_200_000), BaseTax: decimal.NewFromInt(6_000), Rate: decimal.NewFromFloat(0.11), FiscalYear: "2025-2026"},
		{Label: "2,200,001 - 3,200,000", Floor: decimal.NewFromInt(2_200_000), Ceiling: ceil(3_200_000), BaseTax: decimal.NewFromInt(116_000), Rate: decimal.NewFromFloat(0.23), FiscalYear: "2025-2026"},
		{Label: "3,200,001 - 4,100,000", Floor: decimal.NewFromInt(3_200_000), Ceiling: ceil(4_100_000), BaseTax: decimal.NewFromInt(346_000), Rate: decimal.NewFromFloat(0.30), FiscalYear: "2025-2026"},
		{Label: "Above 4,100,000", Floor: decimal.NewFromInt(4_100_000), Ceiling: nil, BaseTax: decimal.NewFromInt(616_000), Rate: decimal.NewFromFloat(0.35), FiscalYear: "2025-2026"},
	}
}
