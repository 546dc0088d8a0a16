package tax

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tajhr/hrpay-backend-go/internal/domain/tax"
)

type stubSlabRepo struct {
	slabs []tax.Slab
	err   error
}

func (s *stubSlabRepo) GetSlabs(ctx context.Context) ([]tax.Slab, error) {
	return s.slabs, s.err
}

func (s *stubSlabRepo) ReplaceSlabs(ctx context.Context, fiscalYear string, slabs []tax.Slab) error {
	s.slabs = slabs
	return nil
}

func newTestResolver() *ResolverImpl {
	return NewResolver(&stubSlabRepo{slabs: FBR2526Slabs()}, DefaultSurcharge())
}

func TestResolve_FBRSlabs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestResolver()

	cases := []struct {
		name          string
		annualIncome  int64
		wantMonthly   int64
		wantSlabLabel string
	}{
		{"below taxable threshold", 500_000, 0, "Up to 600,000"},
		{"exactly at threshold", 600_000, 0, "Up to 600,000"},
		{"one percent band", 1_200_000, 500, "600,001 - 1,200,000"},
		{"eleven percent band", 2_200_000, 9_667, "1,200,001 - 2,200,000"},
		{"twenty three percent band", 3_000_000, 25_000, "2,200,001 - 3,200,000"},
		{"thirty percent band", 4_100_000, 51_333, "3,200,001 - 4,100,000"},
		{"top band", 6_000_000, 106_750, "Above 4,100,000"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := r.Resolve(ctx, decimal.NewFromInt(c.annualIncome))
			require.NoError(t, err)
			assert.Equal(t, c.wantSlabLabel, res.SlabLabel)
			assert.True(t, decimal.NewFromInt(c.wantMonthly).Equal(res.MonthlyTax),
				"monthly tax = %s, want %d", res.MonthlyTax, c.wantMonthly)
		})
	}
}

func TestResolve_Surcharge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestResolver()

	// 12,000,000 annual: slab tax = 616,000 + 7,900,000*0.35 = 3,381,000;
	// +9% surcharge = 3,685,290; monthly = 307,108 (rounded).
	res, err := r.Resolve(ctx, decimal.NewFromInt(12_000_000))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3_685_290).Equal(res.AnnualTax), "annual = %s", res.AnnualTax)
	assert.True(t, decimal.NewFromInt(307_108).Equal(res.MonthlyTax), "monthly = %s", res.MonthlyTax)
}

func TestResolve_Misses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("zero income", func(t *testing.T) {
		res, err := newTestResolver().Resolve(ctx, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, NoSlabLabel, res.SlabLabel)
		assert.True(t, res.MonthlyTax.IsZero())
	})

	t.Run("negative income", func(t *testing.T) {
		res, err := newTestResolver().Resolve(ctx, decimal.NewFromInt(-100))
		require.NoError(t, err)
		assert.Equal(t, NoSlabLabel, res.SlabLabel)
		assert.True(t, res.MonthlyTax.IsZero())
	})

	t.Run("empty table", func(t *testing.T) {
		r := NewResolver(&stubSlabRepo{}, DefaultSurcharge())
		res, err := r.Resolve(ctx, decimal.NewFromInt(1_000_000))
		require.NoError(t, err)
		assert.Equal(t, NoSlabLabel, res.SlabLabel)
		assert.True(t, res.MonthlyTax.IsZero())
	})
}

func TestReplaceSlabs_Validation(t *testing.T) {
	t.Parallel()

	ceil := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	valid := []tax.Slab{
		{Label: "Up to 500,000", Floor: decimal.Zero, Ceiling: ceil(500_000)},
		{Label: "Above 500,000", Floor: decimal.NewFromInt(500_000), Rate: decimal.NewFromFloat(0.10)},
	}

	tests := []struct {
		name    string
		slabs   []tax.Slab
		wantErr error
	}{
		{"valid table", valid, nil},
		{"empty table", nil, tax.ErrSlabTableEmpty},
		{
			"gap between bands",
			[]tax.Slab{
				{Floor: decimal.Zero, Ceiling: ceil(500_000)},
				{Floor: decimal.NewFromInt(600_000)},
			},
			tax.ErrInvalidSlab,
		},
		{
			"ceiling below floor",
			[]tax.Slab{
				{Floor: decimal.NewFromInt(500_000), Ceiling: ceil(400_000)},
			},
			tax.ErrInvalidSlab,
		},
		{
			"negative rate",
			[]tax.Slab{
				{Floor: decimal.Zero, Rate: decimal.NewFromFloat(-0.01)},
			},
			tax.ErrInvalidSlab,
		},
		{
			"closed top band",
			[]tax.Slab{
				{Floor: decimal.Zero, Ceiling: ceil(500_000)},
				{Floor: decimal.NewFromInt(500_000), Ceiling: ceil(900_000)},
			},
			tax.ErrInvalidSlab,
		},
		{
			"non-terminal open band",
			[]tax.Slab{
				{Floor: decimal.Zero},
				{Floor: decimal.NewFromInt(500_000)},
			},
			tax.ErrInvalidSlab,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &stubSlabRepo{}
			err := NewResolver(repo, DefaultSurcharge()).ReplaceSlabs(context.Background(), "2026-2027", tt.slabs)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.slabs)
				return
			}
			require.NoError(t, err)
			assert.Len(t, repo.slabs, len(tt.slabs))
		})
	}
}

func TestSeedDefaults(t *testing.T) {
	t.Parallel()

	t.Run("empty table gets the bundled FBR slabs", func(t *testing.T) {
		t.Parallel()

		repo := &stubSlabRepo{}
		require.NoError(t, NewResolver(repo, DefaultSurcharge()).SeedDefaults(context.Background()))
		assert.Len(t, repo.slabs, 6)
	})

	t.Run("existing table untouched", func(t *testing.T) {
		t.Parallel()

		custom := []tax.Slab{{Label: "flat", Floor: decimal.Zero}}
		repo := &stubSlabRepo{slabs: custom}
		require.NoError(t, NewResolver(repo, DefaultSurcharge()).SeedDefaults(context.Background()))
		assert.Equal(t, custom, repo.slabs)
	})
}
