package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tajhr/hrpay-backend-go/internal/domain/tax"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/database"
)

type taxSlabRepositoryImpl struct {
	db *database.DB
}

func NewTaxSlabRepository(db *database.DB) tax.SlabRepository {
	return &taxSlabRepositoryImpl{db: db}
}

// GetSlabs implements tax.SlabRepository.
func (t *taxSlabRepositoryImpl) GetSlabs(ctx context.Context) ([]tax.Slab, error) {
	q := GetQuerier(ctx, t.db)

	query := `
		SELECT id, label, floor, ceiling, base_tax, rate, fiscal_year, created_at, updated_at
		FROM tax_slabs
		ORDER BY floor
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get tax slabs: %w", err)
	}
	defer rows.Close()

	var slabs []tax.Slab
	for rows.Next() {
		var s tax.Slab
		err := rows.Scan(&s.ID, &s.Label, &s.Floor, &s.Ceiling, &s.BaseTax,
			&s.Rate, &s.FiscalYear, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, err
		}
		slabs = append(slabs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slabs, nil
}

// ReplaceSlabs implements tax.SlabRepository. The table is swapped whole so
// a partial fiscal-year update can never leave overlapping bands behind.
func (t *taxSlabRepositoryImpl) ReplaceSlabs(ctx context.Context, fiscalYear string, slabs []tax.Slab) error {
	return WithTransaction(ctx, t.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		q := GetQuerier(txCtx, t.db)

		if _, err := q.Exec(txCtx, `DELETE FROM tax_slabs`); err != nil {
			return fmt.Errorf("failed to clear tax slabs: %w", err)
		}

		for _, s := range slabs {
			_, err := q.Exec(txCtx, `
				INSERT INTO tax_slabs (label, floor, ceiling, base_tax, rate, fiscal_year)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, s.Label, s.Floor, s.Ceiling, s.BaseTax, s.Rate, fiscalYear)
			if err != nil {
				return fmt.Errorf("failed to insert tax slab %q: %w", s.Label, err)
			}
		}
		return nil
	})
}
