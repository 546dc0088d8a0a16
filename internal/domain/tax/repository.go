package tax

import "context"

type SlabRepository interface {
	// GetSlabs returns the slab table ordered by Floor ascending.
	GetSlabs(ctx context.Context) ([]Slab, error)
	// ReplaceSlabs swaps the whole table in one transaction.
	ReplaceSlabs(ctx context.Context, fiscalYear string, slabs []Slab) error
}
