package customer

import (
	"context"
)

// Repository is the record store behind the customer service. Identifiers
// are assigned by the store on Insert and grow with insertion order, which is
// what the paginator relies on.
type Repository interface {
	Insert(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	// FindAscendingAfter returns up to limit customers with id > afterID, ascending.
	FindAscendingAfter(ctx context.Context, afterID int64, limit int) ([]*Customer, error)

	// FindAscendingAll returns up to limit customers from the start, ascending.
	FindAscendingAll(ctx context.Context, limit int) ([]*Customer, error)

	// FindDescendingBefore returns up to limit customers with id < beforeID, descending.
	FindDescendingBefore(ctx context.Context, beforeID int64, limit int) ([]*Customer, error)

	ExistsAtOrAbove(ctx context.Context, customerID int64) (bool, error)

	Count(ctx context.Context) (int64, error)
}
