package order

import (
	"context"

	domain "courier/internal/domain/order"
)

// Store defines the interface for order persistence. Every successful
// write is durable before the call returns.
type Store interface {
	// Get retrieves an order by its ID.
	// PRE: id is non-empty
	// POST: Returns the order or domain.ErrNotFound
	Get(ctx context.Context, id string) (domain.Order, error)

	// Save persists an order (insert or update keyed by ID) with a
	// fresh last-write timestamp. Saving an existing ID overwrites the
	// record, which is what makes CREATE_ORDER replay idempotent.
	// PRE: order has been validated
	// POST: Order is durably persisted; Timestamp reflects this write
	Save(ctx context.Context, o domain.Order) error

	// Update merges a partial patch into the stored order inside one
	// transaction and refreshes its timestamp. A missing ID is a no-op,
	// not an error: the order may have been deleted, or created on
	// another replica this device never saw.
	// PRE: id is non-empty
	// POST: Patch fields are applied if the order exists
	Update(ctx context.Context, id string, patch domain.Patch) error

	// Delete removes an order. Deleting an absent ID is a no-op.
	// PRE: id is non-empty
	// POST: No order with the given ID exists
	Delete(ctx context.Context, id string) error

	// List returns all orders. Ordering is not guaranteed.
	// POST: Returns every stored order
	List(ctx context.Context) ([]domain.Order, error)
}
