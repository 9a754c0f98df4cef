package action

import (
	"context"

	domain "courier/internal/domain/action"
)

// Store defines the interface for the durable pending-action queue.
// Listing and removal are deliberately separate operations: the sync
// engine applies an action's effect, persists it, and only then
// acknowledges, so a crash in between re-applies an already-applied
// effect instead of silently losing the action.
type Store interface {
	// Enqueue durably appends an action, assigning its auto-increment
	// ID and enqueue timestamp.
	// PRE: action has been validated
	// POST: Returns the stored action with ID and Timestamp set
	Enqueue(ctx context.Context, a domain.Action) (domain.Action, error)

	// ListPending returns all queued actions oldest first. Actions are
	// never removed by listing.
	// POST: Returns actions in enqueue (FIFO) order
	ListPending(ctx context.Context) ([]domain.Action, error)

	// Acknowledge removes one action by its assigned ID. Acknowledging
	// an already-absent ID is not an error.
	// PRE: id was assigned by Enqueue
	// POST: No action with the given ID remains queued
	Acknowledge(ctx context.Context, id int64) error

	// Count returns the number of queued actions.
	Count(ctx context.Context) (int, error)

	// ClearAll empties the queue. Only for explicit resets; the sync
	// flow never calls this.
	// POST: The queue is empty
	ClearAll(ctx context.Context) error
}
