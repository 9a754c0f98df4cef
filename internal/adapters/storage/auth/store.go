package auth

import (
	"context"

	domain "courier/internal/domain/auth"
)

// Store defines the interface for auth snapshot persistence. A single
// current snapshot is kept; saving overwrites the previous one.
type Store interface {
	// Save persists a snapshot (insert or update keyed by ID).
	// PRE: snapshot has been validated
	// POST: Snapshot is durably persisted
	Save(ctx context.Context, s domain.Snapshot) error

	// Latest returns the most recently captured snapshot.
	// POST: Returns the snapshot or domain.ErrNoSession
	Latest(ctx context.Context) (domain.Snapshot, error)

	// Clear removes all snapshots (logout).
	// POST: No snapshot remains
	Clear(ctx context.Context) error
}
