package action

import (
	"context"
	"time"

	"courier/internal/adapters/storage"
	domain "courier/internal/domain/action"
)

const (
	dateLayout = "2006-01-02T15:04:05.999999999Z07:00"
)

// SQLiteStore implements the queue Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new pending-action queue store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Enqueue durably appends an action, assigning its ID and timestamp.
// PRE: action has been validated
// POST: Returns the stored action with ID and Timestamp set
func (s *SQLiteStore) Enqueue(ctx context.Context, a domain.Action) (domain.Action, error) {
	a.Timestamp = time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pending_actions (type, payload, timestamp) VALUES (?, ?, ?)`,
		a.Type, string(a.Payload), a.Timestamp.Format(dateLayout))
	if err != nil {
		return domain.Action{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Action{}, err
	}
	a.ID = id
	return a, nil
}

// ListPending returns all queued actions oldest first.
// POST: Returns actions in enqueue (FIFO) order
func (s *SQLiteStore) ListPending(ctx context.Context) ([]domain.Action, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, payload, timestamp FROM pending_actions ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []domain.Action
	for rows.Next() {
		var a domain.Action
		var payload, timestamp string
		if err := rows.Scan(&a.ID, &a.Type, &payload, &timestamp); err != nil {
			return nil, err
		}
		a.Payload = []byte(payload)
		a.Timestamp, _ = time.Parse(dateLayout, timestamp)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Acknowledge removes one action by ID; absent IDs are not an error.
// POST: No action with the given ID remains queued
func (s *SQLiteStore) Acknowledge(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE id = ?`, id)
	return err
}

// Count returns the number of queued actions.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_actions`).Scan(&n)
	return n, err
}

// ClearAll empties the queue.
// POST: The queue is empty
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_actions`)
	return err
}
