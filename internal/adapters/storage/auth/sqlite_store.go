package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"courier/internal/adapters/storage"
	domain "courier/internal/domain/auth"
)

const (
	dateLayout = "2006-01-02T15:04:05.999999999Z07:00"
)

// SQLiteStore implements the auth snapshot Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new auth snapshot store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a snapshot (insert or update keyed by ID).
// PRE: snapshot has been validated
// POST: Snapshot is durably persisted
func (s *SQLiteStore) Save(ctx context.Context, snap domain.Snapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_snapshot (id, email, name, token, password_hash, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email, name=excluded.name, token=excluded.token,
		   password_hash=excluded.password_hash, timestamp=excluded.timestamp`,
		snap.ID, snap.Email, snap.Name, snap.Token, snap.PasswordHash,
		snap.Timestamp.Format(dateLayout))
	return err
}

// Latest returns the most recently captured snapshot.
// POST: Returns the snapshot or domain.ErrNoSession
func (s *SQLiteStore) Latest(ctx context.Context) (domain.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, token, password_hash, timestamp
		 FROM auth_snapshot ORDER BY timestamp DESC LIMIT 1`)

	var snap domain.Snapshot
	var timestamp string
	err := row.Scan(&snap.ID, &snap.Email, &snap.Name, &snap.Token, &snap.PasswordHash, &timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, domain.ErrNoSession
	}
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap.Timestamp, _ = time.Parse(dateLayout, timestamp)
	return snap, nil
}

// Clear removes all snapshots (logout).
// POST: No snapshot remains
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_snapshot`)
	return err
}
