package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"courier/internal/adapters/storage"
	domain "courier/internal/domain/order"
)

const (
	dateLayout = "2006-01-02T15:04:05.999999999Z07:00"
)

// SQLiteStore implements the order Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new order store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves an order by its ID.
// PRE: id is non-empty
// POST: Returns the order or domain.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, customer, address, items, status, lat, lng, timestamp
		 FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, err
}

// Save persists an order (insert or update keyed by ID) with a fresh
// last-write timestamp.
// PRE: order has been validated
// POST: Order is durably persisted; Timestamp reflects this write
func (s *SQLiteStore) Save(ctx context.Context, o domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id, customer, address, items, status, lat, lng, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   customer=excluded.customer, address=excluded.address, items=excluded.items,
		   status=excluded.status, lat=excluded.lat, lng=excluded.lng,
		   timestamp=excluded.timestamp`,
		o.ID, o.Customer, o.Address, string(items), o.Status,
		nullFloat(o.Lat), nullFloat(o.Lng), time.Now().Format(dateLayout))
	return err
}

// Update merges a patch into the stored order inside one transaction.
// A missing ID is a no-op.
// PRE: id is non-empty
// POST: Patch fields are applied if the order exists
func (s *SQLiteStore) Update(ctx context.Context, id string, patch domain.Patch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, customer, address, items, status, lat, lng, timestamp
		 FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	patch.Apply(&o)
	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, lat = ?, lng = ?, timestamp = ? WHERE id = ?`,
		o.Status, nullFloat(o.Lat), nullFloat(o.Lng),
		time.Now().Format(dateLayout), id); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes an order. Deleting an absent ID is a no-op.
// PRE: id is non-empty
// POST: No order with the given ID exists
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	return err
}

// List returns all orders. Ordering is not guaranteed.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer, address, items, status, lat, lng, timestamp FROM orders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// scanOrder scans one row into an Order via the given scan function.
func scanOrder(scan func(dest ...any) error) (domain.Order, error) {
	var o domain.Order
	var items, timestamp string
	var lat, lng sql.NullFloat64
	if err := scan(&o.ID, &o.Customer, &o.Address, &items, &o.Status, &lat, &lng, &timestamp); err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal order items: %w", err)
	}
	if lat.Valid {
		v := lat.Float64
		o.Lat = &v
	}
	if lng.Valid {
		v := lng.Float64
		o.Lng = &v
	}
	o.Timestamp, _ = time.Parse(dateLayout, timestamp)
	return o, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
