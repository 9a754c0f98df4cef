package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is returned when the host denies or fails durable
// storage access. Callers treat it as fatal for the user action in
// progress; background reads degrade to empty results instead.
var ErrUnavailable = errors.New("storage unavailable")

// migration holds one schema version bump. Versions are applied in
// order inside a transaction and recorded in schema_version.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial collections",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS orders (
				id TEXT PRIMARY KEY,
				customer TEXT NOT NULL,
				address TEXT NOT NULL,
				items TEXT NOT NULL,
				status TEXT NOT NULL,
				lat REAL,
				lng REAL,
				timestamp TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS auth_snapshot (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL,
				name TEXT NOT NULL,
				token TEXT NOT NULL,
				password_hash TEXT NOT NULL DEFAULT '',
				timestamp TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS pending_actions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				type TEXT NOT NULL,
				payload TEXT NOT NULL,
				timestamp TEXT NOT NULL
			)`,
		},
	},
}

// Open opens (creating if missing) the courier database at path with
// WAL mode, busy timeout and foreign keys enabled, and brings the
// schema up to the latest version. Idempotent: safe to call on an
// already-migrated database.
// POST: Returns a ready connection or ErrUnavailable
func Open(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrUnavailable, err)
	}

	// Single writer avoids SQLITE_BUSY on this single-process store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: database unreachable: %v", ErrUnavailable, err)
	}

	if err := MigrateDB(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// MigrateDB applies any schema versions the database is missing.
// PRE: db is a valid connection
// POST: SchemaVersion(db) == LatestSchemaVersion(); idempotent
func MigrateDB(db *sql.DB) error {
	if err := ensureVersionTable(db); err != nil {
		return err
	}
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("%w: begin migration %d: %v", ErrUnavailable, m.version, err)
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
		}
		if _, err := tx.Exec(
			`INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)`,
			m.version, m.name, time.Now().UTC().Format(time.RFC3339Nano),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied schema version, 0 for a
// fresh database.
func SchemaVersion(db *sql.DB) (int, error) {
	if err := ensureVersionTable(db); err != nil {
		return 0, err
	}
	var version sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

// LatestSchemaVersion returns the version a fully migrated database has.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

func ensureVersionTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("%w: create schema_version: %v", ErrUnavailable, err)
	}
	return nil
}
