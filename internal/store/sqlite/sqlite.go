// Package sqlite implements the persistent Store on a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/events"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
)

// Store is the SQLite-backed store. Compound writes run inside database
// transactions so they commit whole or not at all.
type Store struct {
	db  *sql.DB
	bus *events.Bus
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if necessary) a SQLite database at path and ensures
// the schema exists. WAL mode and foreign keys are enabled; foreign keys
// carry the account-to-transaction and document-to-item cascades.
// bus may be nil to disable change notification.
func Open(path string, bus *events.Bus) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{db: db, bus: bus}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx executes fn inside a database transaction. If fn returns an error
// the transaction is rolled back and the error returned unchanged (so
// sentinel kinds survive); commit and begin failures are persistence errors.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %v: %w", err, model.ErrPersistence)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %v failed: %v: %w", err, rbErr, model.ErrPersistence)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %v: %w", err, model.ErrPersistence)
	}
	return nil
}

func (s *Store) publish(kind events.Kind, entity, id string) {
	if s.bus != nil {
		s.bus.Publish(events.Event{Kind: kind, Entity: entity, ID: id})
	}
}

// persistErr wraps a driver error as a persistence failure.
func persistErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, model.ErrPersistence)
}

// notFoundOr maps sql.ErrNoRows onto the domain's not-found kind.
func notFoundOr(op, entity, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, model.ErrNotFound)
	}
	return persistErr(op, err)
}

func parseDec(op, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, persistErr(op, fmt.Errorf("parsing decimal %q: %w", s, err))
	}
	return d, nil
}

func parseDate(op, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, persistErr(op, fmt.Errorf("parsing date %q: %w", s, err))
	}
	return t, nil
}

func fmtDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
