package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/device-loans/internal/domain/ledger"
)

// PostgresLedgerStore implements LedgerStore on PostgreSQL.
type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{db: db}
}

func (s *PostgresLedgerStore) Has(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_events WHERE id = $1)`,
		eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check processed event %q: %w", eventID, err)
	}
	return exists, nil
}

// MarkProcessed inserts the record once; a concurrent or repeated mark
// for the same event id hits the conflict clause and is a no-op.
func (s *PostgresLedgerStore) MarkProcessed(ctx context.Context, rec ledger.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO processed_events (id, processed_at, event_type, subject)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.ProcessedAt, rec.Type, rec.Subject,
	)
	if err != nil {
		return fmt.Errorf("mark event %q processed: %w", rec.ID, err)
	}
	return nil
}
