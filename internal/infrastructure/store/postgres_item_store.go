package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/device-loans/internal/domain/item"
)

// PostgresItemStore implements ItemStore on PostgreSQL.
type PostgresItemStore struct {
	db *sql.DB
}

func NewPostgresItemStore(db *sql.DB) *PostgresItemStore {
	return &PostgresItemStore{db: db}
}

func (s *PostgresItemStore) GetByID(ctx context.Context, id string) (item.InventoryItem, error) {
	var it item.InventoryItem
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, status, updated_at FROM inventory_items WHERE id = $1`,
		id,
	).Scan(&it.ID, &it.Name, &it.Description, &it.Status, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return item.InventoryItem{}, item.ErrNotFound
	}
	if err != nil {
		return item.InventoryItem{}, fmt.Errorf("get inventory item %q: %w", id, err)
	}
	return it, nil
}

func (s *PostgresItemStore) List(ctx context.Context) ([]item.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, status, updated_at FROM inventory_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var items []item.InventoryItem
	for rows.Next() {
		var it item.InventoryItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Status, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory item row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *PostgresItemStore) Save(ctx context.Context, it item.InventoryItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory_items (id, name, description, status, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		it.ID, it.Name, it.Description, it.Status, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save inventory item %q: %w", it.ID, err)
	}
	return nil
}

func (s *PostgresItemStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete inventory item %q: %w", id, err)
	}
	return nil
}
