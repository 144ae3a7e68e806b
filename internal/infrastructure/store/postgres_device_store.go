package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/device-loans/internal/domain/device"
)

// PostgresDeviceStore implements DeviceStore on PostgreSQL.
type PostgresDeviceStore struct {
	db *sql.DB
}

func NewPostgresDeviceStore(db *sql.DB) *PostgresDeviceStore {
	return &PostgresDeviceStore{db: db}
}

func (s *PostgresDeviceStore) GetByID(ctx context.Context, id string) (device.Device, error) {
	var d device.Device
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, count, version, updated_at FROM devices WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Name, &d.Description, &d.Count, &d.Version, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return device.Device{}, device.ErrNotFound
	}
	if err != nil {
		return device.Device{}, fmt.Errorf("get device %q: %w", id, err)
	}
	return d, nil
}

func (s *PostgresDeviceStore) List(ctx context.Context) ([]device.Device, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, count, version, updated_at FROM devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var devices []device.Device
	for rows.Next() {
		var d device.Device
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Count, &d.Version, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan device row: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (s *PostgresDeviceStore) Save(ctx context.Context, d device.Device) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO devices (id, name, description, count, version, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			count = EXCLUDED.count,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at`,
		d.ID, d.Name, d.Description, d.Count, d.Version, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save device %q: %w", d.ID, err)
	}
	return nil
}

// Update is a conditional write keyed on the stored version. Zero rows
// affected means either the device vanished or another writer bumped
// the version first; the follow-up read tells the two apart.
func (s *PostgresDeviceStore) Update(ctx context.Context, d device.Device, expectedVersion int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE devices
		 SET name = $2, description = $3, count = $4, version = $5, updated_at = $6
		 WHERE id = $1 AND version = $7`,
		d.ID, d.Name, d.Description, d.Count, d.Version, d.UpdatedAt, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update device %q: %w", d.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update device %q: %w", d.ID, err)
	}
	if affected == 0 {
		if _, err := s.GetByID(ctx, d.ID); errors.Is(err, device.ErrNotFound) {
			return device.ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (s *PostgresDeviceStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM devices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete device %q: %w", id, err)
	}
	return nil
}
