package store

import (
	"context"
	"database/sql"
	"errors"
)

// SettingSyncCron holds the cron expression of the periodic sync job.
const SettingSyncCron = "sync_cron"

// ListSettings returns every stored setting as a key/value map.
func (s *Store) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM setting ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// GetSetting returns the value for key or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM setting WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// UpdateSetting replaces the value of an existing setting. Unknown keys
// return ErrNotFound; settings are seeded by migrations, never created here.
func (s *Store) UpdateSetting(ctx context.Context, key, value string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE setting SET value = ? WHERE key = ?", value, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
