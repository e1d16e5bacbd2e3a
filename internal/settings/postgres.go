package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresStore persists threshold overrides in the settings table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get loads one setting by key.
func (s *PostgresStore) Get(ctx context.Context, key string) (*Setting, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("settings repo: nil db")
	}
	row := s.db.QueryRowContext(ctx, `
SELECT key, value, updated_at
FROM settings
WHERE key = $1`, key)
	var setting Setting
	if err := row.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &setting, nil
}

// List returns all settings.
func (s *PostgresStore) List(ctx context.Context) ([]Setting, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("settings repo: nil db")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT key, value, updated_at
FROM settings
ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Setting
	for rows.Next() {
		var setting Setting
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, setting)
	}
	return result, rows.Err()
}

// Put upserts a setting row.
func (s *PostgresStore) Put(ctx context.Context, setting Setting) error {
	if s == nil || s.db == nil {
		return errors.New("settings repo: nil db")
	}
	if setting.UpdatedAt.IsZero() {
		setting.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO settings (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		setting.Key, setting.Value, setting.UpdatedAt)
	return err
}
