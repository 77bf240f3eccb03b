package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetSetting returns the value for a settings key, or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	q := s.rebind("SELECT value FROM settings WHERE key = ?")
	if err := s.db.GetContext(ctx, &value, q, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// SetSetting inserts or replaces a settings key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	// Update-then-insert keeps the statement portable across backends.
	result, err := s.db.ExecContext(ctx, s.rebind("UPDATE settings SET value = ? WHERE key = ?"), value, key)
	if err != nil {
		return fmt.Errorf("update setting: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, s.rebind("INSERT INTO settings (key, value) VALUES (?, ?)"), key, value); err != nil {
		return fmt.Errorf("insert setting: %w", err)
	}
	return nil
}
