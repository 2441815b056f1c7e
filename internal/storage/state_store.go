package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"mockingbird/internal/domain"
)

// StateStore implements domain.StateStore on a SQL table of key/value rows.
type StateStore struct {
	db *DB
}

func NewStateStore(db *DB) *StateStore {
	return &StateStore{db: db}
}

func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.conn.QueryRowContext(ctx,
		s.db.rebind(`SELECT state_value FROM state_entries WHERE state_key = ?`), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get state %s: %w", key, err)
	}
	return value, nil
}

// SetMany writes every entry in one transaction so a reader never sees a
// half-saved design.
func (s *StateStore) SetMany(ctx context.Context, entries map[string]string) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state tx: %w", err)
	}
	defer tx.Rollback()

	q := s.db.rebind(`INSERT INTO state_entries (state_key, state_value, updated_at) VALUES (?, ?, ?) ` +
		s.db.upsert("state_key", "state_value", "updated_at"))
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("prepare state upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := stmt.ExecContext(ctx, k, entries[k], now); err != nil {
			return fmt.Errorf("set state %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state: %w", err)
	}
	return nil
}

// Set writes a single entry.
func (s *StateStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.conn.ExecContext(ctx, s.db.rebind(`DELETE FROM state_entries WHERE state_key = ?`), key)
	if err != nil {
		return fmt.Errorf("delete state %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.conn.QueryContext(ctx, `SELECT state_key FROM state_entries ORDER BY state_key`)
	if err != nil {
		return nil, fmt.Errorf("list state keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan state key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
