package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mockingbird/internal/domain"
)

// DefaultHistoryLimit is how many undo snapshots are kept.
const DefaultHistoryLimit = 40

// HistoryStore is a linear undo log in SQL. A single cursor row points at
// the entry matching the current design; entries after it are the redo
// branch and are discarded on the next push.
type HistoryStore struct {
	db    *DB
	limit int
}

func NewHistoryStore(db *DB, limit int) *HistoryStore {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &HistoryStore{db: db, limit: limit}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *HistoryStore) cursor(ctx context.Context, q querier) (int64, error) {
	var seq int64
	err := q.QueryRowContext(ctx, `SELECT seq FROM history_cursor WHERE id = 1`).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read history cursor: %w", err)
	}
	return seq, nil
}

func (s *HistoryStore) setCursor(ctx context.Context, q querier, seq int64) error {
	_, err := q.ExecContext(ctx,
		s.db.rebind(`INSERT INTO history_cursor (id, seq) VALUES (1, ?) `+s.db.upsert("id", "seq")), seq)
	if err != nil {
		return fmt.Errorf("update history cursor: %w", err)
	}
	return nil
}

func (s *HistoryStore) entry(ctx context.Context, q querier, query string, args ...any) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	err := q.QueryRowContext(ctx, s.db.rebind(query), args...).Scan(&e.Seq, &e.Label, &e.SnapshotJSON, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("read history entry: %w", err)
	}
	return &e, nil
}

// Push records a snapshot after the cursor, dropping any redo branch, and
// prunes the oldest entries beyond the limit.
func (s *HistoryStore) Push(ctx context.Context, label, snapshotJSON string) (*domain.HistoryEntry, error) {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin history tx: %w", err)
	}
	defer tx.Rollback()

	cur, err := s.cursor(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, s.db.rebind(`DELETE FROM history_entries WHERE seq > ?`), cur); err != nil {
		return nil, fmt.Errorf("drop redo branch: %w", err)
	}

	now := time.Now().UTC()
	seq, err := s.insert(ctx, tx, label, snapshotJSON, now)
	if err != nil {
		return nil, err
	}
	if err := s.setCursor(ctx, tx, seq); err != nil {
		return nil, err
	}
	if err := s.prune(ctx, tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit history: %w", err)
	}

	return &domain.HistoryEntry{Seq: seq, Label: label, SnapshotJSON: snapshotJSON, CreatedAt: now}, nil
}

func (s *HistoryStore) insert(ctx context.Context, tx *sql.Tx, label, snapshotJSON string, at time.Time) (int64, error) {
	q := `INSERT INTO history_entries (label, snapshot_json, created_at) VALUES (?, ?, ?)`
	if s.db.dialect == DialectPostgres {
		// lib/pq has no LastInsertId.
		var seq int64
		if err := tx.QueryRowContext(ctx, s.db.rebind(q+` RETURNING seq`), label, snapshotJSON, at).Scan(&seq); err != nil {
			return 0, fmt.Errorf("insert history entry: %w", err)
		}
		return seq, nil
	}
	res, err := tx.ExecContext(ctx, q, label, snapshotJSON, at)
	if err != nil {
		return 0, fmt.Errorf("insert history entry: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history entry id: %w", err)
	}
	return seq, nil
}

// prune keeps the newest s.limit entries. The cursor always points at the
// newest entry when this runs, so it is never pruned.
func (s *HistoryStore) prune(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `SELECT seq FROM history_entries ORDER BY seq DESC`)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	var seqs []int64
	for rows.Next() {
		var seq int64
		if err := rows.Scan(&seq); err != nil {
			rows.Close()
			return fmt.Errorf("scan history seq: %w", err)
		}
		seqs = append(seqs, seq)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(seqs) <= s.limit {
		return nil
	}

	// Collect first, write after the cursor is closed.
	threshold := seqs[s.limit]
	if _, err := tx.ExecContext(ctx, s.db.rebind(`DELETE FROM history_entries WHERE seq <= ?`), threshold); err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

// Undo moves the cursor to the previous entry and returns it.
func (s *HistoryStore) Undo(ctx context.Context) (*domain.HistoryEntry, error) {
	return s.step(ctx, `SELECT seq, label, snapshot_json, created_at FROM history_entries
		WHERE seq < ? ORDER BY seq DESC LIMIT 1`)
}

// Redo moves the cursor to the next entry and returns it.
func (s *HistoryStore) Redo(ctx context.Context) (*domain.HistoryEntry, error) {
	return s.step(ctx, `SELECT seq, label, snapshot_json, created_at FROM history_entries
		WHERE seq > ? ORDER BY seq ASC LIMIT 1`)
}

func (s *HistoryStore) step(ctx context.Context, query string) (*domain.HistoryEntry, error) {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin history tx: %w", err)
	}
	defer tx.Rollback()

	cur, err := s.cursor(ctx, tx)
	if err != nil {
		return nil, err
	}
	if cur == 0 {
		return nil, domain.ErrNoHistory
	}
	e, err := s.entry(ctx, tx, query, cur)
	if err != nil {
		return nil, err
	}
	if err := s.setCursor(ctx, tx, e.Seq); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit history: %w", err)
	}
	return e, nil
}

// Current returns the entry the cursor points at.
func (s *HistoryStore) Current(ctx context.Context) (*domain.HistoryEntry, error) {
	cur, err := s.cursor(ctx, s.db.conn)
	if err != nil {
		return nil, err
	}
	return s.entry(ctx, s.db.conn,
		`SELECT seq, label, snapshot_json, created_at FROM history_entries WHERE seq = ?`, cur)
}

// List returns every entry, oldest first.
func (s *HistoryStore) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT seq, label, snapshot_json, created_at FROM history_entries ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.Seq, &e.Label, &e.SnapshotJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Reset clears the whole log.
func (s *HistoryStore) Reset(ctx context.Context) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history_cursor`); err != nil {
		return fmt.Errorf("clear history cursor: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return tx.Commit()
}
