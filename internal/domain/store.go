package domain

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by StateStore.Get for an unknown key.
var ErrKeyNotFound = errors.New("key not found")

// ErrNoHistory is returned when undo or redo has nowhere to go.
var ErrNoHistory = errors.New("no history")

// StateStore persists the design as a flat set of string keys, one per
// top-level field.
type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// HistoryEntry is one undo snapshot.
type HistoryEntry struct {
	Seq          int64     `json:"seq"`
	Label        string    `json:"label"`
	SnapshotJSON string    `json:"snapshotJson"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HistoryStore is a linear undo log with a cursor.
type HistoryStore interface {
	Push(ctx context.Context, label, snapshotJSON string) (*HistoryEntry, error)
	Undo(ctx context.Context) (*HistoryEntry, error)
	Redo(ctx context.Context) (*HistoryEntry, error)
	Current(ctx context.Context) (*HistoryEntry, error)
	List(ctx context.Context) ([]HistoryEntry, error)
	Reset(ctx context.Context) error
}
