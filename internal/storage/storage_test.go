package storage_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockingbird/internal/domain"
	"mockingbird/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStateStoreSetGet(t *testing.T) {
	ctx := context.Background()
	s := storage.NewStateStore(openTestDB(t))

	_, err := s.Get(ctx, "wireframe-rows")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, s.SetMany(ctx, map[string]string{
		"wireframe-rows": "8",
		"wireframe-cols": "6",
	}))
	require.NoError(t, s.Set(ctx, "wireframe-rows", "12"))

	v, err := s.Get(ctx, "wireframe-rows")
	require.NoError(t, err)
	assert.Equal(t, "12", v)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"wireframe-cols", "wireframe-rows"}, keys)

	require.NoError(t, s.Delete(ctx, "wireframe-cols"))
	_, err = s.Get(ctx, "wireframe-cols")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStateStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	db, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, storage.NewStateStore(db).Set(ctx, "k", `{"a":1}`))
	require.NoError(t, db.Close())

	db, err = storage.OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	v, err := storage.NewStateStore(db).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)
}

func TestHistoryUndoRedo(t *testing.T) {
	ctx := context.Background()
	h := storage.NewHistoryStore(openTestDB(t), 40)

	_, err := h.Undo(ctx)
	assert.ErrorIs(t, err, domain.ErrNoHistory)
	_, err = h.Current(ctx)
	assert.ErrorIs(t, err, domain.ErrNoHistory)

	for i := 1; i <= 3; i++ {
		_, err := h.Push(ctx, fmt.Sprintf("step %d", i), fmt.Sprintf(`{"n":%d}`, i))
		require.NoError(t, err)
	}

	e, err := h.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "step 2", e.Label)
	e, err = h.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, e.SnapshotJSON)
	_, err = h.Undo(ctx)
	assert.ErrorIs(t, err, domain.ErrNoHistory)

	e, err = h.Redo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "step 2", e.Label)

	cur, err := h.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, e.Seq, cur.Seq)

	// A new push discards the redo branch ("step 3").
	_, err = h.Push(ctx, "step 4", `{"n":4}`)
	require.NoError(t, err)
	_, err = h.Redo(ctx)
	assert.ErrorIs(t, err, domain.ErrNoHistory)

	entries, err := h.List(ctx)
	require.NoError(t, err)
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}
	assert.Equal(t, []string{"step 1", "step 2", "step 4"}, labels)
}

func TestHistoryPrunesOldest(t *testing.T) {
	ctx := context.Background()
	h := storage.NewHistoryStore(openTestDB(t), 3)

	for i := 1; i <= 5; i++ {
		_, err := h.Push(ctx, fmt.Sprintf("s%d", i), "{}")
		require.NoError(t, err)
	}

	entries, err := h.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "s3", entries[0].Label)
	assert.Equal(t, "s5", entries[2].Label)

	_, err = h.Undo(ctx)
	require.NoError(t, err)
	_, err = h.Undo(ctx)
	require.NoError(t, err)
	_, err = h.Undo(ctx)
	assert.ErrorIs(t, err, domain.ErrNoHistory)
}

func TestHistoryReset(t *testing.T) {
	ctx := context.Background()
	h := storage.NewHistoryStore(openTestDB(t), 0)
	_, err := h.Push(ctx, "a", "{}")
	require.NoError(t, err)

	require.NoError(t, h.Reset(ctx))
	entries, err := h.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = h.Redo(ctx)
	assert.ErrorIs(t, err, domain.ErrNoHistory)
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mockingbird.db")

	b, err := storage.Open(ctx, storage.Options{Driver: storage.DriverSQLite, DSN: path})
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, path, b.Path)
	require.NoError(t, b.State.SetMany(ctx, map[string]string{"x": "y"}))

	_, err = storage.Open(ctx, storage.Options{Driver: "oracle"})
	assert.Error(t, err)
}
