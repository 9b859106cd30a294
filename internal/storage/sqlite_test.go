package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Get(ctx, "accessjwt")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "accessjwt", "first"))
	require.NoError(t, store.Set(ctx, "accessjwt", "second"))

	got, err := store.Get(ctx, "accessjwt")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	require.NoError(t, store.Delete(ctx, "accessjwt"))
	require.NoError(t, store.Delete(ctx, "accessjwt"), "deleting twice is fine")
	_, err = store.Get(ctx, "accessjwt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k", "v"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
