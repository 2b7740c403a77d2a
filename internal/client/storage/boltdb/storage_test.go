package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/roadassist/roadassist-client/internal/client/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "client.db")

	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestNew_Success(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "client.db")

	ctx := context.Background()
	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() {
		require.NoError(t, store.Close())
	}()

	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	// All namespace buckets must exist
	err = store.db.View(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketCache, bucketVault, bucketOutbox, bucketMisc} {
			if tx.Bucket(b) == nil {
				return os.ErrNotExist
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	ctx := context.Background()
	invalidPath := string([]byte{0})
	store, err := New(ctx, invalidPath)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestStorage_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	_, err := store.Get(ctx, "cache/profile")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Set(ctx, "cache/profile", []byte("v1")))

	value, err := store.Get(ctx, "cache/profile")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)

	require.NoError(t, store.Set(ctx, "cache/profile", []byte("v2")))
	value, err = store.Get(ctx, "cache/profile")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)

	require.NoError(t, store.Delete(ctx, "cache/profile"))
	_, err = store.Get(ctx, "cache/profile")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Idempotent delete
	assert.NoError(t, store.Delete(ctx, "cache/profile"))
}

func TestStorage_Keys(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	require.NoError(t, store.Set(ctx, "outbox/item/00000002", []byte("b")))
	require.NoError(t, store.Set(ctx, "outbox/item/00000001", []byte("a")))
	require.NoError(t, store.Set(ctx, "outbox/seq", []byte("2")))
	require.NoError(t, store.Set(ctx, "vault/access", []byte("t")))

	keys, err := store.Keys(ctx, "outbox/item/")
	require.NoError(t, err)
	assert.Equal(t, []string{"outbox/item/00000001", "outbox/item/00000002"}, keys)
}

func TestStorage_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	require.NoError(t, store.Set(ctx, "cache/k", []byte("c")))
	require.NoError(t, store.Set(ctx, "vault/k", []byte("v")))
	require.NoError(t, store.Set(ctx, "outbox/k", []byte("o")))
	require.NoError(t, store.Set(ctx, "device/id", []byte("d")))

	// Each namespace lives in its own bucket
	err := store.db.View(func(tx *bbolt.Tx) error {
		assert.NotNil(t, tx.Bucket(bucketCache).Get([]byte("cache/k")))
		assert.NotNil(t, tx.Bucket(bucketVault).Get([]byte("vault/k")))
		assert.NotNil(t, tx.Bucket(bucketOutbox).Get([]byte("outbox/k")))
		assert.NotNil(t, tx.Bucket(bucketMisc).Get([]byte("device/id")))
		return nil
	})
	require.NoError(t, err)
}

func TestStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "client.db")

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "outbox/item/00000001", []byte("pending")))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, reopened.Close())
	}()

	value, err := reopened.Get(ctx, "outbox/item/00000001")
	require.NoError(t, err)
	assert.Equal(t, []byte("pending"), value)
}
