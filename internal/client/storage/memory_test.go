package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, err := store.Get(ctx, "cache/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "cache/profile", []byte("v1")))

	value, err := store.Get(ctx, "cache/profile")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)

	// Overwrite replaces the previous value
	require.NoError(t, store.Set(ctx, "cache/profile", []byte("v2")))
	value, err = store.Get(ctx, "cache/profile")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, "vault/access", []byte("token")))
	require.NoError(t, store.Delete(ctx, "vault/access"))

	_, err := store.Get(ctx, "vault/access")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error
	assert.NoError(t, store.Delete(ctx, "vault/access"))
}

func TestMemory_Keys(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, "outbox/item/002", []byte("b")))
	require.NoError(t, store.Set(ctx, "outbox/item/001", []byte("a")))
	require.NoError(t, store.Set(ctx, "cache/profile", []byte("c")))

	keys, err := store.Keys(ctx, "outbox/item/")
	require.NoError(t, err)
	assert.Equal(t, []string{"outbox/item/001", "outbox/item/002"}, keys)

	keys, err = store.Keys(ctx, "vault/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	original := []byte("value")
	require.NoError(t, store.Set(ctx, "cache/k", original))
	original[0] = 'x'

	stored, err := store.Get(ctx, "cache/k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), stored)

	// Mutating the returned slice must not affect the stored copy
	stored[0] = 'y'
	again, err := store.Get(ctx, "cache/k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), again)
}
