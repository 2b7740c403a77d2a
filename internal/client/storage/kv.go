package storage

import "context"

//go:generate moq -out kv_mock.go . KVStore

// Key namespaces. The cache, vault and outbox share one physical store but
// never write the same key: each component prefixes every key it owns with
// its namespace. The partitioning is structural - nothing checks it at
// runtime.
const (
	NamespaceCache  = "cache/"
	NamespaceVault  = "vault/"
	NamespaceOutbox = "outbox/"
)

// KVStore defines the asynchronous key-value primitive the sync layer is
// built on. Implementations provide no ordering or multi-key transaction
// guarantees - callers that need atomicity across keys must design around
// its absence.
type KVStore interface {
	// Get returns the value for key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys with the given prefix in lexicographic order
	Keys(ctx context.Context, prefix string) ([]string, error)
}
