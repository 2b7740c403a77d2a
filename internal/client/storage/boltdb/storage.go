package boltdb

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/roadassist/roadassist-client/internal/client/storage"
)

var (
	// BoltDB bucket names, one per key namespace
	bucketCache  = []byte("cache")
	bucketVault  = []byte("vault")
	bucketOutbox = []byte("outbox")
	bucketMisc   = []byte("misc")
)

// Ensure Storage implements the KVStore interface
var _ storage.KVStore = (*Storage)(nil)

// Storage is the durable BoltDB implementation of storage.KVStore.
// Keys are routed to a bucket by their namespace prefix, so a namespace
// lives in its own bucket and can be scanned without touching the others.
// The full key (prefix included) is stored inside the bucket.
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance.
// dbPath is the path to the BoltDB database file.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets creates the namespace buckets if they do not exist
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketCache, bucketVault, bucketOutbox, bucketMisc} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// bucketFor maps a key to its namespace bucket
func bucketFor(key string) []byte {
	switch {
	case strings.HasPrefix(key, storage.NamespaceCache):
		return bucketCache
	case strings.HasPrefix(key, storage.NamespaceVault):
		return bucketVault
	case strings.HasPrefix(key, storage.NamespaceOutbox):
		return bucketOutbox
	default:
		return bucketMisc
	}
}

// Get returns the value for key
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketFor(key))
		if bucket == nil {
			return fmt.Errorf("bucket not found for key %q", key)
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrNotFound
		}

		// data is only valid inside the transaction, copy it out
		value = make([]byte, len(data))
		copy(value, data)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set stores value under key
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketFor(key))
		if bucket == nil {
			return fmt.Errorf("bucket not found for key %q", key)
		}

		if err := bucket.Put([]byte(key), value); err != nil {
			return fmt.Errorf("failed to put key %q: %w", key, err)
		}
		return nil
	})
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketFor(key))
		if bucket == nil {
			return fmt.Errorf("bucket not found for key %q", key)
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete key %q: %w", key, err)
		}
		return nil
	})
}

// Keys returns all keys with the given prefix in lexicographic order
func (s *Storage) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketFor(prefix))
		if bucket == nil {
			return fmt.Errorf("bucket not found for prefix %q", prefix)
		}

		c := bucket.Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return keys, nil
}
