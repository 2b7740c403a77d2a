package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/roadassist/roadassist-client/internal/client/storage"
)

// DefaultTTL applies to entries stored without an explicit ttl
const DefaultTTL = time.Hour

// EntryState tags a cached value by its provenance
type EntryState string

const (
	// StateOptimistic - written locally before the server acknowledged the
	// mutation that produced it; reconciled when the outbox item resolves
	StateOptimistic EntryState = "optimistic"
	// StateConfirmed - reflects server-acknowledged state
	StateConfirmed EntryState = "confirmed"
)

// entry is the persisted envelope around a cached value
type entry struct {
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	TTL       time.Duration   `json:"ttl"`
	State     EntryState      `json:"state"`
}

// expired reports whether the entry is past its ttl at now
func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) > e.TTL
}

// Store is a best-effort TTL cache over the key-value store. It is never a
// source of truth: every storage failure degrades to a cache miss, and an
// entry past its ttl is treated as absent even while physically present.
type Store struct {
	kv         storage.KVStore
	defaultTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a cache store. defaultTTL <= 0 selects DefaultTTL.
func New(kv storage.KVStore, defaultTTL time.Duration, logger *slog.Logger) *Store {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Store{
		kv:         kv,
		defaultTTL: defaultTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Set stores a server-confirmed value under the default ttl
func (s *Store) Set(ctx context.Context, key string, value []byte) {
	s.set(ctx, key, value, s.defaultTTL, StateConfirmed)
}

// SetTTL stores a server-confirmed value with an explicit ttl
func (s *Store) SetTTL(ctx context.Context, key string, value []byte, ttl time.Duration) {
	s.set(ctx, key, value, ttl, StateConfirmed)
}

// SetOptimistic stores a locally produced value that has not been
// acknowledged by the server yet
func (s *Store) SetOptimistic(ctx context.Context, key string, value []byte) {
	s.set(ctx, key, value, s.defaultTTL, StateOptimistic)
}

func (s *Store) set(ctx context.Context, key string, value []byte, ttl time.Duration, state EntryState) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	e := entry{
		Value:     value,
		CreatedAt: s.now(),
		TTL:       ttl,
		State:     state,
	}
	data, err := json.Marshal(&e)
	if err != nil {
		s.logger.Debug("cache set failed to marshal entry", "key", key, "error", err)
		return
	}
	if err := s.kv.Set(ctx, storage.NamespaceCache+key, data); err != nil {
		s.logger.Debug("cache set failed", "key", key, "error", err)
	}
}

// Get returns the cached value for key, or absent. An expired entry is
// deleted on the way out and reported as a miss; no stale value is ever
// returned.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	value, _, ok := s.GetWithState(ctx, key)
	return value, ok
}

// GetWithState returns the cached value together with its state tag
func (s *Store) GetWithState(ctx context.Context, key string) ([]byte, EntryState, bool) {
	e, ok := s.load(ctx, key)
	if !ok {
		return nil, "", false
	}

	if e.expired(s.now()) {
		// lazy eviction
		if err := s.kv.Delete(ctx, storage.NamespaceCache+key); err != nil {
			s.logger.Debug("cache failed to evict expired entry", "key", key, "error", err)
		}
		return nil, "", false
	}

	return e.Value, e.State, true
}

// Confirm flips an optimistic entry to confirmed, keeping its value and ttl.
// A no-op when the entry is missing, expired or already confirmed.
func (s *Store) Confirm(ctx context.Context, key string) {
	e, ok := s.load(ctx, key)
	if !ok || e.expired(s.now()) || e.State == StateConfirmed {
		return
	}
	s.set(ctx, key, e.Value, e.TTL, StateConfirmed)
}

// Invalidate removes key regardless of its ttl
func (s *Store) Invalidate(ctx context.Context, key string) {
	if err := s.kv.Delete(ctx, storage.NamespaceCache+key); err != nil {
		s.logger.Debug("cache invalidate failed", "key", key, "error", err)
	}
}

// SweepExpired removes every expired entry and returns how many were
// deleted. Runs independently of reads to bound growth from entries that
// are never read again.
func (s *Store) SweepExpired(ctx context.Context) int {
	keys, err := s.kv.Keys(ctx, storage.NamespaceCache)
	if err != nil {
		s.logger.Debug("cache sweep failed to list keys", "error", err)
		return 0
	}

	now := s.now()
	removed := 0
	for _, storageKey := range keys {
		data, err := s.kv.Get(ctx, storageKey)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(data, &e); err != nil || e.expired(now) {
			// malformed entries are swept along with expired ones
			if err := s.kv.Delete(ctx, storageKey); err != nil {
				s.logger.Debug("cache sweep failed to delete", "key", storageKey, "error", err)
				continue
			}
			removed++
		}
	}
	return removed
}

// ClearAll removes every cache entry
func (s *Store) ClearAll(ctx context.Context) {
	keys, err := s.kv.Keys(ctx, storage.NamespaceCache)
	if err != nil {
		s.logger.Debug("cache clear failed to list keys", "error", err)
		return
	}
	for _, storageKey := range keys {
		if err := s.kv.Delete(ctx, storageKey); err != nil {
			s.logger.Debug("cache clear failed to delete", "key", storageKey, "error", err)
		}
	}
}

// StartSweeper runs SweepExpired on a fixed interval until the returned
// stop function is called. The stop function is safe to call more than once.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				s.SweepExpired(ctx)
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		select {
		case <-done:
		default:
			close(done)
		}
	}
}

func (s *Store) load(ctx context.Context, key string) (*entry, bool) {
	data, err := s.kv.Get(ctx, storage.NamespaceCache+key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		s.logger.Debug("cache entry corrupted", "key", key, "error", err)
		return nil, false
	}
	return &e, true
}
