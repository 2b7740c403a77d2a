package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roadassist/roadassist-client/internal/client/api"
	"github.com/roadassist/roadassist-client/internal/client/storage"
	"github.com/roadassist/roadassist-client/internal/models"
	"github.com/roadassist/roadassist-client/internal/validation"
)

//go:generate moq -out sender_mock.go . Sender

// Sender transmits one action to the backend. Implementations classify
// failures through the api error helpers: auth errors abort the drain,
// terminal errors fail the item, everything else counts as transient.
type Sender interface {
	Send(ctx context.Context, action *models.QueuedAction) error
}

// Defaults for the retry policy
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 2 * time.Second
	DefaultMaxDelay    = 2 * time.Minute
	DefaultItemTimeout = 15 * time.Second
)

// Storage keys owned by the queue
const (
	keySeq     = storage.NamespaceOutbox + "seq"
	itemPrefix = storage.NamespaceOutbox + "item/"
)

// ErrNotFound indicates that no queued action has the given id
var ErrNotFound = errors.New("queued action not found")

// Config tunes the retry policy. Zero fields select the defaults.
type Config struct {
	MaxAttempts int           // attempts before an item is marked Failed
	BaseDelay   time.Duration // backoff base, doubled per attempt
	MaxDelay    time.Duration // backoff cap
	ItemTimeout time.Duration // per-item send timeout during a drain
}

// Outcome reports what happened to one item during a drain cycle
type Outcome struct {
	ID     string
	Kind   string
	Status models.ActionStatus
	Err    string // failure detail, empty on success
}

// Queue is the durable mutation outbox. Items are persisted at enqueue time
// and drained in FIFO order per kind: an item is never sent before an older
// item of the same kind has been acknowledged, so retrying in place cannot
// reorder a logical stream.
type Queue struct {
	kv     storage.KVStore
	cfg    Config
	logger *slog.Logger

	// mu serializes queue mutations; the KV store itself has no
	// multi-key guarantees
	mu sync.Mutex

	now    func() time.Time
	jitter func() float64 // factor in [0.5, 1.0)
}

// NewQueue creates an outbox over the given store
func NewQueue(kv storage.KVStore, cfg Config, logger *slog.Logger) *Queue {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = DefaultItemTimeout
	}
	return &Queue{
		kv:     kv,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		jitter: func() float64 { return 0.5 + rand.Float64()/2 },
	}
}

// Enqueue persists a new action and returns its id. The id is generated here
// and stays stable across retries - the backend deduplicates on it, which is
// what makes resending after a timeout safe. A persistence failure is
// returned to the caller: losing a queued mutation is a correctness
// violation, not a degradation.
func (q *Queue) Enqueue(ctx context.Context, kind string, payload json.RawMessage) (string, error) {
	if err := validation.ValidateKind(kind); err != nil {
		return "", fmt.Errorf("invalid action kind: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	seq, err := q.nextSeq(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to allocate sequence: %w", err)
	}

	action := &models.QueuedAction{
		ID:         uuid.New().String(),
		Kind:       kind,
		Payload:    payload,
		Seq:        seq,
		EnqueuedAt: q.now(),
		Status:     models.ActionPending,
	}

	if err := q.save(ctx, action); err != nil {
		return "", fmt.Errorf("failed to persist action: %w", err)
	}

	q.logger.Debug("action enqueued", "id", action.ID, "kind", kind, "seq", seq)
	return action.ID, nil
}

// Drain sends every eligible pending item through sender, oldest first.
// A transient failure puts the item back to Pending with a backoff delay and
// blocks younger items of the same kind for this cycle. An auth failure
// aborts the drain - the caller refreshes the credential and drains again.
// Items left in flight by an interrupted process are recovered and resent.
func (q *Queue) Drain(ctx context.Context, sender Sender) ([]Outcome, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.list(ctx)
	if err != nil {
		return nil, err
	}

	now := q.now()
	outcomes := make([]Outcome, 0, len(actions))
	blocked := make(map[string]bool)

	for _, action := range actions {
		if action.Status == models.ActionInFlight {
			// Drain holds the lock for its whole cycle, so an in-flight
			// item here is residue of a process that died mid-send. The
			// stable id makes resending safe.
			action.Status = models.ActionPending
			if err := q.save(ctx, action); err != nil {
				return outcomes, fmt.Errorf("failed to recover in-flight action: %w", err)
			}
		}
		if action.Status != models.ActionPending {
			continue
		}
		if blocked[action.Kind] {
			continue
		}
		if now.Before(action.NextAttemptAt) {
			// Still backing off. Younger items of this kind must wait
			// behind it to preserve per-kind order.
			blocked[action.Kind] = true
			continue
		}

		action.Status = models.ActionInFlight
		if err := q.save(ctx, action); err != nil {
			return outcomes, fmt.Errorf("failed to mark action in flight: %w", err)
		}

		sendCtx, cancel := context.WithTimeout(ctx, q.cfg.ItemTimeout)
		sendErr := sender.Send(sendCtx, action)
		cancel()

		switch {
		case sendErr == nil:
			action.Status = models.ActionSynced
			action.Attempts++
			action.LastError = ""
			if err := q.save(ctx, action); err != nil {
				return outcomes, fmt.Errorf("failed to mark action synced: %w", err)
			}
			outcomes = append(outcomes, Outcome{ID: action.ID, Kind: action.Kind, Status: models.ActionSynced})

		case api.IsAuthError(sendErr):
			// Not the item's fault. Put it back untouched and abort.
			action.Status = models.ActionPending
			if err := q.save(ctx, action); err != nil {
				q.logger.Warn("failed to revert action after auth error", "id", action.ID, "error", err)
			}
			return outcomes, fmt.Errorf("drain aborted: %w", sendErr)

		case api.IsTerminalError(sendErr):
			action.Status = models.ActionFailed
			action.Attempts++
			action.LastError = sendErr.Error()
			if err := q.save(ctx, action); err != nil {
				return outcomes, fmt.Errorf("failed to mark action failed: %w", err)
			}
			outcomes = append(outcomes, Outcome{ID: action.ID, Kind: action.Kind, Status: models.ActionFailed, Err: action.LastError})
			q.logger.Warn("action rejected by server", "id", action.ID, "kind", action.Kind, "error", sendErr)

		default:
			// Transient: schedule a retry in place
			action.Attempts++
			action.LastError = sendErr.Error()
			if action.Attempts >= q.cfg.MaxAttempts {
				action.Status = models.ActionFailed
				q.logger.Warn("action exhausted retries", "id", action.ID, "kind", action.Kind, "attempts", action.Attempts)
			} else {
				action.Status = models.ActionPending
				action.NextAttemptAt = now.Add(q.backoffDelay(action.Attempts))
			}
			if err := q.save(ctx, action); err != nil {
				return outcomes, fmt.Errorf("failed to reschedule action: %w", err)
			}
			outcomes = append(outcomes, Outcome{ID: action.ID, Kind: action.Kind, Status: action.Status, Err: action.LastError})
			blocked[action.Kind] = true
		}

		if ctx.Err() != nil {
			return outcomes, ctx.Err()
		}
	}

	return outcomes, nil
}

// Ack marks an action as acknowledged by the server
func (q *Queue) Ack(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	action, err := q.find(ctx, id)
	if err != nil {
		return err
	}
	action.Status = models.ActionSynced
	action.LastError = ""
	return q.save(ctx, action)
}

// Fail records a failure for an action, applying the retry policy
func (q *Queue) Fail(ctx context.Context, id string, cause string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	action, err := q.find(ctx, id)
	if err != nil {
		return err
	}
	action.Attempts++
	action.LastError = cause
	if action.Attempts >= q.cfg.MaxAttempts {
		action.Status = models.ActionFailed
	} else {
		action.Status = models.ActionPending
		action.NextAttemptAt = q.now().Add(q.backoffDelay(action.Attempts))
	}
	return q.save(ctx, action)
}

// Retry resets a Failed action for another round of automatic draining.
// Intended for explicit user action from the UI.
func (q *Queue) Retry(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	action, err := q.find(ctx, id)
	if err != nil {
		return err
	}
	if action.Status != models.ActionFailed {
		return fmt.Errorf("action %s is %s, only failed actions can be retried", id, action.Status)
	}
	action.Status = models.ActionPending
	action.Attempts = 0
	action.NextAttemptAt = time.Time{}
	action.LastError = ""
	return q.save(ctx, action)
}

// ListPending returns actions awaiting transmission, oldest first
func (q *Queue) ListPending(ctx context.Context) ([]*models.QueuedAction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.list(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*models.QueuedAction, 0, len(actions))
	for _, action := range actions {
		if action.Status == models.ActionPending || action.Status == models.ActionInFlight {
			pending = append(pending, action)
		}
	}
	return pending, nil
}

// List returns every queued action, oldest first
func (q *Queue) List(ctx context.Context) ([]*models.QueuedAction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list(ctx)
}

// PurgeSynced removes acknowledged actions and returns how many were deleted
func (q *Queue) PurgeSynced(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.list(ctx)
	if err != nil {
		return 0, err
	}
	purged := 0
	for _, action := range actions {
		if action.Status != models.ActionSynced {
			continue
		}
		if err := q.kv.Delete(ctx, itemKey(action.Seq)); err != nil {
			return purged, fmt.Errorf("failed to purge action %s: %w", action.ID, err)
		}
		purged++
	}
	return purged, nil
}

// PurgeAll removes every queued action regardless of status.
// Used on logout when the product policy discards the pending queue.
func (q *Queue) PurgeAll(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	keys, err := q.kv.Keys(ctx, itemPrefix)
	if err != nil {
		return fmt.Errorf("failed to list actions: %w", err)
	}
	for _, key := range keys {
		if err := q.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}

// Stats returns the number of actions per status
func (q *Queue) Stats(ctx context.Context) (map[models.ActionStatus]int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.list(ctx)
	if err != nil {
		return nil, err
	}
	stats := make(map[models.ActionStatus]int)
	for _, action := range actions {
		stats[action.Status]++
	}
	return stats, nil
}

// backoffDelay computes the retry delay after the given number of attempts:
// base * 2^(attempts-1), capped, scaled by a jitter factor in [0.5, 1.0) to
// avoid synchronized retry storms after a reconnect
func (q *Queue) backoffDelay(attempts int) time.Duration {
	exp := float64(q.cfg.BaseDelay) * math.Pow(2, float64(attempts-1))
	capped := math.Min(exp, float64(q.cfg.MaxDelay))
	return time.Duration(capped * q.jitter())
}

// nextSeq allocates the next enqueue sequence number.
// Caller holds q.mu.
func (q *Queue) nextSeq(ctx context.Context) (uint64, error) {
	var seq uint64 = 1
	raw, err := q.kv.Get(ctx, keySeq)
	if err == nil {
		prev, parseErr := strconv.ParseUint(string(raw), 10, 64)
		if parseErr != nil {
			return 0, fmt.Errorf("corrupted sequence counter: %w", parseErr)
		}
		seq = prev + 1
	} else if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}

	if err := q.kv.Set(ctx, keySeq, []byte(strconv.FormatUint(seq, 10))); err != nil {
		return 0, err
	}
	return seq, nil
}

// list loads every action in seq order.
// Caller holds q.mu.
func (q *Queue) list(ctx context.Context) ([]*models.QueuedAction, error) {
	keys, err := q.kv.Keys(ctx, itemPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}

	actions := make([]*models.QueuedAction, 0, len(keys))
	for _, key := range keys {
		data, err := q.kv.Get(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load action %s: %w", key, err)
		}
		var action models.QueuedAction
		if err := json.Unmarshal(data, &action); err != nil {
			q.logger.Warn("skipping corrupted outbox entry", "key", key, "error", err)
			continue
		}
		actions = append(actions, &action)
	}
	return actions, nil
}

// find loads one action by id.
// Caller holds q.mu.
func (q *Queue) find(ctx context.Context, id string) (*models.QueuedAction, error) {
	actions, err := q.list(ctx)
	if err != nil {
		return nil, err
	}
	for _, action := range actions {
		if action.ID == id {
			return action, nil
		}
	}
	return nil, ErrNotFound
}

// save persists one action under its seq-ordered key.
// Caller holds q.mu.
func (q *Queue) save(ctx context.Context, action *models.QueuedAction) error {
	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}
	return q.kv.Set(ctx, itemKey(action.Seq), data)
}

// itemKey formats a zero-padded key so lexicographic key order matches
// enqueue order
func itemKey(seq uint64) string {
	return fmt.Sprintf("%s%020d", itemPrefix, seq)
}
