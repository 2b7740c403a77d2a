package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadassist/roadassist-client/internal/client/api"
	"github.com/roadassist/roadassist-client/internal/client/storage"
	"github.com/roadassist/roadassist-client/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestQueue returns a queue with a controllable clock and deterministic
// jitter
func newTestQueue(kv storage.KVStore, cfg Config) (*Queue, *time.Time) {
	q := NewQueue(kv, cfg, testLogger())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return now }
	q.jitter = func() float64 { return 1 }
	return q, &now
}

func TestQueue_Enqueue(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(storage.NewMemory(), Config{})

	id, err := q.Enqueue(ctx, "message", json.RawMessage(`{"text":"hi"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	pending, err := q.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, models.ActionPending, pending[0].Status)
	assert.Equal(t, uint64(1), pending[0].Seq)
}

func TestQueue_Enqueue_InvalidKind(t *testing.T) {
	q, _ := newTestQueue(storage.NewMemory(), Config{})

	_, err := q.Enqueue(context.Background(), "Not A Kind", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid action kind")
}

func TestQueue_Enqueue_PersistenceFailureSurfaces(t *testing.T) {
	boom := errors.New("disk full")
	kv := &storage.KVStoreMock{
		GetFunc: func(ctx context.Context, key string) ([]byte, error) {
			return nil, storage.ErrNotFound
		},
		SetFunc: func(ctx context.Context, key string, value []byte) error {
			return boom
		},
	}
	q, _ := newTestQueue(kv, Config{})

	_, err := q.Enqueue(context.Background(), "message", nil)
	require.ErrorIs(t, err, boom)
}

func TestQueue_Drain_FIFO(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(storage.NewMemory(), Config{})

	idA, err := q.Enqueue(ctx, "message", json.RawMessage(`"A"`))
	require.NoError(t, err)
	idB, err := q.Enqueue(ctx, "message", json.RawMessage(`"B"`))
	require.NoError(t, err)
	idC, err := q.Enqueue(ctx, "message", json.RawMessage(`"C"`))
	require.NoError(t, err)

	sender := &SenderMock{
		SendFunc: func(ctx context.Context, action *models.QueuedAction) error {
			return nil
		},
	}

	outcomes, err := q.Drain(ctx, sender)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	calls := sender.SendCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, idA, calls[0].Action.ID)
	assert.Equal(t, idB, calls[1].Action.ID)
	assert.Equal(t, idC, calls[2].Action.ID)

	// Everything acknowledged, nothing pending
	pending, err := q.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// Enqueue A,B,C of kind "message" while offline, connect, have B fail twice
// and then succeed: the backend must still observe A,B,C in that order -
// B is retried in place, never reordered after C.
func TestQueue_Drain_RetryInPlaceKeepsKindOrder(t *testing.T) {
	ctx := context.Background()
	q, now := newTestQueue(storage.NewMemory(), Config{BaseDelay: time.Second})

	idA, err := q.Enqueue(ctx, "message", json.RawMessage(`"A"`))
	require.NoError(t, err)
	idB, err := q.Enqueue(ctx, "message", json.RawMessage(`"B"`))
	require.NoError(t, err)
	idC, err := q.Enqueue(ctx, "message", json.RawMessage(`"C"`))
	require.NoError(t, err)

	bFailures := 0
	var delivered []string
	sender := &SenderMock{
		SendFunc: func(ctx context.Context, action *models.QueuedAction) error {
			if action.ID == idB && bFailures < 2 {
				bFailures++
				return &api.StatusError{StatusCode: http.StatusBadGateway}
			}
			delivered = append(delivered, action.ID)
			return nil
		},
	}

	// Cycle 1: A delivered, B fails, C held back behind B
	_, err = q.Drain(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, []string{idA}, delivered)

	// Cycle 2: B fails again, C still held back
	*now = now.Add(10 * time.Second)
	_, err = q.Drain(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, []string{idA}, delivered)

	// Cycle 3: B succeeds, then C
	*now = now.Add(10 * time.Second)
	_, err = q.Drain(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, []string{idA, idB, idC}, delivered)
}

func TestQueue_Drain_UnrelatedKindsNotBlocked(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(storage.NewMemory(), Config{})

	idMsg, err := q.Enqueue(ctx, "message", nil)
	require.NoError(t, err)
	idLoc, err := q.Enqueue(ctx, "location:update", nil)
	require.NoError(t, err)

	var delivered []string
	sender := &SenderMock{
		SendFunc: func(ctx context.Context, action *models.QueuedAction) error {
			if action.ID == idMsg {
				return &api.StatusError{StatusCode: http.StatusBadGateway}
			}
			delivered = append(delivered, action.ID)
			return nil
		},
	}

	_, err = q.Drain(ctx, sender)
	require.NoError(t, err)

	// The failing "message" stream does not hold back "location:update"
	assert.Equal(t, []string{idLoc}, delivered)
}

func TestQueue_Drain_MaxAttemptsMarksFailed(t *testing.T) {
	ctx := context.Background()
	q, now := newTestQueue(storage.NewMemory(), Config{MaxAttempts: 3, BaseDelay: time.Second})

	id, err := q.Enqueue(ctx, "message", nil)
	require.NoError(t, err)

	sender := &SenderMock{
		SendFunc: func(ctx context.Context, action *models.QueuedAction) error {
			return &api.StatusError{StatusCode: http.StatusInternalServerError}
		},
	}

	for i := 0; i < 3; i++ {
		_, err = q.Drain(ctx, sender)
		require.NoError(t, err)
		*now = now.Add(time.Minute)
	}

	actions, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, models.ActionFailed, actions[0].Status)
	assert.Equal(t, 3, actions[0].Attempts)
	assert.NotEmpty(t, actions[0].LastError)

	// Failed items are excluded from subsequent drains
	before := len(sender.SendCalls())
	_, err = q.Drain(ctx, sender)
	require.NoError(t, err)
	assert.Len(t, sender.SendCalls(), before)

	// Until explicitly retried
	require.NoError(t, q.Retry(ctx, id))
	_, err = q.Drain(ctx, sender)
	require.NoError(t, err)
	assert.Len(t, sender.SendCalls(), before+1)
}

func TestQueue_Drain_TerminalErrorFailsImmediately(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(storage.NewMemory(), Config{})

	_, err := q.Enqueue(ctx, "message", nil)
	require.NoError(t, err)

	sender := &SenderMock{
		SendFunc: func(ctx context.Context, action *models.QueuedAction) error {
			return &api.StatusError{StatusCode: http.StatusUnprocessableEntity, Message: "bad payload"}
		},
	}

	outcomes, err := q.Drain(ctx, sender)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, models.ActionFailed, outcomes[0].Status)
	assert.Contains(t, outcomes[0].Err, "bad payload")

	// One shot, no retries for validation failures
	assert.Len(t, sender.SendCalls(), 1)
}

func TestQueue_Drain_AuthErrorAborts(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(storage.NewMemory(), Config{})

	_, err := q.Enqueue(ctx, "message", nil)
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, "job:accept", nil)
	require.NoError(t, err)

	sender := &SenderMock{
		SendFunc: func(ctx context.Context, action *models.QueuedAction) error {
			return &api.StatusError{StatusCode: http.StatusUnauthorized}
		},
	}

	_, err = q.Drain(ctx, sender)
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))

	// Only the first item was attempted; both remain pending untouched
	assert.Len(t, sender.SendCalls(), 1)
	pending, err := q.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, 0, pending[0].Attempts)
}

func TestQueue_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	q1, _ := newTestQueue(kv, Config{})
	id, err := q1.Enqueue(ctx, "message", json.RawMessage(`"offline"`))
	require.NoError(t, err)

	// A new queue over the same store sees the pending item and keeps
	// allocating increasing sequence numbers
	q2, _ := newTestQueue(kv, Config{})
	pending, err := q2.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)

	_, err = q2.Enqueue(ctx, "message", nil)
	require.NoError(t, err)
	actions, err := q2.List(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Less(t, actions[0].Seq, actions[1].Seq)
}

// A process that dies between marking an item in flight and recording the
// outcome leaves in_flight residue in storage. The next drain must pick the
// item up again instead of skipping it forever.
func TestQueue_Drain_RecoversInFlightAfterRestart(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	q1, _ := newTestQueue(kv, Config{})
	id, err := q1.Enqueue(ctx, "message", json.RawMessage(`"interrupted"`))
	require.NoError(t, err)

	// Simulate the crash: the item is durably in flight, no outcome recorded
	action, err := q1.find(ctx, id)
	require.NoError(t, err)
	action.Status = models.ActionInFlight
	require.NoError(t, q1.save(ctx, action))

	q2, _ := newTestQueue(kv, Config{})
	sender := &SenderMock{
		SendFunc: func(ctx context.Context, action *models.QueuedAction) error {
			return nil
		},
	}

	outcomes, err := q2.Drain(ctx, sender)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, id, outcomes[0].ID)
	assert.Equal(t, models.ActionSynced, outcomes[0].Status)
	require.Len(t, sender.SendCalls(), 1)
}

func TestQueue_AckAndPurge(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(storage.NewMemory(), Config{})

	id, err := q.Enqueue(ctx, "message", nil)
	require.NoError(t, err)

	require.NoError(t, q.Ack(ctx, id))

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[models.ActionSynced])

	purged, err := q.PurgeSynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	actions, err := q.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)

	assert.ErrorIs(t, q.Ack(ctx, id), ErrNotFound)
}

func TestQueue_Fail(t *testing.T) {
	ctx := context.Background()
	q, now := newTestQueue(storage.NewMemory(), Config{MaxAttempts: 2, BaseDelay: time.Second})

	id, err := q.Enqueue(ctx, "message", nil)
	require.NoError(t, err)

	require.NoError(t, q.Fail(ctx, id, "publish timeout"))

	actions, err := q.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ActionPending, actions[0].Status)
	assert.Equal(t, 1, actions[0].Attempts)
	assert.True(t, actions[0].NextAttemptAt.After(*now))

	// Second failure exhausts the budget
	require.NoError(t, q.Fail(ctx, id, "publish timeout"))
	actions, err = q.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ActionFailed, actions[0].Status)
}

func TestQueue_PurgeAll(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(storage.NewMemory(), Config{})

	_, err := q.Enqueue(ctx, "message", nil)
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, "job:accept", nil)
	require.NoError(t, err)

	require.NoError(t, q.PurgeAll(ctx))

	actions, err := q.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestQueue_BackoffDelay(t *testing.T) {
	q, _ := newTestQueue(storage.NewMemory(), Config{BaseDelay: time.Second, MaxDelay: 30 * time.Second})

	// Monotonically non-decreasing up to the cap
	var prev time.Duration
	for attempts := 1; attempts <= 10; attempts++ {
		d := q.backoffDelay(attempts)
		assert.GreaterOrEqual(t, d, prev)
		assert.LessOrEqual(t, d, 30*time.Second)
		prev = d
	}

	assert.Equal(t, time.Second, q.backoffDelay(1))
	assert.Equal(t, 2*time.Second, q.backoffDelay(2))
	assert.Equal(t, 30*time.Second, q.backoffDelay(10))
}

func TestQueue_BackoffJitterRange(t *testing.T) {
	q := NewQueue(storage.NewMemory(), Config{BaseDelay: time.Second, MaxDelay: time.Minute}, testLogger())

	for i := 0; i < 100; i++ {
		d := q.backoffDelay(3) // nominal 4s
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.Less(t, d, 4*time.Second+time.Millisecond)
	}
}
