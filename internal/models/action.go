package models

import (
	"encoding/json"
	"time"
)

// ActionStatus describes where a queued action is in its lifecycle
type ActionStatus string

const (
	// ActionPending - waiting to be picked up by a drain cycle
	ActionPending ActionStatus = "pending"
	// ActionInFlight - currently being sent to the server
	ActionInFlight ActionStatus = "in_flight"
	// ActionSynced - acknowledged by the server, kept until purged
	ActionSynced ActionStatus = "synced"
	// ActionFailed - exceeded the retry budget or rejected outright,
	// excluded from draining until explicitly retried
	ActionFailed ActionStatus = "failed"
)

// QueuedAction is one durable outbox item. ID is generated at enqueue time
// and never changes across retries, so the server can deduplicate resends.
type QueuedAction struct {
	ID            string          `json:"id"`                // client-generated idempotency id (UUID)
	Kind          string          `json:"kind"`              // logical mutation kind, e.g. "message"
	Payload       json.RawMessage `json:"payload"`           // opaque business payload
	Seq           uint64          `json:"seq"`               // monotonic enqueue sequence, drives FIFO order
	EnqueuedAt    time.Time       `json:"enqueued_at"`       // when the action was queued
	Attempts      int             `json:"attempts"`          // completed send attempts
	Status        ActionStatus    `json:"status"`            // current lifecycle state
	NextAttemptAt time.Time       `json:"next_attempt_at"`   // earliest time the next attempt may run
	LastError     string          `json:"last_error,omitempty"` // message from the most recent failure
}

// Retryable reports whether the action may be sent at now
func (a *QueuedAction) Retryable(now time.Time) bool {
	return a.Status == ActionPending && !now.Before(a.NextAttemptAt)
}
