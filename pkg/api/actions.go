package api

import "encoding/json"

// ActionRequest represents a single client mutation posted to the server.
// ID is generated by the client at enqueue time and is stable across retries,
// so the server is expected to deduplicate on it.
type ActionRequest struct {
	ID         string          `json:"id"`          // client-generated idempotency id
	Kind       string          `json:"kind"`        // logical mutation kind, e.g. "message" or "job:accept"
	Payload    json.RawMessage `json:"payload"`     // opaque business payload
	EnqueuedAt int64           `json:"enqueued_at"` // unix seconds when the client queued the action
}

// ActionAck represents the server acknowledgement of a mutation
type ActionAck struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}
