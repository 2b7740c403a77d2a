package api

import "encoding/json"

// Realtime topics pushed by the server
const (
	TopicMessageSend         = "message:send"
	TopicJobUpdate           = "job:update"
	TopicLocationUpdate      = "location:update"
	TopicNotificationReceive = "notification:receive"
	TopicConversationsUpdate = "conversations:update"
)

// Envelope frame types exchanged over the realtime connection
const (
	FrameHandshake = "handshake"
	FrameHello     = "hello"
	FrameError     = "error"
	FrameEvent     = "event"
	FramePublish   = "publish"
	FrameAck       = "ack"
	FramePing      = "ping"
	FramePong      = "pong"
)

// Envelope is the single frame format for the realtime connection.
// Which fields are set depends on Type.
type Envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`      // correlates publish frames with acks
	Topic   string          `json:"topic,omitempty"`   // event/publish topic
	Event   *Event          `json:"event,omitempty"`   // set for event frames
	Payload json.RawMessage `json:"payload,omitempty"` // set for publish frames
	Error   string          `json:"error,omitempty"`   // set for error frames
}

// Handshake is the authentication payload sent as the first frame
// after the transport connection is established.
type Handshake struct {
	UserID   string `json:"user_id"`
	Token    string `json:"token"`
	DeviceID string `json:"device_id,omitempty"` // installation id, lets the server scope push state per device
}

// Event represents a server-pushed state change. Events carry no ordering
// guarantee across reconnects; Version is a monotonic per-entity counter the
// client uses to discard stale or duplicated deliveries.
type Event struct {
	Entity  string          `json:"entity"`  // entity kind, e.g. "job", "conversation"
	ID      string          `json:"id"`      // entity id
	Version int64           `json:"version"` // monotonic per entity, 0 when the server does not track one
	Data    json.RawMessage `json:"data"`    // new entity state, empty when Deleted
	Deleted bool            `json:"deleted"` // entity was removed, cache entry must be invalidated
}

// CacheKey returns the cache key the event applies to
func (e *Event) CacheKey() string {
	return e.Entity + "/" + e.ID
}
