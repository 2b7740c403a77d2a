package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/roadassist/roadassist-client/internal/models"
	"github.com/roadassist/roadassist-client/internal/validation"
	"github.com/roadassist/roadassist-client/pkg/api"
)

// ConnectionState describes the channel lifecycle
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateReconnecting ConnectionState = "reconnecting"
)

// Defaults for the connection policy
const (
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultHeartbeatInterval = 25 * time.Second
	DefaultReconnectBase     = time.Second
	DefaultReconnectMax      = time.Minute
	DefaultMaxReconnects     = 10
)

var (
	// ErrNotConnected - publish on a channel that has no live connection.
	// Buffering belongs to the outbox, not here.
	ErrNotConnected = errors.New("realtime channel is not connected")

	// ErrHandshakeRejected - the server refused the auth handshake
	ErrHandshakeRejected = errors.New("handshake rejected")
)

// CredentialSource supplies a fresh credential for handshakes.
// Implemented by the vault.
//
//go:generate moq -out credentialsource_mock.go . CredentialSource
type CredentialSource interface {
	GetValid(ctx context.Context) (models.Credential, error)
}

// Handler receives events for a subscribed topic. Events arrive with no
// ordering or duplicate-suppression guarantee across reconnects; consumers
// reconcile against the version field rather than trusting arrival order.
type Handler func(event *api.Event)

// StateHandler receives connection state transitions. A transition to
// Disconnected after Reconnecting means the retry budget is exhausted and
// the disconnect is persistent.
type StateHandler func(state ConnectionState)

// Config tunes the channel. Zero fields select the defaults.
type Config struct {
	URL               string        // websocket endpoint
	DeviceID          string        // installation id sent with the handshake
	HandshakeTimeout  time.Duration // bound on dial + auth handshake
	HeartbeatInterval time.Duration // ping period, also drives the idle read timeout
	ReconnectBase     time.Duration // first reconnect delay
	ReconnectMax      time.Duration // reconnect delay cap
	MaxReconnects     int           // consecutive failures before giving up
}

func (c *Config) applyDefaults() {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.ReconnectBase <= 0 {
		c.ReconnectBase = DefaultReconnectBase
	}
	if c.ReconnectMax <= 0 {
		c.ReconnectMax = DefaultReconnectMax
	}
	if c.MaxReconnects <= 0 {
		c.MaxReconnects = DefaultMaxReconnects
	}
}

// Channel is the authenticated, auto-reconnecting event stream. It is an
// explicit instance with a constructed lifecycle - create, Connect,
// Disconnect - passed by reference to its consumers.
type Channel struct {
	cfg    Config
	creds  CredentialSource
	logger *slog.Logger

	mu        sync.Mutex
	state     ConnectionState
	conn      *websocket.Conn
	userID    string
	gen       int // connection generation, stale goroutines compare before acting
	subs      map[string]map[int]Handler
	stateSubs map[int]StateHandler
	nextSubID int
	acks      map[string]chan error
	stop      chan struct{}
}

// NewChannel creates a disconnected channel
func NewChannel(cfg Config, creds CredentialSource, logger *slog.Logger) *Channel {
	cfg.applyDefaults()
	return &Channel{
		cfg:       cfg,
		creds:     creds,
		logger:    logger,
		state:     StateDisconnected,
		subs:      make(map[string]map[int]Handler),
		stateSubs: make(map[int]StateHandler),
		acks:      make(map[string]chan error),
	}
}

// State returns the current connection state
func (c *Channel) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether a live authenticated connection exists
func (c *Channel) IsConnected() bool {
	return c.State() == StateConnected
}

// Connect dials the server and performs the auth handshake. If the token is
// rejected, a fresh credential is requested from the source and the
// handshake retried once before giving up.
func (c *Channel) Connect(ctx context.Context, userID string, cred models.Credential) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return fmt.Errorf("connect called in state %s", c.state)
	}
	c.userID = userID
	c.stop = make(chan struct{})
	c.mu.Unlock()

	c.setState(StateConnecting)

	conn, err := c.connectOnce(ctx, userID, cred.AccessToken)
	if errors.Is(err, ErrHandshakeRejected) {
		// Token rejected: fetch a fresh credential and retry once
		fresh, credErr := c.creds.GetValid(ctx)
		if credErr != nil {
			c.setState(StateDisconnected)
			return fmt.Errorf("handshake rejected and no fresh credential: %w", credErr)
		}
		conn, err = c.connectOnce(ctx, userID, fresh.AccessToken)
	}
	if err != nil {
		c.setState(StateDisconnected)
		return err
	}

	c.adopt(conn)
	return nil
}

// Disconnect closes the connection and stops reconnecting
func (c *Channel) Disconnect() {
	c.mu.Lock()
	if c.stop != nil {
		select {
		case <-c.stop:
		default:
			close(c.stop)
		}
	}
	conn := c.conn
	c.conn = nil
	c.gen++
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "client disconnect")
	}
	c.setState(StateDisconnected)
}

// Subscribe registers a handler for a topic and returns an unsubscribe
// function. Many handlers per topic fan out independently.
func (c *Channel) Subscribe(topic string, handler Handler) (func(), error) {
	if err := validation.ValidateTopic(topic); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subs[topic] == nil {
		c.subs[topic] = make(map[int]Handler)
	}
	id := c.nextSubID
	c.nextSubID++
	c.subs[topic][id] = handler

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs[topic], id)
	}, nil
}

// SubscribeState registers a handler for connection state transitions and
// returns an unsubscribe function
func (c *Channel) SubscribeState(handler StateHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.stateSubs[id] = handler

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.stateSubs, id)
	}
}

// Publish sends a frame on a topic without waiting for an acknowledgement.
// Fails immediately when the channel is disconnected.
func (c *Channel) Publish(ctx context.Context, topic string, payload json.RawMessage) error {
	_, err := c.publish(ctx, topic, payload)
	return err
}

// PublishWithAck sends a frame and waits for the server acknowledgement or
// ctx expiry
func (c *Channel) PublishWithAck(ctx context.Context, topic string, payload json.RawMessage) error {
	id, err := c.publish(ctx, topic, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	ackCh := make(chan error, 1)
	c.acks[id] = ackCh
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.acks, id)
		c.mu.Unlock()
	}()

	select {
	case err := <-ackCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("waiting for ack of %s: %w", id, ctx.Err())
	}
}

func (c *Channel) publish(ctx context.Context, topic string, payload json.RawMessage) (string, error) {
	if err := validation.ValidateTopic(topic); err != nil {
		return "", err
	}

	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		return "", ErrNotConnected
	}

	env := api.Envelope{
		Type:    api.FramePublish,
		ID:      uuid.New().String(),
		Topic:   topic,
		Payload: payload,
	}
	if err := wsjson.Write(ctx, conn, &env); err != nil {
		return "", fmt.Errorf("publish failed: %w", err)
	}
	return env.ID, nil
}

// connectOnce dials and authenticates a single connection attempt
func (c *Channel) connectOnce(ctx context.Context, userID, token string) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	handshake, err := json.Marshal(api.Handshake{UserID: userID, Token: token, DeviceID: c.cfg.DeviceID})
	if err != nil {
		conn.Close(websocket.StatusInternalError, "handshake marshal")
		return nil, err
	}
	env := api.Envelope{Type: api.FrameHandshake, Payload: handshake}
	if err := wsjson.Write(dialCtx, conn, &env); err != nil {
		conn.Close(websocket.StatusProtocolError, "handshake write")
		return nil, fmt.Errorf("handshake write failed: %w", err)
	}

	var reply api.Envelope
	if err := wsjson.Read(dialCtx, conn, &reply); err != nil {
		conn.Close(websocket.StatusProtocolError, "handshake read")
		return nil, fmt.Errorf("handshake read failed: %w", err)
	}

	switch reply.Type {
	case api.FrameHello:
		return conn, nil
	case api.FrameError:
		conn.Close(websocket.StatusPolicyViolation, "handshake rejected")
		return nil, fmt.Errorf("%w: %s", ErrHandshakeRejected, reply.Error)
	default:
		conn.Close(websocket.StatusProtocolError, "unexpected handshake reply")
		return nil, fmt.Errorf("unexpected handshake reply %q", reply.Type)
	}
}

// adopt installs a live connection and starts its read and heartbeat loops
func (c *Channel) adopt(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.setState(StateConnected)

	go c.readLoop(conn, gen)
	go c.heartbeat(conn, gen)
}

// readLoop pumps inbound frames until the connection dies, then hands off
// to the reconnect loop
func (c *Channel) readLoop(conn *websocket.Conn, gen int) {
	for {
		// The read deadline doubles as the idle heartbeat timeout
		readCtx, cancel := context.WithTimeout(context.Background(), 2*c.cfg.HeartbeatInterval)
		var env api.Envelope
		err := wsjson.Read(readCtx, conn, &env)
		cancel()

		if err != nil {
			c.handleDisconnect(conn, gen, err)
			return
		}

		c.dispatch(&env)
	}
}

// heartbeat pings the server; a failed ping closes the connection, which
// surfaces in the read loop
func (c *Channel) heartbeat(conn *websocket.Conn, gen int) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	c.mu.Lock()
	stop := c.stop
	c.mu.Unlock()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			stale := gen != c.gen
			c.mu.Unlock()
			if stale {
				return
			}
			pingCtx, cancel := context.WithTimeout(context.Background(), c.cfg.HeartbeatInterval)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				_ = conn.Close(websocket.StatusGoingAway, "heartbeat failed")
				return
			}
		}
	}
}

// dispatch routes one inbound frame
func (c *Channel) dispatch(env *api.Envelope) {
	switch env.Type {
	case api.FrameEvent:
		if env.Event == nil {
			c.logger.Warn("event frame without event payload", "topic", env.Topic)
			return
		}
		c.mu.Lock()
		handlers := make([]Handler, 0, len(c.subs[env.Topic]))
		for _, h := range c.subs[env.Topic] {
			handlers = append(handlers, h)
		}
		c.mu.Unlock()

		// Handlers run outside the lock; a handler may subscribe or
		// unsubscribe without deadlocking
		for _, h := range handlers {
			h(env.Event)
		}

	case api.FrameAck:
		c.mu.Lock()
		ackCh := c.acks[env.ID]
		c.mu.Unlock()
		if ackCh != nil {
			var err error
			if env.Error != "" {
				err = errors.New(env.Error)
			}
			ackCh <- err
		}

	case api.FrameError:
		c.logger.Warn("server error frame", "error", env.Error)

	case api.FramePing:
		// Transport-level pings are answered by the websocket library;
		// application pings need no reply

	default:
		c.logger.Debug("ignoring unknown frame", "type", env.Type)
	}
}

// handleDisconnect decides whether a dead connection should reconnect
func (c *Channel) handleDisconnect(conn *websocket.Conn, gen int, cause error) {
	c.mu.Lock()
	if gen != c.gen {
		// A newer connection already took over
		c.mu.Unlock()
		return
	}
	select {
	case <-c.stop:
		// Deliberate disconnect, nothing to do
		c.mu.Unlock()
		return
	default:
	}
	c.conn = nil
	c.gen++
	userID := c.userID
	stop := c.stop
	c.mu.Unlock()

	_ = conn.Close(websocket.StatusGoingAway, "connection lost")
	c.logger.Warn("realtime connection lost", "error", cause)
	c.setState(StateReconnecting)

	go c.reconnectLoop(userID, stop)
}

// reconnectLoop retries the connection with exponential backoff until it
// succeeds, the retry budget runs out, or the channel is disconnected.
// The delay schedule resets on every successful connection because each
// disconnect starts a fresh loop with a fresh backoff.
func (c *Channel) reconnectLoop(userID string, stop chan struct{}) {
	b := c.newReconnectBackoff()

	for attempt := 1; attempt <= c.cfg.MaxReconnects; attempt++ {
		delay := b.NextBackOff()
		select {
		case <-stop:
			return
		case <-time.After(delay):
		}

		c.setState(StateConnecting)

		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandshakeTimeout)
		cred, err := c.creds.GetValid(ctx)
		if err != nil {
			cancel()
			// Without a credential the handshake cannot succeed. A reauth
			// failure is persistent; surface the disconnect.
			c.logger.Warn("reconnect aborted, no valid credential", "error", err)
			c.setState(StateDisconnected)
			return
		}

		conn, err := c.connectOnce(ctx, userID, cred.AccessToken)
		cancel()
		if err == nil {
			c.logger.Info("realtime connection restored", "attempts", attempt)
			c.adopt(conn)
			return
		}

		c.logger.Warn("reconnect attempt failed", "attempt", attempt, "error", err)
		c.setState(StateReconnecting)
	}

	// Retry budget exhausted: persistent disconnect
	c.logger.Error("realtime reconnect gave up", "attempts", c.cfg.MaxReconnects)
	c.setState(StateDisconnected)
}

// newReconnectBackoff builds the delay schedule for one reconnect loop
func (c *Channel) newReconnectBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.ReconnectBase
	b.MaxInterval = c.cfg.ReconnectMax
	b.Reset()
	return b
}

// setState records a state transition and notifies subscribers
func (c *Channel) setState(state ConnectionState) {
	c.mu.Lock()
	if c.state == state {
		c.mu.Unlock()
		return
	}
	c.state = state
	handlers := make([]StateHandler, 0, len(c.stateSubs))
	for _, h := range c.stateSubs {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(state)
	}
}
