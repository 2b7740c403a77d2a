package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	httpClient "github.com/roadassist/roadassist-client/internal/client/api"
	"github.com/roadassist/roadassist-client/internal/client/cache"
	"github.com/roadassist/roadassist-client/internal/client/outbox"
	"github.com/roadassist/roadassist-client/internal/client/realtime"
	"github.com/roadassist/roadassist-client/internal/client/vault"
	"github.com/roadassist/roadassist-client/internal/models"
	"github.com/roadassist/roadassist-client/internal/validation"
	"github.com/roadassist/roadassist-client/pkg/api"
)

// Defaults for the coordinator policy
const (
	DefaultMaintenanceInterval = time.Minute
	DefaultDrainTimeout        = 30 * time.Second
	DefaultPublishTimeout      = 10 * time.Second
)

// EventChannel is the realtime transport the coordinator drives.
// Implemented by realtime.Channel.
//
//go:generate moq -out channel_mock.go . EventChannel
type EventChannel interface {
	Connect(ctx context.Context, userID string, cred models.Credential) error
	Disconnect()
	Subscribe(topic string, handler realtime.Handler) (func(), error)
	SubscribeState(handler realtime.StateHandler) func()
	PublishWithAck(ctx context.Context, topic string, payload json.RawMessage) error
	IsConnected() bool
}

// Credentials is the credential storage the coordinator leans on.
// Implemented by vault.Vault.
//
//go:generate moq -out credentials_mock.go . Credentials
type Credentials interface {
	GetValid(ctx context.Context) (models.Credential, error)
	Clear(ctx context.Context) error
}

// EventHandler receives events after they have been applied to the cache,
// so a handler that re-reads the cache sees state at least as new as the
// event it was called with
type EventHandler func(event *api.Event)

// Config tunes the coordinator. Zero fields select the defaults.
type Config struct {
	// Topics the coordinator bridges into the cache
	Topics []string

	// MaintenanceInterval drives cache sweeping and pre-emptive token refresh
	MaintenanceInterval time.Duration

	// DrainTimeout bounds one outbox drain cycle
	DrainTimeout time.Duration

	// PublishTimeout bounds one realtime publish-with-ack attempt before
	// the sender falls back to HTTP
	PublishTimeout time.Duration

	// PurgeOutboxOnLogout drops unsent actions on logout instead of
	// keeping them for the next session
	PurgeOutboxOnLogout bool
}

func (c *Config) applyDefaults() {
	if c.MaintenanceInterval <= 0 {
		c.MaintenanceInterval = DefaultMaintenanceInterval
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = DefaultDrainTimeout
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = DefaultPublishTimeout
	}
}

// cachedEntity is the envelope the coordinator stores in the cache so that
// stale events can be detected by version on the next apply
type cachedEntity struct {
	Version int64           `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Coordinator wires the cache, vault, outbox and realtime channel into one
// sync lifecycle: drain the outbox when connectivity returns, apply inbound
// events to the cache, keep credentials fresh, and tear everything down on
// logout.
type Coordinator struct {
	apiClient httpClient.ClientAPI
	creds     Credentials
	cache     *cache.Store
	queue     *outbox.Queue
	channel   EventChannel
	cfg       Config
	logger    *slog.Logger

	mu        sync.Mutex
	running   bool
	epoch     int // bumped on logout, stale async results check it before applying
	cancel    context.CancelFunc
	unsubs    []func()
	subs      map[string]map[int]EventHandler
	nextSubID int
	draining  bool
}

// NewCoordinator creates a stopped coordinator
func NewCoordinator(
	apiClient httpClient.ClientAPI,
	creds Credentials,
	cacheStore *cache.Store,
	queue *outbox.Queue,
	channel EventChannel,
	cfg Config,
	logger *slog.Logger,
) *Coordinator {
	cfg.applyDefaults()
	return &Coordinator{
		apiClient: apiClient,
		creds:     creds,
		cache:     cacheStore,
		queue:     queue,
		channel:   channel,
		cfg:       cfg,
		logger:    logger,
		subs:      make(map[string]map[int]EventHandler),
	}
}

// Start brings the session up: subscribes the configured topics, connects
// the realtime channel and starts the maintenance loop. A failed connection
// is not fatal, the app keeps working offline and the outbox holds writes.
func (c *Coordinator) Start(ctx context.Context, userID string) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("coordinator already started")
	}
	c.running = true
	epoch := c.epoch
	bgCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	var unsubs []func()
	for _, topic := range c.cfg.Topics {
		topic := topic
		unsub, err := c.channel.Subscribe(topic, func(evt *api.Event) {
			c.handleEvent(bgCtx, epoch, topic, evt)
		})
		if err != nil {
			for _, u := range unsubs {
				u()
			}
			cancel()
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		unsubs = append(unsubs, unsub)
	}

	// Connectivity returning is the trigger to flush the outbox
	unsubs = append(unsubs, c.channel.SubscribeState(func(state realtime.ConnectionState) {
		if state == realtime.StateConnected {
			go c.drain(bgCtx, epoch)
		}
	}))

	c.mu.Lock()
	c.unsubs = unsubs
	c.mu.Unlock()

	go c.maintenanceLoop(bgCtx, epoch)

	cred, err := c.creds.GetValid(ctx)
	if err != nil {
		c.logger.Warn("starting without credentials, realtime stays offline", "error", err)
		return nil
	}
	if err := c.channel.Connect(ctx, userID, cred); err != nil {
		c.logger.Warn("realtime connection failed, working offline", "error", err)
		return nil
	}
	return nil
}

// Stop halts background work and disconnects the channel without touching
// local state. The next Start resumes the same session.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	c.epoch++
	c.running = false
	cancel := c.cancel
	c.cancel = nil
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, unsub := range unsubs {
		unsub()
	}
	c.channel.Disconnect()
}

// Logout tears the session down: stops background work, notifies the
// server, disconnects the channel and wipes local credential and cache
// state. Queued actions survive unless PurgeOutboxOnLogout is set.
func (c *Coordinator) Logout(ctx context.Context) error {
	// Best effort: the server session is revoked if we still hold a token
	if cred, err := c.creds.GetValid(ctx); err == nil {
		if err := c.apiClient.Logout(ctx, cred.AccessToken); err != nil {
			c.logger.Warn("server logout failed", "error", err)
		}
	}

	c.Stop()

	var errs []error
	if err := c.creds.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear credentials: %w", err))
	}
	c.cache.ClearAll(ctx)
	if c.cfg.PurgeOutboxOnLogout {
		if err := c.queue.PurgeAll(ctx); err != nil {
			errs = append(errs, fmt.Errorf("purge outbox: %w", err))
		}
	}

	c.logger.Info("logged out", "outbox_purged", c.cfg.PurgeOutboxOnLogout)
	return errors.Join(errs...)
}

// EnqueueAction queues a write and, when the channel is up, kicks off an
// immediate drain so online writes land without waiting for the next cycle
func (c *Coordinator) EnqueueAction(ctx context.Context, kind string, payload json.RawMessage) (string, error) {
	id, err := c.queue.Enqueue(ctx, kind, payload)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	epoch := c.epoch
	running := c.running
	c.mu.Unlock()

	if running && c.channel.IsConnected() {
		go c.drain(context.Background(), epoch)
	}
	return id, nil
}

// Subscribe registers a handler that sees events after the cache has been
// updated. Returns an unsubscribe function.
func (c *Coordinator) Subscribe(topic string, handler EventHandler) (func(), error) {
	if err := validation.ValidateTopic(topic); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subs[topic] == nil {
		c.subs[topic] = make(map[int]EventHandler)
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

// SubscribeConnection exposes channel state transitions to the UI layer
func (c *Coordinator) SubscribeConnection(handler realtime.StateHandler) func() {
	return c.channel.SubscribeState(handler)
}

// Drain flushes the outbox once, synchronously. The channel state handler
// calls the async variant, this one serves the CLI and tests.
func (c *Coordinator) Drain(ctx context.Context) ([]outbox.Outcome, error) {
	return c.queue.Drain(ctx, c.sender())
}

// handleEvent applies one inbound event to the cache and fans it out.
// Events older than the cached version are duplicates from a reconnect
// replay and are dropped entirely.
func (c *Coordinator) handleEvent(ctx context.Context, epoch int, topic string, evt *api.Event) {
	c.mu.Lock()
	if epoch != c.epoch {
		// The session this event belongs to is gone
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	key := evt.CacheKey()

	if evt.Deleted {
		c.cache.Invalidate(ctx, key)
	} else {
		// Version 0 means the server tracks no version for this entity,
		// so arrival order decides and the staleness check is skipped.
		if raw, ok := c.cache.Get(ctx, key); ok && evt.Version > 0 {
			var existing cachedEntity
			if err := json.Unmarshal(raw, &existing); err == nil && existing.Version >= evt.Version {
				c.logger.Debug("dropping stale event",
					"key", key, "version", evt.Version, "cached_version", existing.Version)
				return
			}
		}
		value, err := json.Marshal(cachedEntity{Version: evt.Version, Data: evt.Data})
		if err != nil {
			c.logger.Warn("event payload not cacheable", "key", key, "error", err)
			return
		}
		c.cache.Set(ctx, key, value)
	}

	c.mu.Lock()
	handlers := make([]EventHandler, 0, len(c.subs[topic]))
	for _, h := range c.subs[topic] {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(evt)
	}
}

// GetEntity reads an entity the coordinator has cached, returning its
// version alongside the payload
func (c *Coordinator) GetEntity(ctx context.Context, entity, id string) (json.RawMessage, int64, bool) {
	raw, ok := c.cache.Get(ctx, entity+"/"+id)
	if !ok {
		return nil, 0, false
	}
	var cached cachedEntity
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, 0, false
	}
	return cached.Data, cached.Version, true
}

// drain runs one outbox flush unless another one is already in progress
func (c *Coordinator) drain(ctx context.Context, epoch int) {
	c.mu.Lock()
	if c.draining || epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.draining = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.draining = false
		c.mu.Unlock()
	}()

	drainCtx, cancel := context.WithTimeout(ctx, c.cfg.DrainTimeout)
	defer cancel()

	outcomes, err := c.queue.Drain(drainCtx, c.sender())
	if err != nil {
		c.logger.Warn("outbox drain aborted", "error", err, "processed", len(outcomes))
		return
	}
	if len(outcomes) > 0 {
		synced := 0
		for _, o := range outcomes {
			if o.Status == models.ActionSynced {
				synced++
			}
		}
		c.logger.Info("outbox drained", "processed", len(outcomes), "synced", synced)
	}
}

// maintenanceLoop periodically sweeps expired cache entries and touches the
// vault so tokens refresh before they expire
func (c *Coordinator) maintenanceLoop(ctx context.Context, epoch int) {
	ticker := time.NewTicker(c.cfg.MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			stale := epoch != c.epoch
			c.mu.Unlock()
			if stale {
				return
			}

			if removed := c.cache.SweepExpired(ctx); removed > 0 {
				c.logger.Debug("cache sweep", "removed", removed)
			}

			// GetValid refreshes in place when the token is expiring soon
			if _, err := c.creds.GetValid(ctx); err != nil &&
				!errors.Is(err, vault.ErrNoCredential) {
				c.logger.Warn("pre-emptive token refresh failed", "error", err)
			}
		}
	}
}
