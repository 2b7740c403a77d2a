package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpClient "github.com/roadassist/roadassist-client/internal/client/api"
	"github.com/roadassist/roadassist-client/internal/client/cache"
	"github.com/roadassist/roadassist-client/internal/client/config"
	"github.com/roadassist/roadassist-client/internal/client/iocli"
	"github.com/roadassist/roadassist-client/internal/client/outbox"
	"github.com/roadassist/roadassist-client/internal/client/storage"
	clientsync "github.com/roadassist/roadassist-client/internal/client/sync"
	"github.com/roadassist/roadassist-client/internal/client/vault"
	"github.com/roadassist/roadassist-client/internal/models"
	"github.com/roadassist/roadassist-client/pkg/api"
)

// testEnv assembles the full command stack over in-memory storage with the
// HTTP API and realtime channel mocked out
type testEnv struct {
	cli    *Cli
	io     *iocli.IOMock
	out    *strings.Builder
	api    *httpClient.ClientAPIMock
	vault  *vault.Vault
	queue  *outbox.Queue
	inputs []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := storage.NewMemory()

	e := &testEnv{
		out: &strings.Builder{},
		api: &httpClient.ClientAPIMock{},
	}

	e.io = &iocli.IOMock{
		PrintlnFunc: func(a ...any) { fmt.Fprintln(e.out, a...) },
		PrintfFunc:  func(format string, a ...any) { fmt.Fprintf(e.out, format, a...) },
		ReadInputFunc: func(prompt string) (string, error) {
			return e.nextInput(), nil
		},
		ReadPasswordFunc: func(prompt string) (string, error) {
			return e.nextInput(), nil
		},
	}

	storageKey := make([]byte, 32)
	copy(storageKey, "0123456789abcdef0123456789abcdef")

	refresher := &vault.RefresherMock{}
	v, err := vault.New(kv, refresher, storageKey, 2*time.Minute, logger)
	require.NoError(t, err)
	e.vault = v

	cacheStore := cache.New(kv, time.Hour, logger)
	e.queue = outbox.NewQueue(kv, outbox.Config{}, logger)

	channel := &clientsync.EventChannelMock{
		IsConnectedFunc: func() bool { return false },
		DisconnectFunc:  func() {},
	}
	coordinator := clientsync.NewCoordinator(e.api, v, cacheStore, e.queue, channel, clientsync.Config{}, logger)

	e.cli = New(e.io, config.Config{}, e.api, v, cacheStore, e.queue, coordinator)
	return e
}

func (e *testEnv) nextInput() string {
	if len(e.inputs) == 0 {
		return ""
	}
	next := e.inputs[0]
	e.inputs = e.inputs[1:]
	return next
}

func (e *testEnv) storeCredential(t *testing.T) {
	t.Helper()
	require.NoError(t, e.vault.Store(context.Background(), models.Credential{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
}

func TestRun_UnknownCommand(t *testing.T) {
	e := newTestEnv(t)
	err := e.cli.Run(context.Background(), "frobnicate", nil)
	assert.Error(t, err)
}

func TestRunLogin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.inputs = []string{"+491701234567", "secret"}

	e.api.LoginFunc = func(ctx context.Context, req api.LoginRequest) (*models.Credential, error) {
		assert.Equal(t, "+491701234567", req.Phone)
		assert.Equal(t, "secret", req.Password)
		return &models.Credential{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresAt:    time.Now().Add(time.Hour),
		}, nil
	}
	e.api.MeFunc = func(ctx context.Context, accessToken string) (*models.Profile, error) {
		assert.Equal(t, "new-access", accessToken)
		return &models.Profile{UserID: "u1", Name: "Alex", Phone: "+491701234567", Role: "driver"}, nil
	}

	require.NoError(t, e.cli.Run(ctx, "login", nil))

	cred, err := e.vault.GetValid(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new-access", cred.AccessToken)

	profile, err := e.vault.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alex", profile.Name)

	assert.Contains(t, e.out.String(), "Login successful.")
}

func TestRunStatus_NotAuthenticated(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.cli.Run(context.Background(), "status", nil))
	assert.Contains(t, e.out.String(), "Not authenticated")
}

func TestRunStatus_Authenticated(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.storeCredential(t)

	_, err := e.queue.Enqueue(ctx, "message", json.RawMessage(`{}`))
	require.NoError(t, err)

	require.NoError(t, e.cli.Run(ctx, "status", nil))

	out := e.out.String()
	assert.Contains(t, out, "Status: Authenticated")
	assert.Contains(t, out, "1 waiting")
}

func TestRunEnqueue_InvalidJSON(t *testing.T) {
	e := newTestEnv(t)

	err := e.cli.Run(context.Background(), "enqueue", []string{"message", "{not json"})
	assert.Error(t, err)
}

func TestRunEnqueue_QueuesAndSyncs(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.storeCredential(t)

	e.api.SendActionFunc = func(ctx context.Context, accessToken string, action api.ActionRequest) error {
		assert.Equal(t, "message", action.Kind)
		return nil
	}

	require.NoError(t, e.cli.Run(ctx, "enqueue", []string{"message", `{"text":"hi"}`}))

	stats, err := e.queue.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[models.ActionSynced])
	assert.Contains(t, e.out.String(), "Synced to server.")
}

func TestRunEnqueue_OfflineStaysQueued(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.storeCredential(t)

	e.api.SendActionFunc = func(ctx context.Context, accessToken string, action api.ActionRequest) error {
		return &httpClient.StatusError{StatusCode: 503, Message: "unavailable"}
	}

	require.NoError(t, e.cli.Run(ctx, "enqueue", []string{"message", `{"text":"hi"}`}))

	stats, err := e.queue.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[models.ActionPending])
}

func TestRunPending(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, e.cli.Run(ctx, "pending", nil))
	assert.Contains(t, e.out.String(), "Outbox is empty.")

	_, err := e.queue.Enqueue(ctx, "location", json.RawMessage(`{}`))
	require.NoError(t, err)

	e.out.Reset()
	require.NoError(t, e.cli.Run(ctx, "pending", nil))
	assert.Contains(t, e.out.String(), "location")
}

func TestRunRetry_MissingArg(t *testing.T) {
	e := newTestEnv(t)
	err := e.cli.Run(context.Background(), "retry", nil)
	assert.Error(t, err)
}

func TestRunSweep(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.storeCredential(t)

	// One action synced, one still pending
	e.api.SendActionFunc = func(ctx context.Context, accessToken string, action api.ActionRequest) error {
		return nil
	}
	_, err := e.queue.Enqueue(ctx, "message", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.NoError(t, e.cli.Run(ctx, "drain", nil))
	_, err = e.queue.Enqueue(ctx, "location", json.RawMessage(`{}`))
	require.NoError(t, err)

	e.out.Reset()
	require.NoError(t, e.cli.Run(ctx, "sweep", nil))
	assert.Contains(t, e.out.String(), "Purged 1 synced action.")

	stats, err := e.queue.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats[models.ActionSynced])
	assert.Equal(t, 1, stats[models.ActionPending])
}

func TestRunLogout(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.storeCredential(t)

	e.api.LogoutFunc = func(ctx context.Context, accessToken string) error {
		assert.Equal(t, "access-token", accessToken)
		return nil
	}

	require.NoError(t, e.cli.Run(ctx, "logout", nil))

	_, err := e.vault.GetValid(ctx)
	assert.ErrorIs(t, err, vault.ErrNoCredential)
	assert.Len(t, e.api.LogoutCalls(), 1)
	assert.Contains(t, e.out.String(), "Logged out.")
}
