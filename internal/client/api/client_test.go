package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadassist/roadassist-client/pkg/api"
)

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "+15550001111", req.Phone)

		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresIn:    900,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	cred, err := client.Login(context.Background(), api.LoginRequest{
		Phone:    "+15550001111",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "access-1", cred.AccessToken)
	assert.Equal(t, "refresh-1", cred.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(900*time.Second), cred.ExpiresAt, 5*time.Second)
}

func TestClient_Refresh_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "refresh token revoked"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Refresh(context.Background(), "stale-refresh")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Contains(t, err.Error(), "refresh token revoked")
}

func TestClient_SendAction(t *testing.T) {
	var received api.ActionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/actions", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(api.ActionAck{ID: received.ID})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.SendAction(context.Background(), "access-1", api.ActionRequest{
		ID:      "action-1",
		Kind:    "message",
		Payload: json.RawMessage(`{"text":"on my way"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "action-1", received.ID)
	assert.Equal(t, "message", received.Kind)
}

func TestClient_Me(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/me", r.URL.Path)
		_, _ = w.Write([]byte(`{"user_id":"u-1","name":"Dana","role":"provider"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	profile, err := client.Me(context.Background(), "access-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", profile.UserID)
	assert.Equal(t, "provider", profile.Role)
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		auth      bool
		terminal  bool
		transient bool
	}{
		{
			name: "401 is auth",
			err:  &StatusError{StatusCode: 401},
			auth: true,
		},
		{
			name:     "422 is terminal",
			err:      &StatusError{StatusCode: 422},
			terminal: true,
		},
		{
			name:      "503 is transient",
			err:       &StatusError{StatusCode: 503},
			transient: true,
		},
		{
			name:      "deadline is transient",
			err:       context.DeadlineExceeded,
			transient: true,
		},
		{
			name:      "transport error is transient",
			err:       errors.New("connection refused"),
			transient: true,
		},
		{
			name: "canceled is not transient",
			err:  context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.auth, IsAuthError(tt.err))
			assert.Equal(t, tt.terminal, IsTerminalError(tt.err))
			assert.Equal(t, tt.transient, IsTransientError(tt.err))
		})
	}
}

func TestClient_ServerError_Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.SendAction(context.Background(), "t", api.ActionRequest{ID: "a"})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.True(t, IsTransientError(err))
}
