package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	httpClient "github.com/roadassist/roadassist-client/internal/client/api"
	"github.com/roadassist/roadassist-client/internal/client/vault"
	"github.com/roadassist/roadassist-client/internal/models"
	"github.com/roadassist/roadassist-client/pkg/api"
)

// actionSender delivers queued actions. It prefers the realtime channel
// with an acknowledgement and falls back to the HTTP endpoint when the
// channel is down or the publish fails.
type actionSender struct {
	c *Coordinator
}

func (c *Coordinator) sender() *actionSender {
	return &actionSender{c: c}
}

func (s *actionSender) Send(ctx context.Context, action *models.QueuedAction) error {
	if s.c.channel.IsConnected() {
		pubCtx, cancel := context.WithTimeout(ctx, s.c.cfg.PublishTimeout)
		err := s.c.channel.PublishWithAck(pubCtx, action.Kind, action.Payload)
		cancel()
		if err == nil {
			return nil
		}
		s.c.logger.Debug("realtime publish failed, falling back to http",
			"action_id", action.ID, "error", err)
	}

	cred, err := s.c.creds.GetValid(ctx)
	if err != nil {
		if errors.Is(err, vault.ErrReauthRequired) || errors.Is(err, vault.ErrNoCredential) {
			// The drain loop stops on auth errors and leaves the queue intact
			return &httpClient.StatusError{
				StatusCode: http.StatusUnauthorized,
				Message:    "reauthentication required",
			}
		}
		return fmt.Errorf("getting credential for send: %w", err)
	}

	req := api.ActionRequest{
		ID:         action.ID,
		Kind:       action.Kind,
		Payload:    action.Payload,
		EnqueuedAt: action.EnqueuedAt.Unix(),
	}
	return s.c.apiClient.SendAction(ctx, cred.AccessToken, req)
}
