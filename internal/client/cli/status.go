package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roadassist/roadassist-client/internal/client/vault"
	"github.com/roadassist/roadassist-client/internal/models"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")
	c.io.Println()

	cred, err := c.vault.GetValid(ctx)
	switch {
	case errors.Is(err, vault.ErrNoCredential):
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'roadassist login' to authenticate.")
		return nil
	case errors.Is(err, vault.ErrReauthRequired):
		c.io.Println("Status: Session expired")
		c.io.Println()
		c.io.Println("Run 'roadassist login' to authenticate again.")
		return nil
	case err != nil:
		return fmt.Errorf("failed to check session: %w", err)
	}

	c.io.Println("Status: Authenticated")
	if profile, err := c.vault.Profile(ctx); err == nil {
		c.io.Printf("Account: %s (%s)\n", profile.Name, profile.Role)
	}
	if !cred.ExpiresAt.IsZero() {
		c.io.Printf("Token expires: %s\n", cred.ExpiresAt.Format(time.RFC3339))
	}

	stats, err := c.queue.Stats(ctx)
	if err != nil {
		c.io.Printf("\nWarning: failed to read outbox: %v\n", err)
		return nil
	}

	c.io.Println()
	pending := stats[models.ActionPending] + stats[models.ActionInFlight]
	failed := stats[models.ActionFailed]
	switch {
	case pending == 0 && failed == 0:
		c.io.Println("Outbox: empty, everything synced")
	default:
		c.io.Printf("Outbox: %d waiting, %d failed\n", pending, failed)
		if failed > 0 {
			c.io.Println("Run 'roadassist pending' to inspect failed actions.")
		}
	}

	return nil
}
