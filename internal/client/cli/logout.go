package cli

import (
	"context"
	"fmt"

	"github.com/roadassist/roadassist-client/internal/models"
)

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.coordinator.Logout(ctx); err != nil {
		return fmt.Errorf("logout incomplete: %w", err)
	}

	c.io.Println("Logged out. Local session state wiped.")
	if !c.cfg.PurgeOutboxOnLogout {
		stats, err := c.queue.Stats(ctx)
		if err == nil && stats[models.ActionPending] > 0 {
			c.io.Printf("Note: %d queued action(s) kept for the next session.\n", stats[models.ActionPending])
		}
	}
	return nil
}
