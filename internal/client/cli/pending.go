package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/roadassist/roadassist-client/internal/models"
)

func (c *Cli) runPending(ctx context.Context) error {
	actions, err := c.queue.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list outbox: %w", err)
	}

	if len(actions) == 0 {
		c.io.Println("Outbox is empty.")
		return nil
	}

	c.io.Printf("%d queued action(s):\n", len(actions))
	c.io.Println()
	for _, a := range actions {
		c.io.Printf("  %s  %-12s %-9s attempts=%d  queued %s\n",
			a.ID, a.Kind, a.Status, a.Attempts, a.EnqueuedAt.Format(time.RFC3339))
		if a.LastError != "" {
			c.io.Printf("      last error: %s\n", a.LastError)
		}
		if a.Status == models.ActionFailed {
			c.io.Printf("      run 'roadassist retry %s' to try again\n", a.ID)
		}
	}
	return nil
}

func (c *Cli) runRetry(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("missing action id. Usage: roadassist retry <id>")
	}

	if err := c.queue.Retry(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to retry action: %w", err)
	}

	c.io.Printf("Action %s is pending again.\n", args[0])
	return nil
}

func (c *Cli) runDrain(ctx context.Context) error {
	outcomes, err := c.coordinator.Drain(ctx)
	if err != nil {
		return fmt.Errorf("drain aborted: %w", err)
	}

	if len(outcomes) == 0 {
		c.io.Println("Nothing to send.")
		return nil
	}

	for _, o := range outcomes {
		if o.Err != "" {
			c.io.Printf("  %s  %-12s %-9s %s\n", o.ID, o.Kind, o.Status, o.Err)
		} else {
			c.io.Printf("  %s  %-12s %s\n", o.ID, o.Kind, o.Status)
		}
	}
	return nil
}
