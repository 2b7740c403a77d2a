package cli

import (
	"context"
	"fmt"
)

// runSweep evicts expired cache entries and drops synced outbox items.
// Long-running surfaces do this on a timer; the CLI exposes it as a command.
func (c *Cli) runSweep(ctx context.Context) error {
	removed := c.cache.SweepExpired(ctx)
	c.io.Printf("Evicted %d expired cache entr%s.\n", removed, plural(removed, "y", "ies"))

	purged, err := c.queue.PurgeSynced(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge synced actions: %w", err)
	}
	c.io.Printf("Purged %d synced action%s.\n", purged, plural(purged, "", "s"))
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
