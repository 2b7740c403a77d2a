package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roadassist/roadassist-client/internal/models"
)

func (c *Cli) runEnqueue(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("missing action kind. Usage: roadassist enqueue <kind> <json>")
	}
	kind := args[0]

	var payload string
	if len(args) > 1 {
		payload = args[1]
	} else {
		input, err := c.io.ReadInput("Payload (JSON): ")
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}
		payload = input
	}

	if !json.Valid([]byte(payload)) {
		return fmt.Errorf("payload is not valid JSON")
	}

	id, err := c.queue.Enqueue(ctx, kind, json.RawMessage(payload))
	if err != nil {
		return fmt.Errorf("failed to queue action: %w", err)
	}

	c.io.Printf("Queued %s action %s\n", kind, id)

	// Best effort flush. Offline or failing sends simply stay queued.
	outcomes, err := c.coordinator.Drain(ctx)
	if err != nil {
		c.io.Printf("Not synced yet (%v), will retry on next drain.\n", err)
		return nil
	}
	for _, o := range outcomes {
		if o.ID == id && o.Status == models.ActionSynced {
			c.io.Println("Synced to server.")
		}
	}
	return nil
}
