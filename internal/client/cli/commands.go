package cli

import (
	"context"
	"fmt"
)

// Run dispatches one command. The caller handles the returned error and the
// process exit code.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "enqueue":
		return c.runEnqueue(ctx, args)
	case "pending":
		return c.runPending(ctx)
	case "retry":
		return c.runRetry(ctx, args)
	case "drain":
		return c.runDrain(ctx)
	case "sweep":
		return c.runSweep(ctx)
	case "watch":
		return c.runWatch(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}
