package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/conflictgen/internal/conflictgen"
)

// Run выполняет команду
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "setup":
		return c.runSetup(ctx)
	case "insert", "update", "delete":
		mode, err := conflictgen.ParseMode(command)
		if err != nil {
			return err
		}
		return c.runCampaignCommand(ctx, mode, args)
	case "demo":
		return c.runDemo(ctx, args)
	case "conflicts":
		return c.runConflicts(ctx, args)
	case "cleanup":
		return c.runCleanup(ctx)
	case "latency":
		return c.runLatency(ctx, args)
	case "history":
		return c.runHistory(ctx, args)
	case "help":
		PrintUsage(c.io)
		return nil
	default:
		PrintUsage(c.io)
		return fmt.Errorf("unknown command: %s", command)
	}
}
