package cli

import (
	"context"
	"flag"
	"strings"
	"time"
)

func (c *Cli) runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(c.io)
	limit := fs.Int("limit", 20, "number of campaigns to show, 0 for all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	setupAt, err := c.journal.GetSetupTime(ctx)
	if err != nil {
		return err
	}
	if setupAt.IsZero() {
		c.io.Println("Setup: never")
	} else {
		c.io.Printf("Setup: %s\n", setupAt.UTC().Format(time.RFC3339))
	}

	records, err := c.journal.ListCampaigns(ctx, *limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		c.io.Println("No campaigns journaled.")
		return nil
	}

	c.io.Println()
	c.io.Printf("%-20s %-7s %-24s %6s %9s %5s %9s %s\n",
		"STARTED", "MODE", "COLLECTION", "ROUNDS", "COMMITTED", "LOST", "CONFLICTS", "RESULT")
	for _, r := range records {
		c.io.Printf("%-20s %-7s %-24s %6d %9d %5d %9d %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Mode, r.Collection,
			r.Rounds, r.Committed, r.LostRaces, r.NewConflicts, campaignStatus(r.Confirmed, r.Stopped, r.Error))
	}
	return nil
}

func campaignStatus(confirmed, stopped bool, errMsg string) string {
	switch {
	case errMsg != "":
		return "error: " + strings.SplitN(errMsg, "\n", 2)[0]
	case confirmed:
		return "confirmed"
	case stopped:
		return "stopped"
	default:
		return "no conflict"
	}
}
