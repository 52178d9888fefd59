package cli

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"

	"github.com/iudanet/conflictgen/internal/client/iocli"
	"github.com/iudanet/conflictgen/internal/conflictgen"
	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/pool"
)

// campaignOptions параметры одной кампании из флагов команды
type campaignOptions struct {
	collection  models.CollectionRef
	mode        conflictgen.Mode
	rounds      int
	seed        uint64
	interactive bool
}

func (c *Cli) parseCampaignFlags(name string, args []string, defaultCollection string) (*campaignOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.io)

	rounds := fs.Int("rounds", c.cfg.Campaign.MaxRounds, "maximum rounds, negative for unbounded")
	coll := fs.String("collection", defaultCollection, "target collection: lww, custom or a collection name")
	yes := fs.Bool("yes", !c.cfg.Campaign.Interactive, "do not ask for confirmation between rounds")
	seed := fs.Uint64("seed", c.cfg.Campaign.Seed, "random seed, 0 for random")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &campaignOptions{
		collection:  c.collectionRef(*coll),
		rounds:      *rounds,
		seed:        *seed,
		interactive: !*yes,
	}, nil
}

func defaultCollectionFor(mode conflictgen.Mode) string {
	if mode == conflictgen.ModeInsert {
		return "lww"
	}
	return "custom"
}

func (c *Cli) runCampaignCommand(ctx context.Context, mode conflictgen.Mode, args []string) error {
	opts, err := c.parseCampaignFlags(mode.String(), args, defaultCollectionFor(mode))
	if err != nil {
		return err
	}
	opts.mode = mode

	p, err := c.openPool(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			c.logger.Warn("Failed to close regional pool", "error", err)
		}
	}()

	c.warnIfNotProvisioned(ctx)

	_, err = c.runCampaign(ctx, p, opts)
	return err
}

func (c *Cli) runDemo(ctx context.Context, args []string) error {
	opts, err := c.parseCampaignFlags("demo", args, "")
	if err != nil {
		return err
	}

	p, err := c.openPool(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			c.logger.Warn("Failed to close regional pool", "error", err)
		}
	}()

	operator := iocli.NewOperator(c.io)
	steps := []struct {
		title      string
		collection string
		mode       conflictgen.Mode
	}{
		{title: "Generate conflicts in collection using Last Writer Wins resolution.", collection: "lww", mode: conflictgen.ModeInsert},
		{title: "Generate conflicts in collection using Manual resolution.", collection: "custom", mode: conflictgen.ModeUpdate},
	}

	for _, step := range steps {
		c.io.Println()
		c.io.Println(step.title)
		c.io.Println("...................................................................")

		if opts.interactive {
			if err := operator.Pause(ctx, fmt.Sprintf("%s documents with the same id in multiple regions.", step.mode)); err != nil {
				return err
			}
		}

		stepOpts := *opts
		stepOpts.mode = step.mode
		stepOpts.collection = c.collectionRef(step.collection)
		if _, err := c.runCampaign(ctx, p, &stepOpts); err != nil {
			return err
		}
	}

	return nil
}

// runCampaign выполняет кампанию и записывает ее в журнал, в том числе
// прерванную или завершившуюся ошибкой.
func (c *Cli) runCampaign(ctx context.Context, p *pool.Pool, opts *campaignOptions) (*conflictgen.Result, error) {
	cfg := conflictgen.Config{
		Rand:         newRand(opts.seed),
		Observer:     conflictgen.ObserverFunc(c.printRound),
		Collection:   opts.collection,
		Mode:         opts.mode,
		MaxRounds:    opts.rounds,
		SeedDelay:    c.cfg.Campaign.SeedDelay,
		SettleDelay:  c.cfg.Campaign.SettleDelay,
		DrainTimeout: c.cfg.Campaign.DrainTimeout,
	}
	if opts.mode == conflictgen.ModeUpdate {
		cfg.SeedDelay = c.cfg.Campaign.UpdateSeedDelay
	}
	if opts.interactive {
		cfg.Operator = iocli.NewOperator(c.io)
	}

	campaign, err := conflictgen.New(p.Handles(), cfg, c.logger)
	if err != nil {
		return nil, err
	}

	c.io.Printf("\n=== %s conflicts on %s (%d regions) ===\n", opts.mode, opts.collection, p.Len())

	rec := &models.CampaignRecord{
		StartedAt:  c.now(),
		Mode:       opts.mode.String(),
		Collection: opts.collection.String(),
		Regions:    p.Regions(),
	}

	res, runErr := campaign.Run(ctx)

	rec.FinishedAt = c.now()
	if res != nil {
		rec.Rounds = res.Rounds
		rec.Committed = res.Committed
		rec.LostRaces = res.LostRaces
		rec.NewConflicts = res.NewConflicts
		rec.Confirmed = res.Confirmed
		rec.Stopped = res.Stopped
		rec.LastID = res.LastID
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	// журнал пишется и для отмененной кампании
	if err := c.journal.SaveCampaign(context.WithoutCancel(ctx), rec); err != nil {
		c.logger.Warn("Failed to journal campaign", "error", err)
	}

	c.printResult(res, runErr)
	return res, runErr
}

func (c *Cli) printRound(rr *conflictgen.RoundResult) {
	c.io.Printf("\nRound %d, document id %s\n", rr.Number, rr.ID)
	for _, o := range rr.Outcomes {
		switch o.Kind {
		case conflictgen.Committed:
			c.io.Printf("  %-16s %-6s committed (userdefinedid %d)\n", o.Region, o.Op, o.Record.UserDefinedID)
		case conflictgen.LostRace:
			c.io.Printf("  %-16s %-6s unsuccessful, a write from another region already committed and replicated\n", o.Region, o.Op)
		case conflictgen.Fatal:
			c.io.Printf("  %-16s %-6s failed: %v\n", o.Region, o.Op, o.Err)
		}
	}

	switch rr.Decision {
	case conflictgen.PhaseSuccess:
		if rr.NewConflicts > 0 {
			c.io.Printf("  conflict confirmed, %d new entries in the conflict feed\n", rr.NewConflicts)
		} else {
			c.io.Println("  writes from multiple regions complete")
		}
	case conflictgen.PhaseRetry:
		c.io.Println("  no conflict induced, retrying with a new document")
	}
}

func (c *Cli) printResult(res *conflictgen.Result, err error) {
	if res == nil {
		return
	}
	c.io.Println()
	c.io.Printf("Rounds:        %d\n", res.Rounds)
	c.io.Printf("Committed:     %d\n", res.Committed)
	c.io.Printf("Lost races:    %d\n", res.LostRaces)
	if res.Mode == conflictgen.ModeDelete {
		c.io.Printf("New conflicts: %d\n", res.NewConflicts)
	}

	if err != nil {
		c.io.Printf("Campaign aborted: %v\n", err)
		return
	}
	if res.Confirmed {
		c.io.Println("Conflict confirmed.")
	} else {
		c.io.Println("No conflict induced.")
	}
	if res.Stopped {
		c.io.Println("Stopped by operator.")
	}
}

func (c *Cli) warnIfNotProvisioned(ctx context.Context) {
	at, err := c.journal.GetSetupTime(ctx)
	if err != nil {
		c.logger.Warn("Failed to read setup time", "error", err)
		return
	}
	if at.IsZero() {
		c.io.Println("Note: collections were never provisioned from this journal, run 'conflictgen setup' first if they are missing.")
	}
}

// newRand воспроизводимый источник для заданного seed; 0 - выбирает кампания
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
