package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/iudanet/conflictgen/internal/client/admin"
)

func (c *Cli) runLatency(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("latency", flag.ContinueOnError)
	fs.SetOutput(c.io)
	ops := fs.Int("ops", c.cfg.Campaign.LatencyOps, "number of reads and of writes")
	region := fs.String("region", "", "region to measure (default: first configured region)")
	coll := fs.String("collection", "lww", "collection to read and write")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var target string
	if *region == "" {
		regions := c.cfg.RegionNames()
		if len(regions) > 0 {
			target = regions[0]
		}
	} else {
		target = *region
		if _, ok := c.cfg.Endpoint(target); !ok {
			return fmt.Errorf("region %q is not configured", target)
		}
	}
	if target == "" {
		return fmt.Errorf("no regions configured")
	}

	h, err := c.dial(ctx, target)
	if err != nil {
		return err
	}
	defer c.closeHandle(h)

	c.io.Printf("Measuring %d reads and %d writes against %s\n", *ops, *ops, h.Region())

	report, err := admin.ProbeLatency(ctx, h, c.collectionRef(*coll), *ops, func(s admin.Sample) {
		c.io.Printf("  %-5s %4d/%-4d %v\n", s.Op, s.Index+1, s.Total, s.Elapsed)
	}, c.logger)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Printf("Region: %s\n", report.Region)
	c.printStats("Reads", report.Reads)
	c.printStats("Writes", report.Writes)
	return nil
}

func (c *Cli) printStats(title string, s admin.LatencyStats) {
	c.io.Printf("%-7s n=%d min=%v mean=%v p50=%v p99=%v max=%v\n",
		title+":", s.Count, s.Min, s.Mean, s.P50, s.P99, s.Max)
}
