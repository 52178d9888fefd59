package cli

import (
	"context"
	"flag"
	"time"

	"github.com/iudanet/conflictgen/internal/conflictgen"
)

func (c *Cli) runConflicts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("conflicts", flag.ContinueOnError)
	fs.SetOutput(c.io)
	coll := fs.String("collection", "custom", "collection whose conflict feed to read")
	if err := fs.Parse(args); err != nil {
		return err
	}

	h, err := c.dialPrimary(ctx)
	if err != nil {
		return err
	}
	defer c.closeHandle(h)

	ref := c.collectionRef(*coll)
	conflicts, err := conflictgen.NewDetector(h, ref, c.logger).ReadConflicts(ctx)
	if err != nil {
		return err
	}

	if len(conflicts) == 0 {
		c.io.Printf("No conflicts in %s.\n", ref)
		return nil
	}

	c.io.Printf("Conflicts in %s: %d\n\n", ref, len(conflicts))
	c.io.Printf("%-38s %-8s %-8s %-10s %-16s %s\n", "CONFLICT", "DOC", "OP", "PK", "SOURCE", "DETECTED")
	c.io.Println("--------------------------------------------------------------------------------------------------------")
	for _, cr := range conflicts {
		c.io.Printf("%-38s %-8s %-8s %-10s %-16s %s\n",
			cr.ID, cr.ResourceID, cr.OperationKind, cr.PartitionKey, cr.SourceRegion,
			cr.DetectedAt.Format(time.RFC3339))
	}
	return nil
}
