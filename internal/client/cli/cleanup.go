package cli

import (
	"context"

	"github.com/iudanet/conflictgen/internal/client/admin"
	"github.com/iudanet/conflictgen/internal/models"
)

func (c *Cli) runCleanup(ctx context.Context) error {
	h, err := c.dialPrimary(ctx)
	if err != nil {
		return err
	}
	defer c.closeHandle(h)

	lww := c.collectionRef("lww")
	custom := c.collectionRef("custom")

	c.io.Println("Deleting conflicts and documents...")
	report, err := admin.Cleanup(ctx, h,
		[]models.CollectionRef{custom},
		[]models.CollectionRef{custom, lww},
		c.logger)
	if report != nil {
		c.io.Printf("Deleted %d conflicts and %d documents\n", report.Conflicts, report.Documents)
	}
	return err
}
