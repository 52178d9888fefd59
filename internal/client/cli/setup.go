package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/conflictgen/internal/client/admin"
	"github.com/iudanet/conflictgen/internal/store"
)

// ErrNoProvisioning хендл региона не умеет создавать базы и коллекции
var ErrNoProvisioning = errors.New("region handle does not support provisioning")

func (c *Cli) runSetup(ctx context.Context) error {
	h, err := c.dialPrimary(ctx)
	if err != nil {
		return err
	}
	defer c.closeHandle(h)

	p, ok := h.(store.Provisioner)
	if !ok {
		return ErrNoProvisioning
	}

	c.io.Printf("Creating database %s and collections through %s...\n", c.cfg.Database, h.Region())

	colls, err := admin.Setup(ctx, p, admin.SetupConfig{
		Database:         c.cfg.Database,
		LWWCollection:    c.cfg.LWWCollection,
		CustomCollection: c.cfg.CustomCollection,
		ProvisionDelay:   c.cfg.Campaign.ProvisionDelay,
	}, c.logger)
	for _, coll := range colls {
		c.io.Printf("  %-32s partition key %s, conflict resolution %s\n",
			coll.Ref().String(), coll.PartitionKeyPath, coll.Policy.Mode)
	}
	if err != nil {
		return err
	}

	if err := c.journal.SaveSetupTime(ctx, c.now()); err != nil {
		return fmt.Errorf("failed to save setup time: %w", err)
	}

	c.io.Println("✓ Setup complete")
	return nil
}
