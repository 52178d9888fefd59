// Package admin операции вокруг кампаний: подготовка базы и коллекций,
// очистка тестовых данных, замер задержек региона.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/store"
)

// ResolutionPathUserDefinedID путь разрешения конфликтов LWW коллекции
const ResolutionPathUserDefinedID = "/userdefinedid"

// SetupConfig что создавать
type SetupConfig struct {
	Database         string
	LWWCollection    string
	CustomCollection string
	ProvisionDelay   time.Duration // ожидание репликации каждой созданной коллекции
}

// Collections описания коллекций демо: LWW по /userdefinedid и Custom,
// обе партиционированы по /postalcode.
func (c SetupConfig) Collections() []*models.Collection {
	return []*models.Collection{
		{
			ID:               c.LWWCollection,
			Database:         c.Database,
			PartitionKeyPath: models.PartitionKeyPath,
			Policy: models.ConflictResolutionPolicy{
				Mode:           models.ResolutionLastWriterWins,
				ResolutionPath: ResolutionPathUserDefinedID,
			},
		},
		{
			ID:               c.CustomCollection,
			Database:         c.Database,
			PartitionKeyPath: models.PartitionKeyPath,
			Policy: models.ConflictResolutionPolicy{
				Mode: models.ResolutionCustom,
			},
		},
	}
}

// Setup создает базу и обе коллекции. Любая ошибка фатальна и не повторяется.
func Setup(ctx context.Context, p store.Provisioner, cfg SetupConfig, logger *slog.Logger) ([]*models.Collection, error) {
	if err := p.CreateDatabaseIfNotExists(ctx, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to create database %q: %w", cfg.Database, err)
	}
	logger.Info("Database ready", "database", cfg.Database)

	var created []*models.Collection
	for _, coll := range cfg.Collections() {
		stored, err := p.CreateCollectionIfNotExists(ctx, coll)
		if err != nil {
			return created, fmt.Errorf("failed to create collection %q: %w", coll.ID, err)
		}
		if stored.Policy.Mode != coll.Policy.Mode {
			logger.Warn("Collection already exists with another conflict policy",
				"collection", coll.ID, "want", coll.Policy.Mode, "got", stored.Policy.Mode)
		}
		created = append(created, stored)
		logger.Info("Collection ready", "collection", coll.Ref().String(), "policy", stored.Policy.Mode)

		// даем коллекции реплицироваться в остальные регионы
		if err := wait(ctx, cfg.ProvisionDelay); err != nil {
			return created, err
		}
	}

	return created, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
