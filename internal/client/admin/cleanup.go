package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/store"
)

// CleanupReport сколько удалено
type CleanupReport struct {
	Conflicts int
	Documents int
}

// Cleanup удаляет неразрешенные конфликты из лент conflictFeeds, затем все
// документы коллекций collections (cross-partition запрос, ключ партиции
// берется из документа). Уже удаленный документ не ошибка.
func Cleanup(ctx context.Context, h store.Handle, conflictFeeds, collections []models.CollectionRef, logger *slog.Logger) (*CleanupReport, error) {
	report := &CleanupReport{}

	for _, coll := range conflictFeeds {
		conflicts, err := h.ReadConflicts(ctx, coll)
		if err != nil {
			return report, fmt.Errorf("failed to read conflict feed of %s: %w", coll, err)
		}
		for _, c := range conflicts {
			if err := h.DeleteConflict(ctx, coll, c.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return report, fmt.Errorf("failed to delete conflict %s: %w", c.ID, err)
			}
			report.Conflicts++
		}
		logger.Info("Conflict feed cleared", "collection", coll.String(), "deleted", len(conflicts))
	}

	for _, coll := range collections {
		docs, err := h.Query(ctx, coll, store.Query{CrossPartition: true})
		if err != nil {
			return report, fmt.Errorf("failed to list documents of %s: %w", coll, err)
		}
		for _, doc := range docs {
			err := h.Delete(ctx, coll, doc.ID, doc.PartitionKey(), "")
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return report, fmt.Errorf("failed to delete document %s: %w", doc.ID, err)
			}
			report.Documents++
		}
		logger.Info("Collection cleared", "collection", coll.String(), "deleted", len(docs))
	}

	return report, nil
}
