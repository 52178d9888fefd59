package conflictgen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/store"
)

// Detector читает ленту конфликтов коллекции через хендл первого региона.
// Лента читается по всей коллекции, конфликтующие записи могут лежать
// в разных партициях.
type Detector struct {
	handle store.Handle
	logger *slog.Logger
	coll   models.CollectionRef
}

// NewDetector создает детектор для коллекции
func NewDetector(h store.Handle, coll models.CollectionRef, logger *slog.Logger) *Detector {
	return &Detector{handle: h, coll: coll, logger: logger}
}

// ReadConflicts возвращает текущие записи ленты конфликтов
func (d *Detector) ReadConflicts(ctx context.Context) ([]*models.ConflictRecord, error) {
	conflicts, err := d.handle.ReadConflicts(ctx, d.coll)
	if err != nil {
		return nil, fmt.Errorf("failed to read conflict feed of %s: %w", d.coll, err)
	}
	return conflicts, nil
}

// Count длина ленты конфликтов
func (d *Detector) Count(ctx context.Context) (int, error) {
	conflicts, err := d.ReadConflicts(ctx)
	if err != nil {
		return 0, err
	}
	return len(conflicts), nil
}

// NewSince количество записей, появившихся после baseline.
// Лента могла уменьшиться (кто-то разрешил конфликты), тогда 0.
func (d *Detector) NewSince(ctx context.Context, baseline int) (int, error) {
	n, err := d.Count(ctx)
	if err != nil {
		return 0, err
	}

	fresh := n - baseline
	if fresh < 0 {
		d.logger.Warn("Conflict feed shrank during round", "collection", d.coll.String(), "baseline", baseline, "current", n)
		fresh = 0
	}

	d.logger.Debug("Conflict feed checked", "collection", d.coll.String(), "baseline", baseline, "current", n, "new", fresh)
	return fresh, nil
}
