package conflictgen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/store"
)

// Executor выполняет одиночные попытки записи и классифицирует результат.
// Проигрыш гонки не ошибка: логируется на Info и не прерывает раунд.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor создает executor
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger}
}

// Insert создает документ от имени региона хендла.
// AlreadyExists означает, что вставка другого региона уже реплицировалась.
func (e *Executor) Insert(ctx context.Context, h store.Handle, coll models.CollectionRef, rec *models.Record) Outcome {
	region := h.Region()
	doc := cloneRecord(rec)
	doc.Region = region

	e.logger.Debug("Inserting document",
		"id", doc.ID, "region", region, "userdefinedid", doc.UserDefinedID, "postalcode", doc.PostalCode)

	created, err := h.Create(ctx, coll, doc)
	if err == nil {
		return committed(OpInsert, region, created)
	}

	return e.classify(OpInsert, region, doc.ID, err, store.StatusAlreadyExists)
}

// Update заменяет документ с precondition на его текущий ETag.
// Поле region переписывается на регион хендла.
func (e *Executor) Update(ctx context.Context, h store.Handle, coll models.CollectionRef, rec *models.Record) Outcome {
	region := h.Region()
	doc := cloneRecord(rec)
	from := doc.Region
	doc.Region = region

	e.logger.Debug("Updating document", "id", doc.ID, "from_region", from, "region", region)

	updated, err := h.Replace(ctx, coll, doc, rec.ETag)
	if err == nil {
		return committed(OpUpdate, region, updated)
	}

	return e.classify(OpUpdate, region, doc.ID, err, store.StatusPreconditionFailed, store.StatusNotFound)
}

// Delete удаляет документ с precondition на его текущий ETag
func (e *Executor) Delete(ctx context.Context, h store.Handle, coll models.CollectionRef, rec *models.Record) Outcome {
	region := h.Region()

	e.logger.Debug("Deleting document", "id", rec.ID, "region", region)

	if err := h.Delete(ctx, coll, rec.ID, rec.PartitionKey(), rec.ETag); err != nil {
		return e.classify(OpDelete, region, rec.ID, err, store.StatusPreconditionFailed, store.StatusNotFound)
	}

	return committed(OpDelete, region, cloneRecord(rec))
}

// Do выполняет операцию op
func (e *Executor) Do(ctx context.Context, op Op, h store.Handle, coll models.CollectionRef, rec *models.Record) Outcome {
	switch op {
	case OpInsert:
		return e.Insert(ctx, h, coll, rec)
	case OpUpdate:
		return e.Update(ctx, h, coll, rec)
	case OpDelete:
		return e.Delete(ctx, h, coll, rec)
	default:
		return fatal(op, h.Region(), fmt.Errorf("unsupported operation %s", op))
	}
}

func (e *Executor) classify(op Op, region, id string, err error, race ...store.Status) Outcome {
	status := store.StatusOf(err)
	for _, s := range race {
		if status == s {
			e.logger.Info("Write lost the race, another region already committed and replicated",
				"op", op.String(), "id", id, "region", region, "status", status.String())
			return lostRace(op, region, err)
		}
	}

	e.logger.Error("Write failed", "op", op.String(), "id", id, "region", region, "error", err)
	return fatal(op, region, err)
}

func cloneRecord(rec *models.Record) *models.Record {
	c := *rec
	return &c
}
