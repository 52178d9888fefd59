package region

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/conflictgen/internal/crdt"
	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/server/storage"
	"github.com/iudanet/conflictgen/pkg/api"
)

// ApplyChange применяет изменение, зафиксированное в другом регионе.
//
// Если локальная версия совпадает с базовой версией изменения, изменение
// применяется без конфликта. Иначе обе версии были записаны конкурентно и
// победитель выбирается crdt.Arbitrate. Для коллекций с политикой Custom
// проигравшая версия попадает в conflict feed.
func (e *Engine) ApplyChange(ctx context.Context, change *api.Change) (*api.ChangeAck, error) {
	e.clock.Witness(change.Timestamp)

	if change.Kind == api.OperationSchema {
		return e.applySchema(ctx, change)
	}

	ref := change.Ref()
	coll, err := e.storage.GetCollection(ctx, ref)
	if err != nil {
		return nil, err
	}

	incoming := &storage.Document{
		Record:       change.Document.Clone(),
		ID:           change.ID,
		PartitionKey: change.PartitionKey,
		ResourceID:   change.ResourceID,
		ETag:         change.ETag,
		Region:       change.SourceRegion,
		Timestamp:    change.Timestamp,
		Deleted:      change.Kind == models.OperationDelete,
	}
	if incoming.Deleted {
		incoming.Record = nil
	}

	ack := &api.ChangeAck{}
	_, err = e.storage.MutateDocument(ctx, ref, change.ID, change.PartitionKey,
		func(current *storage.Document) (*storage.Document, *models.ConflictRecord, error) {
			switch {
			case current == nil:
				ack.Applied = true
				return incoming, nil, nil
			case current.ETag == change.ETag:
				// Повторная доставка
				return nil, nil, nil
			case current.ETag == change.BaseETag:
				ack.Applied = true
				return incoming, nil, nil
			}

			ack.Conflict = true
			verdict := crdt.Arbitrate(coll.Policy, versionOf(current), versionOf(incoming))
			ack.Resolution = verdict.String()

			var winner, loser *storage.Document
			if verdict == crdt.TakeIncoming {
				ack.Applied = true
				winner, loser = incoming, current
			} else {
				loser = incoming
			}

			var conflict *models.ConflictRecord
			if coll.Policy.Mode == models.ResolutionCustom {
				conflict = conflictOf(ref, loser, change.Kind, current)
			}

			e.logger.Info("Conflict detected",
				"collection", ref.String(),
				"id", change.ID,
				"policy", coll.Policy.Mode,
				"local_region", current.Region,
				"incoming_region", incoming.Region,
				"resolution", ack.Resolution)

			return winner, conflict, nil
		})
	if err != nil {
		return nil, err
	}

	return ack, nil
}

func (e *Engine) applySchema(ctx context.Context, change *api.Change) (*api.ChangeAck, error) {
	if _, err := e.storage.CreateDatabase(ctx, change.Database); err != nil {
		return nil, fmt.Errorf("failed to apply database %s: %w", change.Database, err)
	}

	if change.Collection == nil {
		return &api.ChangeAck{Applied: true}, nil
	}

	if _, _, err := e.storage.CreateCollection(ctx, change.Collection); err != nil {
		return nil, fmt.Errorf("failed to apply collection %s: %w", change.Collection.Ref(), err)
	}

	return &api.ChangeAck{Applied: true}, nil
}

func versionOf(d *storage.Document) crdt.Version {
	return crdt.Version{
		Record:    d.Record,
		Region:    d.Region,
		Timestamp: d.Timestamp,
		Deleted:   d.Deleted,
	}
}

// conflictOf строит запись conflict feed для проигравшей версии.
// Тип операции проигравшего: для входящей версии он известен из изменения,
// для локальной определяется по состоянию документа.
func conflictOf(ref models.CollectionRef, loser *storage.Document, incomingKind models.OperationKind, current *storage.Document) *models.ConflictRecord {
	kind := incomingKind
	if loser == current {
		kind = models.OperationReplace
		if current.Deleted {
			kind = models.OperationDelete
		}
	}

	id := uuid.NewString()
	return &models.ConflictRecord{
		Content:       loser.Record.Clone(),
		ID:            id,
		ResourceID:    loser.ID,
		PartitionKey:  loser.PartitionKey,
		SourceRegion:  loser.Region,
		SelfLink:      ref.ConflictLink(id),
		OperationKind: kind,
	}
}
