// Package region реализует одну write-region эмулируемого хранилища:
// локальные записи со штампом Lamport clock и применение изменений,
// пришедших от других регионов, с арбитражем конфликтов.
package region

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/conflictgen/internal/crdt"
	"github.com/iudanet/conflictgen/internal/crypto"
	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/server/storage"
	"github.com/iudanet/conflictgen/pkg/api"
)

// ErrWriteForbidden регион не принимает запись от этого клиента
var ErrWriteForbidden = errors.New("writes are not accepted by this region")

// Shipper доставляет зафиксированные изменения остальным регионам
type Shipper interface {
	Enqueue(change *api.Change)
}

// Config параметры региона
type Config struct {
	Region      string
	HubRegion   string // регион, принимающий запись без multi-master
	MultiMaster bool
}

// Engine write-region эмулируемого хранилища
type Engine struct {
	storage storage.Storage
	shipper Shipper
	clock   *crdt.LamportClock
	logger  *slog.Logger
	cfg     Config
}

// New создает регион и восстанавливает часы по сохраненным данным
func New(ctx context.Context, cfg Config, st storage.Storage, shipper Shipper, logger *slog.Logger) (*Engine, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("region name cannot be empty")
	}
	if cfg.HubRegion == "" {
		cfg.HubRegion = cfg.Region
	}

	clock := crdt.NewLamportClock(cfg.Region)
	ts, err := st.MaxTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore clock: %w", err)
	}
	clock.Restore(ts)

	return &Engine{
		storage: st,
		shipper: shipper,
		clock:   clock,
		logger:  logger.With("region", cfg.Region),
		cfg:     cfg,
	}, nil
}

// Region возвращает имя региона
func (e *Engine) Region() string {
	return e.cfg.Region
}

// HubRegion возвращает имя hub-региона
func (e *Engine) HubRegion() string {
	return e.cfg.HubRegion
}

// MultiMaster сообщает, включена ли запись во все регионы
func (e *Engine) MultiMaster() bool {
	return e.cfg.MultiMaster
}

// Clock возвращает текущее значение часов региона
func (e *Engine) Clock() int64 {
	return e.clock.Now()
}

// CheckWritable проверяет, может ли клиент писать в этот регион.
// Hub принимает запись всегда, остальные регионы только в multi-master режиме
// и только от клиента, разрешившего запись в несколько регионов.
func (e *Engine) CheckWritable(multipleWriteLocations bool) error {
	if e.cfg.Region == e.cfg.HubRegion {
		return nil
	}
	if e.cfg.MultiMaster && multipleWriteLocations {
		return nil
	}
	return fmt.Errorf("%w: region %s is read-only, hub is %s", ErrWriteForbidden, e.cfg.Region, e.cfg.HubRegion)
}

// CreateDatabase создает базу данных, если ее нет
func (e *Engine) CreateDatabase(ctx context.Context, id string) (bool, error) {
	created, err := e.storage.CreateDatabase(ctx, id)
	if err != nil {
		return false, err
	}
	if created {
		e.logger.Info("Database created", "database", id)
		e.ship(&api.Change{Kind: api.OperationSchema, Database: id, Timestamp: e.clock.Now()})
	}
	return created, nil
}

// CreateCollection создает коллекцию, если ее нет
func (e *Engine) CreateCollection(ctx context.Context, coll *models.Collection) (*models.Collection, bool, error) {
	if err := coll.Policy.Validate(); err != nil {
		return nil, false, err
	}

	stored, created, err := e.storage.CreateCollection(ctx, coll)
	if err != nil {
		return nil, false, err
	}
	if created {
		e.logger.Info("Collection created",
			"collection", stored.Ref().String(),
			"policy", stored.Policy.Mode,
			"resolution_path", stored.Policy.ResolutionPath)
		e.ship(&api.Change{
			Kind:       api.OperationSchema,
			Database:   stored.Database,
			Coll:       stored.ID,
			Collection: stored,
			Timestamp:  e.clock.Now(),
		})
	}
	return stored, created, nil
}

// GetCollection возвращает коллекцию
func (e *Engine) GetCollection(ctx context.Context, ref models.CollectionRef) (*models.Collection, error) {
	return e.storage.GetCollection(ctx, ref)
}

// CreateDocument фиксирует новый документ.
// Возвращает storage.ErrDocumentExists, если в регионе уже есть живой документ с этим id.
func (e *Engine) CreateDocument(ctx context.Context, ref models.CollectionRef, rec *models.Record) (*models.Record, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	var change *api.Change
	doc, err := e.storage.MutateDocument(ctx, ref, rec.ID, rec.PartitionKey(),
		func(current *storage.Document) (*storage.Document, *models.ConflictRecord, error) {
			if current.Live() {
				return nil, nil, storage.ErrDocumentExists
			}

			baseETag := ""
			rid := uuid.NewString()
			if current != nil {
				baseETag = current.ETag
			}

			next, err := e.stamp(ref, rec, rid)
			if err != nil {
				return nil, nil, err
			}
			change = changeFor(ref, next, models.OperationCreate, baseETag)
			return next, nil, nil
		})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Document created", "collection", ref.String(), "id", doc.ID, "ts", doc.Timestamp)
	e.ship(change)
	return doc.Record.Clone(), nil
}

// ReplaceDocument заменяет живой документ.
// Непустой ifMatch должен совпадать с текущим ETag, иначе storage.ErrPreconditionFailed.
func (e *Engine) ReplaceDocument(ctx context.Context, ref models.CollectionRef, rec *models.Record, ifMatch string) (*models.Record, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	var change *api.Change
	doc, err := e.storage.MutateDocument(ctx, ref, rec.ID, rec.PartitionKey(),
		func(current *storage.Document) (*storage.Document, *models.ConflictRecord, error) {
			if err := checkPrecondition(current, ifMatch); err != nil {
				return nil, nil, err
			}

			next, err := e.stamp(ref, rec, current.ResourceID)
			if err != nil {
				return nil, nil, err
			}
			change = changeFor(ref, next, models.OperationReplace, current.ETag)
			return next, nil, nil
		})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Document replaced", "collection", ref.String(), "id", doc.ID, "ts", doc.Timestamp)
	e.ship(change)
	return doc.Record.Clone(), nil
}

// DeleteDocument удаляет живой документ, оставляя tombstone
func (e *Engine) DeleteDocument(ctx context.Context, ref models.CollectionRef, id, partitionKey, ifMatch string) error {
	var change *api.Change
	_, err := e.storage.MutateDocument(ctx, ref, id, partitionKey,
		func(current *storage.Document) (*storage.Document, *models.ConflictRecord, error) {
			if err := checkPrecondition(current, ifMatch); err != nil {
				return nil, nil, err
			}

			ts := e.clock.Tick()
			etag, err := crypto.ETag(e.cfg.Region, ts, nil)
			if err != nil {
				return nil, nil, err
			}

			tomb := &storage.Document{
				ID:           id,
				PartitionKey: partitionKey,
				ResourceID:   current.ResourceID,
				ETag:         etag,
				Region:       e.cfg.Region,
				Timestamp:    ts,
				Deleted:      true,
			}
			change = changeFor(ref, tomb, models.OperationDelete, current.ETag)
			return tomb, nil, nil
		})
	if err != nil {
		return err
	}

	e.logger.Debug("Document deleted", "collection", ref.String(), "id", id)
	e.ship(change)
	return nil
}

// GetDocument возвращает живой документ
func (e *Engine) GetDocument(ctx context.Context, ref models.CollectionRef, id, partitionKey string) (*models.Record, error) {
	doc, err := e.storage.GetDocument(ctx, ref, id, partitionKey)
	if err != nil {
		return nil, err
	}
	if !doc.Live() {
		return nil, storage.ErrDocumentNotFound
	}
	return doc.Record, nil
}

// QueryDocuments выбирает живые документы по равенству полей
func (e *Engine) QueryDocuments(ctx context.Context, ref models.CollectionRef, req api.QueryRequest) ([]*models.Record, error) {
	return e.storage.QueryDocuments(ctx, ref, req.Filters, req.PartitionKey, req.CrossPartition, req.Limit)
}

// ListConflicts возвращает conflict feed коллекции
func (e *Engine) ListConflicts(ctx context.Context, ref models.CollectionRef) ([]*models.ConflictRecord, error) {
	return e.storage.ListConflicts(ctx, ref)
}

// DeleteConflict удаляет запись conflict feed
func (e *Engine) DeleteConflict(ctx context.Context, ref models.CollectionRef, id string) error {
	return e.storage.DeleteConflict(ctx, ref, id)
}

// stamp проставляет служебные поля новой версии документа
func (e *Engine) stamp(ref models.CollectionRef, rec *models.Record, rid string) (*storage.Document, error) {
	next := rec.Clone()
	next.StripSystem()
	if next.Region == "" {
		next.Region = e.cfg.Region
	}

	body, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	ts := e.clock.Tick()
	etag, err := crypto.ETag(e.cfg.Region, ts, body)
	if err != nil {
		return nil, err
	}

	next.ETag = etag
	next.Timestamp = ts
	next.ResourceID = rid
	next.SelfLink = ref.DocumentLink(next.ID)

	return &storage.Document{
		Record:       next,
		ID:           next.ID,
		PartitionKey: next.PartitionKey(),
		ResourceID:   rid,
		ETag:         etag,
		Region:       e.cfg.Region,
		Timestamp:    ts,
		UpdatedAt:    time.Now(),
	}, nil
}

func (e *Engine) ship(change *api.Change) {
	if e.shipper == nil || change == nil {
		return
	}
	change.SourceRegion = e.cfg.Region
	e.shipper.Enqueue(change)
}

func checkPrecondition(current *storage.Document, ifMatch string) error {
	if !current.Live() {
		return storage.ErrDocumentNotFound
	}
	if ifMatch != "" && ifMatch != "*" && ifMatch != current.ETag {
		return storage.ErrPreconditionFailed
	}
	return nil
}

func changeFor(ref models.CollectionRef, doc *storage.Document, kind models.OperationKind, baseETag string) *api.Change {
	return &api.Change{
		Document:     doc.Record.Clone(),
		Database:     ref.Database,
		Coll:         ref.Collection,
		ID:           doc.ID,
		PartitionKey: doc.PartitionKey,
		ResourceID:   doc.ResourceID,
		BaseETag:     baseETag,
		ETag:         doc.ETag,
		SourceRegion: doc.Region,
		Kind:         kind,
		Timestamp:    doc.Timestamp,
	}
}
