package storage

import (
	"context"
	"time"

	"github.com/iudanet/conflictgen/internal/models"
)

// Document хранимая версия документа региона, включая tombstone удаленных документов.
// Tombstone нужен, чтобы распознать конфликт delete/update при репликации.
type Document struct {
	UpdatedAt    time.Time
	Record       *models.Record // nil для tombstone
	ID           string
	PartitionKey string
	ResourceID   string
	ETag         string
	Region       string // регион, зафиксировавший версию
	Timestamp    int64  // Lamport timestamp фиксации
	Deleted      bool
}

// Live возвращает true, если документ существует и не удален
func (d *Document) Live() bool {
	return d != nil && !d.Deleted
}

// MutateFunc решает, что записать вместо текущей версии документа.
// current == nil, если документа никогда не было. Возврат next == nil означает
// "ничего не записывать"; conflict != nil добавляется в conflict feed коллекции.
type MutateFunc func(current *Document) (next *Document, conflict *models.ConflictRecord, err error)

// SchemaStorage defines interface for databases and collections
type SchemaStorage interface {
	// CreateDatabase creates database if it does not exist.
	// Returns true if database was created by this call.
	CreateDatabase(ctx context.Context, id string) (bool, error)

	// CreateCollection creates collection if it does not exist.
	// Returns ErrDatabaseNotFound if database does not exist.
	// Returns stored collection and true if it was created by this call.
	CreateCollection(ctx context.Context, coll *models.Collection) (*models.Collection, bool, error)

	// GetCollection returns collection or ErrCollectionNotFound
	GetCollection(ctx context.Context, ref models.CollectionRef) (*models.Collection, error)
}

// DocumentStorage defines interface for documents persistence
type DocumentStorage interface {
	// GetDocument returns stored version including tombstones.
	// Returns ErrDocumentNotFound if document was never written.
	GetDocument(ctx context.Context, ref models.CollectionRef, id, partitionKey string) (*Document, error)

	// MutateDocument atomically reads current version and writes the version returned by fn
	MutateDocument(ctx context.Context, ref models.CollectionRef, id, partitionKey string, fn MutateFunc) (*Document, error)

	// QueryDocuments returns live documents matching all filters.
	// Without partitionKey crossPartition must be true.
	QueryDocuments(ctx context.Context, ref models.CollectionRef, filters map[string]string, partitionKey string, crossPartition bool, limit int) ([]*models.Record, error)

	// MaxTimestamp returns max Lamport timestamp ever stored (for clock restore after restart)
	MaxTimestamp(ctx context.Context) (int64, error)
}

// ConflictStorage defines interface for the conflict feed
type ConflictStorage interface {
	// ListConflicts returns conflict feed of collection ordered by detection time
	ListConflicts(ctx context.Context, ref models.CollectionRef) ([]*models.ConflictRecord, error)

	// DeleteConflict removes entry from conflict feed or returns ErrConflictNotFound
	DeleteConflict(ctx context.Context, ref models.CollectionRef, id string) error
}

// Storage объединяет все интерфейсы хранилища региона
type Storage interface {
	SchemaStorage
	DocumentStorage
	ConflictStorage
	Close() error
}
