// Package store описывает контракт доступа к мультирегиональному хранилищу документов,
// которым пользуется оркестратор конфликтов.
package store

import (
	"context"

	"github.com/iudanet/conflictgen/internal/models"
)

//go:generate moq -out handle_mock.go . Handle
//go:generate moq -out provisioner_mock.go . Provisioner

// Handle доступ к хранилищу через один регион.
// Handle предпочитает свой регион для чтения и записи. Разные Handle можно
// использовать параллельно; каждая операция владеет своим вызовом.
type Handle interface {
	// Region возвращает предпочитаемый регион
	Region() string

	// Create создает документ. Возвращает документ с серверными метаданными.
	// Если документ с таким id уже существует - ошибка со статусом StatusAlreadyExists.
	Create(ctx context.Context, coll models.CollectionRef, rec *models.Record) (*models.Record, error)

	// Replace заменяет документ при условии, что его текущий ETag равен ifMatch.
	// Пустой ifMatch отключает проверку.
	Replace(ctx context.Context, coll models.CollectionRef, rec *models.Record, ifMatch string) (*models.Record, error)

	// Delete удаляет документ при условии совпадения ETag
	Delete(ctx context.Context, coll models.CollectionRef, id, partitionKey, ifMatch string) error

	// Query возвращает документы, подходящие под предикат
	Query(ctx context.Context, coll models.CollectionRef, q Query) ([]*models.Record, error)

	// ReadConflicts читает conflict feed коллекции по всем партициям
	ReadConflicts(ctx context.Context, coll models.CollectionRef) ([]*models.ConflictRecord, error)

	// DeleteConflict удаляет запись conflict feed
	DeleteConflict(ctx context.Context, coll models.CollectionRef, conflictID string) error

	// Close освобождает ресурсы handle
	Close() error
}

// Query предикат выборки документов: равенство полей документа
type Query struct {
	Filters        map[string]string `json:"filters,omitempty"`
	PartitionKey   string            `json:"partitionKey,omitempty"`
	Limit          int               `json:"limit,omitempty"`
	CrossPartition bool              `json:"crossPartition"`
}

// Provisioner создает базы данных и коллекции. Используется только при настройке.
type Provisioner interface {
	CreateDatabaseIfNotExists(ctx context.Context, database string) error
	CreateCollectionIfNotExists(ctx context.Context, coll *models.Collection) (*models.Collection, error)
}
