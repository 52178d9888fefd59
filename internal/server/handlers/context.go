package handlers

import (
	"context"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/pkg/api"
)

// contextKey тип для ключей контекста
type contextKey string

// ClientRegionKey ключ для хранения предпочитаемого региона клиента в контексте
const ClientRegionKey contextKey = "client_region"

// GetClientRegion извлекает регион клиента из контекста запроса
func GetClientRegion(ctx context.Context) (string, bool) {
	region, ok := ctx.Value(ClientRegionKey).(string)
	return region, ok
}

// Region определяет операции региона, которые обслуживают handlers
type Region interface {
	Region() string
	HubRegion() string
	MultiMaster() bool
	Clock() int64
	CheckWritable(multipleWriteLocations bool) error

	CreateDatabase(ctx context.Context, id string) (bool, error)
	CreateCollection(ctx context.Context, coll *models.Collection) (*models.Collection, bool, error)
	GetCollection(ctx context.Context, ref models.CollectionRef) (*models.Collection, error)

	CreateDocument(ctx context.Context, ref models.CollectionRef, rec *models.Record) (*models.Record, error)
	ReplaceDocument(ctx context.Context, ref models.CollectionRef, rec *models.Record, ifMatch string) (*models.Record, error)
	DeleteDocument(ctx context.Context, ref models.CollectionRef, id, partitionKey, ifMatch string) error
	GetDocument(ctx context.Context, ref models.CollectionRef, id, partitionKey string) (*models.Record, error)
	QueryDocuments(ctx context.Context, ref models.CollectionRef, req api.QueryRequest) ([]*models.Record, error)

	ListConflicts(ctx context.Context, ref models.CollectionRef) ([]*models.ConflictRecord, error)
	DeleteConflict(ctx context.Context, ref models.CollectionRef, id string) error

	ApplyChange(ctx context.Context, change *api.Change) (*api.ChangeAck, error)
}
