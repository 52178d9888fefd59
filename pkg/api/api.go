// Package api содержит типы REST API региона и заголовки протокола.
package api

import (
	"github.com/iudanet/conflictgen/internal/models"
)

// Заголовки протокола
const (
	// HeaderIfMatch precondition для replace/delete
	HeaderIfMatch = "If-Match"
	// HeaderETag ETag зафиксированной версии
	HeaderETag = "ETag"
	// HeaderPartitionKey значение ключа партиции документа
	HeaderPartitionKey = "X-Partition-Key"
	// HeaderMultipleWriteLocations клиент разрешает запись в свой предпочитаемый регион
	HeaderMultipleWriteLocations = "X-Multiple-Write-Locations"
	// HeaderRegion регион, обработавший запрос
	HeaderRegion = "X-Region"
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse ответ health check региона
type HealthResponse struct {
	Status      string `json:"status"`
	Region      string `json:"region"`
	HubRegion   string `json:"hub_region"`
	Version     string `json:"version,omitempty"`
	Clock       int64  `json:"clock"`
	MultiMaster bool   `json:"multi_master"`
}

// CollectionRequest запрос на создание коллекции
type CollectionRequest struct {
	PartitionKeyPath string                          `json:"partitionKeyPath"`
	Policy           models.ConflictResolutionPolicy `json:"conflictResolutionPolicy"`
}

// QueryRequest запрос на выборку документов
type QueryRequest struct {
	Filters        map[string]string `json:"filters,omitempty"`
	PartitionKey   string            `json:"partitionKey,omitempty"`
	Limit          int               `json:"limit,omitempty"`
	CrossPartition bool              `json:"crossPartition"`
}

// QueryResponse результат выборки
type QueryResponse struct {
	Documents []*models.Record `json:"documents"`
	Count     int              `json:"count"`
}

// ConflictFeedResponse содержимое conflict feed коллекции
type ConflictFeedResponse struct {
	Conflicts []*models.ConflictRecord `json:"conflicts"`
	Count     int                      `json:"count"`
}
