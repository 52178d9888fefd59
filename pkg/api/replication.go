package api

import "github.com/iudanet/conflictgen/internal/models"

// OperationSchema изменение схемы: создание базы данных или коллекции
const OperationSchema models.OperationKind = "schema"

// Change изменение, зафиксированное в одном регионе и отправляемое остальным
type Change struct {
	Document     *models.Record       `json:"document,omitempty"`   // новая версия, nil для delete
	Collection   *models.Collection   `json:"collection,omitempty"` // только для OperationSchema
	Database     string               `json:"database"`
	Coll         string               `json:"coll"`
	ID           string               `json:"id"`
	PartitionKey string               `json:"partitionKey"`
	ResourceID   string               `json:"rid"`
	BaseETag     string               `json:"baseEtag"` // версия, которую заменила запись; пусто для create
	ETag         string               `json:"etag"`
	SourceRegion string               `json:"sourceRegion"`
	Kind         models.OperationKind `json:"kind"`
	Timestamp    int64                `json:"timestamp"`
}

// Ref возвращает ссылку на коллекцию изменения
func (c *Change) Ref() models.CollectionRef {
	return models.CollectionRef{Database: c.Database, Collection: c.Coll}
}

// ChangeAck ответ региона на применение изменения
type ChangeAck struct {
	Resolution string `json:"resolution,omitempty"` // keep-local / take-incoming при конфликте
	Applied    bool   `json:"applied"`
	Conflict   bool   `json:"conflict"`
}
