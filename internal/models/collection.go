package models

import (
	"fmt"
	"time"
)

// ConflictResolutionMode режим разрешения конфликтов коллекции
type ConflictResolutionMode string

const (
	// ResolutionLastWriterWins конфликт разрешается прозрачно по пути разрешения
	ResolutionLastWriterWins ConflictResolutionMode = "LastWriterWins"
	// ResolutionCustom проигравшая версия попадает в conflict feed
	ResolutionCustom ConflictResolutionMode = "Custom"
)

// ConflictResolutionPolicy описывает политику разрешения конфликтов
type ConflictResolutionPolicy struct {
	Mode           ConflictResolutionMode `json:"mode"`
	ResolutionPath string                 `json:"conflictResolutionPath,omitempty"`
}

// Validate проверяет политику
func (p ConflictResolutionPolicy) Validate() error {
	switch p.Mode {
	case ResolutionLastWriterWins, ResolutionCustom:
		return nil
	default:
		return fmt.Errorf("unknown conflict resolution mode: %q", p.Mode)
	}
}

// Collection представляет коллекцию документов
type Collection struct {
	CreatedAt        time.Time                `json:"createdAt"`
	ID               string                   `json:"id"`
	Database         string                   `json:"database"`
	PartitionKeyPath string                   `json:"partitionKeyPath"`
	Policy           ConflictResolutionPolicy `json:"conflictResolutionPolicy"`
}

// Ref возвращает ссылку на коллекцию
func (c *Collection) Ref() CollectionRef {
	return CollectionRef{Database: c.Database, Collection: c.ID}
}

// CollectionRef адресует коллекцию внутри базы данных
type CollectionRef struct {
	Database   string `json:"database"`
	Collection string `json:"collection"`
}

// Link возвращает адрес коллекции в формате dbs/{db}/colls/{coll}
func (r CollectionRef) Link() string {
	return fmt.Sprintf("dbs/%s/colls/%s", r.Database, r.Collection)
}

// DocumentLink возвращает адрес документа внутри коллекции
func (r CollectionRef) DocumentLink(id string) string {
	return fmt.Sprintf("%s/docs/%s", r.Link(), id)
}

// ConflictLink возвращает адрес записи conflict feed
func (r CollectionRef) ConflictLink(id string) string {
	return fmt.Sprintf("%s/conflicts/%s", r.Link(), id)
}

func (r CollectionRef) String() string {
	return r.Link()
}
