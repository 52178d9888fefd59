package models

import "time"

// OperationKind тип операции, которая породила версию документа
type OperationKind string

const (
	OperationCreate  OperationKind = "create"
	OperationReplace OperationKind = "replace"
	OperationDelete  OperationKind = "delete"
)

// ConflictRecord запись conflict feed. Хранит проигравшую версию документа.
type ConflictRecord struct {
	DetectedAt    time.Time     `json:"detectedAt"`
	Content       *Record       `json:"content,omitempty"` // Content проигравшая версия (nil для delete)
	ID            string        `json:"id"`
	ResourceID    string        `json:"resourceId"` // ResourceID id документа, на котором случился конфликт
	PartitionKey  string        `json:"partitionKey"`
	SourceRegion  string        `json:"sourceRegion"` // SourceRegion регион, записавший проигравшую версию
	SelfLink      string        `json:"_self"`
	OperationKind OperationKind `json:"operationType"`
}
