package models

import (
	"fmt"
	"strings"
)

// Record представляет документ, на котором провоцируются конфликты.
// Служебные поля (_etag, _self, _rid, _ts) заполняет регион при фиксации записи.
type Record struct {
	ID            string `json:"id"`              // ID ключ конфликта, одинаковый для всех регионов в раунде
	Name          string `json:"name"`            // Name произвольное имя
	City          string `json:"city"`            // City произвольный город
	PostalCode    string `json:"postalcode"`      // PostalCode ключ партиции, обязателен
	Region        string `json:"region"`          // Region регион, записавший эту версию
	ETag          string `json:"_etag,omitempty"` // ETag токен версии для optimistic concurrency
	SelfLink      string `json:"_self,omitempty"` // SelfLink адрес ресурса
	ResourceID    string `json:"_rid,omitempty"`  // ResourceID внутренний идентификатор ресурса
	UserDefinedID int    `json:"userdefinedid"`   // UserDefinedID 0-9, tiebreaker для LastWriterWins
	Timestamp     int64  `json:"_ts,omitempty"`   // Timestamp Lamport timestamp региона
}

// PartitionKeyPath путь ключа партиции для коллекций демо
const PartitionKeyPath = "/postalcode"

// Validate проверяет обязательные поля записи
func (r *Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record id cannot be empty")
	}
	if r.PostalCode == "" {
		return fmt.Errorf("record %s: postal code (partition key) cannot be empty", r.ID)
	}
	if r.UserDefinedID < 0 || r.UserDefinedID > 9 {
		return fmt.Errorf("record %s: userdefinedid must be within 0-9, got %d", r.ID, r.UserDefinedID)
	}
	return nil
}

// PartitionKey возвращает значение ключа партиции
func (r *Record) PartitionKey() string {
	return r.PostalCode
}

// ResolutionValue возвращает значение поля, на которое указывает путь разрешения конфликтов.
// Поддерживаются /userdefinedid и /_ts.
func (r *Record) ResolutionValue(path string) (int64, bool) {
	switch strings.ToLower(strings.TrimSpace(path)) {
	case "/userdefinedid":
		return int64(r.UserDefinedID), true
	case "/_ts", "":
		return r.Timestamp, true
	default:
		return 0, false
	}
}

// StripSystem сбрасывает служебные поля, оставляя только пользовательские данные
func (r *Record) StripSystem() {
	r.ETag = ""
	r.SelfLink = ""
	r.ResourceID = ""
	r.Timestamp = 0
}

// Clone создает копию записи
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// String формат, которым запись выводится оператору
func (r *Record) String() string {
	return fmt.Sprintf("Id: %s, Name: %s, City: %s, PostalCode: %s, UserDefId: %d, Region: %s",
		r.ID, r.Name, r.City, r.PostalCode, r.UserDefinedID, r.Region)
}
