package storage

import (
	"context"
	"time"
)

// MetadataStorage служебные отметки клиента
type MetadataStorage interface {
	// SaveSetupTime запоминает время последней подготовки базы и коллекций
	SaveSetupTime(ctx context.Context, at time.Time) error

	// GetSetupTime нулевое время, если подготовка не выполнялась
	GetSetupTime(ctx context.Context) (time.Time, error)
}
