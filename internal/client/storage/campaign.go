package storage

import (
	"context"

	"github.com/iudanet/conflictgen/internal/models"
)

// CampaignStorage журнал кампаний генерации конфликтов
type CampaignStorage interface {
	// SaveCampaign сохраняет или обновляет запись. Пустой ID заполняется.
	SaveCampaign(ctx context.Context, rec *models.CampaignRecord) error

	// GetCampaign возвращает ErrCampaignNotFound, если записи нет
	GetCampaign(ctx context.Context, id string) (*models.CampaignRecord, error)

	// ListCampaigns последние кампании, новые первыми. limit <= 0 - все.
	ListCampaigns(ctx context.Context, limit int) ([]*models.CampaignRecord, error)

	// DeleteCampaign удаляет запись; отсутствие записи не ошибка
	DeleteCampaign(ctx context.Context, id string) error
}
