package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/conflictgen/internal/client/storage"
	"github.com/iudanet/conflictgen/internal/models"
)

// SaveCampaign stores or updates a campaign record.
// Новые записи получают UUIDv7, поэтому ключи bucket упорядочены по времени.
func (s *Storage) SaveCampaign(ctx context.Context, rec *models.CampaignRecord) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate campaign id: %w", err)
		}
		rec.ID = id.String()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCampaigns)
		if bucket == nil {
			return fmt.Errorf("campaigns bucket not found")
		}
		return bucket.Put([]byte(rec.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save campaign %s: %w", rec.ID, err)
	}

	return nil
}

// GetCampaign retrieves a campaign record by ID
func (s *Storage) GetCampaign(ctx context.Context, id string) (*models.CampaignRecord, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var rec *models.CampaignRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCampaigns)
		if bucket == nil {
			return storage.ErrCampaignNotFound
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrCampaignNotFound
		}

		rec = &models.CampaignRecord{}
		if err := json.Unmarshal(data, rec); err != nil {
			return fmt.Errorf("failed to unmarshal campaign: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return rec, nil
}

// ListCampaigns returns campaigns newest first
func (s *Storage) ListCampaigns(ctx context.Context, limit int) ([]*models.CampaignRecord, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var out []*models.CampaignRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCampaigns)
		if bucket == nil {
			return nil
		}

		c := bucket.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}

			rec := &models.CampaignRecord{}
			if err := json.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("failed to unmarshal campaign %s: %w", k, err)
			}
			out = append(out, rec)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// DeleteCampaign removes a campaign record
func (s *Storage) DeleteCampaign(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCampaigns)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(id))
	})
}
