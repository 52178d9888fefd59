package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/conflictgen/internal/client/storage"
)

const (
	keySetupTime = "setup_time"
)

// SaveSetupTime saves the time of the last successful setup
func (s *Storage) SaveSetupTime(ctx context.Context, at time.Time) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		// UnixNano в big endian
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(at.UnixNano()))

		if err := bucket.Put([]byte(keySetupTime), buf); err != nil {
			return fmt.Errorf("failed to save setup time: %w", err)
		}

		return nil
	})
}

// GetSetupTime retrieves the time of the last successful setup.
// Returns zero time if setup has never been run.
func (s *Storage) GetSetupTime(ctx context.Context) (time.Time, error) {
	if s.db == nil {
		return time.Time{}, storage.ErrStorageClosed
	}

	var at time.Time

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		buf := bucket.Get([]byte(keySetupTime))
		if buf == nil {
			return nil
		}

		at = time.Unix(0, int64(binary.BigEndian.Uint64(buf)))
		return nil
	})

	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get setup time: %w", err)
	}

	return at, nil
}
