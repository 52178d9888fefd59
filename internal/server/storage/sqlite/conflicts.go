package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/server/storage"
)

func insertConflict(ctx context.Context, tx *sql.Tx, ref models.CollectionRef, c *models.ConflictRecord) error {
	var content sql.NullString
	if c.Content != nil {
		raw, err := json.Marshal(c.Content)
		if err != nil {
			return fmt.Errorf("failed to encode conflict content: %w", err)
		}
		content = sql.NullString{String: string(raw), Valid: true}
	}

	if c.DetectedAt.IsZero() {
		c.DetectedAt = time.Now()
	}

	query := `
		INSERT INTO conflicts (
			id, database_id, collection_id, resource_id, partition_key,
			operation_kind, source_region, content, detected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		c.ID,
		ref.Database,
		ref.Collection,
		c.ResourceID,
		c.PartitionKey,
		string(c.OperationKind),
		c.SourceRegion,
		content,
		c.DetectedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert conflict: %w", err)
	}

	return nil
}

// ListConflicts returns conflict feed of collection ordered by detection time
func (s *Storage) ListConflicts(ctx context.Context, ref models.CollectionRef) (conflicts []*models.ConflictRecord, err error) {
	if _, err := s.GetCollection(ctx, ref); err != nil {
		return nil, err
	}

	query := `
		SELECT id, resource_id, partition_key, operation_kind,
		       source_region, content, detected_at
		FROM conflicts
		WHERE database_id = ? AND collection_id = ?
		ORDER BY detected_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, ref.Database, ref.Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query conflicts: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	conflicts = make([]*models.ConflictRecord, 0)
	for rows.Next() {
		c := &models.ConflictRecord{}
		var kind string
		var content sql.NullString
		var detectedAt int64

		err := rows.Scan(
			&c.ID,
			&c.ResourceID,
			&c.PartitionKey,
			&kind,
			&c.SourceRegion,
			&content,
			&detectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conflict: %w", err)
		}

		c.OperationKind = models.OperationKind(kind)
		c.DetectedAt = unixToTime(detectedAt)
		c.SelfLink = ref.ConflictLink(c.ID)

		if content.Valid {
			rec, err := decodeRecord(content.String)
			if err != nil {
				return nil, err
			}
			c.Content = rec
		}

		conflicts = append(conflicts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return conflicts, nil
}

// DeleteConflict removes entry from conflict feed
func (s *Storage) DeleteConflict(ctx context.Context, ref models.CollectionRef, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM conflicts WHERE database_id = ? AND collection_id = ? AND id = ?`,
		ref.Database, ref.Collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete conflict: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrConflictNotFound
	}

	return nil
}
