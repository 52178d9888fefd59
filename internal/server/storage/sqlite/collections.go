package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/server/storage"
)

// CreateDatabase creates database if it does not exist
func (s *Storage) CreateDatabase(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO databases (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		id, time.Now().UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to create database: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// CreateCollection creates collection if it does not exist.
// Для существующей коллекции возвращается сохраненная версия, политика не перезаписывается.
func (s *Storage) CreateCollection(ctx context.Context, coll *models.Collection) (*models.Collection, bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM databases WHERE id = ?`, coll.Database).Scan(&exists)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check database: %w", err)
	}
	if exists == 0 {
		return nil, false, storage.ErrDatabaseNotFound
	}

	createdAt := coll.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (
			database_id, id, partition_key_path,
			resolution_mode, resolution_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(database_id, id) DO NOTHING
	`,
		coll.Database,
		coll.ID,
		coll.PartitionKeyPath,
		string(coll.Policy.Mode),
		coll.Policy.ResolutionPath,
		createdAt.UnixNano(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create collection: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	stored, err := s.GetCollection(ctx, coll.Ref())
	if err != nil {
		return nil, false, err
	}

	return stored, rows > 0, nil
}

// GetCollection returns collection or ErrCollectionNotFound
func (s *Storage) GetCollection(ctx context.Context, ref models.CollectionRef) (*models.Collection, error) {
	query := `
		SELECT database_id, id, partition_key_path,
		       resolution_mode, resolution_path, created_at
		FROM collections
		WHERE database_id = ? AND id = ?
	`

	coll := &models.Collection{}
	var mode string
	var createdAt int64

	err := s.db.QueryRowContext(ctx, query, ref.Database, ref.Collection).Scan(
		&coll.Database,
		&coll.ID,
		&coll.PartitionKeyPath,
		&mode,
		&coll.Policy.ResolutionPath,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	coll.Policy.Mode = models.ConflictResolutionMode(mode)
	coll.CreatedAt = unixToTime(createdAt)

	return coll, nil
}
