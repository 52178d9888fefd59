package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/server/storage"
)

// filterFieldPattern допустимые имена полей в фильтрах запроса
var filterFieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// querier общий интерфейс *sql.DB и *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectDocument = `
	SELECT id, partition_key, rid, etag, region,
	       body, timestamp, deleted, updated_at
	FROM documents
	WHERE database_id = ? AND collection_id = ? AND partition_key = ? AND id = ?
`

// GetDocument returns stored version including tombstones
func (s *Storage) GetDocument(ctx context.Context, ref models.CollectionRef, id, partitionKey string) (*storage.Document, error) {
	return getDocument(ctx, s.db, ref, id, partitionKey)
}

func getDocument(ctx context.Context, q querier, ref models.CollectionRef, id, partitionKey string) (*storage.Document, error) {
	doc := &storage.Document{}
	var body sql.NullString
	var deleted int
	var updatedAt int64

	err := q.QueryRowContext(ctx, selectDocument, ref.Database, ref.Collection, partitionKey, id).Scan(
		&doc.ID,
		&doc.PartitionKey,
		&doc.ResourceID,
		&doc.ETag,
		&doc.Region,
		&body,
		&doc.Timestamp,
		&deleted,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.Deleted = intToBool(deleted)
	doc.UpdatedAt = unixToTime(updatedAt)

	if body.Valid {
		rec, err := decodeRecord(body.String)
		if err != nil {
			return nil, err
		}
		doc.Record = rec
	}

	return doc, nil
}

// MutateDocument atomically reads current version and writes the version returned by fn.
// Если fn вернула next == nil, ничего не пишется и возвращается текущая версия.
func (s *Storage) MutateDocument(
	ctx context.Context,
	ref models.CollectionRef,
	id, partitionKey string,
	fn storage.MutateFunc,
) (result *storage.Document, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM collections WHERE database_id = ? AND id = ?`,
		ref.Database, ref.Collection,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection: %w", err)
	}
	if exists == 0 {
		return nil, storage.ErrCollectionNotFound
	}

	current, err := getDocument(ctx, tx, ref, id, partitionKey)
	if err != nil && !errors.Is(err, storage.ErrDocumentNotFound) {
		return nil, err
	}

	next, conflict, err := fn(current)
	if err != nil {
		return nil, err
	}

	if next != nil {
		if err = upsertDocument(ctx, tx, ref, next); err != nil {
			return nil, err
		}
	}

	if conflict != nil {
		if err = insertConflict(ctx, tx, ref, conflict); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if next != nil {
		return next, nil
	}
	return current, nil
}

func upsertDocument(ctx context.Context, tx *sql.Tx, ref models.CollectionRef, doc *storage.Document) error {
	var body sql.NullString
	if doc.Record != nil && !doc.Deleted {
		raw, err := json.Marshal(doc.Record)
		if err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}
		body = sql.NullString{String: string(raw), Valid: true}
	}

	updatedAt := doc.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
		doc.UpdatedAt = updatedAt
	}

	query := `
		INSERT INTO documents (
			database_id, collection_id, id, partition_key, rid,
			etag, region, body, timestamp, deleted, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(database_id, collection_id, partition_key, id) DO UPDATE SET
			rid = excluded.rid,
			etag = excluded.etag,
			region = excluded.region,
			body = excluded.body,
			timestamp = excluded.timestamp,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at
	`

	_, err := tx.ExecContext(ctx, query,
		ref.Database,
		ref.Collection,
		doc.ID,
		doc.PartitionKey,
		doc.ResourceID,
		doc.ETag,
		doc.Region,
		body,
		doc.Timestamp,
		boolToInt(doc.Deleted),
		updatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// QueryDocuments returns live documents matching all filters.
// Значения сравниваются как текст, поэтому фильтр userdefinedid=5 тоже работает.
func (s *Storage) QueryDocuments(
	ctx context.Context,
	ref models.CollectionRef,
	filters map[string]string,
	partitionKey string,
	crossPartition bool,
	limit int,
) (records []*models.Record, err error) {
	if partitionKey == "" && !crossPartition {
		return nil, storage.ErrCrossPartitionRequired
	}

	if _, err := s.GetCollection(ctx, ref); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT body FROM documents WHERE database_id = ? AND collection_id = ? AND deleted = 0`)
	args := []any{ref.Database, ref.Collection}

	if partitionKey != "" {
		sb.WriteString(` AND partition_key = ?`)
		args = append(args, partitionKey)
	}

	// Сортируем поля, чтобы текст запроса был детерминированным
	fields := make([]string, 0, len(filters))
	for field := range filters {
		if !filterFieldPattern.MatchString(field) {
			return nil, fmt.Errorf("%w: %q", storage.ErrInvalidFilter, field)
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		sb.WriteString(` AND CAST(json_extract(body, ?) AS TEXT) = ?`)
		args = append(args, "$."+field, filters[field])
	}

	sb.WriteString(` ORDER BY updated_at ASC, id ASC`)
	if limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	records = make([]*models.Record, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		rec, err := decodeRecord(body)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// MaxTimestamp returns max Lamport timestamp ever stored
func (s *Storage) MaxTimestamp(ctx context.Context) (int64, error) {
	var ts sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(timestamp) FROM documents`).Scan(&ts); err != nil {
		return 0, fmt.Errorf("failed to get max timestamp: %w", err)
	}
	return ts.Int64, nil
}

func decodeRecord(body string) (*models.Record, error) {
	rec := &models.Record{}
	if err := json.Unmarshal([]byte(body), rec); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return rec, nil
}
