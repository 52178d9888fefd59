// Package api содержит HTTP клиент региона, реализующий store.Handle.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/store"
	"github.com/iudanet/conflictgen/internal/token"
	"github.com/iudanet/conflictgen/pkg/api"
)

// DefaultTimeout таймаут HTTP запроса по умолчанию
const DefaultTimeout = 30 * time.Second

// Config параметры клиента одного региона
type Config struct {
	HTTPClient *http.Client // nil - новый клиент с Timeout
	Token      token.Config
	Region     string // предпочитаемый регион
	Endpoint   string // URL региона
	Timeout    time.Duration
	// MultipleWriteLocations разрешает запись в предпочитаемый регион
	MultipleWriteLocations bool
}

// Client представляет HTTP клиент для взаимодействия с одним регионом
type Client struct {
	httpClient *http.Client
	token      token.Config
	region     string
	baseURL    string
	multiWrite bool
}

var (
	_ store.Handle      = (*Client)(nil)
	_ store.Provisioner = (*Client)(nil)
)

// NewClient создает новый клиент региона
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: httpClient,
		token:      cfg.Token,
		region:     cfg.Region,
		baseURL:    strings.TrimRight(cfg.Endpoint, "/"),
		multiWrite: cfg.MultipleWriteLocations,
	}
}

// Dial создает клиент и проверяет, что endpoint обслуживает ожидаемый регион
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	c := NewClient(cfg)

	health, err := c.Health(ctx)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(health.Region, cfg.Region) {
		return nil, fmt.Errorf("endpoint %s serves region %q, expected %q", cfg.Endpoint, health.Region, cfg.Region)
	}

	return c, nil
}

// Region возвращает предпочитаемый регион клиента
func (c *Client) Region() string {
	return c.region
}

// Health запрашивает состояние региона
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, "health", http.MethodGet, "/health", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateDatabaseIfNotExists создает базу данных
func (c *Client) CreateDatabaseIfNotExists(ctx context.Context, database string) error {
	err := c.doRequest(ctx, "create database", http.MethodPut, "/dbs/"+url.PathEscape(database), nil, nil, nil)
	return err
}

// CreateCollectionIfNotExists создает коллекцию и возвращает сохраненную версию
func (c *Client) CreateCollectionIfNotExists(ctx context.Context, coll *models.Collection) (*models.Collection, error) {
	req := api.CollectionRequest{
		PartitionKeyPath: coll.PartitionKeyPath,
		Policy:           coll.Policy,
	}

	var stored models.Collection
	if err := c.doRequest(ctx, "create collection", http.MethodPut, collectionPath(coll.Ref()), nil, req, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Create создает документ
func (c *Client) Create(ctx context.Context, coll models.CollectionRef, rec *models.Record) (*models.Record, error) {
	var created models.Record
	headers := c.writeHeaders(rec.PartitionKey(), "")
	if err := c.doRequest(ctx, "create", http.MethodPost, collectionPath(coll)+"/docs", headers, rec, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Replace заменяет документ, если его ETag равен ifMatch
func (c *Client) Replace(ctx context.Context, coll models.CollectionRef, rec *models.Record, ifMatch string) (*models.Record, error) {
	var replaced models.Record
	headers := c.writeHeaders(rec.PartitionKey(), ifMatch)
	if err := c.doRequest(ctx, "replace", http.MethodPut, documentPath(coll, rec.ID), headers, rec, &replaced); err != nil {
		return nil, err
	}
	return &replaced, nil
}

// Delete удаляет документ, если его ETag равен ifMatch
func (c *Client) Delete(ctx context.Context, coll models.CollectionRef, id, partitionKey, ifMatch string) error {
	err := c.doRequest(ctx, "delete", http.MethodDelete, documentPath(coll, id), c.writeHeaders(partitionKey, ifMatch), nil, nil)
	return err
}

// Get читает документ
func (c *Client) Get(ctx context.Context, coll models.CollectionRef, id, partitionKey string) (*models.Record, error) {
	var rec models.Record
	headers := map[string]string{api.HeaderPartitionKey: partitionKey}
	if err := c.doRequest(ctx, "read", http.MethodGet, documentPath(coll, id), headers, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Query выбирает документы по равенству полей
func (c *Client) Query(ctx context.Context, coll models.CollectionRef, q store.Query) ([]*models.Record, error) {
	req := api.QueryRequest{
		Filters:        q.Filters,
		PartitionKey:   q.PartitionKey,
		Limit:          q.Limit,
		CrossPartition: q.CrossPartition,
	}

	var resp api.QueryResponse
	if err := c.doRequest(ctx, "query", http.MethodPost, collectionPath(coll)+"/query", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// ReadConflicts читает conflict feed коллекции
func (c *Client) ReadConflicts(ctx context.Context, coll models.CollectionRef) ([]*models.ConflictRecord, error) {
	var resp api.ConflictFeedResponse
	if err := c.doRequest(ctx, "read conflicts", http.MethodGet, collectionPath(coll)+"/conflicts", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conflicts, nil
}

// DeleteConflict удаляет запись conflict feed
func (c *Client) DeleteConflict(ctx context.Context, coll models.CollectionRef, conflictID string) error {
	path := collectionPath(coll) + "/conflicts/" + url.PathEscape(conflictID)
	err := c.doRequest(ctx, "delete conflict", http.MethodDelete, path, nil, nil, nil)
	return err
}

// Close закрывает простаивающие соединения
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) writeHeaders(partitionKey, ifMatch string) map[string]string {
	headers := map[string]string{api.HeaderPartitionKey: partitionKey}
	if ifMatch != "" {
		headers[api.HeaderIfMatch] = ifMatch
	}
	if c.multiWrite {
		headers[api.HeaderMultipleWriteLocations] = "true"
	}
	return headers
}

// doRequest выполняет HTTP запрос с токеном региона.
// Любая ошибка возвращается как *store.StatusError.
func (c *Client) doRequest(ctx context.Context, op, method, path string, headers map[string]string, body, result any) error {
	fail := func(status store.Status, code int, msg string, err error) error {
		return &store.StatusError{Err: err, Op: op, Region: c.region, Message: msg, Status: status, Code: code}
	}

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fail(store.StatusOtherFailure, 0, "failed to marshal request body", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fail(store.StatusOtherFailure, 0, "failed to create request", err)
	}

	tok, err := token.Generate(c.token, c.region)
	if err != nil {
		return fail(store.StatusOtherFailure, 0, "failed to sign request", err)
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(store.StatusOtherFailure, 0, "request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(store.StatusOtherFailure, resp.StatusCode, "failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(respBody))
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			msg = errResp.Message
		}
		return fail(store.StatusFromHTTP(resp.StatusCode), resp.StatusCode, msg, errors.New(http.StatusText(resp.StatusCode)))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fail(store.StatusOtherFailure, resp.StatusCode, "failed to decode response", err)
		}
	}

	return nil
}

func collectionPath(ref models.CollectionRef) string {
	return "/dbs/" + url.PathEscape(ref.Database) + "/colls/" + url.PathEscape(ref.Collection)
}

func documentPath(ref models.CollectionRef, id string) string {
	return collectionPath(ref) + "/docs/" + url.PathEscape(id)
}
