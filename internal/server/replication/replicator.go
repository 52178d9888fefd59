// Package replication асинхронно доставляет изменения региона остальным регионам.
package replication

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/iudanet/conflictgen/internal/token"
	"github.com/iudanet/conflictgen/pkg/api"
)

// ChangesPath endpoint приема изменений
const ChangesPath = "/replication/changes"

// Peer другой регион
type Peer struct {
	ID  string
	URL string
}

// Config параметры репликации
type Config struct {
	Client     *http.Client
	Token      token.Config // подпись запросов к пирам
	Region     string       // регион-источник
	Peers      []Peer
	Lag        time.Duration // задержка доставки, эмулирует географическую дистанцию
	RetryBase  time.Duration
	QueueSize  int
	MaxRetries uint64
}

// item изменение в очереди пира
type item struct {
	readyAt time.Time
	change  *api.Change
}

type peerQueue struct {
	peer  Peer
	queue chan item
}

// Replicator рассылает изменения по пирам.
// У каждого пира своя FIFO очередь, поэтому изменения одного документа
// приходят к пиру в порядке фиксации.
type Replicator struct {
	client  *http.Client
	logger  *slog.Logger
	peers   []*peerQueue
	cfg     Config
	pending atomic.Int64
	dropped atomic.Int64
}

// New создает Replicator. Доставка начинается после Run.
func New(cfg Config, logger *slog.Logger) *Replicator {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 50 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 8
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	r := &Replicator{
		client: client,
		logger: logger.With("component", "replication", "region", cfg.Region),
		cfg:    cfg,
	}
	for _, p := range cfg.Peers {
		r.peers = append(r.peers, &peerQueue{peer: p, queue: make(chan item, cfg.QueueSize)})
	}
	return r
}

// Enqueue ставит изменение в очередь каждого пира. Не блокируется:
// при переполненной очереди изменение для этого пира отбрасывается.
func (r *Replicator) Enqueue(change *api.Change) {
	it := item{change: change, readyAt: time.Now().Add(r.cfg.Lag)}
	for _, pq := range r.peers {
		select {
		case pq.queue <- it:
			r.pending.Add(1)
		default:
			r.dropped.Add(1)
			r.logger.Warn("Replication queue is full, change dropped",
				"peer", pq.peer.ID,
				"id", change.ID,
				"kind", change.Kind)
		}
	}
}

// Pending возвращает число изменений, еще не доставленных пирам
func (r *Replicator) Pending() int64 {
	return r.pending.Load()
}

// Dropped возвращает число изменений, отброшенных из-за переполнения очереди
func (r *Replicator) Dropped() int64 {
	return r.dropped.Load()
}

// Run доставляет изменения, пока не отменен ctx
func (r *Replicator) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, pq := range r.peers {
		wg.Add(1)
		go func(pq *peerQueue) {
			defer wg.Done()
			r.runPeer(ctx, pq)
		}(pq)
	}

	r.logger.Info("Replication started", "peers", len(r.peers), "lag", r.cfg.Lag)
	wg.Wait()
	r.logger.Info("Replication stopped", "pending", r.Pending())

	return ctx.Err()
}

func (r *Replicator) runPeer(ctx context.Context, pq *peerQueue) {
	for {
		select {
		case <-ctx.Done():
			return
		case it := <-pq.queue:
			if wait := time.Until(it.readyAt); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}

			if err := r.deliver(ctx, pq.peer, it.change); err != nil {
				r.logger.Error("Failed to replicate change",
					"peer", pq.peer.ID,
					"id", it.change.ID,
					"kind", it.change.Kind,
					"error", err)
			}
			r.pending.Add(-1)
		}
	}
}

// deliver отправляет изменение пиру с повторами на временных ошибках
func (r *Replicator) deliver(ctx context.Context, peer Peer, change *api.Change) error {
	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to encode change: %w", err)
	}

	backoff := retry.WithMaxRetries(r.cfg.MaxRetries, retry.NewExponential(r.cfg.RetryBase))
	backoff = retry.WithCappedDuration(2*time.Second, backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		ack, err := r.push(ctx, peer, body)
		if err != nil {
			var pe *pushError
			if errors.As(err, &pe) && !pe.retryable() {
				return err
			}
			r.logger.Debug("Replication push failed, retrying", "peer", peer.ID, "id", change.ID, "error", err)
			return retry.RetryableError(err)
		}

		if ack.Conflict {
			r.logger.Info("Peer resolved conflict",
				"peer", peer.ID,
				"id", change.ID,
				"resolution", ack.Resolution)
		}
		return nil
	})
}

func (r *Replicator) push(ctx context.Context, peer Peer, body []byte) (*api.ChangeAck, error) {
	url := strings.TrimRight(peer.URL, "/") + ChangesPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	tok, err := token.Generate(r.cfg.Token, r.cfg.Region)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set(api.HeaderRegion, r.cfg.Region)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send change: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &pushError{code: resp.StatusCode, message: strings.TrimSpace(string(msg))}
	}

	var ack api.ChangeAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("failed to decode ack: %w", err)
	}
	return &ack, nil
}

// pushError ответ пира с неуспешным статусом
type pushError struct {
	message string
	code    int
}

func (e *pushError) Error() string {
	return fmt.Sprintf("peer responded %d: %s", e.code, e.message)
}

// retryable: 404 (схема еще не доехала), 429 и 5xx повторяются, остальное нет
func (e *pushError) retryable() bool {
	return e.code == http.StatusNotFound ||
		e.code == http.StatusTooManyRequests ||
		e.code >= http.StatusInternalServerError
}
