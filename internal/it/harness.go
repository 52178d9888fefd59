// Package it поднимает несколько регионов regiond в одном процессе
// для сквозных тестов генерации конфликтов.
package it

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/iudanet/conflictgen/internal/client/api"
	"github.com/iudanet/conflictgen/internal/config"
	"github.com/iudanet/conflictgen/internal/crypto"
	"github.com/iudanet/conflictgen/internal/pool"
	"github.com/iudanet/conflictgen/internal/server"
	"github.com/iudanet/conflictgen/internal/store"
	"github.com/iudanet/conflictgen/internal/token"
)

const (
	// Account учетная запись кластера
	Account = "conflictgen-it"
	// MasterKey общий ключ регионов и клиентов кластера
	MasterKey = "it-master-key"
)

// ClusterConfig параметры тестового кластера
type ClusterConfig struct {
	Regions        []string
	ReplicationLag time.Duration
	MultiMaster    bool
}

// Cluster регионы, запущенные в текущем процессе
type Cluster struct {
	logger  *slog.Logger
	cancel  context.CancelFunc
	token   token.Config
	nodes   []*Node
	wg      sync.WaitGroup
	mu      sync.Mutex
	errs    []error
	stopped bool
}

// Node один регион кластера
type Node struct {
	Region string
	URL    string
	server *server.Server
	ln     net.Listener
}

// StartCluster запускает регионы и ждет их готовности.
// Первый регион - hub для single-master режима.
func StartCluster(ctx context.Context, cfg ClusterConfig, logger *slog.Logger) (*Cluster, error) {
	if len(cfg.Regions) == 0 {
		return nil, fmt.Errorf("at least one region is required")
	}

	secret, err := crypto.DeriveSigningKey(MasterKey, Account)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &Cluster{
		logger: logger,
		cancel: cancel,
		token:  token.Config{Account: Account, Secret: secret},
	}

	// Сначала слушатели: адреса пиров должны быть известны до запуска регионов
	for _, region := range cfg.Regions {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			c.Stop()
			return nil, fmt.Errorf("failed to listen for region %s: %w", region, err)
		}
		c.nodes = append(c.nodes, &Node{
			Region: region,
			URL:    "http://" + ln.Addr().String(),
			ln:     ln,
		})
	}

	for _, n := range c.nodes {
		var peers []config.Peer
		for _, p := range c.nodes {
			if p != n {
				peers = append(peers, config.Peer{ID: p.Region, URL: p.URL})
			}
		}

		scfg := config.DefaultServerConfig()
		scfg.Region = n.Region
		scfg.HubRegion = cfg.Regions[0]
		scfg.Listen = n.ln.Addr().String()
		scfg.DBPath = ":memory:"
		scfg.Account = Account
		scfg.MasterKey = MasterKey
		scfg.Peers = peers
		scfg.ReplicationLag = cfg.ReplicationLag
		scfg.ShutdownTimeout = 2 * time.Second
		scfg.MultiMaster = cfg.MultiMaster
		if err := scfg.Validate(); err != nil {
			c.Stop()
			return nil, err
		}

		srv, err := server.New(runCtx, scfg, "it", logger.With("node", n.Region))
		if err != nil {
			c.Stop()
			return nil, fmt.Errorf("failed to create region %s: %w", n.Region, err)
		}
		n.server = srv

		c.wg.Add(1)
		go func(n *Node) {
			defer c.wg.Done()
			if err := n.server.Serve(runCtx, n.ln); err != nil {
				c.mu.Lock()
				c.errs = append(c.errs, fmt.Errorf("region %s: %w", n.Region, err))
				c.mu.Unlock()
			}
		}(n)
	}

	for _, n := range c.nodes {
		if err := c.waitForReady(ctx, n, 10*time.Second); err != nil {
			c.Stop()
			return nil, err
		}
	}

	return c, nil
}

// waitForReady опрашивает health региона до первого успешного ответа
func (c *Cluster) waitForReady(ctx context.Context, n *Node, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		h, err := c.dial(ctx, n)
		if err == nil {
			_ = h.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for region %s to be ready: %w", n.Region, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Cluster) dial(ctx context.Context, n *Node) (*api.Client, error) {
	return api.Dial(ctx, api.Config{
		Token:                  c.token,
		Region:                 n.Region,
		Endpoint:               n.URL,
		Timeout:                5 * time.Second,
		MultipleWriteLocations: true,
	})
}

// Nodes регионы в порядке конфигурации
func (c *Cluster) Nodes() []*Node {
	return c.nodes
}

// Regions имена регионов в порядке конфигурации
func (c *Cluster) Regions() []string {
	out := make([]string, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, n.Region)
	}
	return out
}

// Peers endpoints регионов для конфигурации клиента
func (c *Cluster) Peers() []config.Peer {
	out := make([]config.Peer, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, config.Peer{ID: n.Region, URL: n.URL})
	}
	return out
}

// Dial подключает клиента к региону по имени
func (c *Cluster) Dial(ctx context.Context, region string) (store.Handle, error) {
	cl, err := c.Client(ctx, region)
	if err != nil {
		return nil, err
	}
	return cl, nil
}

// Client клиент региона с доступом к Provisioner и Get
func (c *Cluster) Client(ctx context.Context, region string) (*api.Client, error) {
	for _, n := range c.nodes {
		if n.Region == region {
			return c.dial(ctx, n)
		}
	}
	return nil, fmt.Errorf("unknown region %q", region)
}

// Pool пул хендлов всех регионов
func (c *Cluster) Pool(ctx context.Context) (*pool.Pool, error) {
	return pool.New(ctx, c.Regions(), c.Dial, c.logger)
}

// Stop останавливает регионы и возвращает ошибки их работы
func (c *Cluster) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	c.mu.Unlock()

	c.cancel()
	for _, n := range c.nodes {
		if n.server == nil && n.ln != nil {
			_ = n.ln.Close()
		}
	}
	c.wg.Wait()

	c.mu.Lock()
	errs := append([]error(nil), c.errs...)
	c.mu.Unlock()

	for _, n := range c.nodes {
		if n.server != nil {
			if err := n.server.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
