// Package server собирает регион: хранилище, движок, репликацию и HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/conflictgen/internal/config"
	"github.com/iudanet/conflictgen/internal/crypto"
	"github.com/iudanet/conflictgen/internal/server/handlers"
	"github.com/iudanet/conflictgen/internal/server/middleware"
	"github.com/iudanet/conflictgen/internal/server/region"
	"github.com/iudanet/conflictgen/internal/server/replication"
	"github.com/iudanet/conflictgen/internal/server/storage/sqlite"
	"github.com/iudanet/conflictgen/internal/token"
)

// Server один регион эмулируемого хранилища
type Server struct {
	cfg        *config.ServerConfig
	logger     *slog.Logger
	storage    *sqlite.Storage
	engine     *region.Engine
	replicator *replication.Replicator
	limiter    *middleware.RateLimiter
	handler    http.Handler
}

// New создает регион по конфигурации. cfg должен пройти Validate.
func New(ctx context.Context, cfg *config.ServerConfig, version string, logger *slog.Logger) (*Server, error) {
	secret, err := crypto.DeriveSigningKey(cfg.MasterKey, cfg.Account)
	if err != nil {
		return nil, err
	}
	tokenCfg := token.Config{Account: cfg.Account, Secret: secret}

	st, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	peers := make([]replication.Peer, 0, len(cfg.Peers))
	for _, p := range cfg.Peers {
		peers = append(peers, replication.Peer{ID: p.ID, URL: p.URL})
	}

	replicator := replication.New(replication.Config{
		Token:  tokenCfg,
		Region: cfg.Region,
		Peers:  peers,
		Lag:    cfg.ReplicationLag,
	}, logger)

	engine, err := region.New(ctx, region.Config{
		Region:      cfg.Region,
		HubRegion:   cfg.HubRegion,
		MultiMaster: cfg.MultiMaster,
	}, st, replicator, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger.With("region", cfg.Region),
		storage:    st,
		engine:     engine,
		replicator: replicator,
	}

	mws := []func(http.Handler) http.Handler{
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger, handlers.HealthPath),
		middleware.AuthMiddleware(logger, tokenCfg, handlers.HealthPath),
	}
	if cfg.RateLimit.Requests > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)
		mws = append(mws, middleware.RateLimitMiddleware(s.limiter, logger))
	}

	s.handler = middleware.Chain(handlers.NewMux(logger, engine, version), mws...)

	return s, nil
}

// Handler возвращает HTTP handler региона со всеми middleware
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Engine возвращает движок региона
func (s *Server) Engine() *region.Engine {
	return s.engine
}

// Replicator возвращает очередь репликации региона
func (s *Server) Replicator() *replication.Replicator {
	return s.replicator
}

// Run слушает cfg.Listen до отмены ctx
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает запросы и реплицирует изменения до отмены ctx,
// затем корректно останавливает HTTP сервер.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.replicator.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		s.logger.Info("Region listening",
			"addr", ln.Addr().String(),
			"hub", s.cfg.HubRegion,
			"multi_master", s.cfg.MultiMaster,
			"peers", len(s.cfg.Peers))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		s.logger.Info("Region shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close освобождает ресурсы региона
func (s *Server) Close() error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.storage.Close()
}
