// Package pool держит по одному хендлу хранилища на каждый регион записи.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/conflictgen/internal/store"
)

// ErrNoRegions список регионов пуст
var ErrNoRegions = errors.New("no write regions configured")

// DialFunc создает хендл, который предпочитает region для чтения и записи
// и разрешает запись в несколько регионов.
type DialFunc func(ctx context.Context, region string) (store.Handle, error)

// Pool набор региональных хендлов в порядке конфигурации
type Pool struct {
	logger  *slog.Logger
	handles []store.Handle
	regions []string
}

// New создает по одному хендлу на регион. Ошибка любого хендла фатальна:
// уже созданные хендлы закрываются, повторов нет.
func New(ctx context.Context, regions []string, dial DialFunc, logger *slog.Logger) (*Pool, error) {
	if len(regions) == 0 {
		return nil, ErrNoRegions
	}

	p := &Pool{
		logger:  logger,
		handles: make([]store.Handle, 0, len(regions)),
		regions: make([]string, 0, len(regions)),
	}

	for _, region := range regions {
		h, err := dial(ctx, region)
		if err != nil {
			if cerr := p.Close(); cerr != nil {
				logger.Warn("Failed to close regional handles", "error", cerr)
			}
			return nil, fmt.Errorf("failed to connect to region %q: %w", region, err)
		}

		p.handles = append(p.handles, h)
		p.regions = append(p.regions, region)
		logger.Debug("Regional handle ready", "region", region)
	}

	logger.Info("Regional client pool ready", "regions", len(p.regions))
	return p, nil
}

// Handles возвращает хендлы в порядке конфигурации
func (p *Pool) Handles() []store.Handle {
	out := make([]store.Handle, len(p.handles))
	copy(out, p.handles)
	return out
}

// Primary хендл первого региона. Через него пишутся базовые записи
// и читается лента конфликтов.
func (p *Pool) Primary() store.Handle {
	return p.handles[0]
}

// Regions возвращает имена регионов
func (p *Pool) Regions() []string {
	out := make([]string, len(p.regions))
	copy(out, p.regions)
	return out
}

// Len количество регионов
func (p *Pool) Len() int {
	return len(p.handles)
}

// Close закрывает все хендлы
func (p *Pool) Close() error {
	var errs []error
	for _, h := range p.handles {
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("region %q: %w", h.Region(), err))
		}
	}
	p.handles = nil
	p.regions = nil
	return errors.Join(errs...)
}
