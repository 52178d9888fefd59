// Package conflictgen генерирует конфликты записи в multi-master хранилище:
// одна и та же запись конкурентно пишется из нескольких регионов, а
// результат каждой попытки классифицируется как Committed, LostRace или Fatal.
package conflictgen

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/store"
)

// Unbounded кампания без ограничения на число раундов
const Unbounded = -1

// Подсказки оператору между раундами
const (
	PromptContinue = "Conflicts generated. Continue generating conflicts?"
	PromptRetry    = "No conflict induced this round. Try again?"
)

// Operator решает, продолжать ли кампанию (интерактивный режим)
type Operator interface {
	Continue(ctx context.Context, prompt string) (bool, error)
}

// Observer получает итог каждого раунда
type Observer interface {
	OnRound(res *RoundResult)
}

// ObserverFunc адаптер функции к Observer
type ObserverFunc func(res *RoundResult)

// OnRound вызывает f
func (f ObserverFunc) OnRound(res *RoundResult) {
	f(res)
}

// Config параметры кампании
type Config struct {
	Rand         *rand.Rand // источник случайности кампании, nil - случайный seed
	Assign       OpAssigner // nil - DefaultAssigner(Mode)
	Operator     Operator   // nil - автоматический режим
	Observer     Observer
	Record       *models.Record // шаблон документа, nil - DefaultRecord()
	Collection   models.CollectionRef
	Mode         Mode
	MaxRounds    int // Unbounded (< 0) - до подтверждения или остановки оператором
	SeedDelay    time.Duration
	SettleDelay  time.Duration
	DrainTimeout time.Duration
}

// Result итог кампании
type Result struct {
	LastID       string
	Mode         Mode
	Rounds       int
	Committed    int
	LostRaces    int
	NewConflicts int
	Confirmed    bool // хотя бы один раунд завершился Success
	Stopped      bool // остановлена оператором
}

func (r *Result) add(rr *RoundResult) {
	r.Rounds = rr.Number
	r.LastID = rr.ID
	r.Committed += rr.Count(Committed)
	r.LostRaces += rr.Count(LostRace)
	r.NewConflicts += rr.NewConflicts
}

// Campaign повторяет раунды одного вида конфликта над одной коллекцией
type Campaign struct {
	round  *Round
	logger *slog.Logger
	cfg    Config
}

// New создает кампанию над региональными хендлами в порядке конфигурации
func New(handles []store.Handle, cfg Config, logger *slog.Logger) (*Campaign, error) {
	round, err := NewRound(handles, RoundConfig{
		Assign:       cfg.Assign,
		Template:     cfg.Record,
		Collection:   cfg.Collection,
		Mode:         cfg.Mode,
		SeedDelay:    cfg.SeedDelay,
		SettleDelay:  cfg.SettleDelay,
		DrainTimeout: cfg.DrainTimeout,
	}, cfg.Rand, logger)
	if err != nil {
		return nil, err
	}

	return &Campaign{round: round, logger: logger, cfg: cfg}, nil
}

// Run выполняет кампанию. Отмена ctx проверяется на границах раундов,
// тогда возвращается частичный результат и ctx.Err(). Fatal исход
// прерывает кампанию с ошибкой.
func (c *Campaign) Run(ctx context.Context) (*Result, error) {
	res := &Result{Mode: c.cfg.Mode}

	if c.cfg.MaxRounds == 0 {
		return res, nil
	}

	c.logger.Info("Starting conflict campaign",
		"mode", c.cfg.Mode.String(),
		"collection", c.cfg.Collection.String(),
		"regions", len(c.round.handles),
		"max_rounds", c.cfg.MaxRounds,
		"interactive", c.cfg.Operator != nil)

	for n := 1; c.cfg.MaxRounds < 0 || n <= c.cfg.MaxRounds; n++ {
		if err := ctx.Err(); err != nil {
			c.logger.Info("Campaign cancelled", "rounds", res.Rounds)
			return res, err
		}

		rr, err := c.round.Run(ctx, n)
		res.add(rr)
		if c.cfg.Observer != nil {
			c.cfg.Observer.OnRound(rr)
		}
		if err != nil {
			c.logger.Error("Campaign aborted", "round", n, "id", rr.ID, "error", err)
			return res, fmt.Errorf("round %d (id %s): %w", n, rr.ID, err)
		}

		success := rr.Decision == PhaseSuccess
		if success {
			res.Confirmed = true
		}

		c.logger.Info("Round finished",
			"round", n,
			"id", rr.ID,
			"decision", rr.Decision.String(),
			"committed", rr.Count(Committed),
			"lost_races", rr.Count(LostRace),
			"new_conflicts", rr.NewConflicts)

		// автоматический режим и delete-кампания завершаются на первом Success,
		// delete-кампания повторяет неудачные раунды без вопроса оператору
		if c.cfg.Operator == nil || c.cfg.Mode == ModeDelete {
			if success {
				return res, nil
			}
			continue
		}

		prompt := PromptRetry
		if success {
			prompt = PromptContinue
		}
		more, err := c.cfg.Operator.Continue(ctx, prompt)
		if err != nil {
			return res, fmt.Errorf("operator input: %w", err)
		}
		if !more {
			res.Stopped = true
			c.logger.Info("Campaign stopped by operator", "rounds", res.Rounds)
			return res, nil
		}
	}

	if !res.Confirmed {
		c.logger.Info("Round budget exhausted without a confirmed conflict", "rounds", res.Rounds)
	}
	return res, nil
}
