package conflictgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/store"
)

// MaxRecordID id записи раунда выбирается из [0, MaxRecordID)
const MaxRecordID = 1000

var (
	// ErrNoHandles не передано ни одного регионального хендла
	ErrNoHandles = errors.New("no regional handles")
	// ErrInvalidAssignment назначение операций невозможно для режима
	ErrInvalidAssignment = errors.New("invalid operation assignment")
)

// Mode вид конфликта, который генерирует кампания
type Mode int

const (
	ModeInsert Mode = iota
	ModeUpdate
	ModeDelete
)

func (m Mode) String() string {
	switch m {
	case ModeInsert:
		return "insert"
	case ModeUpdate:
		return "update"
	case ModeDelete:
		return "delete"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode разбирает имя режима
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insert":
		return ModeInsert, nil
	case "update":
		return ModeUpdate, nil
	case "delete":
		return ModeDelete, nil
	default:
		return 0, fmt.Errorf("unknown conflict mode %q (expected insert, update or delete)", s)
	}
}

// Phase состояние раунда
type Phase int

const (
	PhaseSeeding Phase = iota
	PhaseFanning
	PhaseSettling
	PhaseDeciding
	PhaseSuccess
	PhaseRetry
)

func (p Phase) String() string {
	switch p {
	case PhaseSeeding:
		return "Seeding"
	case PhaseFanning:
		return "Fanning"
	case PhaseSettling:
		return "Settling"
	case PhaseDeciding:
		return "Deciding"
	case PhaseSuccess:
		return "Success"
	case PhaseRetry:
		return "Retry"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// OpAssigner выбирает операцию для i-го региона
type OpAssigner func(i int, region string) Op

// AllInsert каждый регион вставляет документ
func AllInsert(int, string) Op { return OpInsert }

// AllUpdate каждый регион обновляет базовый документ
func AllUpdate(int, string) Op { return OpUpdate }

// AlternateDeleteUpdate чередует delete и update по регионам, чтобы
// получить гонку delete против update, а не delete против delete.
func AlternateDeleteUpdate(i int, _ string) Op {
	if i%2 == 0 {
		return OpDelete
	}
	return OpUpdate
}

// DefaultAssigner назначение операций по умолчанию для режима
func DefaultAssigner(m Mode) OpAssigner {
	switch m {
	case ModeUpdate:
		return AllUpdate
	case ModeDelete:
		return AlternateDeleteUpdate
	default:
		return AllInsert
	}
}

// DefaultRecord шаблон документа раунда
func DefaultRecord() *models.Record {
	return &models.Record{
		Name:       "Scott Guthrie",
		City:       "Redmond",
		PostalCode: "98052",
	}
}

// RoundConfig параметры раунда
type RoundConfig struct {
	Assign       OpAssigner
	Template     *models.Record
	Collection   models.CollectionRef
	Mode         Mode
	SeedDelay    time.Duration // ожидание репликации базовой вставки
	SettleDelay  time.Duration // ожидание репликации после fan-out
	DrainTimeout time.Duration // сколько раунд может доработать после отмены кампании
}

// RoundResult итог раунда
type RoundResult struct {
	ID           string
	Outcomes     []Outcome
	Number       int
	NewConflicts int
	Decision     Phase
}

// Count количество исходов вида kind
func (r *RoundResult) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// Round один цикл Seeding -> Fanning -> Settling -> Deciding.
// Раунды выполняются последовательно, Round не используется конкурентно.
type Round struct {
	exec     *Executor
	detector *Detector
	logger   *slog.Logger
	rng      *rand.Rand
	handles  []store.Handle
	cfg      RoundConfig
}

// NewRound создает раунд над хендлами. handles[0] - основной регион.
func NewRound(handles []store.Handle, cfg RoundConfig, rng *rand.Rand, logger *slog.Logger) (*Round, error) {
	if len(handles) == 0 {
		return nil, ErrNoHandles
	}
	if cfg.Assign == nil {
		cfg.Assign = DefaultAssigner(cfg.Mode)
	}
	if cfg.Template == nil {
		cfg.Template = DefaultRecord()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	if cfg.Mode == ModeInsert {
		for i, h := range handles {
			if op := cfg.Assign(i, h.Region()); op != OpInsert {
				return nil, fmt.Errorf("%w: %s in region %q needs a seeded document, insert mode has none",
					ErrInvalidAssignment, op, h.Region())
			}
		}
	}

	return &Round{
		exec:     NewExecutor(logger),
		detector: NewDetector(handles[0], cfg.Collection, logger),
		logger:   logger,
		rng:      rng,
		handles:  handles,
		cfg:      cfg,
	}, nil
}

// Detector детектор конфликтов раунда
func (r *Round) Detector() *Detector {
	return r.detector
}

// Run выполняет раунд number. Раунд работает на контексте, отвязанном от
// отмены ctx: после отмены у него есть DrainTimeout, чтобы дождаться
// запущенных попыток.
func (r *Round) Run(ctx context.Context, number int) (*RoundResult, error) {
	ctx, cancel := detach(ctx, r.cfg.DrainTimeout)
	defer cancel()

	res := &RoundResult{
		Number:   number,
		ID:       strconv.Itoa(r.rng.IntN(MaxRecordID)),
		Decision: PhaseRetry,
	}
	r.enter(res, PhaseSeeding)

	baseline := 0
	if r.cfg.Mode == ModeDelete {
		n, err := r.detector.Count(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to read conflict baseline: %w", err)
		}
		baseline = n
	}

	var base *models.Record
	if r.cfg.Mode != ModeInsert {
		r.logger.Info("Inserting document to conflict on", "round", number, "id", res.ID, "region", r.handles[0].Region())

		out := r.exec.Insert(ctx, r.handles[0], r.cfg.Collection, r.newRecord(res.ID))
		switch out.Kind {
		case Fatal:
			return res, fmt.Errorf("seed insert failed: %w", out.Err)
		case LostRace:
			// id не уникален между раундами, раунд без результата
			r.logger.Info("Seed id already in use, round inconclusive", "round", number, "id", res.ID)
			r.enter(res, PhaseRetry)
			return res, nil
		}
		base = out.Record

		if err := sleep(ctx, r.cfg.SeedDelay); err != nil {
			return res, fmt.Errorf("seed delay interrupted: %w", err)
		}
	}

	r.enter(res, PhaseFanning)
	res.Outcomes = r.fanOut(ctx, res.ID, base)

	var fatals []error
	for _, o := range res.Outcomes {
		if o.Kind == Fatal {
			fatals = append(fatals, fmt.Errorf("%s attempt: %w", o.Op, o.Err))
		}
	}
	if len(fatals) > 0 {
		return res, errors.Join(fatals...)
	}

	r.enter(res, PhaseSettling)
	if err := sleep(ctx, r.cfg.SettleDelay); err != nil {
		return res, fmt.Errorf("settle delay interrupted: %w", err)
	}

	r.enter(res, PhaseDeciding)
	if res.Count(Committed) == 0 {
		r.logger.Info("Every attempt lost the race, round inconclusive", "round", number, "id", res.ID)
		r.enter(res, PhaseRetry)
		return res, nil
	}

	if r.cfg.Mode == ModeDelete {
		fresh, err := r.detector.NewSince(ctx, baseline)
		if err != nil {
			return res, err
		}
		res.NewConflicts = fresh
		if fresh == 0 {
			r.logger.Info("No new entries in conflict feed", "round", number, "id", res.ID)
			r.enter(res, PhaseRetry)
			return res, nil
		}
	}

	r.enter(res, PhaseSuccess)
	return res, nil
}

// fanOut запускает по одной попытке на регион и ждет все.
// Все попытки стартуют до первого ожидания.
func (r *Round) fanOut(ctx context.Context, id string, base *models.Record) []Outcome {
	ops := make([]Op, len(r.handles))
	records := make([]*models.Record, len(r.handles))
	for i, h := range r.handles {
		ops[i] = r.cfg.Assign(i, h.Region())
		if ops[i] == OpInsert {
			records[i] = r.newRecord(id)
		} else {
			records[i] = base
		}
	}

	outcomes := make([]Outcome, len(r.handles))

	var g errgroup.Group
	for i, h := range r.handles {
		g.Go(func() error {
			outcomes[i] = r.exec.Do(ctx, ops[i], h, r.cfg.Collection, records[i])
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// newRecord копия шаблона с id раунда и случайным userdefinedid.
// Вызывается только из горутины раунда, rng не потокобезопасен.
func (r *Round) newRecord(id string) *models.Record {
	rec := cloneRecord(r.cfg.Template)
	rec.ID = id
	rec.UserDefinedID = r.rng.IntN(10)
	rec.ETag = ""
	rec.SelfLink = ""
	rec.ResourceID = ""
	rec.Timestamp = 0
	return rec
}

func (r *Round) enter(res *RoundResult, p Phase) {
	res.Decision = p
	r.logger.Debug("Round phase", "round", res.Number, "id", res.ID, "mode", r.cfg.Mode.String(), "phase", p.String())
}

// detach отвязывает ctx от отмены родителя. После отмены родителя
// возвращенный контекст живет еще grace; grace <= 0 - без ограничения.
func detach(parent context.Context, grace time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	if grace <= 0 {
		return ctx, cancel
	}

	stop := context.AfterFunc(parent, func() {
		time.AfterFunc(grace, cancel)
	})
	return ctx, func() {
		stop()
		cancel()
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
