package conflictgen

import (
	"fmt"

	"github.com/iudanet/conflictgen/internal/models"
)

// OutcomeKind итог одной попытки записи
type OutcomeKind int

const (
	// Committed запись зафиксирована регионом
	Committed OutcomeKind = iota
	// LostRace другой регион успел раньше, ожидаемый исход
	LostRace
	// Fatal ошибка инфраструктуры, прерывает кампанию
	Fatal
)

func (k OutcomeKind) String() string {
	switch k {
	case Committed:
		return "Committed"
	case LostRace:
		return "LostRace"
	case Fatal:
		return "Fatal"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Op операция над документом
type Op int

const (
	OpInsert Op = iota
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Outcome результат одной попытки записи в одном регионе.
// Record заполнен только для Committed. Err для LostRace хранит статус
// хранилища (для логов), для Fatal - исходную ошибку.
type Outcome struct {
	Record *models.Record
	Err    error
	Region string
	Kind   OutcomeKind
	Op     Op
}

func committed(op Op, region string, rec *models.Record) Outcome {
	return Outcome{Kind: Committed, Op: op, Region: region, Record: rec}
}

func lostRace(op Op, region string, cause error) Outcome {
	return Outcome{Kind: LostRace, Op: op, Region: region, Err: cause}
}

func fatal(op Op, region string, err error) Outcome {
	return Outcome{Kind: Fatal, Op: op, Region: region, Err: err}
}
