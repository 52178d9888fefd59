package crdt

import "github.com/iudanet/conflictgen/internal/models"

// Version одна из конкурирующих версий документа
type Version struct {
	Record    *models.Record // содержимое версии, nil для удаления
	Region    string         // регион, зафиксировавший версию
	Timestamp int64          // Lamport timestamp фиксации
	Deleted   bool           // версия - удаление документа
}

// Verdict решение арбитража
type Verdict int

const (
	// KeepLocal локальная версия остается, входящая проигрывает
	KeepLocal Verdict = iota
	// TakeIncoming входящая версия заменяет локальную
	TakeIncoming
)

func (v Verdict) String() string {
	if v == TakeIncoming {
		return "take-incoming"
	}
	return "keep-local"
}

// Arbitrate выбирает победителя среди двух конкурирующих версий.
//
// LastWriterWins:
// 1. Удаление всегда выигрывает у записи
// 2. Сравнивается значение пути разрешения (больше - выигрывает)
// 3. При равенстве сравнивается Timestamp, затем регион (лексикографически)
//
// Custom: победитель выбирается по Timestamp и региону, проигравший
// сохраняется в conflict feed вызывающей стороной.
//
// Решение детерминировано, поэтому все регионы сходятся к одной версии
// независимо от порядка доставки.
func Arbitrate(policy models.ConflictResolutionPolicy, local, incoming Version) Verdict {
	if policy.Mode == models.ResolutionLastWriterWins {
		if incoming.Deleted != local.Deleted {
			if incoming.Deleted {
				return TakeIncoming
			}
			return KeepLocal
		}
		if !incoming.Deleted {
			in, okIn := incoming.Record.ResolutionValue(policy.ResolutionPath)
			lo, okLo := local.Record.ResolutionValue(policy.ResolutionPath)
			if okIn && okLo && in != lo {
				if in > lo {
					return TakeIncoming
				}
				return KeepLocal
			}
		}
	}

	if incoming.isNewerThan(local) {
		return TakeIncoming
	}
	return KeepLocal
}

// isNewerThan сравнивает по Timestamp, при равенстве - по региону для детерминизма
func (v Version) isNewerThan(other Version) bool {
	if v.Timestamp != other.Timestamp {
		return v.Timestamp > other.Timestamp
	}
	return v.Region > other.Region
}
