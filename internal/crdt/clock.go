package crdt

import "sync"

// LamportClock представляет логические часы Лампорта одного региона.
// Каждая локально зафиксированная запись получает следующее значение,
// изменения, пришедшие от других регионов, продвигают часы вперед.
type LamportClock struct {
	region  string     // регион-владелец часов
	counter int64      // монотонно возрастающий счетчик
	mu      sync.Mutex // мьютекс для потокобезопасности
}

// NewLamportClock создает часы для региона
func NewLamportClock(region string) *LamportClock {
	return &LamportClock{region: region}
}

// Tick увеличивает счетчик и возвращает новое значение timestamp.
// Используется при фиксации локальной записи.
func (lc *LamportClock) Tick() int64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.counter++
	return lc.counter
}

// Witness учитывает timestamp изменения, пришедшего из другого региона.
// Согласно алгоритму Лампорта: counter = max(local_counter, remote_timestamp) + 1
func (lc *LamportClock) Witness(remote int64) int64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if remote > lc.counter {
		lc.counter = remote
	}
	lc.counter++

	return lc.counter
}

// Now возвращает текущее значение счетчика без изменения
func (lc *LamportClock) Now() int64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	return lc.counter
}

// Restore поднимает счетчик до сохраненного значения (после перезапуска региона).
// Часы никогда не идут назад.
func (lc *LamportClock) Restore(timestamp int64) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if timestamp > lc.counter {
		lc.counter = timestamp
	}
}

// Region возвращает регион-владелец часов
func (lc *LamportClock) Region() string {
	return lc.region
}
