package crdt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLamportClock(t *testing.T) {
	clock := NewLamportClock("West US 2")

	require.NotNil(t, clock)
	assert.Equal(t, int64(0), clock.Now(), "Initial counter should be 0")
	assert.Equal(t, "West US 2", clock.Region())
}

func TestLamportClock_Tick_Monotonicity(t *testing.T) {
	clock := NewLamportClock("r1")

	var previous int64
	for i := 0; i < 100; i++ {
		current := clock.Tick()
		assert.Greater(t, current, previous, "Tick should always increase")
		previous = current
	}

	assert.Equal(t, int64(100), clock.Now())
}

func TestLamportClock_Witness(t *testing.T) {
	tests := []struct {
		name     string
		local    int64
		remote   int64
		expected int64
	}{
		{name: "remote ahead", local: 5, remote: 10, expected: 11},
		{name: "remote behind", local: 15, remote: 10, expected: 16},
		{name: "remote equal", local: 10, remote: 10, expected: 11},
		{name: "both zero", local: 0, remote: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := NewLamportClock("r1")
			clock.Restore(tt.local)

			result := clock.Witness(tt.remote)

			assert.Equal(t, tt.expected, result)
			assert.Equal(t, tt.expected, clock.Now())
		})
	}
}

func TestLamportClock_Restore_NeverGoesBack(t *testing.T) {
	clock := NewLamportClock("r1")
	clock.Restore(50)
	assert.Equal(t, int64(50), clock.Now())

	// Восстановление меньшего значения не должно откатывать часы
	clock.Restore(10)
	assert.Equal(t, int64(50), clock.Now())
}

func TestLamportClock_ConcurrentTick(t *testing.T) {
	clock := NewLamportClock("r1")

	const goroutines = 50
	const ticks = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < ticks; j++ {
				clock.Tick()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines*ticks), clock.Now())
}
