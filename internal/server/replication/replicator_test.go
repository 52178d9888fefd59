package replication

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/token"
	"github.com/iudanet/conflictgen/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testToken() token.Config {
	return token.Config{Account: "demo", Secret: []byte("0123456789abcdef0123456789abcdef")}
}

// fakePeer принимает изменения и отвечает заданными статусами
type fakePeer struct {
	received []*api.Change
	statuses []int // статусы первых ответов, дальше 200
	calls    atomic.Int32
	mu       sync.Mutex
}

func (p *fakePeer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ChangesPath, r.URL.Path)

		auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims, err := token.Validate(testToken(), auth)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "West US", claims.Region)

		n := int(p.calls.Add(1))
		if n <= len(p.statuses) {
			w.WriteHeader(p.statuses[n-1])
			return
		}

		var c api.Change
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&c)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		p.mu.Lock()
		p.received = append(p.received, &c)
		p.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.ChangeAck{Applied: true})
	}
}

func (p *fakePeer) ids() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.received))
	for _, c := range p.received {
		ids = append(ids, c.ID)
	}
	return ids
}

func startReplicator(t *testing.T, cfg Config) *Replicator {
	t.Helper()
	r := New(cfg, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r
}

func change(id string) *api.Change {
	return &api.Change{
		Document:     &models.Record{ID: id, PostalCode: "98052"},
		Database:     "db",
		Coll:         "coll",
		ID:           id,
		PartitionKey: "98052",
		SourceRegion: "West US",
		Kind:         models.OperationCreate,
	}
}

func TestReplicator_DeliversInOrderToEveryPeer(t *testing.T) {
	p1, p2 := &fakePeer{}, &fakePeer{}
	s1 := httptest.NewServer(p1.handler(t))
	defer s1.Close()
	s2 := httptest.NewServer(p2.handler(t))
	defer s2.Close()

	r := startReplicator(t, Config{
		Token:  testToken(),
		Region: "West US",
		Peers:  []Peer{{ID: "East US", URL: s1.URL}, {ID: "North Europe", URL: s2.URL + "/"}},
	})

	for _, id := range []string{"1", "2", "3"} {
		r.Enqueue(change(id))
	}

	require.Eventually(t, func() bool { return r.Pending() == 0 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"1", "2", "3"}, p1.ids())
	assert.Equal(t, []string{"1", "2", "3"}, p2.ids())
}

func TestReplicator_Lag(t *testing.T) {
	p := &fakePeer{}
	s := httptest.NewServer(p.handler(t))
	defer s.Close()

	r := startReplicator(t, Config{
		Token:  testToken(),
		Region: "West US",
		Peers:  []Peer{{ID: "East US", URL: s.URL}},
		Lag:    300 * time.Millisecond,
	})

	start := time.Now()
	r.Enqueue(change("1"))

	require.Eventually(t, func() bool { return len(p.ids()) == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
}

func TestReplicator_Retry(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantIDs   []string
		wantCalls int32
	}{
		{
			name:      "retries server errors",
			statuses:  []int{http.StatusServiceUnavailable, http.StatusNotFound, http.StatusTooManyRequests},
			wantIDs:   []string{"1"},
			wantCalls: 4,
		},
		{
			name:      "bad request is permanent",
			statuses:  []int{http.StatusBadRequest},
			wantIDs:   []string{},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePeer{statuses: tt.statuses}
			s := httptest.NewServer(p.handler(t))
			defer s.Close()

			r := startReplicator(t, Config{
				Token:     testToken(),
				Region:    "West US",
				Peers:     []Peer{{ID: "East US", URL: s.URL}},
				RetryBase: time.Millisecond,
			})
			r.Enqueue(change("1"))

			require.Eventually(t, func() bool { return r.Pending() == 0 }, 5*time.Second, 10*time.Millisecond)
			assert.Equal(t, tt.wantIDs, p.ids())
			assert.Equal(t, tt.wantCalls, p.calls.Load())
		})
	}
}

func TestReplicator_DropsWhenQueueIsFull(t *testing.T) {
	// Run не запущен, очередь никто не читает
	r := New(Config{
		Region:    "West US",
		Peers:     []Peer{{ID: "East US", URL: "http://127.0.0.1:0"}},
		QueueSize: 2,
	}, testLogger())

	for _, id := range []string{"1", "2", "3", "4"} {
		r.Enqueue(change(id))
	}

	assert.Equal(t, int64(2), r.Pending())
	assert.Equal(t, int64(2), r.Dropped())
}
