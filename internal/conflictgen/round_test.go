package conflictgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/store"
)

func newTestRound(t *testing.T, handles []store.Handle, cfg RoundConfig) *Round {
	t.Helper()
	if cfg.Collection == (models.CollectionRef{}) {
		cfg.Collection = testColl
	}
	r, err := NewRound(handles, cfg, testRand(), testLogger())
	require.NoError(t, err)
	return r
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "insert", want: ModeInsert},
		{in: "Update", want: ModeUpdate},
		{in: " delete ", want: ModeDelete},
		{in: "upsert", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Mode {
	t.Helper()
	m, err := ParseMode(s)
	require.NoError(t, err)
	return m
}

func TestAssigners(t *testing.T) {
	regions := []string{"a", "b", "c", "d"}
	var got []Op
	for i, r := range regions {
		got = append(got, DefaultAssigner(ModeDelete)(i, r))
	}
	assert.Equal(t, []Op{OpDelete, OpUpdate, OpDelete, OpUpdate}, got)

	assert.Equal(t, OpInsert, DefaultAssigner(ModeInsert)(3, "d"))
	assert.Equal(t, OpUpdate, DefaultAssigner(ModeUpdate)(0, "a"))
}

func TestNewRound_Validation(t *testing.T) {
	_, err := NewRound(nil, RoundConfig{}, testRand(), testLogger())
	assert.ErrorIs(t, err, ErrNoHandles)

	fs := newFakeStore()
	_, err = NewRound(fs.handles("a", "b"), RoundConfig{Mode: ModeInsert, Assign: AlternateDeleteUpdate}, testRand(), testLogger())
	assert.ErrorIs(t, err, ErrInvalidAssignment)
}

func TestRound_InsertConflict(t *testing.T) {
	fs := newFakeStore()
	round := newTestRound(t, fs.handles("A", "B"), RoundConfig{Mode: ModeInsert})

	res, err := round.Run(context.Background(), 1)
	require.NoError(t, err)

	id, err := strconv.Atoi(res.ID)
	require.NoError(t, err)
	assert.True(t, id >= 0 && id < MaxRecordID)

	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, 1, res.Count(Committed), "only one insert of the same id may commit")
	assert.Equal(t, 1, res.Count(LostRace))
	assert.Equal(t, PhaseSuccess, res.Decision)

	for _, o := range res.Outcomes {
		if o.Kind == Committed {
			assert.Equal(t, res.ID, o.Record.ID)
			assert.Equal(t, o.Region, o.Record.Region)
			assert.Equal(t, "98052", o.Record.PostalCode)
			assert.True(t, o.Record.UserDefinedID >= 0 && o.Record.UserDefinedID <= 9)
		}
	}
}

func TestRound_UpdateConflict(t *testing.T) {
	fs := newFakeStore()
	handles := fs.handles("A", "B")
	round := newTestRound(t, handles, RoundConfig{Mode: ModeUpdate})

	res, err := round.Run(context.Background(), 1)
	require.NoError(t, err)

	// базовая вставка только через первый регион
	assert.Len(t, handles[0].(*store.HandleMock).CreateCalls(), 1)
	assert.Empty(t, handles[1].(*store.HandleMock).CreateCalls())

	for _, h := range handles {
		calls := h.(*store.HandleMock).ReplaceCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, `"1"`, calls[0].IfMatch, "every region updates the same captured version")
	}

	assert.Equal(t, 1, res.Count(Committed))
	assert.Equal(t, 1, res.Count(LostRace))
	assert.Equal(t, PhaseSuccess, res.Decision)

	for _, o := range res.Outcomes {
		if o.Kind == Committed {
			assert.Equal(t, o.Region, o.Record.Region)
		}
	}
}

func TestRound_DeleteConflict(t *testing.T) {
	tests := []struct {
		name         string
		feed         []int // длина ленты: до раунда, после раунда
		wantDecision Phase
		wantNew      int
	}{
		{name: "new conflict recorded", feed: []int{2, 3}, wantDecision: PhaseSuccess, wantNew: 1},
		{name: "feed unchanged", feed: []int{2, 2}, wantDecision: PhaseRetry},
		{name: "feed shrank", feed: []int{4, 1}, wantDecision: PhaseRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			reads := 0
			feed := func(context.Context, models.CollectionRef) ([]*models.ConflictRecord, error) {
				mu.Lock()
				defer mu.Unlock()
				n := tt.feed[reads]
				reads++
				return make([]*models.ConflictRecord, n), nil
			}

			a := &store.HandleMock{
				RegionFunc: func() string { return "A" },
				CreateFunc: func(_ context.Context, _ models.CollectionRef, rec *models.Record) (*models.Record, error) {
					out := *rec
					out.ETag = `"1"`
					return &out, nil
				},
				DeleteFunc:        func(context.Context, models.CollectionRef, string, string, string) error { return nil },
				ReadConflictsFunc: feed,
			}
			b := &store.HandleMock{
				RegionFunc: func() string { return "B" },
				ReplaceFunc: func(context.Context, models.CollectionRef, *models.Record, string) (*models.Record, error) {
					return nil, statusErr(store.StatusNotFound, http.StatusNotFound)
				},
			}

			round := newTestRound(t, []store.Handle{a, b}, RoundConfig{Mode: ModeDelete})
			res, err := round.Run(context.Background(), 1)
			require.NoError(t, err, "NotFound on the update must not be fatal")

			require.Len(t, res.Outcomes, 2)
			assert.Equal(t, OpDelete, res.Outcomes[0].Op)
			assert.Equal(t, Committed, res.Outcomes[0].Kind)
			assert.Equal(t, OpUpdate, res.Outcomes[1].Op)
			assert.Equal(t, LostRace, res.Outcomes[1].Kind)

			assert.Equal(t, tt.wantDecision, res.Decision)
			assert.Equal(t, tt.wantNew, res.NewConflicts)
			assert.Len(t, a.ReadConflictsCalls(), 2)
		})
	}
}

func TestRound_DeleteWithoutCommitSkipsFeedCheck(t *testing.T) {
	a := &store.HandleMock{
		RegionFunc: func() string { return "A" },
		CreateFunc: func(_ context.Context, _ models.CollectionRef, rec *models.Record) (*models.Record, error) {
			return rec, nil
		},
		DeleteFunc: func(context.Context, models.CollectionRef, string, string, string) error {
			return statusErr(store.StatusPreconditionFailed, http.StatusPreconditionFailed)
		},
		ReadConflictsFunc: func(context.Context, models.CollectionRef) ([]*models.ConflictRecord, error) {
			return nil, nil
		},
	}
	b := &store.HandleMock{
		RegionFunc: func() string { return "B" },
		ReplaceFunc: func(context.Context, models.CollectionRef, *models.Record, string) (*models.Record, error) {
			return nil, statusErr(store.StatusPreconditionFailed, http.StatusPreconditionFailed)
		},
	}

	res, err := newTestRound(t, []store.Handle{a, b}, RoundConfig{Mode: ModeDelete}).Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, PhaseRetry, res.Decision)
	assert.Equal(t, 2, res.Count(LostRace))
	assert.Len(t, a.ReadConflictsCalls(), 1, "only the baseline is read")
}

func TestRound_AllLostRaceRetries(t *testing.T) {
	fs := newFakeStore()
	handles := fs.handles("A", "B", "C")
	for _, h := range handles {
		h.(*store.HandleMock).CreateFunc = func(context.Context, models.CollectionRef, *models.Record) (*models.Record, error) {
			return nil, statusErr(store.StatusAlreadyExists, http.StatusConflict)
		}
	}

	res, err := newTestRound(t, handles, RoundConfig{Mode: ModeInsert}).Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, PhaseRetry, res.Decision)
	assert.Equal(t, 3, res.Count(LostRace))
}

func TestRound_SeedLostRace(t *testing.T) {
	a := &store.HandleMock{
		RegionFunc: func() string { return "A" },
		CreateFunc: func(context.Context, models.CollectionRef, *models.Record) (*models.Record, error) {
			return nil, statusErr(store.StatusAlreadyExists, http.StatusConflict)
		},
	}
	b := &store.HandleMock{RegionFunc: func() string { return "B" }}

	res, err := newTestRound(t, []store.Handle{a, b}, RoundConfig{Mode: ModeUpdate}).Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, PhaseRetry, res.Decision)
	assert.Empty(t, res.Outcomes)
	assert.Empty(t, b.ReplaceCalls())
}

func TestRound_FatalAbortsBeforeSettling(t *testing.T) {
	fs := newFakeStore()
	handles := fs.handles("A", "B")
	handles[1].(*store.HandleMock).CreateFunc = func(context.Context, models.CollectionRef, *models.Record) (*models.Record, error) {
		return nil, statusErr(store.StatusOtherFailure, http.StatusInternalServerError)
	}

	round := newTestRound(t, handles, RoundConfig{Mode: ModeInsert, SettleDelay: time.Minute})

	start := time.Now()
	res, err := round.Run(context.Background(), 1)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)

	var se *store.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, 1, res.Count(Fatal))
	assert.NotEqual(t, PhaseSuccess, res.Decision)
}

func TestRound_FanOutIsConcurrent(t *testing.T) {
	const n = 4

	var arrived sync.WaitGroup
	arrived.Add(n)
	all := make(chan struct{})
	go func() {
		arrived.Wait()
		close(all)
	}()

	handles := make([]store.Handle, n)
	for i := range handles {
		region := fmt.Sprintf("r%d", i)
		handles[i] = &store.HandleMock{
			RegionFunc: func() string { return region },
			CreateFunc: func(_ context.Context, _ models.CollectionRef, rec *models.Record) (*models.Record, error) {
				arrived.Done()
				select {
				case <-all:
				case <-time.After(5 * time.Second):
					return nil, errors.New("attempts were not dispatched concurrently")
				}
				// последний регион отвечает медленнее остальных
				if region == fmt.Sprintf("r%d", n-1) {
					time.Sleep(50 * time.Millisecond)
				}
				return rec, nil
			},
		}
	}

	res, err := newTestRound(t, handles, RoundConfig{Mode: ModeInsert}).Run(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, res.Outcomes, n)
	for i, o := range res.Outcomes {
		assert.Equal(t, Committed, o.Kind)
		assert.Equal(t, fmt.Sprintf("r%d", i), o.Region)
	}
}

func TestRound_DrainsAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fs := newFakeStore()
	round := newTestRound(t, fs.handles("A", "B"), RoundConfig{Mode: ModeInsert, SettleDelay: 20 * time.Millisecond})

	res, err := round.Run(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, PhaseSuccess, res.Decision)
}

func TestRound_DrainTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fs := newFakeStore()
	round := newTestRound(t, fs.handles("A", "B"), RoundConfig{
		Mode:         ModeInsert,
		SettleDelay:  time.Minute,
		DrainTimeout: 10 * time.Millisecond,
	})

	_, err := round.Run(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
