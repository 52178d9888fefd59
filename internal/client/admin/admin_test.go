package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSetupConfig() SetupConfig {
	return SetupConfig{
		Database:         "ConflictDemoDB",
		LWWCollection:    "LwwCollection",
		CustomCollection: "CustomCollection",
	}
}

func TestSetup(t *testing.T) {
	p := &store.ProvisionerMock{
		CreateDatabaseIfNotExistsFunc: func(context.Context, string) error { return nil },
		CreateCollectionIfNotExistsFunc: func(_ context.Context, coll *models.Collection) (*models.Collection, error) {
			out := *coll
			return &out, nil
		},
	}

	colls, err := Setup(context.Background(), p, testSetupConfig(), testLogger())
	require.NoError(t, err)
	require.Len(t, colls, 2)

	require.Len(t, p.CreateDatabaseIfNotExistsCalls(), 1)
	assert.Equal(t, "ConflictDemoDB", p.CreateDatabaseIfNotExistsCalls()[0].Database)

	calls := p.CreateCollectionIfNotExistsCalls()
	require.Len(t, calls, 2)

	lww := calls[0].Coll
	assert.Equal(t, "LwwCollection", lww.ID)
	assert.Equal(t, models.ResolutionLastWriterWins, lww.Policy.Mode)
	assert.Equal(t, "/userdefinedid", lww.Policy.ResolutionPath)
	assert.Equal(t, "/postalcode", lww.PartitionKeyPath)

	custom := calls[1].Coll
	assert.Equal(t, "CustomCollection", custom.ID)
	assert.Equal(t, models.ResolutionCustom, custom.Policy.Mode)
	assert.Empty(t, custom.Policy.ResolutionPath)
	assert.Equal(t, "/postalcode", custom.PartitionKeyPath)
}

func TestSetup_Failures(t *testing.T) {
	dbErr := &store.StatusError{Op: "create database", Status: store.StatusOtherFailure, Code: http.StatusUnauthorized}

	t.Run("database", func(t *testing.T) {
		p := &store.ProvisionerMock{
			CreateDatabaseIfNotExistsFunc: func(context.Context, string) error { return dbErr },
		}
		_, err := Setup(context.Background(), p, testSetupConfig(), testLogger())
		assert.ErrorIs(t, err, dbErr)
		assert.Empty(t, p.CreateCollectionIfNotExistsCalls())
	})

	t.Run("second collection", func(t *testing.T) {
		collErr := errors.New("boom")
		p := &store.ProvisionerMock{
			CreateDatabaseIfNotExistsFunc: func(context.Context, string) error { return nil },
			CreateCollectionIfNotExistsFunc: func(_ context.Context, coll *models.Collection) (*models.Collection, error) {
				if coll.Policy.Mode == models.ResolutionCustom {
					return nil, collErr
				}
				return coll, nil
			},
		}
		created, err := Setup(context.Background(), p, testSetupConfig(), testLogger())
		assert.ErrorIs(t, err, collErr)
		assert.Len(t, created, 1)
	})

	t.Run("cancelled during provisioning delay", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		p := &store.ProvisionerMock{
			CreateDatabaseIfNotExistsFunc: func(context.Context, string) error { return nil },
			CreateCollectionIfNotExistsFunc: func(_ context.Context, coll *models.Collection) (*models.Collection, error) {
				cancel()
				return coll, nil
			},
		}
		cfg := testSetupConfig()
		cfg.ProvisionDelay = time.Minute

		_, err := Setup(ctx, p, cfg, testLogger())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, p.CreateCollectionIfNotExistsCalls(), 1)
	})
}

func TestCleanup(t *testing.T) {
	custom := models.CollectionRef{Database: "db", Collection: "custom"}
	lww := models.CollectionRef{Database: "db", Collection: "lww"}

	docs := map[string][]*models.Record{
		"custom": {{ID: "1", PostalCode: "98052"}, {ID: "2", PostalCode: "10001"}},
		"lww":    {{ID: "3", PostalCode: "98052"}},
	}

	h := &store.HandleMock{
		ReadConflictsFunc: func(_ context.Context, coll models.CollectionRef) ([]*models.ConflictRecord, error) {
			assert.Equal(t, custom, coll)
			return []*models.ConflictRecord{{ID: "c1"}, {ID: "c2"}}, nil
		},
		DeleteConflictFunc: func(_ context.Context, _ models.CollectionRef, id string) error {
			if id == "c2" {
				// уже разрешен другим регионом
				return &store.StatusError{Status: store.StatusNotFound, Code: http.StatusNotFound}
			}
			return nil
		},
		QueryFunc: func(_ context.Context, coll models.CollectionRef, q store.Query) ([]*models.Record, error) {
			assert.True(t, q.CrossPartition)
			assert.Empty(t, q.Filters)
			return docs[coll.Collection], nil
		},
		DeleteFunc: func(context.Context, models.CollectionRef, string, string, string) error { return nil },
	}

	report, err := Cleanup(context.Background(), h, []models.CollectionRef{custom}, []models.CollectionRef{custom, lww}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Conflicts)
	assert.Equal(t, 3, report.Documents)

	deletes := h.DeleteCalls()
	require.Len(t, deletes, 3)
	assert.Equal(t, "2", deletes[1].Id)
	assert.Equal(t, "10001", deletes[1].PartitionKey)
	assert.Empty(t, deletes[1].IfMatch)
	assert.Equal(t, lww, deletes[2].Coll)
}

func TestCleanup_DeleteFailure(t *testing.T) {
	failure := &store.StatusError{Status: store.StatusOtherFailure, Code: http.StatusInternalServerError}
	h := &store.HandleMock{
		QueryFunc: func(context.Context, models.CollectionRef, store.Query) ([]*models.Record, error) {
			return []*models.Record{{ID: "1", PostalCode: "p"}, {ID: "2", PostalCode: "p"}}, nil
		},
		DeleteFunc: func(context.Context, models.CollectionRef, string, string, string) error { return failure },
	}

	report, err := Cleanup(context.Background(), h, nil, []models.CollectionRef{{Database: "db", Collection: "c"}}, testLogger())
	assert.ErrorIs(t, err, failure)
	assert.Zero(t, report.Documents)
	assert.Len(t, h.DeleteCalls(), 1)
}

func TestProbeLatency(t *testing.T) {
	coll := models.CollectionRef{Database: "db", Collection: "lww"}
	h := &store.HandleMock{
		RegionFunc: func() string { return "West US 2" },
		CreateFunc: func(_ context.Context, _ models.CollectionRef, rec *models.Record) (*models.Record, error) {
			return rec, nil
		},
		QueryFunc: func(_ context.Context, _ models.CollectionRef, q store.Query) ([]*models.Record, error) {
			assert.Equal(t, "98052", q.Filters["postalcode"])
			assert.Equal(t, "98052", q.PartitionKey)
			assert.Equal(t, 1, q.Limit)
			assert.False(t, q.CrossPartition)
			return []*models.Record{{ID: "x"}}, nil
		},
	}

	var samples []Sample
	report, err := ProbeLatency(context.Background(), h, coll, 5, func(s Sample) { samples = append(samples, s) }, testLogger())
	require.NoError(t, err)

	assert.Equal(t, "West US 2", report.Region)
	assert.Equal(t, 5, report.Reads.Count)
	assert.Equal(t, 5, report.Writes.Count)
	assert.Len(t, h.QueryCalls(), 5)
	assert.Len(t, h.CreateCalls(), 6, "probe document plus five writes")

	require.Len(t, samples, 10)
	assert.Equal(t, "read", samples[0].Op)
	assert.Equal(t, "write", samples[9].Op)
	assert.Equal(t, 4, samples[9].Index)

	// каждая вставка получает собственный id
	ids := map[string]bool{}
	for _, c := range h.CreateCalls() {
		assert.NoError(t, c.Rec.Validate())
		ids[c.Rec.ID] = true
	}
	assert.Len(t, ids, 6)
}

func TestProbeLatency_Errors(t *testing.T) {
	_, err := ProbeLatency(context.Background(), &store.HandleMock{}, models.CollectionRef{}, 0, nil, testLogger())
	assert.Error(t, err)

	readErr := errors.New("timeout")
	h := &store.HandleMock{
		RegionFunc: func() string { return "a" },
		CreateFunc: func(_ context.Context, _ models.CollectionRef, rec *models.Record) (*models.Record, error) {
			return rec, nil
		},
		QueryFunc: func(context.Context, models.CollectionRef, store.Query) ([]*models.Record, error) {
			return nil, readErr
		},
	}
	_, err = ProbeLatency(context.Background(), h, models.CollectionRef{}, 3, nil, testLogger())
	assert.ErrorIs(t, err, readErr)
}

func TestSummarize(t *testing.T) {
	ms := func(v ...int) []time.Duration {
		out := make([]time.Duration, len(v))
		for i, x := range v {
			out[i] = time.Duration(x) * time.Millisecond
		}
		return out
	}

	tests := []struct {
		name    string
		samples []time.Duration
		want    LatencyStats
	}{
		{name: "empty", samples: nil, want: LatencyStats{}},
		{
			name:    "single",
			samples: ms(7),
			want:    LatencyStats{Count: 1, Min: 7 * time.Millisecond, Max: 7 * time.Millisecond, Mean: 7 * time.Millisecond, P50: 7 * time.Millisecond, P99: 7 * time.Millisecond},
		},
		{
			name:    "unsorted",
			samples: ms(40, 10, 30, 20),
			want:    LatencyStats{Count: 4, Min: 10 * time.Millisecond, Max: 40 * time.Millisecond, Mean: 25 * time.Millisecond, P50: 20 * time.Millisecond, P99: 40 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.samples))
		})
	}
}
