package conflictgen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/store"
)

var testColl = models.CollectionRef{Database: "ConflictDemoDB", Collection: "CustomCollection"}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func statusErr(status store.Status, code int) error {
	return &store.StatusError{Op: "test", Region: "test", Status: status, Code: code, Message: http.StatusText(code)}
}

// fakeStore однорегионное хранилище с первым победителем. Все хендлы видят
// одно состояние, поэтому из конкурентных записей фиксируется ровно одна.
type fakeStore struct {
	docs      map[string]*models.Record
	conflicts []*models.ConflictRecord
	mu        sync.Mutex
	version   int

	// conflictOnDelete удаление добавляет запись в ленту конфликтов
	conflictOnDelete bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]*models.Record)}
}

func (s *fakeStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]*models.Record)
}

func (s *fakeStore) commit(rec *models.Record) *models.Record {
	s.version++
	c := *rec
	c.ETag = fmt.Sprintf(`"%d"`, s.version)
	s.docs[c.ID] = &c
	out := c
	return &out
}

func (s *fakeStore) handles(regions ...string) []store.Handle {
	out := make([]store.Handle, 0, len(regions))
	for _, r := range regions {
		out = append(out, s.handle(r))
	}
	return out
}

func (s *fakeStore) handle(region string) *store.HandleMock {
	return &store.HandleMock{
		RegionFunc: func() string { return region },
		CreateFunc: func(_ context.Context, _ models.CollectionRef, rec *models.Record) (*models.Record, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.docs[rec.ID]; ok {
				return nil, statusErr(store.StatusAlreadyExists, http.StatusConflict)
			}
			return s.commit(rec), nil
		},
		ReplaceFunc: func(_ context.Context, _ models.CollectionRef, rec *models.Record, ifMatch string) (*models.Record, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			cur, ok := s.docs[rec.ID]
			if !ok {
				return nil, statusErr(store.StatusNotFound, http.StatusNotFound)
			}
			if ifMatch != "" && cur.ETag != ifMatch {
				return nil, statusErr(store.StatusPreconditionFailed, http.StatusPreconditionFailed)
			}
			return s.commit(rec), nil
		},
		DeleteFunc: func(_ context.Context, _ models.CollectionRef, id, _, ifMatch string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			cur, ok := s.docs[id]
			if !ok {
				return statusErr(store.StatusNotFound, http.StatusNotFound)
			}
			if ifMatch != "" && cur.ETag != ifMatch {
				return statusErr(store.StatusPreconditionFailed, http.StatusPreconditionFailed)
			}
			delete(s.docs, id)
			if s.conflictOnDelete {
				s.conflicts = append(s.conflicts, &models.ConflictRecord{
					ID:            fmt.Sprintf("c%d", len(s.conflicts)),
					ResourceID:    id,
					SourceRegion:  region,
					OperationKind: models.OperationDelete,
				})
			}
			return nil
		},
		ReadConflictsFunc: func(context.Context, models.CollectionRef) ([]*models.ConflictRecord, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			out := make([]*models.ConflictRecord, len(s.conflicts))
			copy(out, s.conflicts)
			return out, nil
		},
		CloseFunc: func() error { return nil },
	}
}

// operatorFunc тестовый Operator
type operatorFunc func(ctx context.Context, prompt string) (bool, error)

func (f operatorFunc) Continue(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}
