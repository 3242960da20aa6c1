package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/internalerr"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/store"
)

// Store is an in-memory store.Store, useful for tests and dry runs
type Store struct {
	mu        sync.RWMutex
	runs      map[string]store.Run
	sentences map[string]map[int]store.SentenceRecord
	closed    bool
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		runs:      make(map[string]store.Run),
		sentences: make(map[string]map[int]store.SentenceRecord),
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) CreateRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return internalerr.ErrStoreUnavailable
	}
	if r.ID == "" {
		return fmt.Errorf("%w: run id is required", internalerr.ErrInvalidInput)
	}
	if _, ok := s.runs[r.ID]; ok {
		return fmt.Errorf("%w: run %s already exists", internalerr.ErrInvalidInput, r.ID)
	}
	s.runs[r.ID] = r
	s.sentences[r.ID] = make(map[int]store.SentenceRecord)
	return nil
}

func (s *Store) FinishRun(ctx context.Context, id string, stats store.RunStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return internalerr.ErrStoreUnavailable
	}
	r, ok := s.runs[id]
	if !ok {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	r.Stats = stats
	r.FinishedAt = time.Now().UTC()
	s.runs[id] = r
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.Run{}, internalerr.ErrStoreUnavailable
	}
	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return r, nil
}

// ListRuns returns runs newest first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, internalerr.ErrStoreUnavailable
	}

	runs := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	// ULIDs sort by creation time.
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *Store) SaveSentences(ctx context.Context, runID string, recs []store.SentenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return internalerr.ErrStoreUnavailable
	}
	m, ok := s.sentences[runID]
	if !ok {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	for _, rec := range recs {
		m[rec.Index] = rec
	}
	return nil
}

// Sentences returns records ordered by index. limit <= 0 means no limit.
func (s *Store) Sentences(ctx context.Context, runID string, offset, limit int) ([]store.SentenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, internalerr.ErrStoreUnavailable
	}
	m, ok := s.sentences[runID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}

	recs := make([]store.SentenceRecord, 0, len(m))
	for _, rec := range m {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Index < recs[j].Index })

	if offset >= len(recs) {
		return []store.SentenceRecord{}, nil
	}
	if offset > 0 {
		recs = recs[offset:]
	}
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}
