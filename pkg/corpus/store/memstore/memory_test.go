package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/internalerr"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/store"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/tokenize"
)

func TestMemStoreRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	ids := store.NewIDSource()
	run := store.Run{
		ID:        ids.New(time.Now()),
		Input:     "patents.csv",
		BatchSize: 100,
		Workers:   4,
		StartedAt: time.Now().UTC(),
	}
	if err := s.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := s.CreateRun(ctx, run); err == nil {
		t.Error("duplicate run should fail")
	}

	recs := []store.SentenceRecord{
		{Index: 2, Text: "c", Line: "", Status: tokenize.StatusFailed},
		{Index: 0, Text: "a", Line: "a", Status: tokenize.StatusOK},
		{Index: 1, Text: "", Line: "", Status: tokenize.StatusEmpty},
	}
	if err := s.SaveSentences(ctx, run.ID, recs); err != nil {
		t.Fatalf("SaveSentences: %v", err)
	}

	got, err := s.Sentences(ctx, run.ID, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, rec := range got {
		if rec.Index != i {
			t.Errorf("Expected records ordered by index, got %d at %d", rec.Index, i)
		}
	}

	page, err := s.Sentences(ctx, run.ID, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].Status != tokenize.StatusEmpty {
		t.Errorf("Unexpected page %+v", page)
	}

	if err := s.FinishRun(ctx, run.ID, store.RunStats{Sentences: 3, Failed: 1, Empty: 1, Batches: 1}); err != nil {
		t.Fatal(err)
	}
	loaded, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.FinishedAt.IsZero() || loaded.Stats.Failed != 1 {
		t.Errorf("Run not finished correctly: %+v", loaded)
	}
}

func TestMemStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetRun(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := s.SaveSentences(ctx, "missing", nil); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := s.FinishRun(ctx, "missing", store.RunStats{}); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemStoreListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	ids := store.NewIDSource()
	base := time.Now()

	var created []string
	for i := 0; i < 3; i++ {
		id := ids.New(base.Add(time.Duration(i) * time.Second))
		created = append(created, id)
		if err := s.CreateRun(ctx, store.Run{ID: id}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != created[2] || runs[1].ID != created[1] {
		t.Errorf("Unexpected order: %+v", runs)
	}
}

func TestMemStoreClosed(t *testing.T) {
	s := New()
	s.Close()
	if err := s.CreateRun(context.Background(), store.Run{ID: "x"}); !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
}
