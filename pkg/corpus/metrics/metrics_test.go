package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/pipeline"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/tokenize"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()
	c.BatchDone(0, 10, 1, 20*time.Millisecond)
	c.BatchDone(1, 5, 0, 40*time.Millisecond)

	if got := testutil.ToFloat64(c.batches); got != 2 {
		t.Errorf("Expected 2 batches, got %v", got)
	}
	if got := testutil.ToFloat64(c.sentences); got != 15 {
		t.Errorf("Expected 15 sentences, got %v", got)
	}
	if got := testutil.ToFloat64(c.failures); got != 1 {
		t.Errorf("Expected 1 failure, got %v", got)
	}
	if n := testutil.CollectAndCount(c.duration); n != 1 {
		t.Errorf("Expected one histogram series, got %d", n)
	}
}

func TestCollectorObservesPipeline(t *testing.T) {
	c := NewCollector()
	factory := func() (tokenize.Analyzer, error) {
		return tokenize.AnalyzerFunc(func(text string) ([]tokenize.Unit, error) {
			var units []tokenize.Unit
			for _, f := range strings.Fields(text) {
				units = append(units, tokenize.Unit{Form: f})
			}
			return units, nil
		}), nil
	}

	sentences := []string{"a b", "c", "d e f", "g", "h"}
	_, err := pipeline.Run(context.Background(), sentences, pipeline.Options{
		BatchSize: 2,
		Workers:   2,
		Factory:   factory,
		Observer:  c,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := testutil.ToFloat64(c.batches); got != 3 {
		t.Errorf("Expected 3 batches, got %v", got)
	}
	if got := testutil.ToFloat64(c.sentences); got != 5 {
		t.Errorf("Expected 5 sentences, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.BatchDone(0, 3, 0, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{
		"corpus_batches_total 1",
		"corpus_sentences_total 3",
		"corpus_tokenize_failures_total 0",
		"corpus_batch_duration_seconds_count 1",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("Expected %q in metrics output", name)
		}
	}
}
