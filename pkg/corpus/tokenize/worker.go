package tokenize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/batch"
)

// Worker owns one analyzer and tokenizes whole batches with it.
// A Worker must not be used from more than one goroutine at a time.
type Worker struct {
	id      int
	adapter *Adapter
	logger  *slog.Logger
}

// NewWorker builds the worker's private analyzer through factory.
func NewWorker(id int, factory Factory, withPOS bool, logger *slog.Logger) (*Worker, error) {
	if factory == nil {
		return nil, fmt.Errorf("worker %d: nil analyzer factory", id)
	}
	analyzer, err := factory()
	if err != nil {
		return nil, fmt.Errorf("worker %d: build analyzer: %w", id, err)
	}
	if analyzer == nil {
		return nil, fmt.Errorf("worker %d: factory returned nil analyzer", id)
	}

	adapter := NewAdapter(analyzer, withPOS, logger)
	return &Worker{
		id:      id,
		adapter: adapter,
		logger:  adapter.logger.With("worker", id),
	}, nil
}

// ID returns the worker number assigned by the coordinator
func (w *Worker) ID() int {
	return w.id
}

// Process tokenizes every sentence of b in order. The result has exactly
// one entry per sentence.
func (w *Worker) Process(b batch.Batch) []TokenizedSentence {
	out, _ := w.ProcessContext(context.Background(), b)
	return out
}

// ProcessContext is Process with cancellation checked between sentences.
// On cancellation it returns ctx.Err() and no results.
func (w *Worker) ProcessContext(ctx context.Context, b batch.Batch) ([]TokenizedSentence, error) {
	adapter := &Adapter{
		analyzer: w.adapter.analyzer,
		withPOS:  w.adapter.withPOS,
		logger:   w.logger.With("batch", b.Index),
	}

	out := make([]TokenizedSentence, len(b.Sentences))
	for i, s := range b.Sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = adapter.TokenizeAt(i, s)
	}
	return out, nil
}
