package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/batch"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/internalerr"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/tokenize"
)

// Options configures a pipeline run
type Options struct {
	BatchSize int
	Workers   int
	WithPOS   bool

	// Factory builds one analyzer per worker
	Factory tokenize.Factory

	Logger   *slog.Logger
	Observer Observer
}

// Observer receives per-batch progress. Calls may come from several
// goroutines at once.
type Observer interface {
	BatchDone(index, size, failed int, elapsed time.Duration)
}

// Result is the flattened, ordered output of a run.
// Sentences[i] corresponds to the i-th input sentence.
type Result struct {
	Sentences []tokenize.TokenizedSentence
	Batches   int
	Workers   int
	Failed    int
	Empty     int
}

// BatchError is a fatal worker failure. Batch is -1 when the worker
// failed before picking up a batch.
type BatchError struct {
	Batch  int
	Worker int
	Err    error
}

func (e *BatchError) Error() string {
	if e.Batch < 0 {
		return fmt.Sprintf("worker %d: %v", e.Worker, e.Err)
	}
	return fmt.Sprintf("batch %d (worker %d): %v", e.Batch, e.Worker, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

var (
	// ErrWorkerPanic wraps a panic raised while tokenizing a batch.
	ErrWorkerPanic = errors.New("worker panic")
	// ErrIncompleteBatch reports a batch whose results do not line up with its sentences.
	ErrIncompleteBatch = errors.New("incomplete batch")
)

// Validate checks the options without building anything.
func (o Options) Validate() error {
	if o.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be positive, got %d", internalerr.ErrInvalidConfig, o.BatchSize)
	}
	if o.Workers < 1 {
		return fmt.Errorf("%w: worker count must be positive, got %d", internalerr.ErrInvalidConfig, o.Workers)
	}
	if o.Factory == nil {
		return fmt.Errorf("%w: analyzer factory is required", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Run partitions sentences into batches, tokenizes them on a bounded pool
// of workers and returns the results in input order. Any worker-level
// failure aborts the whole run; no partial result is returned.
func Run(ctx context.Context, sentences []string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	batches, err := batch.Partition(sentences, opts.BatchSize)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return &Result{Sentences: []tokenize.TokenizedSentence{}}, nil
	}

	workers := opts.Workers
	if workers > len(batches) {
		workers = len(batches)
	}
	logger.Info("tokenizing",
		"sentences", len(sentences),
		"batches", len(batches),
		"workers", workers,
	)

	// Each batch owns one slot; workers write disjoint slots only.
	slots := make([][]tokenize.TokenizedSentence, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan batch.Batch)

	g.Go(func() error {
		defer close(jobs)
		for _, b := range batches {
			select {
			case jobs <- b:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for id := 0; id < workers; id++ {
		id := id
		g.Go(func() error {
			return runWorker(gctx, id, jobs, slots, opts, logger, observer)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return gather(batches, slots, workers)
}

func runWorker(
	ctx context.Context,
	id int,
	jobs <-chan batch.Batch,
	slots [][]tokenize.TokenizedSentence,
	opts Options,
	logger *slog.Logger,
	observer Observer,
) (err error) {
	current := -1
	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker panic",
				"worker", id,
				"batch", current,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = &BatchError{Batch: current, Worker: id, Err: fmt.Errorf("%w: %v", ErrWorkerPanic, r)}
		}
	}()

	w, err := tokenize.NewWorker(id, opts.Factory, opts.WithPOS, logger)
	if err != nil {
		return &BatchError{Batch: -1, Worker: id, Err: err}
	}

	for b := range jobs {
		current = b.Index
		start := time.Now()

		out, err := w.ProcessContext(ctx, b)
		if err != nil {
			return &BatchError{Batch: b.Index, Worker: id, Err: err}
		}
		slots[b.Index] = out

		failed := 0
		for _, s := range out {
			if s.Status == tokenize.StatusFailed {
				failed++
			}
		}
		elapsed := time.Since(start)
		observer.BatchDone(b.Index, b.Len(), failed, elapsed)
		logger.Debug("batch done",
			"batch", b.Index,
			"worker", id,
			"sentences", b.Len(),
			"failed", failed,
			"elapsed", elapsed,
		)
	}
	return nil
}

// gather flattens the slots in batch order. A missing or short slot would
// shift every later sentence, so it is treated as fatal.
func gather(batches []batch.Batch, slots [][]tokenize.TokenizedSentence, workers int) (*Result, error) {
	total := 0
	for i, b := range batches {
		if len(slots[i]) != b.Len() {
			return nil, fmt.Errorf("%w: batch %d returned %d results for %d sentences",
				ErrIncompleteBatch, i, len(slots[i]), b.Len())
		}
		total += b.Len()
	}

	res := &Result{
		Sentences: make([]tokenize.TokenizedSentence, 0, total),
		Batches:   len(batches),
		Workers:   workers,
	}
	for _, slot := range slots {
		for _, s := range slot {
			switch s.Status {
			case tokenize.StatusFailed:
				res.Failed++
			case tokenize.StatusEmpty:
				res.Empty++
			}
			res.Sentences = append(res.Sentences, s)
		}
	}
	return res, nil
}

type nopObserver struct{}

func (nopObserver) BatchDone(int, int, int, time.Duration) {}
