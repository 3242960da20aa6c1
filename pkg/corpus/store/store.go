package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/tokenize"
)

// Store persists tokenization runs and their per-sentence results
type Store interface {
	Close() error

	// Runs
	CreateRun(ctx context.Context, r Run) error
	FinishRun(ctx context.Context, id string, stats RunStats) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Sentences
	SaveSentences(ctx context.Context, runID string, recs []SentenceRecord) error
	Sentences(ctx context.Context, runID string, offset, limit int) ([]SentenceRecord, error)
}

// Run describes one invocation of the tokenization pipeline
type Run struct {
	ID         string
	Input      string
	Output     string
	BatchSize  int
	Workers    int
	WithPOS    bool
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	Stats      RunStats
}

// RunStats are the totals recorded when a run finishes. An aborted run
// is finished with zero totals and a non-empty Error.
type RunStats struct {
	Sentences int
	Failed    int
	Empty     int
	Batches   int
	Error     string // set when the run aborted
}

// Aborted reports whether the run finished with an error
func (r Run) Aborted() bool {
	return r.Stats.Error != ""
}

// SentenceRecord is one input sentence with its serialized tokens.
// Status distinguishes failed sentences from genuinely empty ones.
type SentenceRecord struct {
	Index  int
	Text   string
	Line   string
	Status tokenize.Status
}

// Records pairs sentences with their tokenized results. Both slices must
// have the same length.
func Records(sentences []string, results []tokenize.TokenizedSentence) []SentenceRecord {
	recs := make([]SentenceRecord, len(results))
	for i, r := range results {
		recs[i] = SentenceRecord{
			Index:  i,
			Text:   sentences[i],
			Line:   r.Line(),
			Status: r.Status,
		}
	}
	return recs
}

// IDSource hands out lexically sortable run IDs
type IDSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDSource creates an ID source seeded from crypto/rand
func NewIDSource() *IDSource {
	return &IDSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a ULID string for time t
func (s *IDSource) New(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}
