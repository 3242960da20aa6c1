package batch

import (
	"fmt"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/internalerr"
)

// Batch is a contiguous slice of the sentence sequence handed to one worker.
// Sentences aliases the caller's slice and must be treated as read-only.
type Batch struct {
	Index     int
	Sentences []string
}

// Len returns the number of sentences in the batch
func (b Batch) Len() int {
	return len(b.Sentences)
}

// Count returns the number of batches Partition produces for n sentences.
func Count(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Partition splits sentences into order-preserving batches of at most size
// sentences. Only the last batch may be shorter. An empty input yields no
// batches.
func Partition(sentences []string, size int) ([]Batch, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", internalerr.ErrInvalidConfig, size)
	}

	batches := make([]Batch, 0, Count(len(sentences), size))
	for start := 0; start < len(sentences); start += size {
		end := start + size
		if end > len(sentences) {
			end = len(sentences)
		}
		batches = append(batches, Batch{
			Index:     len(batches),
			Sentences: sentences[start:end:end],
		})
	}

	return batches, nil
}

// Concat reassembles the sentence sequence from batches in slice order.
func Concat(batches []Batch) []string {
	total := 0
	for _, b := range batches {
		total += len(b.Sentences)
	}
	out := make([]string, 0, total)
	for _, b := range batches {
		out = append(out, b.Sentences...)
	}
	return out
}
