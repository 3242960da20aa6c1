package tokenize

import (
	"errors"
	"fmt"
)

// Unit is one morpheme as reported by an analyzer
type Unit struct {
	Form string   // dictionary form
	POS  []string // part-of-speech hierarchy, most general first
}

// Analyzer is the only capability the pipeline needs from a morphological
// analyzer. Implementations are not assumed to be safe for concurrent use.
type Analyzer interface {
	Analyze(text string) ([]Unit, error)
}

// AnalyzerFunc adapts a plain function to the Analyzer interface.
type AnalyzerFunc func(text string) ([]Unit, error)

// Analyze calls f(text)
func (f AnalyzerFunc) Analyze(text string) ([]Unit, error) {
	return f(text)
}

// Factory constructs a fresh analyzer. It is called once per worker.
type Factory func() (Analyzer, error)

// ErrAnalysis marks failures that are scoped to a single sentence.
var ErrAnalysis = errors.New("analysis failed")

// ErrEmptyForm is reported when an analyzer returns a unit without a form.
var ErrEmptyForm = fmt.Errorf("%w: empty normalized form", ErrAnalysis)
