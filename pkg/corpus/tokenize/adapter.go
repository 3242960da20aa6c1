package tokenize

import (
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

// previewRunes bounds how much of a failing sentence ends up in the log.
const previewRunes = 40

// Adapter turns one sentence into one TokenizedSentence using a single
// analyzer instance. Analyzer errors never escape: the sentence is emptied
// and a warning is logged. Panics are not recovered here.
type Adapter struct {
	analyzer Analyzer
	withPOS  bool
	logger   *slog.Logger
}

// NewAdapter wraps analyzer. A nil logger discards diagnostics.
func NewAdapter(analyzer Analyzer, withPOS bool, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{
		analyzer: analyzer,
		withPOS:  withPOS,
		logger:   logger,
	}
}

// WithPOS reports whether tokens carry part-of-speech descriptors
func (a *Adapter) WithPOS() bool {
	return a.withPOS
}

// Tokenize analyzes a single sentence.
func (a *Adapter) Tokenize(sentence string) TokenizedSentence {
	return a.tokenize(sentence, a.logger)
}

// TokenizeAt is Tokenize with the sentence position attached to diagnostics.
func (a *Adapter) TokenizeAt(index int, sentence string) TokenizedSentence {
	return a.tokenize(sentence, a.logger.With("sentence", index))
}

func (a *Adapter) tokenize(sentence string, logger *slog.Logger) TokenizedSentence {
	tokens, err := a.analyze(sentence)
	if err != nil {
		logger.Warn("failed to tokenize",
			"text", preview(sentence),
			"err", err,
		)
		return TokenizedSentence{Tokens: []Token{}, Status: StatusFailed}
	}

	if len(tokens) == 0 {
		return TokenizedSentence{Tokens: []Token{}, Status: StatusEmpty}
	}
	return TokenizedSentence{Tokens: tokens, Status: StatusOK}
}

func (a *Adapter) analyze(sentence string) ([]Token, error) {
	units, err := a.analyzer.Analyze(sentence)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, 0, len(units))
	for i, u := range units {
		if u.Form == "" {
			return nil, fmt.Errorf("unit %d: %w", i, ErrEmptyForm)
		}
		tokens = append(tokens, NewToken(u, a.withPOS))
	}
	return tokens, nil
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == previewRunes {
			return s[:i] + "…"
		}
		n++
	}
	return s
}
