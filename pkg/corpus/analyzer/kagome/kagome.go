// Package kagome adapts the kagome morphological analyzer with the IPA
// dictionary to the tokenize.Analyzer capability.
package kagome

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ikawaha/kagome-dict/dict"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/internalerr"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/tokenize"
)

// Options selects the segmentation mode and an optional user dictionary
type Options struct {
	Mode         string // normal (default), search or extended
	UserDictPath string
}

// Analyzer is a single kagome tokenizer. It is not shared between workers.
type Analyzer struct {
	t    *tokenizer.Tokenizer
	mode tokenizer.TokenizeMode
}

// ParseMode maps a config value to a kagome segmentation mode.
func ParseMode(s string) (tokenizer.TokenizeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "a":
		return tokenizer.Normal, nil
	case "search", "b":
		return tokenizer.Search, nil
	case "extended", "c":
		return tokenizer.Extended, nil
	}
	return tokenizer.Normal, fmt.Errorf("%w: unknown tokenizer mode %q", internalerr.ErrInvalidConfig, s)
}

// New builds an analyzer. Loading the dictionary is the expensive part.
func New(opts Options) (*Analyzer, error) {
	mode, err := ParseMode(opts.Mode)
	if err != nil {
		return nil, err
	}

	tokOpts := []tokenizer.Option{tokenizer.OmitBosEos()}
	if opts.UserDictPath != "" {
		udict, err := dict.NewUserDict(opts.UserDictPath)
		if err != nil {
			return nil, fmt.Errorf("load user dictionary %s: %w", opts.UserDictPath, err)
		}
		tokOpts = append(tokOpts, tokenizer.UserDict(udict))
	}

	t, err := tokenizer.New(ipa.Dict(), tokOpts...)
	if err != nil {
		return nil, fmt.Errorf("create tokenizer: %w", err)
	}
	return &Analyzer{t: t, mode: mode}, nil
}

// Factory returns a tokenize.Factory building a fresh Analyzer per call.
func Factory(opts Options) tokenize.Factory {
	return func() (tokenize.Analyzer, error) {
		return New(opts)
	}
}

// Analyze returns the dictionary form and POS hierarchy of every morpheme.
// Whitespace morphemes are dropped. Unknown words keep their surface form.
func (a *Analyzer) Analyze(text string) ([]tokenize.Unit, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: invalid UTF-8", tokenize.ErrAnalysis)
	}

	toks := a.t.Analyze(text, a.mode)
	units := make([]tokenize.Unit, 0, len(toks))
	for _, tok := range toks {
		if tok.Class == tokenizer.DUMMY || isBlank(tok.Surface) {
			continue
		}
		form, ok := tok.BaseForm()
		if !ok || form == "" || form == "*" {
			form = tok.Surface
		}
		units = append(units, tokenize.Unit{Form: form, POS: tok.POS()})
	}
	return units, nil
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
