package tokenize

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

// spaceAnalyzer treats every space-separated word as a unit tagged
// "名詞,一般". Words equal to "FAIL" make the whole sentence fail.
type spaceAnalyzer struct {
	calls int
}

func (a *spaceAnalyzer) Analyze(text string) ([]Unit, error) {
	a.calls++
	var units []Unit
	for _, w := range strings.Fields(text) {
		if w == "FAIL" {
			return nil, errors.New("malformed input")
		}
		units = append(units, Unit{Form: w, POS: []string{"名詞", "一般"}})
	}
	return units, nil
}

func TestTokenPOSFormatting(t *testing.T) {
	u := Unit{Form: "食べる", POS: []string{"動詞", "一般"}}

	if got := NewToken(u, true).String(); got != "食べる###動詞,一般" {
		t.Errorf("with POS: got %q", got)
	}
	if got := NewToken(u, false).String(); got != "食べる" {
		t.Errorf("without POS: got %q", got)
	}
}

func TestTokenPOSWithoutTags(t *testing.T) {
	tok := NewToken(Unit{Form: "猫"}, true)
	if got := tok.String(); got != "猫###" {
		t.Errorf("Expected %q, got %q", "猫###", got)
	}
}

func TestAdapterTokenize(t *testing.T) {
	adapter := NewAdapter(&spaceAnalyzer{}, false, nil)

	got := adapter.Tokenize("特許 文献 解析")
	if got.Status != StatusOK {
		t.Errorf("Expected StatusOK, got %v", got.Status)
	}
	if !reflect.DeepEqual(got.Forms(), []string{"特許", "文献", "解析"}) {
		t.Errorf("Unexpected forms: %v", got.Forms())
	}
	if got.Line() != "特許\t文献\t解析" {
		t.Errorf("Unexpected line: %q", got.Line())
	}
}

func TestAdapterTokenizeWithPOS(t *testing.T) {
	adapter := NewAdapter(&spaceAnalyzer{}, true, nil)

	got := adapter.Tokenize("装置")
	if len(got.Tokens) != 1 || got.Tokens[0].String() != "装置###名詞,一般" {
		t.Errorf("Unexpected tokens: %v", got.Forms())
	}
}

func TestAdapterEmptySentence(t *testing.T) {
	adapter := NewAdapter(&spaceAnalyzer{}, false, nil)

	got := adapter.Tokenize("   ")
	if got.Status != StatusEmpty {
		t.Errorf("Expected StatusEmpty, got %v", got.Status)
	}
	if len(got.Tokens) != 0 {
		t.Errorf("Expected no tokens, got %v", got.Tokens)
	}
}

func TestAdapterFailureIsContained(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	adapter := NewAdapter(&spaceAnalyzer{}, false, logger)

	got := adapter.TokenizeAt(7, "これは FAIL です")
	if got.Status != StatusFailed {
		t.Errorf("Expected StatusFailed, got %v", got.Status)
	}
	if len(got.Tokens) != 0 {
		t.Errorf("Failed sentence should have no tokens, got %v", got.Tokens)
	}
	if got.Line() != "" {
		t.Errorf("Failed sentence should render empty, got %q", got.Line())
	}

	logged := buf.String()
	for _, want := range []string{"level=WARN", "failed to tokenize", "sentence=7", "malformed input"} {
		if !strings.Contains(logged, want) {
			t.Errorf("log output missing %q: %s", want, logged)
		}
	}
}

func TestAdapterEmptyFormIsFailure(t *testing.T) {
	analyzer := AnalyzerFunc(func(string) ([]Unit, error) {
		return []Unit{{Form: "a"}, {Form: ""}}, nil
	})
	adapter := NewAdapter(analyzer, false, nil)

	got := adapter.Tokenize("a b")
	if got.Status != StatusFailed {
		t.Errorf("Expected StatusFailed for empty form, got %v", got.Status)
	}
	if len(got.Tokens) != 0 {
		t.Errorf("Expected no tokens, got %v", got.Tokens)
	}
}

func TestAdapterDoesNotRecoverPanics(t *testing.T) {
	analyzer := AnalyzerFunc(func(string) ([]Unit, error) {
		panic("index out of range")
	})
	adapter := NewAdapter(analyzer, false, nil)

	defer func() {
		if recover() == nil {
			t.Error("panic should propagate out of the adapter")
		}
	}()
	adapter.Tokenize("x")
}

func TestPreviewTruncatesLongSentences(t *testing.T) {
	long := strings.Repeat("あ", previewRunes+10)
	got := preview(long)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Expected ellipsis, got %q", got)
	}
	if n := len([]rune(got)); n != previewRunes+1 {
		t.Errorf("Expected %d runes, got %d", previewRunes+1, n)
	}
	if preview("短い") != "短い" {
		t.Error("short text should be unchanged")
	}
}

func TestStatusRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusOK, StatusEmpty, StatusFailed} {
		got, ok := ParseStatus(s.String())
		if !ok || got != s {
			t.Errorf("ParseStatus(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseStatus("bogus"); ok {
		t.Error("bogus status should not parse")
	}
}
