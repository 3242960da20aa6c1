package serialize

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/tokenize"
)

func sentence(forms ...string) tokenize.TokenizedSentence {
	s := tokenize.TokenizedSentence{Tokens: []tokenize.Token{}}
	for _, f := range forms {
		s.Tokens = append(s.Tokens, tokenize.Token{Form: f})
	}
	if len(forms) == 0 {
		s.Status = tokenize.StatusEmpty
	}
	return s
}

func TestStringJoinsTabsAndNewlines(t *testing.T) {
	stream := []tokenize.TokenizedSentence{
		sentence("本発明", "は", "装置"),
		sentence(),
		sentence("方法"),
	}

	got := String(stream)
	want := "本発明\tは\t装置\n\n方法"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestStringEmptyStream(t *testing.T) {
	if got := String(nil); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestStringOnlyEmptySentences(t *testing.T) {
	got := String([]tokenize.TokenizedSentence{sentence(), sentence(), sentence()})
	if got != "\n\n" {
		t.Errorf("Expected two newlines, got %q", got)
	}
}

func TestStringWithPOS(t *testing.T) {
	stream := []tokenize.TokenizedSentence{{
		Tokens: []tokenize.Token{
			tokenize.NewToken(tokenize.Unit{Form: "食べる", POS: []string{"動詞", "一般"}}, true),
			tokenize.NewToken(tokenize.Unit{Form: "た", POS: []string{"助動詞"}}, true),
		},
	}}
	if got := String(stream); got != "食べる###動詞,一般\tた###助動詞" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	stream := []tokenize.TokenizedSentence{
		sentence(),
		sentence("a", "b"),
		sentence(),
		sentence("c"),
		sentence(),
	}

	parsed := Parse(String(stream))
	if len(parsed) != len(stream) {
		t.Fatalf("Expected %d sentences, got %d", len(stream), len(parsed))
	}
	for i, s := range stream {
		if !reflect.DeepEqual(parsed[i], s.Forms()) {
			t.Errorf("sentence %d: expected %v, got %v", i, s.Forms(), parsed[i])
		}
	}
}

func TestParseEmpty(t *testing.T) {
	if got := Parse(""); len(got) != 0 {
		t.Errorf("Expected no sentences, got %v", got)
	}
}

func TestSingleEmptySentenceIsIndistinguishableFromEmptyStream(t *testing.T) {
	one := []tokenize.TokenizedSentence{sentence()}
	if String(one) != String(nil) {
		t.Fatalf("Expected both to serialize to %q, got %q", String(nil), String(one))
	}
	if got := Parse(String(one)); len(got) != 0 {
		t.Errorf("Expected no sentences back, got %v", got)
	}

	// Two empty sentences are still recoverable
	two := []tokenize.TokenizedSentence{sentence(), sentence()}
	if got := Parse(String(two)); len(got) != 2 {
		t.Errorf("Expected 2 sentences back, got %d", len(got))
	}
}

func TestWriteMatchesString(t *testing.T) {
	stream := []tokenize.TokenizedSentence{sentence("x", "y"), sentence(), sentence("z")}

	var buf bytes.Buffer
	if err := Write(&buf, stream); err != nil {
		t.Fatal(err)
	}
	if buf.String() != String(stream) {
		t.Errorf("Write and String disagree: %q vs %q", buf.String(), String(stream))
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWritePropagatesErrors(t *testing.T) {
	if err := Write(failingWriter{}, []tokenize.TokenizedSentence{sentence("a")}); err == nil {
		t.Error("Expected write error")
	}
}
