package serialize

import (
	"bufio"
	"io"
	"strings"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/tokenize"
)

// String renders the stream as one line per sentence with tab-separated
// tokens. Lines are joined with '\n' and no trailing newline is added, so an
// empty stream renders as "".
func String(stream []tokenize.TokenizedSentence) string {
	var b strings.Builder
	// Write to a strings.Builder cannot fail.
	_ = Write(&b, stream)
	return b.String()
}

// Write streams the same bytes String would produce to w.
func Write(w io.Writer, stream []tokenize.TokenizedSentence) error {
	bw := bufio.NewWriter(w)
	for i, s := range stream {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		for j, t := range s.Tokens {
			if j > 0 {
				if err := bw.WriteByte('\t'); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(t.String()); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Parse splits serialized text back into per-sentence token forms.
// Parse("") yields no sentences; an empty line yields an empty sentence.
// A stream holding a single empty sentence also serializes to "", so it
// parses back as no sentences: the format cannot tell the two apart.
func Parse(text string) [][]string {
	if text == "" {
		return [][]string{}
	}
	rows := strings.Split(text, "\n")
	out := make([][]string, len(rows))
	for i, row := range rows {
		if row == "" {
			out[i] = []string{}
			continue
		}
		out[i] = strings.Split(row, "\t")
	}
	return out
}
