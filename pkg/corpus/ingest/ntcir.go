package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultFields are the NTCIR patent fields used for the corpus:
// abstract, claims and description.
var DefaultFields = []string{"ab", "cl", "de"}

// ExtractFields returns the text content of the given NTCIR tags,
// concatenated in field order. Tag names match case-insensitively and
// markup nested inside a field is dropped. Repeated fields are
// concatenated in document order.
//
// Fields do not nest: opening a field closes any field left open. A '<'
// that does not start a field tag or a plain <name> / </name> tag is
// taken as text, so inequalities such as 0<x<1 survive.
func ExtractFields(doc string, fields []string) string {
	if len(fields) == 0 {
		return ""
	}

	want := make(map[string]int, len(fields))
	for i, f := range fields {
		want[strings.ToLower(f)] = i
	}
	bufs := make([]strings.Builder, len(fields))
	open := -1

	z := html.NewTokenizer(strings.NewReader(escapeStrayLT(doc, want)))
	for {
		switch z.Next() {
		case html.ErrorToken:
			var out strings.Builder
			for i := range bufs {
				out.WriteString(bufs[i].String())
			}
			return out.String()

		case html.StartTagToken:
			name, _ := z.TagName()
			if i, ok := want[string(name)]; ok {
				open = i
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if i, ok := want[string(name)]; ok && i == open {
				open = -1
			}

		case html.TextToken:
			if open >= 0 {
				bufs[open].Write(z.Text())
			}
		}
	}
}

// escapeStrayLT rewrites every '<' that does not open a tag as "&lt;".
func escapeStrayLT(doc string, fields map[string]int) string {
	if !strings.Contains(doc, "<") {
		return doc
	}
	var b strings.Builder
	b.Grow(len(doc))
	for i := 0; i < len(doc); i++ {
		if doc[i] == '<' && !opensTag(doc[i+1:], fields) {
			b.WriteString("&lt;")
			continue
		}
		b.WriteByte(doc[i])
	}
	return b.String()
}

// opensTag reports whether rest, the text after a '<', is a tag. Field
// tags may carry attributes; any other tag must be a bare name.
func opensTag(rest string, fields map[string]int) bool {
	rest = strings.TrimPrefix(rest, "/")
	n := 0
	for n < len(rest) && isTagNameByte(rest[n], n == 0) {
		n++
	}
	if n == 0 {
		return false
	}
	tail := rest[n:]

	if _, ok := fields[strings.ToLower(rest[:n])]; ok {
		if tail == "" {
			return false
		}
		switch tail[0] {
		case '>', '/', ' ', '\t', '\n', '\r':
			return true
		}
		return false
	}
	return strings.HasPrefix(tail, ">") || strings.HasPrefix(tail, "/>")
}

func isTagNameByte(c byte, first bool) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	case '0' <= c && c <= '9', c == '-', c == '_':
		return !first
	}
	return false
}
