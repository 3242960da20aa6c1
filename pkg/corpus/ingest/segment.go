package ingest

import (
	"regexp"
	"strings"
)

// A sentence runs up to and including its terminators and any closing
// brackets that follow them. Line breaks always end a sentence. '.' is not
// a terminator: after NFKC it also appears in numbers like "1.5".
var reSentence = regexp.MustCompile(`[^。!?！？\n]+(?:[。!?！？]+[」』）)]*)?|[。!?！？]+`)

// SplitSentences splits cleaned text into trimmed, non-empty sentences.
func SplitSentences(text string) []string {
	var out []string
	for _, s := range reSentence.FindAllString(text, -1) {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
