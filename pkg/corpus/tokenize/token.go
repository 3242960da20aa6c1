package tokenize

import "strings"

// POSSeparator joins a normalized form and its part-of-speech descriptor.
const POSSeparator = "###"

// Token is one analyzed unit of a sentence
type Token struct {
	Form   string // dictionary-normalized surface form, never empty
	POS    string // comma-joined part-of-speech tags, set only when Tagged
	Tagged bool
}

// NewToken builds a token from an analyzer unit. POS tags are kept only
// when withPOS is set.
func NewToken(u Unit, withPOS bool) Token {
	tok := Token{Form: u.Form}
	if withPOS {
		tok.POS = strings.Join(u.POS, ",")
		tok.Tagged = true
	}
	return tok
}

// String renders the serialized form: "form" or "form###pos1,pos2".
func (t Token) String() string {
	if !t.Tagged {
		return t.Form
	}
	return t.Form + POSSeparator + t.POS
}

// Status describes how a sentence's tokens were obtained.
type Status int

const (
	// StatusOK means the analyzer produced at least one token
	StatusOK Status = iota
	// StatusEmpty means the analyzer succeeded but produced nothing
	StatusEmpty
	// StatusFailed means analysis failed and the sentence was emptied
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "ok":
		return StatusOK, true
	case "empty":
		return StatusEmpty, true
	case "failed":
		return StatusFailed, true
	}
	return 0, false
}

// TokenizedSentence holds the tokens produced from exactly one sentence.
// Empty and failed sentences both carry zero tokens; only Status tells them
// apart, and the text output does not.
type TokenizedSentence struct {
	Tokens []Token
	Status Status
}

// Forms returns the serialized form of every token in order.
func (s TokenizedSentence) Forms() []string {
	out := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		out[i] = t.String()
	}
	return out
}

// Line renders the sentence as tab-separated serialized tokens.
func (s TokenizedSentence) Line() string {
	switch len(s.Tokens) {
	case 0:
		return ""
	case 1:
		return s.Tokens[0].String()
	}
	var b strings.Builder
	for i, t := range s.Tokens {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(t.String())
	}
	return b.String()
}
