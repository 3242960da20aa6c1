package ingest

// Preprocessor turns raw documents into the flat sentence sequence fed to
// the tokenizer: field extraction, cleaning, sentence splitting.
type Preprocessor struct {
	// Fields are the NTCIR tags to extract. Empty means the whole document
	// is used as-is.
	Fields []string
}

// NewPreprocessor creates a preprocessor for the given fields
func NewPreprocessor(fields []string) *Preprocessor {
	return &Preprocessor{Fields: fields}
}

// Document extracts, cleans and splits a single document.
func (p *Preprocessor) Document(doc string) []string {
	text := doc
	if len(p.Fields) > 0 {
		text = ExtractFields(doc, p.Fields)
	}
	return SplitSentences(Clean(text))
}

// Process returns the sentences of all documents in document order.
func (p *Preprocessor) Process(docs []string) []string {
	sentences := make([]string, 0, len(docs))
	for _, doc := range docs {
		sentences = append(sentences, p.Document(doc)...)
	}
	return sentences
}
