package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/internalerr"
)

// maxLineBytes bounds a single line of a txt or jsonl input.
const maxLineBytes = 64 << 20

// Loader reads raw documents from a file. The format is picked from the
// file extension: .txt (one document per line), .csv and .jsonl (the
// UseCol column or field of every record).
type Loader struct {
	UseCol string
	Logger *slog.Logger
}

// Load returns the documents in file order
func (l Loader) Load(path string) ([]string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "txt":
	case "csv", "jsonl":
		if l.UseCol == "" {
			return nil, fmt.Errorf("%w: use_col is required for .%s input", internalerr.ErrInvalidConfig, ext)
		}
	case "pkl", "pickle":
		return nil, fmt.Errorf("%w: %s: pandas pickles cannot be read, export the frame to csv or jsonl", internalerr.ErrUnsupportedFormat, path)
	default:
		return nil, fmt.Errorf("%w: %s", internalerr.ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	defer f.Close()

	var docs []string
	switch ext {
	case "txt":
		docs, err = readLines(f)
	case "csv":
		docs, err = readCSVColumn(f, l.UseCol)
	case "jsonl":
		docs, err = l.readJSONLField(f, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return docs, nil
}

func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}

func readCSVColumn(r io.Reader, col string) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", internalerr.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, name := range header {
		if strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) == col {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: column %q not in header", internalerr.ErrInvalidInput, col)
	}

	var docs []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		// Short rows behave like missing values.
		if idx < len(rec) {
			docs = append(docs, rec[idx])
		} else {
			docs = append(docs, "")
		}
	}
	return docs, nil
}

func (l Loader) readJSONLField(r io.Reader, path string) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var docs []string
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var rec map[string]any
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			l.warn("skipping malformed JSON", "path", path, "line", line, "err", err)
			continue
		}
		v, ok := rec[l.UseCol].(string)
		if !ok {
			l.warn("skipping record without string field", "path", path, "line", line, "field", l.UseCol)
			continue
		}
		docs = append(docs, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 0 && line > 0 {
		return nil, fmt.Errorf("%w: no valid records in %s", internalerr.ErrInvalidInput, path)
	}
	return docs, nil
}

func (l Loader) warn(msg string, args ...any) {
	if l.Logger != nil {
		l.Logger.Warn(msg, args...)
	}
}
