package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/ingest"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/internalerr"
)

// File is the top-level parameter file. Only the corpus section is read.
type File struct {
	Corpus Corpus `yaml:"corpus"`
}

// Corpus holds the tokenization job parameters
type Corpus struct {
	Input     string   `yaml:"input"`
	UseCol    string   `yaml:"use_col"`
	Output    string   `yaml:"output"`
	BatchSize int      `yaml:"batch_size"`
	NJobs     int      `yaml:"n_jobs"` // joblib style: -1 means every CPU
	WithPOS   bool     `yaml:"with_pos"`
	Fields    []string `yaml:"fields"`
	Mode      string   `yaml:"mode"`
	UserDict  string   `yaml:"user_dict"`
	DB        string   `yaml:"db"`
}

// Defaults returns the values used for keys missing from the file
func Defaults() Corpus {
	return Corpus{
		NJobs:  1,
		Fields: append([]string(nil), ingest.DefaultFields...),
		Mode:   "normal",
	}
}

// Load reads a parameter file from a YAML file
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes the corpus section of a parameter file on top of Defaults.
func Parse(data []byte) (*Corpus, error) {
	f := File{Corpus: Defaults()}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f.Corpus, nil
}

// Workers resolves NJobs to a concrete worker count using joblib's rules:
// positive values are taken as-is, -1 is every CPU, -2 all but one, etc.
// Zero or too negative values resolve to a non-positive count.
func (c *Corpus) Workers() int {
	if c.NJobs >= 0 {
		return c.NJobs
	}
	return runtime.NumCPU() + 1 + c.NJobs
}

// Validate checks the parameters a run cannot start without
func (c *Corpus) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Input) == "" {
		problems = append(problems, "input is required")
	}
	if strings.TrimSpace(c.Output) == "" {
		problems = append(problems, "output is required")
	}
	if c.BatchSize < 1 {
		problems = append(problems, fmt.Sprintf("batch_size must be positive, got %d", c.BatchSize))
	}
	if c.Workers() < 1 {
		problems = append(problems, fmt.Sprintf("n_jobs %d leaves no workers", c.NJobs))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Environment variables that override file values
const (
	EnvInput     = "CORPUS_INPUT"
	EnvUseCol    = "CORPUS_USE_COL"
	EnvOutput    = "CORPUS_OUTPUT"
	EnvBatchSize = "CORPUS_BATCH_SIZE"
	EnvNJobs     = "CORPUS_N_JOBS"
	EnvWithPOS   = "CORPUS_WITH_POS"
	EnvMode      = "CORPUS_MODE"
	EnvDB        = "CORPUS_DB"
)

// ApplyEnv overrides fields from environment variables looked up through
// lookup (usually os.LookupEnv).
func (c *Corpus) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		EnvInput:  &c.Input,
		EnvUseCol: &c.UseCol,
		EnvOutput: &c.Output,
		EnvMode:   &c.Mode,
		EnvDB:     &c.DB,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		EnvBatchSize: &c.BatchSize,
		EnvNJobs:     &c.NJobs,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", internalerr.ErrInvalidConfig, key, v)
		}
		*dst = n
	}

	if v, ok := lookup(EnvWithPOS); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", internalerr.ErrInvalidConfig, EnvWithPOS, v)
		}
		c.WithPOS = b
	}
	return nil
}
