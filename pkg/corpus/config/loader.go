package config

import (
	"fmt"
	"log/slog"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/analyzer/kagome"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/ingest"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/pipeline"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/tokenize"
)

// Components holds everything a run needs, built from a Corpus
type Components struct {
	Loader       ingest.Loader
	Preprocessor *ingest.Preprocessor
	Factory      tokenize.Factory
}

// Build validates c and constructs the run components. No analyzer is
// created here; the factory is invoked by the pipeline once per worker.
func (c *Corpus) Build(logger *slog.Logger) (*Components, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := kagome.ParseMode(c.Mode); err != nil {
		return nil, fmt.Errorf("mode: %w", err)
	}

	return &Components{
		Loader:       ingest.Loader{UseCol: c.UseCol, Logger: logger},
		Preprocessor: ingest.NewPreprocessor(c.Fields),
		Factory:      kagome.Factory(kagome.Options{Mode: c.Mode, UserDictPath: c.UserDict}),
	}, nil
}

// PipelineOptions returns the coordinator settings for this job.
func (c *Corpus) PipelineOptions(comp *Components, logger *slog.Logger, obs pipeline.Observer) pipeline.Options {
	return pipeline.Options{
		BatchSize: c.BatchSize,
		Workers:   c.Workers(),
		WithPOS:   c.WithPOS,
		Factory:   comp.Factory,
		Logger:    logger,
		Observer:  obs,
	}
}
