package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yaelanya/patent-word2vec/internal/logging"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/batch"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/config"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/metrics"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/pipeline"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/serialize"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/store"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/store/sqlite"
	"github.com/yaelanya/patent-word2vec/pkg/corpus/tokenize"
)

func main() {
	var (
		envPath     = flag.String("env", ".env", "Environment file to load before reading CORPUS_* overrides")
		dbPath      = flag.String("db", "", "SQLite database recording runs (overrides corpus.db)")
		logFile     = flag.String("log-file", "", "Also write logs to this rotated file")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		metricsAddr = flag.String("metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9090)")
		withPOS     = flag.Bool("with-pos", false, "Append part-of-speech tags to every token")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <param.yaml>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger, closer := logging.Setup(logging.Options{File: *logFile, Level: logging.ParseLevel(*logLevel)})
	defer closer.Close()

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("could not load env file", "path", *envPath, "err", err)
	}

	cfg, err := config.Load(flag.Arg(0))
	if err != nil {
		log.Fatal("Failed to load parameters: ", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		log.Fatal("Failed to apply environment: ", err)
	}
	if *dbPath != "" {
		cfg.DB = *dbPath
	}
	if *withPOS {
		cfg.WithPOS = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()
	if *metricsAddr != "" {
		srv := serveMetrics(*metricsAddr, collector, logger)
		defer shutdown(srv)
	}

	if err := run(ctx, cfg, collector, logger); err != nil {
		closer.Close()
		log.Fatal("Tokenization failed: ", err)
	}
}

// run executes one tokenization job: load, preprocess, tokenize, write,
// and record the run when a database is configured.
func run(ctx context.Context, cfg *config.Corpus, obs pipeline.Observer, logger *slog.Logger) (err error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	comp, err := cfg.Build(logger)
	if err != nil {
		return err
	}

	docs, err := comp.Loader.Load(cfg.Input)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Input, err)
	}
	log.Printf("Number of documents: %d", len(docs))

	sentences := comp.Preprocessor.Process(docs)
	log.Printf("Number of sentences: %d", len(sentences))
	log.Printf("Number of batches: %d", batch.Count(len(sentences), cfg.BatchSize))

	var (
		st  store.Store
		rec *runRecorder
	)
	if cfg.DB != "" {
		st, err = sqlite.OpenSQLite(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("open %s: %w", cfg.DB, err)
		}
		defer st.Close()

		rec, err = startRun(ctx, st, store.NewIDSource(), cfg)
		if err != nil {
			return err
		}
		logger.Info("run started", "run", rec.id)

		defer func() {
			if err == nil {
				return
			}
			// ctx may be cancelled by now
			if abortErr := rec.abort(context.WithoutCancel(ctx), err); abortErr != nil {
				logger.Error("could not record aborted run", "run", rec.id, "err", abortErr)
			}
		}()
	}

	start := time.Now()
	res, err := pipeline.Run(ctx, sentences, cfg.PipelineOptions(comp, logger, obs))
	if err != nil {
		return err
	}
	log.Printf("Tokenized %d sentences in %s (%d failed, %d empty, %d workers)",
		len(res.Sentences), time.Since(start).Round(time.Millisecond), res.Failed, res.Empty, res.Workers)

	if err := writeAtomic(cfg.Output, res.Sentences); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}
	log.Printf("Wrote %s", cfg.Output)

	if rec != nil {
		if err := rec.finish(ctx, sentences, res); err != nil {
			return err
		}
		logger.Info("run recorded", "run", rec.id, "db", cfg.DB)
	}
	return nil
}

type runRecorder struct {
	st store.Store
	id string
}

func startRun(ctx context.Context, st store.Store, ids *store.IDSource, cfg *config.Corpus) (*runRecorder, error) {
	now := time.Now().UTC()
	r := store.Run{
		ID:        ids.New(now),
		Input:     cfg.Input,
		Output:    cfg.Output,
		BatchSize: cfg.BatchSize,
		Workers:   cfg.Workers(),
		WithPOS:   cfg.WithPOS,
		StartedAt: now,
	}
	if err := st.CreateRun(ctx, r); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return &runRecorder{st: st, id: r.ID}, nil
}

// abort finishes the run with zero totals and the cause of the failure
func (r *runRecorder) abort(ctx context.Context, cause error) error {
	if err := r.st.FinishRun(ctx, r.id, store.RunStats{Error: cause.Error()}); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

func (r *runRecorder) finish(ctx context.Context, sentences []string, res *pipeline.Result) error {
	if err := r.st.SaveSentences(ctx, r.id, store.Records(sentences, res.Sentences)); err != nil {
		return fmt.Errorf("save sentences: %w", err)
	}
	stats := store.RunStats{
		Sentences: len(res.Sentences),
		Failed:    res.Failed,
		Empty:     res.Empty,
		Batches:   res.Batches,
	}
	if err := r.st.FinishRun(ctx, r.id, stats); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// writeAtomic writes the serialized stream next to path and renames it
// into place, so a failed run never leaves a truncated corpus behind.
func writeAtomic(path string, stream []tokenize.TokenizedSentence) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := serialize.Write(tmp, stream); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func serveMetrics(addr string, c *metrics.Collector, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "err", err)
		}
	}()
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}
