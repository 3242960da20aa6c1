// Package metrics exports pipeline progress as prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yaelanya/patent-word2vec/pkg/corpus/pipeline"
)

// Collector implements pipeline.Observer. Each Collector owns its own
// registry so several can coexist in one process.
type Collector struct {
	registry  *prometheus.Registry
	batches   prometheus.Counter
	sentences prometheus.Counter
	failures  prometheus.Counter
	duration  prometheus.Histogram
}

var _ pipeline.Observer = (*Collector)(nil)

// NewCollector creates a collector with the corpus_* metrics registered
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corpus_batches_total",
			Help: "Total number of batches tokenized.",
		}),
		sentences: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corpus_sentences_total",
			Help: "Total number of sentences tokenized.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corpus_tokenize_failures_total",
			Help: "Total number of sentences whose analysis failed.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "corpus_batch_duration_seconds",
			Help:    "Time spent tokenizing one batch.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
	c.registry.MustRegister(c.batches, c.sentences, c.failures, c.duration)
	return c
}

// BatchDone records one finished batch
func (c *Collector) BatchDone(index, size, failed int, elapsed time.Duration) {
	c.batches.Inc()
	c.sentences.Add(float64(size))
	c.failures.Add(float64(failed))
	c.duration.Observe(elapsed.Seconds())
}

// Registry returns the registry holding the collector's metrics
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
