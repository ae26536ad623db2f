// Package metrics collects run statistics and exports them for the
// node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "feedsync"

// Recorder holds the metrics of one run in a private registry.
type Recorder struct {
	registry         *prometheus.Registry
	FeedBytes        prometheus.Gauge
	Products         prometheus.Gauge
	InvalidURLs      prometheus.Counter
	CategoryProducts *prometheus.GaugeVec
	ArtifactsWritten prometheus.Counter
	ArtifactBytes    prometheus.Counter
	RunDuration      prometheus.Gauge
	LastSuccess      prometheus.Gauge
	Failures         *prometheus.CounterVec
}

// New creates a recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		FeedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_bytes",
			Help:      "Size of the downloaded feed in bytes",
		}),
		Products: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "products",
			Help:      "Number of products in the catalog",
		}),
		InvalidURLs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_urls_total",
			Help:      "Product links kept unchanged because they were not valid URLs",
		}),
		CategoryProducts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "category_products",
			Help:      "Number of products per price category",
		}, []string{"category"}),
		ArtifactsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_written_total",
			Help:      "Artifacts written to the output sink",
		}),
		ArtifactBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_bytes_total",
			Help:      "Bytes written to the output sink",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed runs by pipeline stage",
		}, []string{"stage"}),
	}

	r.registry.MustRegister(
		r.FeedBytes,
		r.Products,
		r.InvalidURLs,
		r.CategoryProducts,
		r.ArtifactsWritten,
		r.ArtifactBytes,
		r.RunDuration,
		r.LastSuccess,
		r.Failures,
	)

	return r
}

// Registry exposes the underlying registry as a gatherer.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records the duration of a run and, on success, its end time.
func (r *Recorder) ObserveRun(start, end time.Time, succeeded bool) {
	r.RunDuration.Set(end.Sub(start).Seconds())

	if succeeded {
		r.LastSuccess.Set(float64(end.Unix()))
	}
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return nil
}
