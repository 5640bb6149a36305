package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rios0rios0/upd/internal/domain/repositories"
)

const namespace = "upd"

// PrometheusMetricsRepository counts registry lookups and processed files and
// exports them in the node_exporter textfile format.
type PrometheusMetricsRepository struct {
	registry *prometheus.Registry
	lookups  *prometheus.CounterVec
	files    *prometheus.CounterVec
	changes  *prometheus.CounterVec
}

var _ repositories.MetricsRepository = (*PrometheusMetricsRepository)(nil)

// NewPrometheusMetricsRepository creates a repository backed by its own registry.
func NewPrometheusMetricsRepository() *PrometheusMetricsRepository {
	//nolint:exhaustruct // only name and help matter for these counters
	it := &PrometheusMetricsRepository{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_lookups_total",
			Help:      "Registry lookups by registry, query kind and outcome.",
		}, []string{"registry", "kind", "result"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Manifests processed by file type and outcome.",
		}, []string{"file_type", "result"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "versions_changed_total",
			Help:      "Version tokens rewritten or proposed by file type.",
		}, []string{"file_type"}),
	}
	it.registry.MustRegister(it.lookups, it.files, it.changes)
	return it
}

// Registry exposes the underlying gatherer.
func (it *PrometheusMetricsRepository) Registry() *prometheus.Registry { return it.registry }

func (it *PrometheusMetricsRepository) ObserveLookup(registry, kind string, cached bool, err error) {
	result := "fetched"
	switch {
	case err != nil:
		result = "error"
	case cached:
		result = "cached"
	}
	it.lookups.WithLabelValues(registry, kind, result).Inc()
}

func (it *PrometheusMetricsRepository) ObserveFile(fileType string, changed int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	it.files.WithLabelValues(fileType, result).Inc()
	if changed > 0 {
		it.changes.WithLabelValues(fileType).Add(float64(changed))
	}
}

// WriteTo writes every metric to path. An empty path is a no-op.
func (it *PrometheusMetricsRepository) WriteTo(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, it.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
