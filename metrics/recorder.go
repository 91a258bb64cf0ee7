// Package metrics provides Prometheus metrics for pipeline runs
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/spektr-org/doped/engine"
)

// Recorder implements engine.Observer on its own registry, so every run
// starts from zero and can be written out as a textfile.
type Recorder struct {
	registry *prometheus.Registry

	recordsRead       *prometheus.CounterVec
	recordsClassified *prometheus.CounterVec
	resourceRows      *prometheus.GaugeVec
	stageDuration     *prometheus.HistogramVec
	missingValues     *prometheus.CounterVec
}

var _ engine.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		recordsRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doped_records_read_total",
				Help: "Total number of raw records offered to the classifier",
			},
			[]string{"source"},
		),

		recordsClassified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doped_records_classified_total",
				Help: "Total number of raw records kept by the classifier",
			},
			[]string{"source"},
		),

		resourceRows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "doped_resource_rows",
				Help: "Rows in a resource table after a pipeline stage",
			},
			[]string{"resource", "stage"},
		),

		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "doped_stage_duration_seconds",
				Help:    "Time spent in a pipeline stage",
				Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5},
			},
			[]string{"stage"},
		),

		missingValues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doped_missing_values_total",
				Help: "Annual rows with a missing value, per column",
			},
			[]string{"resource", "column"},
		),
	}
}

// Registry exposes the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveClassified records how many records of a source were kept.
func (r *Recorder) ObserveClassified(s engine.Series, kept, total int) {
	r.recordsRead.WithLabelValues(s.String()).Add(float64(total))
	r.recordsClassified.WithLabelValues(s.String()).Add(float64(kept))
}

// ObserveRows records a resource table size after a stage.
func (r *Recorder) ObserveRows(res engine.Resource, stage string, rows int) {
	r.resourceRows.WithLabelValues(res.String(), stage).Set(float64(rows))
}

// ObserveMissing records missing values in a derived column.
func (r *Recorder) ObserveMissing(res engine.Resource, column string, count int) {
	r.missingValues.WithLabelValues(res.String(), column).Add(float64(count))
}

// ObserveStage records a stage duration.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
