// Package metrics counts what a generation run did and writes the counters
// to a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rotisserie/eris"
)

// Skip reasons for license records left out of aggregation.
const (
	SkipBadDates   = "bad_dates"
	SkipNoLocation = "no_location"
	SkipNoCentroid = "no_centroid"
	SkipAtCentroid = "at_centroid"
)

// Metrics holds the counters of one run on a private registry. A nil
// *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Observations       prometheus.Counter
	Duplicates         prometheus.Counter
	Skipped            *prometheus.CounterVec
	Categories         *prometheus.CounterVec
	CriticalBusinesses prometheus.Counter
	FilesWritten       prometheus.Counter
	CategoryDuration   prometheus.Histogram
}

// New creates a Metrics instance with every run metric registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Observations: f.NewCounter(prometheus.CounterOpts{
			Name: "oasis_observations_total",
			Help: "Business/tract/year observations absorbed by the aggregator",
		}),
		Duplicates: f.NewCounter(prometheus.CounterOpts{
			Name: "oasis_duplicate_observations_total",
			Help: "Observations ignored because the business was already counted for the tract and year",
		}),
		Skipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "oasis_skipped_records_total",
			Help: "License records or tract pairs skipped by reason",
		}, []string{"reason"}),
		Categories: f.NewCounterVec(prometheus.CounterOpts{
			Name: "oasis_categories_total",
			Help: "License categories processed by outcome",
		}, []string{"status"}), // status: "complete", "failed", "skipped"
		CriticalBusinesses: f.NewCounter(prometheus.CounterOpts{
			Name: "oasis_critical_businesses_total",
			Help: "Critical businesses reported across all categories and years",
		}),
		FilesWritten: f.NewCounter(prometheus.CounterOpts{
			Name: "oasis_files_written_total",
			Help: "Report files written to the destination",
		}),
		CategoryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "oasis_category_duration_seconds",
			Help:    "Time to aggregate and emit one license category",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
	}
}

// Registry exposes the private registry, for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AddObservations records absorbed and duplicate observations.
func (m *Metrics) AddObservations(absorbed, duplicates int) {
	if m != nil {
		m.Observations.Add(float64(absorbed))
		m.Duplicates.Add(float64(duplicates))
	}
}

// IncSkipped records a skipped record.
func (m *Metrics) IncSkipped(reason string) {
	if m != nil {
		m.Skipped.WithLabelValues(reason).Inc()
	}
}

// IncCategory records a category outcome.
func (m *Metrics) IncCategory(status string) {
	if m != nil {
		m.Categories.WithLabelValues(status).Inc()
	}
}

// AddCritical records reported critical businesses.
func (m *Metrics) AddCritical(n int) {
	if m != nil {
		m.CriticalBusinesses.Add(float64(n))
	}
}

// AddFiles records written report files.
func (m *Metrics) AddFiles(n int) {
	if m != nil {
		m.FilesWritten.Add(float64(n))
	}
}

// ObserveCategory records how long a category took.
func (m *Metrics) ObserveCategory(d time.Duration) {
	if m != nil {
		m.CategoryDuration.Observe(d.Seconds())
	}
}

// WriteTextfile writes every metric to path in the text exposition format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return eris.Wrapf(err, "metrics: write %s", path)
	}
	return nil
}
