// Package metrics exposes Prometheus instrumentation for the harvest
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API lookup outcome label values.
const (
	OutcomePlace    = "place"
	OutcomeUniverse = "universe"
	OutcomeMiss     = "miss"
)

// Sink label values for failure counting.
const (
	SinkDataset = "dataset"
	SinkBlob    = "blob"
)

// Set bundles the counters the pipeline increments.
type Set struct {
	PagesProcessed  prometheus.Counter
	RecordsAppended prometheus.Counter
	APILookups      *prometheus.CounterVec
	SinkFailures    *prometheus.CounterVec
}

// New registers the harvest counters on reg and returns them.
func New(reg prometheus.Registerer) *Set {
	factory := promauto.With(reg)
	return &Set{
		PagesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "harvester_pages_processed_total",
			Help: "Pages that completed the extraction pipeline.",
		}),
		RecordsAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "harvester_records_appended_total",
			Help: "Canonical records appended to the dataset.",
		}),
		APILookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_api_lookups_total",
			Help: "Platform API lookups by outcome.",
		}, []string{"outcome"}),
		SinkFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_sink_failures_total",
			Help: "Writes that a sink rejected, by sink.",
		}, []string{"sink"}),
	}
}
