// Package metrics exposes enrichment counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the pipeline's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Lookups          *prometheus.CounterVec
	ProfilesInserted *prometheus.CounterVec
	Chunks           *prometheus.CounterVec
	Refreshes        *prometheus.CounterVec
	GateInFlight     prometheus.Gauge
	SearchDuration   prometheus.Histogram
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_identity_lookups_total",
			Help: "Identity lookups by name, by outcome (single_person, possible_persons, non_match, failed)",
		}, []string{"outcome"}),
		ProfilesInserted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_profiles_inserted_total",
			Help: "Profiles inserted into the store, by whether they are full persons",
		}, []string{"full_person"}),
		Chunks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_enrich_chunks_total",
			Help: "Enrichment chunks processed, by status (ok, failed)",
		}, []string{"status"}),
		Refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_refresh_profiles_total",
			Help: "Profiles visited by the refresh pass, by outcome (unchanged, resolved, dropped)",
		}, []string{"outcome"}),
		GateInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "scout_refresh_in_flight",
			Help: "Pointer lookups currently holding a concurrency slot",
		}),
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "scout_people_search_duration_seconds",
			Help:    "Wall time of a full people search for one job",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

func (m *Metrics) ObserveLookup(outcome string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveInsert(full bool) {
	if m == nil {
		return
	}
	label := "false"
	if full {
		label = "true"
	}
	m.ProfilesInserted.WithLabelValues(label).Inc()
}

func (m *Metrics) ObserveChunk(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.Chunks.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetInFlight(n int) {
	if m == nil {
		return
	}
	m.GateInFlight.Set(float64(n))
}

func (m *Metrics) ObserveSearch(seconds float64) {
	if m == nil {
		return
	}
	m.SearchDuration.Observe(seconds)
}
