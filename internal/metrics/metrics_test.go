package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLookup("single_person")
	m.ObserveLookup("single_person")
	m.ObserveLookup("failed")
	m.ObserveInsert(true)
	m.ObserveChunk(false)
	m.SetInFlight(3)

	if got := testutil.ToFloat64(m.Lookups.WithLabelValues("single_person")); got != 2 {
		t.Errorf("single_person lookups = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Lookups.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed lookups = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ProfilesInserted.WithLabelValues("true")); got != 1 {
		t.Errorf("full inserts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Chunks.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed chunks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.GateInFlight); got != 3 {
		t.Errorf("in flight = %v, want 3", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLookup("non_match")
	m.ObserveInsert(false)
	m.ObserveChunk(true)
	m.ObserveRefresh("resolved")
	m.SetInFlight(1)
	m.ObserveSearch(1.5)
}
