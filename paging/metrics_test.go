package paging

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"
)

func TestHistogramSnapshot(t *testing.T) {
	h := NewHistogram(100)

	for i := 1; i <= 10; i++ {
		h.Record(float64(i * 10))
	}

	s := h.Snapshot()
	if s.Count != 10 {
		t.Errorf("Expected count 10, got %d", s.Count)
	}
	if s.Min != 10 || s.Max != 100 {
		t.Errorf("Expected min 10 max 100, got %.2f %.2f", s.Min, s.Max)
	}
	if math.Abs(s.Mean-55) > 0.01 {
		t.Errorf("Expected mean 55, got %.2f", s.Mean)
	}
	if math.Abs(s.P50-55) > 0.01 {
		t.Errorf("Expected median 55, got %.2f", s.P50)
	}
}

func TestHistogramOverwritesOldest(t *testing.T) {
	h := NewHistogram(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		h.Record(v)
	}

	s := h.Snapshot()
	if s.Count != 3 {
		t.Errorf("Expected count 3, got %d", s.Count)
	}
	if s.Min != 3 {
		t.Errorf("Expected oldest samples dropped (min 3), got %.2f", s.Min)
	}
}

func TestHistogramEmptyAndReset(t *testing.T) {
	h := NewHistogram(0)
	if s := h.Snapshot(); s.Count != 0 || s.P99 != 0 {
		t.Errorf("Expected zero snapshot, got %+v", s)
	}

	h.Record(5)
	h.Reset()
	if h.Snapshot().Count != 0 {
		t.Error("Expected no samples after reset")
	}
}

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics(16)

	fifo, _ := Simulate(PolicyFIFO, exampleRefs, 3)
	m.Observe(fifo, 10*time.Microsecond)
	m.Observe(fifo, 20*time.Microsecond)

	s := m.Stats(PolicyFIFO)
	if s.Runs != 2 {
		t.Errorf("Expected 2 runs, got %d", s.Runs)
	}
	if s.References != 20 {
		t.Errorf("Expected 20 references, got %d", s.References)
	}
	if s.Faults != 16 {
		t.Errorf("Expected 16 faults, got %d", s.Faults)
	}
	if s.Evictions != 10 {
		t.Errorf("Expected 10 evictions, got %d", s.Evictions)
	}
	if s.Hits() != 4 {
		t.Errorf("Expected 4 hits, got %d", s.Hits())
	}
	if math.Abs(s.FaultRate()-0.8) > 0.001 {
		t.Errorf("Expected fault rate 0.8, got %.3f", s.FaultRate())
	}

	if m.Stats(PolicyLRU).Runs != 0 {
		t.Error("LRU should have no runs")
	}
	if m.Latency().Count != 2 {
		t.Errorf("Expected 2 latency samples, got %d", m.Latency().Count)
	}
}

func TestMetricsTimed(t *testing.T) {
	m := NewMetrics(16)

	trace, err := m.Timed(NewOPTSimulator(), exampleRefs, 3)
	if err != nil {
		t.Fatalf("Timed failed: %v", err)
	}
	if trace.Faults != 5 {
		t.Errorf("Expected 5 faults, got %d", trace.Faults)
	}
	if m.Stats(PolicyOPT).Runs != 1 {
		t.Error("Expected the run to be recorded")
	}

	if _, err := m.Timed(NewOPTSimulator(), exampleRefs, -3); err == nil {
		t.Error("Expected an error for negative capacity")
	}
	if m.Stats(PolicyOPT).Runs != 1 {
		t.Error("Failed runs should not be recorded")
	}
}

func TestMetricsLogAndReset(t *testing.T) {
	m := NewMetrics(16)
	lru, _ := Simulate(PolicyLRU, exampleRefs, 3)
	m.Observe(lru, time.Millisecond)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m.LogMetrics(logger)

	out := buf.String()
	if !strings.Contains(out, "lru.faults=6") {
		t.Errorf("Expected LRU faults in log output, got: %s", out)
	}
	if strings.Contains(out, "fifo.") {
		t.Errorf("Policies without runs should be omitted, got: %s", out)
	}

	m.Reset()
	if m.Stats(PolicyLRU).Runs != 0 {
		t.Error("Expected counters to be zero after reset")
	}
}
