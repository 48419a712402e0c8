package paging

import (
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Histogram keeps the most recent latency samples (microseconds) for percentiles
type Histogram struct {
	mu      sync.Mutex
	samples []float64
	next    int
	full    bool
}

// NewHistogram creates a histogram retaining up to maxSize samples
func NewHistogram(maxSize int) *Histogram {
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &Histogram{samples: make([]float64, maxSize)}
}

// Record adds a sample, overwriting the oldest once full
func (h *Histogram) Record(us float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples[h.next] = us
	h.next++
	if h.next == len(h.samples) {
		h.next = 0
		h.full = true
	}
}

func (h *Histogram) sorted() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.next
	if h.full {
		n = len(h.samples)
	}
	out := slices.Clone(h.samples[:n])
	slices.Sort(out)
	return out
}

// HistogramSnapshot is a point-in-time summary
type HistogramSnapshot struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	P50   float64
	P95   float64
	P99   float64
}

// Snapshot computes summary statistics over the retained samples
func (h *Histogram) Snapshot() HistogramSnapshot {
	s := h.sorted()
	if len(s) == 0 {
		return HistogramSnapshot{}
	}

	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return HistogramSnapshot{
		Count: len(s),
		Min:   s[0],
		Max:   s[len(s)-1],
		Mean:  sum / float64(len(s)),
		P50:   percentile(s, 50),
		P95:   percentile(s, 95),
		P99:   percentile(s, 99),
	}
}

// Reset drops all samples
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next = 0
	h.full = false
}

// percentile interpolates linearly between closest ranks of sorted samples
func percentile(sorted []float64, p float64) float64 {
	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// policyCounters accumulates totals for one policy
type policyCounters struct {
	runs       atomic.Uint64
	references atomic.Uint64
	faults     atomic.Uint64
	evictions  atomic.Uint64
}

// Metrics tracks simulation totals per policy.
// It is safe to share between goroutines.
type Metrics struct {
	counters map[Policy]*policyCounters
	latency  *Histogram
	started  time.Time
}

// NewMetrics creates a metrics recorder keeping histogramSize latency samples
func NewMetrics(histogramSize int) *Metrics {
	m := &Metrics{
		counters: make(map[Policy]*policyCounters),
		latency:  NewHistogram(histogramSize),
		started:  time.Now(),
	}
	for _, p := range Policies() {
		m.counters[p] = &policyCounters{}
	}
	return m
}

// Observe records one finished run
func (m *Metrics) Observe(trace *Trace, elapsed time.Duration) {
	c, ok := m.counters[trace.Policy]
	if !ok {
		return
	}
	c.runs.Add(1)
	c.references.Add(uint64(trace.Len()))
	c.faults.Add(uint64(trace.Faults))
	c.evictions.Add(uint64(trace.Evictions()))
	m.latency.Record(float64(elapsed.Microseconds()))
}

// Timed runs sim and records the result
func (m *Metrics) Timed(sim Simulator, refs []PageID, capacity int) (*Trace, error) {
	start := time.Now()
	trace, err := sim.Simulate(refs, capacity)
	if err != nil {
		return nil, err
	}
	m.Observe(trace, time.Since(start))
	return trace, nil
}

// PolicyStats is a read-only copy of one policy's counters
type PolicyStats struct {
	Runs       uint64
	References uint64
	Faults     uint64
	Evictions  uint64
}

// Hits returns references that did not fault
func (s PolicyStats) Hits() uint64 {
	return s.References - s.Faults
}

// FaultRate returns faults / references
func (s PolicyStats) FaultRate() float64 {
	if s.References == 0 {
		return 0
	}
	return float64(s.Faults) / float64(s.References)
}

// Stats returns the totals for policy
func (m *Metrics) Stats(policy Policy) PolicyStats {
	c, ok := m.counters[policy]
	if !ok {
		return PolicyStats{}
	}
	return PolicyStats{
		Runs:       c.runs.Load(),
		References: c.references.Load(),
		Faults:     c.faults.Load(),
		Evictions:  c.evictions.Load(),
	}
}

// Latency returns the simulation latency distribution
func (m *Metrics) Latency() HistogramSnapshot {
	return m.latency.Snapshot()
}

// LogMetrics logs all metrics using structured logging
func (m *Metrics) LogMetrics(logger *slog.Logger) {
	attrs := make([]any, 0, len(m.counters)+2)
	for _, p := range Policies() {
		s := m.Stats(p)
		if s.Runs == 0 {
			continue
		}
		attrs = append(attrs, slog.Group(string(p),
			slog.Uint64("runs", s.Runs),
			slog.Uint64("references", s.References),
			slog.Uint64("hits", s.Hits()),
			slog.Uint64("faults", s.Faults),
			slog.Uint64("evictions", s.Evictions),
			slog.Float64("fault_rate", s.FaultRate()),
		))
	}

	lat := m.Latency()
	attrs = append(attrs,
		slog.Group("latency_us",
			slog.Int("count", lat.Count),
			slog.Float64("mean", lat.Mean),
			slog.Float64("p50", lat.P50),
			slog.Float64("p95", lat.P95),
			slog.Float64("p99", lat.P99),
		),
		slog.Duration("uptime", time.Since(m.started)),
	)

	logger.Info("Simulation metrics", attrs...)
}

// Reset zeroes every counter (useful for testing)
func (m *Metrics) Reset() {
	for _, c := range m.counters {
		c.runs.Store(0)
		c.references.Store(0)
		c.faults.Store(0)
		c.evictions.Store(0)
	}
	m.latency.Reset()
}
