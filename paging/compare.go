package paging

// Comparison holds one trace per policy for the same input
type Comparison struct {
	Capacity int
	Policies []Policy
	Traces   []*Trace
}

// RunFunc runs one simulation; Metrics.Timed has this shape
type RunFunc func(sim Simulator, refs []PageID, capacity int) (*Trace, error)

func runSimulator(sim Simulator, refs []PageID, capacity int) (*Trace, error) {
	return sim.Simulate(refs, capacity)
}

// Compare runs every given policy (all of them when none are given) over refs
func Compare(refs []PageID, capacity int, policies ...Policy) (*Comparison, error) {
	return CompareWith(runSimulator, refs, capacity, policies...)
}

// CompareWith is Compare with each simulation routed through run
func CompareWith(run RunFunc, refs []PageID, capacity int, policies ...Policy) (*Comparison, error) {
	if len(policies) == 0 {
		policies = Policies()
	}

	cmp := &Comparison{
		Capacity: capacity,
		Policies: make([]Policy, 0, len(policies)),
		Traces:   make([]*Trace, 0, len(policies)),
	}
	for _, p := range policies {
		sim, err := NewSimulator(p)
		if err != nil {
			return nil, err
		}
		trace, err := run(sim, refs, capacity)
		if err != nil {
			return nil, err
		}
		cmp.Policies = append(cmp.Policies, p)
		cmp.Traces = append(cmp.Traces, trace)
	}
	return cmp, nil
}

// Trace returns the trace for policy, or nil if it was not run
func (c *Comparison) Trace(policy Policy) *Trace {
	for i, p := range c.Policies {
		if p == policy {
			return c.Traces[i]
		}
	}
	return nil
}

// Best returns the policy with the fewest faults; earlier policies win ties
func (c *Comparison) Best() (Policy, int) {
	if len(c.Traces) == 0 {
		return "", 0
	}
	best := 0
	for i, t := range c.Traces {
		if t.Faults < c.Traces[best].Faults {
			best = i
		}
	}
	return c.Policies[best], c.Traces[best].Faults
}

// SweepPoint is the fault count of one policy at one capacity
type SweepPoint struct {
	Capacity int
	Faults   int
}

// MaxSweepPoints bounds the number of capacities one sweep may visit
const MaxSweepPoints = 1024

// Sweep runs policy over refs for every capacity in [minCap, maxCap]
func Sweep(policy Policy, refs []PageID, minCap, maxCap int) ([]SweepPoint, error) {
	if minCap < 0 || maxCap < minCap || maxCap-minCap >= MaxSweepPoints {
		return nil, ErrBadRange("Sweep", minCap, maxCap)
	}
	sim, err := NewSimulator(policy)
	if err != nil {
		return nil, err
	}

	// once every distinct page fits, only cold misses remain
	distinct := distinctPages(refs)

	span := maxCap - minCap
	points := make([]SweepPoint, 0, span+1)
	for i := 0; i <= span; i++ {
		c := minCap + i
		if c >= distinct {
			points = append(points, SweepPoint{Capacity: c, Faults: distinct})
			continue
		}
		trace, err := sim.Simulate(refs, c)
		if err != nil {
			return nil, err
		}
		points = append(points, SweepPoint{Capacity: c, Faults: trace.Faults})
	}
	return points, nil
}

func distinctPages(refs []PageID) int {
	seen := make(map[PageID]struct{}, len(refs))
	for _, r := range refs {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// Anomaly records a capacity increase that produced more faults (Belady's anomaly)
type Anomaly struct {
	From SweepPoint
	To   SweepPoint
}

// BeladyAnomalies returns every adjacent pair of points where faults grew with capacity
func BeladyAnomalies(points []SweepPoint) []Anomaly {
	var out []Anomaly
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if cur.Capacity > prev.Capacity && cur.Faults > prev.Faults {
			out = append(out, Anomaly{From: prev, To: cur})
		}
	}
	return out
}
