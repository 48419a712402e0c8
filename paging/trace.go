package paging

import "slices"

// Step is the result of processing one reference
type Step struct {
	Reference PageID
	Frames    []Slot // frame contents after the reference
	Fault     bool
	Evicted   Slot // page removed to make room, invalid when none
	SlotIndex int  // slot written on a fault, -1 otherwise
}

// Trace is the ordered record of one simulation run
type Trace struct {
	Policy   Policy
	Capacity int
	Steps    []Step
	Faults   int
}

// Len returns the number of steps
func (t *Trace) Len() int {
	return len(t.Steps)
}

// References returns the reference string the trace was produced from
func (t *Trace) References() []PageID {
	refs := make([]PageID, len(t.Steps))
	for i, s := range t.Steps {
		refs[i] = s.Reference
	}
	return refs
}

// FaultCount recounts faults from the steps
func (t *Trace) FaultCount() int {
	n := 0
	for _, s := range t.Steps {
		if s.Fault {
			n++
		}
	}
	return n
}

// Hits returns the number of references that found their page resident
func (t *Trace) Hits() int {
	return len(t.Steps) - t.Faults
}

// Evictions returns the number of steps that removed a resident page
func (t *Trace) Evictions() int {
	n := 0
	for _, s := range t.Steps {
		if s.Evicted.Valid {
			n++
		}
	}
	return n
}

// FaultRate returns faults / references, 0 for an empty trace
func (t *Trace) FaultRate() float64 {
	if len(t.Steps) == 0 {
		return 0
	}
	return float64(t.Faults) / float64(len(t.Steps))
}

// Equal reports whether two traces are step-for-step identical
func (t *Trace) Equal(other *Trace) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Policy != other.Policy || t.Capacity != other.Capacity ||
		t.Faults != other.Faults || len(t.Steps) != len(other.Steps) {
		return false
	}
	for i := range t.Steps {
		a, b := t.Steps[i], other.Steps[i]
		if a.Reference != b.Reference || a.Fault != b.Fault ||
			a.Evicted != b.Evicted || a.SlotIndex != b.SlotIndex {
			return false
		}
		if !slices.Equal(a.Frames, b.Frames) {
			return false
		}
	}
	return true
}
