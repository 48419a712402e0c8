package paging

import "strings"

// Policy names a page replacement algorithm
type Policy string

const (
	PolicyFIFO Policy = "fifo"
	PolicyLRU  Policy = "lru"
	PolicyOPT  Policy = "opt"
)

// Policies returns every supported policy in display order
func Policies() []Policy {
	return []Policy{PolicyFIFO, PolicyLRU, PolicyOPT}
}

// ParsePolicy resolves a case-insensitive policy name
func ParsePolicy(name string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(name))); p {
	case PolicyFIFO, PolicyLRU, PolicyOPT:
		return p, nil
	case "belady", "optimal":
		return PolicyOPT, nil
	}
	return "", ErrPolicyNotFound("ParsePolicy", name)
}

// String returns the upper-case display name
func (p Policy) String() string {
	return strings.ToUpper(string(p))
}

// Simulator replays a reference string against a fixed number of frames
type Simulator interface {
	// Policy returns the replacement policy implemented
	Policy() Policy

	// Simulate processes refs in order and returns one step per reference.
	// capacity 0 is valid: every reference faults and nothing is ever resident.
	Simulate(refs []PageID, capacity int) (*Trace, error)
}

// NewSimulator creates a simulator for the given policy
func NewSimulator(policy Policy) (Simulator, error) {
	switch policy {
	case PolicyFIFO:
		return NewFIFOSimulator(), nil
	case PolicyLRU:
		return NewLRUSimulator(), nil
	case PolicyOPT:
		return NewOPTSimulator(), nil
	default:
		return nil, ErrPolicyNotFound("NewSimulator", string(policy))
	}
}

// Simulate runs one policy over refs
func Simulate(policy Policy, refs []PageID, capacity int) (*Trace, error) {
	sim, err := NewSimulator(policy)
	if err != nil {
		return nil, err
	}
	return sim.Simulate(refs, capacity)
}

// evictor is the per-policy bookkeeping driven by replay.
// A fresh evictor is created for every run.
type evictor interface {
	// Hit records an access to a resident page at position pos
	Hit(page PageID, pos int)

	// Load records that page was brought into a frame at position pos
	Load(page PageID, pos int)

	// Victim selects the resident page to evict for a fault at position pos.
	// Only called when frames is full and non-empty.
	Victim(frames *FrameSet, pos int) PageID
}

// replay is the shared simulation loop for all policies
func replay(policy Policy, refs []PageID, capacity int, ev evictor) (*Trace, error) {
	if capacity < 0 {
		return nil, ErrBadCapacity("Simulate", capacity)
	}

	frames := NewFrameSet(capacity)
	trace := &Trace{
		Policy:   policy,
		Capacity: capacity,
		Steps:    make([]Step, 0, len(refs)),
	}

	for pos, page := range refs {
		step := Step{Reference: page, SlotIndex: -1}

		switch {
		case frames.Contains(page):
			ev.Hit(page, pos)

		case capacity == 0:
			// Nothing can ever be resident
			step.Fault = true

		case !frames.Full():
			step.Fault = true
			step.SlotIndex = frames.Place(page)
			ev.Load(page, pos)

		default:
			step.Fault = true
			victim := ev.Victim(frames, pos)
			step.SlotIndex = frames.Replace(victim, page)
			step.Evicted = Resident(victim)
			ev.Load(page, pos)
		}

		if step.Fault {
			trace.Faults++
		}
		step.Frames = frames.Snapshot()
		trace.Steps = append(trace.Steps, step)
	}

	return trace, nil
}
