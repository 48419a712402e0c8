package paging

// OPTSimulator implements Belady's optimal replacement.
// On a fault with full frames it evicts the resident page whose next use lies
// farthest in the future; pages never used again count as infinitely far.
// Ties go to the page in the lowest frame slot.
//
// OPT needs the whole reference string up front, unlike FIFO and LRU.
type OPTSimulator struct{}

// NewOPTSimulator creates an OPT simulator
func NewOPTSimulator() *OPTSimulator {
	return &OPTSimulator{}
}

// Policy returns PolicyOPT
func (s *OPTSimulator) Policy() Policy {
	return PolicyOPT
}

// Simulate runs OPT replacement over refs
func (s *OPTSimulator) Simulate(refs []PageID, capacity int) (*Trace, error) {
	return replay(PolicyOPT, refs, capacity, newLookahead(refs))
}

// NextUse returns, for every position i, the smallest j > i with refs[j] == refs[i],
// or len(refs) when the page does not occur again.
func NextUse(refs []PageID) []int {
	next := make([]int, len(refs))
	seen := make(map[PageID]int, len(refs))
	for i := len(refs) - 1; i >= 0; i-- {
		if j, ok := seen[refs[i]]; ok {
			next[i] = j
		} else {
			next[i] = len(refs)
		}
		seen[refs[i]] = i
	}
	return next
}

// lookahead tracks the next use of every resident page
type lookahead struct {
	next    []int
	nextUse map[PageID]int
}

func newLookahead(refs []PageID) *lookahead {
	return &lookahead{
		next:    NextUse(refs),
		nextUse: make(map[PageID]int),
	}
}

func (l *lookahead) Hit(page PageID, pos int) {
	l.nextUse[page] = l.next[pos]
}

func (l *lookahead) Load(page PageID, pos int) {
	l.nextUse[page] = l.next[pos]
}

// Victim scans slots in index order so the lowest slot wins ties
func (l *lookahead) Victim(frames *FrameSet, _ int) PageID {
	victim := frames.Slot(0).Page
	farthest := -1
	for i := 0; i < frames.Capacity(); i++ {
		page := frames.Slot(i).Page
		if nu := l.nextUse[page]; nu > farthest {
			farthest = nu
			victim = page
		}
	}
	delete(l.nextUse, victim)
	return victim
}
