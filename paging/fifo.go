package paging

// FIFOSimulator evicts the page that has been resident longest.
// Hits do not change the eviction order.
type FIFOSimulator struct{}

// NewFIFOSimulator creates a FIFO simulator
func NewFIFOSimulator() *FIFOSimulator {
	return &FIFOSimulator{}
}

// Policy returns PolicyFIFO
func (s *FIFOSimulator) Policy() Policy {
	return PolicyFIFO
}

// Simulate runs FIFO replacement over refs
func (s *FIFOSimulator) Simulate(refs []PageID, capacity int) (*Trace, error) {
	return replay(PolicyFIFO, refs, capacity, newFIFOQueue(capacity))
}

// fifoQueue holds resident pages in load order.
// It is a ring buffer sized to the frame capacity.
type fifoQueue struct {
	pages []PageID
	head  int
	size  int
}

func newFIFOQueue(capacity int) *fifoQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &fifoQueue{pages: make([]PageID, capacity)}
}

func (q *fifoQueue) Hit(PageID, int) {}

func (q *fifoQueue) Load(page PageID, _ int) {
	q.pages[(q.head+q.size)%len(q.pages)] = page
	q.size++
}

func (q *fifoQueue) Victim(*FrameSet, int) PageID {
	oldest := q.pages[q.head]
	q.head = (q.head + 1) % len(q.pages)
	q.size--
	return oldest
}
