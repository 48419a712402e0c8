package paging

import (
	"container/list"
)

// LRUSimulator evicts the resident page that was accessed least recently.
// Every access, hit or fault, refreshes recency.
type LRUSimulator struct{}

// NewLRUSimulator creates an LRU simulator
func NewLRUSimulator() *LRUSimulator {
	return &LRUSimulator{}
}

// Policy returns PolicyLRU
func (s *LRUSimulator) Policy() Policy {
	return PolicyLRU
}

// Simulate runs LRU replacement over refs
func (s *LRUSimulator) Simulate(refs []PageID, capacity int) (*Trace, error) {
	return replay(PolicyLRU, refs, capacity, newRecencyList())
}

// recencyList orders resident pages from least (front) to most (back) recently used
type recencyList struct {
	lruList *list.List
	lruMap  map[PageID]*list.Element
}

func newRecencyList() *recencyList {
	return &recencyList{
		lruList: list.New(),
		lruMap:  make(map[PageID]*list.Element),
	}
}

// Hit moves page to the most recently used end
func (r *recencyList) Hit(page PageID, _ int) {
	if elem, exists := r.lruMap[page]; exists {
		r.lruList.MoveToBack(elem)
	}
}

// Load adds page at the most recently used end
func (r *recencyList) Load(page PageID, _ int) {
	if elem, exists := r.lruMap[page]; exists {
		r.lruList.MoveToBack(elem)
		return
	}
	r.lruMap[page] = r.lruList.PushBack(page)
}

// Victim removes and returns the least recently used page
func (r *recencyList) Victim(*FrameSet, int) PageID {
	oldest := r.lruList.Front()
	page := oldest.Value.(PageID)

	r.lruList.Remove(oldest)
	delete(r.lruMap, page)

	return page
}
