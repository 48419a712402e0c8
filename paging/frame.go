package paging

import (
	"slices"
	"strconv"
)

// PageID identifies a logical page in a reference string
type PageID int

// Slot holds an optional page identifier.
// An invalid slot is an empty frame, or "no page" when used for an eviction.
type Slot struct {
	Page  PageID
	Valid bool
}

// Empty returns an empty slot
func Empty() Slot {
	return Slot{}
}

// Resident returns a slot holding page
func Resident(page PageID) Slot {
	return Slot{Page: page, Valid: true}
}

// String renders the slot the way the result table shows it ("-" when empty)
func (s Slot) String() string {
	if !s.Valid {
		return "-"
	}
	return strconv.Itoa(int(s.Page))
}

// FrameSet is a fixed array of frame slots with a page -> slot index.
// A page occupies at most one slot; the index keeps residency checks O(1).
type FrameSet struct {
	slots []Slot
	index map[PageID]int
}

// NewFrameSet creates an empty frame set with the given number of slots
func NewFrameSet(capacity int) *FrameSet {
	if capacity < 0 {
		capacity = 0
	}
	return &FrameSet{
		slots: make([]Slot, capacity),
		index: make(map[PageID]int, capacity),
	}
}

// Capacity returns the number of slots
func (fs *FrameSet) Capacity() int {
	return len(fs.slots)
}

// Len returns the number of resident pages
func (fs *FrameSet) Len() int {
	return len(fs.index)
}

// Full reports whether every slot is occupied
func (fs *FrameSet) Full() bool {
	return len(fs.index) >= len(fs.slots)
}

// Contains reports whether page is resident
func (fs *FrameSet) Contains(page PageID) bool {
	_, ok := fs.index[page]
	return ok
}

// SlotOf returns the slot holding page, or -1 if it is not resident
func (fs *FrameSet) SlotOf(page PageID) int {
	if i, ok := fs.index[page]; ok {
		return i
	}
	return -1
}

// Slot returns the content of slot i
func (fs *FrameSet) Slot(i int) Slot {
	return fs.slots[i]
}

// Place loads page into the first free slot.
// Returns the slot index, or -1 if the set is full or page is already resident.
func (fs *FrameSet) Place(page PageID) int {
	if fs.Contains(page) {
		return -1
	}
	for i, s := range fs.slots {
		if !s.Valid {
			fs.slots[i] = Resident(page)
			fs.index[page] = i
			return i
		}
	}
	return -1
}

// Replace overwrites the slot of victim with page.
// Returns the slot index, or -1 if victim is not resident or page already is.
func (fs *FrameSet) Replace(victim, page PageID) int {
	i, ok := fs.index[victim]
	if !ok || fs.Contains(page) {
		return -1
	}
	delete(fs.index, victim)
	fs.slots[i] = Resident(page)
	fs.index[page] = i
	return i
}

// Snapshot returns a copy of the slots
func (fs *FrameSet) Snapshot() []Slot {
	return slices.Clone(fs.slots)
}
