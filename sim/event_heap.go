package sim

import "container/heap"

// Wakeup is a pending resumption of a suspended process.
type Wakeup struct {
	at      float64 // virtual time in minutes
	seq     uint64  // scheduling order, unique per Scheduler
	process Process
}

// Timestamp returns the virtual time at which the process resumes.
func (w *Wakeup) Timestamp() float64 {
	return w.at
}

// Seq returns the scheduling sequence number used for tie-breaking.
func (w *Wakeup) Seq() uint64 {
	return w.seq
}

// EventHeap implements a priority queue with deterministic ordering
// Ordering: timestamp → scheduling sequence
type EventHeap struct {
	events []*Wakeup
}

// NewEventHeap creates a new event heap
func NewEventHeap() *EventHeap {
	h := &EventHeap{
		events: make([]*Wakeup, 0),
	}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *EventHeap) Len() int {
	return len(h.events)
}

// Less implements heap.Interface with deterministic ordering
// Order by: timestamp → sequence (first scheduled wins)
func (h *EventHeap) Less(i, j int) bool {
	ei, ej := h.events[i], h.events[j]

	if ei.at != ej.at {
		return ei.at < ej.at
	}
	return ei.seq < ej.seq
}

// Swap implements heap.Interface
func (h *EventHeap) Swap(i, j int) {
	h.events[i], h.events[j] = h.events[j], h.events[i]
}

// Push implements heap.Interface
func (h *EventHeap) Push(x interface{}) {
	h.events = append(h.events, x.(*Wakeup))
}

// Pop implements heap.Interface
func (h *EventHeap) Pop() interface{} {
	old := h.events
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.events = old[0 : n-1]
	return item
}

// Schedule adds a wakeup to the heap
func (h *EventHeap) Schedule(w *Wakeup) {
	heap.Push(h, w)
}

// PopNext removes and returns the next wakeup
func (h *EventHeap) PopNext() *Wakeup {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*Wakeup)
}

// Peek returns the next wakeup without removing it
func (h *EventHeap) Peek() *Wakeup {
	if h.Len() == 0 {
		return nil
	}
	return h.events[0]
}
