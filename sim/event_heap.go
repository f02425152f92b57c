package sim

import "container/heap"

// EventHeap implements a priority queue with deterministic ordering.
// Ordering is delegated to Event.Before: timestamp → kind priority → process ID.
type EventHeap struct {
	events []Event
}

// NewEventHeap creates a new event heap
func NewEventHeap() *EventHeap {
	h := &EventHeap{
		events: make([]Event, 0),
	}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *EventHeap) Len() int {
	return len(h.events)
}

// Less implements heap.Interface
func (h *EventHeap) Less(i, j int) bool {
	return h.events[i].Before(h.events[j])
}

// Swap implements heap.Interface
func (h *EventHeap) Swap(i, j int) {
	h.events[i], h.events[j] = h.events[j], h.events[i]
}

// Push implements heap.Interface
func (h *EventHeap) Push(x interface{}) {
	h.events = append(h.events, x.(Event))
}

// Pop implements heap.Interface
func (h *EventHeap) Pop() interface{} {
	old := h.events
	n := len(old)
	item := old[n-1]
	h.events = old[0 : n-1]
	return item
}

// Schedule adds an event to the heap
func (h *EventHeap) Schedule(e Event) {
	heap.Push(h, e)
}

// PopNext removes and returns the next event.
// ok is false when the heap is empty.
func (h *EventHeap) PopNext() (e Event, ok bool) {
	if h.Len() == 0 {
		return Event{}, false
	}
	return heap.Pop(h).(Event), true
}

// Peek returns the next event without removing it
func (h *EventHeap) Peek() (e Event, ok bool) {
	if h.Len() == 0 {
		return Event{}, false
	}
	return h.events[0], true
}

// Shift delays every pending event by delta.
// A uniform shift preserves relative order, so the heap needs no re-fix.
func (h *EventHeap) Shift(delta int64) {
	if delta == 0 {
		return
	}
	for i := range h.events {
		h.events[i] = h.events[i].Delayed(delta)
	}
}

// Pending returns a copy of the pending events in dispatch order.
func (h *EventHeap) Pending() []Event {
	tmp := &EventHeap{events: append([]Event(nil), h.events...)}
	out := make([]Event, 0, tmp.Len())
	for tmp.Len() > 0 {
		out = append(out, heap.Pop(tmp).(Event))
	}
	return out
}

// Clear drops every pending event.
func (h *EventHeap) Clear() {
	h.events = h.events[:0]
}
