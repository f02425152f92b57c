package sim

import "fmt"

// EventKind identifies what happens to a process when an event fires.
type EventKind string

const (
	// EventKindArrive opens a process's admission window: the simulator tries to place it.
	EventKindArrive EventKind = "arrive"
	// EventKindDepart closes the window: the simulator releases the process's frames.
	EventKindDepart EventKind = "depart"
)

// EventKindPriority orders events that share a timestamp.
// Lower value is dispatched first, so an arriving process is considered
// before a departing one at the same instant.
var EventKindPriority = map[EventKind]int{
	EventKindArrive: 1,
	EventKindDepart: 2,
}

// Event is an immutable (kind, time, process) record owned by the pending set until popped.
type Event struct {
	kind    EventKind
	time    int64
	Process *Process
}

// NewArriveEvent creates an arrival of p at time t (in ms).
func NewArriveEvent(t int64, p *Process) Event {
	return Event{kind: EventKindArrive, time: t, Process: p}
}

// NewDepartEvent creates a departure of p at time t (in ms).
func NewDepartEvent(t int64, p *Process) Event {
	return Event{kind: EventKindDepart, time: t, Process: p}
}

// Kind returns the event kind.
func (e Event) Kind() EventKind { return e.kind }

// Timestamp returns the scheduled simulation time of the event.
func (e Event) Timestamp() int64 { return e.time }

// Delayed returns a copy of e shifted forward by delta ms.
func (e Event) Delayed(delta int64) Event {
	e.time += delta
	return e
}

// Before reports whether e must be dispatched ahead of other.
// Order by: timestamp → kind priority → process ID.
func (e Event) Before(other Event) bool {
	if e.time != other.time {
		return e.time < other.time
	}
	pi, pj := EventKindPriority[e.kind], EventKindPriority[other.kind]
	if pi != pj {
		return pi < pj
	}
	return e.Process.ID < other.Process.ID
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%s@%d)", e.kind, e.Process.ID, e.time)
}
