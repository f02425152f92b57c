// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/memsim/memsim/sim/trace"
)

// Simulator is the core object that holds simulation time, the frame store and the event loop.
// One instance drives one run; call Reset before reusing it.
type Simulator struct {
	Clock  int64
	Config SimConfig
	// Events has every pending arrive and depart event
	Events    *EventHeap
	Memory    *MemoryStore
	Metrics   *Metrics
	Processes []*Process
	// Trace records every dispatch; nil disables recording.
	Trace *trace.SimulationTrace

	started bool
}

// eventHandlers is the dispatch table from event kind to state transition.
var eventHandlers = map[EventKind]func(*Simulator, *Process){
	EventKindArrive: (*Simulator).handleArrive,
	EventKindDepart: (*Simulator).handleDepart,
}

// NewSimulator builds an empty simulator for cfg. Panics on invalid memory geometry.
func NewSimulator(cfg SimConfig) *Simulator {
	s := &Simulator{
		Clock:   0,
		Config:  cfg,
		Events:  NewEventHeap(),
		Memory:  NewMemoryStore(cfg.Memory),
		Metrics: NewMetrics(),
	}
	s.Memory.OnCompact = s.onCompact
	return s
}

// Reset clears the clock, the pending set, the store and the metrics.
func (sim *Simulator) Reset() {
	sim.Clock = 0
	sim.Events.Clear()
	sim.Memory.Reset()
	sim.Metrics = NewMetrics()
	sim.Processes = nil
	sim.started = false
}

// Schedule pushes an event into the pending set.
func (sim *Simulator) Schedule(ev Event) {
	sim.Events.Schedule(ev)
}

// Start seeds one arrival per burst of every process. The processes are
// mutated in place; callers comparing algorithms must pass clones.
func (sim *Simulator) Start(processes []*Process) {
	if sim.started {
		panic("Start: simulator already used; call Reset first")
	}
	sim.started = true
	sim.Processes = processes
	for _, p := range processes {
		for _, b := range p.Bursts {
			sim.Schedule(NewArriveEvent(b.Arrival, p))
		}
	}
	logrus.Infof("[t %07d] Simulator started (%s) with %d processes, %d events", sim.Clock, sim.Config.Algorithm, len(processes), sim.Events.Len())
	sim.record(trace.KindStart, nil, nil)
}

// Step dispatches the next pending event. It returns false once the pending set is empty.
func (sim *Simulator) Step() bool {
	ev, ok := sim.Events.PopNext()
	if !ok {
		return false
	}
	sim.advanceClock(ev.Timestamp())
	logrus.Debugf("[t %07d] Executing %s", sim.Clock, ev)
	handler, ok := eventHandlers[ev.Kind()]
	if !ok {
		panic(fmt.Sprintf("Step: unhandled event kind %q", ev.Kind()))
	}
	handler(sim, ev.Process)
	return true
}

// Run seeds the processes and dispatches events until none remain.
func (sim *Simulator) Run(processes []*Process) {
	sim.Start(processes)
	for sim.Step() {
	}
	sim.Finish()
}

// Finish stamps the end of the run.
func (sim *Simulator) Finish() {
	sim.Metrics.SimEndedTime = sim.Clock
	logrus.Infof("[t %07d] Simulator ended (%s)", sim.Clock, sim.Config.Algorithm)
	sim.record(trace.KindEnd, nil, nil)
}

func (sim *Simulator) handleArrive(p *Process) {
	burst, ok := p.CurrentBurst()
	if !ok {
		panic(fmt.Sprintf("handleArrive: process %s has no burst left", p.ID))
	}
	sim.Metrics.Arrivals++
	sim.record(trace.KindArrive, p, func(r *trace.Record) { r.Frames = p.Frames })

	var placed bool
	if sim.Config.Algorithm.Contiguous {
		placed = sim.Memory.Place(p, sim.Config.Algorithm.Strategy, sim.Clock).Placed
	} else {
		placed = sim.Memory.PlacePaged(p, sim.Clock)
	}

	if !placed {
		// the run is skipped, not retried later
		logrus.Infof("[t %07d] Cannot place process %s (%d frames, %d free) -- skipped", sim.Clock, p.ID, p.Frames, sim.Memory.FreeFrameCount())
		sim.Metrics.Skips++
		sim.Metrics.SkippedProcesses = append(sim.Metrics.SkippedProcesses, p.ID)
		sim.record(trace.KindSkip, p, nil)
		p.Advance()
		return
	}

	sim.Metrics.Placements++
	sim.Metrics.PeakFramesUsed = max(sim.Metrics.PeakFramesUsed, sim.Memory.UsedFrameCount())
	sim.record(trace.KindPlace, p, nil)
	sim.Schedule(NewDepartEvent(sim.Clock+burst.Run, p))
}

func (sim *Simulator) handleDepart(p *Process) {
	sim.Memory.Release(p)
	sim.Metrics.Departures++
	sim.record(trace.KindRemove, p, nil)
	p.Advance()
}

// onCompact charges compaction time: the clock jumps forward and every
// pending event is delayed by the same amount before the placement retry.
func (sim *Simulator) onCompact(p *Process, res CompactionResult) {
	sim.record(trace.KindDefragStart, p, func(r *trace.Record) { r.Layout = "" })
	sim.advanceClock(sim.Clock + res.Elapsed)
	sim.Events.Shift(res.Elapsed)
	sim.Metrics.Compactions++
	sim.Metrics.FramesMoved += res.FramesMoved
	sim.Metrics.CompactionTime += res.Elapsed
	sim.record(trace.KindDefragFinish, p, func(r *trace.Record) {
		r.Frames = res.FramesMoved
		r.Moved = append([]string(nil), res.Moved...)
	})
}

// advanceClock moves the clock to t, integrating frame usage over the elapsed interval.
func (sim *Simulator) advanceClock(t int64) {
	if t < sim.Clock {
		panic(fmt.Sprintf("advanceClock: time went backwards from %d to %d", sim.Clock, t))
	}
	sim.Metrics.FrameTimeUsed += int64(sim.Memory.UsedFrameCount()) * (t - sim.Clock)
	sim.Clock = t
}

// record appends a snapshot of the current state to the trace, if one is attached.
func (sim *Simulator) record(kind trace.RecordKind, p *Process, fill func(*trace.Record)) {
	if sim.Trace == nil {
		return
	}
	r := trace.Record{
		Clock:      sim.Clock,
		Kind:       kind,
		Layout:     sim.Memory.Layout(),
		FreeFrames: sim.Memory.FreeFrameCount(),
	}
	if p != nil {
		r.ProcessID = p.ID
	}
	for _, q := range sim.Memory.resident {
		r.ResidentIDs = append(r.ResidentIDs, q.ID)
	}
	if !sim.Config.Algorithm.Contiguous {
		r.PageTable = sim.pageTableSnapshot()
	}
	if fill != nil {
		fill(&r)
	}
	sim.Trace.Record(r)
}

func (sim *Simulator) pageTableSnapshot() map[string][]trace.PageEntry {
	out := make(map[string][]trace.PageEntry, len(sim.Memory.PageTable))
	for id, table := range sim.Memory.PageTable {
		entries := make([]trace.PageEntry, len(table))
		for i, pf := range table {
			entries[i] = trace.PageEntry{Page: pf.Page, Frame: pf.Frame}
		}
		out[id] = entries
	}
	return out
}
