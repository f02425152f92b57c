// Defines the Process struct that models one competing process in the simulation.
// Tracks its frame requirement, its arrival/run windows and where it currently sits in memory.

package sim

import (
	"fmt"
	"strings"
)

// Burst is one admission window: the process arrives at Arrival and,
// if placed, stays resident for Run ms.
type Burst struct {
	Arrival int64 // Simulation time (ms) at which the process arrives
	Run     int64 // Residency length (ms) once placed
}

// NoLocation marks a process that has no contiguous placement.
const NoLocation = -1

// Process models a single process's lifecycle in the simulation.
// It is created once per input record and reused across its bursts; a fresh
// run must work on clones (see CloneProcesses) because placement mutates it.
type Process struct {
	ID     string  // Identity; tie-breaker for events and owner tag in the frame array
	Frames int     // Number of frames required while resident
	Bursts []Burst // Successive admission windows, in time order

	cursor    int   // Index of the active burst
	Location  int   // Starting frame when placed contiguously; NoLocation otherwise
	EnteredAt int64 // Clock at which the process last entered memory
	resident  bool
}

// NewProcess creates a process that is not resident and whose cursor points at its first burst.
func NewProcess(id string, frames int, bursts []Burst) *Process {
	return &Process{
		ID:       id,
		Frames:   frames,
		Bursts:   bursts,
		Location: NoLocation,
	}
}

// CurrentBurst returns the active burst.
// ok is false once every burst has been consumed.
func (p *Process) CurrentBurst() (b Burst, ok bool) {
	if p.cursor >= len(p.Bursts) {
		return Burst{}, false
	}
	return p.Bursts[p.cursor], true
}

// Advance moves the cursor to the next burst.
func (p *Process) Advance() {
	if p.cursor < len(p.Bursts) {
		p.cursor++
	}
}

// Cursor returns the index of the active burst.
func (p *Process) Cursor() int { return p.cursor }

// Resident reports whether the process currently owns frames.
func (p *Process) Resident() bool { return p.resident }

// Clone returns a pristine copy: cursor at the first burst, not resident.
func (p *Process) Clone() *Process {
	bursts := make([]Burst, len(p.Bursts))
	copy(bursts, p.Bursts)
	return NewProcess(p.ID, p.Frames, bursts)
}

// Tag returns the single character drawn in the frame dump for this process:
// the first byte of its ID. Ingestion only admits one-character IDs, so tags
// are distinct for any validated process set.
func (p *Process) Tag() byte {
	if p.ID == "" {
		return '?'
	}
	return p.ID[0]
}

func (p *Process) String() string {
	var sb strings.Builder
	for i, b := range p.Bursts {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%d/%d", b.Arrival, b.Run)
	}
	return fmt.Sprintf("PID %s: size=%d bursts=[%s] loc=%d entered=%d", p.ID, p.Frames, sb.String(), p.Location, p.EnteredAt)
}

// CloneProcesses deep-copies a process set so independent runs never share state.
func CloneProcesses(procs []*Process) []*Process {
	out := make([]*Process, len(procs))
	for i, p := range procs {
		out[i] = p.Clone()
	}
	return out
}
