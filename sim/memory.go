// sim/memory.go
package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/memsim/memsim/sim/trace"
)

// FreeTag is drawn for an unowned frame.
const FreeTag = '.'

// PageFrame maps one logical page of a process to the physical frame backing it.
type PageFrame struct {
	Page  int
	Frame int
}

// CompactionResult describes what one defragmentation pass did.
type CompactionResult struct {
	Elapsed     int64    // ms consumed moving frames
	FramesMoved int      // total frames relocated
	Moved       []string // IDs of relocated processes, in traversal order
}

// PlaceResult is the outcome of a contiguous placement attempt.
type PlaceResult struct {
	Placed     bool
	Compaction *CompactionResult // nil when no compaction ran
}

// MemoryStore is a fixed array of frames, each free or owned by exactly one process.
// It implements contiguous placement (next/first/best fit), compaction, and paged
// (non-contiguous) placement backed by a flat page table.
type MemoryStore struct {
	NumFrames        int                    // Total frames in the store
	FramesPerLine    int                    // Frames per row when rendered
	MoveCostPerFrame int64                  // ms to relocate one frame during compaction
	PageTable        map[string][]PageFrame // Process ID -> (page, frame) list; paged mode only

	// OnCompact, when set, runs after a placement-triggered compaction and
	// before the retry, so the caller can account for the time it consumed.
	OnCompact func(p *Process, res CompactionResult)

	frames     []*Process // nil means free
	resident   []*Process // ordered by Location, then ID
	usedFrames int        // tracked incrementally
	lastStart  int        // start of the last contiguous placement (next-fit cursor)
}

// NewMemoryStore creates an empty store from cfg. Panics on invalid geometry.
func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("MemoryStore: %v", err))
	}
	return &MemoryStore{
		NumFrames:        cfg.NumFrames,
		FramesPerLine:    cfg.FramesPerLine,
		MoveCostPerFrame: cfg.MoveCostPerFrame,
		PageTable:        make(map[string][]PageFrame),
		frames:           make([]*Process, cfg.NumFrames),
	}
}

// Reset frees every frame and forgets all residents and the next-fit cursor.
func (m *MemoryStore) Reset() {
	for _, p := range m.resident {
		p.resident = false
		p.Location = NoLocation
	}
	for i := range m.frames {
		m.frames[i] = nil
	}
	m.resident = nil
	m.PageTable = make(map[string][]PageFrame)
	m.usedFrames = 0
	m.lastStart = 0
}

// FreeFrameCount returns the number of frames not owned by any process.
func (m *MemoryStore) FreeFrameCount() int {
	return m.NumFrames - m.usedFrames
}

// UsedFrameCount returns the number of owned frames.
func (m *MemoryStore) UsedFrameCount() int {
	return m.usedFrames
}

// LastPlacedStart returns the next-fit cursor.
func (m *MemoryStore) LastPlacedStart() int {
	return m.lastStart
}

// Owner returns the process owning frame i, or nil if it is free.
func (m *MemoryStore) Owner(i int) *Process {
	return m.frames[i]
}

// FreeRegions scans the frame array once and returns maximal free runs in ascending start order.
// Regions are always recomputed from the frames; nothing is cached between calls.
func (m *MemoryStore) FreeRegions() []Region {
	var regions []Region
	start := -1
	for i, owner := range m.frames {
		if owner == nil {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			regions = append(regions, Region{Start: start, Length: i - start})
			start = -1
		}
	}
	if start >= 0 {
		regions = append(regions, Region{Start: start, Length: m.NumFrames - start})
	}
	return regions
}

// Residents returns the resident processes ordered by placement location.
func (m *MemoryStore) Residents() []*Process {
	out := make([]*Process, len(m.resident))
	copy(out, m.resident)
	return out
}

// Place admits p under strategy at time now. If no region fits but the store holds
// enough free frames in total, it compacts and retries exactly once; the retried
// placement is stamped with now plus the compaction time.
func (m *MemoryStore) Place(p *Process, strategy Strategy, now int64) PlaceResult {
	if m.TryPlace(p, strategy, now) {
		return PlaceResult{Placed: true}
	}
	if m.FreeFrameCount() < p.Frames {
		logrus.Debugf("MemoryStore: %d free frames cannot hold %s (%d frames)", m.FreeFrameCount(), p.ID, p.Frames)
		return PlaceResult{}
	}
	res := m.Compact()
	if m.OnCompact != nil {
		m.OnCompact(p, res)
	}
	placed := m.TryPlace(p, strategy, now+res.Elapsed)
	return PlaceResult{Placed: placed, Compaction: &res}
}

// TryPlace makes a single placement pass without compacting.
func (m *MemoryStore) TryPlace(p *Process, strategy Strategy, now int64) bool {
	m.mustNotBeResident(p, "TryPlace")
	fit, ok := fitFuncs[strategy]
	if !ok {
		panic(fmt.Sprintf("TryPlace: unhandled strategy %v", strategy))
	}
	start, ok := fit(m.FreeRegions(), p.Frames, m.lastStart)
	if !ok {
		return false
	}
	for i := start; i < start+p.Frames; i++ {
		m.frames[i] = p
	}
	m.usedFrames += p.Frames
	p.Location = start
	p.EnteredAt = now
	m.addResident(p)
	m.lastStart = start
	logrus.Debugf("MemoryStore: %s placed %s at frame %d (%d frames)", strategy, p.ID, start, p.Frames)
	return true
}

// PlacePaged admits p into any free frames, claiming them in ascending order
// and numbering them as logical pages 0..Frames-1. It fails only when the
// store lacks p.Frames free frames in total.
func (m *MemoryStore) PlacePaged(p *Process, now int64) bool {
	m.mustNotBeResident(p, "PlacePaged")
	if _, ok := m.PageTable[p.ID]; ok {
		panic(fmt.Sprintf("PlacePaged: page table already holds process id %s", p.ID))
	}
	if m.FreeFrameCount() < p.Frames {
		return false
	}
	table := make([]PageFrame, 0, p.Frames)
	for i := 0; i < m.NumFrames && len(table) < p.Frames; i++ {
		if m.frames[i] != nil {
			continue
		}
		m.frames[i] = p
		table = append(table, PageFrame{Page: len(table), Frame: i})
	}
	m.usedFrames += p.Frames
	m.PageTable[p.ID] = table
	p.Location = NoLocation
	p.EnteredAt = now
	m.addResident(p)
	logrus.Debugf("MemoryStore: paged %s into %d frames", p.ID, p.Frames)
	return true
}

// Release frees p's frames, through its page table when it has one,
// otherwise the contiguous run starting at its placement location.
func (m *MemoryStore) Release(p *Process) {
	if !p.resident {
		panic(fmt.Sprintf("Release: process %s is not resident", p.ID))
	}
	if table, ok := m.PageTable[p.ID]; ok {
		for _, pf := range table {
			m.frames[pf.Frame] = nil
		}
		delete(m.PageTable, p.ID)
	} else {
		for i := p.Location; i < p.Location+p.Frames; i++ {
			m.frames[i] = nil
		}
	}
	m.usedFrames -= p.Frames
	m.removeResident(p)
	p.Location = NoLocation
}

// Compact slides contiguous residents toward frame 0 in placement order.
// Each moved process costs Frames*MoveCostPerFrame ms. Residency and sizes
// never change; the next-fit cursor returns to the start of the array.
func (m *MemoryStore) Compact() CompactionResult {
	var res CompactionResult
	for _, p := range m.resident {
		if p.Location == NoLocation {
			continue
		}
		free := m.lowestFreeFrame()
		if free < 0 || free >= p.Location {
			continue
		}
		for i := p.Location; i < p.Location+p.Frames; i++ {
			m.frames[i] = nil
		}
		for i := free; i < free+p.Frames; i++ {
			m.frames[i] = p
		}
		p.Location = free
		res.FramesMoved += p.Frames
		res.Elapsed += int64(p.Frames) * m.MoveCostPerFrame
		res.Moved = append(res.Moved, p.ID)
	}
	m.lastStart = 0
	logrus.Infof("MemoryStore: compaction moved %d frames (%v) in %d ms", res.FramesMoved, res.Moved, res.Elapsed)
	return res
}

func (m *MemoryStore) lowestFreeFrame() int {
	for i, owner := range m.frames {
		if owner == nil {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) mustNotBeResident(p *Process, op string) {
	if p.resident {
		panic(fmt.Sprintf("%s: process %s is already resident", op, p.ID))
	}
	if p.Frames <= 0 {
		panic(fmt.Sprintf("%s: process %s must need > 0 frames, got %d", op, p.ID, p.Frames))
	}
}

// addResident inserts p keeping the set ordered by location, then ID.
func (m *MemoryStore) addResident(p *Process) {
	p.resident = true
	i := sort.Search(len(m.resident), func(i int) bool {
		q := m.resident[i]
		if q.Location != p.Location {
			return q.Location > p.Location
		}
		return q.ID > p.ID
	})
	m.resident = append(m.resident, nil)
	copy(m.resident[i+1:], m.resident[i:])
	m.resident[i] = p
}

func (m *MemoryStore) removeResident(p *Process) {
	p.resident = false
	for i, q := range m.resident {
		if q == p {
			m.resident = append(m.resident[:i], m.resident[i+1:]...)
			return
		}
	}
}

// Layout returns one tag byte per frame: the owner's tag, or FreeTag.
func (m *MemoryStore) Layout() string {
	buf := make([]byte, m.NumFrames)
	for i, owner := range m.frames {
		if owner == nil {
			buf[i] = FreeTag
		} else {
			buf[i] = owner.Tag()
		}
	}
	return string(buf)
}

// String renders the frames FramesPerLine per row between '=' borders.
func (m *MemoryStore) String() string {
	return trace.RenderLayout(m.Layout(), m.FramesPerLine)
}
