package sim

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(frames int) *MemoryStore {
	return NewMemoryStore(MemoryConfig{NumFrames: frames, FramesPerLine: 32, MoveCostPerFrame: 1})
}

func proc(id string, frames int) *Process {
	return NewProcess(id, frames, []Burst{{Arrival: 0, Run: 1}})
}

// placeAll places each process with FirstFit, failing the test on any miss.
func placeAll(t *testing.T, m *MemoryStore, procs ...*Process) {
	t.Helper()
	for _, p := range procs {
		require.True(t, m.TryPlace(p, FirstFit, 0), "placing %s", p.ID)
	}
}

// assertStoreInvariants checks conservation and disjointness: every resident owns
// exactly Frames cells, nobody else owns anything, and free + used == NumFrames.
func assertStoreInvariants(t *testing.T, m *MemoryStore) {
	t.Helper()
	owned := make(map[*Process]int)
	free := 0
	for i := 0; i < m.NumFrames; i++ {
		if o := m.Owner(i); o != nil {
			owned[o]++
		} else {
			free++
		}
	}
	assert.Equal(t, free, m.FreeFrameCount(), "free count drifted from frame array")
	sum := 0
	for _, p := range m.Residents() {
		assert.Equal(t, p.Frames, owned[p], "process %s owns wrong number of frames", p.ID)
		sum += p.Frames
		delete(owned, p)
	}
	assert.Empty(t, owned, "frames owned by non-resident processes")
	assert.Equal(t, m.NumFrames, m.FreeFrameCount()+sum)
}

func TestMemoryStore_Empty_SingleRegion(t *testing.T) {
	// GIVEN an empty 256-frame store
	m := NewMemoryStore(DefaultMemoryConfig())

	// THEN the whole store is one free region
	assert.Equal(t, []Region{{Start: 0, Length: 256}}, m.FreeRegions())
	assert.Equal(t, 256, m.FreeFrameCount())
}

func TestMemoryStore_FreeRegions_RunReachingLastFrame(t *testing.T) {
	// GIVEN frame 4 owned in an otherwise empty store
	m := newTestStore(256)
	placeAll(t, m, proc("x", 4), proc("a", 1))
	m.Release(m.Owner(0))

	// THEN regions split around frame 4, and the tail run ends at the final frame
	assert.Equal(t, []Region{{0, 4}, {5, 251}}, m.FreeRegions())
	assert.Equal(t, 255, m.FreeFrameCount())
}

func TestMemoryStore_FirstFit_EmptyStore_PlacesAtZero(t *testing.T) {
	m := NewMemoryStore(DefaultMemoryConfig())
	a := proc("A", 6)

	res := m.Place(a, FirstFit, 0)

	assert.True(t, res.Placed)
	assert.Nil(t, res.Compaction)
	assert.Equal(t, 0, a.Location)
	assert.Equal(t, int64(0), a.EnteredAt)
	assert.True(t, a.Resident())
	assert.Equal(t, []Region{{6, 250}}, m.FreeRegions())
	assertStoreInvariants(t, m)
}

// gappedStore returns a 60-frame store whose free regions are [(0,4),(10,50)].
func gappedStore(t *testing.T) *MemoryStore {
	m := newTestStore(60)
	filler := proc("f", 4)
	placeAll(t, m, filler, proc("X", 6))
	m.Release(filler)
	require.Equal(t, []Region{{0, 4}, {10, 50}}, m.FreeRegions())
	return m
}

func TestMemoryStore_BestFit_SkipsTooSmallRegion(t *testing.T) {
	m := gappedStore(t)
	p := proc("P", 6)

	require.True(t, m.Place(p, BestFit, 0).Placed)
	assert.Equal(t, 10, p.Location)
}

func TestMemoryStore_BestFit_PicksSmallestQualifyingRegion(t *testing.T) {
	// GIVEN free regions of 8, 5 and 20 frames
	m := newTestStore(60)
	g1, g2 := proc("g1", 8), proc("g2", 5)
	placeAll(t, m, g1, proc("X", 2), g2, proc("Y", 25))
	m.Release(g1)
	m.Release(g2)
	require.Equal(t, []Region{{0, 8}, {10, 5}, {40, 20}}, m.FreeRegions())

	// WHEN a 5-frame process is placed with BestFit
	p := proc("P", 5)
	require.True(t, m.Place(p, BestFit, 0).Placed)

	// THEN it lands in the exact-size region
	assert.Equal(t, 10, p.Location)
}

func TestMemoryStore_BestFit_TieGoesLeftmost(t *testing.T) {
	regions := []Region{{0, 3}, {5, 6}, {20, 6}, {30, 40}}
	start, ok := bestFit(regions, 6, 0)
	assert.True(t, ok)
	assert.Equal(t, 5, start)
}

func TestMemoryStore_NextFit_SearchesAfterCursorFirst(t *testing.T) {
	// GIVEN a 100-frame store with holes at [10,15) and [60,80) and the cursor at 50
	m := newTestStore(100)
	g1, p3, g2 := proc("g1", 5), proc("P3", 10), proc("g2", 20)
	placeAll(t, m, proc("P1", 10), g1, proc("P2", 35), p3, g2, proc("P4", 20))
	m.Release(p3)
	placeAll(t, m, p3)
	m.Release(g1)
	m.Release(g2)
	require.Equal(t, 50, m.LastPlacedStart())
	require.Equal(t, []Region{{10, 5}, {60, 20}}, m.FreeRegions())

	// WHEN an 8-frame process is placed with NextFit
	p := proc("N", 8)
	require.True(t, m.Place(p, NextFit, 0).Placed)

	// THEN it goes after the cursor, not into the earlier hole
	assert.Equal(t, 60, p.Location)
	assert.Equal(t, 60, m.LastPlacedStart())
}

func TestMemoryStore_NextFit_WrapsAround(t *testing.T) {
	// cursor 50; nothing after it fits, so the pass wraps to the front
	start, ok := nextFit([]Region{{10, 10}, {60, 5}}, 8, 50)
	assert.True(t, ok)
	assert.Equal(t, 10, start)

	// a region starting exactly at the cursor belongs to the wrapped pass
	start, ok = nextFit([]Region{{50, 10}, {70, 10}}, 5, 50)
	assert.True(t, ok)
	assert.Equal(t, 70, start)

	_, ok = nextFit([]Region{{10, 2}, {60, 2}}, 8, 50)
	assert.False(t, ok)
}

func TestMemoryStore_NextFit_EmptyStoreWrapsToZero(t *testing.T) {
	m := newTestStore(32)
	a := proc("A", 4)
	require.True(t, m.Place(a, NextFit, 0).Placed)
	assert.Equal(t, 0, a.Location)

	b := proc("B", 4)
	require.True(t, m.Place(b, NextFit, 0).Placed)
	assert.Equal(t, 4, b.Location)
}

func TestMemoryStore_FirstFit_TakesLowestFittingRegion(t *testing.T) {
	start, ok := firstFit([]Region{{0, 2}, {10, 8}, {30, 50}}, 8, 99)
	assert.True(t, ok)
	assert.Equal(t, 10, start)
}

func TestMemoryStore_Compact_SlidesProcessIntoGap(t *testing.T) {
	// GIVEN A at 0 (4 frames), a gap at [4,10), B at 10 (4 frames)
	m := NewMemoryStore(MemoryConfig{NumFrames: 20, FramesPerLine: 10, MoveCostPerFrame: 3})
	a, gap, b := proc("A", 4), proc("g", 6), proc("B", 4)
	placeAll(t, m, a, gap, b)
	m.Release(gap)
	before := m.FreeFrameCount()

	// WHEN compacted
	res := m.Compact()

	// THEN B moves to 4 at a cost of 4 frames × 3 ms
	assert.Equal(t, 4, b.Location)
	assert.Equal(t, 0, a.Location)
	assert.Equal(t, int64(12), res.Elapsed)
	assert.Equal(t, 4, res.FramesMoved)
	assert.Equal(t, []string{"B"}, res.Moved)
	assert.Equal(t, before, m.FreeFrameCount())
	assert.Equal(t, []Region{{8, 12}}, m.FreeRegions())
	assert.Equal(t, 0, m.LastPlacedStart())
	assert.Equal(t, "AAAABBBB............", m.Layout())
	assertStoreInvariants(t, m)
}

func TestMemoryStore_Compact_AlreadyPacked_NoCost(t *testing.T) {
	m := newTestStore(20)
	placeAll(t, m, proc("A", 4), proc("B", 4))

	res := m.Compact()

	assert.Zero(t, res.Elapsed)
	assert.Empty(t, res.Moved)
}

func TestMemoryStore_Place_CompactsAndRetriesOnce(t *testing.T) {
	// GIVEN 10 frames laid out as AA..BB..CC (4 free, no region of 4)
	m := newTestStore(10)
	a, g1, b, g2, c := proc("A", 2), proc("g1", 2), proc("B", 2), proc("g2", 2), proc("C", 2)
	placeAll(t, m, a, g1, b, g2, c)
	m.Release(g1)
	m.Release(g2)

	var hookCalls int
	m.OnCompact = func(p *Process, res CompactionResult) {
		hookCalls++
		assert.Equal(t, "D", p.ID)
		assert.False(t, p.Resident(), "hook runs before the retry")
	}

	// WHEN a 4-frame process arrives at t=100
	d := proc("D", 4)
	res := m.Place(d, FirstFit, 100)

	// THEN compaction moved B and C (4 frames) and D fits at the tail
	require.True(t, res.Placed)
	require.NotNil(t, res.Compaction)
	assert.Equal(t, []string{"B", "C"}, res.Compaction.Moved)
	assert.Equal(t, int64(4), res.Compaction.Elapsed)
	assert.Equal(t, 1, hookCalls)
	assert.Equal(t, 6, d.Location)
	assert.Equal(t, int64(104), d.EnteredAt)
	assert.Equal(t, "AABBCCDDDD", m.Layout())
	assertStoreInvariants(t, m)
}

func TestMemoryStore_Place_NotEnoughFreeFrames_NoCompaction(t *testing.T) {
	m := newTestStore(10)
	placeAll(t, m, proc("A", 8))
	m.OnCompact = func(*Process, CompactionResult) { t.Fatal("compaction must not run") }

	res := m.Place(proc("B", 3), BestFit, 0)

	assert.False(t, res.Placed)
	assert.Nil(t, res.Compaction)
}

func TestMemoryStore_Place_LargerThanStore_Fails(t *testing.T) {
	m := newTestStore(10)
	p := proc("Big", 11)

	assert.False(t, m.Place(p, FirstFit, 0).Placed)
	assert.False(t, m.PlacePaged(p, 0))
	assert.False(t, p.Resident())
}

func TestMemoryStore_PlacePaged_ClaimsFreeFramesInOrder(t *testing.T) {
	// GIVEN frames AA..BB.... (free: 2,3,6,7,8,9)
	m := newTestStore(10)
	g := proc("g", 2)
	placeAll(t, m, proc("A", 2), g, proc("B", 2))
	m.Release(g)

	// WHEN a 4-page process is placed
	p := proc("P", 4)
	require.True(t, m.PlacePaged(p, 7))

	// THEN pages 0..3 map to frames 2,3,6,7
	assert.Equal(t, []PageFrame{{0, 2}, {1, 3}, {2, 6}, {3, 7}}, m.PageTable["P"])
	assert.Equal(t, NoLocation, p.Location)
	assert.Equal(t, int64(7), p.EnteredAt)
	assert.Equal(t, "AAPPBBPP..", m.Layout())
	assertStoreInvariants(t, m)

	// WHEN released
	m.Release(p)

	// THEN its frames and page table entry are gone
	_, ok := m.PageTable["P"]
	assert.False(t, ok)
	assert.Equal(t, "AA..BB....", m.Layout())
	assertStoreInvariants(t, m)
}

func TestMemoryStore_PlacePaged_InsufficientFrames_Fails(t *testing.T) {
	m := newTestStore(10)
	require.True(t, m.PlacePaged(proc("A", 8), 0))

	assert.False(t, m.PlacePaged(proc("B", 3), 0))
	assert.Len(t, m.PageTable, 1)
}

func TestMemoryStore_Release_NonResident_Panics(t *testing.T) {
	m := newTestStore(10)
	assert.PanicsWithValue(t, "Release: process A is not resident", func() {
		m.Release(proc("A", 2))
	})
}

func TestMemoryStore_PlacePaged_DuplicateID_Panics(t *testing.T) {
	// GIVEN a resident paged process A
	m := newTestStore(10)
	first := proc("A", 2)
	require.True(t, m.PlacePaged(first, 0))

	// WHEN a distinct process with the same ID is paged in
	// THEN it fails fast instead of overwriting A's page table
	assert.PanicsWithValue(t, "PlacePaged: page table already holds process id A", func() {
		m.PlacePaged(proc("A", 3), 1)
	})
	assert.Len(t, m.PageTable["A"], 2)
	assert.Equal(t, 8, m.FreeFrameCount())
}

func TestMemoryStore_Place_AlreadyResident_Panics(t *testing.T) {
	m := newTestStore(10)
	a := proc("A", 2)
	placeAll(t, m, a)
	assert.PanicsWithValue(t, "TryPlace: process A is already resident", func() {
		m.Place(a, FirstFit, 0)
	})
	assert.PanicsWithValue(t, "PlacePaged: process A is already resident", func() {
		m.PlacePaged(a, 0)
	})
}

func TestNewMemoryStore_ZeroFrames_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "MemoryStore: frames must be > 0, got 0", func() {
		NewMemoryStore(MemoryConfig{NumFrames: 0, FramesPerLine: 32})
	})
}

func TestMemoryStore_Residents_OrderedByLocation(t *testing.T) {
	m := newTestStore(30)
	g := proc("g", 5)
	c, b := proc("C", 5), proc("B", 5)
	placeAll(t, m, g, c)
	m.Release(g)
	placeAll(t, m, b)

	ids := []string{}
	for _, p := range m.Residents() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"B", "C"}, ids)
}

func TestMemoryStore_Reset_RestoresEmptyStore(t *testing.T) {
	m := newTestStore(10)
	a := proc("A", 4)
	placeAll(t, m, a, proc("B", 2))
	require.True(t, m.PlacePaged(proc("C", 2), 0))

	m.Reset()

	assert.Equal(t, 10, m.FreeFrameCount())
	assert.Empty(t, m.Residents())
	assert.Empty(t, m.PageTable)
	assert.Equal(t, 0, m.LastPlacedStart())
	assert.False(t, a.Resident())
	assert.Equal(t, "..........", m.Layout())
}

func TestMemoryStore_String_RendersRowsBetweenBorders(t *testing.T) {
	m := NewMemoryStore(MemoryConfig{NumFrames: 8, FramesPerLine: 4, MoveCostPerFrame: 1})
	placeAll(t, m, proc("A", 3))

	assert.Equal(t, "====\nAAA.\n....\n====", m.String())
}

// TestMemoryStore_RandomOperations_PreserveInvariants drives every strategy through a
// deterministic random mix of placements, releases and compactions.
func TestMemoryStore_RandomOperations_PreserveInvariants(t *testing.T) {
	for _, strategy := range []Strategy{NextFit, FirstFit, BestFit} {
		for _, paged := range []bool{false, true} {
			rng := rand.New(rand.NewSource(7))
			m := newTestStore(64)
			var resident []*Process
			for step := 0; step < 500; step++ {
				switch op := rng.Intn(10); {
				case op < 5:
					p := proc(fmt.Sprintf("p%d", step), 1+rng.Intn(12))
					var ok bool
					if paged {
						ok = m.PlacePaged(p, int64(step))
					} else {
						ok = m.Place(p, strategy, int64(step)).Placed
					}
					if ok {
						resident = append(resident, p)
					}
				case op < 9 && len(resident) > 0:
					i := rng.Intn(len(resident))
					m.Release(resident[i])
					resident = append(resident[:i], resident[i+1:]...)
				case !paged:
					before := m.FreeFrameCount()
					order := m.Residents()
					m.Compact()
					assert.Equal(t, before, m.FreeFrameCount(), "compaction changed free count")
					assert.Equal(t, order, m.Residents(), "compaction changed residency or order")
					if m.FreeFrameCount() > 0 {
						regions := m.FreeRegions()
						require.Len(t, regions, 1)
						assert.Equal(t, m.NumFrames-m.FreeFrameCount(), regions[0].Start)
					}
				}
				assertStoreInvariants(t, m)
			}
		}
	}
}
