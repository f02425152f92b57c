// Package sim provides the discrete-event memory allocation simulator.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - process.go: Process record (size, arrival/run bursts, cursor, placement)
//   - event.go and event_heap.go: Arrive/Depart events and their total order
//   - memory.go: the frame array, free regions, placement, compaction and paging
//   - placement.go: next/first/best fit selection rules and algorithm names
//   - simulator.go: the event loop and the arrive/depart state transitions
//
// # Architecture
//
// Sub-packages sit around the kernel:
//   - sim/workload/: process file ingestion, validation and seeded generation (see rng.go)
//   - sim/trace/: per-dispatch records, summaries and the text event log
//
// A Simulator owns exactly one MemoryStore and one EventHeap. Placement mutates
// processes in place, so independent runs must use CloneProcesses and a fresh
// Simulator (or Reset).
//
// # Time
//
// Time is simulated in ms. Compaction charges MoveCostPerFrame per relocated
// frame; the clock jumps by that amount and every pending event is delayed by it.
package sim
