// Tracks simulation-wide statistics such as placements, skips and compaction cost.

package sim

import (
	"fmt"
	"io"
)

// Metrics aggregates statistics about one simulation run
// for final reporting.
type Metrics struct {
	Arrivals       int   // Arrive events dispatched
	Placements     int   // Arrivals that were placed
	Skips          int   // Arrivals that could not be placed
	Departures     int   // Depart events dispatched
	Compactions    int   // Placement-triggered compactions
	FramesMoved    int   // Frames relocated across all compactions
	CompactionTime int64 // ms spent compacting
	PeakFramesUsed int   // Max number of simultaneously owned frames
	FrameTimeUsed  int64 // Integral of owned frames over simulated time (frame·ms)
	SimEndedTime   int64 // Clock when the pending set ran dry

	SkippedProcesses []string // IDs of skipped arrivals, in dispatch order
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{SkippedProcesses: make([]string, 0)}
}

// AverageUtilization is the time-weighted fraction of frames in use.
func (m *Metrics) AverageUtilization(numFrames int) float64 {
	if m.SimEndedTime <= 0 || numFrames <= 0 {
		return 0
	}
	return float64(m.FrameTimeUsed) / float64(m.SimEndedTime) / float64(numFrames)
}

// Fprint writes the metrics block to w.
func (m *Metrics) Fprint(w io.Writer, numFrames int) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Arrivals             : %d\n", m.Arrivals)
	fmt.Fprintf(w, "Placements           : %d\n", m.Placements)
	fmt.Fprintf(w, "Skips                : %d\n", m.Skips)
	fmt.Fprintf(w, "Departures           : %d\n", m.Departures)
	fmt.Fprintf(w, "Compactions          : %d\n", m.Compactions)
	fmt.Fprintf(w, "Frames Moved         : %d\n", m.FramesMoved)
	fmt.Fprintf(w, "Compaction Time      : %d ms\n", m.CompactionTime)
	fmt.Fprintf(w, "Peak Frames Used     : %d / %d\n", m.PeakFramesUsed, numFrames)
	fmt.Fprintf(w, "Average Utilization  : %.2f%%\n", 100*m.AverageUtilization(numFrames))
	fmt.Fprintf(w, "Simulation Ended     : %d ms\n", m.SimEndedTime)
}
