package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	RunID       string   `json:"run_id"`
	Algorithm   string   `json:"algorithm"`
	Arrivals    int      `json:"arrivals"`
	Placed      int      `json:"placed"`
	Skipped     int      `json:"skipped"`
	Removed     int      `json:"removed"`
	Compactions int      `json:"compactions"`
	FramesMoved int      `json:"frames_moved"`
	EndClock    int64    `json:"end_clock"`
	MinFreeSeen int      `json:"min_free_frames"`
	SkippedIDs  []string `json:"skipped_ids,omitempty"`
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{MinFreeSeen: -1}
	if st == nil {
		summary.MinFreeSeen = 0
		return summary
	}
	summary.RunID = st.RunID
	summary.Algorithm = st.Algorithm

	for _, r := range st.Records {
		switch r.Kind {
		case KindArrive:
			summary.Arrivals++
		case KindPlace:
			summary.Placed++
		case KindSkip:
			summary.Skipped++
			summary.SkippedIDs = append(summary.SkippedIDs, r.ProcessID)
		case KindRemove:
			summary.Removed++
		case KindDefragFinish:
			summary.Compactions++
			summary.FramesMoved += r.Frames
		}
		if summary.MinFreeSeen < 0 || r.FreeFrames < summary.MinFreeSeen {
			summary.MinFreeSeen = r.FreeFrames
		}
		summary.EndClock = r.Clock
	}
	if summary.MinFreeSeen < 0 {
		summary.MinFreeSeen = 0
	}
	return summary
}
