package trace

// SimulationTrace collects the records of one simulation run.
type SimulationTrace struct {
	RunID         string
	Algorithm     string // banner label, e.g. "Contiguous -- Best-Fit"
	Paged         bool   // records carry page tables
	FramesPerLine int
	Records       []Record

	// OnRecord, when set, observes every record as it is appended.
	OnRecord func(Record)
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(runID, algorithm string, paged bool, framesPerLine int) *SimulationTrace {
	return &SimulationTrace{
		RunID:         runID,
		Algorithm:     algorithm,
		Paged:         paged,
		FramesPerLine: framesPerLine,
		Records:       make([]Record, 0),
	}
}

// Record appends r and notifies OnRecord.
func (st *SimulationTrace) Record(r Record) {
	st.Records = append(st.Records, r)
	if st.OnRecord != nil {
		st.OnRecord(r)
	}
}

// Last returns the most recent record.
func (st *SimulationTrace) Last() (Record, bool) {
	if len(st.Records) == 0 {
		return Record{}, false
	}
	return st.Records[len(st.Records)-1], true
}
