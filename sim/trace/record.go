// Package trace provides per-dispatch recording for memory simulation runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// RecordKind identifies what a Record describes.
type RecordKind string

const (
	KindStart        RecordKind = "start"         // simulation began
	KindArrive       RecordKind = "arrive"        // a process arrived
	KindPlace        RecordKind = "place"         // the arriving process was placed
	KindDefragStart  RecordKind = "defrag-start"  // no region fit; compaction begins
	KindDefragFinish RecordKind = "defrag-finish" // compaction ended
	KindSkip         RecordKind = "skip"          // the arriving process could not be placed
	KindRemove       RecordKind = "remove"        // a process departed
	KindEnd          RecordKind = "end"           // pending set exhausted
)

// PageEntry maps one logical page to a physical frame.
type PageEntry struct {
	Page  int `json:"page"`
	Frame int `json:"frame"`
}

// Record captures one observable step of a run.
// Layout and PageTable are snapshots taken after the step was applied.
type Record struct {
	Clock       int64                  `json:"clock"`
	Kind        RecordKind             `json:"kind"`
	ProcessID   string                 `json:"process,omitempty"`
	Frames      int                    `json:"frames,omitempty"`       // frames requested (arrive) or moved (defrag-finish)
	Moved       []string               `json:"moved,omitempty"`        // processes relocated by compaction
	Layout      string                 `json:"layout,omitempty"`       // one tag byte per frame
	PageTable   map[string][]PageEntry `json:"page_table,omitempty"`   // paged runs only
	FreeFrames  int                    `json:"free_frames"`            // free frames after the step
	ResidentIDs []string               `json:"resident_ids,omitempty"` // residents in placement order
}
