package trace

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// pagePairsPerLine is how many [page,frame] pairs a page table row holds.
const pagePairsPerLine = 10

// RenderLayout draws a tag string as rows of width framesPerLine between '=' borders.
func RenderLayout(layout string, framesPerLine int) string {
	var sb strings.Builder
	border := strings.Repeat("=", framesPerLine)
	sb.WriteString(border)
	for i := 0; i < len(layout); i += framesPerLine {
		end := min(i+framesPerLine, len(layout))
		sb.WriteString("\n")
		sb.WriteString(layout[i:end])
	}
	sb.WriteString("\n")
	sb.WriteString(border)
	return sb.String()
}

// RenderPageTable draws the page table, processes in ID order.
func RenderPageTable(table map[string][]PageEntry) string {
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	sb.WriteString("PAGE TABLE [page,frame]:")
	for _, id := range ids {
		sb.WriteString("\n")
		sb.WriteString(id)
		sb.WriteString(":")
		for i, pe := range table[id] {
			if i > 0 && i%pagePairsPerLine == 0 {
				sb.WriteString("\n")
			} else {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "[%d,%d]", pe.Page, pe.Frame)
		}
	}
	return sb.String()
}

// Renderer writes records as the human-readable event log.
type Renderer struct {
	w             io.Writer
	algorithm     string
	framesPerLine int
	paged         bool
}

// NewRenderer creates a Renderer for the run described by st.
func NewRenderer(w io.Writer, st *SimulationTrace) *Renderer {
	return &Renderer{w: w, algorithm: st.Algorithm, framesPerLine: st.FramesPerLine, paged: st.Paged}
}

// Render writes every record of st to w.
func Render(w io.Writer, st *SimulationTrace) error {
	r := NewRenderer(w, st)
	for _, rec := range st.Records {
		if err := r.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Write renders one record.
func (r *Renderer) Write(rec Record) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "time %dms: ", rec.Clock)
	withDump := false
	switch rec.Kind {
	case KindStart:
		fmt.Fprintf(&sb, "Simulator started (%s)", r.algorithm)
	case KindArrive:
		fmt.Fprintf(&sb, "Process %s arrived (requires %d frames)", rec.ProcessID, rec.Frames)
	case KindPlace:
		fmt.Fprintf(&sb, "Placed process %s:", rec.ProcessID)
		withDump = true
	case KindDefragStart:
		fmt.Fprintf(&sb, "Cannot place process %s -- starting defragmentation", rec.ProcessID)
	case KindDefragFinish:
		fmt.Fprintf(&sb, "Defragmentation complete (moved %d frames: %s)", rec.Frames, strings.Join(rec.Moved, ", "))
		withDump = true
	case KindSkip:
		fmt.Fprintf(&sb, "Cannot place process %s -- skipped!", rec.ProcessID)
	case KindRemove:
		fmt.Fprintf(&sb, "Process %s removed:", rec.ProcessID)
		withDump = true
	case KindEnd:
		fmt.Fprintf(&sb, "Simulator ended (%s)", r.algorithm)
	default:
		return fmt.Errorf("render: unknown record kind %q", rec.Kind)
	}
	if withDump && rec.Layout != "" {
		sb.WriteString("\n")
		sb.WriteString(RenderLayout(rec.Layout, r.framesPerLine))
		if r.paged {
			sb.WriteString("\n")
			sb.WriteString(RenderPageTable(rec.PageTable))
		}
	}
	sb.WriteString("\n")
	_, err := io.WriteString(r.w, sb.String())
	return err
}
