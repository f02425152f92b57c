package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/memsim/memsim/internal/tracing"
	sim "github.com/memsim/memsim/sim"
	"github.com/memsim/memsim/sim/trace"
)

// runResult is what the driver keeps from one algorithm run.
type runResult struct {
	RunID     string
	Algorithm sim.Algorithm
	NumFrames int
	Metrics   *sim.Metrics
	Summary   *trace.TraceSummary
}

// runAlgorithm runs a fresh clone of procs through a fresh simulator.
// onRecord, when non-nil, observes every trace record as it is produced.
func runAlgorithm(ctx context.Context, procs []*sim.Process, mem sim.MemoryConfig, alg sim.Algorithm, onRecord func(trace.Record)) runResult {
	runID := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{"run": runID, "algorithm": alg.Name()})

	_, span := tracing.StartSpan(ctx, "simulate "+alg.Name())
	defer span.End()
	span.SetString("run.id", runID)

	s := sim.NewSimulator(sim.SimConfig{Memory: mem, Algorithm: alg})
	st := trace.NewSimulationTrace(runID, alg.String(), !alg.Contiguous, mem.FramesPerLine)
	st.OnRecord = func(r trace.Record) {
		if r.Kind == trace.KindDefragFinish {
			span.AddEvent("compaction", map[string]int64{"clock": r.Clock, "frames_moved": int64(r.Frames)})
		}
		if onRecord != nil {
			onRecord(r)
		}
	}
	s.Trace = st

	log.Infof("starting run over %d processes", len(procs))
	s.Run(sim.CloneProcesses(procs))

	m := s.Metrics
	span.SetInt(map[string]int64{
		"placements":      int64(m.Placements),
		"skips":           int64(m.Skips),
		"compactions":     int64(m.Compactions),
		"frames_moved":    int64(m.FramesMoved),
		"sim_ended_clock": m.SimEndedTime,
	})
	span.SetStatus(nil)
	log.Infof("run finished at %d ms: %d placed, %d skipped, %d compactions", m.SimEndedTime, m.Placements, m.Skips, m.Compactions)

	return runResult{
		RunID:     runID,
		Algorithm: alg,
		NumFrames: mem.NumFrames,
		Metrics:   m,
		Summary:   trace.Summarize(st),
	}
}

// parseAlgorithms maps names to run configurations, preserving order.
func parseAlgorithms(names []string) ([]sim.Algorithm, error) {
	algs := make([]sim.Algorithm, 0, len(names))
	for _, name := range names {
		alg, err := sim.ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		algs = append(algs, alg)
	}
	return algs, nil
}

// writeComparison prints one row per run so algorithms can be compared side by side.
func writeComparison(w io.Writer, results []runResult) {
	fmt.Fprintln(w, "=== Algorithm Comparison ===")
	fmt.Fprintf(w, "%-16s %8s %8s %8s %12s %12s %10s %8s\n",
		"algorithm", "arrived", "placed", "skipped", "compactions", "frames-moved", "end(ms)", "util")
	for _, r := range results {
		m := r.Metrics
		fmt.Fprintf(w, "%-16s %8d %8d %8d %12d %12d %10d %7.2f%%\n",
			r.Algorithm.Name(), m.Arrivals, m.Placements, m.Skips, m.Compactions, m.FramesMoved,
			m.SimEndedTime, 100*m.AverageUtilization(r.NumFrames))
		if len(m.SkippedProcesses) > 0 {
			fmt.Fprintf(w, "%-16s skipped: %s\n", "", strings.Join(m.SkippedProcesses, " "))
		}
	}
}
