package workload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/memsim/memsim/sim"
)

// maxGeneratedProcesses keeps generated IDs to single letters so every
// process draws with a distinct tag in frame dumps.
const maxGeneratedProcesses = 26

// GeneratorSpec describes a random workload.
// Generation is deterministic given the same spec.
type GeneratorSpec struct {
	Seed      int64   `yaml:"seed"`
	Processes int     `yaml:"processes"`  // 1..26, named A, B, C, ...
	MinFrames int     `yaml:"min_frames"` // inclusive
	MaxFrames int     `yaml:"max_frames"` // inclusive
	MaxBursts int     `yaml:"max_bursts"` // each process gets 1..MaxBursts bursts
	MeanGap   float64 `yaml:"mean_gap"`   // mean ms between a departure and the next arrival
	MeanRun   float64 `yaml:"mean_run"`   // mean residency in ms
}

// DefaultGeneratorSpec returns a small mixed workload for the default 256-frame store.
func DefaultGeneratorSpec() GeneratorSpec {
	return GeneratorSpec{
		Seed:      42,
		Processes: 10,
		MinFrames: 8,
		MaxFrames: 64,
		MaxBursts: 3,
		MeanGap:   200,
		MeanRun:   500,
	}
}

// Validate checks the generator bounds.
func (g GeneratorSpec) Validate() error {
	if g.Processes <= 0 || g.Processes > maxGeneratedProcesses {
		return fmt.Errorf("processes must be in [1, %d], got %d", maxGeneratedProcesses, g.Processes)
	}
	if g.MinFrames <= 0 || g.MaxFrames < g.MinFrames {
		return fmt.Errorf("frame range [%d, %d] is invalid", g.MinFrames, g.MaxFrames)
	}
	if g.MaxBursts <= 0 {
		return fmt.Errorf("max_bursts must be > 0, got %d", g.MaxBursts)
	}
	if g.MeanGap <= 0 || g.MeanRun <= 0 {
		return fmt.Errorf("mean_gap and mean_run must be > 0, got %g and %g", g.MeanGap, g.MeanRun)
	}
	return nil
}

// Generate creates a process set from g. Bursts of one process never overlap,
// so the result always passes WorkloadSpec.Validate.
func Generate(g GeneratorSpec) (*WorkloadSpec, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator spec: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(g.Seed))
	sizes := rng.ForSubsystem(sim.SubsystemSizes)
	gaps := rng.ForSubsystem(sim.SubsystemArrivals)
	runs := rng.ForSubsystem(sim.SubsystemRuns)
	counts := rng.ForSubsystem(sim.SubsystemBursts)

	spec := &WorkloadSpec{Processes: make([]ProcessSpec, 0, g.Processes)}
	for i := 0; i < g.Processes; i++ {
		ps := ProcessSpec{
			ID:     string(rune('A' + i)),
			Frames: g.MinFrames + sizes.Intn(g.MaxFrames-g.MinFrames+1),
		}
		n := 1 + counts.Intn(g.MaxBursts)
		// first arrival may be 0; later ones start strictly after the previous departure
		arrival := sampleExp(gaps, g.MeanGap) - 1
		for b := 0; b < n; b++ {
			run := sampleExp(runs, g.MeanRun)
			ps.Bursts = append(ps.Bursts, BurstSpec{Arrival: arrival, Run: run})
			arrival += run + sampleExp(gaps, g.MeanGap)
		}
		spec.Processes = append(spec.Processes, ps)
	}
	return spec, nil
}

// sampleExp draws an exponentially distributed duration, at least 1 ms.
func sampleExp(rng *rand.Rand, mean float64) int64 {
	v := int64(rng.ExpFloat64() * mean)
	if v < 1 {
		return 1
	}
	return v
}

// WriteLines writes s in the line format read by ParseProcessLines.
func (s *WorkloadSpec) WriteLines(w io.Writer) error {
	for _, p := range s.Processes {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s %d", p.ID, p.Frames)
		for _, b := range p.Bursts {
			fmt.Fprintf(&sb, " %d/%d", b.Arrival, b.Run)
		}
		sb.WriteString("\n")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// Save writes s in the line format to a local path or afs URL.
func (s *WorkloadSpec) Save(ctx context.Context, location string) error {
	var buf bytes.Buffer
	if err := s.WriteLines(&buf); err != nil {
		return err
	}
	URL := url.Normalize(location, file.Scheme)
	if err := afs.New().Upload(ctx, URL, file.DefaultFileOsMode, &buf); err != nil {
		return fmt.Errorf("writing process file: %w", err)
	}
	return nil
}
