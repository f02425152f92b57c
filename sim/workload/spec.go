// Package workload turns process files into validated process sets for the simulator.
package workload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"

	"github.com/memsim/memsim/sim"
)

// ErrInvalidInput marks every ingestion failure; the whole file is rejected.
var ErrInvalidInput = errors.New("invalid input file format")

// WorkloadSpec is the YAML form of a process file.
type WorkloadSpec struct {
	Processes []ProcessSpec `yaml:"processes"`
}

// ProcessSpec describes one process.
type ProcessSpec struct {
	ID     string      `yaml:"id"`
	Frames int         `yaml:"frames"`
	Bursts []BurstSpec `yaml:"bursts"`
}

// BurstSpec is one arrival/run pair.
type BurstSpec struct {
	Arrival int64 `yaml:"arrival"`
	Run     int64 `yaml:"run"`
}

// Validate checks every process: a unique single-character ID, a positive frame
// count, at least one burst, non-negative arrivals, positive runs whose end fits
// in an int64, and bursts that do not overlap (each arrival strictly after the
// previous arrival+run).
func (s *WorkloadSpec) Validate() error {
	if len(s.Processes) == 0 {
		return fmt.Errorf("%w: no processes", ErrInvalidInput)
	}
	seen := make(map[string]bool, len(s.Processes))
	for _, p := range s.Processes {
		if err := p.validate(); err != nil {
			return err
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate process id %q", ErrInvalidInput, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

func (p ProcessSpec) validate() error {
	if !validID(p.ID) {
		return fmt.Errorf("%w: invalid process id %q: want one printable character other than %q",
			ErrInvalidInput, p.ID, sim.FreeTag)
	}
	if p.Frames <= 0 {
		return fmt.Errorf("%w: process %s: frames must be > 0, got %d", ErrInvalidInput, p.ID, p.Frames)
	}
	if len(p.Bursts) == 0 {
		return fmt.Errorf("%w: process %s: no arrival/run pairs", ErrInvalidInput, p.ID)
	}
	for i, b := range p.Bursts {
		if b.Arrival < 0 {
			return fmt.Errorf("%w: process %s: arrival must be >= 0, got %d", ErrInvalidInput, p.ID, b.Arrival)
		}
		if b.Run <= 0 {
			return fmt.Errorf("%w: process %s: run must be > 0, got %d", ErrInvalidInput, p.ID, b.Run)
		}
		if b.Arrival > math.MaxInt64-b.Run {
			return fmt.Errorf("%w: process %s: window %d/%d ends past the maximum time",
				ErrInvalidInput, p.ID, b.Arrival, b.Run)
		}
		if i > 0 {
			// prev already passed the bound above, so prev.Arrival+prev.Run cannot overflow
			prev := p.Bursts[i-1]
			if b.Arrival <= prev.Arrival+prev.Run {
				return fmt.Errorf("%w: process %s: arrival %d overlaps previous window %d/%d",
					ErrInvalidInput, p.ID, b.Arrival, prev.Arrival, prev.Run)
			}
		}
	}
	return nil
}

// validID accepts the single-character IDs drawn in frame dumps.
func validID(id string) bool {
	return len(id) == 1 && id[0] > ' ' && id[0] < 0x7f && id[0] != sim.FreeTag
}

// Build converts s into fresh simulator processes, in file order.
func (s *WorkloadSpec) Build() []*sim.Process {
	out := make([]*sim.Process, 0, len(s.Processes))
	for _, ps := range s.Processes {
		bursts := make([]sim.Burst, len(ps.Bursts))
		for i, b := range ps.Bursts {
			bursts[i] = sim.Burst{Arrival: b.Arrival, Run: b.Run}
		}
		out = append(out, sim.NewProcess(ps.ID, ps.Frames, bursts))
	}
	return out
}

// LoadWorkloadSpec reads a process file from a local path or any URL afs
// understands (file://, mem://, ...). Files ending in .yaml or .yml are parsed
// as YAML with strict field checking; anything else uses the line format.
func LoadWorkloadSpec(ctx context.Context, location string) (*WorkloadSpec, error) {
	URL := url.Normalize(location, file.Scheme)
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("reading process file: %w", err)
	}
	var spec *WorkloadSpec
	switch strings.ToLower(path.Ext(URL)) {
	case ".yaml", ".yml":
		spec, err = parseYAML(data)
	default:
		spec, err = ParseProcessLines(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	logrus.Debugf("loaded %d processes from %s", len(spec.Processes), URL)
	return spec, nil
}

// LoadProcesses reads and validates a process file and returns its processes.
func LoadProcesses(ctx context.Context, location string) ([]*sim.Process, error) {
	spec, err := LoadWorkloadSpec(ctx, location)
	if err != nil {
		return nil, err
	}
	return spec.Build(), nil
}

func parseYAML(data []byte) (*WorkloadSpec, error) {
	var spec WorkloadSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("%w: parsing process yaml: %v", ErrInvalidInput, err)
	}
	return &spec, nil
}
