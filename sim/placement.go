package sim

import (
	"fmt"
	"strings"
)

// Strategy selects how a contiguous free region is chosen.
type Strategy int

const (
	NextFit Strategy = iota
	FirstFit
	BestFit
)

var strategyNames = map[Strategy]string{
	NextFit:  "Next-Fit",
	FirstFit: "First-Fit",
	BestFit:  "Best-Fit",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Region is a maximal run of free frames.
type Region struct {
	Start  int
	Length int
}

// fitFunc picks the start of a region able to hold size frames.
// It is a pure function of the region list and the next-fit cursor.
type fitFunc func(regions []Region, size int, lastStart int) (start int, ok bool)

// fitFuncs is the dispatch table from strategy to selection rule.
var fitFuncs = map[Strategy]fitFunc{
	NextFit:  nextFit,
	FirstFit: firstFit,
	BestFit:  bestFit,
}

// firstFit takes the lowest-addressed region that is large enough.
func firstFit(regions []Region, size int, _ int) (int, bool) {
	for _, r := range regions {
		if r.Length >= size {
			return r.Start, true
		}
	}
	return 0, false
}

// bestFit takes the smallest region that is large enough; ties go to the leftmost.
func bestFit(regions []Region, size int, _ int) (int, bool) {
	best := -1
	for i, r := range regions {
		if r.Length < size {
			continue
		}
		if best < 0 || r.Length < regions[best].Length {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return regions[best].Start, true
}

// nextFit searches regions starting strictly after the last placement first,
// then wraps around to the regions at or before it.
func nextFit(regions []Region, size int, lastStart int) (int, bool) {
	for _, r := range regions {
		if r.Start > lastStart && r.Length >= size {
			return r.Start, true
		}
	}
	for _, r := range regions {
		if r.Start <= lastStart && r.Length >= size {
			return r.Start, true
		}
	}
	return 0, false
}

// Algorithm is one run configuration: a contiguous strategy or paged placement.
type Algorithm struct {
	Strategy   Strategy
	Contiguous bool
}

// Algorithm names accepted on the command line and in config files.
const (
	AlgorithmNextFit       = "next-fit"
	AlgorithmFirstFit      = "first-fit"
	AlgorithmBestFit       = "best-fit"
	AlgorithmNonContiguous = "non-contiguous"
)

// ValidAlgorithms is the set of recognized algorithm names.
var ValidAlgorithms = map[string]bool{
	AlgorithmNextFit:       true,
	AlgorithmFirstFit:      true,
	AlgorithmBestFit:       true,
	AlgorithmNonContiguous: true,
}

// DefaultAlgorithms is the order the driver runs a workload through.
var DefaultAlgorithms = []string{AlgorithmNextFit, AlgorithmFirstFit, AlgorithmBestFit, AlgorithmNonContiguous}

// ParseAlgorithm maps a name such as "best-fit" to its run configuration.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case AlgorithmNextFit:
		return Algorithm{Strategy: NextFit, Contiguous: true}, nil
	case AlgorithmFirstFit:
		return Algorithm{Strategy: FirstFit, Contiguous: true}, nil
	case AlgorithmBestFit:
		return Algorithm{Strategy: BestFit, Contiguous: true}, nil
	case AlgorithmNonContiguous:
		return Algorithm{Contiguous: false}, nil
	default:
		return Algorithm{}, fmt.Errorf("unknown algorithm %q", name)
	}
}

// Name returns the canonical name accepted by ParseAlgorithm.
func (a Algorithm) Name() string {
	if !a.Contiguous {
		return AlgorithmNonContiguous
	}
	return strings.ToLower(a.Strategy.String())
}

// String renders the banner label, e.g. "Contiguous -- Best-Fit".
func (a Algorithm) String() string {
	if !a.Contiguous {
		return "Non-contiguous"
	}
	return "Contiguous -- " + a.Strategy.String()
}
