package workload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseProcessLines reads the line format:
//
//	# comment
//	A 45 0/350 400/50
//
// Each line holds an ID, a frame count and one or more arrival/run pairs.
// Blank lines and lines starting with '#' are ignored. Any malformed line
// rejects the whole input. Cross-line checks are left to Validate.
func ParseProcessLines(r io.Reader) (*WorkloadSpec, error) {
	spec := &WorkloadSpec{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: line %d: want <id> <frames> <arrival>/<run>..., got %q", ErrInvalidInput, lineNo, line)
		}
		frames, err := parseNatural(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: frames %q: %v", ErrInvalidInput, lineNo, fields[1], err)
		}
		ps := ProcessSpec{ID: fields[0], Frames: int(frames)}
		for _, pair := range fields[2:] {
			b, err := parseBurst(pair)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: pair %q: %v", ErrInvalidInput, lineNo, pair, err)
			}
			ps.Bursts = append(ps.Bursts, b)
		}
		spec.Processes = append(spec.Processes, ps)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading process lines: %w", err)
	}
	return spec, nil
}

func parseBurst(s string) (BurstSpec, error) {
	arrival, run, ok := strings.Cut(s, "/")
	if !ok || strings.Contains(run, "/") {
		return BurstSpec{}, fmt.Errorf("not an arrival/run pair")
	}
	a, err := parseNatural(arrival)
	if err != nil {
		return BurstSpec{}, fmt.Errorf("arrival: %v", err)
	}
	r, err := parseNatural(run)
	if err != nil {
		return BurstSpec{}, fmt.Errorf("run: %v", err)
	}
	return BurstSpec{Arrival: a, Run: r}, nil
}

// parseNatural accepts plain decimal digits only: no sign, no spaces.
func parseNatural(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a non-negative integer")
		}
	}
	return strconv.ParseInt(s, 10, 64)
}
