package sim

import "fmt"

// Default memory geometry: 256 frames drawn 32 per line, 1 ms to move one frame.
const (
	DefaultNumFrames        = 256
	DefaultFramesPerLine    = 32
	DefaultMoveCostPerFrame = 1
)

// MemoryConfig groups the frame array geometry and the compaction cost model.
type MemoryConfig struct {
	NumFrames        int   `yaml:"frames"`          // total frames in the store (must be > 0)
	FramesPerLine    int   `yaml:"frames_per_line"` // frames per row in dumps (display only)
	MoveCostPerFrame int64 `yaml:"move_cost"`       // ms charged per frame relocated by compaction
}

// DefaultMemoryConfig returns the 256-frame store used when nothing is configured.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		NumFrames:        DefaultNumFrames,
		FramesPerLine:    DefaultFramesPerLine,
		MoveCostPerFrame: DefaultMoveCostPerFrame,
	}
}

// Validate checks that the geometry is usable.
func (c MemoryConfig) Validate() error {
	if c.NumFrames <= 0 {
		return fmt.Errorf("frames must be > 0, got %d", c.NumFrames)
	}
	if c.FramesPerLine <= 0 {
		return fmt.Errorf("frames_per_line must be > 0, got %d", c.FramesPerLine)
	}
	if c.MoveCostPerFrame < 0 {
		return fmt.Errorf("move_cost must be >= 0, got %d", c.MoveCostPerFrame)
	}
	return nil
}

// SimConfig is everything one simulator instance needs.
type SimConfig struct {
	Memory    MemoryConfig
	Algorithm Algorithm
}
