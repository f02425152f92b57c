package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultMemoryConfig(t *testing.T) {
	cfg := DefaultMemoryConfig()
	assert.Equal(t, MemoryConfig{NumFrames: 256, FramesPerLine: 32, MoveCostPerFrame: 1}, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestMemoryConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     MemoryConfig
		wantErr string
	}{
		{"zero frames", MemoryConfig{NumFrames: 0, FramesPerLine: 32, MoveCostPerFrame: 1}, "frames must be > 0, got 0"},
		{"negative frames per line", MemoryConfig{NumFrames: 8, FramesPerLine: -1, MoveCostPerFrame: 1}, "frames_per_line must be > 0, got -1"},
		{"negative move cost", MemoryConfig{NumFrames: 8, FramesPerLine: 8, MoveCostPerFrame: -2}, "move_cost must be >= 0, got -2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualError(t, tc.cfg.Validate(), tc.wantErr)
		})
	}
}

func TestMemoryConfig_Validate_FreeCompactionAllowed(t *testing.T) {
	assert.NoError(t, MemoryConfig{NumFrames: 1, FramesPerLine: 1, MoveCostPerFrame: 0}.Validate())
}
