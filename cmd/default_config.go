package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"

	sim "github.com/memsim/memsim/sim"
)

// Config represents the full defaults file structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Memory     sim.MemoryConfig `yaml:"memory"`
	Algorithms []string         `yaml:"algorithms"`
	LogLevel   string           `yaml:"log"`
}

// DefaultConfig returns the configuration used when no defaults file is given.
func DefaultConfig() Config {
	return Config{
		Memory:     sim.DefaultMemoryConfig(),
		Algorithms: append([]string(nil), sim.DefaultAlgorithms...),
		LogLevel:   "warn",
	}
}

// loadDefaultsConfig parses a defaults file, from a local path or afs URL, on top
// of DefaultConfig. Fields absent from the file keep their defaults; unknown fields are errors.
func loadDefaultsConfig(ctx context.Context, location string) (Config, error) {
	cfg := DefaultConfig()
	data, err := afs.New().DownloadWithURL(ctx, url.Normalize(location, file.Scheme))
	if err != nil {
		return cfg, fmt.Errorf("reading defaults file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing defaults file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the memory geometry and every algorithm name.
func (c Config) Validate() error {
	if err := c.Memory.Validate(); err != nil {
		return err
	}
	if len(c.Algorithms) == 0 {
		return fmt.Errorf("at least one algorithm required")
	}
	for _, name := range c.Algorithms {
		if !sim.ValidAlgorithms[name] {
			return fmt.Errorf("unknown algorithm %q", name)
		}
	}
	return nil
}
