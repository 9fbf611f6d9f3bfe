package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// simConfig sizes the arena and the workload. It can be loaded from YAML
// and then overridden by flags.
type simConfig struct {
	PrimarySize uint64 `yaml:"primary_size"`
	FrameSize   uint32 `yaml:"frame_size"`
	Levels      int    `yaml:"levels"`
	Frames      int    `yaml:"frames"`
	Particles   uint32 `yaml:"particles"`
	Debug       bool   `yaml:"debug"`
}

func defaultConfig() simConfig {
	return simConfig{
		PrimarySize: 1 << 20,
		FrameSize:   64 << 10,
		Levels:      3,
		Frames:      60,
		Particles:   256,
	}
}

// loadConfig reads path over the defaults. Keys missing from the file keep
// their default values.
func loadConfig(path string) (simConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return cfg, cfg.validate()
}

func (c simConfig) validate() error {
	switch {
	case c.PrimarySize == 0:
		return errors.New("primary_size must be positive")
	case c.FrameSize == 0:
		return errors.New("frame_size must be positive")
	case c.Levels < 0:
		return errors.Newf("levels must not be negative, got %d", c.Levels)
	case c.Frames < 0:
		return errors.Newf("frames must not be negative, got %d", c.Frames)
	}
	return nil
}
