package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/smazurov/scrollkeep/internal/logging"
)

// Runtime holds the settings that can change while the daemon runs.
// Loaded fresh from the config file on every hot-reload.
type Runtime struct {
	PulseInterval time.Duration
	Logging       logging.Config
}

// LoadRuntime reads the hot-reloadable settings from a TOML config
// file. A zero PulseInterval means the file does not set one.
func LoadRuntime(configPath string) (Runtime, error) {
	rt := Runtime{Logging: LoadLoggingConfig(configPath)}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return rt, fmt.Errorf("failed to read config: %w", err)
	}

	var raw struct {
		Pulse struct {
			IntervalSeconds int `toml:"interval_seconds"`
		} `toml:"pulse"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return rt, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	rt.PulseInterval = time.Duration(raw.Pulse.IntervalSeconds) * time.Second
	return rt, nil
}
