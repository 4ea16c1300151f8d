package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/shiftplan/core/assign"
	"github.com/kilianp07/shiftplan/core/extract"
	"github.com/kilianp07/shiftplan/core/journal"
	"github.com/kilianp07/shiftplan/core/metrics"
	"github.com/kilianp07/shiftplan/core/scheduler"
	"github.com/kilianp07/shiftplan/infra/store"
)

// EnvPrefix marks environment variables that override file settings.
// Nested keys use a double underscore: SHIFTPLAN_SCHEDULE__MIN_HOURS.
const EnvPrefix = "SHIFTPLAN_"

type Config struct {
	Log       LogConfig        `json:"log"`
	Extract   extract.Config   `json:"extract"`
	Schedule  scheduler.Config `json:"schedule"`
	Optimizer assign.Config    `json:"optimizer"`
	Store     store.Config     `json:"store"`
	Journal   journal.Config   `json:"journal"`
	Metrics   metrics.Config   `json:"metrics"`
}

// Load reads the configuration file at path, then applies .env and
// environment overrides. An empty path yields defaults plus overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Log.SetDefaults()
	c.Extract.SetDefaults()
	c.Schedule.SetDefaults()
	c.Optimizer.SetDefaults()
	c.Store.SetDefaults()
	c.Journal.SetDefaults()
}

// Validate checks every section and reports the first failure.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"log", c.Log.Validate},
		{"extract", c.Extract.Validate},
		{"schedule", c.Schedule.Validate},
		{"optimizer", c.Optimizer.Validate},
		{"store", c.Store.Validate},
		{"journal", c.Journal.Validate},
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			return fmt.Errorf("%s: %w", chk.name, err)
		}
	}
	return nil
}
