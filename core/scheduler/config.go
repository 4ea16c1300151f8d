package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config bounds the length of a shift in hours.
type Config struct {
	MinHours float64 `json:"min_hours" yaml:"min_hours" validate:"gt=0"`
	MaxHours float64 `json:"max_hours" yaml:"max_hours" validate:"gtefield=MinHours"`
}

// SetDefaults applies the 10 to 12 hour window used by contract schedules.
func (c *Config) SetDefaults() {
	if c.MinHours == 0 {
		c.MinHours = 10
	}
	if c.MaxHours == 0 {
		c.MaxHours = 12
	}
}

var validate = validator.New()

// Validate requires max_hours >= min_hours > 0.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid shift bounds [%g, %g]: %w", c.MinHours, c.MaxHours, err)
	}
	return nil
}

// LoadConfig loads Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err != nil {
		return Config{}, err
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		dec := json.NewDecoder(r)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}
