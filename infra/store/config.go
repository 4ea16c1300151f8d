package store

import "fmt"

// Config locates the planning database.
type Config struct {
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = "shiftplan.db"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("store path is required")
	}
	return nil
}
