package assign

import (
	"fmt"
	"time"
)

// DefaultTimeBudget bounds a Solve call when no budget is configured.
const DefaultTimeBudget = 10 * time.Second

// Config is the file representation of Options.
type Config struct {
	TimeBudgetSeconds  float64 `json:"time_budget_seconds"`
	EnforceDriverClass bool    `json:"enforce_driver_class"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeBudgetSeconds == 0 {
		c.TimeBudgetSeconds = DefaultTimeBudget.Seconds()
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.TimeBudgetSeconds <= 0 {
		return fmt.Errorf("time_budget_seconds must be positive")
	}
	return nil
}

// Options converts the configuration for Solve.
func (c Config) Options() Options {
	return Options{
		TimeBudget:         time.Duration(c.TimeBudgetSeconds * float64(time.Second)),
		EnforceDriverClass: c.EnforceDriverClass,
	}
}

// Options tunes a Solve call.
type Options struct {
	// TimeBudget is the wall-clock limit of the search. Zero means DefaultTimeBudget.
	TimeBudget time.Duration
	// EnforceDriverClass restricts each trip to drivers of its required class.
	EnforceDriverClass bool
}
