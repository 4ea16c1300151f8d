package extract

import "fmt"

// Config holds extraction tunables.
type Config struct {
	// HeaderScanLines is how many leading lines of a page are searched for the contract header.
	HeaderScanLines int `json:"header_scan_lines"`
	// MinRowFields is the minimum column count of a flat-table stop row.
	MinRowFields int `json:"min_row_fields"`
	// MaxConcurrency bounds the number of documents extracted in parallel by ExtractBatch.
	MaxConcurrency int `json:"max_concurrency"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.HeaderScanLines == 0 {
		c.HeaderScanLines = 5
	}
	if c.MinRowFields == 0 {
		c.MinRowFields = flatMandatoryFields
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 4
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.HeaderScanLines < 1 {
		return fmt.Errorf("header_scan_lines must be positive")
	}
	if c.MinRowFields < flatMandatoryFields {
		return fmt.Errorf("min_row_fields must be at least %d", flatMandatoryFields)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be positive")
	}
	return nil
}
