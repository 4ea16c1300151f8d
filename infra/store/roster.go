package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/shiftplan/core/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ReadRoster loads drivers from a .csv, .yaml or .yml file.
func ReadRoster(path string) ([]model.Driver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return DecodeRosterCSV(f)
	case ".yaml", ".yml":
		return DecodeRosterYAML(f)
	default:
		return nil, fmt.Errorf("unsupported roster format: %s", filepath.Ext(path))
	}
}

// DecodeRosterCSV reads drivers from CSV with a header row naming the columns
// id, name, driver_class, max_hours_per_day and home_base.
func DecodeRosterCSV(r io.Reader) ([]model.Driver, error) {
	var drivers []model.Driver
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if err := gocsv.UnmarshalCSV(reader, &drivers); err != nil {
		return nil, fmt.Errorf("decode roster csv: %w", err)
	}
	return drivers, validateRoster(drivers)
}

// DecodeRosterYAML accepts either a top-level list of drivers or a mapping
// with a drivers key.
func DecodeRosterYAML(r io.Reader) ([]model.Driver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var wrapped struct {
		Drivers []model.Driver `yaml:"drivers"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Drivers) > 0 {
		return wrapped.Drivers, validateRoster(wrapped.Drivers)
	}
	var drivers []model.Driver
	if err := yaml.Unmarshal(data, &drivers); err != nil {
		return nil, fmt.Errorf("decode roster yaml: %w", err)
	}
	return drivers, validateRoster(drivers)
}

func validateRoster(drivers []model.Driver) error {
	if len(drivers) == 0 {
		return errors.New("roster is empty")
	}
	seen := make(map[string]int, len(drivers))
	var errs []error
	for i, d := range drivers {
		if err := validate.Struct(d); err != nil {
			errs = append(errs, fmt.Errorf("driver %d (%s): %w", i+1, d.ID, err))
			continue
		}
		if prev, ok := seen[d.ID]; ok {
			errs = append(errs, fmt.Errorf("driver %d: id %s already used by driver %d", i+1, d.ID, prev))
			continue
		}
		seen[d.ID] = i + 1
	}
	return errors.Join(errs...)
}
