package model

import "fmt"

// Driver is a schedulable resource used by the assignment optimizer.
type Driver struct {
	ID             string  `json:"id" yaml:"id" csv:"id" validate:"required"`
	Name           string  `json:"name,omitempty" yaml:"name" csv:"name"`
	Class          string  `json:"driver_class" yaml:"driver_class" csv:"driver_class"`
	MaxHoursPerDay float64 `json:"max_hours_per_day" yaml:"max_hours_per_day" csv:"max_hours_per_day" validate:"gte=0,lte=24"`
	HomeBase       string  `json:"home_base,omitempty" yaml:"home_base" csv:"home_base"`
}

// Validate checks the driver can be used as solver input.
func (d Driver) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("driver id is required")
	}
	if d.MaxHoursPerDay < 0 {
		return fmt.Errorf("driver %s: max hours per day must be non-negative", d.ID)
	}
	return nil
}

// CanDrive reports whether the driver holds the class a trip requires.
// An empty requirement accepts any driver.
func (d Driver) CanDrive(t Trip) bool {
	return t.RequiredDriverClass == "" || t.RequiredDriverClass == d.Class
}
