package model

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock time expressed as seconds after midnight.
// Schedules print local times without a date, so no zone is attached.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from its components.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// Hours returns the time as fractional hours after midnight.
func (t TimeOfDay) Hours() float64 { return float64(t) / 3600 }

func (t TimeOfDay) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// MarshalText encodes the time as HH:MM:SS.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes HH:MM or HH:MM:SS.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parts := strings.Split(string(b), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("invalid time of day %q", string(b))
	}
	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid time of day %q: %w", string(b), err)
		}
		vals[i] = v
	}
	*t = NewTimeOfDay(vals[0], vals[1], vals[2])
	return nil
}
