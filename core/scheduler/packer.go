package scheduler

import (
	"errors"
	"fmt"

	"github.com/kilianp07/shiftplan/core/model"
)

// ErrNegativeHours is returned when a stop has a negative duration.
var ErrNegativeHours = errors.New("stop duration is negative")

// Pack partitions stops, in order, into shifts bounded by [minHours, maxHours].
// Shift indexes start at 1. A predecessor emptied by the final rebalance is
// dropped.
func Pack(stops []model.PackStop, minHours, maxHours float64) ([]model.Shift, error) {
	if err := (Config{MinHours: minHours, MaxHours: maxHours}).Validate(); err != nil {
		return nil, err
	}
	for i, s := range stops {
		if s.Hours < 0 {
			return nil, fmt.Errorf("stop %d (%s): %w", i, s.Ref, ErrNegativeHours)
		}
	}

	var shifts []model.Shift
	var cur []model.PackStop
	hours := 0.0
	closeShift := func() {
		shifts = append(shifts, newShift(cur))
		cur = nil
		hours = 0
	}
	for _, s := range stops {
		if len(cur) > 0 && hours+s.Hours > maxHours {
			closeShift()
		}
		cur = append(cur, s)
		hours += s.Hours
		if hours >= maxHours {
			closeShift()
		}
	}
	if len(cur) > 0 {
		closeShift()
	}

	// One rebalance only; bounds are not re-checked after the move.
	if n := len(shifts); n >= 2 && shifts[n-1].TotalHours < minHours {
		prev, last := shifts[n-2].Stops, shifts[n-1].Stops
		moved := prev[len(prev)-1]
		shifts[n-2] = newShift(prev[:len(prev)-1])
		shifts[n-1] = newShift(append([]model.PackStop{moved}, last...))
		if len(shifts[n-2].Stops) == 0 {
			shifts = append(shifts[:n-2], shifts[n-1])
		}
	}

	for i := range shifts {
		shifts[i].Index = i + 1
	}
	return shifts, nil
}

// newShift copies members so shifts never share a backing array.
func newShift(stops []model.PackStop) model.Shift {
	sh := model.Shift{Stops: append([]model.PackStop(nil), stops...)}
	for _, s := range sh.Stops {
		sh.TotalHours += s.Hours
		sh.TotalMiles += s.Miles
	}
	return sh
}
