package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoStops is returned for a trip without any stop.
	ErrNoStops = errors.New("trip has no stops")
	// ErrStopSequence is returned when stop numbers are not exactly 1..N in order.
	ErrStopSequence = errors.New("stop sequence is not contiguous from 1")
	// ErrStopTimes is returned when a stop departs before it arrives.
	ErrStopTimes = errors.New("stop departs before it arrives")
	// ErrNegativeTotals is returned for a trip with negative distance or duration.
	ErrNegativeTotals = errors.New("trip distance and duration must be non-negative")
)

// Stop is an ordered waypoint within a trip.
type Stop struct {
	Sequence   int           `json:"sequence"`
	FacilityID string        `json:"facility_id"`
	Facility   string        `json:"facility"`
	Arrival    *TimeOfDay    `json:"arrival,omitempty"`
	Departure  *TimeOfDay    `json:"departure,omitempty"`
	LoadUnload time.Duration `json:"load_unload,omitempty"`
	Vehicle    string        `json:"vehicle,omitempty"`
	Frequency  string        `json:"frequency,omitempty"`
	// Date is set only when the source row carried an explicit date.
	Date *time.Time `json:"date,omitempty"`
}

// TripKey identifies a trip inside a contract.
type TripKey struct {
	ContractID string `json:"contract_id"`
	TripID     string `json:"trip_id"`
}

func (k TripKey) String() string { return k.ContractID + ":" + k.TripID }

// Trip is the unit of scheduling. Trips are built once by extraction and
// only referenced afterwards.
type Trip struct {
	ID                  string    `json:"id"`
	ContractID          string    `json:"contract_id"`
	Date                time.Time `json:"trip_date"`
	StartTime           TimeOfDay `json:"start_time"`
	EndTime             TimeOfDay `json:"end_time"`
	StartLocation       string    `json:"start_location"`
	EndLocation         string    `json:"end_location"`
	Distance            float64   `json:"distance"` // miles
	Duration            float64   `json:"duration"` // hours
	DriveTime           float64   `json:"drive_time,omitempty"`
	RequiredDriverClass string    `json:"required_driver_class"`
	Vehicle             string    `json:"vehicle,omitempty"`
	Stops               []Stop    `json:"stops"`
}

// Key returns the (contract, trip) identity of t.
func (t Trip) Key() TripKey { return TripKey{ContractID: t.ContractID, TripID: t.ID} }

// Validate checks the structural invariants of a trip.
func (t Trip) Validate() error {
	if len(t.Stops) == 0 {
		return ErrNoStops
	}
	if t.Distance < 0 || t.Duration < 0 {
		return ErrNegativeTotals
	}
	for i, s := range t.Stops {
		if s.Sequence != i+1 {
			return fmt.Errorf("%w: position %d holds stop %d", ErrStopSequence, i+1, s.Sequence)
		}
		if s.Arrival != nil && s.Departure != nil && *s.Arrival > *s.Departure {
			return fmt.Errorf("%w: stop %d arrives %s departs %s", ErrStopTimes, s.Sequence, s.Arrival, s.Departure)
		}
	}
	return nil
}

// FirstStop and LastStop follow sequence order, which encodes the travel path.
func (t Trip) FirstStop() Stop { return t.Stops[0] }

func (t Trip) LastStop() Stop { return t.Stops[len(t.Stops)-1] }
