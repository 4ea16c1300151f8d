package model

import "time"

// PackStop is one unit of work fed to the shift bin-packer.
type PackStop struct {
	Ref      string  `json:"ref"`
	Facility string  `json:"facility"`
	Hours    float64 `json:"hours"`
	Miles    float64 `json:"miles,omitempty"`
	// Trip points back to the source trip when the stop was derived from one.
	Trip *Trip `json:"-"`
}

// Shift is an hour-bounded run of stops produced by the heuristic packer.
type Shift struct {
	Index      int        `json:"index"`
	ContractID string     `json:"contract_id,omitempty"`
	Date       time.Time  `json:"date,omitempty"`
	Stops      []PackStop `json:"stops"`
	TotalHours float64    `json:"total_hours"`
	TotalMiles float64    `json:"total_miles"`
}

// DriverShift is a group of trips bound to one driver by the optimizer.
type DriverShift struct {
	ID         string    `json:"id"`
	DriverID   string    `json:"driver_id"`
	ShiftDate  time.Time `json:"shift_date"`
	Trips      []*Trip   `json:"trips"`
	TotalHours float64   `json:"total_hours"`
	TotalMiles float64   `json:"total_miles"`
}

// TripIDs lists member trip keys in order.
func (s DriverShift) TripIDs() []string {
	ids := make([]string, len(s.Trips))
	for i, t := range s.Trips {
		ids[i] = t.Key().String()
	}
	return ids
}
