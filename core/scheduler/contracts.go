package scheduler

import (
	"github.com/kilianp07/shiftplan/core/model"
)

// PackStopsFromTrips turns each trip into one pack stop. The stops point back
// into trips, which must not be modified while the shifts are in use.
func PackStopsFromTrips(trips []model.Trip) []model.PackStop {
	out := make([]model.PackStop, len(trips))
	for i := range trips {
		t := &trips[i]
		out[i] = model.PackStop{
			Ref:      t.Key().String(),
			Facility: t.StartLocation,
			Hours:    t.Duration,
			Miles:    t.Distance,
			Trip:     t,
		}
	}
	return out
}

// PackContracts packs the trips of each contract separately. Contracts come
// out in order of first appearance; shift indexes restart at 1 per contract.
func PackContracts(trips []model.Trip, cfg Config) ([]model.Shift, error) {
	cfg.SetDefaults()
	stops := PackStopsFromTrips(trips)

	var order []string
	byContract := make(map[string][]model.PackStop)
	for _, s := range stops {
		c := s.Trip.ContractID
		if _, ok := byContract[c]; !ok {
			order = append(order, c)
		}
		byContract[c] = append(byContract[c], s)
	}

	var all []model.Shift
	for _, c := range order {
		shifts, err := Pack(byContract[c], cfg.MinHours, cfg.MaxHours)
		if err != nil {
			return nil, err
		}
		for i := range shifts {
			shifts[i].ContractID = c
			for _, s := range shifts[i].Stops {
				if d := s.Trip.Date; shifts[i].Date.IsZero() || d.Before(shifts[i].Date) {
					shifts[i].Date = d
				}
			}
		}
		all = append(all, shifts...)
	}
	return all, nil
}
