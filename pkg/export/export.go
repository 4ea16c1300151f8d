// Package export writes extraction and planning results as JSON or CSV.
package export

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/kilianp07/shiftplan/core/extract"
	"github.com/kilianp07/shiftplan/core/model"
)

const dateLayout = "2006-01-02"

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type tripRow struct {
	ContractID string  `csv:"contract_id"`
	TripID     string  `csv:"trip_id"`
	Date       string  `csv:"trip_date"`
	Start      string  `csv:"start_time"`
	End        string  `csv:"end_time"`
	From       string  `csv:"start_location"`
	To         string  `csv:"end_location"`
	Miles      float64 `csv:"distance"`
	Hours      float64 `csv:"duration"`
	DriveTime  float64 `csv:"drive_time"`
	Class      string  `csv:"required_driver_class"`
	Vehicle    string  `csv:"vehicle"`
	Stops      int     `csv:"stops"`
}

// WriteTripsCSV writes one row per trip.
func WriteTripsCSV(w io.Writer, trips []model.Trip) error {
	rows := make([]tripRow, len(trips))
	for i, t := range trips {
		rows[i] = tripRow{
			ContractID: t.ContractID,
			TripID:     t.ID,
			Date:       t.Date.Format(dateLayout),
			Start:      t.StartTime.String(),
			End:        t.EndTime.String(),
			From:       t.StartLocation,
			To:         t.EndLocation,
			Miles:      t.Distance,
			Hours:      t.Duration,
			DriveTime:  t.DriveTime,
			Class:      t.RequiredDriverClass,
			Vehicle:    t.Vehicle,
			Stops:      len(t.Stops),
		}
	}
	return gocsv.Marshal(&rows, w)
}

type stopRow struct {
	ContractID string `csv:"contract_id"`
	TripID     string `csv:"trip_id"`
	Sequence   int    `csv:"sequence"`
	FacilityID string `csv:"facility_id"`
	Facility   string `csv:"facility"`
	Arrival    string `csv:"arrival"`
	Departure  string `csv:"departure"`
	LoadUnload string `csv:"load_unload_min"`
	Vehicle    string `csv:"vehicle"`
	Frequency  string `csv:"frequency"`
	Date       string `csv:"date"`
}

// WriteStopsCSV writes one row per stop keyed by (contract, trip, sequence).
func WriteStopsCSV(w io.Writer, stops []extract.StopRecord) error {
	rows := make([]stopRow, len(stops))
	for i, s := range stops {
		r := stopRow{
			ContractID: s.ContractID,
			TripID:     s.TripID,
			Sequence:   s.Sequence,
			FacilityID: s.FacilityID,
			Facility:   s.Facility,
			Arrival:    clock(s.Arrival),
			Departure:  clock(s.Departure),
			Vehicle:    s.Vehicle,
			Frequency:  s.Frequency,
		}
		if s.LoadUnload > 0 {
			r.LoadUnload = strconv.FormatFloat(s.LoadUnload.Minutes(), 'f', -1, 64)
		}
		if s.Date != nil {
			r.Date = s.Date.Format(dateLayout)
		}
		rows[i] = r
	}
	return gocsv.Marshal(&rows, w)
}

type shiftRow struct {
	ContractID string  `csv:"contract_id"`
	Shift      int     `csv:"shift"`
	Date       string  `csv:"shift_date"`
	Position   int     `csv:"position"`
	Ref        string  `csv:"ref"`
	Facility   string  `csv:"facility"`
	Hours      float64 `csv:"hours"`
	ShiftHours float64 `csv:"shift_hours"`
}

// WriteShiftsCSV writes one row per member stop of each packed shift.
func WriteShiftsCSV(w io.Writer, shifts []model.Shift) error {
	var rows []shiftRow
	for _, sh := range shifts {
		date := ""
		if !sh.Date.IsZero() {
			date = sh.Date.Format(dateLayout)
		}
		for i, st := range sh.Stops {
			rows = append(rows, shiftRow{
				ContractID: sh.ContractID,
				Shift:      sh.Index,
				Date:       date,
				Position:   i + 1,
				Ref:        st.Ref,
				Facility:   st.Facility,
				Hours:      st.Hours,
				ShiftHours: sh.TotalHours,
			})
		}
	}
	return gocsv.Marshal(&rows, w)
}

type driverShiftRow struct {
	ShiftID    string  `csv:"shift_id"`
	DriverID   string  `csv:"driver_id"`
	Date       string  `csv:"shift_date"`
	Position   int     `csv:"position"`
	ContractID string  `csv:"contract_id"`
	TripID     string  `csv:"trip_id"`
	Hours      float64 `csv:"hours"`
	ShiftHours float64 `csv:"shift_hours"`
	ShiftMiles float64 `csv:"shift_miles"`
}

// WriteDriverShiftsCSV writes one row per trip of each driver shift.
func WriteDriverShiftsCSV(w io.Writer, shifts []model.DriverShift) error {
	var rows []driverShiftRow
	for _, sh := range shifts {
		for i, t := range sh.Trips {
			rows = append(rows, driverShiftRow{
				ShiftID:    sh.ID,
				DriverID:   sh.DriverID,
				Date:       sh.ShiftDate.Format(dateLayout),
				Position:   i + 1,
				ContractID: t.ContractID,
				TripID:     t.ID,
				Hours:      t.Duration,
				ShiftHours: sh.TotalHours,
				ShiftMiles: sh.TotalMiles,
			})
		}
	}
	return gocsv.Marshal(&rows, w)
}

func clock(t *model.TimeOfDay) string {
	if t == nil {
		return ""
	}
	return t.String()
}
