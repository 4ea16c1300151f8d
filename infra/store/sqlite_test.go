package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/shiftplan/core/extract"
	"github.com/kilianp07/shiftplan/core/model"
)

func tod(h, m int) *model.TimeOfDay {
	t := model.NewTimeOfDay(h, m, 0)
	return &t
}

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "shiftplan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleDocument() *extract.Document {
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	return &extract.Document{
		Name:       "031L0.txt",
		ContractID: "031L0",
		Trips: []model.Trip{
			{
				ID: "1001", ContractID: "031L0", Date: day,
				StartTime: *tod(6, 0), EndTime: *tod(8, 15),
				StartLocation: "ORLANDO P&DC", EndLocation: "TAMPA P&DC",
				Distance: 84.5, Duration: 3.5, DriveTime: 2.9, RequiredDriverClass: "A", Vehicle: "45FT",
				Stops: []model.Stop{
					{Sequence: 1, FacilityID: "32099", Facility: "ORLANDO P&DC", Arrival: tod(6, 0),
						Departure: tod(6, 30), LoadUnload: 30 * time.Minute,
						Vehicle: "45FT 1234", Frequency: "1.0 MTWTF", Date: &day},
					{Sequence: 2, FacilityID: "33630", Facility: "TAMPA P&DC", Arrival: tod(8, 15)},
				},
			},
			{
				ID: "1002", ContractID: "031L0", Date: day,
				StartTime: *tod(9, 0), EndTime: *tod(11, 0),
				StartLocation: "TAMPA P&DC", EndLocation: "ORLANDO P&DC",
				Distance: 84.5, Duration: 3,
				Stops: []model.Stop{
					{Sequence: 1, FacilityID: "33630", Facility: "TAMPA P&DC", Departure: tod(9, 0)},
					{Sequence: 2, FacilityID: "32099", Facility: "ORLANDO P&DC", Arrival: tod(11, 0)},
				},
			},
		},
	}
}

func TestSaveAndLoadTrips(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	doc := sampleDocument()
	require.NoError(t, s.SaveDocument(ctx, doc))

	trips, err := s.LoadTrips(ctx, "031L0")
	require.NoError(t, err)
	assert.Equal(t, doc.Trips, trips)

	none, err := s.LoadTrips(ctx, "999X9")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveDocument_WriteOnce(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveDocument(ctx, sampleDocument()))

	again := sampleDocument()
	again.Trips = again.Trips[1:]
	again.Trips = append([]model.Trip{{ID: "2000", ContractID: "031L0", Stops: []model.Stop{{Sequence: 1}}}}, again.Trips...)
	err := s.SaveDocument(ctx, again)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTripExists))

	// the failed document is rolled back as a whole
	trips, err := s.LoadTrips(ctx, "031L0")
	require.NoError(t, err)
	assert.Len(t, trips, 2)
}

func TestSaveShifts(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	shifts := []model.Shift{
		{Index: 1, ContractID: "031L0", Stops: []model.PackStop{{Ref: "031L0:1001", Hours: 6}, {Ref: "031L0:1002", Hours: 5}}, TotalHours: 11},
		{Index: 2, ContractID: "031L0", Stops: []model.PackStop{{Ref: "031L0:1003", Hours: 4}}, TotalHours: 4},
	}
	require.NoError(t, s.SaveShifts(ctx, shifts))
	n, err := s.CountShifts(ctx, "031L0")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSaveDriverShifts(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	doc := sampleDocument()
	shifts := []model.DriverShift{
		{ID: "s1", DriverID: "d1", ShiftDate: doc.Trips[0].Date, Trips: []*model.Trip{&doc.Trips[0], &doc.Trips[1]}, TotalHours: 6.5, TotalMiles: 169},
	}
	require.NoError(t, s.SaveDriverShifts(ctx, shifts))
	got, err := s.DriverShiftTrips(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []model.TripKey{doc.Trips[0].Key(), doc.Trips[1].Key()}, got[0])
}

func TestDrivers(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	roster := []model.Driver{
		{ID: "d2", Name: "Bea", Class: "A", MaxHoursPerDay: 10},
		{ID: "d1", Name: "Al", Class: "B", MaxHoursPerDay: 12, HomeBase: "ORLANDO"},
	}
	require.NoError(t, s.SaveDrivers(ctx, roster))
	require.NoError(t, s.SaveDrivers(ctx, []model.Driver{{ID: "d2", Name: "Bea", Class: "A", MaxHoursPerDay: 11}}))

	got, err := s.LoadDrivers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d2", got[0].ID)
	assert.Equal(t, 11.0, got[0].MaxHoursPerDay)
	assert.Equal(t, roster[1], got[1])
}
