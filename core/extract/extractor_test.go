package extract

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/shiftplan/core/model"
)

func day(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

func TestExtractFlatTable(t *testing.T) {
	doc, err := NewExtractor(Config{}, nil).Extract("flat.txt", flatPages)
	require.NoError(t, err)

	assert.Equal(t, "031L0", doc.ContractID)
	assert.Equal(t, LayoutFlatTable, doc.Layout)
	assert.Equal(t, 2, doc.Pages)
	require.Len(t, doc.Trips, 3)

	t101 := doc.Trips[0]
	assert.Equal(t, "101", t101.ID)
	assert.Equal(t, "031L0", t101.ContractID)
	assert.True(t, day(6).Equal(t101.Date))
	assert.Equal(t, model.NewTimeOfDay(6, 30, 0), t101.StartTime)
	assert.Equal(t, model.NewTimeOfDay(8, 15, 0), t101.EndTime)
	assert.Equal(t, "ORLANDO P&DC", t101.StartLocation)
	assert.Equal(t, "TAMPA P&DC", t101.EndLocation)
	assert.Equal(t, 84.5, t101.Distance)
	assert.Equal(t, 3.5, t101.Duration)
	assert.Equal(t, "A", t101.RequiredDriverClass)
	require.Len(t, t101.Stops, 2)

	// trip 102 spans both pages and takes the schedule date of page 1
	t102 := doc.Trips[1]
	assert.Equal(t, "102", t102.ID)
	require.Len(t, t102.Stops, 2)
	assert.Equal(t, "LAKELAND", t102.EndLocation)
	assert.Equal(t, 1084.5, t102.Distance)
	assert.True(t, day(6).Equal(t102.Date))

	t103 := doc.Trips[2]
	assert.True(t, day(7).Equal(t103.Date))
	assert.Equal(t, model.NewTimeOfDay(13, 15, 0), t103.StartTime)
	assert.Equal(t, model.NewTimeOfDay(13, 0, 0), t103.EndTime)
}

func TestExtractFreeText(t *testing.T) {
	doc, err := NewExtractor(Config{}, nil).Extract("free.txt", freeTextPages)
	require.NoError(t, err)

	assert.Equal(t, LayoutFreeText, doc.Layout)
	assert.Equal(t, ContractInfo{
		HCRNumber:            "031L0",
		Destination:          "ORLANDO FL",
		SupplierName:         "ACME TRUCKING",
		SupplierPhone:        "407-555-0100",
		SupplierEmail:        "dispatch@acme.example",
		EstimatedAnnualMiles: "52340.5",
		EstimatedAnnualHours: "2100",
	}, doc.Contract)
	require.Len(t, doc.Trips, 2)

	first := doc.Trips[0]
	assert.Equal(t, "1001", first.ID)
	assert.Equal(t, "A", first.RequiredDriverClass)
	assert.Equal(t, "45FT", first.Vehicle)
	assert.Equal(t, 2.9, first.DriveTime)
	assert.Equal(t, model.NewTimeOfDay(6, 30, 0), first.StartTime)
	assert.Equal(t, model.NewTimeOfDay(8, 15, 0), first.EndTime)
	require.Len(t, first.Stops, 2)
	assert.Equal(t, "32099", first.Stops[0].FacilityID)
	assert.Equal(t, 30*time.Minute, first.Stops[0].LoadUnload)
	require.NotNil(t, first.Stops[0].Date)
	assert.Nil(t, first.Stops[1].Date)

	second := doc.Trips[1]
	assert.Equal(t, "1002", second.ID)
	assert.True(t, day(6).Equal(second.Date))
	assert.Equal(t, "000", second.Stops[0].FacilityID)
	assert.Equal(t, 75*time.Minute, second.Stops[1].LoadUnload)
	assert.Equal(t, 2.25, second.Duration)
	assert.Equal(t, "", second.Vehicle)
}

func TestExtractIsDeterministic(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	for _, pages := range [][]string{flatPages, freeTextPages} {
		a, err := e.Extract("doc", pages)
		require.NoError(t, err)
		b, err := e.Extract("doc", pages)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestExtractStopsContiguous(t *testing.T) {
	for _, pages := range [][]string{flatPages, freeTextPages} {
		doc, err := NewExtractor(Config{}, nil).Extract("doc", pages)
		require.NoError(t, err)
		for _, trip := range doc.Trips {
			for i, s := range trip.Stops {
				assert.Equal(t, i+1, s.Sequence, "trip %s", trip.ID)
			}
		}
	}
}

func TestDocumentStops(t *testing.T) {
	doc, err := NewExtractor(Config{}, nil).Extract("flat.txt", flatPages)
	require.NoError(t, err)
	stops := doc.Stops()
	require.Len(t, stops, 5)
	assert.Equal(t, model.TripKey{ContractID: "031L0", TripID: "102"}, stops[3].TripKey)
	assert.Equal(t, 2, stops[3].Sequence)
}

// A document without a contract header on page 1 yields no partial result.
func TestExtractMissingContractHeader(t *testing.T) {
	pages := []string{page(
		"Schedule Date: 01/06/2025",
		"Trip ID: 1001  Class: A",
		"1  32099  ORLANDO P&DC  06:00  30 min  06:30",
		"Trip Miles: 10  Trip Hours: 1",
	)}
	doc, err := NewExtractor(Config{}, nil).Extract("nohdr.txt", pages)
	assert.Nil(t, doc)
	require.ErrorIs(t, err, ErrMissingContractHeader)
	var de *DocumentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "nohdr.txt", de.Document)
	assert.Equal(t, 1, de.Page)

	_, err = NewExtractor(Config{}, nil).Extract("empty.txt", nil)
	assert.ErrorIs(t, err, ErrMissingContractHeader)
}

func TestExtractHeaderOutsideScanWindow(t *testing.T) {
	lines := []string{"SCHEDULE", "a", "b", "c", "d", "e", "Contract: 031L0"}
	_, err := NewExtractor(Config{HeaderScanLines: 5}, nil).Extract("late.txt", []string{page(lines...)})
	assert.ErrorIs(t, err, ErrMissingContractHeader)
}

// A free-text trip block without its miles/hours line aborts the document.
func TestExtractMissingTripSummary(t *testing.T) {
	pages := []string{page(
		"HCR# 031L0",
		"Schedule Date: 01/06/2025",
		"Trip ID: 1001",
		"1  32099  ORLANDO P&DC  06:00  30 min  06:30",
		"2  33630  TAMPA P&DC  08:15  20 min  08:35",
		"Trip ID: 1002",
		"1  33630  TAMPA P&DC  09:00  20 min  09:20",
		"Trip Miles: 10  Trip Hours: 1",
	)}
	doc, err := NewExtractor(Config{}, nil).Extract("nosum.txt", pages)
	assert.Nil(t, doc)
	require.ErrorIs(t, err, ErrMissingTripSummary)
	var de *DocumentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 1, de.Page)
	assert.Contains(t, de.Context, "Trip ID: 1001")
}

func TestExtractStructuralErrors(t *testing.T) {
	flat := func(rows ...string) []string {
		return []string{page(append([]string{
			"Contract: 031L0",
			"Trip ID  Stop  Facility  Arrive  Depart  Miles  Hours  Class  Trip Date",
		}, rows...)...)}
	}
	cases := []struct {
		name  string
		pages []string
		want  error
	}{
		{"gap in stops", flat(
			"101  1  A  06:00  06:30  10  1  A  01/06/2025",
			"101  3  B  07:00  07:30  10  1  A",
		), ErrStopSequence},
		{"arrival after departure", flat(
			"101  1  A  07:00  06:30  10  1  A  01/06/2025",
		), ErrStopTimes},
		{"no date", flat(
			"101  1  A  06:00  06:30  10  1  A",
		), ErrMissingTripDate},
		{"no trips", []string{page("Contract: 031L0", "nothing scheduled")}, ErrNoTripsFound},
		{"duplicate free-text trip", []string{page(
			"HCR# 031L0",
			"Schedule Date: 01/06/2025",
			"Trip ID: 1001",
			"1  32099  ORLANDO P&DC  06:00  30 min  06:30",
			"Trip Miles: 10  Trip Hours: 1",
			"Trip ID: 1001",
			"1  32099  ORLANDO P&DC  07:00  30 min  07:30",
			"Trip Miles: 10  Trip Hours: 1",
		)}, ErrDuplicateTrip},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			doc, err := NewExtractor(Config{}, nil).Extract("bad.txt", c.pages)
			assert.Nil(t, doc)
			assert.ErrorIs(t, err, c.want)
			var de *DocumentError
			assert.ErrorAs(t, err, &de)
		})
	}
}

func TestExtractFieldError(t *testing.T) {
	pages := []string{page(
		"Contract: 031L0",
		"Trip ID  Stop  Facility  Arrive  Depart  Miles  Hours  Class  Trip Date",
		"101  1  A  06:00  06:30  lots  1  A  01/06/2025",
	)}
	_, err := NewExtractor(Config{}, nil).Extract("bad.txt", pages)
	var fe *FieldParseError
	require.True(t, errors.As(err, &fe), "got %v", err)
	assert.Equal(t, "miles", fe.Field)
	assert.Equal(t, "lots", fe.Raw)
}

func TestExtractContractRestated(t *testing.T) {
	pages := append([]string{}, flatPages...)
	pages[1] = page(
		"Contract: 032M1",
		"Schedule Date: 01/08/2025",
		"Trip ID  Stop  Facility  Arrive  Depart  Miles  Hours  Class  Trip Date",
		"201  1  OCALA  05:00  05:10  12  1  A",
	)
	doc, err := NewExtractor(Config{}, nil).Extract("two.txt", pages)
	require.NoError(t, err)
	require.Len(t, doc.Trips, 3)
	assert.Equal(t, "031L0", doc.ContractID)
	last := doc.Trips[2]
	assert.Equal(t, "032M1", last.ContractID)
	assert.True(t, day(8).Equal(last.Date))
}

func TestExtractFlatTripRows(t *testing.T) {
	doc, err := NewExtractor(Config{}, nil).Extract("rows.txt", tripRowPages)
	require.NoError(t, err)
	assert.Equal(t, LayoutFlatTable, doc.Layout)
	require.Len(t, doc.Trips, 3)

	first := doc.Trips[0]
	assert.Equal(t, "1-1", first.ID)
	assert.True(t, day(6).Equal(first.Date))
	assert.Equal(t, model.NewTimeOfDay(6, 0, 0), first.StartTime)
	assert.Equal(t, model.NewTimeOfDay(8, 15, 0), first.EndTime)
	assert.Equal(t, "ORLANDO P&DC", first.StartLocation)
	assert.Equal(t, "TAMPA P&DC", first.EndLocation)
	assert.Equal(t, 84.5, first.Distance)
	assert.Equal(t, 3.5, first.Duration)
	assert.Equal(t, "A", first.RequiredDriverClass)
	require.Len(t, first.Stops, 2)
	assert.Equal(t, 1, first.Stops[0].Sequence)
	assert.Equal(t, 2, first.Stops[1].Sequence)

	assert.Equal(t, "1-2", doc.Trips[1].ID)
	assert.Equal(t, "B", doc.Trips[1].RequiredDriverClass)
	last := doc.Trips[2]
	assert.Equal(t, "2-1", last.ID)
	assert.True(t, day(7).Equal(last.Date))
	assert.Equal(t, "GAINESVILLE", last.EndLocation)

	again, err := NewExtractor(Config{}, nil).Extract("rows.txt", tripRowPages)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestExtractFreeTextTrailingColumns(t *testing.T) {
	doc, err := NewExtractor(Config{}, nil).Extract("upload.txt", uploadPages)
	require.NoError(t, err)
	assert.Equal(t, "031L0", doc.ContractID)
	assert.Equal(t, "031L0", doc.Contract.HCRNumber)
	require.Len(t, doc.Trips, 1)

	trip := doc.Trips[0]
	assert.True(t, day(6).Equal(trip.Date))
	assert.Equal(t, "45FT 1234", trip.Vehicle)
	require.Len(t, trip.Stops, 2)
	for _, s := range trip.Stops {
		assert.Equal(t, "45FT 1234", s.Vehicle)
		assert.Equal(t, "1.0 MTWTF", s.Frequency)
		require.NotNil(t, s.Date)
		assert.True(t, day(6).Equal(*s.Date))
	}
	assert.Equal(t, 30*time.Minute, trip.Stops[0].LoadUnload)
}

// A stop row printed after the miles/hours line would otherwise be lost.
func TestExtractStopAfterSummary(t *testing.T) {
	pages := []string{page(
		"HCR# 031L0",
		"Schedule Date: 01/06/2025",
		"Trip ID: 1001",
		"1  32099  ORLANDO P&DC  06:00  30 min  06:30",
		"Trip Miles: 84.5  Trip Hours: 3.5",
		"2  33630  TAMPA P&DC  08:15  20 min  08:35",
	)}
	doc, err := NewExtractor(Config{}, nil).Extract("late.txt", pages)
	assert.Nil(t, doc)
	require.ErrorIs(t, err, ErrMissingTripSummary)
	var de *DocumentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "late.txt", de.Document)
	assert.Contains(t, de.Context, "TAMPA P&DC")

	// trailing footers are still ignored
	pages[0] = page(
		"HCR# 031L0",
		"Schedule Date: 01/06/2025",
		"Trip ID: 1001",
		"1  32099  ORLANDO P&DC  06:00  30 min  06:30",
		"Trip Miles: 84.5  Trip Hours: 3.5",
		"2 of 5",
	)
	doc, err = NewExtractor(Config{}, nil).Extract("late.txt", pages)
	require.NoError(t, err)
	require.Len(t, doc.Trips, 1)
}

func TestExtractDuplicateIDAfterNormalizing(t *testing.T) {
	free := []string{page(
		"HCR# 031L0",
		"Schedule Date: 01/06/2025",
		"Trip ID: 0101",
		"1  32099  ORLANDO P&DC  06:00  30 min  06:30",
		"Trip Miles: 10  Trip Hours: 1",
		"Trip ID: 101",
		"1  33630  TAMPA P&DC  07:00  30 min  07:30",
		"Trip Miles: 10  Trip Hours: 1",
	)}
	flat := []string{page(
		"Contract: 031L0",
		"Trip ID  Stop  Facility  Arrive  Depart  Miles  Hours  Class  Trip Date",
		"0101  1  A  06:00  06:30  10  1  A  01/06/2025",
		"101  2  B  07:00  07:30  10  1  A",
	)}

	_, err := NewExtractor(Config{}, nil).Extract("free.txt", free)
	require.ErrorIs(t, err, ErrDuplicateTrip)
	var de *DocumentError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Context, "Trip ID: 101")

	// flat-table rows of one trip group on the parsed id
	doc, err := NewExtractor(Config{}, nil).Extract("flat.txt", flat)
	require.NoError(t, err)
	require.Len(t, doc.Trips, 1)
	assert.Equal(t, "101", doc.Trips[0].ID)
	assert.Len(t, doc.Trips[0].Stops, 2)
}
