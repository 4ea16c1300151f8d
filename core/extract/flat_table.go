package extract

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/kilianp07/shiftplan/core/model"
)

// Flat tables come in two shapes, both with at least eight columns:
//
//	stop rows: trip id, stop, facility, arrive, depart, miles, hours, class [, trip date]
//	trip rows: trip date, start, end, from, to, miles, hours, class
//
// A row opening with a date is a trip row.
const flatMandatoryFields = 8

var (
	flatHeaderRe   = regexp.MustCompile(`(?i)\btrip\s*date\b`)
	flatContractRe = regexp.MustCompile(`(?i)\bcontract\s*:\s*(\S+)`)
)

type flatTable struct{}

func (flatTable) layout() Layout { return LayoutFlatTable }

func (flatTable) detect(lines []string) bool {
	for _, l := range lines {
		if flatHeaderRe.MatchString(l) {
			return true
		}
	}
	return false
}

func (flatTable) contractID(lines []string) (string, bool) {
	for _, l := range lines {
		if m := flatContractRe.FindStringSubmatch(l); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// segment emits one block per data row below the header row. Short rows and
// repeated headers are cosmetic and dropped.
func (flatTable) segment(page int, lines []string, cfg Config) ([]Block, error) {
	start := 0
	for i, l := range lines {
		if flatHeaderRe.MatchString(l) {
			start = i + 1
			break
		}
	}
	var blocks []Block
	for _, l := range lines[start:] {
		if flatHeaderRe.MatchString(l) {
			continue
		}
		fields := splitColumns(l)
		if len(fields) < cfg.MinRowFields || !leadingDigit.MatchString(fields[0]) {
			continue
		}
		blocks = append(blocks, Block{Layout: LayoutFlatTable, Page: page, Rows: [][]string{fields}, Text: l, Row: len(blocks) + 1})
	}
	return blocks, nil
}

func isTripRow(r []string) bool { return dateToken.MatchString(r[0]) }

// tripRowID names a trip-row trip by its position in the document, which is
// stable across runs over the same pages.
func tripRowID(b Block) string { return fmt.Sprintf("%d-%d", b.Page, b.Row) }

func (flatTable) groupKey(b Block) string {
	if isTripRow(b.Rows[0]) {
		return b.ContractID + ":" + tripRowID(b)
	}
	return tripKey(b.ContractID, b.Rows[0][0])
}

func (p flatTable) buildTrip(doc string, blocks []Block) (tripDraft, error) {
	if isTripRow(blocks[0].Rows[0]) {
		return p.buildTripRow(doc, blocks[0])
	}
	return p.buildStopRows(doc, blocks)
}

// buildTripRow turns one trip row into a trip whose origin and destination
// are stops 1 and 2.
func (flatTable) buildTripRow(doc string, b Block) (tripDraft, error) {
	f := b.Rows[0]
	date, err := ParseDate("trip_date", f[0])
	if err != nil {
		return tripDraft{}, blockErr(doc, b, err)
	}
	start, err := ParseTime("start", f[1])
	if err != nil {
		return tripDraft{}, blockErr(doc, b, err)
	}
	end, err := ParseTime("end", f[2])
	if err != nil {
		return tripDraft{}, blockErr(doc, b, err)
	}
	trip := model.Trip{
		ID:                  tripRowID(b),
		ContractID:          b.ContractID,
		RequiredDriverClass: Text(f[7], ""),
	}
	if trip.Distance, err = ParseDecimal("miles", f[5]); err != nil {
		return tripDraft{}, blockErr(doc, b, err)
	}
	if trip.Duration, err = ParseDecimal("hours", f[6]); err != nil {
		return tripDraft{}, blockErr(doc, b, err)
	}
	from, to := Text(f[3], "UNKNOWN"), Text(f[4], "UNKNOWN")
	trip.Stops = []model.Stop{
		{Sequence: 1, FacilityID: from, Facility: from, Departure: &start, Date: &date},
		{Sequence: 2, FacilityID: to, Facility: to, Arrival: &end},
	}
	return tripDraft{trip: trip, block: b}, nil
}

// buildStopRows assembles the rows of one trip. Miles and hours are trip
// totals repeated on every row; the first row is authoritative.
func (flatTable) buildStopRows(doc string, blocks []Block) (tripDraft, error) {
	first := blocks[0]
	f := first.Rows[0]
	id, err := ParseInteger("trip_id", f[0])
	if err != nil {
		return tripDraft{}, blockErr(doc, first, err)
	}
	trip := model.Trip{
		ID:                  strconv.Itoa(id),
		ContractID:          first.ContractID,
		RequiredDriverClass: Text(f[7], ""),
	}
	if trip.Distance, err = ParseDecimal("miles", f[5]); err != nil {
		return tripDraft{}, blockErr(doc, first, err)
	}
	if trip.Duration, err = ParseDecimal("hours", f[6]); err != nil {
		return tripDraft{}, blockErr(doc, first, err)
	}
	for _, b := range blocks {
		r := b.Rows[0]
		seq, err := ParseInteger("stop", r[1])
		if err != nil {
			return tripDraft{}, blockErr(doc, b, err)
		}
		arr, err := ParseTime("arrive", r[3])
		if err != nil {
			return tripDraft{}, blockErr(doc, b, err)
		}
		dep, err := ParseTime("depart", r[4])
		if err != nil {
			return tripDraft{}, blockErr(doc, b, err)
		}
		stop := model.Stop{Sequence: seq, FacilityID: r[2], Facility: r[2], Arrival: &arr, Departure: &dep}
		if len(r) > flatMandatoryFields {
			d, err := ParseDate("trip_date", r[flatMandatoryFields])
			if err != nil {
				return tripDraft{}, blockErr(doc, b, err)
			}
			stop.Date = &d
		}
		trip.Stops = append(trip.Stops, stop)
	}
	return tripDraft{trip: trip, block: first}, nil
}
