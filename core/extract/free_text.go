package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kilianp07/shiftplan/core/model"
)

// Free-text stop rows: stop, NASS code, facility, arrive, load/unload, depart.
// Trailing columns may carry the vehicle, frequency and effective/expiration
// dates; the dates are found by their shape, not their position.
const freeTextStopFields = 6

var (
	tripStartRe = regexp.MustCompile(`(?i)^trip\s*id\s*[:#]\s*(\S+)`)
	summaryRe   = regexp.MustCompile(`(?i)miles:\s*(\S+).*?hours:\s*(\S+)`)
	driveRe     = regexp.MustCompile(`(?i)drive(?:\s*time)?:\s*(\S+)`)
	classRe     = regexp.MustCompile(`(?i)\bclass:\s*(\S+)`)
	vehicleRe   = regexp.MustCompile(`(?i)\bvehicle:\s*(\S+)`)
	hcrRe       = regexp.MustCompile(`(?i)\bhcr\s*(?:#|no\.?|number|contract(?:\s*(?:#|no\.?|number))?)?\s*:?\s*([A-Z0-9][\w-]*)`)
	hasDigit    = regexp.MustCompile(`\d`)
)

type freeText struct{}

func (freeText) layout() Layout { return LayoutFreeText }

func (freeText) detect(lines []string) bool {
	for _, l := range lines {
		if tripStartRe.MatchString(l) {
			return true
		}
	}
	return false
}

func (freeText) contractID(lines []string) (string, bool) {
	for _, l := range lines {
		for _, m := range hcrRe.FindAllStringSubmatch(l, -1) {
			// contract ids always carry a digit; a bare word is a label
			if hasDigit.MatchString(m[1]) {
				return m[1], true
			}
		}
	}
	return "", false
}

// segment cuts the page at every "Trip ID" line. A block must close with a
// miles/hours summary line. Free text after the summary is ignored but a stop
// row there means the block was not understood.
func (freeText) segment(page int, lines []string, _ Config) ([]Block, error) {
	var blocks []Block
	var cur *Block
	flush := func() error {
		if cur == nil {
			return nil
		}
		if cur.Summary == "" {
			return &DocumentError{Page: page, Context: clip(cur.Text), Err: ErrMissingTripSummary}
		}
		blocks = append(blocks, *cur)
		cur = nil
		return nil
	}
	for _, l := range lines {
		if tripStartRe.MatchString(l) {
			if err := flush(); err != nil {
				return nil, err
			}
			cur = &Block{Layout: LayoutFreeText, Page: page, Header: l, Text: l}
			continue
		}
		if cur == nil {
			continue
		}
		if cur.Summary != "" {
			if f := splitColumns(l); len(f) >= freeTextStopFields && leadingDigit.MatchString(f[0]) {
				return nil, &DocumentError{Page: page, Context: clip(cur.Text + "\n" + l),
					Err: fmt.Errorf("%w: stop row after summary", ErrMissingTripSummary)}
			}
			continue
		}
		cur.Text += "\n" + l
		if summaryRe.MatchString(l) {
			cur.Summary = l
			continue
		}
		fields := splitColumns(l)
		if !leadingDigit.MatchString(fields[0]) {
			continue
		}
		if len(fields) < freeTextStopFields {
			return nil, &DocumentError{Page: page, Context: l,
				Err: fmt.Errorf("stop row has %d columns, want at least %d", len(fields), freeTextStopFields)}
		}
		cur.Rows = append(cur.Rows, fields)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (freeText) groupKey(b Block) string {
	m := tripStartRe.FindStringSubmatch(b.Header)
	return tripKey(b.ContractID, m[1])
}

func (freeText) buildTrip(doc string, blocks []Block) (tripDraft, error) {
	b := blocks[0]
	m := tripStartRe.FindStringSubmatch(b.Header)
	if len(blocks) > 1 {
		return tripDraft{}, blockErr(doc, blocks[1], fmt.Errorf("%w %s", ErrDuplicateTrip, m[1]))
	}
	id, err := ParseInteger("trip_id", m[1])
	if err != nil {
		return tripDraft{}, blockErr(doc, b, err)
	}
	trip := model.Trip{ID: strconv.Itoa(id), ContractID: b.ContractID}
	if c := classRe.FindStringSubmatch(b.Header); c != nil {
		trip.RequiredDriverClass = Text(c[1], "")
	}
	if v := vehicleRe.FindStringSubmatch(b.Header); v != nil {
		trip.Vehicle = Text(v[1], "")
	}

	sm := summaryRe.FindStringSubmatch(b.Summary)
	if trip.Distance, err = ParseDecimal("trip_miles", sm[1]); err != nil {
		return tripDraft{}, blockErr(doc, b, err)
	}
	if trip.Duration, err = ParseDecimal("trip_hours", sm[2]); err != nil {
		return tripDraft{}, blockErr(doc, b, err)
	}
	if d := driveRe.FindStringSubmatch(b.Summary); d != nil {
		if trip.DriveTime, err = ParseDecimal("drive_time", d[1]); err != nil {
			return tripDraft{}, blockErr(doc, b, err)
		}
	}

	for _, r := range b.Rows {
		seq, err := ParseInteger("stop", r[0])
		if err != nil {
			return tripDraft{}, blockErr(doc, b, err)
		}
		arr, err := ParseTime("arrive", r[3])
		if err != nil {
			return tripDraft{}, blockErr(doc, b, err)
		}
		load, err := ParseMinutes("load_unload", r[4])
		if err != nil {
			return tripDraft{}, blockErr(doc, b, err)
		}
		dep, err := ParseTime("depart", r[5])
		if err != nil {
			return tripDraft{}, blockErr(doc, b, err)
		}
		stop := model.Stop{
			Sequence:   seq,
			FacilityID: Text(r[1], "000"),
			Facility:   Text(r[2], "UNKNOWN"),
			Arrival:    &arr,
			Departure:  &dep,
			LoadUnload: load,
		}
		if err := readStopExtras(&stop, r[freeTextStopFields:]); err != nil {
			return tripDraft{}, blockErr(doc, b, err)
		}
		trip.Stops = append(trip.Stops, stop)
	}
	if trip.Vehicle == "" && len(trip.Stops) > 0 {
		trip.Vehicle = trip.Stops[0].Vehicle
	}
	return tripDraft{trip: trip, block: b}, nil
}

// readStopExtras reads the columns after depart. The first column starting
// with a date holds the effective date (an expiration date may follow it in
// the same column). Of the other columns the first is the vehicle and the
// rest form the frequency.
func readStopExtras(stop *model.Stop, cols []string) error {
	var rest []string
	for _, c := range cols {
		tok := strings.Fields(c)
		if stop.Date == nil && dateToken.MatchString(tok[0]) {
			d, err := ParseDate("effective_date", tok[0])
			if err != nil {
				return err
			}
			stop.Date = &d
			continue
		}
		if dateToken.MatchString(tok[0]) {
			continue
		}
		rest = append(rest, c)
	}
	if len(rest) > 0 {
		stop.Vehicle = Text(rest[0], "")
		stop.Frequency = Text(strings.Join(rest[1:], " "), "")
	}
	return nil
}
