package extract

import (
	"errors"
	"fmt"

	"github.com/kilianp07/shiftplan/core/logger"
	"github.com/kilianp07/shiftplan/core/model"
)

// tripDraft is a trip as read from its blocks, before the date and derived
// fields are resolved.
type tripDraft struct {
	trip  model.Trip
	block Block
}

// Document is the extraction result for one schedule document.
type Document struct {
	Name       string       `json:"name"`
	ContractID string       `json:"contract_id"`
	Layout     Layout       `json:"layout"`
	Contract   ContractInfo `json:"contract"`
	Pages      int          `json:"pages"`
	Trips      []model.Trip `json:"trips"`
}

// StopRecord is a stop keyed by its trip.
type StopRecord struct {
	model.TripKey
	model.Stop
}

// Stops flattens the stops of every trip in document order.
func (d *Document) Stops() []StopRecord {
	var out []StopRecord
	for _, t := range d.Trips {
		for _, s := range t.Stops {
			out = append(out, StopRecord{TripKey: t.Key(), Stop: s})
		}
	}
	return out
}

// Extractor converts page text into trips.
type Extractor struct {
	cfg Config
	log logger.Logger
}

// NewExtractor returns an Extractor. A nil logger discards output.
func NewExtractor(cfg Config, log logger.Logger) *Extractor {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Extractor{cfg: cfg, log: log}
}

// Extract reads the pages of one document in order. The result depends only
// on the page text: extracting the same pages twice yields equal documents.
func (e *Extractor) Extract(name string, pages []string) (*Document, error) {
	if len(pages) == 0 {
		return nil, &DocumentError{Document: name, Err: ErrMissingContractHeader}
	}
	doc := &Document{Name: name, Pages: len(pages)}

	var carry Carry
	groups := newBlockGroups()
	for i, text := range pages {
		seg, next, err := SegmentPage(i+1, text, carry, e.cfg)
		if err != nil {
			return nil, withDocument(name, err)
		}
		carry = next
		if i == 0 {
			doc.ContractID = seg.ContractID
			doc.Contract = parseContractInfo(pageLines(text))
		}
		e.log.Debugw("page segmented", map[string]any{
			"document": name,
			"page":     seg.Page,
			"contract": seg.ContractID,
			"layout":   seg.Layout.String(),
			"blocks":   len(seg.Blocks),
		})
		for _, b := range seg.Blocks {
			groups.add(parserFor(b.Layout).groupKey(b), b)
		}
	}
	doc.Layout = carry.Layout

	if groups.size() == 0 {
		return nil, &DocumentError{Document: name, Err: ErrNoTripsFound}
	}
	seen := make(map[string]bool, groups.size())
	for _, blocks := range groups.ordered() {
		draft, err := parserFor(blocks[0].Layout).buildTrip(name, blocks)
		if err != nil {
			return nil, withDocument(name, err)
		}
		if seen[draft.trip.ID] {
			return nil, blockErr(name, draft.block, fmt.Errorf("%w %s", ErrDuplicateTrip, draft.trip.ID))
		}
		seen[draft.trip.ID] = true
		trip, err := finalizeTrip(name, draft)
		if err != nil {
			return nil, err
		}
		doc.Trips = append(doc.Trips, trip)
	}

	e.log.Infow("document extracted", map[string]any{
		"document": name,
		"contract": doc.ContractID,
		"layout":   doc.Layout.String(),
		"pages":    doc.Pages,
		"trips":    len(doc.Trips),
	})
	return doc, nil
}

// finalizeTrip resolves the trip date, checks the stop sequence and derives
// the start/end fields from the first and last stop.
func finalizeTrip(doc string, d tripDraft) (model.Trip, error) {
	t := d.trip
	if err := t.Validate(); err != nil {
		return model.Trip{}, blockErr(doc, d.block, fmt.Errorf("trip %s: %w", t.ID, err))
	}
	for _, s := range t.Stops {
		if s.Date != nil {
			t.Date = *s.Date
			break
		}
	}
	if t.Date.IsZero() {
		if d.block.PageDate == nil {
			return model.Trip{}, blockErr(doc, d.block, fmt.Errorf("trip %s: %w", t.ID, ErrMissingTripDate))
		}
		t.Date = *d.block.PageDate
	}

	first, last := t.FirstStop(), t.LastStop()
	t.StartLocation = first.Facility
	t.EndLocation = last.Facility
	t.StartTime = clockOr(first.Departure, first.Arrival)
	t.EndTime = clockOr(last.Arrival, last.Departure)
	return t, nil
}

func clockOr(primary, fallback *model.TimeOfDay) model.TimeOfDay {
	if primary != nil {
		return *primary
	}
	if fallback != nil {
		return *fallback
	}
	return 0
}

const maxContext = 160

func clip(s string) string {
	if len(s) <= maxContext {
		return s
	}
	return s[:maxContext] + "..."
}

func blockErr(doc string, b Block, err error) error {
	return &DocumentError{Document: doc, Page: b.Page, Context: clip(b.Text), Err: err}
}

func withDocument(name string, err error) error {
	var de *DocumentError
	if errors.As(err, &de) && de.Document == "" {
		de.Document = name
	}
	return err
}

// blockGroups keeps blocks grouped by trip in first-appearance order.
type blockGroups struct {
	keys   []string
	blocks map[string][]Block
}

func newBlockGroups() *blockGroups {
	return &blockGroups{blocks: make(map[string][]Block)}
}

func (g *blockGroups) add(key string, b Block) {
	if _, ok := g.blocks[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.blocks[key] = append(g.blocks[key], b)
}

func (g *blockGroups) size() int { return len(g.keys) }

func (g *blockGroups) ordered() [][]Block {
	out := make([][]Block, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, g.blocks[k])
	}
	return out
}
