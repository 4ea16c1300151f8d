package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout identifies a document layout family.
type Layout int

const (
	LayoutUnknown Layout = iota
	LayoutFlatTable
	LayoutFreeText
)

func (l Layout) String() string {
	switch l {
	case LayoutFlatTable:
		return "flat_table"
	case LayoutFreeText:
		return "free_text"
	default:
		return "unknown"
	}
}

// MarshalText encodes the layout name.
func (l Layout) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Carry is the state threaded from one page to the next.
type Carry struct {
	ContractID string
	PageDate   *time.Time
	Layout     Layout
}

// Block is one candidate trip block. Flat-table blocks hold a single row;
// free-text blocks hold the "Trip ID" line, every stop row and the summary.
type Block struct {
	Layout     Layout
	Page       int
	ContractID string
	PageDate   *time.Time
	Header     string
	Rows       [][]string
	Summary    string
	Text       string

	// Row is the 1-based position of a flat-table row among the data rows of its page.
	Row int
}

// PageSegment is the segmenter output for one page.
type PageSegment struct {
	Page       int
	ContractID string
	PageDate   *time.Time
	Layout     Layout
	Blocks     []Block
}

// layoutParser is one layout family. The set is closed: see layouts.
type layoutParser interface {
	layout() Layout
	detect(lines []string) bool
	contractID(lines []string) (string, bool)
	segment(page int, lines []string, cfg Config) ([]Block, error)
	// groupKey names the trip a block belongs to; blocks sharing a key form one trip.
	groupKey(b Block) string
	buildTrip(doc string, blocks []Block) (tripDraft, error)
}

// layouts is tried in priority order when detecting a document's layout.
var layouts = []layoutParser{freeText{}, flatTable{}}

func parserFor(l Layout) layoutParser {
	for _, p := range layouts {
		if p.layout() == l {
			return p
		}
	}
	return nil
}

var (
	columnSep    = regexp.MustCompile(`\s{2,}|\t`)
	pageDateRe   = regexp.MustCompile(`(?i)\b(?:schedule|effective)\s+date:\s*(\S+)`)
	leadingDigit = regexp.MustCompile(`^\d`)
	dateToken    = regexp.MustCompile(`^(?:\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2})$`)
)

// tripKey names a trip by its contract and parsed trip id so "0101" and
// "101" land in the same group. Unparseable ids are keyed by their cleaned
// text and fail later in buildTrip.
func tripKey(contract, rawID string) string {
	if id, err := ParseInteger("trip_id", rawID); err == nil {
		return contract + ":" + strconv.Itoa(id)
	}
	return contract + ":" + cleanNumber(rawID)
}

func splitColumns(line string) []string {
	parts := columnSep.Split(strings.TrimSpace(line), -1)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func pageLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func head(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[:n]
}

// SegmentPage splits one page into trip blocks. The returned Carry must be
// passed to the next page of the same document.
func SegmentPage(page int, text string, carry Carry, cfg Config) (PageSegment, Carry, error) {
	cfg.SetDefaults()
	lines := pageLines(text)
	top := head(lines, cfg.HeaderScanLines)

	id, ok := findContractID(top, carry.Layout)
	switch {
	case ok:
		carry.ContractID = id
	case carry.ContractID == "":
		return PageSegment{}, carry, &DocumentError{Page: page, Context: strings.Join(top, " | "), Err: ErrMissingContractHeader}
	}

	for _, l := range lines {
		m := pageDateRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		d, err := ParseDate("schedule_date", m[1])
		if err != nil {
			return PageSegment{}, carry, &DocumentError{Page: page, Context: l, Err: err}
		}
		carry.PageDate = &d
		break
	}

	if carry.Layout == LayoutUnknown {
		for _, p := range layouts {
			if p.detect(lines) {
				carry.Layout = p.layout()
				break
			}
		}
	}
	seg := PageSegment{Page: page, ContractID: carry.ContractID, PageDate: carry.PageDate, Layout: carry.Layout}
	p := parserFor(carry.Layout)
	if p == nil {
		return seg, carry, nil
	}
	blocks, err := p.segment(page, lines, cfg)
	if err != nil {
		return PageSegment{}, carry, err
	}
	for i := range blocks {
		blocks[i].ContractID = carry.ContractID
		blocks[i].PageDate = carry.PageDate
	}
	seg.Blocks = blocks
	return seg, carry, nil
}

// findContractID tries the known layout's header pattern first, then every family.
func findContractID(lines []string, known Layout) (string, bool) {
	if p := parserFor(known); p != nil {
		if id, ok := p.contractID(lines); ok {
			return id, true
		}
	}
	for _, p := range layouts {
		if id, ok := p.contractID(lines); ok {
			return id, true
		}
	}
	return "", false
}
