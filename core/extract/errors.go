package extract

import (
	"errors"
	"fmt"

	"github.com/kilianp07/shiftplan/core/model"
)

var (
	// ErrMissingContractHeader is returned when the first page carries no contract identifier.
	ErrMissingContractHeader = errors.New("missing contract header")
	// ErrMissingTripSummary is returned for a free-text trip block without its miles/hours line.
	ErrMissingTripSummary = errors.New("trip block has no miles/hours summary line")
	// ErrMissingTripDate is returned when neither a stop nor the page provides a date.
	ErrMissingTripDate = errors.New("trip has no date and no schedule date is in effect")
	// ErrNoTripsFound is returned for a document that yields no trip blocks.
	ErrNoTripsFound = errors.New("no trips found")
	// ErrDuplicateTrip is returned when a trip id appears in two blocks of one
	// document, including ids that differ only in leading zeros.
	ErrDuplicateTrip = errors.New("duplicate trip id")

	ErrStopSequence = model.ErrStopSequence
	ErrStopTimes    = model.ErrStopTimes
)

// FieldKind is the type a raw token is expected to convert to.
type FieldKind int

const (
	KindDate FieldKind = iota
	KindTime
	KindDecimal
	KindInteger
	KindMinutes
)

func (k FieldKind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDecimal:
		return "decimal"
	case KindInteger:
		return "integer"
	case KindMinutes:
		return "minutes"
	default:
		return "unknown"
	}
}

// FieldParseError reports a single token that failed typed conversion.
type FieldParseError struct {
	Field string
	Kind  FieldKind
	Raw   string
	Err   error
}

func (e *FieldParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("field %s: cannot parse %q as %s: %v", e.Field, e.Raw, e.Kind, e.Err)
	}
	return fmt.Sprintf("field %s: cannot parse %q as %s", e.Field, e.Raw, e.Kind)
}

func (e *FieldParseError) Unwrap() error { return e.Err }

// DocumentError attaches the page and surrounding text to a structural failure.
type DocumentError struct {
	Document string
	Page     int
	Context  string
	Err      error
}

func (e *DocumentError) Error() string {
	msg := "document"
	if e.Document != "" {
		msg += " " + e.Document
	}
	if e.Page > 0 {
		msg += fmt.Sprintf(" page %d", e.Page)
	}
	msg += ": " + e.Err.Error()
	if e.Context != "" {
		msg += fmt.Sprintf(" (near %q)", e.Context)
	}
	return msg
}

func (e *DocumentError) Unwrap() error { return e.Err }
