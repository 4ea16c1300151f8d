package journal

import (
	"context"
	"sort"
	"time"
)

// Kind is the pipeline stage a record describes.
type Kind string

const (
	KindExtract Kind = "extract"
	KindPack    Kind = "pack"
	KindAssign  Kind = "assign"
)

// Record captures one service run.
type Record struct {
	ID       string        `json:"id"`
	Kind     Kind          `json:"kind"`
	Document string        `json:"document,omitempty"`
	Contract string        `json:"contract,omitempty"`
	Trips    int           `json:"trips"`
	Shifts   int           `json:"shifts"`
	Status   string        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Started  time.Time     `json:"started"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Kind     Kind
	Contract string
	Start    time.Time
	End      time.Time
	// Limit keeps only the most recent records when positive.
	Limit int
}

func (q Query) match(r Record) bool {
	if q.Kind != "" && r.Kind != q.Kind {
		return false
	}
	if q.Contract != "" && r.Contract != q.Contract {
		return false
	}
	if !q.Start.IsZero() && r.Started.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Started.After(q.End) {
		return false
	}
	return true
}

// finish orders records oldest first and applies the limit.
func (q Query) finish(recs []Record) []Record {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Started.Before(recs[j].Started) })
	if q.Limit > 0 && len(recs) > q.Limit {
		recs = recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error          { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
