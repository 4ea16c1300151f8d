package metrics

import (
	"context"
	"time"
)

// ExtractionEvent describes one document extraction.
type ExtractionEvent struct {
	Document string
	Contract string
	Layout   string
	Pages    int
	Trips    int
	Stops    int
	// Error is the failure message; empty on success.
	Error    string
	Duration time.Duration
	Time     time.Time
}

// Outcome is "ok" or "error".
func (e ExtractionEvent) Outcome() string {
	if e.Error != "" {
		return "error"
	}
	return "ok"
}

// MetricsSink records extraction runs. It is the one interface every sink
// implements; the other recorders are optional.
type MetricsSink interface {
	RecordExtraction(ev ExtractionEvent) error
}

// PackEvent describes one packing run for a contract.
type PackEvent struct {
	Contract   string
	Stops      int
	Shifts     int
	UnderMin   int
	OverMax    int
	TotalHours float64
	Duration   time.Duration
	Time       time.Time
}

// PackRecorder records packing runs.
type PackRecorder interface {
	RecordPack(ev PackEvent) error
}

// SolveEvent describes one assignment run.
type SolveEvent struct {
	Status    string
	Trips     int
	Drivers   int
	Shifts    int
	Nodes     int
	Objective float64
	Duration  time.Duration
	Time      time.Time
}

// SolveRecorder records assignment runs.
type SolveRecorder interface {
	RecordSolve(ev SolveEvent) error
}

// Flusher is implemented by sinks that buffer or push their data.
type Flusher interface {
	Flush(ctx context.Context) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordExtraction(ExtractionEvent) error { return nil }
func (NopSink) RecordPack(PackEvent) error             { return nil }
func (NopSink) RecordSolve(SolveEvent) error           { return nil }
func (NopSink) Flush(context.Context) error            { return nil }
