package metrics

import (
	"context"
	"errors"
)

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordExtraction forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordExtraction(ev ExtractionEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordExtraction(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPack forwards packing events to sinks that support them.
func (m *MultiSink) RecordPack(ev PackEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PackRecorder); ok {
			if err := rec.RecordPack(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSolve forwards assignment events to sinks that support them.
func (m *MultiSink) RecordSolve(ev SolveEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SolveRecorder); ok {
			if err := rec.RecordSolve(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes every sink and joins their errors.
func (m *MultiSink) Flush(ctx context.Context) error {
	var errs []error
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			errs = append(errs, f.Flush(ctx))
		}
	}
	return errors.Join(errs...)
}
