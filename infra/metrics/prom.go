package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/shiftplan/core/metrics"
)

// PromConfig configures the Prometheus sink. When PushURL is set, Flush
// pushes the collected metrics to a Pushgateway under Job.
type PromConfig struct {
	PushURL string `json:"push_url"`
	Job     string `json:"job"`
}

// PromSink records runs in Prometheus metrics.
type PromSink struct {
	cfg      PromConfig
	gatherer prometheus.Gatherer

	documents  *prometheus.CounterVec
	trips      *prometheus.CounterVec
	extractDur prometheus.Histogram
	shifts     *prometheus.CounterVec
	underMin   prometheus.Counter
	solves     *prometheus.CounterVec
	solveDur   prometheus.Histogram
	solveNodes prometheus.Gauge
}

// NewPromSink registers metrics on the default Prometheus registerer.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer or gatherer defaults to the global Prometheus ones.
func NewPromSinkWithRegistry(cfg PromConfig, reg prometheus.Registerer, g prometheus.Gatherer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if cfg.Job == "" {
		cfg.Job = "shiftplan"
	}
	s := &PromSink{
		cfg:      cfg,
		gatherer: g,
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftplan_documents_total",
			Help: "Documents processed by the extractor",
		}, []string{"layout", "outcome"}),
		trips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftplan_trips_extracted_total",
			Help: "Trips extracted from documents",
		}, []string{"layout"}),
		extractDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shiftplan_extraction_duration_seconds",
			Help:    "Time spent extracting one document",
			Buckets: prometheus.DefBuckets,
		}),
		shifts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftplan_shifts_packed_total",
			Help: "Shifts produced by the bin-packer",
		}, []string{"contract"}),
		underMin: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiftplan_shifts_under_min_total",
			Help: "Packed shifts shorter than the minimum hours",
		}),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftplan_solves_total",
			Help: "Assignment runs by status",
		}, []string{"status"}),
		solveDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shiftplan_solve_duration_seconds",
			Help:    "Wall-clock time of one assignment run",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		solveNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shiftplan_solve_nodes",
			Help: "Search nodes expanded by the last assignment run",
		}),
	}

	if err := register(reg, &s.documents); err != nil {
		return nil, err
	}
	if err := register(reg, &s.trips); err != nil {
		return nil, err
	}
	if err := register(reg, &s.extractDur); err != nil {
		return nil, err
	}
	if err := register(reg, &s.shifts); err != nil {
		return nil, err
	}
	if err := register(reg, &s.underMin); err != nil {
		return nil, err
	}
	if err := register(reg, &s.solves); err != nil {
		return nil, err
	}
	if err := register(reg, &s.solveDur); err != nil {
		return nil, err
	}
	if err := register(reg, &s.solveNodes); err != nil {
		return nil, err
	}
	return s, nil
}

// register adds c to reg, reusing the collector already registered under the
// same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c *C) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return err
		}
		existing, ok := are.ExistingCollector.(C)
		if !ok {
			return err
		}
		*c = existing
	}
	return nil
}

// RecordExtraction counts the document and its trips.
func (s *PromSink) RecordExtraction(ev coremetrics.ExtractionEvent) error {
	layout := ev.Layout
	if layout == "" {
		layout = "unknown"
	}
	s.documents.WithLabelValues(layout, ev.Outcome()).Inc()
	s.trips.WithLabelValues(layout).Add(float64(ev.Trips))
	s.extractDur.Observe(ev.Duration.Seconds())
	return nil
}

// RecordPack counts packed shifts per contract.
func (s *PromSink) RecordPack(ev coremetrics.PackEvent) error {
	s.shifts.WithLabelValues(ev.Contract).Add(float64(ev.Shifts))
	s.underMin.Add(float64(ev.UnderMin))
	return nil
}

// RecordSolve counts the run by status.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.solves.WithLabelValues(ev.Status).Inc()
	s.solveDur.Observe(ev.Duration.Seconds())
	s.solveNodes.Set(float64(ev.Nodes))
	return nil
}

// Flush pushes the gathered metrics when a Pushgateway is configured.
func (s *PromSink) Flush(ctx context.Context) error {
	if s.cfg.PushURL == "" {
		return nil
	}
	return push.New(s.cfg.PushURL, s.cfg.Job).Gatherer(s.gatherer).PushContext(ctx)
}
