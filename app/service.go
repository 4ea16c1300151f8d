package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/shiftplan/config"
	"github.com/kilianp07/shiftplan/core/assign"
	"github.com/kilianp07/shiftplan/core/extract"
	"github.com/kilianp07/shiftplan/core/journal"
	coremetrics "github.com/kilianp07/shiftplan/core/metrics"
	"github.com/kilianp07/shiftplan/core/model"
	"github.com/kilianp07/shiftplan/core/scheduler"
	"github.com/kilianp07/shiftplan/infra/logger"
	_ "github.com/kilianp07/shiftplan/infra/metrics" // registers metrics sinks
	"github.com/kilianp07/shiftplan/infra/store"
)

// Store is the persistence collaborator used by the service.
type Store interface {
	SaveDocument(ctx context.Context, doc *extract.Document) error
	LoadTrips(ctx context.Context, contract string) ([]model.Trip, error)
	SaveShifts(ctx context.Context, shifts []model.Shift) error
	SaveDriverShifts(ctx context.Context, shifts []model.DriverShift) error
	SaveDrivers(ctx context.Context, drivers []model.Driver) error
	LoadDrivers(ctx context.Context) ([]model.Driver, error)
	Close() error
}

// Service runs the extraction, packing and assignment pipeline and records
// every run in the journal and the metrics sinks.
type Service struct {
	cfg       config.Config
	extractor *extract.Extractor
	solver    *assign.Solver
	sink      coremetrics.MetricsSink
	journal   journal.Store
	store     Store
	openStore func() (Store, error)
	log       logger.Logger
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithStore injects the persistence collaborator instead of opening SQLite.
func WithStore(st Store) Option { return func(s *Service) { s.store = st } }

// WithJournal replaces the configured journal.
func WithJournal(j journal.Store) Option { return func(s *Service) { s.journal = j } }

// WithSink replaces the configured metrics sinks.
func WithSink(sink coremetrics.MetricsSink) Option { return func(s *Service) { s.sink = sink } }

// WithClock sets the clock used for run timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New creates a Service from the configuration. The SQLite store is opened
// on first use.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	logger.SetLevel(cfg.Log.Level)
	svc := &Service{
		cfg:       *cfg,
		extractor: extract.NewExtractor(cfg.Extract, logger.New("extract")),
		solver:    assign.NewSolver(cfg.Optimizer.Options(), logger.New("assign")),
		log:       logger.New("service"),
		now:       time.Now,
	}
	svc.openStore = func() (Store, error) { return store.NewSQLiteStore(cfg.Store.Path) }
	for _, o := range opts {
		o(svc)
	}
	if svc.sink == nil {
		sink, err := coremetrics.NewSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		svc.sink = sink
	}
	if svc.journal == nil {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		svc.journal = j
	}
	return svc, nil
}

// Store returns the persistence collaborator, opening it if needed.
func (s *Service) Store() (Store, error) {
	if s.store != nil {
		return s.store, nil
	}
	st, err := s.openStore()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s.store = st
	return st, nil
}

// Extract runs the extractor over the sources. A failing document is
// reported in its result and does not stop the others.
func (s *Service) Extract(ctx context.Context, sources []extract.Source) []extract.BatchResult {
	start := s.now()
	results := s.extractor.ExtractBatch(ctx, sources)
	elapsed := s.now().Sub(start)
	for i, r := range results {
		ev := coremetrics.ExtractionEvent{
			Document: r.Name,
			Pages:    len(sources[i].Pages),
			Duration: elapsed,
			Time:     start,
		}
		rec := journal.Record{Kind: journal.KindExtract, Document: r.Name, Status: "ok", Started: start, Elapsed: elapsed}
		if r.Err != nil {
			ev.Error = r.Err.Error()
			rec.Status, rec.Error = "error", r.Err.Error()
			s.log.Warnf("extract %s: %v", r.Name, r.Err)
		} else {
			doc := r.Document
			ev.Contract, ev.Layout = doc.ContractID, doc.Layout.String()
			ev.Trips, ev.Stops = len(doc.Trips), len(doc.Stops())
			rec.Contract, rec.Trips = doc.ContractID, len(doc.Trips)
		}
		if err := s.sink.RecordExtraction(ev); err != nil {
			s.log.Warnf("record extraction: %v", err)
		}
		s.appendRun(ctx, rec)
	}
	return results
}

// SaveDocument persists the trips and stops of doc.
func (s *Service) SaveDocument(ctx context.Context, doc *extract.Document) error {
	st, err := s.Store()
	if err != nil {
		return err
	}
	return st.SaveDocument(ctx, doc)
}

// LoadTrips returns the stored trips of a contract.
func (s *Service) LoadTrips(ctx context.Context, contract string) ([]model.Trip, error) {
	st, err := s.Store()
	if err != nil {
		return nil, err
	}
	return st.LoadTrips(ctx, contract)
}

// Pack groups trips by contract and packs each contract into shifts. When
// save is set the shifts are persisted.
func (s *Service) Pack(ctx context.Context, trips []model.Trip, save bool) ([]model.Shift, error) {
	start := s.now()
	shifts, err := scheduler.PackContracts(trips, s.cfg.Schedule)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.appendRun(ctx, journal.Record{Kind: journal.KindPack, Trips: len(trips), Status: "error",
			Error: err.Error(), Started: start, Elapsed: elapsed})
		return nil, err
	}
	for _, ev := range s.packEvents(trips, shifts, elapsed, start) {
		if rec, ok := s.sink.(coremetrics.PackRecorder); ok {
			if err := rec.RecordPack(ev); err != nil {
				s.log.Warnf("record pack: %v", err)
			}
		}
		s.appendRun(ctx, journal.Record{Kind: journal.KindPack, Contract: ev.Contract, Trips: ev.Stops,
			Shifts: ev.Shifts, Status: "ok", Started: start, Elapsed: elapsed})
	}
	if save {
		st, err := s.Store()
		if err != nil {
			return shifts, err
		}
		if err := st.SaveShifts(ctx, shifts); err != nil {
			return shifts, fmt.Errorf("save shifts: %w", err)
		}
	}
	return shifts, nil
}

func (s *Service) packEvents(trips []model.Trip, shifts []model.Shift, elapsed time.Duration, at time.Time) []coremetrics.PackEvent {
	var events []coremetrics.PackEvent
	index := map[string]int{}
	for _, t := range trips {
		if _, ok := index[t.ContractID]; !ok {
			index[t.ContractID] = len(events)
			events = append(events, coremetrics.PackEvent{Contract: t.ContractID, Duration: elapsed, Time: at})
		}
		events[index[t.ContractID]].Stops++
	}
	for _, sh := range shifts {
		i, ok := index[sh.ContractID]
		if !ok {
			continue
		}
		ev := &events[i]
		ev.Shifts++
		ev.TotalHours += sh.TotalHours
		if sh.TotalHours < s.cfg.Schedule.MinHours {
			ev.UnderMin++
		}
		if sh.TotalHours > s.cfg.Schedule.MaxHours {
			ev.OverMax++
		}
	}
	return events
}

// Assign binds trips to drivers. Infeasible and budget-exhausted searches
// are results, not errors.
func (s *Service) Assign(ctx context.Context, trips []model.Trip, drivers []model.Driver, save bool) (assign.Result, error) {
	start := s.now()
	res, err := s.solver.Solve(trips, drivers)
	rec := journal.Record{Kind: journal.KindAssign, Trips: len(trips), Started: start, Elapsed: s.now().Sub(start)}
	if len(trips) > 0 {
		rec.Contract = trips[0].ContractID
	}
	if err != nil {
		rec.Status, rec.Error = "error", err.Error()
		s.appendRun(ctx, rec)
		return res, err
	}
	rec.Status, rec.Shifts = res.Status.String(), len(res.Shifts)
	s.appendRun(ctx, rec)
	if r, ok := s.sink.(coremetrics.SolveRecorder); ok {
		ev := coremetrics.SolveEvent{
			Status:    res.Status.String(),
			Trips:     len(trips),
			Drivers:   len(drivers),
			Shifts:    len(res.Shifts),
			Nodes:     res.Nodes,
			Objective: res.Objective,
			Duration:  res.Elapsed,
			Time:      start,
		}
		if err := r.RecordSolve(ev); err != nil {
			s.log.Warnf("record solve: %v", err)
		}
	}
	if save && len(res.Shifts) > 0 {
		st, err := s.Store()
		if err != nil {
			return res, err
		}
		if err := st.SaveDriverShifts(ctx, res.Shifts); err != nil {
			return res, fmt.Errorf("save driver shifts: %w", err)
		}
	}
	return res, nil
}

// ImportRoster reads a roster file and stores its drivers.
func (s *Service) ImportRoster(ctx context.Context, path string) ([]model.Driver, error) {
	drivers, err := store.ReadRoster(path)
	if err != nil {
		return nil, err
	}
	st, err := s.Store()
	if err != nil {
		return nil, err
	}
	if err := st.SaveDrivers(ctx, drivers); err != nil {
		return nil, err
	}
	s.log.Infow("roster imported", map[string]any{"path": path, "drivers": len(drivers)})
	return drivers, nil
}

// Drivers returns the stored roster.
func (s *Service) Drivers(ctx context.Context) ([]model.Driver, error) {
	st, err := s.Store()
	if err != nil {
		return nil, err
	}
	return st.LoadDrivers(ctx)
}

// Runs lists journal records.
func (s *Service) Runs(ctx context.Context, q journal.Query) ([]journal.Record, error) {
	return s.journal.Query(ctx, q)
}

func (s *Service) appendRun(ctx context.Context, rec journal.Record) {
	rec.ID = uuid.NewString()
	if err := s.journal.Append(ctx, rec); err != nil {
		s.log.Warnf("journal append: %v", err)
	}
}

// Close flushes metrics and releases the journal and store.
func (s *Service) Close(ctx context.Context) error {
	var errs []error
	if f, ok := s.sink.(coremetrics.Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush metrics: %w", err))
		}
	}
	if err := s.journal.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close journal: %w", err))
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
