package assign

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/shiftplan/core/logger"
	"github.com/kilianp07/shiftplan/core/model"
)

// Status is the outcome of a Solve call.
type Status int

const (
	// StatusOptimal is a complete assignment whose hours match the relaxation bound.
	StatusOptimal Status = iota
	// StatusFeasible is a complete assignment without a relaxation bound to certify it.
	StatusFeasible
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
	// StatusNoSolution means the time budget ran out before an assignment was found.
	StatusNoSolution
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusNoSolution:
		return "no_solution"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// OK reports whether the result carries a valid assignment.
func (s Status) OK() bool { return s == StatusOptimal || s == StatusFeasible }

// Result is the outcome of Solve. Shifts is empty unless Status.OK().
type Result struct {
	Status Status              `json:"status"`
	Shifts []model.DriverShift `json:"shifts"`
	// Assignment holds the driver index of each trip, -1 when unassigned.
	Assignment []int         `json:"assignment"`
	Objective  float64       `json:"objective"`
	Bound      float64       `json:"bound"`
	Nodes      int           `json:"nodes"`
	Elapsed    time.Duration `json:"elapsed"`
}

// ErrInvalidInput wraps every input validation failure of Solve.
var ErrInvalidInput = errors.New("invalid assignment input")

const (
	eps = 1e-9
	// lpMaxVariables skips the relaxation for larger models.
	lpMaxVariables = 600
)

// deadlineEvery is how many search nodes are expanded between clock reads.
var deadlineEvery = 1024

// Solver assigns trips to drivers.
type Solver struct {
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewSolver returns a Solver. A nil logger discards output.
func NewSolver(opts Options, log logger.Logger) *Solver {
	if opts.TimeBudget == 0 {
		opts.TimeBudget = DefaultTimeBudget
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Solver{opts: opts, log: log, now: time.Now}
}

// Solve is a convenience wrapper around NewSolver(opts, nil).Solve.
func Solve(trips []model.Trip, drivers []model.Driver, opts Options) (Result, error) {
	return NewSolver(opts, nil).Solve(trips, drivers)
}

// Solve blocks for at most the time budget. Infeasibility is reported through
// Result.Status; an error means the input itself is invalid.
func (s *Solver) Solve(trips []model.Trip, drivers []model.Driver) (Result, error) {
	if err := s.validate(trips, drivers); err != nil {
		return Result{}, err
	}
	start := s.now()
	res := Result{Assignment: make([]int, len(trips))}
	for i := range res.Assignment {
		res.Assignment[i] = -1
	}
	finish := func(st Status) (Result, error) {
		res.Status = st
		res.Elapsed = s.now().Sub(start)
		if !st.OK() {
			res.Shifts = nil
			for i := range res.Assignment {
				res.Assignment[i] = -1
			}
		}
		s.log.Infow("assignment solved", map[string]any{
			"status":  st.String(),
			"trips":   len(trips),
			"drivers": len(drivers),
			"shifts":  len(res.Shifts),
			"nodes":   res.Nodes,
			"elapsed": res.Elapsed.String(),
		})
		return res, nil
	}

	if len(trips) == 0 {
		return finish(StatusOptimal)
	}

	hours := make([]float64, len(trips))
	for i, t := range trips {
		hours[i] = t.Duration
	}
	caps := make([]float64, len(drivers))
	for d, dr := range drivers {
		caps[d] = dr.MaxHoursPerDay
	}
	allowed, vars := s.allowedPairs(trips, drivers, hours, caps)
	for t := range trips {
		if !anyTrue(allowed, t) {
			s.log.Debugw("trip fits no driver", map[string]any{"trip": trips[t].Key().String(), "hours": hours[t]})
			return finish(StatusInfeasible)
		}
	}

	bound, haveBound := math.NaN(), false
	if len(vars) <= lpMaxVariables {
		opt, err := lpSolve(relaxation{hours: hours, caps: caps, vars: vars})
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return finish(StatusInfeasible)
		case err != nil:
			s.log.Warnf("lp relaxation failed, searching without bound: %v", err)
		default:
			bound, haveBound = opt, true
			res.Bound = opt
		}
	} else {
		s.log.Debugw("lp relaxation skipped", map[string]any{"variables": len(vars)})
	}

	sr := newSearch(hours, caps, allowed, drivers, s.opts.EnforceDriverClass, start.Add(s.opts.TimeBudget), s.now)
	found := sr.run()
	res.Nodes = sr.nodes
	switch {
	case found:
	case sr.timedOut:
		return finish(StatusNoSolution)
	default:
		return finish(StatusInfeasible)
	}

	copy(res.Assignment, sr.assign)
	for _, h := range hours {
		res.Objective += h
	}
	res.Shifts = buildShifts(trips, drivers, res.Assignment)
	if haveBound && res.Objective-bound <= 1e-6*math.Max(1, bound) {
		return finish(StatusOptimal)
	}
	return finish(StatusFeasible)
}

func (s *Solver) validate(trips []model.Trip, drivers []model.Driver) error {
	if s.opts.TimeBudget < 0 {
		return fmt.Errorf("%w: time budget %s", ErrInvalidInput, s.opts.TimeBudget)
	}
	seenTrip := make(map[model.TripKey]bool, len(trips))
	for _, t := range trips {
		if t.Duration < 0 || math.IsNaN(t.Duration) {
			return fmt.Errorf("%w: trip %s has duration %g", ErrInvalidInput, t.Key(), t.Duration)
		}
		if seenTrip[t.Key()] {
			return fmt.Errorf("%w: duplicate trip %s", ErrInvalidInput, t.Key())
		}
		seenTrip[t.Key()] = true
	}
	seenDriver := make(map[string]bool, len(drivers))
	for _, d := range drivers {
		if d.ID == "" {
			return fmt.Errorf("%w: driver without id", ErrInvalidInput)
		}
		if d.MaxHoursPerDay < 0 || math.IsNaN(d.MaxHoursPerDay) {
			return fmt.Errorf("%w: driver %s has max hours %g", ErrInvalidInput, d.ID, d.MaxHoursPerDay)
		}
		if seenDriver[d.ID] {
			return fmt.Errorf("%w: duplicate driver %s", ErrInvalidInput, d.ID)
		}
		seenDriver[d.ID] = true
	}
	return nil
}

// allowedPairs lists the pairs a driver could take on an empty day.
func (s *Solver) allowedPairs(trips []model.Trip, drivers []model.Driver, hours, caps []float64) ([][]bool, []pair) {
	allowed := make([][]bool, len(drivers))
	var vars []pair
	for d, dr := range drivers {
		allowed[d] = make([]bool, len(trips))
		for t, tr := range trips {
			if hours[t] > caps[d]+eps {
				continue
			}
			if s.opts.EnforceDriverClass && !dr.CanDrive(tr) {
				continue
			}
			allowed[d][t] = true
			vars = append(vars, pair{driver: d, trip: t})
		}
	}
	return allowed, vars
}

func anyTrue(allowed [][]bool, t int) bool {
	for d := range allowed {
		if allowed[d][t] {
			return true
		}
	}
	return false
}

// buildShifts emits one shift per driver with trips, in driver order. Trips
// keep their input order and the shift date is the first trip's date.
func buildShifts(trips []model.Trip, drivers []model.Driver, assignment []int) []model.DriverShift {
	var shifts []model.DriverShift
	for d, dr := range drivers {
		var sh *model.DriverShift
		for t := range trips {
			if assignment[t] != d {
				continue
			}
			if sh == nil {
				sh = &model.DriverShift{ID: uuid.NewString(), DriverID: dr.ID, ShiftDate: trips[t].Date}
			}
			sh.Trips = append(sh.Trips, &trips[t])
			sh.TotalHours += trips[t].Duration
			sh.TotalMiles += trips[t].Distance
		}
		if sh != nil {
			shifts = append(shifts, *sh)
		}
	}
	return shifts
}

// search is a depth-first exact search over trips in decreasing duration.
type search struct {
	hours     []float64
	remaining []float64
	allowed   [][]bool
	classes   []string
	order     []int
	suffix    []float64
	assign    []int

	deadline time.Time
	now      func() time.Time
	nodes    int
	timedOut bool
}

func newSearch(hours, caps []float64, allowed [][]bool, drivers []model.Driver, byClass bool, deadline time.Time, now func() time.Time) *search {
	order := make([]int, len(hours))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return hours[order[a]] > hours[order[b]] })

	suffix := make([]float64, len(order)+1)
	for k := len(order) - 1; k >= 0; k-- {
		suffix[k] = suffix[k+1] + hours[order[k]]
	}
	classes := make([]string, len(drivers))
	if byClass {
		for d, dr := range drivers {
			classes[d] = dr.Class
		}
	}
	assign := make([]int, len(hours))
	for i := range assign {
		assign[i] = -1
	}
	return &search{
		hours:     hours,
		remaining: append([]float64(nil), caps...),
		allowed:   allowed,
		classes:   classes,
		order:     order,
		suffix:    suffix,
		assign:    assign,
		deadline:  deadline,
		now:       now,
	}
}

func (s *search) run() bool { return s.dfs(0) }

func (s *search) dfs(k int) bool {
	if k == len(s.order) {
		return true
	}
	s.nodes++
	if s.nodes%deadlineEvery == 0 && s.now().After(s.deadline) {
		s.timedOut = true
	}
	if s.timedOut {
		return false
	}

	t := s.order[k]
	h := s.hours[t]
	var room float64
	var cands []int
	for d, rem := range s.remaining {
		room += rem
		if s.allowed[d][t] && rem+eps >= h {
			cands = append(cands, d)
		}
	}
	if room+eps < s.suffix[k] {
		return false
	}
	// best fit first keeps large gaps for the long trips still to come
	sort.SliceStable(cands, func(a, b int) bool { return s.remaining[cands[a]] < s.remaining[cands[b]] })

	tried := make(map[driverState]bool, len(cands))
	for _, d := range cands {
		st := driverState{remaining: s.remaining[d], class: s.classes[d]}
		if tried[st] {
			continue
		}
		tried[st] = true

		s.remaining[d] -= h
		s.assign[t] = d
		if s.dfs(k + 1) {
			return true
		}
		s.remaining[d] += h
		s.assign[t] = -1
		if s.timedOut {
			return false
		}
	}
	return false
}

// driverState identifies interchangeable drivers: same spare hours and, when
// classes are enforced, same class.
type driverState struct {
	remaining float64
	class     string
}
