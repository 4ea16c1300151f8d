// Package assign binds trips to drivers under per-driver daily hour caps.
//
// The model has one 0/1 variable per (driver, trip) pair, requires every trip
// to be taken by exactly one driver and keeps each driver within their
// maximum hours. Its linear relaxation is solved with gonum's simplex to
// detect infeasible pools early and to bound the objective; an exact
// depth-first search then looks for an integral assignment within the time
// budget.
package assign
