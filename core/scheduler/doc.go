// Package scheduler groups ordered stops into hour-bounded shifts.
//
// Pack is a greedy first-fit walk: a shift is closed as soon as it reaches
// max hours or before a stop that would push it over, and a short final shift
// borrows one stop from its predecessor. A single stop longer than max hours
// still gets a shift of its own; input is never dropped or reordered.
package scheduler
