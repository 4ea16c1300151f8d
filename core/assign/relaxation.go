package assign

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// pair is one (driver, trip) decision variable.
type pair struct {
	driver, trip int
}

// relaxation is the linear program over the allowed pairs with the 0/1
// domain relaxed to x >= 0.
type relaxation struct {
	hours []float64 // per trip
	caps  []float64 // per driver
	vars  []pair
}

// solveRelaxation minimises total hours subject to one unit of assignment per
// trip and the driver caps, and returns the optimal objective. The program is
// built directly in standard form: one slack column per driver turns each cap
// into an equality.
func solveRelaxation(r relaxation) (float64, error) {
	n := len(r.vars)
	nt, nd := len(r.hours), len(r.caps)

	c := make([]float64, n+nd)
	a := mat.NewDense(nt+nd, n+nd, nil)
	b := make([]float64, nt+nd)

	for i, v := range r.vars {
		c[i] = r.hours[v.trip]
		a.Set(v.trip, i, 1)
		a.Set(nt+v.driver, i, r.hours[v.trip])
	}
	for t := 0; t < nt; t++ {
		b[t] = 1
	}
	for d, cp := range r.caps {
		a.Set(nt+d, n+d, 1)
		b[nt+d] = cp
	}

	opt, _, err := lp.Simplex(c, a, b, 1e-7, nil)
	return opt, err
}

// lpSolve points to the function used to solve the relaxation. It can be
// overridden in tests to simulate solver failures.
var lpSolve = solveRelaxation
