package linsolve

import (
	"github.com/james-bowman/sparse"

	"github.com/icetools/iceinv/fem"
)

// ConstrainedSolve solves A x = b where A was assembled with the given
// constraint set distributed (constrained rows carry only their
// diagonal). The constrained right-hand-side entries are zeroed for the
// reduced solve, and the constraint values are written back into the
// solution afterwards. x is overwritten; its incoming content seeds the
// iteration.
func ConstrainedSolve(a *sparse.CSR, x, b []float64, cs *fem.ConstraintSet, s Settings) (iterations int, err error) {
	var (
		rhs = make([]float64, len(b))
	)
	copy(rhs, b)
	cs.ZeroConstrained(rhs)
	cs.ZeroConstrained(x)
	if iterations, err = CG(CSROp{M: a}, x, rhs, NewJacobi(a), s); err != nil {
		return
	}
	cs.Distribute(x)
	return
}
