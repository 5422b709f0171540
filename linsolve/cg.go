package linsolve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Settings caps an iterative solve. A solve either reaches Tolerance on
// the residual norm within MaxIterations or fails; there is no partial
// result and no internal retry.
type Settings struct {
	MaxIterations int
	Tolerance     float64
}

// DivergenceError reports a solve that exhausted its iteration cap
// without reaching tolerance.
type DivergenceError struct {
	Iterations int
	Residual   float64
	Tolerance  float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("linear solve diverged: residual %.3e above tolerance %.3e after %d iterations",
		e.Residual, e.Tolerance, e.Iterations)
}

// CG solves A x = b for symmetric positive definite A by preconditioned
// conjugate gradients, overwriting x (which also serves as the initial
// guess). Convergence is declared when the 2-norm of the residual drops
// to s.Tolerance.
func CG(a Operator, x, b []float64, pre Preconditioner, s Settings) (iterations int, err error) {
	var (
		n, _ = a.Dims()
		r    = make([]float64, n)
		z    = make([]float64, n)
		p    = make([]float64, n)
		ap   = make([]float64, n)
	)
	if len(x) != n || len(b) != n {
		panic(fmt.Errorf("operator is %dx%d, got x length %d, b length %d", n, n, len(x), len(b)))
	}
	if pre == nil {
		pre = Identity{}
	}

	// r = b - A x
	a.MulVec(r, x)
	floats.Scale(-1, r)
	floats.Add(r, b)

	resNorm := floats.Norm(r, 2)
	if resNorm <= s.Tolerance {
		return 0, nil
	}

	var rho, rhoPrev float64
	for iterations = 1; iterations <= s.MaxIterations; iterations++ {
		pre.Apply(z, r)
		rho = floats.Dot(r, z)
		if iterations == 1 {
			copy(p, z)
		} else {
			beta := rho / rhoPrev
			for i := range p {
				p[i] = z[i] + beta*p[i]
			}
		}

		a.MulVec(ap, p)
		pAp := floats.Dot(p, ap)
		if pAp <= 0 || math.IsNaN(pAp) {
			return iterations, &DivergenceError{
				Iterations: iterations, Residual: resNorm, Tolerance: s.Tolerance,
			}
		}
		alpha := rho / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		resNorm = floats.Norm(r, 2)
		if resNorm <= s.Tolerance {
			return iterations, nil
		}
		rhoPrev = rho
	}
	return s.MaxIterations, &DivergenceError{
		Iterations: s.MaxIterations, Residual: resNorm, Tolerance: s.Tolerance,
	}
}
