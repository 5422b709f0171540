package linsolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/icetools/iceinv/fem"
)

func TestConstrainedSolve(t *testing.T) {
	var (
		mesh = fem.NewRectangleMesh(4, 4, 1, 1)
		dsc  = fem.NewDiscretization(mesh, true) // Dirichlet boundary
		fs   = dsc.Space(fem.Scalar)
		m    = fs.MassMatrix()
		n    = fs.NumDofs()
	)
	// Solve M x = b and check the residual on the unconstrained rows
	// plus the constraint values on the rest.
	b := make([]float64, n)
	for i := range b {
		b[i] = float64(i%7) / 7
	}
	x := make([]float64, n)
	_, err := ConstrainedSolve(m, x, b, fs.Constraints(), Settings{MaxIterations: 1000, Tolerance: 1.e-12})
	assert.NoError(t, err)

	var (
		mx  = make([]float64, n)
		rhs = make([]float64, n)
	)
	copy(rhs, b)
	fs.Constraints().ZeroConstrained(rhs)
	CSROp{M: m}.MulVec(mx, x)
	for i := 0; i < n; i++ {
		if fs.Constraints().IsConstrained(i) {
			assert.InDelta(t, 0, x[i], 1.e-14) // homogeneous Dirichlet
		} else {
			assert.InDelta(t, rhs[i], mx[i], 1.e-9)
		}
	}
}
