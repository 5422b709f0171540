package fem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/james-bowman/sparse"
)

func TestConstraintSetVectors(t *testing.T) {
	// Hanging-node style constraint: x2 = 0.5 x0 + 0.5 x1
	{
		cs := NewConstraintSet(4)
		cs.AddEntry(2, 0, 0.5)
		cs.AddEntry(2, 1, 0.5)
		cs.Close()

		assert.True(t, cs.IsConstrained(2))
		assert.False(t, cs.IsConstrained(0))
		assert.Equal(t, 1, cs.NumConstraints())

		x := []float64{2, 4, 99, 7}
		cs.Distribute(x)
		assert.InDelta(t, 3, x[2], 1.e-14)

		// A local contribution at the constrained dof splits onto its
		// representatives.
		global := make([]float64, 4)
		cs.DistributeLocalToGlobal([]float64{1, 10}, []int{2, 3}, global)
		assert.InDelta(t, 0.5, global[0], 1.e-14)
		assert.InDelta(t, 0.5, global[1], 1.e-14)
		assert.InDelta(t, 0, global[2], 1.e-14)
		assert.InDelta(t, 10, global[3], 1.e-14)
	}
	// Dirichlet: constrained value goes to the inhomogeneity
	{
		cs := NewConstraintSet(2)
		cs.AddLine(0)
		cs.SetInhomogeneity(0, 1.5)
		cs.Close()

		x := []float64{0, 3}
		cs.Distribute(x)
		assert.InDelta(t, 1.5, x[0], 1.e-14)

		b := []float64{7, 8}
		cs.ZeroConstrained(b)
		assert.Equal(t, []float64{0, 8}, b)
	}
	// Chained constraints resolve on Close
	{
		cs := NewConstraintSet(3)
		cs.AddEntry(1, 2, 2)
		cs.AddEntry(2, 0, 3)
		cs.Close()
		x := []float64{1, 0, 0}
		cs.Distribute(x)
		assert.InDelta(t, 3, x[2], 1.e-14)
		assert.InDelta(t, 6, x[1], 1.e-14)
	}
}

func TestConstraintSetMatrices(t *testing.T) {
	// Dirichlet dof: off-diagonal couplings vanish, the local diagonal
	// survives so the operator stays definite.
	cs := NewConstraintSet(3)
	cs.AddLine(0)
	cs.Close()

	local := mat.NewDense(3, 3, []float64{
		2, -1, -1,
		-1, 2, -1,
		-1, -1, 2,
	})
	dok := sparse.NewDOK(3, 3)
	cs.DistributeLocalToGlobalMat(local, []int{0, 1, 2}, dok)

	assert.InDelta(t, 2, dok.At(0, 0), 1.e-14)
	assert.InDelta(t, 0, dok.At(0, 1), 1.e-14)
	assert.InDelta(t, 0, dok.At(1, 0), 1.e-14)
	assert.InDelta(t, 2, dok.At(1, 1), 1.e-14)
	assert.InDelta(t, -1, dok.At(1, 2), 1.e-14)
}

func TestConstraintSetMisuse(t *testing.T) {
	cs := NewConstraintSet(2)
	assert.Panics(t, func() { cs.Distribute([]float64{0, 0}) }) // not closed
	assert.Panics(t, func() { cs.AddEntry(0, 0, 1) })
	cs.Close()
	assert.Panics(t, func() { cs.AddLine(1) }) // closed
	assert.Panics(t, func() { cs.Distribute([]float64{0}) })
}
