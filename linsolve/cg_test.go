package linsolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/james-bowman/sparse"
)

func buildCSR(n int, entries map[[2]int]float64) *sparse.CSR {
	dok := sparse.NewDOK(n, n)
	for ij, v := range entries {
		dok.Set(ij[0], ij[1], v)
	}
	return dok.ToCSR()
}

func TestCG(t *testing.T) {
	// Small SPD system with a known solution
	{
		a := buildCSR(3, map[[2]int]float64{
			{0, 0}: 4, {0, 1}: 1,
			{1, 0}: 1, {1, 1}: 3, {1, 2}: 1,
			{2, 1}: 1, {2, 2}: 2,
		})
		var (
			xExact = []float64{1, -2, 3}
			b      = make([]float64, 3)
			x      = make([]float64, 3)
		)
		CSROp{M: a}.MulVec(b, xExact)
		iters, err := CG(CSROp{M: a}, x, b, nil, Settings{MaxIterations: 100, Tolerance: 1.e-12})
		assert.NoError(t, err)
		assert.True(t, iters <= 10)
		for i := range x {
			assert.InDelta(t, xExact[i], x[i], 1.e-9)
		}
	}
	// Identity and Jacobi agree on the solution
	{
		a := buildCSR(2, map[[2]int]float64{{0, 0}: 10, {1, 1}: 0.1})
		b := []float64{1, 1}
		x1 := make([]float64, 2)
		x2 := make([]float64, 2)
		_, err := CG(CSROp{M: a}, x1, b, Identity{}, Settings{MaxIterations: 50, Tolerance: 1.e-12})
		assert.NoError(t, err)
		_, err = CG(CSROp{M: a}, x2, b, NewJacobi(a), Settings{MaxIterations: 50, Tolerance: 1.e-12})
		assert.NoError(t, err)
		assert.InDelta(t, 0.1, x1[0], 1.e-9)
		assert.InDelta(t, 10, x1[1], 1.e-9)
		assert.InDelta(t, x1[0], x2[0], 1.e-8)
		assert.InDelta(t, x1[1], x2[1], 1.e-8)
	}
	// Zero right-hand side returns the zero vector in zero iterations
	{
		a := buildCSR(2, map[[2]int]float64{{0, 0}: 1, {1, 1}: 1})
		x := make([]float64, 2)
		iters, err := CG(CSROp{M: a}, x, []float64{0, 0}, nil, Settings{MaxIterations: 10, Tolerance: 1.e-12})
		assert.NoError(t, err)
		assert.Equal(t, 0, iters)
		assert.Equal(t, []float64{0, 0}, x)
	}
	// Exceeding the iteration cap is a typed, fatal error
	{
		a := buildCSR(3, map[[2]int]float64{
			{0, 0}: 4, {0, 1}: 1,
			{1, 0}: 1, {1, 1}: 3, {1, 2}: 1,
			{2, 1}: 1, {2, 2}: 2,
		})
		x := make([]float64, 3)
		_, err := CG(CSROp{M: a}, x, []float64{1, 2, 3}, nil, Settings{MaxIterations: 1, Tolerance: 1.e-30})
		var div *DivergenceError
		assert.Error(t, err)
		assert.True(t, errors.As(err, &div))
		assert.Equal(t, 1, div.Iterations)
		assert.True(t, div.Residual > div.Tolerance)
	}
}

func TestSumOperator(t *testing.T) {
	var (
		a = buildCSR(2, map[[2]int]float64{{0, 0}: 1, {1, 1}: 2})
		b = buildCSR(2, map[[2]int]float64{{0, 1}: 3, {1, 0}: 4})
		s = NewSum(CSROp{M: a}, CSROp{M: b})
	)
	dst := make([]float64, 2)
	s.MulVec(dst, []float64{1, 1})
	assert.InDelta(t, 4, dst[0], 1.e-14)
	assert.InDelta(t, 6, dst[1], 1.e-14)

	c := buildCSR(3, map[[2]int]float64{{0, 0}: 1})
	assert.Panics(t, func() { NewSum(CSROp{M: a}, CSROp{M: c}) })
}
