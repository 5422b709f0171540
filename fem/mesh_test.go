package fem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectangleMesh(t *testing.T) {
	// Counts and total area
	{
		m := NewRectangleMesh(4, 3, 2, 1.5)
		assert.Equal(t, 5*4, m.NumVerts())
		assert.Equal(t, 2*4*3, m.NumCells())
		assert.InDelta(t, 2*1.5, m.Area(), 1.e-14)
	}
	// Positive orientation and per-cell area
	{
		m := NewRectangleMesh(2, 2, 1, 1)
		for k := 0; k < m.NumCells(); k++ {
			cg := m.CellGeom(k)
			assert.InDelta(t, 0.125, cg.Area, 1.e-14)
			// basis gradients sum to zero
			for d := 0; d < 2; d++ {
				assert.InDelta(t, 0, cg.Grad[0][d]+cg.Grad[1][d]+cg.Grad[2][d], 1.e-13)
			}
		}
	}
	// Boundary marks
	{
		m := NewRectangleMesh(3, 3, 1, 1)
		nBoundary := 0
		for _, b := range m.Boundary {
			if b {
				nBoundary++
			}
		}
		assert.Equal(t, 12, nBoundary) // 4x4 grid, all but the 2x2 interior
	}
	// Diameter in the L-infinity metric
	{
		m := NewRectangleMesh(4, 3, 2, 1.5)
		assert.InDelta(t, 2, m.Diameter(), 1.e-14)
	}
	// Degenerate construction panics
	{
		assert.Panics(t, func() { NewRectangleMesh(0, 1, 1, 1) })
		assert.Panics(t, func() { NewRectangleMesh(1, 1, -1, 1) })
	}
}

func TestQuadrature(t *testing.T) {
	q := NewTriangleQuadrature()
	var wsum float64
	for _, w := range q.W {
		wsum += w
	}
	assert.InDelta(t, 1, wsum, 1.e-15)
	for _, b := range q.Bary {
		assert.InDelta(t, 1, b[0]+b[1]+b[2], 1.e-15)
	}
}
