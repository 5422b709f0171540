package fem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellValues(t *testing.T) {
	var (
		mesh = NewRectangleMesh(3, 4, 2, 1)
		dsc  = NewDiscretization(mesh, false)
		quad = dsc.Quad()
	)
	// P1 interpolation is exact on linear fields, so the values at the
	// quadrature points must match u = 1 + 2x - 3y evaluated at the
	// physical point coordinates.
	{
		fs := dsc.Space(Scalar)
		u := fs.NewField()
		for v, vert := range mesh.Verts {
			u.Coeffs[v] = 1 + 2*vert[0] - 3*vert[1]
		}
		vals := make([]float64, quad.Len())
		for k := 0; k < mesh.NumCells(); k++ {
			u.CellValues(k, vals)
			c := mesh.Cells[k]
			for q := 0; q < quad.Len(); q++ {
				var x, y float64
				for i := 0; i < 3; i++ {
					x += quad.Bary[q][i] * mesh.Verts[c[i]][0]
					y += quad.Bary[q][i] * mesh.Verts[c[i]][1]
				}
				assert.InDelta(t, 1+2*x-3*y, vals[q], 1.e-12)
			}
		}
	}
	// Vector fields evaluate componentwise, point-major.
	{
		fs := dsc.Space(Vector)
		u := fs.NewField()
		for v := range mesh.Verts {
			u.Coeffs[2*v] = 4
			u.Coeffs[2*v+1] = -7
		}
		vals := make([]float64, quad.Len()*2)
		for k := 0; k < mesh.NumCells(); k++ {
			u.CellValues(k, vals)
			for q := 0; q < quad.Len(); q++ {
				assert.InDelta(t, 4, vals[2*q], 1.e-14)
				assert.InDelta(t, -7, vals[2*q+1], 1.e-14)
			}
		}
	}
}

func TestMassInner(t *testing.T) {
	var (
		mesh = NewRectangleMesh(4, 4, 1, 1)
		dsc  = NewDiscretization(mesh, false)
		fs   = dsc.Space(Scalar)
	)
	ones := fs.NewField()
	for i := range ones.Coeffs {
		ones.Coeffs[i] = 1
	}
	u := fs.NewField()
	for v, vert := range mesh.Verts {
		u.Coeffs[v] = vert[0]
	}
	// The L2 inner product of constants over the unit square is the
	// product of the constants; the induced norm of 1 is 1.
	assert.InDelta(t, 1.0, ones.MassInner(ones), 1.e-12)
	assert.InDelta(t, 1.0, ones.Norm(), 1.e-12)
	// (1, x) over the unit square is 1/2, and the pairing is symmetric.
	assert.InDelta(t, 0.5, ones.MassInner(u), 1.e-12)
	assert.InDelta(t, ones.MassInner(u), u.MassInner(ones), 1.e-14)
	// Pairing the mass-matrix image of u as a dual field reproduces the
	// primal inner product; the coefficient dot product does not.
	f := fs.NewDualField()
	fs.MassMatrix().DoNonZero(func(i, j int, v float64) {
		f.Coeffs[i] += v * u.Coeffs[j]
	})
	assert.InDelta(t, u.MassInner(ones), f.Pair(ones), 1.e-12)
	assert.InDelta(t, u.Dot(ones), floatSum(u.Coeffs), 1.e-14)

	w := dsc.Space(Vector).NewField()
	assert.Panics(t, func() { u.MassInner(w) })
	assert.Panics(t, func() { u.Dot(w) })
}

func floatSum(x []float64) (s float64) {
	for _, v := range x {
		s += v
	}
	return
}
