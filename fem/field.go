package fem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Field is a primal field: a coefficient vector representing a function
// value over one FunctionSpace.
type Field struct {
	fs     *FunctionSpace
	Coeffs []float64
}

// DualField shares the coefficient layout of a primal field of equal
// rank but represents a linear functional (a residual or derivative).
// Pairing a dual field with a primal field is a plain coefficient dot
// product; comparing a dual field to a primal field directly is
// meaningless without the mass-matrix pairing.
type DualField struct {
	fs     *FunctionSpace
	Coeffs []float64
}

func (fs *FunctionSpace) NewField() *Field {
	return &Field{fs: fs, Coeffs: make([]float64, fs.nDof)}
}

func (fs *FunctionSpace) NewDualField() *DualField {
	return &DualField{fs: fs, Coeffs: make([]float64, fs.nDof)}
}

func (u *Field) Space() *FunctionSpace     { return u.fs }
func (f *DualField) Space() *FunctionSpace { return f.fs }

func (u *Field) Copy() (v *Field) {
	v = u.fs.NewField()
	copy(v.Coeffs, u.Coeffs)
	return
}

// AddScaled adds t*w to u in place.
func (u *Field) AddScaled(t float64, w *Field) {
	CheckSameSpace(u.fs, w.fs)
	floats.AddScaled(u.Coeffs, t, w.Coeffs)
}

// CellValues evaluates the field at the quadrature points of cell k.
// vals is point-major with length Quad().Len()*NumComp(): vals[q*nc+c]
// holds component c at point q.
func (u *Field) CellValues(k int, vals []float64) {
	var (
		cell = u.fs.dsc.mesh.Cells[k]
		quad = u.fs.dsc.quad
		nc   = u.fs.nComp
	)
	for q := range quad.W {
		bary := quad.Bary[q]
		for c := 0; c < nc; c++ {
			v := 0.
			for i := 0; i < 3; i++ {
				v += bary[i] * u.Coeffs[cell[i]*nc+c]
			}
			vals[q*nc+c] = v
		}
	}
}

// Dot is the plain coefficient dot product of two primal fields.
func (u *Field) Dot(w *Field) float64 {
	CheckSameSpace(u.fs, w.fs)
	return floats.Dot(u.Coeffs, w.Coeffs)
}

// MassInner is the L2 inner product u'*M*w through the space's mass
// matrix. It is the pairing that makes primal coefficient vectors
// comparable as functions.
func (u *Field) MassInner(w *Field) float64 {
	CheckSameSpace(u.fs, w.fs)
	var inner float64
	u.fs.mass.DoNonZero(func(i, j int, v float64) {
		inner += u.Coeffs[i] * v * w.Coeffs[j]
	})
	return inner
}

// Norm is the L2 norm induced by MassInner.
func (u *Field) Norm() float64 {
	return math.Sqrt(u.MassInner(u))
}

// Pair evaluates the linear functional f on u.
func (f *DualField) Pair(u *Field) float64 {
	CheckSameSpace(f.fs, u.fs)
	return floats.Dot(f.Coeffs, u.Coeffs)
}

// CheckSameSpace enforces the precondition that two fields were built
// from the same function space. A mismatch is a programmer error, not a
// recoverable condition.
func CheckSameSpace(a, b *FunctionSpace) {
	if a != b {
		panic(fmt.Errorf("fields belong to different function spaces: %s/%d dofs vs %s/%d dofs",
			a.rank, a.nDof, b.rank, b.nDof))
	}
}
