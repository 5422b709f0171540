package regularize

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/icetools/iceinv/fem"
	"github.com/icetools/iceinv/linsolve"
)

// SquareGradient penalizes the square gradient of a field,
//
//	R[u] = (alpha^2/2) * integral |grad u|^2 dx,
//
// which acts as a low-pass filter with smoothing length alpha. The
// functional is quadratic, so the weighted stiffness matrix L assembled
// at construction is its exact Hessian and Lu its exact derivative.
// Instances are immutable; changing alpha requires a new instance.
type SquareGradient struct {
	fs    *fem.FunctionSpace
	alpha float64
	L     *sparse.CSR
}

// NewSquareGradient assembles the weighted stiffness matrix
// integral alpha^2 grad phi_i . grad phi_j dx over the given rank's
// space, with constraints distributed during assembly. The space's mass
// matrix is referenced, never copied or mutated.
func NewSquareGradient(dsc *fem.Discretization, rank fem.Rank, alpha float64) (sg *SquareGradient) {
	if alpha < 0 {
		panic(fmt.Errorf("negative smoothing length %v", alpha))
	}
	var (
		fs      = dsc.Space(rank)
		mesh    = dsc.Mesh()
		nc      = fs.NumComp()
		nLocal  = fs.DofsPerCell()
		cellMat = mat.NewDense(nLocal, nLocal, nil)
		dofs    = make([]int, nLocal)
		dok     = fs.NewDOK()
		a2      = alpha * alpha
	)
	for k := 0; k < mesh.NumCells(); k++ {
		cg := mesh.CellGeom(k)
		cellMat.Zero()
		// P1 gradients are constant per cell, so the quadrature
		// collapses to a single area weight.
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				gij := cg.Grad[i][0]*cg.Grad[j][0] + cg.Grad[i][1]*cg.Grad[j][1]
				v := a2 * gij * cg.Area
				for comp := 0; comp < nc; comp++ {
					a, b := i*nc+comp, j*nc+comp
					cellMat.Set(a, b, cellMat.At(a, b)+v)
				}
			}
		}
		fs.CellDofs(k, dofs)
		fs.Constraints().DistributeLocalToGlobalMat(cellMat, dofs, dok)
	}
	sg = &SquareGradient{
		fs:    fs,
		alpha: alpha,
		L:     dok.ToCSR(),
	}
	return
}

func (sg *SquareGradient) Alpha() float64 { return sg.alpha }

// Stiffness exposes the assembled operator L for inspection; callers
// must treat it as read-only.
func (sg *SquareGradient) Stiffness() *sparse.CSR { return sg.L }

// Evaluate returns 0.5 * u^T L u.
func (sg *SquareGradient) Evaluate(u *fem.Field) float64 {
	fem.CheckSameSpace(sg.fs, u.Space())
	lu := make([]float64, sg.fs.NumDofs())
	linsolve.CSROp{M: sg.L}.MulVec(lu, u.Coeffs)
	return 0.5 * floats.Dot(lu, u.Coeffs)
}

// Derivative returns L u. The penalty is quadratic, so this is exact.
func (sg *SquareGradient) Derivative(u *fem.Field) (f *fem.DualField) {
	fem.CheckSameSpace(sg.fs, u.Space())
	f = sg.fs.NewDualField()
	linsolve.CSROp{M: sg.L}.MulVec(f.Coeffs, u.Coeffs)
	return
}

// Filter solves (M + L) v = f by conjugate gradients, treating the sum
// as an implicit operator. The linearization point is ignored: the
// penalty is quadratic and its Hessian is L everywhere.
//
// TODO: use an actual preconditioner
func (sg *SquareGradient) Filter(_ *fem.Field, f *fem.DualField) (v *fem.Field, err error) {
	fem.CheckSameSpace(sg.fs, f.Space())
	v = sg.fs.NewField()
	op := linsolve.NewSum(linsolve.CSROp{M: sg.fs.MassMatrix()}, linsolve.CSROp{M: sg.L})
	if _, err = linsolve.CG(op, v.Coeffs, f.Coeffs, linsolve.Identity{}, linsolve.Settings{
		MaxIterations: solverMaxIterations,
		Tolerance:     solverTolerance,
	}); err != nil {
		return nil, err
	}
	return
}
