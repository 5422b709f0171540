package fem

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Rank selects between scalar and vector valued fields over the same
// mesh. Vector fields carry one component per space dimension.
type Rank int

const (
	Scalar Rank = iota
	Vector
)

func (r Rank) String() string {
	switch r {
	case Scalar:
		return "scalar"
	case Vector:
		return "vector"
	}
	return fmt.Sprintf("Rank(%d)", int(r))
}

// FunctionSpace is the per-rank view of a Discretization: continuous P1
// elements on the mesh with nComp components per vertex. Dof numbering
// is vertex-major, component-minor. The space owns its constraint set
// and its precomputed mass matrix; both are immutable once the
// discretization is built and are shared read-only by every field and
// regularizer referencing the space.
type FunctionSpace struct {
	dsc         *Discretization
	rank        Rank
	nComp       int
	nDof        int
	constraints *ConstraintSet
	mass        *sparse.CSR
}

func (fs *FunctionSpace) Discretization() *Discretization { return fs.dsc }
func (fs *FunctionSpace) Rank() Rank                      { return fs.rank }
func (fs *FunctionSpace) NumComp() int                    { return fs.nComp }
func (fs *FunctionSpace) NumDofs() int                    { return fs.nDof }
func (fs *FunctionSpace) Constraints() *ConstraintSet     { return fs.constraints }

// MassMatrix returns the precomputed mass matrix. Callers must treat it
// as read-only; it is shared across every regularizer built on this
// space.
func (fs *FunctionSpace) MassMatrix() *sparse.CSR { return fs.mass }

// DofsPerCell is the local dof count of one triangle.
func (fs *FunctionSpace) DofsPerCell() int { return 3 * fs.nComp }

// CellDofs fills dofs (length DofsPerCell) with the global dof indices
// of cell k. Local ordering is vertex-major, component-minor, matching
// the global layout.
func (fs *FunctionSpace) CellDofs(k int, dofs []int) {
	var (
		c  = fs.dsc.mesh.Cells[k]
		nc = fs.nComp
	)
	for i := 0; i < 3; i++ {
		for comp := 0; comp < nc; comp++ {
			dofs[i*nc+comp] = c[i]*nc + comp
		}
	}
}

// NewDOK allocates an empty assembly matrix over this space's dofs.
// Assembly goes through a DOK and is converted to CSR once complete,
// the same flow the global mass matrix uses.
func (fs *FunctionSpace) NewDOK() *sparse.DOK {
	return sparse.NewDOK(fs.nDof, fs.nDof)
}

// FieldGradient computes the (cellwise constant) gradient of the P1
// field with coefficients u on cell k. du has length NumComp*2, laid
// out component-major: du[c*2+d] = d u_c / d x_d.
func (fs *FunctionSpace) FieldGradient(k int, cg *CellGeom, u []float64, du []float64) {
	var (
		c  = fs.dsc.mesh.Cells[k]
		nc = fs.nComp
	)
	for i := range du {
		du[i] = 0
	}
	for i := 0; i < 3; i++ {
		g := cg.Grad[i]
		for comp := 0; comp < nc; comp++ {
			coef := u[c[i]*nc+comp]
			du[comp*2] += coef * g[0]
			du[comp*2+1] += coef * g[1]
		}
	}
}

// assembleMass builds the consistent mass matrix by the shared
// quadrature rule, distributing constraints during the scatter.
func (fs *FunctionSpace) assembleMass() {
	var (
		mesh    = fs.dsc.mesh
		quad    = fs.dsc.quad
		nLocal  = fs.DofsPerCell()
		cellMat = mat.NewDense(nLocal, nLocal, nil)
		dofs    = make([]int, nLocal)
		dok     = fs.NewDOK()
	)
	for k := 0; k < mesh.NumCells(); k++ {
		cg := mesh.CellGeom(k)
		cellMat.Zero()
		for q := 0; q < quad.Len(); q++ {
			var (
				bary = quad.Bary[q]
				jxw  = quad.W[q] * cg.Area
			)
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					v := bary[i] * bary[j] * jxw
					for comp := 0; comp < fs.nComp; comp++ {
						a, b := i*fs.nComp+comp, j*fs.nComp+comp
						cellMat.Set(a, b, cellMat.At(a, b)+v)
					}
				}
			}
		}
		fs.CellDofs(k, dofs)
		fs.constraints.DistributeLocalToGlobalMat(cellMat, dofs, dok)
	}
	fs.mass = dok.ToCSR()
}
