package fem

import "fmt"

// Discretization bundles a mesh, the shared quadrature rule and one
// function space per rank. It is immutable once built and is shared
// read-only by every field and regularizer constructed from it; those
// consumers hold non-owning references and must never outlive it.
type Discretization struct {
	mesh   *Mesh
	quad   *Quadrature
	spaces [2]*FunctionSpace
}

// NewDiscretization builds the scalar and vector P1 spaces over mesh.
// With dirichletBoundary set, every dof on the mesh boundary is
// constrained to zero in both spaces; otherwise the constraint sets are
// empty (natural boundary conditions).
func NewDiscretization(mesh *Mesh, dirichletBoundary bool) (dsc *Discretization) {
	dsc = &Discretization{
		mesh: mesh,
		quad: NewTriangleQuadrature(),
	}
	for _, rank := range []Rank{Scalar, Vector} {
		nComp := 1
		if rank == Vector {
			nComp = 2
		}
		fs := &FunctionSpace{
			dsc:   dsc,
			rank:  rank,
			nComp: nComp,
			nDof:  nComp * mesh.NumVerts(),
		}
		fs.constraints = NewConstraintSet(fs.nDof)
		if dirichletBoundary {
			for v := 0; v < mesh.NumVerts(); v++ {
				if !mesh.Boundary[v] {
					continue
				}
				for comp := 0; comp < nComp; comp++ {
					fs.constraints.AddLine(v*nComp + comp)
				}
			}
		}
		fs.constraints.Close()
		fs.assembleMass()
		dsc.spaces[rank] = fs
	}
	return
}

func (dsc *Discretization) Mesh() *Mesh       { return dsc.mesh }
func (dsc *Discretization) Quad() *Quadrature { return dsc.quad }

// Space returns the function space for the given rank.
func (dsc *Discretization) Space(rank Rank) *FunctionSpace {
	if rank != Scalar && rank != Vector {
		panic(fmt.Errorf("unknown rank %d", int(rank)))
	}
	return dsc.spaces[rank]
}
