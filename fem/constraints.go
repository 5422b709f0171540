package fem

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

type constraintEntry struct {
	Dof   int
	Coeff float64
}

type constraintLine struct {
	entries []constraintEntry
	inhom   float64
}

// ConstraintSet holds algebraic constraints on degrees of freedom:
// x[dof] = inhom + sum_k coeff_k * x[other_k]. A line with no entries is
// a Dirichlet condition. The set must be closed before it is used for
// assembly; closing resolves chained constraints and freezes the set.
type ConstraintSet struct {
	n      int
	lines  map[int]*constraintLine
	closed bool
}

func NewConstraintSet(n int) *ConstraintSet {
	return &ConstraintSet{
		n:     n,
		lines: make(map[int]*constraintLine),
	}
}

func (cs *ConstraintSet) checkOpen() {
	if cs.closed {
		panic("constraint set is closed")
	}
}

func (cs *ConstraintSet) line(dof int) *constraintLine {
	if dof < 0 || dof >= cs.n {
		panic(fmt.Errorf("constrained dof %d out of range [0,%d)", dof, cs.n))
	}
	l, ok := cs.lines[dof]
	if !ok {
		l = &constraintLine{}
		cs.lines[dof] = l
	}
	return l
}

// AddLine declares dof constrained. Without further entries this is a
// homogeneous Dirichlet condition.
func (cs *ConstraintSet) AddLine(dof int) {
	cs.checkOpen()
	cs.line(dof)
}

// AddEntry makes the constrained dof depend on another dof, as for a
// hanging-node interpolation constraint.
func (cs *ConstraintSet) AddEntry(dof, other int, coeff float64) {
	cs.checkOpen()
	if dof == other {
		panic(fmt.Errorf("dof %d cannot be constrained to itself", dof))
	}
	l := cs.line(dof)
	l.entries = append(l.entries, constraintEntry{Dof: other, Coeff: coeff})
}

func (cs *ConstraintSet) SetInhomogeneity(dof int, v float64) {
	cs.checkOpen()
	cs.line(dof).inhom = v
}

// Close resolves constraints whose entries reference other constrained
// dofs, so that afterwards every entry points at an unconstrained dof.
func (cs *ConstraintSet) Close() {
	cs.checkOpen()
	for pass := 0; ; pass++ {
		if pass > len(cs.lines)+1 {
			panic("cyclic constraints")
		}
		changed := false
		for _, l := range cs.lines {
			resolved := l.entries[:0:0]
			for _, e := range l.entries {
				if dep, ok := cs.lines[e.Dof]; ok {
					for _, de := range dep.entries {
						resolved = append(resolved, constraintEntry{Dof: de.Dof, Coeff: e.Coeff * de.Coeff})
					}
					l.inhom += e.Coeff * dep.inhom
					changed = true
				} else {
					resolved = append(resolved, e)
				}
			}
			l.entries = resolved
		}
		if !changed {
			break
		}
	}
	cs.closed = true
}

func (cs *ConstraintSet) checkClosed() {
	if !cs.closed {
		panic("constraint set must be closed before use")
	}
}

func (cs *ConstraintSet) IsConstrained(dof int) bool {
	_, ok := cs.lines[dof]
	return ok
}

func (cs *ConstraintSet) NumConstraints() int { return len(cs.lines) }

// Distribute overwrites the constrained entries of x with the values
// their constraint lines prescribe.
func (cs *ConstraintSet) Distribute(x []float64) {
	cs.checkClosed()
	if len(x) != cs.n {
		panic(fmt.Errorf("vector length %d does not match constraint set size %d", len(x), cs.n))
	}
	for dof, l := range cs.lines {
		v := l.inhom
		for _, e := range l.entries {
			v += e.Coeff * x[e.Dof]
		}
		x[dof] = v
	}
}

// ZeroConstrained zeroes the constrained entries of a right-hand side so
// that the reduced linear system stays decoupled from them.
func (cs *ConstraintSet) ZeroConstrained(b []float64) {
	cs.checkClosed()
	for dof := range cs.lines {
		b[dof] = 0
	}
}

// DistributeLocalToGlobal scatters a cell-local vector into the global
// vector, rerouting contributions at constrained dofs onto the dofs
// they resolve to.
func (cs *ConstraintSet) DistributeLocalToGlobal(local []float64, dofs []int, global []float64) {
	cs.checkClosed()
	if len(local) != len(dofs) {
		panic(fmt.Errorf("local vector length %d does not match dof count %d", len(local), len(dofs)))
	}
	for i, gi := range dofs {
		l, ok := cs.lines[gi]
		if !ok {
			global[gi] += local[i]
			continue
		}
		for _, e := range l.entries {
			global[e.Dof] += e.Coeff * local[i]
		}
	}
}

// DistributeLocalToGlobalMat scatters a cell-local matrix into the global
// sparse matrix. Contributions touching a constrained row or column are
// rerouted through the constraint entries, and the local diagonal of a
// constrained dof is kept on the global diagonal so the assembled
// operator stays positive definite on the constrained subspace.
func (cs *ConstraintSet) DistributeLocalToGlobalMat(local *mat.Dense, dofs []int, global *sparse.DOK) {
	cs.checkClosed()
	nr, nc := local.Dims()
	if nr != len(dofs) || nc != len(dofs) {
		panic(fmt.Errorf("local matrix dims %dx%d do not match dof count %d", nr, nc, len(dofs)))
	}
	add := func(i, j int, v float64) {
		global.Set(i, j, global.At(i, j)+v)
	}
	for i, gi := range dofs {
		li, iConstrained := cs.lines[gi]
		for j, gj := range dofs {
			v := local.At(i, j)
			if v == 0 {
				continue
			}
			lj, jConstrained := cs.lines[gj]
			switch {
			case !iConstrained && !jConstrained:
				add(gi, gj, v)
			case iConstrained && !jConstrained:
				for _, ei := range li.entries {
					add(ei.Dof, gj, ei.Coeff*v)
				}
			case !iConstrained && jConstrained:
				for _, ej := range lj.entries {
					add(gi, ej.Dof, ej.Coeff*v)
				}
			default:
				for _, ei := range li.entries {
					for _, ej := range lj.entries {
						add(ei.Dof, ej.Dof, ei.Coeff*ej.Coeff*v)
					}
				}
				if i == j {
					add(gi, gi, v)
				}
			}
		}
		if iConstrained && global.At(gi, gi) == 0 && local.At(i, i) != 0 {
			add(gi, gi, local.At(i, i))
		}
	}
}
