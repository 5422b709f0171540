// Package linsolve provides the iterative linear-algebra backend for the
// regularization operators: sparse matrix-vector products, an implicit
// operator sum, preconditioned conjugate gradients and a
// constraint-aware solve entry point.
package linsolve

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// Operator is a square linear operator given by its action on a vector.
type Operator interface {
	Dims() (r, c int)
	// MulVec computes dst = A x. dst and x must not alias.
	MulVec(dst, x []float64)
}

// CSROp adapts a compressed sparse row matrix to the Operator interface.
type CSROp struct {
	M *sparse.CSR
}

func (a CSROp) Dims() (r, c int) { return a.M.Dims() }

func (a CSROp) MulVec(dst, x []float64) {
	r, c := a.M.Dims()
	if len(dst) != r || len(x) != c {
		panic(fmt.Errorf("operator is %dx%d, got dst length %d, x length %d", r, c, len(dst), len(x)))
	}
	for i := range dst {
		dst[i] = 0
	}
	a.M.DoNonZero(func(i, j int, v float64) {
		dst[i] += v * x[j]
	})
}

// Sum is the implicit sum A + B of two operators of equal dimension, so
// e.g. mass + stiffness never needs to be formed explicitly.
type Sum struct {
	A, B Operator
	work []float64
}

func NewSum(a, b Operator) *Sum {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		panic(fmt.Errorf("operator sum dimension mismatch: %dx%d vs %dx%d", ar, ac, br, bc))
	}
	return &Sum{A: a, B: b, work: make([]float64, ar)}
}

func (s *Sum) Dims() (r, c int) { return s.A.Dims() }

func (s *Sum) MulVec(dst, x []float64) {
	s.A.MulVec(dst, x)
	s.B.MulVec(s.work, x)
	for i := range dst {
		dst[i] += s.work[i]
	}
}

// Preconditioner approximately applies the inverse of an operator.
type Preconditioner interface {
	Apply(dst, r []float64)
}

// Identity is the trivial preconditioner.
type Identity struct{}

func (Identity) Apply(dst, r []float64) { copy(dst, r) }

// Jacobi is diagonal scaling. Zero diagonal entries pass through
// unscaled.
type Jacobi struct {
	invDiag []float64
}

func NewJacobi(a *sparse.CSR) (p *Jacobi) {
	n, _ := a.Dims()
	p = &Jacobi{invDiag: make([]float64, n)}
	for i := 0; i < n; i++ {
		if d := a.At(i, i); d != 0 {
			p.invDiag[i] = 1 / d
		} else {
			p.invDiag[i] = 1
		}
	}
	return
}

func (p *Jacobi) Apply(dst, r []float64) {
	for i := range dst {
		dst[i] = p.invDiag[i] * r[i]
	}
}
