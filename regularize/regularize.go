// Package regularize implements the variational penalty functionals used
// to regularize glacier inverse problems: the square-gradient (low-pass)
// penalty and the pseudo-Huber total-variation penalty. Each exposes the
// penalty value, its Fréchet derivative and a filtering solve against the
// penalty's (possibly linearized) Hessian.
package regularize

import "github.com/icetools/iceinv/fem"

// FieldRegularizer is the contract the outer inverse-optimization loop
// consumes. Evaluate returns the (nonnegative) penalty of a field,
// Derivative its weak-form derivative as a dual field, and Filter the
// field v solving (mass + Hessian at u) v = f. For a quadratic penalty
// the linearization point u is unused but kept for interface uniformity.
type FieldRegularizer interface {
	Evaluate(u *fem.Field) float64
	Derivative(u *fem.Field) *fem.DualField
	Filter(u *fem.Field, f *fem.DualField) (*fem.Field, error)
}

// Every filtering solve shares the same cap and tolerance.
const (
	solverMaxIterations = 1000
	solverTolerance     = 1.0e-10
)

var (
	_ FieldRegularizer = (*SquareGradient)(nil)
	_ FieldRegularizer = (*TotalVariation)(nil)
)
