package fem

// Quadrature is a rule on the reference triangle in barycentric
// coordinates. Weights sum to one; the physical quadrature weight of
// point q on a cell is W[q] times the cell area.
type Quadrature struct {
	Bary [][3]float64
	W    []float64
}

func (q *Quadrature) Len() int { return len(q.W) }

// NewTriangleQuadrature returns the symmetric three-point edge-midpoint
// rule, exact for quadratics. That is enough to integrate P1 mass
// matrices exactly, and it is the rule every assembly loop in this
// module shares.
func NewTriangleQuadrature() (q *Quadrature) {
	q = &Quadrature{
		Bary: [][3]float64{
			{0.5, 0.5, 0},
			{0, 0.5, 0.5},
			{0.5, 0, 0.5},
		},
		W: []float64{1. / 3., 1. / 3., 1. / 3.},
	}
	return
}
