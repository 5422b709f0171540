package fem

import "fmt"

// Mesh is a conforming 2D triangle mesh. Vertices are numbered globally,
// cells reference vertices counter-clockwise. Boundary marks identify
// vertices lying on the domain boundary.
type Mesh struct {
	Verts    [][2]float64
	Cells    [][3]int
	Boundary []bool // per vertex
}

func (m *Mesh) NumVerts() int { return len(m.Verts) }
func (m *Mesh) NumCells() int { return len(m.Cells) }

// NewRectangleMesh builds a structured triangulation of the rectangle
// [0,lx] x [0,ly] with nx by ny quads, each split into two triangles.
func NewRectangleMesh(nx, ny int, lx, ly float64) (m *Mesh) {
	if nx < 1 || ny < 1 || lx <= 0 || ly <= 0 {
		panic(fmt.Errorf("degenerate rectangle mesh: nx,ny = %d,%d, lx,ly = %v,%v", nx, ny, lx, ly))
	}
	var (
		nvx = nx + 1
		nvy = ny + 1
		dx  = lx / float64(nx)
		dy  = ly / float64(ny)
	)
	m = &Mesh{
		Verts:    make([][2]float64, nvx*nvy),
		Cells:    make([][3]int, 0, 2*nx*ny),
		Boundary: make([]bool, nvx*nvy),
	}
	for j := 0; j < nvy; j++ {
		for i := 0; i < nvx; i++ {
			v := j*nvx + i
			m.Verts[v] = [2]float64{float64(i) * dx, float64(j) * dy}
			m.Boundary[v] = i == 0 || i == nx || j == 0 || j == ny
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			var (
				v00 = j*nvx + i
				v10 = v00 + 1
				v01 = v00 + nvx
				v11 = v01 + 1
			)
			m.Cells = append(m.Cells, [3]int{v00, v10, v11})
			m.Cells = append(m.Cells, [3]int{v00, v11, v01})
		}
	}
	return
}

// CellGeom carries the per-cell quantities of the affine P1 map: the cell
// area and the (constant) gradients of the three vertex basis functions.
type CellGeom struct {
	Area float64
	Grad [3][2]float64
}

func (m *Mesh) CellGeom(k int) (cg CellGeom) {
	var (
		c          = m.Cells[k]
		xa, ya     = m.Verts[c[0]][0], m.Verts[c[0]][1]
		xb, yb     = m.Verts[c[1]][0], m.Verts[c[1]][1]
		xc, yc     = m.Verts[c[2]][0], m.Verts[c[2]][1]
		twiceAreaS = (xb-xa)*(yc-ya) - (xc-xa)*(yb-ya)
	)
	if twiceAreaS <= 0 {
		panic(fmt.Errorf("cell %d is degenerate or clockwise: signed double area = %v", k, twiceAreaS))
	}
	cg.Area = 0.5 * twiceAreaS
	cg.Grad[0] = [2]float64{(yb - yc) / twiceAreaS, (xc - xb) / twiceAreaS}
	cg.Grad[1] = [2]float64{(yc - ya) / twiceAreaS, (xa - xc) / twiceAreaS}
	cg.Grad[2] = [2]float64{(ya - yb) / twiceAreaS, (xb - xa) / twiceAreaS}
	return
}

// Area sums the cell areas.
func (m *Mesh) Area() (a float64) {
	for k := range m.Cells {
		a += m.CellGeom(k).Area
	}
	return
}

// Diameter is the extent of the mesh in the L-infinity metric.
func (m *Mesh) Diameter() (d float64) {
	var (
		min = [2]float64{m.Verts[0][0], m.Verts[0][1]}
		max = min
	)
	for _, v := range m.Verts {
		for i := 0; i < 2; i++ {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	for i := 0; i < 2; i++ {
		if e := max[i] - min[i]; e > d {
			d = e
		}
	}
	return
}
