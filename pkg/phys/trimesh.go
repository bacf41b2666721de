package phys

import "github.com/pitchsim/pitchsim/pkg/geom"

type Triangle struct {
	A, B, C geom.Vec
}

func (t Triangle) Normal() geom.Vec {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Normalized()
}

func (t Triangle) bounds() (geom.Vec, geom.Vec) {
	min := geom.Vec{
		X: geom.Minf(t.A.X, geom.Minf(t.B.X, t.C.X)),
		Y: geom.Minf(t.A.Y, geom.Minf(t.B.Y, t.C.Y)),
		Z: geom.Minf(t.A.Z, geom.Minf(t.B.Z, t.C.Z)),
	}
	max := geom.Vec{
		X: geom.Maxf(t.A.X, geom.Maxf(t.B.X, t.C.X)),
		Y: geom.Maxf(t.A.Y, geom.Maxf(t.B.Y, t.C.Y)),
		Z: geom.Maxf(t.A.Z, geom.Maxf(t.B.Z, t.C.Z)),
	}
	return min, max
}

// TriMeshShape is a static triangle soup with a uniform XY grid over triangle
// indices so queries only visit nearby triangles.
type TriMeshShape struct {
	Tris []Triangle

	min, max geom.Vec
	cellSize float32
	nx, ny   int
	cells    [][]int32
}

const triGridTargetCells = 64

func NewTriMeshShape(tris []Triangle) *TriMeshShape {
	m := &TriMeshShape{Tris: tris}
	if len(tris) == 0 {
		return m
	}

	m.min, m.max = tris[0].bounds()
	for _, t := range tris[1:] {
		lo, hi := t.bounds()
		m.min = vecMin(m.min, lo)
		m.max = vecMax(m.max, hi)
	}

	span := geom.Maxf(m.max.X-m.min.X, m.max.Y-m.min.Y)
	m.cellSize = geom.Maxf(span/triGridTargetCells, 1)
	m.nx = int((m.max.X-m.min.X)/m.cellSize) + 1
	m.ny = int((m.max.Y-m.min.Y)/m.cellSize) + 1
	m.cells = make([][]int32, m.nx*m.ny)

	for i, t := range m.Tris {
		lo, hi := t.bounds()
		x0, y0 := m.cellAt(lo)
		x1, y1 := m.cellAt(hi)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				idx := y*m.nx + x
				m.cells[idx] = append(m.cells[idx], int32(i))
			}
		}
	}
	return m
}

func (m *TriMeshShape) cellAt(p geom.Vec) (int, int) {
	x := int((p.X - m.min.X) / m.cellSize)
	y := int((p.Y - m.min.Y) / m.cellSize)
	return clampi(x, 0, m.nx-1), clampi(y, 0, m.ny-1)
}

// ForEachTriangleIn visits triangles whose grid cells overlap the AABB. A
// triangle spanning several cells is visited once per cell; callers that care
// deduplicate by index.
func (m *TriMeshShape) ForEachTriangleIn(lo, hi geom.Vec, visit func(i int32, t Triangle)) {
	if len(m.Tris) == 0 {
		return
	}
	x0, y0 := m.cellAt(lo)
	x1, y1 := m.cellAt(hi)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			for _, i := range m.cells[y*m.nx+x] {
				visit(i, m.Tris[i])
			}
		}
	}
}

func (m *TriMeshShape) LocalInertia(float32) geom.Vec { return geom.Vec{} }

func (m *TriMeshShape) AABB(geom.Vec, geom.RotMat) (geom.Vec, geom.Vec) {
	return m.min, m.max
}

func vecMin(a, b geom.Vec) geom.Vec {
	return geom.Vec{X: geom.Minf(a.X, b.X), Y: geom.Minf(a.Y, b.Y), Z: geom.Minf(a.Z, b.Z)}
}

func vecMax(a, b geom.Vec) geom.Vec {
	return geom.Vec{X: geom.Maxf(a.X, b.X), Y: geom.Maxf(a.Y, b.Y), Z: geom.Maxf(a.Z, b.Z)}
}

func clampi(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
