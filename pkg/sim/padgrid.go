package sim

import "github.com/pitchsim/pitchsim/pkg/geom"

// padGrid indexes pads by XY cell for O(1) average pickup queries.
type padGrid struct {
	cellSize float32
	min      geom.Vec
	nx, ny   int
	cells    [][]*BoostPad
}

const padGridCellSize = 512.0

func newPadGrid(pads []*BoostPad) *padGrid {
	g := &padGrid{cellSize: padGridCellSize}
	if len(pads) == 0 {
		return g
	}

	min := pads[0].Config.Pos
	max := min
	for _, p := range pads[1:] {
		pos := p.Config.Pos
		min.X = geom.Minf(min.X, pos.X)
		min.Y = geom.Minf(min.Y, pos.Y)
		max.X = geom.Maxf(max.X, pos.X)
		max.Y = geom.Maxf(max.Y, pos.Y)
	}

	// pad sensors can extend a cell past the outermost pad centers
	g.min = geom.Vec{X: min.X - padGridCellSize, Y: min.Y - padGridCellSize}
	g.nx = int((max.X-g.min.X)/g.cellSize) + 2
	g.ny = int((max.Y-g.min.Y)/g.cellSize) + 2
	g.cells = make([][]*BoostPad, g.nx*g.ny)

	for _, p := range pads {
		// register the pad in every cell its sensor can reach
		r := float32(padSensorRadiusSmall)
		if p.Config.IsBig {
			r = padSensorRadiusBig
		}
		x0, y0 := g.cellAt(p.Config.Pos.X-r, p.Config.Pos.Y-r)
		x1, y1 := g.cellAt(p.Config.Pos.X+r, p.Config.Pos.Y+r)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				idx := y*g.nx + x
				g.cells[idx] = append(g.cells[idx], p)
			}
		}
	}
	return g
}

func (g *padGrid) cellAt(x, y float32) (int, int) {
	cx := int((x - g.min.X) / g.cellSize)
	cy := int((y - g.min.Y) / g.cellSize)
	if cx < 0 {
		cx = 0
	}
	if cx >= g.nx {
		cx = g.nx - 1
	}
	if cy < 0 {
		cy = 0
	}
	if cy >= g.ny {
		cy = g.ny - 1
	}
	return cx, cy
}

// padsNear returns the pads whose sensors can overlap a position.
func (g *padGrid) padsNear(pos geom.Vec) []*BoostPad {
	if g.nx == 0 || g.ny == 0 {
		return nil
	}
	x, y := g.cellAt(pos.X, pos.Y)
	return g.cells[y*g.nx+x]
}
