package sim

import "github.com/pitchsim/pitchsim/pkg/geom"

// TileState is the damage level of one dropshot floor tile.
type TileState byte

const (
	TileFull TileState = iota
	TileDamaged
	TileBroken
)

// NumDropshotTiles is the fixed floor size: 70 hexes per team side.
const NumDropshotTiles = 140

const tilesPerSide = NumDropshotTiles / 2

// DropshotTilesState is the externally visible tile snapshot.
type DropshotTilesState struct {
	States [NumDropshotTiles]TileState
}

// dropshotTiles is the floor model: tile centers on a hex grid, 7 rows of 10
// per side, plus a neighbor table for splash damage.
type dropshotTiles struct {
	centers   [NumDropshotTiles]geom.Vec
	teams     [NumDropshotTiles]Team
	states    [NumDropshotTiles]TileState
	neighbors [NumDropshotTiles][]int
}

const (
	tileRows      = 7
	tileCols      = 10
	tileRadius    = 443.0
	tileRowPitch  = 384.0
	tileFirstRowY = 256.0
)

func newDropshotTiles() *dropshotTiles {
	t := &dropshotTiles{}

	idx := 0
	for side := 0; side < 2; side++ {
		team := TeamBlue
		yDir := float32(-1)
		if side == 1 {
			team = TeamOrange
			yDir = 1
		}
		for row := 0; row < tileRows; row++ {
			// odd rows shift half a tile for the hex packing
			xShift := float32(0)
			if row%2 == 1 {
				xShift = tileRadius / 2
			}
			for col := 0; col < tileCols; col++ {
				x := (float32(col)-float32(tileCols-1)/2)*tileRadius + xShift
				y := yDir * (tileFirstRowY + float32(row)*tileRowPitch)
				t.centers[idx] = geom.Vec{X: x, Y: y}
				t.teams[idx] = team
				idx++
			}
		}
	}

	for i := 0; i < NumDropshotTiles; i++ {
		for j := 0; j < NumDropshotTiles; j++ {
			if i == j || t.teams[i] != t.teams[j] {
				continue
			}
			if t.centers[i].DistSq(t.centers[j]) <= (tileRadius*1.3)*(tileRadius*1.3) {
				t.neighbors[i] = append(t.neighbors[i], j)
			}
		}
	}
	return t
}

// tileAt returns the index of the tile under a position, or -1.
func (t *dropshotTiles) tileAt(pos geom.Vec) int {
	best := -1
	bestDistSq := float32(tileRadius * tileRadius)
	for i := range t.centers {
		dx := pos.X - t.centers[i].X
		dy := pos.Y - t.centers[i].Y
		d := dx*dx + dy*dy
		if d < bestDistSq {
			bestDistSq = d
			best = i
		}
	}
	return best
}

func (t *dropshotTiles) damage(i int, charge int32) {
	switch t.states[i] {
	case TileFull:
		if charge >= 2 {
			t.states[i] = TileBroken
		} else {
			t.states[i] = TileDamaged
		}
	case TileDamaged:
		t.states[i] = TileBroken
	}
}

// damageAt applies charge damage to the tile under pos, spreading to
// neighbors at charge >= 2. Returns false when no tile is under pos.
func (t *dropshotTiles) damageAt(pos geom.Vec, charge int32) bool {
	i := t.tileAt(pos)
	if i < 0 {
		return false
	}
	t.damage(i, charge)
	if charge >= 2 {
		for _, n := range t.neighbors[i] {
			t.damage(n, 1)
		}
	}
	return true
}

// brokenTileAt reports whether pos sits over a broken tile, and which team
// defends it.
func (t *dropshotTiles) brokenTileAt(pos geom.Vec) (Team, bool) {
	i := t.tileAt(pos)
	if i < 0 || t.states[i] != TileBroken {
		return TeamBlue, false
	}
	return t.teams[i], true
}

func (t *dropshotTiles) getState() DropshotTilesState {
	return DropshotTilesState{States: t.states}
}

func (t *dropshotTiles) setState(s DropshotTilesState) {
	t.states = s.States
}

func (t *dropshotTiles) reset() {
	t.states = [NumDropshotTiles]TileState{}
}
