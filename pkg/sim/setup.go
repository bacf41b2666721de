package sim

import (
	"github.com/pitchsim/pitchsim/pkg/collision"
	"github.com/pitchsim/pitchsim/pkg/geom"
	"github.com/pitchsim/pitchsim/pkg/phys"
)

// dropshotFloorID tags the floor body whose collisions the ball skips over
// broken tiles.
const dropshotFloorID = 0xd507

// buildStaticGeometry adds the mode's world collision bodies. Loaded
// triangle soups refine the hull; the procedural planes below are the
// fallback and always provide the floor.
func (a *Arena) buildStaticGeometry() {
	if !a.gameMode.HasArenaHull() {
		if a.gameMode == TheVoidWithGround {
			a.addStaticPlane(geom.Vec{Z: 1}, 0, 0)
		}
		return
	}

	switch a.gameMode {
	case Hoops:
		a.addStaticPlane(geom.Vec{Z: 1}, 0, 0)
		a.addStaticPlane(geom.Vec{Z: -1}, -HoopsHeight, 0)
		a.addStaticPlane(geom.Vec{X: 1}, -HoopsExtentX, 0)
		a.addStaticPlane(geom.Vec{X: -1}, -HoopsExtentX, 0)
		a.addStaticPlane(geom.Vec{Y: 1}, -HoopsExtentY, 0)
		a.addStaticPlane(geom.Vec{Y: -1}, -HoopsExtentY, 0)
	case Dropshot:
		a.addStaticPlane(geom.Vec{Z: 1}, 0, dropshotFloorID)
		a.addStaticPlane(geom.Vec{Z: -1}, -2020, 0)
		a.addStaticPlane(geom.Vec{X: 1}, -4555, 0)
		a.addStaticPlane(geom.Vec{X: -1}, -4555, 0)
		a.addStaticPlane(geom.Vec{Y: 1}, -5025, 0)
		a.addStaticPlane(geom.Vec{Y: -1}, -5025, 0)
	default: // soccar-shaped field
		a.addStaticPlane(geom.Vec{Z: 1}, 0, 0)
		a.addStaticPlane(geom.Vec{Z: -1}, -ArenaHeight, 0)
		a.addStaticPlane(geom.Vec{X: 1}, -ArenaExtentX, 0)
		a.addStaticPlane(geom.Vec{X: -1}, -ArenaExtentX, 0)

		if tris := collision.MeshesFor(a.gameMode.String()); tris != nil {
			a.addStaticMesh(tris)
		} else {
			a.addStaticMesh(soccarBackWallMesh())
		}
	}
}

func (a *Arena) addStaticPlane(normal geom.Vec, offset float32, userID uint32) {
	body := phys.NewBody(phys.PlaneShape{Normal: normal, Offset: offset}, 0)
	body.Kind = entityWorld
	body.UserID = userID
	body.Friction = 1
	body.Restitution = 0
	a.world.AddBody(body)
}

func (a *Arena) addStaticMesh(tris []phys.Triangle) {
	body := phys.NewBody(phys.NewTriMeshShape(tris), 0)
	body.Kind = entityWorld
	body.Friction = 1
	body.Restitution = 0
	a.world.AddBody(body)
}

// soccarBackWallMesh builds both back walls with goal cutouts plus the net
// boxes behind them. Triangle winding is normalized so every normal faces the
// playable side.
func soccarBackWallMesh() []phys.Triangle {
	var tris []phys.Triangle

	quad := func(a, b, c, d, facing geom.Vec) {
		t1 := phys.Triangle{A: a, B: b, C: c}
		if t1.Normal().Dot(facing) < 0 {
			a, b, c, d = d, c, b, a
		}
		tris = append(tris,
			phys.Triangle{A: a, B: b, C: c},
			phys.Triangle{A: a, B: c, C: d},
		)
	}

	for _, yDir := range []float32{-1, 1} {
		y := yDir * ArenaExtentY
		backY := yDir * (ArenaExtentY + GoalDepth)
		inward := geom.Vec{Y: -yDir}

		// wall left of the goal mouth
		quad(
			geom.Vec{X: -ArenaExtentX, Y: y, Z: 0},
			geom.Vec{X: -GoalHalfWidth, Y: y, Z: 0},
			geom.Vec{X: -GoalHalfWidth, Y: y, Z: ArenaHeight},
			geom.Vec{X: -ArenaExtentX, Y: y, Z: ArenaHeight},
			inward,
		)
		// wall right of the goal mouth
		quad(
			geom.Vec{X: GoalHalfWidth, Y: y, Z: 0},
			geom.Vec{X: ArenaExtentX, Y: y, Z: 0},
			geom.Vec{X: ArenaExtentX, Y: y, Z: ArenaHeight},
			geom.Vec{X: GoalHalfWidth, Y: y, Z: ArenaHeight},
			inward,
		)
		// wall above the goal mouth
		quad(
			geom.Vec{X: -GoalHalfWidth, Y: y, Z: GoalHeight},
			geom.Vec{X: GoalHalfWidth, Y: y, Z: GoalHeight},
			geom.Vec{X: GoalHalfWidth, Y: y, Z: ArenaHeight},
			geom.Vec{X: -GoalHalfWidth, Y: y, Z: ArenaHeight},
			inward,
		)

		// net back wall
		quad(
			geom.Vec{X: -GoalHalfWidth, Y: backY, Z: 0},
			geom.Vec{X: GoalHalfWidth, Y: backY, Z: 0},
			geom.Vec{X: GoalHalfWidth, Y: backY, Z: GoalHeight},
			geom.Vec{X: -GoalHalfWidth, Y: backY, Z: GoalHeight},
			inward,
		)
		// net ceiling
		quad(
			geom.Vec{X: -GoalHalfWidth, Y: y, Z: GoalHeight},
			geom.Vec{X: GoalHalfWidth, Y: y, Z: GoalHeight},
			geom.Vec{X: GoalHalfWidth, Y: backY, Z: GoalHeight},
			geom.Vec{X: -GoalHalfWidth, Y: backY, Z: GoalHeight},
			geom.Vec{Z: -1},
		)
		// net side walls, facing the goal interior
		for _, xDir := range []float32{-1, 1} {
			x := xDir * GoalHalfWidth
			quad(
				geom.Vec{X: x, Y: y, Z: 0},
				geom.Vec{X: x, Y: backY, Z: 0},
				geom.Vec{X: x, Y: backY, Z: GoalHeight},
				geom.Vec{X: x, Y: y, Z: GoalHeight},
				geom.Vec{X: -xDir},
			)
		}
	}
	return tris
}
