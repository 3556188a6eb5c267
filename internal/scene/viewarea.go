package scene

import (
	"gzgl/internal/fixed"
	"gzgl/internal/level"
)

// Area places the view relative to a transfer-heights control sector.
type Area int

const (
	AreaDefault Area = iota
	AreaNormal
	AreaAbove
	AreaBelow
)

func (a Area) String() string {
	switch a {
	case AreaNormal:
		return "normal"
	case AreaAbove:
		return "above"
	case AreaBelow:
		return "below"
	}
	return "default"
}

// viewClearance keeps the eye this far from the floor and ceiling.
const viewClearance = 4 * fixed.FracUnit

// Viewpoint is the eye the scene is built from.
type Viewpoint struct {
	X, Y, Z            fixed.Fixed
	Angle, Pitch, Roll fixed.Angle
	// Sector is the render sector containing the eye.
	Sector *level.Sector
	Area   Area
	// Actor is skipped when emitting sprites.
	Actor *Actor
}

// SetViewArea resolves the render sector, clamps the eye height and classifies
// the area.
func SetViewArea(lvl *level.Level, vp *Viewpoint) {
	sec := lvl.PointInSubsector(vp.X, vp.Y).RenderSector
	vp.Sector = sec

	floor := sec.FloorAt(vp.X, vp.Y) + viewClearance
	ceil := sec.CeilingAt(vp.X, vp.Y) - viewClearance
	if vp.Z < floor {
		vp.Z = floor
	}
	if vp.Z > ceil {
		vp.Z = ceil
	}
	// a sector too low to fit the clearance keeps the eye at the floor bound
	if floor > ceil {
		vp.Z = floor
	}

	hs := sec.HeightSec
	if hs == nil || hs.MoreFlags&level.SecfIgnoreHeightSec != 0 {
		vp.Area = AreaDefault
		return
	}
	switch {
	case vp.Z <= hs.FloorAt(vp.X, vp.Y):
		vp.Area = AreaBelow
	case vp.Z > hs.CeilingAt(vp.X, vp.Y) && hs.MoreFlags&level.SecfFakeFloorOnly == 0:
		vp.Area = AreaAbove
	default:
		vp.Area = AreaNormal
	}
}
