package level

import "gzgl/internal/fixed"

// Plane is a floor or ceiling plane: a*x + b*y + c*z + d = 0, with ic = 1/c.
type Plane struct {
	A, B, C, D, IC fixed.Fixed
}

// FloorPlane returns a level floor at height h.
func FloorPlane(h fixed.Fixed) Plane {
	return Plane{C: fixed.FracUnit, D: -h, IC: fixed.FracUnit}
}

// CeilingPlane returns a level ceiling at height h.
func CeilingPlane(h fixed.Fixed) Plane {
	return Plane{C: -fixed.FracUnit, D: h, IC: -fixed.FracUnit}
}

// ZatPoint returns the plane height at (x, y).
func (p Plane) ZatPoint(x, y fixed.Fixed) fixed.Fixed {
	return fixed.Mul(p.IC, -p.D-fixed.DMulScale16(p.A, x, p.B, y))
}

// SetHeight moves a level plane so that it passes through h.
func (p *Plane) SetHeight(h fixed.Fixed) {
	if p.C > 0 {
		p.D = -h
	} else {
		p.D = h
	}
}

type SectorFlags uint32

const (
	SecfIgnoreHeightSec SectorFlags = 1 << iota
	SecfFakeFloorOnly
)

type ColorMap struct {
	Color PalEntry
	Fade  PalEntry
}

type FFloorFlags uint32

const (
	FFFadeWalls FFloorFlags = 1 << iota
)

// FFloor is a 3D floor whose model sector provides its planes.
type FFloor struct {
	Flags FFloorFlags
	Model *Sector
}

// LightListEntry is one band of a sector split by 3D floors, top to bottom.
type LightListEntry struct {
	Plane  Plane
	Blend  PalEntry
	Caster *FFloor
}

type ExtraFloors struct {
	FFloors   []*FFloor
	LightList []LightListEntry
}

type Sector struct {
	Index        int
	FloorPlane   Plane
	CeilingPlane Plane
	FloorTex     TextureID
	CeilingTex   TextureID
	LightLevel   int
	// HeightSec is the control sector of a transfer-heights effect.
	HeightSec *Sector
	MoreFlags SectorFlags
	ColorMap  ColorMap
	// Blends shown when the view is inside the heightsec's lower, middle or upper area.
	BottomMap, MidMap, TopMap PalEntry
	XFloor                    ExtraFloors
	// FloorStack and CeilingStack group stacked-sector visplanes; zero means none.
	FloorStack, CeilingStack int
	Things                   []*Thing
	ValidCount               int
}

// Fogged reports whether the sector's fade color puts it in the fog lists.
func (s *Sector) Fogged() bool { return s.ColorMap.Fade.RGB() != 0 }

func (s *Sector) FloorAt(x, y fixed.Fixed) fixed.Fixed   { return s.FloorPlane.ZatPoint(x, y) }
func (s *Sector) CeilingAt(x, y fixed.Fixed) fixed.Fixed { return s.CeilingPlane.ZatPoint(x, y) }
