// Package level holds the map data the renderer walks: BSP nodes, subsectors, segs,
// lines, sides and sectors with their floor and ceiling planes.
package level

import (
	"errors"

	"gzgl/internal/fixed"
)

// TextureID names a texture in the material service. NoTexture draws nothing.
type TextureID int

const NoTexture TextureID = 0

// PalEntry is an ARGB color packed the way the engine stores colormap blends.
type PalEntry uint32

func NewPalEntry(a, r, g, b uint8) PalEntry {
	return PalEntry(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (p PalEntry) A() uint8 { return uint8(p >> 24) }
func (p PalEntry) R() uint8 { return uint8(p >> 16) }
func (p PalEntry) G() uint8 { return uint8(p >> 8) }
func (p PalEntry) B() uint8 { return uint8(p) }

// RGB returns the entry with its alpha cleared.
func (p PalEntry) RGB() PalEntry { return p & 0xffffff }

// WithAlpha returns the entry with its alpha replaced.
func (p PalEntry) WithAlpha(a uint8) PalEntry { return p.RGB() | PalEntry(a)<<24 }

type Vertex struct {
	X, Y fixed.Fixed
}

// Bounding box indices, matching the node format.
const (
	BoxTop = iota
	BoxBottom
	BoxLeft
	BoxRight
)

type BBox [4]fixed.Fixed

// EmptyBBox returns a box that any AddPoint will overwrite.
func EmptyBBox() BBox {
	return BBox{BoxTop: -1 << 31, BoxBottom: 1<<31 - 1, BoxLeft: 1<<31 - 1, BoxRight: -1 << 31}
}

func (b *BBox) AddPoint(x, y fixed.Fixed) {
	if x < b[BoxLeft] {
		b[BoxLeft] = x
	}
	if x > b[BoxRight] {
		b[BoxRight] = x
	}
	if y < b[BoxBottom] {
		b[BoxBottom] = y
	}
	if y > b[BoxTop] {
		b[BoxTop] = y
	}
}

func (b *BBox) AddBox(o BBox) {
	b.AddPoint(o[BoxLeft], o[BoxBottom])
	b.AddPoint(o[BoxRight], o[BoxTop])
}

func (b BBox) Contains(x, y fixed.Fixed) bool {
	return x >= b[BoxLeft] && x <= b[BoxRight] && y >= b[BoxBottom] && y <= b[BoxTop]
}

// Child references either a node or, with SubsectorFlag set, a subsector.
type Child uint32

const SubsectorFlag Child = 0x80000000

func NodeChild(i int) Child      { return Child(i) }
func SubsectorChild(i int) Child { return Child(i) | SubsectorFlag }

func (c Child) IsSubsector() bool { return c&SubsectorFlag != 0 }
func (c Child) Index() int        { return int(c &^ SubsectorFlag) }

// Node is a BSP partition line. Children[0] is the front (right) side.
type Node struct {
	X, Y, DX, DY fixed.Fixed
	BBox         [2]BBox
	Children     [2]Child
}

// PointOnSide returns 0 when (x, y) is on the node's front side and 1 otherwise.
func (n *Node) PointOnSide(x, y fixed.Fixed) int {
	if n.DX == 0 {
		if x <= n.X {
			return b2i(n.DY > 0)
		}
		return b2i(n.DY < 0)
	}
	if n.DY == 0 {
		if y <= n.Y {
			return b2i(n.DX < 0)
		}
		return b2i(n.DX > 0)
	}
	dx := int64(x - n.X)
	dy := int64(y - n.Y)
	left := int64(n.DY) * dx
	right := dy * int64(n.DX)
	if right < left {
		return 0
	}
	return 1
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

type LineFlags uint32

const (
	LineTwoSided LineFlags = 1 << iota
	LineMirror
	LineAdditive
)

type Line struct {
	Index       int
	V1, V2      *Vertex
	Front, Back *Side
	Flags       LineFlags
	// Alpha is the translucency of a two-sided line's middle texture.
	Alpha      float32
	ValidCount int
	Mapped     bool
}

func (l *Line) IsMirror() bool { return l.Flags&LineMirror != 0 && l.Back == nil }

// Decal is a texture stuck onto a side, positioned in wall units from the side's
// start vertex and the front sector's floor.
type Decal struct {
	Texture       TextureID
	Left, Bottom  float32
	Width, Height float32
	Alpha         float32
}

type Side struct {
	Sector                   *Sector
	Top, Mid, Bottom         TextureID
	TextureOffset, RowOffset fixed.Fixed
	Decals                   []Decal
}

// Seg is the part of a line that borders one subsector. Side is nil for minisegs.
type Seg struct {
	V1, V2      *Vertex
	Line        *Line
	Side        *Side
	FrontSector *Sector
	BackSector  *Sector
}

type Subsector struct {
	Index  int
	Segs   []*Seg
	Sector *Sector
	// RenderSector is the sector used for drawing; it differs from Sector for
	// subsectors inside transfer-height volumes.
	RenderSector *Sector
	MapSection   int
	// Hacked marks subsectors used by self-referencing deep-water tricks.
	Hacked     bool
	BBox       BBox
	ValidCount int
}

// Vertices returns the subsector's polygon in seg order.
func (s *Subsector) Vertices() []*Vertex {
	out := make([]*Vertex, 0, len(s.Segs))
	for _, sg := range s.Segs {
		out = append(out, sg.V1)
	}
	return out
}

type RenderStyle int

const (
	StyleNormal RenderStyle = iota
	StyleTranslucent
	StyleAdd
)

// Thing is a world object drawn as a camera-facing sprite.
type Thing struct {
	X, Y, Z   fixed.Fixed
	Angle     fixed.Angle
	Sprite    TextureID
	Alpha     float32
	Style     RenderStyle
	Radius    fixed.Fixed
	Height    fixed.Fixed
	Bright    bool
	Invisible bool
	Subsector *Subsector
	Sector    *Sector
}

type Level struct {
	Vertices   []*Vertex
	Sectors    []*Sector
	Sides      []*Side
	Lines      []*Line
	Segs       []*Seg
	Subsectors []*Subsector
	Nodes      []Node
	Things     []*Thing

	SkyFlat              TextureID
	SkySpeed1, SkySpeed2 float32
	NumMapSections       int
}

var (
	ErrNoNodes      = errors.New("level has no BSP nodes")
	ErrNoSubsectors = errors.New("level has no subsectors")
)

// Validate checks the preconditions the renderer relies on.
func (l *Level) Validate() error {
	if len(l.Subsectors) == 0 {
		return ErrNoSubsectors
	}
	if len(l.Nodes) == 0 {
		return ErrNoNodes
	}
	return nil
}

// Root returns the child the traversal starts from; the root is the last node.
func (l *Level) Root() Child { return NodeChild(len(l.Nodes) - 1) }

func (l *Level) PointInSubsector(x, y fixed.Fixed) *Subsector {
	if len(l.Nodes) == 0 {
		return l.Subsectors[0]
	}
	c := l.Root()
	for !c.IsSubsector() {
		n := &l.Nodes[c.Index()]
		c = n.Children[n.PointOnSide(x, y)]
	}
	return l.Subsectors[c.Index()]
}

func (l *Level) IsSkyFlat(t TextureID) bool { return t != NoTexture && t == l.SkyFlat }
