package level

import (
	"errors"
	"fmt"

	"gzgl/internal/fixed"
)

// SectorDef describes a sector for the builder. Heights are in map units.
type SectorDef struct {
	Floor, Ceiling       int
	FloorTex, CeilingTex TextureID
	Light                int
	Fade                 PalEntry
}

// WallDef describes one edge of a box. Mid is used when the edge stays one-sided,
// Masked when it ends up shared with a neighbouring box.
type WallDef struct {
	Top, Mid, Bottom TextureID
	Masked           TextureID
	Alpha            float32
	Additive         bool
	Mirror           bool
	Decals           []Decal
}

// BoxWalls holds the four edges of a box.
type BoxWalls struct {
	West, North, East, South WallDef
}

// AllWalls uses the same definition on every edge.
func AllWalls(w WallDef) BoxWalls { return BoxWalls{w, w, w, w} }

type pendingSeg struct {
	v1, v2 *Vertex
	sub    *Subsector
	wall   WallDef
}

// Builder assembles test and demo levels out of axis-aligned boxes. Boxes that
// share a full edge are joined by a two-sided line; nodes are built from
// partitions that never split a box.
type Builder struct {
	lvl      *Level
	verts    map[[2]fixed.Fixed]*Vertex
	pending  []pendingSeg
	sections int
}

func NewBuilder() *Builder {
	return &Builder{
		lvl:   &Level{},
		verts: make(map[[2]fixed.Fixed]*Vertex),
	}
}

// SkyFlat sets the flat that marks sky surfaces.
func (b *Builder) SkyFlat(t TextureID) { b.lvl.SkyFlat = t }

func (b *Builder) SkySpeeds(s1, s2 float32) { b.lvl.SkySpeed1, b.lvl.SkySpeed2 = s1, s2 }

func (b *Builder) Sector(def SectorDef) *Sector {
	s := &Sector{
		Index:        len(b.lvl.Sectors),
		FloorPlane:   FloorPlane(fixed.FromInt(def.Floor)),
		CeilingPlane: CeilingPlane(fixed.FromInt(def.Ceiling)),
		FloorTex:     def.FloorTex,
		CeilingTex:   def.CeilingTex,
		LightLevel:   def.Light,
		ColorMap:     ColorMap{Color: NewPalEntry(255, 255, 255, 255), Fade: def.Fade},
	}
	b.lvl.Sectors = append(b.lvl.Sectors, s)
	return s
}

func (b *Builder) vertex(x, y int) *Vertex {
	k := [2]fixed.Fixed{fixed.FromInt(x), fixed.FromInt(y)}
	if v, ok := b.verts[k]; ok {
		return v
	}
	v := &Vertex{X: k[0], Y: k[1]}
	b.verts[k] = v
	b.lvl.Vertices = append(b.lvl.Vertices, v)
	return v
}

// Box adds a convex subsector covering [x0,x1]×[y0,y1] in sector sec.
func (b *Builder) Box(sec *Sector, x0, y0, x1, y1 int, walls BoxWalls) *Subsector {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	sub := &Subsector{
		Index:        len(b.lvl.Subsectors),
		Sector:       sec,
		RenderSector: sec,
		BBox:         EmptyBBox(),
	}
	sub.BBox.AddPoint(fixed.FromInt(x0), fixed.FromInt(y0))
	sub.BBox.AddPoint(fixed.FromInt(x1), fixed.FromInt(y1))
	b.lvl.Subsectors = append(b.lvl.Subsectors, sub)

	// clockwise, so the front (right) side of every seg faces the inside
	sw, nw, ne, se := b.vertex(x0, y0), b.vertex(x0, y1), b.vertex(x1, y1), b.vertex(x1, y0)
	b.pending = append(b.pending,
		pendingSeg{sw, nw, sub, walls.West},
		pendingSeg{nw, ne, sub, walls.North},
		pendingSeg{ne, se, sub, walls.East},
		pendingSeg{se, sw, sub, walls.South},
	)
	return sub
}

// MapSection assigns a subsector to a map section.
func (b *Builder) MapSection(sub *Subsector, section int) {
	sub.MapSection = section
	if section >= b.sections {
		b.sections = section + 1
	}
}

// Thing adds an object; its subsector and sector are resolved by Build.
func (b *Builder) Thing(t *Thing) *Thing {
	if t.Alpha == 0 {
		t.Alpha = 1
	}
	b.lvl.Things = append(b.lvl.Things, t)
	return t
}

var ErrNoPartition = errors.New("no partition separates the remaining boxes")

// Build links shared edges, builds the node tree and places things.
func (b *Builder) Build() (*Level, error) {
	lvl := b.lvl
	if len(lvl.Subsectors) < 2 {
		return nil, fmt.Errorf("build level: need at least two boxes, have %d", len(lvl.Subsectors))
	}
	b.linkSegs()

	subs := make([]*Subsector, len(lvl.Subsectors))
	copy(subs, lvl.Subsectors)
	if _, _, err := b.buildNodes(subs); err != nil {
		return nil, fmt.Errorf("build level: %w", err)
	}

	for _, t := range lvl.Things {
		t.Subsector = lvl.PointInSubsector(t.X, t.Y)
		t.Sector = t.Subsector.Sector
		t.Sector.Things = append(t.Sector.Things, t)
	}
	if b.sections == 0 {
		b.sections = 1
	}
	lvl.NumMapSections = b.sections
	return lvl, nil
}

func (b *Builder) newSide(sec *Sector, w WallDef, twoSided bool) *Side {
	s := &Side{Sector: sec, Top: w.Top, Bottom: w.Bottom, Decals: w.Decals}
	if twoSided {
		s.Mid = w.Masked
	} else {
		s.Mid = w.Mid
	}
	b.lvl.Sides = append(b.lvl.Sides, s)
	return s
}

func (b *Builder) linkSegs() {
	lvl := b.lvl
	byEdge := make(map[[2]*Vertex]int, len(b.pending))
	for i, p := range b.pending {
		byEdge[[2]*Vertex{p.v1, p.v2}] = i
	}
	segs := make([]*Seg, len(b.pending))
	for i, p := range b.pending {
		if segs[i] != nil {
			continue
		}
		j, shared := byEdge[[2]*Vertex{p.v2, p.v1}]
		line := &Line{Index: len(lvl.Lines), V1: p.v1, V2: p.v2, Alpha: 1}
		if p.wall.Alpha > 0 {
			line.Alpha = p.wall.Alpha
		}
		if p.wall.Additive {
			line.Flags |= LineAdditive
		}
		lvl.Lines = append(lvl.Lines, line)

		front := &Seg{V1: p.v1, V2: p.v2, Line: line, FrontSector: p.sub.Sector}
		segs[i] = front
		if !shared {
			if p.wall.Mirror {
				line.Flags |= LineMirror
			}
			line.Front = b.newSide(p.sub.Sector, p.wall, false)
			front.Side = line.Front
			continue
		}

		q := b.pending[j]
		line.Flags |= LineTwoSided
		line.Front = b.newSide(p.sub.Sector, p.wall, true)
		line.Back = b.newSide(q.sub.Sector, q.wall, true)
		front.Side = line.Front
		front.BackSector = q.sub.Sector
		segs[j] = &Seg{V1: q.v1, V2: q.v2, Line: line, Side: line.Back, FrontSector: q.sub.Sector, BackSector: p.sub.Sector}
	}
	for i, p := range b.pending {
		p.sub.Segs = append(p.sub.Segs, segs[i])
	}
	lvl.Segs = segs
}

// side classifies a subsector against the partition through seg: 0 front, 1 back, -1 split.
func side(sub *Subsector, n *Node) int {
	front, back := false, false
	for _, v := range sub.Vertices() {
		cross := int64(v.X-n.X)*int64(n.DY) - int64(v.Y-n.Y)*int64(n.DX)
		switch {
		case cross > 0:
			front = true
		case cross < 0:
			back = true
		}
	}
	switch {
	case front && !back:
		return 0
	case back && !front:
		return 1
	}
	return -1
}

func (b *Builder) buildNodes(subs []*Subsector) (Child, BBox, error) {
	if len(subs) == 1 {
		return SubsectorChild(subs[0].Index), subs[0].BBox, nil
	}

	var best *Node
	var bestSets [2][]*Subsector
	bestBalance := -1
	for _, sub := range subs {
		for _, sg := range sub.Segs {
			n := &Node{X: sg.V1.X, Y: sg.V1.Y, DX: sg.V2.X - sg.V1.X, DY: sg.V2.Y - sg.V1.Y}
			var sets [2][]*Subsector
			ok := true
			for _, o := range subs {
				s := side(o, n)
				if s < 0 {
					ok = false
					break
				}
				sets[s] = append(sets[s], o)
			}
			if !ok || len(sets[0]) == 0 || len(sets[1]) == 0 {
				continue
			}
			balance := len(sets[0]) - len(sets[1])
			if balance < 0 {
				balance = -balance
			}
			if best == nil || balance < bestBalance {
				best, bestSets, bestBalance = n, sets, balance
			}
		}
	}
	if best == nil {
		return 0, BBox{}, ErrNoPartition
	}

	total := EmptyBBox()
	for i := 0; i < 2; i++ {
		c, box, err := b.buildNodes(bestSets[i])
		if err != nil {
			return 0, BBox{}, err
		}
		best.Children[i] = c
		best.BBox[i] = box
		total.AddBox(box)
	}
	b.lvl.Nodes = append(b.lvl.Nodes, *best)
	return NodeChild(len(b.lvl.Nodes) - 1), total, nil
}
