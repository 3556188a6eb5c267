package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"gzgl/internal/graphics/device"
	"gzgl/internal/graphics/material"
	"gzgl/internal/level"
)

// ListKind is the compositing category a draw item is filed under.
type ListKind int

const (
	ListPlain ListKind = iota
	ListFog
	ListMasked
	ListFogMasked
	ListLight
	ListLightBright
	ListLightMasked
	ListLightFog
	ListLightFogMasked
	ListTranslucent
	ListTranslucentBorder
	NumLists

	firstLightList = ListLight
	lastLightList  = ListLightFogMasked
)

type kindTraits struct {
	name string
	// depthSorted lists are drawn back to front; the rest are grouped by
	// material unless unsorted.
	depthSorted bool
	unsorted    bool
	fog         bool
	masked      bool
	lit         bool
	// setup runs before the list is drawn in any pass.
	setup func(rs *RenderState)
}

func fogOn(rs *RenderState)  { rs.SetListFog(true) }
func fogOff(rs *RenderState) { rs.SetListFog(false) }

var kinds = [NumLists]kindTraits{
	ListPlain:             {name: "plain", setup: fogOff},
	ListFog:               {name: "fog", fog: true, setup: fogOn},
	ListMasked:            {name: "masked", masked: true, setup: fogOff},
	ListFogMasked:         {name: "fog-masked", fog: true, masked: true, setup: fogOn},
	ListLight:             {name: "light", lit: true, setup: fogOff},
	ListLightBright:       {name: "light-bright", lit: true, masked: true, setup: fogOff},
	ListLightMasked:       {name: "light-masked", lit: true, masked: true, setup: fogOff},
	ListLightFog:          {name: "light-fog", lit: true, fog: true, setup: fogOn},
	ListLightFogMasked:    {name: "light-fog-masked", lit: true, fog: true, masked: true, setup: fogOn},
	ListTranslucent:       {name: "translucent", depthSorted: true, setup: fogOn},
	ListTranslucentBorder: {name: "translucent-border", fog: true, unsorted: true, setup: fogOn},
}

func (k ListKind) String() string {
	if k < 0 || k >= NumLists {
		return "list(?)"
	}
	return kinds[k].name
}

func (k ListKind) DepthSorted() bool { return kinds[k].depthSorted }
func (k ListKind) Unsorted() bool    { return kinds[k].unsorted }
func (k ListKind) Lit() bool         { return kinds[k].lit }
func (k ListKind) Masked() bool      { return kinds[k].masked }
func (k ListKind) Fog() bool         { return kinds[k].fog }

// ItemType tells walls, flats and sprites apart.
type ItemType int

const (
	ItemWall ItemType = iota
	ItemFlat
	ItemSprite
	// ItemFogBoundary is the untextured fog curtain between sectors of different fog.
	ItemFogBoundary
)

// DecalItem is a decal resolved to GL space.
type DecalItem struct {
	Material material.Material
	Alpha    float32
	Verts    []device.Vertex
}

// DrawItem is one surface fragment queued for drawing.
type DrawItem struct {
	Type     ItemType
	Kind     ListKind
	Material material.Material
	Verts    []device.Vertex
	// Light is the surface brightness in [0,1].
	Light    float32
	Color    mgl32.Vec4
	FogColor mgl32.Vec4
	Alpha    float32
	Additive bool
	Bright   bool
	// Distance from the camera, used by the depth-sorted lists.
	Distance float32
	Lights   []*Light
	Decals   []DecalItem

	Sector *level.Sector
	Seg    *level.Seg
	Thing  *level.Thing
}

func (it *DrawItem) reset() {
	verts := it.Verts[:0]
	decals := it.Decals[:0]
	lights := it.Lights[:0]
	*it = DrawItem{Verts: verts, Decals: decals, Lights: lights}
}

// DrawList is an ordered list of items of one kind.
type DrawList struct {
	Kind  ListKind
	Items []*DrawItem
}

func (l *DrawList) Len() int { return len(l.Items) }

func (l *DrawList) reset() { l.Items = l.Items[:0] }

// Sort groups opaque items by material. Their order does not change the image.
func (l *DrawList) Sort() {
	sort.SliceStable(l.Items, func(i, j int) bool {
		return l.Items[i].Material.Handle < l.Items[j].Material.Handle
	})
}

// SortByDistance orders items farthest first. Equal distances keep their order,
// so sorting a sorted list changes nothing.
func (l *DrawList) SortByDistance() {
	sort.SliceStable(l.Items, func(i, j int) bool {
		return l.Items[i].Distance > l.Items[j].Distance
	})
}

// gapFill is a missing upper or lower texture filled with a neighbouring flat.
type gapFill struct {
	item    *DrawItem
	handled bool
}

// DrawInfo owns one scene's draw lists. Storage is kept between frames.
type DrawInfo struct {
	Lists [NumLists]DrawList

	pool []*DrawItem
	used int

	mirrors []*DrawItem
	skies   []*DrawItem
	missing []missingTexture
	gaps    []gapFill
	hacked  []*level.Subsector
	stacks  map[int][]*level.Subsector
	visited []*level.Subsector
}

func newDrawInfo() *DrawInfo {
	di := &DrawInfo{stacks: make(map[int][]*level.Subsector)}
	for k := range di.Lists {
		di.Lists[k].Kind = ListKind(k)
	}
	return di
}

// Reset empties every list but keeps the allocated items for reuse.
func (di *DrawInfo) Reset() {
	for k := range di.Lists {
		di.Lists[k].reset()
	}
	di.used = 0
	di.mirrors = di.mirrors[:0]
	di.skies = di.skies[:0]
	di.missing = di.missing[:0]
	di.gaps = di.gaps[:0]
	di.hacked = di.hacked[:0]
	di.visited = di.visited[:0]
	for k := range di.stacks {
		delete(di.stacks, k)
	}
}

func (di *DrawInfo) newItem() *DrawItem {
	if di.used < len(di.pool) {
		it := di.pool[di.used]
		di.used++
		it.reset()
		return it
	}
	it := &DrawItem{}
	di.pool = append(di.pool, it)
	di.used++
	return it
}

// Add files an item under its kind.
func (di *DrawInfo) Add(it *DrawItem) {
	di.Lists[it.Kind].Items = append(di.Lists[it.Kind].Items, it)
}

func (di *DrawInfo) List(k ListKind) *DrawList { return &di.Lists[k] }

// Mirrors returns the mirror surfaces recorded during traversal.
func (di *DrawInfo) Mirrors() []*DrawItem { return di.mirrors }

// Skies returns the sky surfaces recorded during traversal.
func (di *DrawInfo) Skies() []*DrawItem { return di.skies }

// Visited returns the subsectors the traversal reached, in visiting order.
func (di *DrawInfo) Visited() []*level.Subsector { return di.visited }

// Total counts items over all lists.
func (di *DrawInfo) Total() int {
	n := 0
	for k := range di.Lists {
		n += len(di.Lists[k].Items)
	}
	return n
}

// drawInfoStack hands out draw infos for nested scenes; portals push a fresh one.
type drawInfoStack struct {
	free  []*DrawInfo
	stack []*DrawInfo
}

func (s *drawInfoStack) push() *DrawInfo {
	var di *DrawInfo
	if n := len(s.free); n > 0 {
		di = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		di = newDrawInfo()
	}
	di.Reset()
	s.stack = append(s.stack, di)
	return di
}

func (s *drawInfoStack) pop() {
	n := len(s.stack)
	if n == 0 {
		return
	}
	s.free = append(s.free, s.stack[n-1])
	s.stack = s.stack[:n-1]
}

func (s *drawInfoStack) current() *DrawInfo {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}
