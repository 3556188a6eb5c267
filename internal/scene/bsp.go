package scene

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"gzgl/internal/config"
	"gzgl/internal/fixed"
	"gzgl/internal/graphics/device"
	"gzgl/internal/graphics/material"
	"gzgl/internal/level"
	"gzgl/internal/profiling"
)

type bspEntry struct {
	child level.Child
	// box is tested against the clipper when the entry is popped.
	box   level.BBox
	check bool
}

// missingTexture is an upper or lower wall without a texture where the
// neighbouring heights open a gap.
type missingTexture struct {
	seg   *level.Seg
	sub   *level.Subsector
	upper bool
	// bottom and top of the gap in map units
	bottom, top float32
}

// renderBSP walks the tree front to back from the root.
func (r *Renderer) renderBSP(di *DrawInfo) {
	defer profiling.Bsp.Track()()

	stack := append(r.bspStack[:0], bspEntry{child: r.lvl.Root()})
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.check && !r.clipper.CheckBox(r.vp.X, r.vp.Y, e.box) {
			continue
		}
		if e.child.IsSubsector() {
			r.renderSubsector(di, r.lvl.Subsectors[e.child.Index()])
			if r.clipper.Blocked() {
				break
			}
			continue
		}
		n := &r.lvl.Nodes[e.child.Index()]
		side := n.PointOnSide(r.vp.X, r.vp.Y)
		stack = append(stack,
			bspEntry{child: n.Children[side^1], box: n.BBox[side^1], check: true},
			bspEntry{child: n.Children[side]},
		)
	}
	r.bspStack = stack[:0]
}

func (r *Renderer) sectionVisible(s int) bool {
	return s >= 0 && s < len(r.sections) && r.sections[s]
}

func (r *Renderer) renderSubsector(di *DrawInfo, sub *level.Subsector) {
	if !r.sectionVisible(sub.MapSection) || sub.ValidCount == r.validCount {
		return
	}
	sub.ValidCount = r.validCount
	di.visited = append(di.visited, sub)
	profiling.Count("subsectors", 1)

	if sec := sub.Sector; sec.ValidCount != r.validCount {
		sec.ValidCount = r.validCount
		for _, t := range sec.Things {
			r.addSprite(di, t)
		}
	}

	for _, sg := range sub.Segs {
		r.addSeg(di, sub, sg)
	}

	rs := sub.RenderSector
	switch {
	case sub.Hacked:
		di.hacked = append(di.hacked, sub)
	case rs.FloorStack != 0 || rs.CeilingStack != 0:
		id := rs.FloorStack
		if id == 0 {
			id = rs.CeilingStack
		}
		di.stacks[id] = append(di.stacks[id], sub)
	default:
		r.addFlats(di, sub, rs, rs)
	}
}

func (r *Renderer) material(id level.TextureID) (material.Material, bool) {
	if id == level.NoTexture || r.deps.Materials == nil {
		return material.Material{}, false
	}
	mat, ok := r.deps.Materials.Material(id)
	if ok && mat.Canvas {
		r.cameraTexture.MarkUsed(id)
	}
	return mat, ok
}

func mapUnits(f fixed.Fixed) float32 { return f.Float32() }

func (r *Renderer) addSeg(di *DrawInfo, sub *level.Subsector, sg *level.Seg) {
	start := fixed.PointToAngle2(r.vp.X, r.vp.Y, sg.V2.X, sg.V2.Y)
	end := fixed.PointToAngle2(r.vp.X, r.vp.Y, sg.V1.X, sg.V1.Y)
	if start-end < fixed.Angle180 {
		return
	}
	if !r.clipper.SafeCheckRange(start, end) {
		return
	}
	if ln := sg.Line; ln != nil && ln.ValidCount != r.validCount {
		ln.ValidCount = r.validCount
		ln.Mapped = true
	}
	if sg.Side == nil {
		return
	}

	front := sub.RenderSector
	x1, y1, x2, y2 := sg.V1.X, sg.V1.Y, sg.V2.X, sg.V2.Y
	ff1, ff2 := mapUnits(front.FloorAt(x1, y1)), mapUnits(front.FloorAt(x2, y2))
	fc1, fc2 := mapUnits(front.CeilingAt(x1, y1)), mapUnits(front.CeilingAt(x2, y2))

	back := sg.BackSector
	if back == nil {
		if sg.Line != nil && sg.Line.IsMirror() {
			it := r.wallItem(di, sg, front, sg.Side.Mid, ff1, ff2, fc1, fc2, fc1)
			di.mirrors = append(di.mirrors, it)
		} else if it := r.addWall(di, sg, front, sg.Side.Mid, ff1, ff2, fc1, fc2, fc1, 1, false); it != nil {
			r.attachDecals(it, sg, ff1)
		}
		profiling.Count("walls", 1)
		r.clipper.SafeAddClipRange(start, end)
		return
	}

	bf1, bf2 := mapUnits(back.FloorAt(x1, y1)), mapUnits(back.FloorAt(x2, y2))
	bc1, bc2 := mapUnits(back.CeilingAt(x1, y1)), mapUnits(back.CeilingAt(x2, y2))
	bothSky := r.lvl.IsSkyFlat(front.CeilingTex) && r.lvl.IsSkyFlat(back.CeilingTex)

	var decalsOn *DrawItem
	if bc1 < fc1 || bc2 < fc2 {
		switch {
		case bothSky:
		case sg.Side.Top == level.NoTexture:
			di.missing = append(di.missing, missingTexture{seg: sg, sub: sub, upper: true,
				bottom: math32.Max(bc1, bc2), top: math32.Min(fc1, fc2)})
		default:
			decalsOn = r.addWall(di, sg, front, sg.Side.Top, bc1, bc2, fc1, fc2, fc1, 1, false)
		}
		profiling.Count("walls", 1)
	}
	if bf1 > ff1 || bf2 > ff2 {
		if sg.Side.Bottom == level.NoTexture {
			di.missing = append(di.missing, missingTexture{seg: sg, sub: sub,
				bottom: math32.Max(ff1, ff2), top: math32.Min(bf1, bf2)})
		} else if it := r.addWall(di, sg, front, sg.Side.Bottom, ff1, ff2, bf1, bf2, bf1, 1, false); it != nil && decalsOn == nil {
			decalsOn = it
		}
		profiling.Count("walls", 1)
	}

	lo1, lo2 := math32.Max(ff1, bf1), math32.Max(ff2, bf2)
	hi1, hi2 := math32.Min(fc1, bc1), math32.Min(fc2, bc2)
	if hi1 > lo1 || hi2 > lo2 {
		if sg.Side.Mid != level.NoTexture {
			alpha := sg.Line.Alpha
			additive := sg.Line.Flags&level.LineAdditive != 0
			if it := r.addWall(di, sg, front, sg.Side.Mid, lo1, lo2, hi1, hi2, hi1, alpha, additive); it != nil && decalsOn == nil {
				decalsOn = it
			}
			profiling.Count("walls", 1)
		}
		if front.ColorMap.Fade != back.ColorMap.Fade && (front.Fogged() || back.Fogged()) {
			r.addFogBoundary(di, sg, front, lo1, lo2, hi1, hi2)
		}
	}
	if decalsOn != nil {
		r.attachDecals(decalsOn, sg, ff1)
	}

	closed := (bc1 <= ff1 && bc2 <= ff2) || (bf1 >= fc1 && bf2 >= fc2) || (bc1 <= bf1 && bc2 <= bf2)
	if closed {
		r.clipper.SafeAddClipRange(start, end)
	}
}

// wallVerts builds the quad from (v1, bottom) up to v1 top, across to v2, in GL space.
func wallVerts(out []device.Vertex, sg *level.Seg, mat material.Material, b1, b2, t1, t2, texTop float32) []device.Vertex {
	x1, y1 := sg.V1.X.Float32(), sg.V1.Y.Float32()
	x2, y2 := sg.V2.X.Float32(), sg.V2.Y.Float32()
	length := math32.Hypot(x2-x1, y2-y1)
	w, h := float32(mat.Width), float32(mat.Height)
	if w == 0 {
		w = 64
	}
	if h == 0 {
		h = 64
	}
	var u0 float32
	if sg.Side != nil {
		u0 = sg.Side.TextureOffset.Float32()
		texTop += sg.Side.RowOffset.Float32()
	}
	u1 := u0 + length
	return append(out[:0],
		device.Vertex{X: x1, Y: b1, Z: y1, U: u0 / w, V: (texTop - b1) / h},
		device.Vertex{X: x1, Y: t1, Z: y1, U: u0 / w, V: (texTop - t1) / h},
		device.Vertex{X: x2, Y: t2, Z: y2, U: u1 / w, V: (texTop - t2) / h},
		device.Vertex{X: x2, Y: b2, Z: y2, U: u1 / w, V: (texTop - b2) / h},
	)
}

func (r *Renderer) wallItem(di *DrawInfo, sg *level.Seg, sec *level.Sector, tex level.TextureID, b1, b2, t1, t2, texTop float32) *DrawItem {
	mat, _ := r.material(tex)
	it := di.newItem()
	it.Type = ItemWall
	it.Material = mat
	it.Verts = wallVerts(it.Verts, sg, mat, b1, b2, t1, t2, texTop)
	it.Sector = sec
	it.Seg = sg
	it.Alpha = 1
	r.lightItem(it, sec)
	return it
}

// addWall emits a textured wall part. Walls without a texture are skipped.
func (r *Renderer) addWall(di *DrawInfo, sg *level.Seg, sec *level.Sector, tex level.TextureID, b1, b2, t1, t2, texTop, alpha float32, additive bool) *DrawItem {
	if _, ok := r.material(tex); !ok {
		return nil
	}
	it := r.wallItem(di, sg, sec, tex, b1, b2, t1, t2, texTop)
	it.Alpha = alpha
	it.Additive = additive
	it.Distance = r.distanceTo(it.Verts)
	it.Kind = r.route(it, config.GetMaskThreshold())
	di.Add(it)
	return it
}

func (r *Renderer) addFogBoundary(di *DrawInfo, sg *level.Seg, sec *level.Sector, b1, b2, t1, t2 float32) {
	it := di.newItem()
	it.Type = ItemFogBoundary
	it.Kind = ListTranslucentBorder
	it.Verts = wallVerts(it.Verts, sg, material.Material{}, b1, b2, t1, t2, t1)
	it.Sector = sec
	it.Seg = sg
	fade := sec.ColorMap.Fade
	if !sec.Fogged() && sg.BackSector != nil {
		fade = sg.BackSector.ColorMap.Fade
	}
	it.Color = palVec(fade, 1)
	it.FogColor = it.Color
	it.Alpha = fogBoundaryAlpha
	it.Distance = r.distanceTo(it.Verts)
	di.Add(it)
}

const fogBoundaryAlpha = 0.5

// attachDecals resolves the side's decals against the wall's plane.
func (r *Renderer) attachDecals(it *DrawItem, sg *level.Seg, floor float32) {
	if sg.Side == nil || len(sg.Side.Decals) == 0 {
		return
	}
	x1, y1 := sg.V1.X.Float32(), sg.V1.Y.Float32()
	x2, y2 := sg.V2.X.Float32(), sg.V2.Y.Float32()
	length := math32.Hypot(x2-x1, y2-y1)
	if length == 0 {
		return
	}
	dx, dy := (x2-x1)/length, (y2-y1)/length
	for _, d := range sg.Side.Decals {
		mat, ok := r.material(d.Texture)
		if !ok {
			continue
		}
		l, rr := d.Left, d.Left+d.Width
		b, t := floor+d.Bottom, floor+d.Bottom+d.Height
		alpha := d.Alpha
		if alpha == 0 {
			alpha = 1
		}
		it.Decals = append(it.Decals, DecalItem{
			Material: mat,
			Alpha:    alpha,
			Verts: []device.Vertex{
				{X: x1 + dx*l, Y: b, Z: y1 + dy*l, U: 0, V: 1},
				{X: x1 + dx*l, Y: t, Z: y1 + dy*l, U: 0, V: 0},
				{X: x1 + dx*rr, Y: t, Z: y1 + dy*rr, U: 1, V: 0},
				{X: x1 + dx*rr, Y: b, Z: y1 + dy*rr, U: 1, V: 1},
			},
		})
	}
}

// addFlats emits the floor and ceiling of sub facing the eye. heights supplies
// the planes and textures; light comes from sec.
func (r *Renderer) addFlats(di *DrawInfo, sub *level.Subsector, heights, sec *level.Sector) {
	vz := r.vp.Z
	if vz > heights.FloorAt(r.vp.X, r.vp.Y) {
		r.addFlat(di, sub, heights.FloorPlane, heights.FloorTex, sec)
	}
	if vz < heights.CeilingAt(r.vp.X, r.vp.Y) {
		r.addFlat(di, sub, heights.CeilingPlane, heights.CeilingTex, sec)
	}
}

func (r *Renderer) addFlat(di *DrawInfo, sub *level.Subsector, pl level.Plane, tex level.TextureID, sec *level.Sector) {
	sky := r.lvl.IsSkyFlat(tex)
	mat, ok := r.material(tex)
	if !ok && !sky {
		return
	}
	it := di.newItem()
	it.Type = ItemFlat
	it.Material = mat
	it.Sector = sec
	it.Alpha = 1
	w, h := float32(mat.Width), float32(mat.Height)
	if w == 0 {
		w, h = 64, 64
	}
	for _, v := range sub.Vertices() {
		x, y := v.X.Float32(), v.Y.Float32()
		it.Verts = append(it.Verts, device.Vertex{X: x, Y: mapUnits(pl.ZatPoint(v.X, v.Y)), Z: y, U: x / w, V: -y / h})
	}
	if sky {
		di.skies = append(di.skies, it)
		return
	}
	profiling.Count("flats", 1)
	r.lightItem(it, sec)
	it.Distance = r.distanceTo(it.Verts)
	it.Kind = r.route(it, config.GetMaskThreshold())
	di.Add(it)
}

func (r *Renderer) addSprite(di *DrawInfo, t *level.Thing) {
	if t.Invisible || (r.vp.Actor != nil && r.vp.Actor.Thing == t) {
		return
	}
	mat, ok := r.material(t.Sprite)
	if !ok {
		return
	}
	w := float32(mat.Width)
	h := float32(mat.Height)
	if t.Height > 0 {
		h = t.Height.Float32()
	}
	x, y, z := t.X.Float32(), t.Y.Float32(), t.Z.Float32()
	center := mgl32.Vec3{x, z + h/2, y}
	if !r.frustum.Sphere(center, math32.Max(w, h)) {
		return
	}
	// right vector of the view in map space
	rx, ry := r.cam.ViewVector.Y()*w/2, -r.cam.ViewVector.X()*w/2

	it := di.newItem()
	it.Type = ItemSprite
	it.Material = mat
	it.Thing = t
	it.Sector = t.Sector
	it.Alpha = t.Alpha
	it.Additive = t.Style == level.StyleAdd
	it.Bright = t.Bright
	it.Verts = append(it.Verts,
		device.Vertex{X: x - rx, Y: z, Z: y - ry, U: 0, V: 1},
		device.Vertex{X: x - rx, Y: z + h, Z: y - ry, U: 0, V: 0},
		device.Vertex{X: x + rx, Y: z + h, Z: y + ry, U: 1, V: 0},
		device.Vertex{X: x + rx, Y: z, Z: y + ry, U: 1, V: 1},
	)
	r.lightItem(it, t.Sector)
	if t.Bright {
		it.Light = 1
	}
	it.Distance = center.Sub(r.cam.glEye()).Len()
	it.Kind = r.route(it, config.GetMaskSpriteThreshold())
	di.Add(it)
	profiling.Count("sprites", 1)
}

// lightItem sets brightness, color and fog, and gathers the lights reaching it.
func (r *Renderer) lightItem(it *DrawItem, sec *level.Sector) {
	if sec == nil {
		it.Light, it.Color = 1, mgl32.Vec4{1, 1, 1, 1}
		return
	}
	if r.fixedColormap != CMDefault {
		it.Light = 1
		it.Color = mgl32.Vec4{1, 1, 1, 1}
	} else {
		it.Light = mgl32.Clamp(float32(sec.LightLevel+r.extraLight)/255, 0, 1)
		it.Color = palVec(sec.ColorMap.Color, 1)
		if sec.Fogged() {
			it.FogColor = palVec(sec.ColorMap.Fade, 1)
		}
	}
	for _, l := range r.frameLights {
		if l.reaches(it.Verts) {
			it.Lights = append(it.Lights, l)
		}
	}
}

func palVec(p level.PalEntry, a float32) mgl32.Vec4 {
	return mgl32.Vec4{float32(p.R()) / 255, float32(p.G()) / 255, float32(p.B()) / 255, a}
}

func (r *Renderer) distanceTo(verts []device.Vertex) float32 {
	if len(verts) == 0 {
		return 0
	}
	var c mgl32.Vec3
	for _, v := range verts {
		c = c.Add(mgl32.Vec3{v.X, v.Y, v.Z})
	}
	c = c.Mul(1 / float32(len(verts)))
	return c.Sub(r.cam.glEye()).Len()
}

// route picks the list for an item from its alpha, texture, fog and lights.
func (r *Renderer) route(it *DrawItem, threshold float32) ListKind {
	if it.Additive || it.Alpha < threshold {
		return ListTranslucent
	}
	masked := it.Material.Masked || it.Alpha < 1
	fog := it.Sector != nil && it.Sector.Fogged() && r.fixedColormap == CMDefault
	if len(it.Lights) > 0 && r.multipassLights() {
		switch {
		case masked && it.Bright:
			return ListLightBright
		case masked && fog:
			return ListLightFogMasked
		case masked:
			return ListLightMasked
		case fog:
			return ListLightFog
		}
		return ListLight
	}
	switch {
	case masked && fog:
		return ListFogMasked
	case masked:
		return ListMasked
	case fog:
		return ListFog
	}
	return ListPlain
}

// HandleMissingTextures turns gaps under missing upper and lower textures into
// fills with the neighbouring sector's flat. Sky ceilings extend the sky instead.
func (r *Renderer) HandleMissingTextures(di *DrawInfo) {
	for _, m := range di.missing {
		back := m.seg.BackSector
		if back == nil || m.top <= m.bottom {
			continue
		}
		tex := back.FloorTex
		if m.upper {
			tex = back.CeilingTex
		}
		if r.lvl.IsSkyFlat(tex) {
			it := di.newItem()
			it.Type = ItemWall
			it.Seg = m.seg
			it.Verts = wallVerts(it.Verts, m.seg, material.Material{}, m.bottom, m.bottom, m.top, m.top, m.top)
			di.skies = append(di.skies, it)
			continue
		}
		mat, ok := r.material(tex)
		if !ok {
			continue
		}
		it := di.newItem()
		it.Type = ItemWall
		it.Material = mat
		it.Seg = m.seg
		it.Sector = back
		it.Alpha = 1
		it.Verts = wallVerts(it.Verts, m.seg, mat, m.bottom, m.bottom, m.top, m.top, m.top)
		r.lightItem(it, back)
		di.gaps = append(di.gaps, gapFill{item: it})
	}
	di.missing = di.missing[:0]
}

// HandleHackedSubsectors draws the flats of hacked subsectors with the heights
// of the sector around them.
func (r *Renderer) HandleHackedSubsectors(di *DrawInfo) {
	for _, sub := range di.hacked {
		heights := sub.RenderSector
		for _, sg := range sub.Segs {
			if sg.BackSector != nil && sg.BackSector != sub.Sector {
				heights = sg.BackSector
				break
			}
		}
		r.addFlats(di, sub, heights, sub.RenderSector)
	}
	di.hacked = di.hacked[:0]
}

// ProcessSectorStacks emits the flats of stacked sectors group by group, all
// lit like the group's first sector so the stack composites as one plane.
func (r *Renderer) ProcessSectorStacks(di *DrawInfo) {
	if len(di.stacks) == 0 {
		return
	}
	ids := make([]int, 0, len(di.stacks))
	for id := range di.stacks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		subs := di.stacks[id]
		lead := subs[0].RenderSector
		for _, sub := range subs {
			r.addFlats(di, sub, sub.RenderSector, lead)
		}
		delete(di.stacks, id)
	}
}

// DrawUnhandledMissingTextures draws the gap fills queued by HandleMissingTextures.
func (r *Renderer) DrawUnhandledMissingTextures(di *DrawInfo) {
	for i := range di.gaps {
		g := &di.gaps[i]
		if g.handled {
			continue
		}
		g.handled = true
		r.state.SetListFog(g.item.Sector != nil && g.item.Sector.Fogged() && r.fixedColormap == CMDefault)
		r.drawItem(g.item, PassPlain)
	}
}
