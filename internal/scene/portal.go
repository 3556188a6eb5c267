package scene

import (
	"gzgl/internal/config"
	"gzgl/internal/fixed"
	"gzgl/internal/graphics/device"
	"gzgl/internal/profiling"
)

// PortalController resolves the portals recorded while a scene was built. The
// stencil, depth and projection state seen by the caller is the same after
// each call.
type PortalController interface {
	StartFrame()
	BeginScene()
	EndFrame()
	RenderFirstSkyPortal(depth int)
}

// PortalManager draws sky surfaces and mirrors. Each mirror is cut into the
// stencil buffer and the scene is drawn again from the reflected eye inside it.
type PortalManager struct {
	r        *Renderer
	depth    int
	skyDrawn []bool
	// Mirrors counts the mirrors rendered since the last BeginScene at depth 0.
	Mirrors int
	// Cutoffs counts mirrors skipped at the recursion limit.
	Cutoffs int
}

func NewPortalManager(r *Renderer) *PortalManager {
	return &PortalManager{r: r}
}

// Depth is the current mirror nesting level.
func (pm *PortalManager) Depth() int { return pm.depth }

func (pm *PortalManager) BeginScene() {
	if pm.depth == 0 {
		pm.Mirrors, pm.Cutoffs = 0, 0
	}
}

func (pm *PortalManager) StartFrame() {
	for len(pm.skyDrawn) <= pm.depth {
		pm.skyDrawn = append(pm.skyDrawn, false)
	}
	pm.skyDrawn[pm.depth] = false
}

// RenderFirstSkyPortal fills the scene's sky surfaces before any other geometry.
func (pm *PortalManager) RenderFirstSkyPortal(depth int) {
	if depth > config.GetMaxPortalRecursion() {
		return
	}
	pm.drawSkies()
}

// EndFrame draws skies that were not drawn up front, then every mirror.
func (pm *PortalManager) EndFrame() {
	r := pm.r
	di := r.infos.current()
	if di == nil {
		return
	}
	pm.drawSkies()
	if len(di.Mirrors()) == 0 {
		return
	}
	if pm.depth >= config.GetMaxPortalRecursion() {
		pm.Cutoffs += len(di.Mirrors())
		r.log.Debugf("mirror recursion limit %d reached, %d mirrors skipped", pm.depth, len(di.Mirrors()))
		return
	}
	for _, m := range di.Mirrors() {
		pm.renderMirror(m)
	}
}

func (pm *PortalManager) drawSkies() {
	if pm.depth < len(pm.skyDrawn) && pm.skyDrawn[pm.depth] {
		return
	}
	if pm.depth < len(pm.skyDrawn) {
		pm.skyDrawn[pm.depth] = true
	}
	r := pm.r
	di := r.infos.current()
	if di == nil || len(di.Skies()) == 0 {
		return
	}
	dev, rs := r.dev, r.state
	mat, ok := r.material(r.lvl.SkyFlat)
	rs.EnableFog(false)
	rs.EnableAlphaTest(false)
	rs.BlendFunc(device.One, device.Zero)
	rs.EnableTexture(ok)
	rs.Apply(dev, false)
	if !ok {
		dev.ColorMask(false, false, false, false)
	}
	shift := r.skyPos[0] / 90
	dev.Color4(1, 1, 1, 1)
	dev.BindTexture(mat.Handle)
	for _, it := range di.Skies() {
		verts := r.lightScratch[:0]
		for _, v := range it.Verts {
			v.U += shift
			verts = append(verts, v)
		}
		r.lightScratch = verts
		dev.DrawPolygon(verts)
	}
	if !ok {
		dev.ColorMask(true, true, true, true)
	}
	rs.EnableTexture(true)
	rs.EnableFog(true)
	profiling.Count("skies", len(di.Skies()))
}

func (pm *PortalManager) stencilMark(it *DrawItem, op device.StencilOp) {
	dev, rs := pm.r.dev, pm.r.state
	dev.StencilFunc(device.Equal, pm.depth, ^uint32(0))
	dev.StencilOp(device.Keep, device.Keep, op)
	dev.ColorMask(false, false, false, false)
	rs.EnableTexture(false)
	rs.Apply(dev, false)
	dev.DrawPolygon(it.Verts)
}

func (pm *PortalManager) renderMirror(it *DrawItem) {
	r := pm.r
	dev, rs := r.dev, r.state
	if it.Seg == nil {
		return
	}
	profiling.Count("mirrors", 1)
	pm.Mirrors++

	// cut the visible part of the mirror into the stencil and punch its depth to the far plane
	dev.DepthMask(false)
	pm.stencilMark(it, device.Incr)
	dev.StencilFunc(device.Equal, pm.depth+1, ^uint32(0))
	dev.StencilOp(device.Keep, device.Keep, device.Keep)
	dev.DepthMask(true)
	dev.DepthRange(1, 1)
	dev.DepthFunc(device.Always)
	dev.DrawPolygon(it.Verts)
	dev.DepthRange(0, 1)
	dev.DepthFunc(device.Less)
	dev.ColorMask(true, true, true, true)
	rs.EnableTexture(true)

	savedVP, savedCam, savedFrustum := r.vp, r.cam, r.frustum
	pm.depth++

	sg := it.Seg
	r.vp.X, r.vp.Y = reflectPoint(r.vp.X, r.vp.Y, sg.V1.X, sg.V1.Y, sg.V2.X, sg.V2.Y)
	lineAngle := fixed.PointToAngle2(sg.V1.X, sg.V1.Y, sg.V2.X, sg.V2.Y)
	r.vp.Angle = 2*lineAngle - r.vp.Angle
	// the viewer can see itself in a mirror
	r.vp.Actor = nil
	flags := r.cam.Flags.Toggle(ViewMirror)
	r.SetCameraPos(r.vp.X, r.vp.Y, r.vp.Z, r.vp.Angle)
	r.SetViewMatrix(flags.Has(ViewMirror), flags.Has(ViewPlaneMirror))

	// only the angles through the mirror stay open
	r.clipper.Clear()
	a1 := fixed.PointToAngle2(r.vp.X, r.vp.Y, sg.V1.X, sg.V1.Y)
	a2 := fixed.PointToAngle2(r.vp.X, r.vp.Y, sg.V2.X, sg.V2.Y)
	r.clipper.SafeAddClipRange(a2, a1)
	r.frustum = NewFrustum(r.cam.Projection.Mul4(r.cam.View))

	r.infos.push()
	r.DrawScene(false)
	r.infos.pop()

	pm.depth--
	r.vp, r.cam, r.frustum = savedVP, savedCam, savedFrustum
	dev.LoadModelview(r.cam.View)
	dev.ResetTextureMatrices()

	// seal: restore the mirror's depth and release its stencil value
	dev.DepthMask(true)
	dev.DepthFunc(device.Always)
	dev.StencilFunc(device.Equal, pm.depth+1, ^uint32(0))
	dev.StencilOp(device.Keep, device.Keep, device.Decr)
	dev.ColorMask(false, false, false, false)
	rs.EnableTexture(false)
	rs.Apply(dev, false)
	dev.DrawPolygon(it.Verts)
	dev.ColorMask(true, true, true, true)
	rs.EnableTexture(true)
	dev.DepthFunc(device.LEqual)

	if pm.depth == 0 {
		dev.StencilFunc(device.Always, 0, ^uint32(0))
		dev.StencilOp(device.Keep, device.Keep, device.Replace)
	} else {
		dev.StencilFunc(device.Equal, pm.depth, ^uint32(0))
		dev.StencilOp(device.Keep, device.Keep, device.Keep)
	}
}

// reflectPoint mirrors (px, py) across the line through (x1, y1) and (x2, y2).
func reflectPoint(px, py, x1, y1, x2, y2 fixed.Fixed) (fixed.Fixed, fixed.Fixed) {
	ax, ay := x1.Float(), y1.Float()
	dx, dy := x2.Float()-ax, y2.Float()-ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return px, py
	}
	vx, vy := px.Float()-ax, py.Float()-ay
	t := (vx*dx + vy*dy) / l2
	fx, fy := ax+t*dx, ay+t*dy
	return fixed.FromFloat(2*fx - px.Float()), fixed.FromFloat(2*fy - py.Float())
}
