package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"gzgl/internal/config"
	"gzgl/internal/graphics/device"
	"gzgl/internal/profiling"
)

// Pass selects what a list draw emits for each item.
type Pass int

const (
	// PassPlain draws the textured surface with sector light.
	PassPlain Pass = iota
	// PassBase draws untextured sector light only.
	PassBase
	// PassBaseMasked is PassBase cut out by the texture's alpha.
	PassBaseMasked
	// PassAll folds the dynamic lights into the surface color in one pass.
	PassAll
	// PassLight adds each non-additive light reaching the item.
	PassLight
	// PassTexture multiplies the accumulated light by the texture.
	PassTexture
	// PassLightAdditive adds the additive lights.
	PassLightAdditive
	PassDecals
	PassTranslucent
)

var passNames = [...]string{"plain", "base", "base-masked", "all", "light", "texture", "light-additive", "decals", "translucent"}

func (p Pass) String() string {
	if p < 0 || int(p) >= len(passNames) {
		return "pass(?)"
	}
	return passNames[p]
}

const fogDensityBase = 0.0006

func fogDensity(it *DrawItem) float32 {
	if it.FogColor == (mgl32.Vec4{}) && it.Type != ItemFogBoundary {
		return 0
	}
	return fogDensityBase * (2 - it.Light)
}

// drawList draws one list in one pass. Depth-sorted lists are ordered farthest
// first, unsorted lists keep their emission order and the others are grouped
// by material.
func (r *Renderer) drawList(di *DrawInfo, k ListKind, pass Pass) {
	l := di.List(k)
	if l.Len() == 0 {
		return
	}
	switch {
	case k.DepthSorted():
		l.SortByDistance()
	case !k.Unsorted():
		l.Sort()
	}
	if setup := kinds[k].setup; setup != nil {
		setup(r.state)
	}
	for _, it := range l.Items {
		r.drawItem(it, pass)
	}
}

func (r *Renderer) drawItem(it *DrawItem, pass Pass) {
	switch pass {
	case PassLight, PassLightAdditive:
		r.drawLights(it, pass == PassLightAdditive)
		return
	case PassDecals:
		r.drawDecals(it)
		return
	}

	dev := r.dev
	if r.state.FogEnabled() {
		r.state.SetFog(it.FogColor, fogDensity(it))
	}
	r.state.Apply(dev, false)

	c := it.Color.Mul(it.Light)
	switch pass {
	case PassTexture:
		c = mgl32.Vec4{1, 1, 1, 1}
	case PassAll:
		for _, l := range it.Lights {
			if _, intensity, ok := l.lightVerts(it.Verts, r.lightScratch[:0]); ok {
				c = c.Add(l.Color.Mul(intensity).Vec4(0))
			}
		}
	}
	alpha := it.Alpha
	if pass == PassTexture {
		alpha = 1
	}
	dev.Color4(mgl32.Clamp(c.X(), 0, 1), mgl32.Clamp(c.Y(), 0, 1), mgl32.Clamp(c.Z(), 0, 1), alpha)
	dev.BindTexture(it.Material.Handle)
	dev.DrawPolygon(it.Verts)
}

func (r *Renderer) drawLights(it *DrawItem, additive bool) {
	for _, l := range it.Lights {
		if l.Additive != additive {
			continue
		}
		verts, intensity, ok := l.lightVerts(it.Verts, r.lightScratch[:0])
		r.lightScratch = verts
		if !ok {
			continue
		}
		r.state.Apply(r.dev, false)
		col := l.Color.Mul(intensity)
		r.dev.Color4(col.X(), col.Y(), col.Z(), 1)
		r.dev.BindTexture(r.lightTex.handle)
		r.dev.DrawPolygon(verts)
		profiling.Count("lightdraws", 1)
	}
}

func (r *Renderer) drawDecals(it *DrawItem) {
	for _, d := range it.Decals {
		r.state.Apply(r.dev, false)
		r.dev.Color4(it.Light, it.Light, it.Light, d.Alpha)
		r.dev.BindTexture(d.Material.Handle)
		r.dev.DrawPolygon(d.Verts)
	}
}

// shaderLights reports whether dynamic lights are folded in by PassAll.
func (r *Renderer) shaderLights() bool {
	return r.deps.DynLightShader && !config.GetForceMultipass()
}

// multipassLights reports whether lit items go to the light lists.
func (r *Renderer) multipassLights() bool {
	return r.lightCount > 0 && config.GetLights() && r.fixedColormap == CMDefault && !r.shaderLights()
}

// setupLightTexture binds the falloff texture. Failure disables dynamic lights.
func (r *Renderer) setupLightTexture() bool {
	if err := r.lightTex.setup(r.dev); err != nil {
		r.log.Warnf("dynamic lights disabled: %v", err)
		config.SetLights(false)
		return false
	}
	return true
}

// RenderScene draws the opaque, masked, lit and decal parts of the current
// draw info and fills the gaps.
func (r *Renderer) RenderScene(recursion int) {
	defer profiling.RenderAll.Track()()
	di := r.infos.current()
	dev, rs := r.dev, r.state

	dev.DepthMask(true)
	if !config.GetNoSkyClear() {
		r.deps.Portals.RenderFirstSkyPortal(recursion)
	}

	rs.EnableFog(true)
	rs.BlendFunc(device.One, device.Zero)
	dev.DepthFunc(device.Less)
	rs.EnableAlphaTest(false)
	dev.Disable(device.PolygonOffsetFill)

	texture := config.GetTexture()
	var pass Pass
	switch {
	case r.lightCount > 0 && r.fixedColormap == CMDefault && config.GetLights() && r.shaderLights():
		pass = PassAll
	case texture:
		pass = PassPlain
	default:
		pass = PassBase
	}

	rs.EnableTexture(texture)
	rs.EnableBrightmap(r.fixedColormap == CMDefault)
	r.drawList(di, ListPlain, pass)
	rs.EnableBrightmap(false)
	r.drawList(di, ListFog, pass)
	r.drawList(di, ListLightFog, pass)

	rs.EnableAlphaTest(true)
	if !texture {
		rs.EnableTexture(true)
		rs.SetTextureMode(device.Mask)
	}
	if pass == PassBase {
		pass = PassBaseMasked
	}
	rs.AlphaFunc(device.GEqual, config.GetMaskThreshold())
	rs.EnableBrightmap(true)
	r.drawList(di, ListMasked, pass)
	rs.EnableBrightmap(false)
	r.drawList(di, ListFogMasked, pass)
	r.drawList(di, ListLightFogMasked, pass)

	if !r.shaderLights() && config.GetLights() {
		r.renderMultipassLights(di, texture)
	}

	rs.BlendFunc(device.SrcAlpha, device.OneMinusSrcAlpha)

	dev.DepthFunc(device.LEqual)
	dev.Enable(device.PolygonOffsetFill)
	dev.PolygonOffset(-1, -128)
	dev.DepthMask(false)
	for k := ListKind(0); k < ListTranslucent; k++ {
		r.drawList(di, k, PassDecals)
	}
	rs.SetTextureMode(device.Modulate)
	dev.DepthMask(true)

	// bleeding flats go behind overlapping mid textures
	dev.PolygonOffset(1, 128)
	dev.DepthMask(false)
	rs.EnableFog(true)
	rs.EnableAlphaTest(false)
	rs.BlendFunc(device.One, device.Zero)
	r.DrawUnhandledMissingTextures(di)
	rs.EnableAlphaTest(true)
	dev.DepthMask(true)

	dev.PolygonOffset(0, 0)
	dev.Disable(device.PolygonOffsetFill)
}

func (r *Renderer) renderMultipassLights(di *DrawInfo, texture bool) {
	dev, rs := r.dev, r.state

	// sector light only, building the depth of the lit surfaces
	rs.EnableTexture(false)
	rs.EnableBrightmap(false)
	rs.Apply(dev, false)
	r.drawList(di, ListLight, PassBase)
	rs.EnableTexture(true)

	rs.SetTextureMode(device.Mask)
	rs.EnableBrightmap(true)
	r.drawList(di, ListLightBright, PassBaseMasked)
	r.drawList(di, ListLightMasked, PassBaseMasked)
	rs.EnableBrightmap(false)
	rs.SetTextureMode(device.Modulate)

	dev.DepthMask(false)
	if r.lightCount > 0 && r.fixedColormap == CMDefault {
		if r.setupLightTexture() {
			rs.BlendFunc(device.One, device.One)
			dev.DepthFunc(device.Equal)
			for k := firstLightList; k <= lastLightList; k++ {
				r.drawList(di, k, PassLight)
			}
			rs.BlendEquation(device.FuncAdd)
		}
	}

	// modulate the accumulated light with the texture
	dev.Color4(1, 1, 1, 1)
	rs.BlendFunc(device.DstColor, device.Zero)
	rs.EnableFog(false)
	dev.DepthFunc(device.LEqual)
	if texture {
		rs.EnableAlphaTest(false)
		r.drawList(di, ListLight, PassTexture)
		rs.EnableAlphaTest(true)
		r.drawList(di, ListLightBright, PassTexture)
		r.drawList(di, ListLightMasked, PassTexture)
	}

	rs.EnableFog(true)
	if config.GetLights() && r.lightCount > 0 && r.fixedColormap == CMDefault {
		rs.BlendFunc(device.One, device.One)
		dev.DepthFunc(device.Equal)
		if r.setupLightTexture() {
			for k := ListKind(0); k < ListTranslucent; k++ {
				r.drawList(di, k, PassLightAdditive)
			}
			rs.BlendEquation(device.FuncAdd)
		}
	}
}

// RenderTranslucent draws the translucent border list as is and the
// translucent list back to front.
func (r *Renderer) RenderTranslucent() {
	defer profiling.RenderAll.Track()()
	di := r.infos.current()
	dev, rs := r.dev, r.state

	dev.DepthMask(false)
	rs.EnableAlphaTest(true)
	rs.AlphaFunc(device.GEqual, config.GetMaskSpriteThreshold())
	rs.BlendFunc(device.SrcAlpha, device.OneMinusSrcAlpha)

	rs.EnableBrightmap(true)
	r.drawList(di, ListTranslucentBorder, PassTranslucent)
	r.drawList(di, ListTranslucent, PassTranslucent)
	rs.EnableBrightmap(false)

	dev.DepthMask(true)
	rs.AlphaFunc(device.GEqual, 0.5)
}
