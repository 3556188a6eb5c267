package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"gzgl/internal/graphics/device"
)

type blendFunc struct {
	src, dst device.BlendFactor
}

type stateValues struct {
	fog        bool
	listFog    bool
	texture    bool
	brightmap  bool
	alphaTest  bool
	alphaFunc  device.CompareFunc
	alphaRef   float32
	blend      blendFunc
	blendEq    device.BlendEquation
	texMode    device.TextureMode
	fogColor   mgl32.Vec4
	fogDensity float32
	mode2D     bool
}

// RenderState collects pipeline settings and pushes only the changed ones to the
// device when Apply is called right before drawing.
type RenderState struct {
	want    stateValues
	applied stateValues
	valid   bool
}

func newRenderState() *RenderState {
	rs := &RenderState{}
	rs.want = stateValues{
		texture:   true,
		listFog:   true,
		alphaFunc: device.GEqual,
		alphaRef:  0.5,
		blend:     blendFunc{device.SrcAlpha, device.OneMinusSrcAlpha},
	}
	return rs
}

// EnableFog gates fog for everything drawn; SetListFog selects it per list.
func (rs *RenderState) EnableFog(on bool)       { rs.want.fog = on }
func (rs *RenderState) SetListFog(on bool)      { rs.want.listFog = on }
func (rs *RenderState) EnableTexture(on bool)   { rs.want.texture = on }
func (rs *RenderState) EnableBrightmap(on bool) { rs.want.brightmap = on }
func (rs *RenderState) EnableAlphaTest(on bool) { rs.want.alphaTest = on }
func (rs *RenderState) Set2DMode(on bool)       { rs.want.mode2D = on }

func (rs *RenderState) AlphaFunc(fn device.CompareFunc, ref float32) {
	rs.want.alphaFunc, rs.want.alphaRef = fn, ref
}

func (rs *RenderState) BlendFunc(src, dst device.BlendFactor) {
	rs.want.blend = blendFunc{src, dst}
}

func (rs *RenderState) BlendEquation(eq device.BlendEquation) { rs.want.blendEq = eq }

func (rs *RenderState) SetTextureMode(mode device.TextureMode) { rs.want.texMode = mode }

func (rs *RenderState) SetFog(color mgl32.Vec4, density float32) {
	rs.want.fogColor, rs.want.fogDensity = color, density
}

func (rs *RenderState) FogEnabled() bool       { return rs.want.fog && rs.want.listFog }
func (rs *RenderState) TextureEnabled() bool   { return rs.want.texture }
func (rs *RenderState) BrightmapEnabled() bool { return rs.want.brightmap }
func (rs *RenderState) Is2D() bool             { return rs.want.mode2D }

// Invalidate forces the next Apply to push every value.
func (rs *RenderState) Invalidate() { rs.valid = false }

func setCap(dev device.Device, c device.Cap, on bool) {
	if on {
		dev.Enable(c)
	} else {
		dev.Disable(c)
	}
}

// Apply pushes pending changes; force pushes everything.
func (rs *RenderState) Apply(dev device.Device, force bool) {
	w, a := &rs.want, &rs.applied
	all := force || !rs.valid
	fog := w.fog && w.listFog
	fogChanged := fog != (a.fog && a.listFog)
	if all || fogChanged {
		setCap(dev, device.Fog, fog)
	}
	if fog && (all || fogChanged || w.fogColor != a.fogColor || w.fogDensity != a.fogDensity) {
		dev.FogParams(w.fogColor, w.fogDensity)
	}
	if all || w.texture != a.texture {
		setCap(dev, device.Texture2D, w.texture)
	}
	if all || w.alphaTest != a.alphaTest {
		setCap(dev, device.AlphaTest, w.alphaTest)
	}
	if all || w.alphaFunc != a.alphaFunc || w.alphaRef != a.alphaRef {
		dev.AlphaFunc(w.alphaFunc, w.alphaRef)
	}
	if all || w.blend != a.blend {
		dev.BlendFunc(w.blend.src, w.blend.dst)
	}
	if all || w.blendEq != a.blendEq {
		dev.BlendEquation(w.blendEq)
	}
	if all || w.texMode != a.texMode {
		dev.TextureMode(w.texMode)
	}
	rs.applied = rs.want
	rs.valid = true
}
