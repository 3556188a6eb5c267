package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gzgl/internal/config"
	"gzgl/internal/fixed"
	"gzgl/internal/graphics/device"
	"gzgl/internal/graphics/material"
	"gzgl/internal/level"
)

func lightDraw(s *device.State) bool {
	return s.BlendSrc == device.One && s.BlendDst == device.One && s.DepthFunc == device.Equal
}

func wallLight(additive bool) StaticLights {
	return StaticLights{{X: 100, Y: 0, Z: 41, Radius: 64, Color: mgl32.Vec3{1, 0.5, 0.5}, Additive: additive}}
}

func TestMultipassLightsRouteAndDraw(t *testing.T) {
	f := newRooms(t, roomOptions{lights: wallLight(false)})
	f.render()

	di := f.r.LastScene()
	assert.Equal(t, 1, di.List(ListLight).Len())
	assert.Zero(t, di.List(ListPlain).Len())

	lit := f.rec.DrawsWhere(lightDraw)
	require.Len(t, lit, 1)
	assert.InDelta(t, 1-28.0/64, lit[0].State.Color.X(), 1e-3)

	// base, light, texture
	require.Len(t, f.rec.Draws, 3)
	base, tex := f.rec.Draws[0].State, f.rec.Draws[2].State
	assert.False(t, base.Enabled(device.Texture2D))
	assert.Equal(t, device.DstColor, tex.BlendSrc)
	assert.Equal(t, device.Zero, tex.BlendDst)
	assert.True(t, lit[0].State.Enabled(device.Blend))
	assert.True(t, tex.Enabled(device.Blend))
	assert.True(t, tex.Enabled(device.Texture2D))
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, tex.Color)
}

func TestAdditiveLightsDrawLast(t *testing.T) {
	f := newRooms(t, roomOptions{lights: wallLight(true)})
	f.render()

	lit := f.rec.DrawsWhere(lightDraw)
	require.Len(t, lit, 1)
	last := f.rec.Draws[len(f.rec.Draws)-1]
	assert.Equal(t, lit[0].Seq, last.Seq, "additive lights go on after the texture pass")
	assert.True(t, last.State.Enabled(device.Blend))
}

func TestFixedColormapSkipsLights(t *testing.T) {
	f := newRooms(t, roomOptions{lights: wallLight(true)})
	f.player.FixedColormap = 2
	f.render()

	assert.Empty(t, f.rec.DrawsWhere(lightDraw))
	di := f.r.LastScene()
	assert.Equal(t, 1, di.List(ListPlain).Len())
	d := di.List(ListPlain).Items[0]
	assert.Equal(t, float32(1), d.Light)
	assert.Empty(t, d.Lights)
}

func TestShaderLightsFoldIntoSurface(t *testing.T) {
	f := newRooms(t, roomOptions{lights: wallLight(false), deps: func(d *Deps) { d.DynLightShader = true }})
	f.render()

	assert.Equal(t, 1, f.r.LastScene().List(ListPlain).Len())
	require.Len(t, f.rec.Draws, 1)
	assert.Empty(t, f.rec.DrawsWhere(lightDraw))
	assert.Greater(t, f.rec.Draws[0].State.Color.X(), float32(160)/255)

	config.SetForceMultipass(true)
	f.render()
	assert.Equal(t, 1, f.r.LastScene().List(ListLight).Len())
	assert.Len(t, f.rec.DrawsWhere(lightDraw), 1)
}

func TestLightTextureFailureDisablesLights(t *testing.T) {
	f := newRooms(t, roomOptions{lights: wallLight(false)})
	f.rec.FailTextures = true
	f.render()

	assert.False(t, config.GetLights())
	assert.Empty(t, f.rec.DrawsWhere(lightDraw))

	f.render()
	assert.Equal(t, 1, f.r.LastScene().List(ListPlain).Len(), "lit items fall back to the plain list")
}

func TestUntexturedRendersLightOnly(t *testing.T) {
	f := newRooms(t, roomOptions{})
	config.SetTexture(false)
	f.render()

	require.Len(t, f.rec.Draws, 1)
	assert.False(t, f.rec.Draws[0].State.Enabled(device.Texture2D))
}

func TestFogListsEnableFog(t *testing.T) {
	f := newRooms(t, roomOptions{fade: level.NewPalEntry(0, 40, 40, 80)})
	f.render()

	di := f.r.LastScene()
	require.Equal(t, 1, di.List(ListFog).Len())
	require.Len(t, f.rec.Draws, 1)
	d := f.rec.Draws[0].State
	assert.True(t, d.Enabled(device.Fog))
	assert.InDelta(t, 40.0/255, d.FogColor.X(), 1e-5)
	assert.Greater(t, d.FogDensity, float32(0))
}

func TestPassString(t *testing.T) {
	assert.Equal(t, "plain", PassPlain.String())
	assert.Equal(t, "light-additive", PassLightAdditive.String())
	assert.Equal(t, "pass(?)", Pass(99).String())
	assert.Equal(t, "translucent-border", ListTranslucentBorder.String())
}

func TestTranslucentBorderKeepsEmissionOrder(t *testing.T) {
	f := newRooms(t, roomOptions{})
	di := newDrawInfo()
	for _, h := range []uint32{3, 1, 2} {
		di.Add(&DrawItem{Type: ItemFogBoundary, Kind: ListTranslucentBorder, Material: material.Material{Handle: h},
			Verts: []device.Vertex{{X: 1}, {X: 2}, {X: 3}}})
	}
	f.rec.Reset()
	f.r.drawList(di, ListTranslucentBorder, PassTranslucent)

	var got []uint32
	for _, d := range f.rec.Draws {
		got = append(got, d.State.Texture)
	}
	assert.Equal(t, []uint32{3, 1, 2}, got)
}

func TestTranslucentSpriteDrawsBlended(t *testing.T) {
	f := spriteRooms(t, &level.Thing{X: fixed.FromInt(64), Alpha: 0.4, Style: level.StyleTranslucent}, false)
	f.render()

	blended := f.rec.DrawsWhere(func(s *device.State) bool {
		return s.BlendSrc == device.SrcAlpha && s.BlendDst == device.OneMinusSrcAlpha && s.Color.W() < 1
	})
	require.NotEmpty(t, blended)
	for _, d := range blended {
		assert.True(t, d.State.Enabled(device.Blend))
	}
}
