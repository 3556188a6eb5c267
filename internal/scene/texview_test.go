package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gzgl/internal/config"
	"gzgl/internal/fixed"
	"gzgl/internal/graphics/device"
	"gzgl/internal/level"
)

func canvasRooms(t *testing.T) (*fixture, level.TextureID) {
	t.Helper()
	var canvas level.TextureID
	f := newRooms(t, roomOptions{}, func(f *fixture, o *roomOptions) {
		var err error
		canvas, err = f.mats.Canvas("SCREEN", 64, 32)
		require.NoError(t, err)
		o.east.Mid = canvas
	})
	return f, canvas
}

func TestRenderTextureViewCopiesBackBuffer(t *testing.T) {
	f, canvas := canvasRooms(t)
	cam := &Actor{X: fixed.FromInt(-100), PrevX: fixed.FromInt(-100), ViewHeight: fixed.FromInt(41)}

	f.rec.Reset()
	require.True(t, f.r.RenderTextureView(canvas, cam, 90))
	mat, _ := f.mats.Material(canvas)
	require.Len(t, f.rec.Copies, 1)
	assert.Equal(t, device.Copy{Texture: mat.Handle, Width: 64, Height: 32}, f.rec.Copies[0])
	assert.Positive(t, f.rec.Count("Viewport(0,0,64,32)"))
	assert.Equal(t, CMDefault, f.r.FixedColormap())

	assert.False(t, f.r.RenderTextureView(level.NoTexture, cam, 90))
	assert.False(t, f.r.RenderTextureView(canvas, nil, 90))
}

func TestRenderTextureViewOffscreen(t *testing.T) {
	f, canvas := canvasRooms(t)
	f.rec.Caps.Framebuffers = true
	config.SetUseFramebuffer(true)
	mat, _ := f.mats.Material(canvas)

	f.rec.Reset()
	require.True(t, f.r.RenderTextureView(canvas, &Actor{ViewHeight: fixed.FromInt(41)}, 90))
	assert.True(t, config.GetUseFramebuffer())
	assert.Empty(t, f.rec.Copies, "the view is drawn straight into the canvas")
	require.NotEmpty(t, f.rec.Draws)
	for _, d := range f.rec.Draws {
		assert.Equal(t, mat.Handle, d.State.Framebuffer)
	}
	assert.Zero(t, f.rec.State.Framebuffer)
	assert.Equal(t, 1, f.rec.Count("UnbindFramebuffer"))
}

func TestRenderTextureViewOffscreenFallback(t *testing.T) {
	f, canvas := canvasRooms(t)
	f.rec.Caps.Framebuffers = true
	f.rec.FailFramebuffers = true
	config.SetUseFramebuffer(true)

	f.rec.Reset()
	require.True(t, f.r.RenderTextureView(canvas, &Actor{ViewHeight: fixed.FromInt(41)}, 90))
	assert.False(t, config.GetUseFramebuffer(), "a failed bind turns offscreen views off")
	assert.Len(t, f.rec.Copies, 1)
}

func TestCameraTexturesUpdateUsedOnly(t *testing.T) {
	f, canvas := canvasRooms(t)
	ct := f.r.CameraTextures()
	cam := &Actor{ViewHeight: fixed.FromInt(41)}

	ct.Register(canvas, cam, 90)
	ct.Register(canvas, cam, 60)
	assert.Equal(t, 1, ct.Len())

	assert.Equal(t, 1, ct.UpdateAll(f.r))
	assert.Zero(t, ct.UpdateAll(f.r))
	ct.MarkUsed(canvas)
	assert.Equal(t, 1, ct.UpdateAll(f.r))

	ct.Unregister(canvas)
	ct.MarkUsed(canvas)
	assert.Zero(t, ct.UpdateAll(f.r))
	assert.Zero(t, ct.Len())
}

func TestVisibleCanvasIsRedrawnEachFrame(t *testing.T) {
	f, canvas := canvasRooms(t)
	f.r.CameraTextures().Register(canvas, &Actor{ViewHeight: fixed.FromInt(41)}, 90)

	f.render()
	assert.Len(t, f.rec.Copies, 1)
	f.render()
	assert.Len(t, f.rec.Copies, 1, "drawing the canvas wall marks it for the next frame")

	f.r.CameraTextures().Unregister(canvas)
	f.render()
	assert.Empty(t, f.rec.Copies)
}

func TestCameraSeeingOwnCanvasUpdatesOnce(t *testing.T) {
	f, canvas := canvasRooms(t)
	ct := f.r.CameraTextures()
	// Looks east at the canvas wall.
	ct.Register(canvas, &Actor{ViewHeight: fixed.FromInt(41)}, 90)

	f.rec.Reset()
	require.Equal(t, 1, ct.UpdateAll(f.r))
	require.Len(t, f.rec.Copies, 1)
	assert.Zero(t, ct.UpdateAll(f.r), "drawing its own canvas does not schedule another update")
}
