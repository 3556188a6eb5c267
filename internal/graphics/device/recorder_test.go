package device

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Device    = (*Recorder)(nil)
	_ Offscreen = (*Recorder)(nil)
)

func TestRecorderSnapshotsStatePerDraw(t *testing.T) {
	r := NewRecorder()
	r.Enable(AlphaTest)
	r.AlphaFunc(Greater, 0.5)
	r.BindTexture(7)
	r.DrawPolygon([]Vertex{{X: 1}, {X: 2}, {X: 3}})
	r.Disable(AlphaTest)
	r.BlendFunc(DstColor, Zero)
	r.DrawPolygon([]Vertex{{X: 4}, {X: 5}, {X: 6}})

	require.Len(t, r.Draws, 2)
	first, second := r.Draws[0].State, r.Draws[1].State
	assert.True(t, first.Enabled(AlphaTest))
	assert.Equal(t, float32(0.5), first.AlphaRef)
	assert.Equal(t, uint32(7), first.Texture)
	assert.False(t, second.Enabled(AlphaTest))
	assert.Equal(t, DstColor, second.BlendSrc)
	assert.Less(t, r.Draws[0].Seq, r.Draws[1].Seq)

	masked := r.DrawsWhere(func(s *State) bool { return s.Enabled(AlphaTest) })
	assert.Len(t, masked, 1)
	assert.Equal(t, 1, r.Count("Enable(AlphaTest)"))
}

func TestRecorderTextures(t *testing.T) {
	r := NewRecorder()
	tex, err := r.CreateTexture(2, 2, make([]byte, 16))
	require.NoError(t, err)
	assert.NotZero(t, tex)

	_, err = r.CreateTexture(4, 4, make([]byte, 16))
	assert.Error(t, err)

	r.FailTextures = true
	_, err = r.CreateTexture(2, 2, make([]byte, 16))
	assert.ErrorIs(t, err, ErrTextureRejected)
}

func TestRecorderReadPixels(t *testing.T) {
	r := NewRecorder()
	r.ClearColor(1, 0, 0, 1)
	buf := make([]byte, 2*2*3)
	r.ReadPixelsRGB(0, 0, 2, 2, buf)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 0, 0, 255, 0, 0}, buf)

	r.Pixel = func(x, y int) (uint8, uint8, uint8) { return uint8(x), uint8(y), 9 }
	r.ReadPixelsRGB(0, 0, 2, 2, buf)
	assert.Equal(t, []byte{0, 0, 9, 1, 0, 9, 0, 1, 9, 1, 1, 9}, buf)
}

func TestRecorderMatrices(t *testing.T) {
	r := NewRecorder()
	m := mgl32.Translate3D(1, 2, 3)
	r.LoadModelview(m)
	r.LoadProjection(mgl32.Ortho2D(0, 320, 200, 0))
	assert.Equal(t, m, r.State.Modelview)
	r.Reset()
	assert.Empty(t, r.Calls)
	assert.Equal(t, m, r.State.Modelview, "reset keeps state")
}

func TestRecorderFramebuffers(t *testing.T) {
	r := NewRecorder()
	assert.ErrorIs(t, r.BindFramebuffer(7, 64, 32), ErrFramebufferIncomplete, "no framebuffer support")

	r.Caps.Framebuffers = true
	require.NoError(t, r.BindFramebuffer(7, 64, 32))
	r.DrawPolygon([]Vertex{{}, {}, {}})
	r.UnbindFramebuffer()
	r.DrawPolygon([]Vertex{{}, {}, {}})
	require.Len(t, r.Draws, 2)
	assert.Equal(t, uint32(7), r.Draws[0].State.Framebuffer)
	assert.Zero(t, r.Draws[1].State.Framebuffer)

	r.FailFramebuffers = true
	assert.ErrorIs(t, r.BindFramebuffer(7, 64, 32), ErrFramebufferIncomplete)
}
