package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gzgl/internal/graphics/device"
)

func TestRenderStatePushesOnlyChanges(t *testing.T) {
	rec := device.NewRecorder()
	rs := newRenderState()

	rs.Apply(rec, false)
	assert.True(t, rec.State.Enabled(device.Texture2D))
	assert.False(t, rec.State.Enabled(device.Fog))
	assert.Equal(t, device.SrcAlpha, rec.State.BlendSrc)
	assert.Equal(t, device.GEqual, rec.State.AlphaFunc)

	rec.Reset()
	rs.Apply(rec, false)
	assert.Empty(t, rec.Calls)

	rs.EnableTexture(false)
	rs.Apply(rec, false)
	require.Len(t, rec.Calls, 1)
	assert.False(t, rec.State.Enabled(device.Texture2D))

	rec.Reset()
	rs.Apply(rec, true)
	assert.Greater(t, len(rec.Calls), 1, "force pushes everything")

	rec.Reset()
	rs.Invalidate()
	rs.Apply(rec, false)
	assert.Greater(t, len(rec.Calls), 1)
}

func TestRenderStateFogNeedsBothGates(t *testing.T) {
	rec := device.NewRecorder()
	rs := newRenderState()
	rs.Apply(rec, false)

	rs.SetFog(mgl32.Vec4{0.5, 0, 0, 1}, 0.01)
	rs.SetListFog(false)
	rs.EnableFog(true)
	assert.False(t, rs.FogEnabled())

	rec.Reset()
	rs.Apply(rec, false)
	assert.Zero(t, rec.Count("FogParams"))
	assert.False(t, rec.State.Enabled(device.Fog))

	rs.SetListFog(true)
	assert.True(t, rs.FogEnabled())
	rs.Apply(rec, false)
	assert.True(t, rec.State.Enabled(device.Fog))
	assert.Equal(t, 1, rec.Count("FogParams"))
	assert.Equal(t, float32(0.01), rec.State.FogDensity)

	rs.EnableFog(false)
	rs.Apply(rec, false)
	assert.False(t, rec.State.Enabled(device.Fog))
}

func TestRenderStateFlags(t *testing.T) {
	rs := newRenderState()
	assert.True(t, rs.TextureEnabled())
	assert.False(t, rs.BrightmapEnabled())
	assert.False(t, rs.Is2D())

	rs.EnableBrightmap(true)
	rs.Set2DMode(true)
	assert.True(t, rs.BrightmapEnabled())
	assert.True(t, rs.Is2D())
}
