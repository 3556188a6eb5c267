package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gzgl/internal/graphics/device"
)

// eastWall is a 20x20 quad on the plane x=100, centered at height 10.
var eastWall = []device.Vertex{
	{X: 100, Y: 0, Z: -10},
	{X: 100, Y: 0, Z: 10},
	{X: 100, Y: 20, Z: 10},
	{X: 100, Y: 20, Z: -10},
}

func TestLightReaches(t *testing.T) {
	near := &Light{X: 90, Y: 0, Z: 10, Radius: 64}
	assert.True(t, near.reaches(eastWall))

	small := &Light{X: 90, Y: 0, Z: 10, Radius: 8}
	assert.False(t, small.reaches(eastWall))
	assert.False(t, near.reaches(nil))
}

func TestLightVertsCenterOnProjection(t *testing.T) {
	l := &Light{X: 90, Y: 0, Z: 10, Radius: 64, Color: mgl32.Vec3{1, 1, 1}}
	out, intensity, ok := l.lightVerts(eastWall, nil)
	require.True(t, ok)
	require.Len(t, out, len(eastWall))
	assert.InDelta(t, 1-10.0/64, intensity, 1e-5)

	var u, v float32
	for i, p := range out {
		assert.Equal(t, eastWall[i].X, p.X)
		u += p.U
		v += p.V
	}
	assert.InDelta(t, 0.5, u/4, 1e-4)
	assert.InDelta(t, 0.5, v/4, 1e-4)

	far := &Light{X: 30, Y: 0, Z: 10, Radius: 64}
	_, _, ok = far.lightVerts(eastWall, nil)
	assert.False(t, ok)
}

func TestLightTextureCreatedOnce(t *testing.T) {
	rec := device.NewRecorder()
	var lt lightTexture
	require.NoError(t, lt.setup(rec))
	require.NoError(t, lt.setup(rec))
	assert.Equal(t, 1, rec.Count("CreateTexture(64,64)"))

	failing := device.NewRecorder()
	failing.FailTextures = true
	var broken lightTexture
	require.Error(t, broken.setup(failing))
	require.Error(t, broken.setup(failing))
	assert.Equal(t, 1, failing.Count("CreateTexture(64,64)"))
}
