package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gzgl/internal/config"
)

func TestSideBySideSplitsViewport(t *testing.T) {
	f := newRooms(t, roomOptions{deps: func(d *Deps) { d.Stereo = SideBySide{} }})
	f.render()

	assert.Equal(t, 1, f.rec.Count("Viewport(0,0,320,480)"))
	assert.Equal(t, 1, f.rec.Count("Viewport(320,0,320,480)"))
	require.Len(t, f.rec.Draws, 2, "the wall once per eye")
	left, right := f.rec.Draws[0].State, f.rec.Draws[1].State
	assert.NotEqual(t, left.Projection, right.Projection)
	assert.NotEqual(t, left.Modelview, right.Modelview)
	assert.Equal(t, [4]int{320, 0, 320, 480}, right.Viewport)

	// the camera is back at the eye midpoint
	assert.InDelta(t, 0, f.r.Camera().Pos.X(), 1e-5)
	assert.InDelta(t, 0, f.r.Camera().Pos.Y(), 1e-5)
}

func TestRedCyanMasksChannels(t *testing.T) {
	f := newRooms(t, roomOptions{deps: func(d *Deps) { d.Stereo = RedCyan{} }})
	f.render()

	require.Len(t, f.rec.Draws, 2)
	assert.Equal(t, [4]bool{true, false, false, true}, f.rec.Draws[0].State.ColorMask)
	assert.Equal(t, [4]bool{false, true, true, true}, f.rec.Draws[1].State.ColorMask)
	assert.Equal(t, [4]bool{true, true, true, true}, f.rec.State.ColorMask)
}

func TestSideBySideLeftEyeIsNorthWhenFacingEast(t *testing.T) {
	f := newRooms(t, roomOptions{deps: func(d *Deps) { d.Stereo = SideBySide{} }})
	f.render()

	require.Len(t, f.rec.Draws, 2)
	shift := config.GetEyeSeparation() / 2 * eyeHeightUnits / config.GetPlayerHeightMeters()
	want := ViewMatrix(mgl32.Vec3{0, shift, 41}, 0, 0, 270, false, false)
	assert.True(t, matrixNearEqual(want, f.rec.Draws[0].State.Modelview, 1e-4))
	want = ViewMatrix(mgl32.Vec3{0, -shift, 41}, 0, 0, 270, false, false)
	assert.True(t, matrixNearEqual(want, f.rec.Draws[1].State.Modelview, 1e-4))
}

func TestSetStereoMode(t *testing.T) {
	f := newRooms(t, roomOptions{})
	f.r.SetStereoMode(RedCyan{})
	f.render()
	assert.Len(t, f.rec.Draws, 2)

	f.r.SetStereoMode(nil)
	f.render()
	assert.Len(t, f.rec.Draws, 1)
}

func TestStereoSwapsOncePerFrame(t *testing.T) {
	for _, mode := range []StereoMode{MonoView{}, SideBySide{}, RedCyan{}} {
		swaps := 0
		f := newRooms(t, roomOptions{deps: func(d *Deps) {
			d.Stereo = mode
			d.Screen.Swap = func() { swaps++ }
		}})
		f.render()
		assert.Equal(t, 1, swaps, "%T", mode)
		f.render()
		assert.Equal(t, 2, swaps, "%T", mode)

		config.SetDrawSync(true)
		f.render()
		assert.Equal(t, 2, swaps, "%T swaps in the frame loop under draw sync", mode)
	}
}
