package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"gzgl/internal/config"
	"gzgl/internal/fixed"
)

func TestSetCameraPos(t *testing.T) {
	var c Camera
	c.SetCameraPos(fixed.FromInt(10), fixed.FromInt(-20), fixed.FromInt(41), fixed.Angle90)
	assert.Equal(t, mgl32.Vec3{10, -20, 41}, c.Pos)
	assert.Equal(t, float32(180), c.Angles.Yaw)
	assert.InDelta(t, 0, c.ViewVector.X(), 1e-6)
	assert.InDelta(t, 1, c.ViewVector.Y(), 1e-6)
	assert.Equal(t, mgl32.Vec3{10, 41, -20}, c.glEye())
}

func TestMirrorFlipsEyeSpaceX(t *testing.T) {
	pos := mgl32.Vec3{12, -7, 41}
	plain := ViewMatrix(pos, 0, 0, 233, false, false)
	mirrored := ViewMatrix(pos, 0, 0, 233, true, false)
	assert.True(t, matrixNearEqual(mgl32.Scale3D(-1, 1, 1).Mul4(plain), mirrored, 1e-4))

	var c Camera
	c.SetCameraPos(fixed.FromInt(12), fixed.FromInt(-7), fixed.FromInt(41), fixed.Angle45)
	want := c.ComputeViewMatrix(0, nil)
	twice := ViewFlags(0).Toggle(ViewMirror).Toggle(ViewMirror)
	assert.True(t, matrixNearEqual(want, c.ComputeViewMatrix(twice, nil), 1e-6))
	assert.Zero(t, c.Flags)

	c.ComputeViewMatrix(ViewFlags(0).With(ViewPlaneMirror, true), nil)
	assert.True(t, c.Flags.Has(ViewPlaneMirror))
	assert.False(t, c.Flags.With(ViewPlaneMirror, false).Has(ViewPlaneMirror))
}

func TestProjectionFrustumShift(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	centered := ProjectionMatrix(90, 1.333, 1.6, 0.03, false)
	assert.Zero(t, centered[8])
	shifted := ProjectionMatrix(90, 1.333, 1.6, 0.03, true)
	assert.Less(t, shifted[8], float32(0))
	assert.InDelta(t, centered[0], shifted[0], 1e-5)
}

func TestClampPitch(t *testing.T) {
	assert.InDelta(t, 30, ClampPitch(fixed.FromDegrees(30)), 1e-3)
	assert.InDelta(t, -30, ClampPitch(fixed.FromDegrees(-30)), 1e-3)
	assert.Equal(t, float32(90), ClampPitch(fixed.FromDegrees(120)))
	assert.Equal(t, float32(-90), ClampPitch(fixed.FromDegrees(-100)))
}

func TestFrustumAngle(t *testing.T) {
	assert.Equal(t, fixed.FromDegrees(47), FrustumAngle(0, 90, 0))
	assert.Equal(t, fixed.AngleMax, FrustumAngle(50, 90, 0), "steep pitch opens the circle")
	assert.Equal(t, fixed.AngleMax, FrustumAngle(-50, 90, 0))
	assert.NotEqual(t, fixed.AngleMax, FrustumAngle(40, 179, 1))
	assert.Equal(t, fixed.AngleMax, FrustumAngle(45, 179, 1))
	assert.Equal(t, FrustumAngle(0, 90, 0), FrustumAngle(0, 90, 9), "unknown ratios fall back to 4:3")

	// 17:10 scales by 48*9/10 truncated to 43, 5:4 by 48*15/16
	assert.InDelta(t, 2+45.0*48/43, FrustumAngle(0, 90, 3).Degrees(), 1e-3)
	assert.InDelta(t, 2+45.0*48/45, FrustumAngle(0, 90, 4).Degrees(), 1e-3)
}

func TestYawFollowsHead(t *testing.T) {
	var y yawFollow
	assert.Equal(t, float32(90), y.next(90, 0))
	assert.Equal(t, float32(80), y.next(90, 10), "head turn moves the view")
	assert.Equal(t, float32(75), y.next(90, 15))
	assert.Equal(t, float32(45), y.next(45, 15), "a camera turn resets to the camera yaw")
}
