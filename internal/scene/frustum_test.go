package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func lookingDownZ() Frustum {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 1, 1000)
	view := mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	return NewFrustum(proj.Mul4(view))
}

func TestFrustumBox(t *testing.T) {
	f := lookingDownZ()
	assert.True(t, f.Box(mgl32.Vec3{-1, -1, -51}, mgl32.Vec3{1, 1, -49}))
	assert.False(t, f.Box(mgl32.Vec3{-1, -1, 49}, mgl32.Vec3{1, 1, 51}), "behind the eye")
	assert.False(t, f.Box(mgl32.Vec3{-1, -1, -2000}, mgl32.Vec3{1, 1, -1900}), "past the far plane")
	assert.True(t, f.Box(mgl32.Vec3{40, -1, -51}, mgl32.Vec3{55, 1, -49}), "straddles the right plane")

	f.open = true
	assert.True(t, f.Box(mgl32.Vec3{-1, -1, 49}, mgl32.Vec3{1, 1, 51}))
}

func TestFrustumSphere(t *testing.T) {
	f := lookingDownZ()
	assert.True(t, f.Sphere(mgl32.Vec3{0, 0, -50}, 1))
	assert.False(t, f.Sphere(mgl32.Vec3{0, 0, 100}, 1))
	assert.False(t, f.Sphere(mgl32.Vec3{100, 0, -50}, 1))
	assert.True(t, f.Sphere(mgl32.Vec3{100, 0, -50}, 60), "large enough to reach into view")
}

func matrixNearEqual(a, b mgl32.Mat4, epsilon float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}
