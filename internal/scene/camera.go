package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"gzgl/internal/config"
	"gzgl/internal/fixed"
)

const (
	// PixelAspect corrects for the non-square logical pixels of the 320x200 grid.
	PixelAspect float32 = 1.20
	ZNear       float32 = 5
	ZFar        float32 = 65536
)

// ViewFlags select reflections applied to the view matrix.
type ViewFlags uint8

const (
	// ViewMirror flips the yaw sense and the x axis.
	ViewMirror ViewFlags = 1 << iota
	// ViewPlaneMirror flips the vertical translation and the y scale.
	ViewPlaneMirror
)

func (f ViewFlags) Has(g ViewFlags) bool         { return f&g != 0 }
func (f ViewFlags) Toggle(g ViewFlags) ViewFlags { return f ^ g }
func (f ViewFlags) With(g ViewFlags, on bool) ViewFlags {
	if on {
		return f | g
	}
	return f &^ g
}

// Angles are in degrees.
type Angles struct {
	Yaw, Pitch, Roll float32
}

// HeadOrientation is reported by head-tracking stereo modes, in radians.
type HeadOrientation struct {
	Pitch, Roll, Yaw float32
}

// Camera is the per-eye view state derived from the simulation viewpoint.
type Camera struct {
	X, Y, Z fixed.Fixed
	Angle   fixed.Angle

	Pos        mgl32.Vec3
	Angles     Angles
	ViewVector mgl32.Vec2
	FoV        float32
	Flags      ViewFlags

	View       mgl32.Mat4
	Projection mgl32.Mat4

	yaw yawFollow
}

// SetCameraPos converts a fixed-point viewpoint to the float camera.
func (c *Camera) SetCameraPos(x, y, z fixed.Fixed, angle fixed.Angle) {
	deg := angle.FineDegrees()
	c.X, c.Y, c.Z, c.Angle = x, y, z, angle
	c.Angles.Yaw = 270 - deg
	rad := mgl32.DegToRad(deg)
	c.ViewVector = mgl32.Vec2{math32.Cos(rad), math32.Sin(rad)}
	c.Pos = mgl32.Vec3{x.Float32(), y.Float32(), z.Float32()}
}

// glEye returns the eye in GL space (x, height, y).
func (c *Camera) glEye() mgl32.Vec3 { return mgl32.Vec3{c.Pos.X(), c.Pos.Z(), c.Pos.Y()} }

// ComputeViewMatrix builds the modelview for the current camera. A non-nil head
// orientation replaces pitch and roll, and yaw follows the head while the camera
// itself does not turn.
func (c *Camera) ComputeViewMatrix(flags ViewFlags, head *HeadOrientation) mgl32.Mat4 {
	c.Flags = flags
	pitch, roll, yaw := c.Angles.Pitch, c.Angles.Roll, c.Angles.Yaw
	if head != nil {
		pitch = mgl32.RadToDeg(-head.Pitch)
		roll = mgl32.RadToDeg(head.Roll)
		yaw = c.yaw.next(c.Angles.Yaw, mgl32.RadToDeg(head.Yaw))
	}
	c.View = ViewMatrix(c.Pos, pitch, roll, yaw, flags.Has(ViewMirror), flags.Has(ViewPlaneMirror))
	return c.View
}

// ViewMatrix composes roll, pitch, yaw, the pixel aspect unstretch, the camera
// translation and the axis flip, in that order. Angles are in degrees; vertices
// are expected as (x, z, y) in map units.
func ViewMatrix(pos mgl32.Vec3, pitch, roll, yaw float32, mirror, planeMirror bool) mgl32.Mat4 {
	var mult, planemult float32 = 1, 1
	if mirror {
		mult = -1
	}
	if planeMirror {
		planemult = -1
	}
	m := mgl32.HomogRotate3DZ(mgl32.DegToRad(roll))
	m = m.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(pitch)))
	m = m.Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(yaw), mgl32.Vec3{0, mult, 0}))
	m = m.Mul4(mgl32.Scale3D(1/PixelAspect, 1, 1/PixelAspect))
	m = m.Mul4(mgl32.Translate3D(pos.X()*mult, -pos.Z()*planemult, -pos.Y()))
	return m.Mul4(mgl32.Scale3D(-mult, planemult, 1))
}

// ProjectionMatrix derives the vertical field of view from fov and fovRatio and
// builds the frustum. With frustumShift the frustum is skewed by the eye offset
// instead of toeing the eyes in.
func ProjectionMatrix(fov, ratio, fovRatio, eyeShift float32, frustumShift bool) mgl32.Mat4 {
	fovy := 2 * math32.Atan(math32.Tan(mgl32.DegToRad(fov)/2)/fovRatio)
	fH := math32.Tan(fovy/2) * ZNear
	fW := fH * ratio
	var shift float32
	if frustumShift {
		shift = eyeShift * ZNear / config.GetScreenDistance()
	}
	return mgl32.Frustum(-fW-shift, fW-shift, -fH, fH, ZNear, ZFar)
}

// ClampPitch converts a signed binary pitch to degrees limited to [-90, 90].
func ClampPitch(pitch fixed.Angle) float32 {
	return mgl32.Clamp(float32(float64(int32(pitch))/float64(fixed.Angle1)), -90, 90)
}

// baseRatioSizes holds the horizontal scale per widescreen mode (4:3, 16:9, 16:10, 17:10, 5:4).
var baseRatioSizes = [5]float32{48, 48 * 3 / 4, 48 * 5 / 6, 48 * 9 / 10, 48 * 15 / 16}

// FrustumAngle is the half-angle of the cone the clipper keeps open. Steep
// pitches and wide cones need the whole circle.
func FrustumAngle(pitch, fov float32, widescreen int) fixed.Angle {
	tilt := math32.Abs(pitch)
	if tilt > 46 {
		return fixed.AngleMax
	}
	deg := 2 + (45+tilt/1.9)*fov*48/baseRatioSizes[widescreenIndex(widescreen)]/90
	if deg >= 180 {
		return fixed.AngleMax
	}
	return fixed.FromDegrees(float64(deg))
}

func widescreenIndex(w int) int {
	if w < 0 || w >= len(baseRatioSizes) {
		return 0
	}
	return w
}

type yawFollow struct {
	init       bool
	prevCamera float32
	prevHead   float32
	latest     float32
}

func (y *yawFollow) next(cameraYaw, headYaw float32) float32 {
	if !y.init {
		y.prevCamera, y.prevHead, y.latest = cameraYaw, headYaw, cameraYaw
		y.init = true
	}
	var yaw float32
	if y.prevCamera != cameraYaw {
		yaw = cameraYaw
	} else {
		yaw = y.latest - (headYaw - y.prevHead)
	}
	y.latest = yaw
	y.prevCamera = cameraYaw
	y.prevHead = headYaw
	return yaw
}
