package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// frustumMargin inflates boxes before testing, in map units.
var frustumMargin float32 = 8

type plane struct {
	a, b, c, d float32
}

// Frustum holds the six clip planes of projection*view, in GL space.
type Frustum struct {
	planes [6]plane
	// open disables culling, used when the clipper cone covers the whole circle.
	open bool
}

// NewFrustum extracts the planes in order: left, right, bottom, top, near, far.
func NewFrustum(clip mgl32.Mat4) Frustum {
	// mgl32 is column-major
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	var f Frustum
	f.planes[0] = normalizePlane(plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03})
	f.planes[1] = normalizePlane(plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03})
	f.planes[2] = normalizePlane(plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13})
	f.planes[3] = normalizePlane(plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13})
	f.planes[4] = normalizePlane(plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23})
	f.planes[5] = normalizePlane(plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23})
	return f
}

func normalizePlane(p plane) plane {
	l := math32.Sqrt(p.a*p.a + p.b*p.b + p.c*p.c)
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// Box reports whether the GL-space box [min, max] may be visible.
func (f *Frustum) Box(min, max mgl32.Vec3) bool {
	if f.open {
		return true
	}
	min = min.Sub(mgl32.Vec3{frustumMargin, frustumMargin, frustumMargin})
	max = max.Add(mgl32.Vec3{frustumMargin, frustumMargin, frustumMargin})
	for _, p := range f.planes {
		// positive vertex for this plane normal
		px := max.X()
		if p.a < 0 {
			px = min.X()
		}
		py := max.Y()
		if p.b < 0 {
			py = min.Y()
		}
		pz := max.Z()
		if p.c < 0 {
			pz = min.Z()
		}
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}

// Sphere reports whether a sphere around center may be visible.
func (f *Frustum) Sphere(center mgl32.Vec3, radius float32) bool {
	if f.open {
		return true
	}
	for _, p := range f.planes {
		if p.a*center.X()+p.b*center.Y()+p.c*center.Z()+p.d < -radius-frustumMargin {
			return false
		}
	}
	return true
}
