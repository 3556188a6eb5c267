package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"gzgl/internal/graphics/device"
)

// Light is a dynamic point light in map units.
type Light struct {
	X, Y, Z float32
	Radius  float32
	Color   mgl32.Vec3
	// Additive lights are drawn in the second additive pass.
	Additive bool
}

// LightSource supplies the frame's dynamic lights.
type LightSource interface {
	Lights() []*Light
}

// StaticLights is a fixed set of lights.
type StaticLights []*Light

func (s StaticLights) Lights() []*Light { return s }

// glPos returns the light center in GL space (x, height, y).
func (l *Light) glPos() mgl32.Vec3 { return mgl32.Vec3{l.X, l.Z, l.Y} }

// reaches reports whether the light sphere touches the polygon's bounds.
func (l *Light) reaches(verts []device.Vertex) bool {
	if len(verts) == 0 {
		return false
	}
	min, max := bounds(verts)
	c := l.glPos()
	var d2 float32
	for i := 0; i < 3; i++ {
		switch {
		case c[i] < min[i]:
			d2 += (min[i] - c[i]) * (min[i] - c[i])
		case c[i] > max[i]:
			d2 += (c[i] - max[i]) * (c[i] - max[i])
		}
	}
	return d2 < l.Radius*l.Radius
}

func bounds(verts []device.Vertex) (min, max mgl32.Vec3) {
	min = mgl32.Vec3{verts[0].X, verts[0].Y, verts[0].Z}
	max = min
	for _, v := range verts[1:] {
		p := mgl32.Vec3{v.X, v.Y, v.Z}
		for i := 0; i < 3; i++ {
			min[i] = math32.Min(min[i], p[i])
			max[i] = math32.Max(max[i], p[i])
		}
	}
	return min, max
}

// polyNormal returns the unit normal of a planar polygon.
func polyNormal(verts []device.Vertex) mgl32.Vec3 {
	var n mgl32.Vec3
	for i := range verts {
		a, b := verts[i], verts[(i+1)%len(verts)]
		n[0] += (a.Y - b.Y) * (a.Z + b.Z)
		n[1] += (a.Z - b.Z) * (a.X + b.X)
		n[2] += (a.X - b.X) * (a.Y + b.Y)
	}
	if n.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return n.Normalize()
}

// lightVerts projects the light onto the polygon's plane and maps the falloff
// texture over the disc it lights. It returns the intensity at the plane and
// false when the plane is out of reach.
func (l *Light) lightVerts(verts []device.Vertex, out []device.Vertex) ([]device.Vertex, float32, bool) {
	n := polyNormal(verts)
	c := l.glPos()
	p0 := mgl32.Vec3{verts[0].X, verts[0].Y, verts[0].Z}
	dist := c.Sub(p0).Dot(n)
	if math32.Abs(dist) >= l.Radius {
		return out, 0, false
	}
	r := math32.Sqrt(l.Radius*l.Radius - dist*dist)
	center := c.Sub(n.Mul(dist))

	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(n.Y()) > 0.9 {
		up = mgl32.Vec3{0, 0, 1}
	}
	t := up.Cross(n).Normalize()
	b := n.Cross(t)

	out = out[:0]
	for _, v := range verts {
		d := mgl32.Vec3{v.X, v.Y, v.Z}.Sub(center)
		out = append(out, device.Vertex{
			X: v.X, Y: v.Y, Z: v.Z,
			U: d.Dot(t)/(2*r) + 0.5,
			V: d.Dot(b)/(2*r) + 0.5,
		})
	}
	return out, 1 - math32.Abs(dist)/l.Radius, true
}

const lightTextureSize = 64

// lightTexture builds the radial falloff texture used by the multipass lights.
type lightTexture struct {
	handle uint32
	failed bool
}

func (lt *lightTexture) setup(dev device.Device) error {
	if lt.handle != 0 {
		dev.BindTexture(lt.handle)
		return nil
	}
	if lt.failed {
		return fmt.Errorf("light texture unavailable")
	}
	rgba := make([]byte, lightTextureSize*lightTextureSize*4)
	half := float32(lightTextureSize) / 2
	for y := 0; y < lightTextureSize; y++ {
		for x := 0; x < lightTextureSize; x++ {
			dx := (float32(x) + 0.5 - half) / half
			dy := (float32(y) + 0.5 - half) / half
			v := mgl32.Clamp(1-math32.Sqrt(dx*dx+dy*dy), 0, 1)
			o := (y*lightTextureSize + x) * 4
			c := byte(v * 255)
			rgba[o], rgba[o+1], rgba[o+2], rgba[o+3] = c, c, c, 255
		}
	}
	h, err := dev.CreateTexture(lightTextureSize, lightTextureSize, rgba)
	if err != nil {
		lt.failed = true
		return fmt.Errorf("create light texture: %w", err)
	}
	lt.handle = h
	dev.BindTexture(h)
	return nil
}
