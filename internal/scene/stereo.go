package scene

import (
	"gzgl/internal/config"
	"gzgl/internal/level"
)

// StereoMode turns one viewpoint into one or more eyes. Render sets the viewport
// and projection of each eye and draws it.
type StereoMode interface {
	HasHeadTracking() bool
	HeadOrientation(r *Renderer) HeadOrientation
	Render(r *Renderer, bounds *Rect, fov, ratio, fovRatio float32, toScreen bool, sector *level.Sector, player *Player)
}

// SetStereoMode switches the eye layout from the next frame on. Nil selects MonoView.
func (r *Renderer) SetStereoMode(m StereoMode) {
	if m == nil {
		m = MonoView{}
	}
	r.deps.Stereo = m
}

// eyeHeightUnits is the player's eye height in map units; it maps meters to map units.
const eyeHeightUnits = 41

// MonoView draws a single centered eye.
type MonoView struct{}

func (MonoView) HasHeadTracking() bool                    { return false }
func (MonoView) HeadOrientation(*Renderer) HeadOrientation { return HeadOrientation{} }

func (MonoView) Render(r *Renderer, bounds *Rect, fov, ratio, fovRatio float32, toScreen bool, sector *level.Sector, player *Player) {
	r.SetViewport(bounds)
	r.SetProjection(fov, ratio, fovRatio, 0, false)
	r.RenderOneEye(r.FrustumAngle(), toScreen)
	if toScreen {
		r.EndDrawScene(sector, player)
	}
}

// renderEye draws the scene with the camera moved sideways by meters and the
// frustum skewed to match.
func (r *Renderer) renderEye(meters, fov, ratio, fovRatio float32, toScreen bool) {
	r.SetProjection(fov, ratio, fovRatio, meters, true)

	pos := r.cam.Pos
	units := meters * eyeHeightUnits / config.GetPlayerHeightMeters()
	right := [2]float32{r.cam.ViewVector.Y(), -r.cam.ViewVector.X()}
	r.cam.Pos[0] += right[0] * units
	r.cam.Pos[1] += right[1] * units
	r.SetViewMatrix(r.cam.Flags.Has(ViewMirror), r.cam.Flags.Has(ViewPlaneMirror))

	r.RenderOneEye(r.FrustumAngle(), toScreen)

	r.cam.Pos = pos
	r.SetViewMatrix(r.cam.Flags.Has(ViewMirror), r.cam.Flags.Has(ViewPlaneMirror))
}

func (r *Renderer) screenRect() Rect {
	sc := r.deps.Screen
	return Rect{X: 0, Y: (sc.TrueHeight - sc.Height) / 2, Width: sc.Width, Height: sc.Height}
}

// SideBySide draws the left eye into the left half of the view and the right
// eye into the right half.
type SideBySide struct{}

func (SideBySide) HasHeadTracking() bool                    { return false }
func (SideBySide) HeadOrientation(*Renderer) HeadOrientation { return HeadOrientation{} }

func (SideBySide) Render(r *Renderer, bounds *Rect, fov, ratio, fovRatio float32, toScreen bool, sector *level.Sector, player *Player) {
	full := r.screenRect()
	if bounds != nil {
		full = *bounds
	}
	half := full.Width / 2
	sep := config.GetEyeSeparation() / 2

	left := Rect{X: full.X, Y: full.Y, Width: half, Height: full.Height}
	r.SetViewport(&left)
	r.renderEye(-sep, fov, ratio, fovRatio, toScreen)

	right := Rect{X: full.X + half, Y: full.Y, Width: full.Width - half, Height: full.Height}
	r.SetViewport(&right)
	r.renderEye(sep, fov, ratio, fovRatio, toScreen)

	if toScreen {
		r.EndDrawScene(sector, player)
	}
}

// RedCyan draws both eyes over the whole view, the left one into the red
// channel and the right one into green and blue.
type RedCyan struct{}

func (RedCyan) HasHeadTracking() bool                    { return false }
func (RedCyan) HeadOrientation(*Renderer) HeadOrientation { return HeadOrientation{} }

func (RedCyan) Render(r *Renderer, bounds *Rect, fov, ratio, fovRatio float32, toScreen bool, sector *level.Sector, player *Player) {
	sep := config.GetEyeSeparation() / 2
	r.SetViewport(bounds)

	r.dev.ColorMask(true, false, false, true)
	r.renderEye(-sep, fov, ratio, fovRatio, toScreen)
	r.dev.ColorMask(false, true, true, true)
	r.renderEye(sep, fov, ratio, fovRatio, toScreen)
	r.dev.ColorMask(true, true, true, true)

	if toScreen {
		r.EndDrawScene(sector, player)
	}
}

var (
	_ StereoMode = MonoView{}
	_ StereoMode = SideBySide{}
	_ StereoMode = RedCyan{}
)
