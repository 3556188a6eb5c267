// Package scene turns a viewpoint and a level into the ordered device calls of
// one frame: visibility, draw lists, the multipass compositing pipeline, mirror
// recursion, stereo eyes and the 2D overlays drawn on top.
package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"gzgl/internal/config"
	"gzgl/internal/fixed"
	"gzgl/internal/graphics/device"
	"gzgl/internal/graphics/material"
	"gzgl/internal/level"
	"gzgl/internal/logging"
	"gzgl/internal/profiling"
)

// Fixed colormaps. Values from CMFirstSpecial index the special colormap table.
const (
	CMDefault      = 0
	CMFirstSpecial = 0x100
	CMLite         = 0x20000000
	CMTorch        = 0x20000010
)

const (
	InverseColormap = 0
	// weaponLight scales the player's extralight into sector light units.
	weaponLight = 8
)

// MaterialService resolves texture ids and binds camera textures as render targets.
type MaterialService interface {
	Material(id level.TextureID) (material.Material, bool)
	BindOffscreen(id level.TextureID) error
	UnbindOffscreen()
}

// VertexBuffers owns the vertex storage.
type VertexBuffers interface {
	BindVBO()
	UnmapVBO()
}

// Interpolator moves interpolated level geometry to the frame's tic fraction.
type Interpolator interface {
	Do(frac fixed.Fixed)
	Restore()
	Reset()
}

// FrameClock reports the position between tics and the time in milliseconds.
type FrameClock interface {
	TimeFrac() fixed.Fixed
	Milliseconds() uint32
}

// HUDModels draws 3D weapon models in place of weapon sprites.
type HUDModels interface {
	Available(p *Player) bool
	Draw(r *Renderer, p *Player)
}

// Screen describes the window the main view is shown in.
type Screen struct {
	Width, Height int
	// TrueHeight is the framebuffer height including letterbox bars.
	TrueHeight      int
	StatusBarHeight int
	Swap            func()
}

// Rect is a viewport in window pixels, origin bottom left.
type Rect struct {
	X, Y, Width, Height int
}

// Deps are the services a Renderer draws with. Only Device and Level are required.
type Deps struct {
	Device    device.Device
	Level     *level.Level
	Screen    Screen
	Materials MaterialService
	VBO       VertexBuffers
	Portals   PortalController
	Stereo    StereoMode
	Lights    LightSource
	Interp    Interpolator
	Clock     FrameClock
	HUDModels HUDModels
	Logger    logging.Logger

	FieldOfView float32
	// DynLightShader reports a single-pass dynamic light path.
	DynLightShader bool
	// FakeColormaps holds the blend of each sector colormap index; entry 0 is none.
	FakeColormaps     []level.PalEntry
	PaletteBrightness int
	// PickupColor tints the screen while the bonus counter runs.
	PickupColor level.PalEntry
}

var (
	ErrNoDevice = errors.New("scene: no device")
	ErrNoLevel  = errors.New("scene: no level")
)

// Renderer holds the state of one render context. Every field below deps is
// per-frame context that would otherwise be process globals.
type Renderer struct {
	deps  Deps
	dev   device.Device
	lvl   *level.Level
	log   logging.Logger
	state *RenderState

	cam     Camera
	vp      Viewpoint
	clipper Clipper
	frustum Frustum

	infos    drawInfoStack
	last     *DrawInfo
	bspStack []bspEntry
	sections []bool

	validCount    int
	fixedColormap int
	extraLight    int
	lightCount    int
	frameLights   []*Light
	lightScratch  []device.Vertex
	lightTex      lightTexture
	frameCount    int
	frameMS       uint32
	ticFrac       fixed.Fixed
	recursion     int
	mainView      bool
	widescreen    int
	lastCamera    *Actor
	// swapped is set once the early buffer swap of this frame has happened.
	swapped       bool
	player        *Player
	skyPos        [2]float32
	overlays      []Overlay
	cameraTexture *CameraTextures
}

// NewRenderer validates the level and fills in default services.
func NewRenderer(deps Deps) (*Renderer, error) {
	if deps.Device == nil {
		return nil, ErrNoDevice
	}
	if deps.Level == nil {
		return nil, ErrNoLevel
	}
	if err := deps.Level.Validate(); err != nil {
		return nil, fmt.Errorf("new renderer: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	if deps.VBO == nil {
		deps.VBO = nopVBO{}
	}
	if deps.Interp == nil {
		deps.Interp = nopInterp{}
	}
	if deps.Stereo == nil {
		deps.Stereo = MonoView{}
	}
	if deps.Lights == nil {
		deps.Lights = StaticLights(nil)
	}
	if deps.FieldOfView == 0 {
		deps.FieldOfView = 90
	}
	if deps.PickupColor == 0 {
		deps.PickupColor = level.NewPalEntry(255, 0xd6, 0xba, 0x45)
	}
	if deps.Screen.TrueHeight == 0 {
		deps.Screen.TrueHeight = deps.Screen.Height
	}

	r := &Renderer{
		deps:     deps,
		dev:      deps.Device,
		lvl:      deps.Level,
		log:      deps.Logger,
		state:    newRenderState(),
		sections: make([]bool, max(deps.Level.NumMapSections, 1)),
		ticFrac:  fixed.FracUnit,
	}
	if r.deps.Portals == nil {
		r.deps.Portals = NewPortalManager(r)
	}
	r.cameraTexture = NewCameraTextures()
	r.widescreen = CheckRatio(deps.Screen.Width, deps.Screen.Height)
	return r, nil
}

type nopVBO struct{}

func (nopVBO) BindVBO()  {}
func (nopVBO) UnmapVBO() {}

type nopInterp struct{}

func (nopInterp) Do(fixed.Fixed) {}
func (nopInterp) Restore()       {}
func (nopInterp) Reset()         {}

func (r *Renderer) Device() device.Device     { return r.dev }
func (r *Renderer) Camera() *Camera           { return &r.cam }
func (r *Renderer) Viewpoint() *Viewpoint     { return &r.vp }
func (r *Renderer) State() *RenderState       { return r.state }
func (r *Renderer) FixedColormap() int        { return r.fixedColormap }
func (r *Renderer) FrameCount() int           { return r.frameCount }
func (r *Renderer) LightCount() int           { return r.lightCount }
func (r *Renderer) Recursion() int            { return r.recursion }
func (r *Renderer) Portals() PortalController { return r.deps.Portals }

func (r *Renderer) CameraTextures() *CameraTextures { return r.cameraTexture }

// SkyPositions returns the scroll offsets of the two sky layers.
func (r *Renderer) SkyPositions() [2]float32 { return r.skyPos }

// LastScene returns the draw info of the most recent top-level scene. It stays
// valid until the next scene is processed.
func (r *Renderer) LastScene() *DrawInfo { return r.last }

// SetCameraPos places the camera at a fixed-point viewpoint.
func (r *Renderer) SetCameraPos(x, y, z fixed.Fixed, angle fixed.Angle) {
	r.cam.SetCameraPos(x, y, z, angle)
}

// SetViewMatrix loads the modelview for the current camera. Head tracking only
// steers the main view.
func (r *Renderer) SetViewMatrix(mirror, planeMirror bool) {
	var head *HeadOrientation
	if r.mainView && r.deps.Stereo.HasHeadTracking() {
		h := r.deps.Stereo.HeadOrientation(r)
		head = &h
	}
	flags := ViewFlags(0).With(ViewMirror, mirror).With(ViewPlaneMirror, planeMirror)
	r.dev.LoadModelview(r.cam.ComputeViewMatrix(flags, head))
	r.dev.ResetTextureMatrices()
}

// SetupView positions the camera and loads its view matrix.
func (r *Renderer) SetupView(x, y, z fixed.Fixed, angle fixed.Angle, mirror, planeMirror bool) {
	r.SetCameraPos(x, y, z, angle)
	r.SetViewMatrix(mirror, planeMirror)
}

// SetProjection loads a perspective frustum; see ProjectionMatrix.
func (r *Renderer) SetProjection(fov, ratio, fovRatio, eyeShift float32, frustumShift bool) {
	r.SetProjectionMatrix(ProjectionMatrix(fov, ratio, fovRatio, eyeShift, frustumShift))
}

func (r *Renderer) SetProjectionMatrix(m mgl32.Mat4) {
	r.cam.Projection = m
	r.dev.LoadProjection(m)
}

// FrustumAngle is the clipper cone for the current camera.
func (r *Renderer) FrustumAngle() fixed.Angle {
	return FrustumAngle(r.cam.Angles.Pitch, r.cam.FoV, r.widescreen)
}

// SetViewport sets viewport and scissor to bounds, or to the status-bar aware
// view window when bounds is nil, and enables the 3D pipeline.
func (r *Renderer) SetViewport(bounds *Rect) {
	dev := r.dev
	if bounds == nil {
		x, y, w, h := r.viewWindow()
		sc := r.deps.Screen
		blocks := config.GetScreenBlocks()
		height := sc.Height
		if blocks < 10 {
			height = (blocks * sc.Height / 10) &^ 7
		}
		bars := (sc.TrueHeight - sc.Height) / 2
		dev.Viewport(x, sc.TrueHeight-bars-(height+y-(height-h)/2), w, height)
		dev.Scissor(x, sc.TrueHeight-bars-(h+y), w, h)
	} else {
		dev.Viewport(bounds.X, bounds.Y, bounds.Width, bounds.Height)
		dev.Scissor(bounds.X, bounds.Y, bounds.Width, bounds.Height)
	}
	dev.Enable(device.ScissorTest)
	dev.Enable(device.Multisample)
	dev.Enable(device.DepthTest)
	dev.Enable(device.StencilTest)
	dev.Enable(device.Blend)
	dev.StencilFunc(device.Always, 0, ^uint32(0))
	dev.StencilOp(device.Keep, device.Keep, device.Replace)
	r.state.Set2DMode(false)
}

// viewWindow returns the 3D view inside the screen in top-left window coordinates.
func (r *Renderer) viewWindow() (x, y, w, h int) {
	sc := r.deps.Screen
	blocks := config.GetScreenBlocks()
	switch {
	case blocks >= 11:
		return 0, 0, sc.Width, sc.Height
	case blocks == 10:
		return 0, 0, sc.Width, sc.Height - sc.StatusBarHeight
	}
	w = blocks * sc.Width / 10
	h = (blocks * (sc.Height - sc.StatusBarHeight) / 10) &^ 7
	return (sc.Width - w) / 2, (sc.Height - sc.StatusBarHeight - h) / 2, w, h
}

// ResetViewport covers the whole screen, centered between the letterbox bars.
func (r *Renderer) ResetViewport() {
	sc := r.deps.Screen
	r.dev.Viewport(0, (sc.TrueHeight-sc.Height)/2, sc.Width, sc.Height)
}

// Begin2D switches to screen-space drawing in 320x200-independent pixels.
func (r *Renderer) Begin2D() {
	sc := r.deps.Screen
	r.ResetViewport()
	r.dev.LoadProjection(mgl32.Ortho(0, float32(sc.Width), float32(sc.Height), 0, -1, 1))
	r.dev.LoadModelview(mgl32.Ident4())
	r.dev.Disable(device.DepthTest)
	r.dev.Disable(device.Multisample)
	r.state.Set2DMode(true)
}

// ClearBuffer fills the color buffer.
func (r *Renderer) ClearBuffer(c level.PalEntry) {
	r.dev.ClearColor(float32(c.R())/255, float32(c.G())/255, float32(c.B())/255, 1)
	r.dev.Clear(device.ColorBuffer)
}

// CreateScene builds the draw lists of the current draw info.
func (r *Renderer) CreateScene() {
	r.validCount++
	r.deps.Portals.StartFrame()

	profiling.ProcessAll.Clock()
	di := r.infos.current()
	r.gatherLights()
	r.renderBSP(di)
	r.HandleMissingTextures(di)
	r.HandleHackedSubsectors(di)
	r.ProcessSectorStacks(di)
	r.deps.VBO.UnmapVBO()
	profiling.ProcessAll.Unclock()
}

func (r *Renderer) gatherLights() {
	r.frameLights = r.frameLights[:0]
	if r.lightCount == 0 || !config.GetLights() || r.fixedColormap != CMDefault {
		return
	}
	for _, l := range r.deps.Lights.Lights() {
		if r.frustum.Sphere(l.glPos(), l.Radius) {
			r.frameLights = append(r.frameLights, l)
		}
	}
}

// DrawScene builds and draws one scene, resolves its portals and draws the
// translucent parts last.
func (r *Renderer) DrawScene(toScreen bool) {
	r.CreateScene()

	if !config.GetDrawSync() && toScreen && !r.swapped && r.deps.Screen.Swap != nil {
		r.swapped = true
		profiling.All.Unclock()
		r.deps.Screen.Swap()
		profiling.All.Clock()
	}
	r.RenderScene(r.recursion)
	r.endPortals()
	r.RenderTranslucent()
}

func (r *Renderer) endPortals() {
	r.recursion++
	defer func() { r.recursion-- }()
	r.deps.Portals.EndFrame()
}

// ProcessScene draws the scene from the current camera into a fresh draw info.
func (r *Renderer) ProcessScene(toScreen bool) {
	r.infos.push()
	r.lightScratch = r.lightScratch[:0]
	r.deps.Portals.BeginScene()

	for i := range r.sections {
		r.sections[i] = false
	}
	sub := r.lvl.PointInSubsector(r.vp.X, r.vp.Y)
	if sub.MapSection >= 0 && sub.MapSection < len(r.sections) {
		r.sections[sub.MapSection] = true
	}

	r.DrawScene(toScreen)
	if len(r.infos.stack) == 1 {
		r.last = r.infos.current()
	}
	r.infos.pop()
}

// SetFixedColormap picks the colormap that overrides sector light. The player
// whose eyes the camera is decides.
func (r *Renderer) SetFixedColormap(p *Player) {
	r.fixedColormap = CMDefault
	r.extraLight = 0
	if p == nil || p.Camera == nil || p.Camera.Player == nil {
		return
	}
	p = p.Camera.Player
	r.extraLight = p.ExtraLight * weaponLight
	switch {
	case p.ExtraLight == ExtraLightInvulnerable:
		r.fixedColormap = CMFirstSpecial + InverseColormap
		r.extraLight = 0
	case p.FixedColormap != -1:
		r.fixedColormap = CMFirstSpecial + p.FixedColormap
	case p.FixedLightLevel != -1:
		for _, pw := range p.Powers {
			if pw.TicsLeft <= 0 {
				continue
			}
			switch pw.Kind {
			case PowerTorch:
				r.fixedColormap = CMTorch + p.FixedLightLevel
			case PowerLightAmp:
				r.fixedColormap = CMLite
			}
		}
	}
}

// RenderOneEye draws the scene for one eye with the clipper limited to the view cone.
func (r *Renderer) RenderOneEye(frustumAngle fixed.Angle, toScreen bool) {
	r.dev.Clear(device.DepthBuffer | device.StencilBuffer)
	r.clipper.Clear()
	if frustumAngle != fixed.AngleMax {
		r.clipper.SafeAddClipRange(r.vp.Angle+frustumAngle, r.vp.Angle-frustumAngle)
	}
	r.frustum = NewFrustum(r.cam.Projection.Mul4(r.cam.View))
	r.frustum.open = frustumAngle == fixed.AngleMax
	r.ProcessScene(toScreen)
}

func (r *Renderer) setupFrame(camera *Actor) {
	r.deps.Interp.Do(r.ticFrac)
	x, y, z, angle, pitch := camera.Interpolated(r.ticFrac)
	r.vp.X, r.vp.Y, r.vp.Z = x, y, z
	r.vp.Angle, r.vp.Pitch, r.vp.Roll = angle, pitch, camera.Roll
}

// RenderViewpoint renders the view of camera and returns the render sector
// the eye ended up in.
func (r *Renderer) RenderViewpoint(camera *Actor, bounds *Rect, fov, ratio, fovRatio float32, mainView, toScreen bool) *level.Sector {
	r.setupFrame(camera)
	SetViewArea(r.lvl, &r.vp)

	r.cam.Angles.Pitch = ClampPitch(r.vp.Pitch)
	r.cam.Angles.Roll = float32(r.vp.Roll.SignedDegrees())

	ms := float64(r.frameMS)
	r.skyPos[0] = float32(math.Mod(ms*float64(r.lvl.SkySpeed1), 1024) * 90 / 256)
	r.skyPos[1] = float32(math.Mod(ms*float64(r.lvl.SkySpeed2), 1024) * 90 / 256)

	r.vp.Actor = camera
	if p := camera.Player; p != nil && p.Console && camera == p.Mo &&
		(p.ChaseCam || (config.GetDeathCamera() && camera.Health <= 0)) {
		r.vp.Actor = nil
	}

	r.mainView = mainView
	r.SetCameraPos(r.vp.X, r.vp.Y, r.vp.Z, r.vp.Angle)
	r.SetViewMatrix(false, false)
	r.cam.FoV = fov
	r.player = camera.Player

	r.deps.Stereo.Render(r, bounds, fov, ratio, fovRatio, toScreen, r.vp.Sector, camera.Player)

	r.frameCount++
	r.deps.Interp.Restore()
	return r.vp.Sector
}

var ratios = func() [5]float32 {
	const rmul = 1.6 / 1.333333
	return [5]float32{1.333333 * rmul, 1.777777 * rmul, 1.6 * rmul, 1.7 * rmul, 1.25 * rmul}
}()

// CheckRatio classifies a screen size: 0 4:3, 1 16:9, 2 16:10, 3 17:10, 4 5:4.
func CheckRatio(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	switch {
	case width*9 == height*16 || (width*27/height >= 46):
		return 1
	case width*10 == height*16:
		return 2
	case width*10 == height*17:
		return 3
	case width*4 == height*5:
		return 4
	}
	return 0
}

// RenderView renders the player's camera to the screen.
func (r *Renderer) RenderView(p *Player) {
	defer profiling.All.Track()()

	camera := p.Camera
	if camera == nil {
		camera = p.Mo
	}
	if camera != r.lastCamera {
		r.deps.Interp.Reset()
		r.lastCamera = camera
	}
	r.deps.VBO.BindVBO()

	if config.GetCapFPS() || config.GetNoInterpolate() || r.deps.Clock == nil {
		r.ticFrac = fixed.FracUnit
	} else {
		r.ticFrac = r.deps.Clock.TimeFrac()
	}
	if r.deps.Clock != nil {
		r.frameMS = r.deps.Clock.Milliseconds()
	}

	r.cameraTexture.UpdateAll(r)

	ratio := ratios[r.widescreen]
	fovRatio := float32(1.6)
	if r.widescreen&4 != 0 {
		fovRatio = ratio
	}

	r.SetFixedColormap(p)
	r.lightCount = len(r.deps.Lights.Lights())
	r.swapped = false
	r.RenderViewpoint(camera, nil, r.deps.FieldOfView, ratio, fovRatio, true, true)
}

// AddOverlay registers an overlay drawn after the player sprites.
func (r *Renderer) AddOverlay(o Overlay) error {
	if err := o.Init(r); err != nil {
		return fmt.Errorf("add overlay: %w", err)
	}
	r.overlays = append(r.overlays, o)
	return nil
}

// Dispose releases the overlays.
func (r *Renderer) Dispose() {
	for _, o := range r.overlays {
		o.Dispose()
	}
	r.overlays = nil
}
