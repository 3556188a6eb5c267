package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"gzgl/internal/graphics/device"
	"gzgl/internal/level"
)

// OverlayContext is passed to overlays drawn over the finished 3D view.
type OverlayContext struct {
	Renderer *Renderer
	Device   device.Device
	Player   *Player
	Sector   *level.Sector
	Width    int
	Height   int
}

// Overlay is a 2D layer drawn after the weapon and targeter sprites.
type Overlay interface {
	Init(r *Renderer) error
	Render(ctx OverlayContext)
	Dispose()
	SetViewport(width, height int)
}

// SetViewportSize tells the renderer and its overlays about a new window size.
func (r *Renderer) SetViewportSize(width, height, trueHeight int) {
	r.deps.Screen.Width, r.deps.Screen.Height = width, height
	r.deps.Screen.TrueHeight = max(trueHeight, height)
	r.widescreen = CheckRatio(width, height)
	for _, o := range r.overlays {
		o.SetViewport(width, height)
	}
}

// EndDrawScene draws the weapon sprites, overlays and the screen blend.
func (r *Renderer) EndDrawScene(sector *level.Sector, p *Player) {
	r.EndDrawSceneSprites(sector, p)
	r.EndDrawSceneBlend(sector, p)
}

// EndDrawSceneSprites draws the HUD model or the weapon sprites, then the
// targeters and the registered overlays.
func (r *Renderer) EndDrawSceneSprites(sector *level.Sector, p *Player) {
	dev, rs := r.dev, r.state
	rs.EnableFog(false)

	if p != nil && r.deps.HUDModels != nil && r.deps.HUDModels.Available(p) {
		dev.Clear(device.DepthBuffer)
		r.deps.HUDModels.Draw(r, p)
		dev.Disable(device.StencilTest)
		r.Begin2D()
	} else {
		dev.Disable(device.StencilTest)
		r.Begin2D()
		if p != nil {
			r.drawPSprites(sector, p.PSprites)
		}
	}
	if p != nil {
		r.drawPSprites(sector, p.Targeters)
	}

	ctx := OverlayContext{Renderer: r, Device: dev, Player: p, Sector: sector,
		Width: r.deps.Screen.Width, Height: r.deps.Screen.Height}
	for _, o := range r.overlays {
		o.Render(ctx)
	}
	r.restore2D()
}

// EndDrawSceneBlend tints the whole view with the accumulated blend.
func (r *Renderer) EndDrawSceneBlend(sector *level.Sector, p *Player) {
	r.state.EnableFog(false)
	r.dev.Disable(device.StencilTest)
	r.Begin2D()
	r.DrawBlend(sector, p)
	r.restore2D()
}

func (r *Renderer) restore2D() {
	rs := r.state
	rs.BlendFunc(device.SrcAlpha, device.OneMinusSrcAlpha)
	r.dev.Color4(1, 1, 1, 1)
	rs.EnableTexture(true)
	rs.EnableAlphaTest(true)
	rs.Apply(r.dev, false)
	r.dev.Disable(device.ScissorTest)
}

// psprite coordinates are in a 320x200 grid.
const (
	psWidth  = 320
	psHeight = 200
)

func (r *Renderer) drawPSprites(sector *level.Sector, sprites []PSprite) {
	if len(sprites) == 0 {
		return
	}
	dev, rs := r.dev, r.state
	sx := float32(r.deps.Screen.Width) / psWidth
	sy := float32(r.deps.Screen.Height) / psHeight

	light := float32(1)
	if sector != nil && r.fixedColormap == CMDefault {
		light = mgl32.Clamp(float32(sector.LightLevel+r.extraLight)/255, 0, 1)
	}
	rs.EnableTexture(true)
	rs.EnableAlphaTest(true)
	rs.BlendFunc(device.SrcAlpha, device.OneMinusSrcAlpha)
	rs.Apply(dev, false)
	for _, ps := range sprites {
		mat, ok := r.material(ps.Texture)
		if !ok {
			continue
		}
		alpha := ps.Alpha
		if alpha == 0 {
			alpha = 1
		}
		x0, y0 := ps.X*sx, ps.Y*sy
		x1, y1 := x0+float32(mat.Width)*sx, y0+float32(mat.Height)*sy
		dev.Color4(light, light, light, alpha)
		dev.BindTexture(mat.Handle)
		dev.DrawPolygon(screenQuad(x0, y0, x1, y1))
	}
}

// screenQuad is a textured rectangle in 2D screen space.
func screenQuad(x0, y0, x1, y1 float32) []device.Vertex {
	return []device.Vertex{
		{X: x0, Y: y0, U: 0, V: 0},
		{X: x1, Y: y0, U: 1, V: 0},
		{X: x1, Y: y1, U: 1, V: 1},
		{X: x0, Y: y1, U: 0, V: 1},
	}
}

// Crosshair draws a small cross at the center of the view.
type Crosshair struct {
	Color mgl32.Vec4
	// Size is the half-length of each arm relative to the view height.
	Size   float32
	width  int
	height int
}

func NewCrosshair() *Crosshair {
	return &Crosshair{Color: mgl32.Vec4{1, 1, 1, 0.8}, Size: 0.02}
}

func (c *Crosshair) Init(r *Renderer) error {
	c.width, c.height = r.deps.Screen.Width, r.deps.Screen.Height
	return nil
}

func (c *Crosshair) Render(ctx OverlayContext) {
	rs := ctx.Renderer.state
	rs.EnableTexture(false)
	rs.EnableAlphaTest(false)
	rs.BlendFunc(device.SrcAlpha, device.OneMinusSrcAlpha)
	rs.Apply(ctx.Device, false)

	cx, cy := float32(c.width)/2, float32(c.height)/2
	arm := c.Size * float32(c.height)
	const thick = 1
	ctx.Device.Color4(c.Color.X(), c.Color.Y(), c.Color.Z(), c.Color.W())
	ctx.Device.DrawPolygon(screenQuad(cx-arm, cy-thick, cx+arm, cy+thick))
	ctx.Device.DrawPolygon(screenQuad(cx-thick, cy-arm, cx+thick, cy+arm))
	rs.EnableTexture(true)
}

func (c *Crosshair) Dispose() {}

func (c *Crosshair) SetViewport(width, height int) {
	c.width, c.height = width, height
}
