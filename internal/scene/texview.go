package scene

import (
	"sync"

	"gzgl/internal/config"
	"gzgl/internal/level"
)

type cameraView struct {
	tex       level.TextureID
	viewpoint *Actor
	fov       float32
	used      bool
}

// CameraTextures tracks the canvas textures that show a live camera view. A
// texture is redrawn at the start of a frame when it was drawn in the last one.
type CameraTextures struct {
	mu    sync.Mutex
	views []*cameraView
}

func NewCameraTextures() *CameraTextures {
	return &CameraTextures{}
}

// Register points tex at viewpoint. Registering a texture again replaces its camera.
func (c *CameraTextures) Register(tex level.TextureID, viewpoint *Actor, fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.views {
		if v.tex == tex {
			v.viewpoint, v.fov = viewpoint, fov
			return
		}
	}
	c.views = append(c.views, &cameraView{tex: tex, viewpoint: viewpoint, fov: fov, used: true})
}

// Unregister stops updating tex.
func (c *CameraTextures) Unregister(tex level.TextureID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, v := range c.views {
		if v.tex == tex {
			c.views = append(c.views[:i], c.views[i+1:]...)
			return
		}
	}
}

// MarkUsed schedules tex for an update in the next frame.
func (c *CameraTextures) MarkUsed(tex level.TextureID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.views {
		if v.tex == tex {
			v.used = true
			return
		}
	}
}

func (c *CameraTextures) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.views)
}

// UpdateAll renders every used camera texture once. The used mark is cleared
// after the render, so a camera that sees its own canvas does not schedule it again.
func (c *CameraTextures) UpdateAll(r *Renderer) int {
	c.mu.Lock()
	var pending []*cameraView
	for _, v := range c.views {
		if v.used && v.viewpoint != nil {
			pending = append(pending, v)
		}
	}
	c.mu.Unlock()

	for _, v := range pending {
		c.mu.Lock()
		tex, viewpoint, fov := v.tex, v.viewpoint, v.fov
		c.mu.Unlock()

		r.RenderTextureView(tex, viewpoint, fov)

		c.mu.Lock()
		v.used = false
		c.mu.Unlock()
	}
	return len(pending)
}

// RenderTextureView draws the view of viewpoint into the canvas texture tex,
// through an offscreen target when one is available and wanted, otherwise by
// copying the back buffer.
func (r *Renderer) RenderTextureView(tex level.TextureID, viewpoint *Actor, fov float32) bool {
	mat, ok := r.material(tex)
	if !ok || viewpoint == nil {
		return false
	}
	w, h := mat.Width, mat.Height
	sc := r.deps.Screen

	savedColormap := r.fixedColormap
	r.fixedColormap = CMDefault
	defer func() { r.fixedColormap = savedColormap }()

	usefb := r.dev.Capabilities().Framebuffers &&
		(config.GetUseFramebuffer() || w > sc.Width || h > sc.Height)
	if usefb {
		if err := r.deps.Materials.BindOffscreen(tex); err != nil {
			r.log.Warnf("offscreen camera textures disabled: %v", err)
			config.SetUseFramebuffer(false)
			r.deps.Materials.UnbindOffscreen()
			usefb = false
		}
	}
	if !usefb {
		r.dev.Flush()
	}

	bounds := Rect{Width: w, Height: h}
	ratio := float32(w) / float32(h)
	r.RenderViewpoint(viewpoint, &bounds, fov, ratio, ratio, false, false)

	if usefb {
		r.deps.Materials.UnbindOffscreen()
	} else {
		r.dev.Flush()
		r.dev.CopyTexSubImage2D(mat.Handle, 0, 0, w, h)
	}
	return true
}
