// Package gldevice implements device.Device on an OpenGL 2.1 compatibility context.
package gldevice

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"

	"gzgl/internal/graphics/device"
)

// GL21 drives the context current on the calling thread.
type GL21 struct {
	caps    device.Capabilities
	targets map[uint32]*target
}

// New loads the GL entry points and probes the context capabilities.
func New() (*GL21, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init gl: %w", err)
	}
	d := &GL21{targets: make(map[uint32]*target)}
	d.caps.Version = gl.GoStr(gl.GetString(gl.VERSION))
	ext := gl.GoStr(gl.GetString(gl.EXTENSIONS))
	d.caps.Framebuffers = strings.Contains(ext, "GL_EXT_framebuffer_object")
	var maxTex int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxTex)
	d.caps.MaxTextureSize = int(maxTex)

	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.Hint(gl.FOG_HINT, gl.NICEST)
	gl.Fogi(gl.FOG_MODE, gl.EXP)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ZERO)
	return d, nil
}

func (d *GL21) Capabilities() device.Capabilities { return d.caps }

var glCaps = map[device.Cap]uint32{
	device.DepthTest:         gl.DEPTH_TEST,
	device.StencilTest:       gl.STENCIL_TEST,
	device.Blend:             gl.BLEND,
	device.AlphaTest:         gl.ALPHA_TEST,
	device.Texture2D:         gl.TEXTURE_2D,
	device.Fog:               gl.FOG,
	device.PolygonOffsetFill: gl.POLYGON_OFFSET_FILL,
	device.ScissorTest:       gl.SCISSOR_TEST,
	device.Multisample:       gl.MULTISAMPLE,
}

var glFuncs = map[device.CompareFunc]uint32{
	device.Never:    gl.NEVER,
	device.Less:     gl.LESS,
	device.Equal:    gl.EQUAL,
	device.LEqual:   gl.LEQUAL,
	device.Greater:  gl.GREATER,
	device.NotEqual: gl.NOTEQUAL,
	device.GEqual:   gl.GEQUAL,
	device.Always:   gl.ALWAYS,
}

var glFactors = map[device.BlendFactor]uint32{
	device.Zero:             gl.ZERO,
	device.One:              gl.ONE,
	device.SrcAlpha:         gl.SRC_ALPHA,
	device.OneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
	device.SrcColor:         gl.SRC_COLOR,
	device.OneMinusSrcColor: gl.ONE_MINUS_SRC_COLOR,
	device.DstColor:         gl.DST_COLOR,
}

var glStencilOps = map[device.StencilOp]uint32{
	device.Keep:    gl.KEEP,
	device.Replace: gl.REPLACE,
	device.Incr:    gl.INCR,
	device.Decr:    gl.DECR,
	device.ZeroOp:  gl.ZERO,
}

func (d *GL21) Enable(c device.Cap)  { gl.Enable(glCaps[c]) }
func (d *GL21) Disable(c device.Cap) { gl.Disable(glCaps[c]) }

func (d *GL21) DepthFunc(fn device.CompareFunc) { gl.DepthFunc(glFuncs[fn]) }
func (d *GL21) DepthMask(write bool)            { gl.DepthMask(write) }

func (d *GL21) DepthRange(near, far float32) { gl.DepthRange(float64(near), float64(far)) }

func (d *GL21) StencilFunc(fn device.CompareFunc, ref int, mask uint32) {
	gl.StencilFunc(glFuncs[fn], int32(ref), mask)
}

func (d *GL21) StencilOp(fail, zfail, zpass device.StencilOp) {
	gl.StencilOp(glStencilOps[fail], glStencilOps[zfail], glStencilOps[zpass])
}

func (d *GL21) ColorMask(r, g, b, a bool) { gl.ColorMask(r, g, b, a) }

func (d *GL21) BlendFunc(src, dst device.BlendFactor) { gl.BlendFunc(glFactors[src], glFactors[dst]) }

func (d *GL21) BlendEquation(eq device.BlendEquation) {
	if eq == device.FuncReverseSubtract {
		gl.BlendEquation(gl.FUNC_REVERSE_SUBTRACT)
		return
	}
	gl.BlendEquation(gl.FUNC_ADD)
}

func (d *GL21) AlphaFunc(fn device.CompareFunc, ref float32) { gl.AlphaFunc(glFuncs[fn], ref) }

func (d *GL21) PolygonOffset(factor, units float32) { gl.PolygonOffset(factor, units) }

func (d *GL21) Viewport(x, y, w, h int) { gl.Viewport(int32(x), int32(y), int32(w), int32(h)) }
func (d *GL21) Scissor(x, y, w, h int)  { gl.Scissor(int32(x), int32(y), int32(w), int32(h)) }

func (d *GL21) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (d *GL21) Clear(mask device.ClearMask) {
	var bits uint32
	if mask&device.ColorBuffer != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&device.DepthBuffer != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if mask&device.StencilBuffer != 0 {
		bits |= gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (d *GL21) LoadProjection(m mgl32.Mat4) {
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(&m[0])
	gl.MatrixMode(gl.MODELVIEW)
}

func (d *GL21) LoadModelview(m mgl32.Mat4) {
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadMatrixf(&m[0])
}

func (d *GL21) ResetTextureMatrices() {
	gl.MatrixMode(gl.TEXTURE)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.LoadIdentity()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.LoadIdentity()
	gl.MatrixMode(gl.MODELVIEW)
}

func (d *GL21) Color4(r, g, b, a float32) { gl.Color4f(r, g, b, a) }

func (d *GL21) BindTexture(tex uint32) { gl.BindTexture(gl.TEXTURE_2D, tex) }

func (d *GL21) TextureMode(mode device.TextureMode) {
	switch mode {
	case device.Opaque:
		gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.COMBINE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_RGB, gl.MODULATE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_RGB, gl.TEXTURE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_ALPHA, gl.REPLACE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_ALPHA, gl.PRIMARY_COLOR)
	case device.Mask:
		gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.COMBINE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_RGB, gl.REPLACE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_RGB, gl.PRIMARY_COLOR)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.COMBINE_ALPHA, gl.MODULATE)
		gl.TexEnvi(gl.TEXTURE_ENV, gl.SRC0_ALPHA, gl.TEXTURE)
	default:
		gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.MODULATE)
	}
}

func (d *GL21) FogParams(color mgl32.Vec4, density float32) {
	gl.Fogfv(gl.FOG_COLOR, &color[0])
	gl.Fogf(gl.FOG_DENSITY, density)
}

func (d *GL21) DrawPolygon(verts []device.Vertex) {
	gl.Begin(gl.TRIANGLE_FAN)
	for _, v := range verts {
		gl.TexCoord2f(v.U, v.V)
		gl.Vertex3f(v.X, v.Y, v.Z)
	}
	gl.End()
}

func (d *GL21) CreateTexture(width, height int, rgba []byte) (uint32, error) {
	if len(rgba) < width*height*4 {
		return 0, fmt.Errorf("create texture: %d bytes for %dx%d", len(rgba), width, height)
	}
	if width > d.caps.MaxTextureSize || height > d.caps.MaxTextureSize {
		return 0, fmt.Errorf("create texture: %dx%d exceeds %d", width, height, d.caps.MaxTextureSize)
	}
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("create texture: gl error 0x%x", e)
	}
	return tex, nil
}

func (d *GL21) CopyTexSubImage2D(tex uint32, x, y, width, height int) {
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.CopyTexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(x), int32(y), int32(width), int32(height))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (d *GL21) ReadPixelsRGB(x, y, width, height int, dst []byte) {
	if len(dst) < width*height*3 {
		return
	}
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(dst))
}

func (d *GL21) Flush()  { gl.Flush() }
func (d *GL21) Finish() { gl.Finish() }

// target is a framebuffer with a canvas texture as color and a packed
// depth-stencil renderbuffer.
type target struct {
	fbo, depth    uint32
	width, height int
}

// GL_DEPTH24_STENCIL8_EXT from EXT_packed_depth_stencil.
const depth24Stencil8 = 0x88F0

// BindFramebuffer renders into tex from now on. Targets are built on first use
// and kept per texture.
func (d *GL21) BindFramebuffer(tex uint32, width, height int) error {
	if !d.caps.Framebuffers {
		return fmt.Errorf("bind framebuffer: %w", device.ErrFramebufferIncomplete)
	}
	t, ok := d.targets[tex]
	if ok && (t.width != width || t.height != height) {
		t.release()
		delete(d.targets, tex)
		ok = false
	}
	if !ok {
		var err error
		if t, err = newTarget(tex, width, height); err != nil {
			return err
		}
		d.targets[tex] = t
	}
	gl.BindFramebufferEXT(gl.FRAMEBUFFER_EXT, t.fbo)
	return nil
}

func (d *GL21) UnbindFramebuffer() {
	if d.caps.Framebuffers {
		gl.BindFramebufferEXT(gl.FRAMEBUFFER_EXT, 0)
	}
}

// Release deletes the offscreen targets.
func (d *GL21) Release() {
	for tex, t := range d.targets {
		t.release()
		delete(d.targets, tex)
	}
}

func newTarget(tex uint32, width, height int) (*target, error) {
	t := &target{width: width, height: height}
	gl.GenFramebuffersEXT(1, &t.fbo)
	gl.BindFramebufferEXT(gl.FRAMEBUFFER_EXT, t.fbo)
	gl.FramebufferTexture2DEXT(gl.FRAMEBUFFER_EXT, gl.COLOR_ATTACHMENT0_EXT, gl.TEXTURE_2D, tex, 0)

	gl.GenRenderbuffersEXT(1, &t.depth)
	gl.BindRenderbufferEXT(gl.RENDERBUFFER_EXT, t.depth)
	gl.RenderbufferStorageEXT(gl.RENDERBUFFER_EXT, depth24Stencil8, int32(width), int32(height))
	gl.BindRenderbufferEXT(gl.RENDERBUFFER_EXT, 0)
	gl.FramebufferRenderbufferEXT(gl.FRAMEBUFFER_EXT, gl.DEPTH_ATTACHMENT_EXT, gl.RENDERBUFFER_EXT, t.depth)
	gl.FramebufferRenderbufferEXT(gl.FRAMEBUFFER_EXT, gl.STENCIL_ATTACHMENT_EXT, gl.RENDERBUFFER_EXT, t.depth)

	status := gl.CheckFramebufferStatusEXT(gl.FRAMEBUFFER_EXT)
	gl.BindFramebufferEXT(gl.FRAMEBUFFER_EXT, 0)
	if status != gl.FRAMEBUFFER_COMPLETE_EXT {
		t.release()
		return nil, fmt.Errorf("framebuffer for texture %d: status 0x%x: %w", tex, status, device.ErrFramebufferIncomplete)
	}
	return t, nil
}

func (t *target) release() {
	gl.DeleteRenderbuffersEXT(1, &t.depth)
	gl.DeleteFramebuffersEXT(1, &t.fbo)
}

var (
	_ device.Device    = (*GL21)(nil)
	_ device.Offscreen = (*GL21)(nil)
)
