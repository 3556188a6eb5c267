package device

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// State is the pipeline state a Recorder tracks.
type State struct {
	Caps         [numCaps]bool
	DepthFunc    CompareFunc
	DepthMask    bool
	DepthNear    float32
	DepthFar     float32
	StencilFunc  CompareFunc
	StencilRef   int
	StencilOps   [3]StencilOp
	ColorMask    [4]bool
	BlendSrc     BlendFactor
	BlendDst     BlendFactor
	BlendEq      BlendEquation
	AlphaFunc    CompareFunc
	AlphaRef     float32
	OffsetFactor float32
	OffsetUnits  float32
	Viewport     [4]int
	Scissor      [4]int
	ClearColor   mgl32.Vec4
	Projection   mgl32.Mat4
	Modelview    mgl32.Mat4
	Color        mgl32.Vec4
	Texture      uint32
	TexMode      TextureMode
	FogColor     mgl32.Vec4
	FogDensity   float32
	// Framebuffer is the texture drawn into, 0 for the back buffer.
	Framebuffer  uint32
}

func (s *State) Enabled(c Cap) bool { return s.Caps[c] }

// Draw is one DrawPolygon call with the state it was issued under.
type Draw struct {
	Seq   int
	State State
	Verts []Vertex
}

// Recorder is a Device that renders nothing.
type Recorder struct {
	State State
	Calls []string
	Draws []Draw

	Caps Capabilities
	// FailTextures makes CreateTexture fail.
	FailTextures bool
	// FailFramebuffers makes BindFramebuffer report an incomplete target.
	FailFramebuffers bool
	// Pixel supplies ReadPixelsRGB output; nil reads back the clear color.
	Pixel func(x, y int) (r, g, b uint8)

	Copies      []Copy
	nextTexture uint32
}

// Copy records a CopyTexSubImage2D call.
type Copy struct {
	Texture             uint32
	X, Y, Width, Height int
}

var ErrTextureRejected = errors.New("texture rejected")

func NewRecorder() *Recorder {
	r := &Recorder{
		Caps: Capabilities{Version: "recorder", MaxTextureSize: 4096},
	}
	r.State.DepthFunc = Less
	r.State.DepthMask = true
	r.State.DepthFar = 1
	r.State.StencilFunc = Always
	r.State.ColorMask = [4]bool{true, true, true, true}
	r.State.BlendSrc = One
	r.State.BlendDst = Zero
	r.State.AlphaFunc = Always
	r.State.Projection = mgl32.Ident4()
	r.State.Modelview = mgl32.Ident4()
	r.State.Color = mgl32.Vec4{1, 1, 1, 1}
	return r
}

func (r *Recorder) call(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

// Reset forgets recorded calls and draws but keeps the state.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
	r.Draws = r.Draws[:0]
	r.Copies = r.Copies[:0]
}

// DrawsWhere returns the draws whose state satisfies pred.
func (r *Recorder) DrawsWhere(pred func(s *State) bool) []Draw {
	var out []Draw
	for i := range r.Draws {
		if pred(&r.Draws[i].State) {
			out = append(out, r.Draws[i])
		}
	}
	return out
}

// Count returns how many calls have the given text.
func (r *Recorder) Count(call string) int {
	n := 0
	for _, c := range r.Calls {
		if c == call {
			n++
		}
	}
	return n
}

func (r *Recorder) Capabilities() Capabilities { return r.Caps }

func (r *Recorder) Enable(c Cap) {
	r.call("Enable(%s)", c)
	r.State.Caps[c] = true
}

func (r *Recorder) Disable(c Cap) {
	r.call("Disable(%s)", c)
	r.State.Caps[c] = false
}

func (r *Recorder) DepthFunc(fn CompareFunc) {
	r.call("DepthFunc(%d)", fn)
	r.State.DepthFunc = fn
}

func (r *Recorder) DepthMask(write bool) {
	r.call("DepthMask(%t)", write)
	r.State.DepthMask = write
}

func (r *Recorder) DepthRange(near, far float32) {
	r.call("DepthRange(%g,%g)", near, far)
	r.State.DepthNear, r.State.DepthFar = near, far
}

func (r *Recorder) StencilFunc(fn CompareFunc, ref int, mask uint32) {
	r.call("StencilFunc(%d,%d)", fn, ref)
	r.State.StencilFunc, r.State.StencilRef = fn, ref
}

func (r *Recorder) StencilOp(fail, zfail, zpass StencilOp) {
	r.call("StencilOp(%d,%d,%d)", fail, zfail, zpass)
	r.State.StencilOps = [3]StencilOp{fail, zfail, zpass}
}

func (r *Recorder) ColorMask(cr, cg, cb, ca bool) {
	r.call("ColorMask(%t,%t,%t,%t)", cr, cg, cb, ca)
	r.State.ColorMask = [4]bool{cr, cg, cb, ca}
}

func (r *Recorder) BlendFunc(src, dst BlendFactor) {
	r.call("BlendFunc(%d,%d)", src, dst)
	r.State.BlendSrc, r.State.BlendDst = src, dst
}

func (r *Recorder) BlendEquation(eq BlendEquation) {
	r.call("BlendEquation(%d)", eq)
	r.State.BlendEq = eq
}

func (r *Recorder) AlphaFunc(fn CompareFunc, ref float32) {
	r.call("AlphaFunc(%d,%g)", fn, ref)
	r.State.AlphaFunc, r.State.AlphaRef = fn, ref
}

func (r *Recorder) PolygonOffset(factor, units float32) {
	r.call("PolygonOffset(%g,%g)", factor, units)
	r.State.OffsetFactor, r.State.OffsetUnits = factor, units
}

func (r *Recorder) Viewport(x, y, w, h int) {
	r.call("Viewport(%d,%d,%d,%d)", x, y, w, h)
	r.State.Viewport = [4]int{x, y, w, h}
}

func (r *Recorder) Scissor(x, y, w, h int) {
	r.call("Scissor(%d,%d,%d,%d)", x, y, w, h)
	r.State.Scissor = [4]int{x, y, w, h}
}

func (r *Recorder) ClearColor(cr, cg, cb, ca float32) {
	r.call("ClearColor(%g,%g,%g,%g)", cr, cg, cb, ca)
	r.State.ClearColor = mgl32.Vec4{cr, cg, cb, ca}
}

func (r *Recorder) Clear(mask ClearMask) { r.call("Clear(%d)", mask) }

func (r *Recorder) LoadProjection(m mgl32.Mat4) {
	r.call("LoadProjection")
	r.State.Projection = m
}

func (r *Recorder) LoadModelview(m mgl32.Mat4) {
	r.call("LoadModelview")
	r.State.Modelview = m
}

func (r *Recorder) ResetTextureMatrices() { r.call("ResetTextureMatrices") }

func (r *Recorder) Color4(cr, cg, cb, ca float32) {
	r.State.Color = mgl32.Vec4{cr, cg, cb, ca}
}

func (r *Recorder) BindTexture(tex uint32) {
	r.call("BindTexture(%d)", tex)
	r.State.Texture = tex
}

func (r *Recorder) TextureMode(mode TextureMode) {
	r.call("TextureMode(%d)", mode)
	r.State.TexMode = mode
}

func (r *Recorder) FogParams(color mgl32.Vec4, density float32) {
	r.call("FogParams")
	r.State.FogColor, r.State.FogDensity = color, density
}

func (r *Recorder) DrawPolygon(verts []Vertex) {
	r.call("DrawPolygon")
	v := make([]Vertex, len(verts))
	copy(v, verts)
	r.Draws = append(r.Draws, Draw{Seq: len(r.Calls) - 1, State: r.State, Verts: v})
}

func (r *Recorder) CreateTexture(width, height int, rgba []byte) (uint32, error) {
	r.call("CreateTexture(%d,%d)", width, height)
	if r.FailTextures {
		return 0, ErrTextureRejected
	}
	if len(rgba) < width*height*4 {
		return 0, fmt.Errorf("create texture: %d bytes for %dx%d", len(rgba), width, height)
	}
	r.nextTexture++
	return 1000 + r.nextTexture, nil
}

func (r *Recorder) CopyTexSubImage2D(tex uint32, x, y, width, height int) {
	r.call("CopyTexSubImage2D(%d)", tex)
	r.Copies = append(r.Copies, Copy{tex, x, y, width, height})
}

func (r *Recorder) ReadPixelsRGB(x, y, width, height int, dst []byte) {
	r.call("ReadPixelsRGB(%d,%d,%d,%d)", x, y, width, height)
	cc := r.State.ClearColor
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := (row*width + col) * 3
			if i+2 >= len(dst) {
				return
			}
			if r.Pixel != nil {
				dst[i], dst[i+1], dst[i+2] = r.Pixel(x+col, y+row)
				continue
			}
			dst[i], dst[i+1], dst[i+2] = uint8(cc[0]*255), uint8(cc[1]*255), uint8(cc[2]*255)
		}
	}
}

// BindFramebuffer redirects drawing into tex. It fails unless Caps.Framebuffers is set.
func (r *Recorder) BindFramebuffer(tex uint32, width, height int) error {
	r.call("BindFramebuffer(%d,%d,%d)", tex, width, height)
	if !r.Caps.Framebuffers || r.FailFramebuffers {
		return fmt.Errorf("bind framebuffer %d: %w", tex, ErrFramebufferIncomplete)
	}
	r.State.Framebuffer = tex
	return nil
}

func (r *Recorder) UnbindFramebuffer() {
	r.call("UnbindFramebuffer")
	r.State.Framebuffer = 0
}

func (r *Recorder) Flush()  { r.call("Flush") }
func (r *Recorder) Finish() { r.call("Finish") }
