// Package device is the immediate-mode graphics API the scene renderer drives.
// Recorder captures every call and the state in effect at each draw.
package device

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// Cap is a toggleable pipeline capability.
type Cap int

const (
	DepthTest Cap = iota
	StencilTest
	Blend
	AlphaTest
	Texture2D
	Fog
	PolygonOffsetFill
	ScissorTest
	Multisample
	numCaps
)

var capNames = [numCaps]string{"DepthTest", "StencilTest", "Blend", "AlphaTest", "Texture2D", "Fog",
	"PolygonOffsetFill", "ScissorTest", "Multisample"}

func (c Cap) String() string {
	if c < 0 || c >= numCaps {
		return "Cap(?)"
	}
	return capNames[c]
}

type CompareFunc int

const (
	Never CompareFunc = iota
	Less
	Equal
	LEqual
	Greater
	NotEqual
	GEqual
	Always
)

type BlendFactor int

const (
	Zero BlendFactor = iota
	One
	SrcAlpha
	OneMinusSrcAlpha
	SrcColor
	OneMinusSrcColor
	DstColor
)

type BlendEquation int

const (
	FuncAdd BlendEquation = iota
	FuncReverseSubtract
)

type StencilOp int

const (
	Keep StencilOp = iota
	Replace
	Incr
	Decr
	ZeroOp
)

// TextureMode selects how the bound texture combines with the vertex color.
type TextureMode int

const (
	Modulate TextureMode = iota
	// Opaque ignores the texture's alpha.
	Opaque
	// Mask keeps only the texture's alpha and takes the color from the vertex.
	Mask
)

type ClearMask uint32

const (
	ColorBuffer ClearMask = 1 << iota
	DepthBuffer
	StencilBuffer
)

// Vertex is a textured vertex in GL space (map x, map z, map y).
type Vertex struct {
	X, Y, Z float32
	U, V    float32
}

// Capabilities is probed once when the context is created.
type Capabilities struct {
	Version        string
	Framebuffers   bool
	MaxTextureSize int
}

type Device interface {
	Enable(c Cap)
	Disable(c Cap)
	DepthFunc(fn CompareFunc)
	DepthMask(write bool)
	DepthRange(near, far float32)
	StencilFunc(fn CompareFunc, ref int, mask uint32)
	StencilOp(fail, zfail, zpass StencilOp)
	ColorMask(r, g, b, a bool)
	BlendFunc(src, dst BlendFactor)
	BlendEquation(eq BlendEquation)
	AlphaFunc(fn CompareFunc, ref float32)
	PolygonOffset(factor, units float32)
	Viewport(x, y, w, h int)
	Scissor(x, y, w, h int)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)

	LoadProjection(m mgl32.Mat4)
	LoadModelview(m mgl32.Mat4)
	ResetTextureMatrices()

	Color4(r, g, b, a float32)
	BindTexture(tex uint32)
	TextureMode(mode TextureMode)
	FogParams(color mgl32.Vec4, density float32)
	DrawPolygon(verts []Vertex)

	// CreateTexture uploads an RGBA image and returns its handle.
	CreateTexture(width, height int, rgba []byte) (uint32, error)
	CopyTexSubImage2D(tex uint32, x, y, width, height int)
	// ReadPixelsRGB reads the back buffer, bottom row first, 3 bytes per pixel.
	ReadPixelsRGB(x, y, width, height int, dst []byte)
	Flush()
	Finish()
	Capabilities() Capabilities
}

// ErrFramebufferIncomplete is returned when a texture cannot be used as a render target.
var ErrFramebufferIncomplete = errors.New("framebuffer incomplete")

// Offscreen is implemented by devices that can render into a texture.
// While a texture is bound, drawing and clears go to it instead of the back buffer.
type Offscreen interface {
	BindFramebuffer(tex uint32, width, height int) error
	UnbindFramebuffer()
}
