// Package material keeps the textures the renderer binds by level.TextureID.
package material

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"

	"gzgl/internal/graphics/device"
	"gzgl/internal/level"
)

// Material is a resolved, bindable texture.
type Material struct {
	ID     level.TextureID
	Name   string
	Handle uint32
	Width  int
	Height int
	// Masked textures contain pixels below full alpha and need the alpha test.
	Masked bool
	// Canvas textures are rendered into by camera views.
	Canvas bool
}

// Uploader creates GPU textures from RGBA pixels. An Uploader that also
// implements device.Offscreen lets canvas textures be rendered into directly.
type Uploader interface {
	CreateTexture(width, height int, rgba []byte) (uint32, error)
}

var (
	ErrNoOffscreen = errors.New("offscreen render targets are not available")
	ErrDuplicate   = errors.New("texture name already registered")
	ErrNotCanvas   = errors.New("texture is not a canvas")
)

// Table holds every registered material. ID 0 is level.NoTexture and never resolves.
type Table struct {
	mu     sync.RWMutex
	up     Uploader
	byID   []Material
	byName map[string]level.TextureID
}

func NewTable(up Uploader) *Table {
	return &Table{
		up:     up,
		byID:   []Material{{}},
		byName: make(map[string]level.TextureID),
	}
}

// Register uploads img under name.
func (t *Table) Register(name string, img image.Image) (level.TextureID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byName[name]; ok {
		return level.NoTexture, fmt.Errorf("register %q: %w", name, ErrDuplicate)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	masked := false
	for i := 3; i < len(rgba.Pix); i += 4 {
		if rgba.Pix[i] != 0xff {
			masked = true
			break
		}
	}

	handle, err := t.up.CreateTexture(b.Dx(), b.Dy(), rgba.Pix)
	if err != nil {
		return level.NoTexture, fmt.Errorf("register %q: %w", name, err)
	}
	id := level.TextureID(len(t.byID))
	t.byID = append(t.byID, Material{ID: id, Name: name, Handle: handle, Width: b.Dx(), Height: b.Dy(), Masked: masked})
	t.byName[name] = id
	return id, nil
}

// Solid registers a single-colored texture.
func (t *Table) Solid(name string, c color.Color, size int) (level.TextureID, error) {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return t.Register(name, img)
}

// Checker registers a two-colored checkerboard; a transparent color makes a masked texture.
func (t *Table) Checker(name string, a, b color.Color, size, cell int) (level.TextureID, error) {
	if cell <= 0 {
		cell = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, a)
			} else {
				img.Set(x, y, b)
			}
		}
	}
	return t.Register(name, img)
}

// Canvas registers a blank texture that camera views render into.
func (t *Table) Canvas(name string, width, height int) (level.TextureID, error) {
	id, err := t.Register(name, image.NewRGBA(image.Rect(0, 0, width, height)))
	if err != nil {
		return id, err
	}
	t.mu.Lock()
	t.byID[id].Canvas = true
	t.byID[id].Masked = false
	t.mu.Unlock()
	return id, nil
}

func (t *Table) Material(id level.TextureID) (Material, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id <= level.NoTexture || int(id) >= len(t.byID) {
		return Material{}, false
	}
	return t.byID[id], true
}

func (t *Table) Lookup(name string) (level.TextureID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byName[name]
	return id, ok
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID) - 1
}

// BindOffscreen redirects rendering into the canvas texture id until
// UnbindOffscreen.
func (t *Table) BindOffscreen(id level.TextureID) error {
	off, ok := t.up.(device.Offscreen)
	if !ok {
		return fmt.Errorf("bind offscreen %d: %w", id, ErrNoOffscreen)
	}
	m, ok := t.Material(id)
	if !ok || !m.Canvas {
		return fmt.Errorf("bind offscreen %d: %w", id, ErrNotCanvas)
	}
	if err := off.BindFramebuffer(m.Handle, m.Width, m.Height); err != nil {
		return fmt.Errorf("bind offscreen %s: %w", m.Name, err)
	}
	return nil
}

// UnbindOffscreen returns rendering to the back buffer.
func (t *Table) UnbindOffscreen() {
	if off, ok := t.up.(device.Offscreen); ok {
		off.UnbindFramebuffer()
	}
}
