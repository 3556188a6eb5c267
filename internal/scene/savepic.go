package scene

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"gzgl/internal/graphics/device"
)

var ErrBadPicSize = errors.New("save picture size must be positive")

// WriteSavePic renders the player's view into a width x height picture and
// writes it to w as PNG.
func (r *Renderer) WriteSavePic(p *Player, w io.Writer, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("write save picture %dx%d: %w", width, height, ErrBadPicSize)
	}
	camera := p.Camera
	if camera == nil {
		camera = p.Mo
	}
	bounds := Rect{Width: width, Height: height}

	r.dev.Flush()
	r.SetFixedColormap(p)
	r.lightCount = len(r.deps.Lights.Lights())
	sector := r.RenderViewpoint(camera, &bounds, r.deps.FieldOfView, 1.6, 1.6, true, false)

	r.dev.Disable(device.StencilTest)
	r.Begin2D()
	r.dev.Viewport(0, 0, width, height)
	r.DrawBlend(sector, p)
	r.restore2D()
	r.dev.Flush()

	rgb := make([]byte, width*height*3)
	r.dev.ReadPixelsRGB(0, 0, width, height, rgb)

	// rows come back bottom first
	src := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < len(rgb); i, j = i+3, j+4 {
		src.Pix[j], src.Pix[j+1], src.Pix[j+2], src.Pix[j+3] = rgb[i], rgb[i+1], rgb[i+2], 0xff
	}
	dst := image.NewRGBA(src.Bounds())
	flip := f64.Aff3{1, 0, 0, 0, -1, float64(height)}
	draw.NearestNeighbor.Transform(dst, flip, src, src.Bounds(), draw.Src, nil)

	if err := png.Encode(w, dst); err != nil {
		r.log.Errorf("save picture: %v", err)
		return fmt.Errorf("write save picture: %w", err)
	}
	return nil
}
