package display

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Canvas is an offscreen ebiten image the network draws into. The game
// composites it over the page background each frame.
type Canvas struct {
	img           *ebiten.Image
	width, height int
}

// SetSize reallocates the offscreen image to exactly width x height.
func (c *Canvas) SetSize(width, height int) {
	if c.img != nil && c.width == width && c.height == height {
		return
	}
	if c.img != nil {
		c.img.Deallocate()
		c.img = nil
	}
	c.width, c.height = width, height
	if width > 0 && height > 0 {
		c.img = ebiten.NewImage(width, height)
	}
}

// Clear erases the image.
func (c *Canvas) Clear() {
	if c.img != nil {
		c.img.Clear()
	}
}

// FillCircle draws an antialiased disc.
func (c *Canvas) FillCircle(cx, cy, r float64, clr color.Color) {
	if c.img == nil {
		return
	}
	vector.DrawFilledCircle(c.img, float32(cx), float32(cy), float32(r), clr, true)
}

// StrokeLine draws an antialiased segment.
func (c *Canvas) StrokeLine(x0, y0, x1, y1, width float64, clr color.Color) {
	if c.img == nil {
		return
	}
	vector.StrokeLine(c.img, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), clr, true)
}

// Image returns the offscreen image, or nil while the surface is empty.
func (c *Canvas) Image() *ebiten.Image {
	return c.img
}
