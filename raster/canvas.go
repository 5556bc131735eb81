// Package raster is a CPU surface for the particle network. It rasterizes
// discs and lines into an in-memory RGBA image, for headless rendering and
// PNG export.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"
)

// circleSegments is the polygon resolution used for discs.
const circleSegments = 24

// Canvas implements network.Surface over an *image.RGBA.
type Canvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

// NewCanvas returns a canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.SetSize(width, height)
	return c
}

// SetSize reallocates the backing image. Previous content is discarded.
func (c *Canvas) SetSize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	c.z = vector.NewRasterizer(width, height)
}

// Size returns the backing image size.
func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the backing image. It is reused across frames.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Clear erases the whole image to transparent.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// FillCircle composites a filled disc.
func (c *Canvas) FillCircle(cx, cy, r float64, clr color.Color) {
	if c.empty() || r <= 0 {
		return
	}
	c.z.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	for i := 0; i < circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		x, y := float32(cx+r*math.Cos(a)), float32(cy+r*math.Sin(a))
		if i == 0 {
			c.z.MoveTo(x, y)
			continue
		}
		c.z.LineTo(x, y)
	}
	c.z.ClosePath()
	c.fill(clr)
}

// StrokeLine composites a straight segment of the given width.
func (c *Canvas) StrokeLine(x0, y0, x1, y1, width float64, clr color.Color) {
	if c.empty() || width <= 0 {
		return
	}
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// Offset perpendicular to the segment by half the width on each side.
	nx, ny := -dy/length*width/2, dx/length*width/2

	c.z.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	c.z.MoveTo(float32(x0+nx), float32(y0+ny))
	c.z.LineTo(float32(x1+nx), float32(y1+ny))
	c.z.LineTo(float32(x1-nx), float32(y1-ny))
	c.z.LineTo(float32(x0-nx), float32(y0-ny))
	c.z.ClosePath()
	c.fill(clr)
}

func (c *Canvas) fill(clr color.Color) {
	c.z.DrawOp = draw.Over
	c.z.Draw(c.img, c.img.Bounds(), image.NewUniform(clr), image.Point{})
}

func (c *Canvas) empty() bool {
	return c.img.Bounds().Empty()
}

// Composite returns the canvas drawn over an opaque background color.
func (c *Canvas) Composite(background color.Color) *image.RGBA {
	out := image.NewRGBA(c.img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), c.img, c.img.Bounds().Min, draw.Over)
	return out
}

// WritePNG encodes the canvas over background as PNG.
func (c *Canvas) WritePNG(w io.Writer, background color.Color) error {
	if err := png.Encode(w, c.Composite(background)); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}
