package terminal

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	dotsPerCellX = 2
	dotsPerCellY = 4
	brailleBase  = 0x2800
)

// brailleBits maps a dot inside a cell to its bit in the braille block.
var brailleBits = [dotsPerCellY][dotsPerCellX]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// dot holds premultiplied color and coverage.
type dot struct {
	r, g, b, a float64
}

// Braille is a network.Surface whose pixels are grouped into braille dots,
// each dot covering dotSize x dotSize surface pixels.
type Braille struct {
	dotSize int

	width, height int // surface pixels
	cols, rows    int // dots
	dots          []dot
}

// NewBraille returns an empty canvas.
func NewBraille(dotSize int) *Braille {
	return &Braille{dotSize: max(dotSize, 1)}
}

// ViewportFor returns the surface size that fills a cols x rows terminal.
func (b *Braille) ViewportFor(cols, rows int) (int, int) {
	return cols * dotsPerCellX * b.dotSize, rows * dotsPerCellY * b.dotSize
}

// SetSize reallocates the dot grid for a width x height surface.
func (b *Braille) SetSize(width, height int) {
	b.width, b.height = max(width, 0), max(height, 0)
	b.cols = (b.width + b.dotSize - 1) / b.dotSize
	b.rows = (b.height + b.dotSize - 1) / b.dotSize
	b.dots = make([]dot, b.cols*b.rows)
}

// Clear erases every dot.
func (b *Braille) Clear() {
	clear(b.dots)
}

// FillCircle lights every dot whose center lies within r of (cx, cy), or the
// dot under the center when the disc is smaller than a dot.
func (b *Braille) FillCircle(cx, cy, r float64, c color.Color) {
	s := float64(b.dotSize)
	minX, maxX := int(math.Floor((cx-r)/s)), int(math.Floor((cx+r)/s))
	minY, maxY := int(math.Floor((cy-r)/s)), int(math.Floor((cy+r)/s))

	hit := false
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := (float64(x)+0.5)*s - cx
			dy := (float64(y)+0.5)*s - cy
			if dx*dx+dy*dy <= r*r {
				hit = b.blend(x, y, c) || hit
			}
		}
	}
	if !hit {
		b.blend(int(math.Floor(cx/s)), int(math.Floor(cy/s)), c)
	}
}

// StrokeLine lights the dots along the segment, each dot once per line.
// Width is ignored: a dot is already wider than a hairline.
func (b *Braille) StrokeLine(x0, y0, x1, y1, _ float64, c color.Color) {
	s := float64(b.dotSize)
	ax, ay := x0/s, y0/s
	bx, by := x1/s, y1/s

	steps := int(math.Ceil(math.Max(math.Abs(bx-ax), math.Abs(by-ay))))
	lastX, lastY := math.MinInt, math.MinInt
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		x := int(math.Floor(ax + (bx-ax)*t))
		y := int(math.Floor(ay + (by-ay)*t))
		if x == lastX && y == lastY {
			continue
		}
		lastX, lastY = x, y
		b.blend(x, y, c)
	}
}

// blend composites c over the dot at (x, y). It reports whether the dot was
// inside the grid.
func (b *Braille) blend(x, y int, c color.Color) bool {
	if x < 0 || y < 0 || x >= b.cols || y >= b.rows {
		return false
	}
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	sa := float64(nc.A) / 255

	d := &b.dots[y*b.cols+x]
	d.r = d.r*(1-sa) + float64(nc.R)/255*sa
	d.g = d.g*(1-sa) + float64(nc.G)/255*sa
	d.b = d.b*(1-sa) + float64(nc.B)/255*sa
	d.a = d.a*(1-sa) + sa
	return true
}

// Cell is one rendered terminal cell.
type Cell struct {
	Rune  rune
	Color colorful.Color
}

// CellSize returns the grid size in terminal cells.
func (b *Braille) CellSize() (int, int) {
	return (b.cols + dotsPerCellX - 1) / dotsPerCellX, (b.rows + dotsPerCellY - 1) / dotsPerCellY
}

// Cell renders the terminal cell at (col, row) over background. Faint tints
// are boosted by gain so they remain visible. ok is false for empty cells.
func (b *Braille) Cell(col, row int, background colorful.Color, gain float64) (Cell, bool) {
	var bits rune
	var strongest dot
	for dy := 0; dy < dotsPerCellY; dy++ {
		for dx := 0; dx < dotsPerCellX; dx++ {
			x, y := col*dotsPerCellX+dx, row*dotsPerCellY+dy
			if x >= b.cols || y >= b.rows {
				continue
			}
			d := b.dots[y*b.cols+x]
			if d.a <= 0 {
				continue
			}
			bits |= brailleBits[dy][dx]
			if d.a > strongest.a {
				strongest = d
			}
		}
	}
	if bits == 0 {
		return Cell{}, false
	}

	tint := colorful.Color{R: strongest.r / strongest.a, G: strongest.g / strongest.a, B: strongest.b / strongest.a}
	return Cell{
		Rune:  brailleBase + bits,
		Color: background.BlendRgb(tint, math.Min(1, strongest.a*gain)),
	}, true
}
