package network

import (
	"image/color"
)

// Canvas is what the renderer paints into.
type Canvas interface {
	// Clear erases the whole canvas to transparent.
	Clear()
	FillCircle(cx, cy, r float64, c color.Color)
	StrokeLine(x0, y0, x1, y1, width float64, c color.Color)
}

// Surface is a drawable whose backing pixel size the surface manager controls.
type Surface interface {
	Canvas
	SetSize(width, height int)
}

// Viewport reports the host's current drawable area in pixels.
type Viewport interface {
	Size() (width, height int)
}

// ViewportFunc adapts a function to Viewport.
type ViewportFunc func() (int, int)

// Size implements Viewport.
func (f ViewportFunc) Size() (int, int) { return f() }

// SurfaceManager owns the surface dimensions.
type SurfaceManager struct {
	surface  Surface
	viewport Viewport
	onResize func(width, height int)

	width, height int
}

// NewSurfaceManager returns a manager that sizes surface from viewport and
// calls onResize after every resize.
func NewSurfaceManager(surface Surface, viewport Viewport, onResize func(width, height int)) *SurfaceManager {
	return &SurfaceManager{
		surface:  surface,
		viewport: viewport,
		onResize: onResize,
	}
}

// Resize reads the viewport, sizes the surface to match exactly and re-seeds.
// A zero viewport yields a zero surface; negative sizes are treated as zero.
func (m *SurfaceManager) Resize() {
	w, h := m.viewport.Size()
	w = max(w, 0)
	h = max(h, 0)

	m.width, m.height = w, h
	m.surface.SetSize(w, h)
	if m.onResize != nil {
		m.onResize(w, h)
	}
}

// Size returns the current surface dimensions.
func (m *SurfaceManager) Size() (int, int) {
	return m.width, m.height
}
