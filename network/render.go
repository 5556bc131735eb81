package network

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// FrameStats describes one drawn frame.
type FrameStats struct {
	Particles   int
	Connections int
}

// Renderer draws a field. It holds no per-frame state.
type Renderer struct {
	params Params
}

// NewRenderer returns a renderer using the radius, line width, connection
// distance and palettes of params.
func NewRenderer(params Params) *Renderer {
	return &Renderer{params: params}
}

// Draw clears canvas and paints particles and their connections with the
// palette for the given theme.
func (r *Renderer) Draw(canvas Canvas, particles []Particle, dark bool) FrameStats {
	canvas.Clear()

	palette := r.params.Palette(dark)

	for _, p := range particles {
		canvas.FillCircle(p.Pos.X, p.Pos.Y, r.params.ParticleRadius, palette.Particle)
	}

	stats := FrameStats{Particles: len(particles)}
	EachConnection(particles, r.params.ConnectionDistance, func(a, b Particle) {
		canvas.StrokeLine(a.Pos.X, a.Pos.Y, b.Pos.X, b.Pos.Y, r.params.LineWidth, palette.Line)
		stats.Connections++
	})
	return stats
}

// EachConnection calls fn once for every unordered pair i<j whose Euclidean
// distance is strictly less than maxDist. Every pair is checked on every call.
func EachConnection(particles []Particle, maxDist float64, fn func(a, b Particle)) {
	for i := range particles {
		for j := i + 1; j < len(particles); j++ {
			if r2.Norm(r2.Sub(particles[i].Pos, particles[j].Pos)) < maxDist {
				fn(particles[i], particles[j])
			}
		}
	}
}
