package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func at(x, y float64) Particle {
	return Particle{Pos: r2.Vec{X: x, Y: y}}
}

func TestDrawConnectsWithinDistance(t *testing.T) {
	r := NewRenderer(DefaultParams())
	s := &recordingSurface{}

	stats := r.Draw(s, []Particle{at(0, 0), at(100, 0)}, true)
	require.Len(t, s.lines, 1)
	assert.Equal(t, line{0, 0, 100, 0, DefaultLineWidth, DefaultParams().Dark.Line}, s.lines[0])
	assert.Equal(t, FrameStats{Particles: 2, Connections: 1}, stats)

	stats = r.Draw(s, []Particle{at(0, 0), at(200, 0)}, true)
	assert.Empty(t, s.lines)
	assert.Equal(t, FrameStats{Particles: 2, Connections: 0}, stats)
}

func TestDrawThresholdIsStrict(t *testing.T) {
	r := NewRenderer(DefaultParams())
	s := &recordingSurface{}

	r.Draw(s, []Particle{at(0, 0), at(160, 0)}, false)
	assert.Empty(t, s.lines)

	r.Draw(s, []Particle{at(0, 0), at(159.999, 0)}, false)
	assert.Len(t, s.lines, 1)

	// 96-128-160 triangle: exactly on the threshold.
	r.Draw(s, []Particle{at(0, 0), at(96, 128)}, false)
	assert.Empty(t, s.lines)
}

func TestDrawClearsThenDiscsThenLines(t *testing.T) {
	params := DefaultParams()
	r := NewRenderer(params)
	s := &recordingSurface{}
	s.circles = []circle{{cx: 1}}

	r.Draw(s, []Particle{at(10, 20), at(30, 40), at(500, 500)}, false)

	assert.Equal(t, 1, s.clears)
	require.Len(t, s.circles, 3)
	assert.Equal(t, circle{10, 20, DefaultParticleRadius, params.Light.Particle}, s.circles[0])
	assert.Equal(t, circle{500, 500, DefaultParticleRadius, params.Light.Particle}, s.circles[2])
	require.Len(t, s.lines, 1)
	assert.Equal(t, params.Light.Line, s.lines[0].c)
}

func TestConnectionSymmetry(t *testing.T) {
	ps := []Particle{at(0, 0), at(50, 50), at(120, 10), at(400, 400), at(410, 390)}
	reversed := make([]Particle, len(ps))
	for i := range ps {
		reversed[len(ps)-1-i] = ps[i]
	}

	pairs := func(ps []Particle) map[[2]r2.Vec]int {
		seen := map[[2]r2.Vec]int{}
		EachConnection(ps, DefaultConnectionDistance, func(a, b Particle) {
			key := [2]r2.Vec{a.Pos, b.Pos}
			if b.Pos.X < a.Pos.X || (b.Pos.X == a.Pos.X && b.Pos.Y < a.Pos.Y) {
				key = [2]r2.Vec{b.Pos, a.Pos}
			}
			seen[key]++
		})
		return seen
	}

	forward := pairs(ps)
	backward := pairs(reversed)
	assert.Equal(t, forward, backward)
	for key, n := range forward {
		assert.Equal(t, 1, n, "pair %v drawn more than once", key)
	}
	assert.Len(t, forward, 4)
}

func TestEachConnectionNeverPairsSelf(t *testing.T) {
	calls := 0
	EachConnection([]Particle{at(5, 5)}, DefaultConnectionDistance, func(a, b Particle) { calls++ })
	assert.Zero(t, calls)

	EachConnection(nil, DefaultConnectionDistance, func(a, b Particle) { calls++ })
	assert.Zero(t, calls)
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	mutations := map[string]func(*Params){
		"negative count":     func(p *Params) { p.ParticleCount = -1 },
		"zero distance":      func(p *Params) { p.ConnectionDistance = 0 },
		"negative speed":     func(p *Params) { p.Speed = -0.1 },
		"zero radius":        func(p *Params) { p.ParticleRadius = 0 },
		"negative linewidth": func(p *Params) { p.LineWidth = -1 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			p := DefaultParams()
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidParams)
		})
	}
}

func TestDefaultPalettesAreDistinctAndTranslucent(t *testing.T) {
	p := DefaultParams()
	assert.NotEqual(t, p.Dark.Particle, p.Light.Particle)
	assert.NotEqual(t, p.Dark.Particle, p.Dark.Line)
	assert.Equal(t, uint8(38), p.Dark.Particle.A)
	assert.Equal(t, uint8(13), p.Dark.Line.A)
	assert.Equal(t, p.Dark.Particle.A, p.Light.Particle.A)
}
