package network

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Rand is the random source used for seeding. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Particle is a single moving point.
type Particle struct {
	Pos r2.Vec // surface pixels
	Vel r2.Vec // pixels per frame
}

// Field is the fixed-size collection of particles.
type Field struct {
	count int
	speed float64
	rng   Rand

	particles []Particle
}

// NewField creates an empty field that seeds count particles with velocity
// components in [-speed/2, speed/2].
func NewField(count int, speed float64, rng Rand) *Field {
	return &Field{
		count: count,
		speed: speed,
		rng:   rng,
	}
}

// Seed replaces every particle with a fresh one positioned uniformly inside
// [0,width] x [0,height].
func (f *Field) Seed(width, height float64) {
	particles := make([]Particle, f.count)
	for i := range particles {
		particles[i] = Particle{
			Pos: r2.Vec{
				X: f.rng.Float64() * width,
				Y: f.rng.Float64() * height,
			},
			Vel: r2.Vec{
				X: (f.rng.Float64() - 0.5) * f.speed,
				Y: (f.rng.Float64() - 0.5) * f.speed,
			},
		}
	}
	f.particles = particles
}

// Advance moves every particle by its velocity, then flips the velocity
// component of any axis whose new coordinate lies outside [0,width] or
// [0,height]. Positions are not clamped: a particle may sit past an edge for
// one frame before it heads back.
func (f *Field) Advance(width, height float64) {
	for i := range f.particles {
		p := &f.particles[i]
		p.Pos = r2.Add(p.Pos, p.Vel)

		if p.Pos.X < 0 || p.Pos.X > width {
			p.Vel.X = -p.Vel.X
		}
		if p.Pos.Y < 0 || p.Pos.Y > height {
			p.Vel.Y = -p.Vel.Y
		}
	}
}

// Len returns the number of particles currently in the field.
func (f *Field) Len() int {
	return len(f.particles)
}

// Particles returns a copy of the current particles.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Set replaces the particles. Used to place a known configuration.
func (f *Field) Set(particles []Particle) {
	f.particles = append(f.particles[:0:0], particles...)
}

// view returns the live slice for the renderer; callers must not retain it.
func (f *Field) view() []Particle {
	return f.particles
}
