// Package network implements the animated particle network: a fixed-size field
// of drifting particles, reflected at the surface edges, drawn as discs with
// hairlines between every pair closer than a threshold.
//
// The package has no host dependency. A host supplies a Surface to draw on, a
// Viewport to size it from, a resize source, a frame scheduler and a theme,
// then drives the component through Start and Handle.Stop.
package network

import (
	"errors"
	"fmt"
	"image/color"
)

// Simulation constants
const (
	DefaultParticleCount      = 45
	DefaultConnectionDistance = 160.0
	DefaultSpeed              = 0.25 // units per frame
	DefaultParticleRadius     = 2.0
	DefaultLineWidth          = 1.0
)

// ErrInvalidParams is wrapped by Params.Validate.
var ErrInvalidParams = errors.New("invalid network params")

// Palette is the pair of colors used for one theme.
type Palette struct {
	Particle color.NRGBA
	Line     color.NRGBA
}

// Params are the fixed tuning values of the network.
type Params struct {
	ParticleCount      int
	ConnectionDistance float64
	Speed              float64
	ParticleRadius     float64
	LineWidth          float64

	Dark  Palette
	Light Palette
}

// DefaultParams returns the reference configuration: 45 particles, 160px
// connections, 0.25 speed and emerald tints.
func DefaultParams() Params {
	return Params{
		ParticleCount:      DefaultParticleCount,
		ConnectionDistance: DefaultConnectionDistance,
		Speed:              DefaultSpeed,
		ParticleRadius:     DefaultParticleRadius,
		LineWidth:          DefaultLineWidth,
		Dark: Palette{
			Particle: Tint(color.NRGBA{R: 52, G: 211, B: 153, A: 255}, 0.15),
			Line:     Tint(color.NRGBA{R: 52, G: 211, B: 153, A: 255}, 0.05),
		},
		Light: Palette{
			Particle: Tint(color.NRGBA{R: 16, G: 185, B: 129, A: 255}, 0.15),
			Line:     Tint(color.NRGBA{R: 16, G: 185, B: 129, A: 255}, 0.05),
		},
	}
}

// Palette returns the colors for the given theme.
func (p Params) Palette(dark bool) Palette {
	if dark {
		return p.Dark
	}
	return p.Light
}

// Validate reports the first out-of-range value.
func (p Params) Validate() error {
	switch {
	case p.ParticleCount < 0:
		return fmt.Errorf("%w: particle count %d is negative", ErrInvalidParams, p.ParticleCount)
	case p.ConnectionDistance <= 0:
		return fmt.Errorf("%w: connection distance %g must be positive", ErrInvalidParams, p.ConnectionDistance)
	case p.Speed < 0:
		return fmt.Errorf("%w: speed %g is negative", ErrInvalidParams, p.Speed)
	case p.ParticleRadius <= 0:
		return fmt.Errorf("%w: particle radius %g must be positive", ErrInvalidParams, p.ParticleRadius)
	case p.LineWidth <= 0:
		return fmt.Errorf("%w: line width %g must be positive", ErrInvalidParams, p.LineWidth)
	}
	return nil
}

// Tint returns c with its alpha replaced by alpha (0..1, clamped).
func Tint(c color.NRGBA, alpha float64) color.NRGBA {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	c.A = uint8(alpha*255 + 0.5)
	return c
}
