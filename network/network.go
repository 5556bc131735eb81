package network

import (
	"errors"
	"log/slog"
	"math/rand"
	"time"
)

var (
	// ErrNoSurface is returned by Start when the host has no surface to draw
	// on. The network stays stopped; the host page is unaffected.
	ErrNoSurface = errors.New("network: no drawing surface")

	errNoViewport  = errors.New("network: viewport is required")
	errNoScheduler = errors.New("network: frame scheduler is required")
)

// Theme reports whether the dark palette is in effect. It is read once per
// frame.
type Theme interface {
	Dark() bool
}

// ThemeFunc adapts a function to Theme.
type ThemeFunc func() bool

// Dark implements Theme.
func (f ThemeFunc) Dark() bool { return f() }

// FixedTheme is a Theme that never changes.
type FixedTheme bool

// Dark implements Theme.
func (t FixedTheme) Dark() bool { return bool(t) }

// Env carries the host collaborators.
type Env struct {
	Surface  Surface      // nil when the host cannot provide one
	Viewport Viewport     // required
	Resizes  ResizeSource // optional
	Frames   Scheduler    // required
	Theme    Theme        // nil means light
}

// Frame is passed to the frame hook after each drawn tick.
type Frame struct {
	Index         uint64
	Width, Height int
	Dark          bool
	Stats         FrameStats
	Elapsed       time.Duration
}

// Option configures a Network.
type Option func(*Network)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(n *Network) { n.logger = logger }
}

// WithRand sets the random source used for seeding. Defaults to a time-seeded
// math/rand source.
func WithRand(rng Rand) Option {
	return func(n *Network) { n.rng = rng }
}

// WithFrameHook registers fn to run after each drawn tick.
func WithFrameHook(fn func(Frame)) Option {
	return func(n *Network) { n.hook = fn }
}

// Network is the particle network component: surface manager, particle field
// and renderer driven by one animation loop.
type Network struct {
	params Params
	env    Env
	logger *slog.Logger
	rng    Rand
	hook   func(Frame)

	field    *Field
	surface  *SurfaceManager
	renderer *Renderer

	handle *Handle
	frames uint64
}

// New wires a network for env. Nothing runs until Start.
func New(params Params, env Env, opts ...Option) (*Network, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if env.Viewport == nil {
		return nil, errNoViewport
	}
	if env.Frames == nil {
		return nil, errNoScheduler
	}
	if env.Theme == nil {
		env.Theme = FixedTheme(false)
	}

	n := &Network{
		params: params,
		env:    env,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.rng == nil {
		n.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n.field = NewField(params.ParticleCount, params.Speed, n.rng)
	n.renderer = NewRenderer(params)
	if env.Surface != nil {
		n.surface = NewSurfaceManager(env.Surface, env.Viewport, n.reseed)
	}
	return n, nil
}

// Handle controls a running network. Stop is idempotent.
type Handle struct {
	n       *Network
	running bool

	frame      FrameID
	hasFrame   bool
	detachSize func()
}

// Start sizes the surface, seeds the field, listens for resizes and schedules
// the first tick. If the network is already running the live handle is
// returned. Without a surface Start returns ErrNoSurface and does nothing.
func (n *Network) Start() (*Handle, error) {
	if n.handle != nil && n.handle.running {
		return n.handle, nil
	}
	if n.surface == nil {
		n.logger.Warn("particle network disabled", "reason", ErrNoSurface)
		return nil, ErrNoSurface
	}

	h := &Handle{n: n, running: true}
	n.handle = h

	n.surface.Resize()
	if n.env.Resizes != nil {
		h.detachSize = n.env.Resizes.Subscribe(n.surface.Resize)
	}
	h.schedule()

	w, ht := n.surface.Size()
	n.logger.Debug("particle network started", "width", w, "height", ht, "particles", n.field.Len())
	return h, nil
}

// Stop cancels the pending tick and detaches the resize listener. A tick that
// is already executing finishes but schedules nothing further.
func (h *Handle) Stop() {
	if h == nil || !h.running {
		return
	}
	h.running = false

	if h.hasFrame {
		h.n.env.Frames.CancelFrame(h.frame)
		h.hasFrame = false
	}
	if h.detachSize != nil {
		h.detachSize()
		h.detachSize = nil
	}
	h.n.logger.Debug("particle network stopped", "frames", h.n.frames)
}

// Running reports whether the handle's loop is still live.
func (h *Handle) Running() bool {
	return h != nil && h.running
}

func (h *Handle) schedule() {
	h.frame = h.n.env.Frames.RequestFrame(h.tick)
	h.hasFrame = true
}

func (h *Handle) tick() {
	h.hasFrame = false
	if !h.running {
		return
	}
	h.n.step()
	if h.running {
		h.schedule()
	}
}

// step advances and draws one frame. A panic is logged and the frame dropped
// so one bad frame does not end the animation.
func (n *Network) step() {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("particle network frame failed", "frame", n.frames, "panic", r)
		}
	}()

	start := time.Now()
	w, h := n.surface.Size()
	dark := n.env.Theme.Dark()

	n.field.Advance(float64(w), float64(h))
	stats := n.renderer.Draw(n.env.Surface, n.field.view(), dark)
	n.frames++

	if n.hook != nil {
		n.hook(Frame{
			Index:   n.frames,
			Width:   w,
			Height:  h,
			Dark:    dark,
			Stats:   stats,
			Elapsed: time.Since(start),
		})
	}
}

func (n *Network) reseed(width, height int) {
	n.field.Seed(float64(width), float64(height))
	n.logger.Debug("particle field seeded", "width", width, "height", height, "particles", n.field.Len())
}

// Running reports whether the network is animating.
func (n *Network) Running() bool {
	return n.handle.Running()
}

// Particles returns a copy of the current field.
func (n *Network) Particles() []Particle {
	return n.field.Particles()
}

// Size returns the current surface dimensions.
func (n *Network) Size() (int, int) {
	if n.surface == nil {
		return 0, 0
	}
	return n.surface.Size()
}

// Frames returns the number of ticks drawn so far.
func (n *Network) Frames() uint64 {
	return n.frames
}

// Field exposes the particle field, for hosts and tests that place particles.
func (n *Network) Field() *Field {
	return n.field
}
