package network

import (
	"bytes"
	"image/color"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

type circle struct {
	cx, cy, r float64
	c         color.Color
}

type line struct {
	x0, y0, x1, y1, w float64
	c                 color.Color
}

// recordingSurface keeps the draw calls of the last frame.
type recordingSurface struct {
	width, height int
	sizes         [][2]int
	clears        int
	circles       []circle
	lines         []line
	panicOnClear  bool
}

func (s *recordingSurface) SetSize(w, h int) {
	s.width, s.height = w, h
	s.sizes = append(s.sizes, [2]int{w, h})
}

func (s *recordingSurface) Clear() {
	if s.panicOnClear {
		panic("surface lost")
	}
	s.clears++
	s.circles = nil
	s.lines = nil
}

func (s *recordingSurface) FillCircle(cx, cy, r float64, c color.Color) {
	s.circles = append(s.circles, circle{cx, cy, r, c})
}

func (s *recordingSurface) StrokeLine(x0, y0, x1, y1, w float64, c color.Color) {
	s.lines = append(s.lines, line{x0, y0, x1, y1, w, c})
}

type harness struct {
	surface  *recordingSurface
	frames   *FrameQueue
	resizes  *Notifier
	viewport [2]int
	dark     bool
	net      *Network
}

func newHarness(t *testing.T, w, h int, opts ...Option) *harness {
	t.Helper()
	hs := &harness{
		surface:  &recordingSurface{},
		frames:   &FrameQueue{},
		resizes:  &Notifier{},
		viewport: [2]int{w, h},
	}
	env := Env{
		Surface:  hs.surface,
		Viewport: ViewportFunc(func() (int, int) { return hs.viewport[0], hs.viewport[1] }),
		Resizes:  hs.resizes,
		Frames:   hs.frames,
		Theme:    ThemeFunc(func() bool { return hs.dark }),
	}
	opts = append([]Option{WithRand(fixedRand(0.5))}, opts...)
	n, err := New(DefaultParams(), env, opts...)
	require.NoError(t, err)
	hs.net = n
	return hs
}

func TestNewRejectsInvalidParams(t *testing.T) {
	p := DefaultParams()
	p.ConnectionDistance = 0
	_, err := New(p, Env{Viewport: ViewportFunc(func() (int, int) { return 1, 1 }), Frames: &FrameQueue{}})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestNewRequiresHostCollaborators(t *testing.T) {
	_, err := New(DefaultParams(), Env{Frames: &FrameQueue{}})
	assert.Error(t, err)

	_, err = New(DefaultParams(), Env{Viewport: ViewportFunc(func() (int, int) { return 1, 1 })})
	assert.Error(t, err)
}

func TestStartWithoutSurfaceIsNoop(t *testing.T) {
	frames := &FrameQueue{}
	resizes := &Notifier{}
	var logs bytes.Buffer
	n, err := New(DefaultParams(), Env{
		Viewport: ViewportFunc(func() (int, int) { return 800, 600 }),
		Frames:   frames,
		Resizes:  resizes,
	}, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)

	h, err := n.Start()
	assert.ErrorIs(t, err, ErrNoSurface)
	assert.Nil(t, h)
	assert.False(t, n.Running())
	assert.Zero(t, frames.Pending())
	assert.Zero(t, resizes.Len())
	assert.Zero(t, n.Field().Len())
	assert.Contains(t, logs.String(), "particle network disabled")

	// Stopping a nil handle is harmless.
	h.Stop()
}

func TestStartSizesSeedsAndSchedules(t *testing.T) {
	hs := newHarness(t, 800, 600)

	h, err := hs.net.Start()
	require.NoError(t, err)
	assert.True(t, h.Running())

	assert.Equal(t, [][2]int{{800, 600}}, hs.surface.sizes)
	w, ht := hs.net.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, ht)
	assert.Len(t, hs.net.Particles(), DefaultParticleCount)
	assert.Equal(t, 1, hs.frames.Pending())
	assert.Equal(t, 1, hs.resizes.Len())

	// Nothing is drawn before the first frame.
	assert.Zero(t, hs.surface.clears)
}

func TestStartTwiceReturnsLiveHandle(t *testing.T) {
	hs := newHarness(t, 800, 600)

	h1, err := hs.net.Start()
	require.NoError(t, err)
	h2, err := hs.net.Start()
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	assert.Equal(t, 1, hs.frames.Pending())
	assert.Equal(t, 1, hs.resizes.Len())
}

func TestTickAdvancesDrawsAndReschedules(t *testing.T) {
	hs := newHarness(t, 800, 600)
	_, err := hs.net.Start()
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		assert.Equal(t, 1, hs.frames.RunFrame())
		assert.Equal(t, uint64(i), hs.net.Frames())
		assert.Equal(t, 1, hs.frames.Pending())
	}
	assert.Equal(t, 3, hs.surface.clears)
	assert.Len(t, hs.surface.circles, DefaultParticleCount)
}

func TestGoldenFixedPoint(t *testing.T) {
	hs := newHarness(t, 800, 600)
	_, err := hs.net.Start()
	require.NoError(t, err)

	for _, p := range hs.net.Particles() {
		assert.Equal(t, r2.Vec{X: 400, Y: 300}, p.Pos)
		assert.Equal(t, r2.Vec{}, p.Vel)
	}

	hs.frames.RunFrame()

	for _, p := range hs.net.Particles() {
		assert.Equal(t, r2.Vec{X: 400, Y: 300}, p.Pos)
	}
	// All 45 particles coincide, so every pair is connected.
	assert.Len(t, hs.surface.lines, DefaultParticleCount*(DefaultParticleCount-1)/2)
}

func TestThemeIsReadEveryFrame(t *testing.T) {
	hs := newHarness(t, 800, 600)
	_, err := hs.net.Start()
	require.NoError(t, err)
	params := DefaultParams()

	hs.frames.RunFrame()
	require.NotEmpty(t, hs.surface.circles)
	assert.Equal(t, params.Light.Particle, hs.surface.circles[0].c)

	hs.dark = true
	hs.frames.RunFrame()
	assert.Equal(t, params.Dark.Particle, hs.surface.circles[0].c)
	assert.Equal(t, params.Dark.Line, hs.surface.lines[0].c)
}

func TestResizeWhileRunningReseeds(t *testing.T) {
	hs := newHarness(t, 800, 600, WithRand(fixedRand(0.25)))
	h, err := hs.net.Start()
	require.NoError(t, err)

	hs.net.Field().Set([]Particle{{Pos: r2.Vec{X: 1, Y: 1}}})

	hs.viewport = [2]int{200, 100}
	hs.resizes.Notify()

	assert.True(t, h.Running())
	assert.Equal(t, [2]int{200, 100}, hs.surface.sizes[len(hs.surface.sizes)-1])

	ps := hs.net.Particles()
	require.Len(t, ps, DefaultParticleCount)
	for _, p := range ps {
		assert.Equal(t, r2.Vec{X: 50, Y: 25}, p.Pos)
		assert.GreaterOrEqual(t, p.Pos.X, 0.0)
		assert.LessOrEqual(t, p.Pos.X, 200.0)
		assert.GreaterOrEqual(t, p.Pos.Y, 0.0)
		assert.LessOrEqual(t, p.Pos.Y, 100.0)
	}
}

func TestStopCancelsPendingTickAndDetaches(t *testing.T) {
	hs := newHarness(t, 800, 600)
	h, err := hs.net.Start()
	require.NoError(t, err)

	h.Stop()
	assert.False(t, h.Running())
	assert.False(t, hs.net.Running())
	assert.Zero(t, hs.frames.Pending())
	assert.Zero(t, hs.resizes.Len())

	assert.Zero(t, hs.frames.RunFrame())
	assert.Zero(t, hs.net.Frames())

	// Resizes after teardown do not touch the surface.
	sizes := len(hs.surface.sizes)
	hs.resizes.Notify()
	assert.Len(t, hs.surface.sizes, sizes)
}

func TestStopIsIdempotent(t *testing.T) {
	hs := newHarness(t, 800, 600)
	h, err := hs.net.Start()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		h.Stop()
		h.Stop()
	})
	assert.Zero(t, hs.frames.Pending())
}

func TestStopDuringTickDoesNotReschedule(t *testing.T) {
	var h *Handle
	hs := newHarness(t, 800, 600, WithFrameHook(func(Frame) { h.Stop() }))
	var err error
	h, err = hs.net.Start()
	require.NoError(t, err)

	assert.Equal(t, 1, hs.frames.RunFrame())
	assert.Equal(t, uint64(1), hs.net.Frames())
	assert.Zero(t, hs.frames.Pending())
	assert.False(t, hs.net.Running())
}

func TestRestartAfterStop(t *testing.T) {
	hs := newHarness(t, 800, 600)
	h1, err := hs.net.Start()
	require.NoError(t, err)
	h1.Stop()

	h2, err := hs.net.Start()
	require.NoError(t, err)
	assert.NotSame(t, h1, h2)
	assert.True(t, hs.net.Running())
	assert.Equal(t, 1, hs.frames.Pending())
	assert.Equal(t, 1, hs.resizes.Len())

	// The old handle stays stopped and cannot cancel the new loop.
	h1.Stop()
	assert.Equal(t, 1, hs.frames.Pending())
}

func TestPanickingFrameIsLoggedAndLoopContinues(t *testing.T) {
	var logs bytes.Buffer
	hs := newHarness(t, 800, 600, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	_, err := hs.net.Start()
	require.NoError(t, err)

	hs.surface.panicOnClear = true
	assert.NotPanics(t, func() { hs.frames.RunFrame() })
	assert.Contains(t, logs.String(), "particle network frame failed")
	assert.Equal(t, 1, hs.frames.Pending())

	hs.surface.panicOnClear = false
	hs.frames.RunFrame()
	assert.Equal(t, 1, hs.surface.clears)
}

func TestFrameHookReceivesStats(t *testing.T) {
	var got []Frame
	hs := newHarness(t, 640, 480, WithFrameHook(func(f Frame) { got = append(got, f) }))
	hs.dark = true
	_, err := hs.net.Start()
	require.NoError(t, err)

	hs.frames.RunFrame()
	hs.frames.RunFrame()

	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[1].Index)
	assert.Equal(t, 640, got[1].Width)
	assert.Equal(t, 480, got[1].Height)
	assert.True(t, got[1].Dark)
	assert.Equal(t, DefaultParticleCount, got[1].Stats.Particles)
	assert.Equal(t, len(hs.surface.lines), got[1].Stats.Connections)
}

func TestZeroViewportSeedsAtOrigin(t *testing.T) {
	hs := newHarness(t, 0, 0)
	_, err := hs.net.Start()
	require.NoError(t, err)

	ps := hs.net.Particles()
	require.Len(t, ps, DefaultParticleCount)
	for _, p := range ps {
		assert.Equal(t, r2.Vec{}, p.Pos)
	}
	assert.NotPanics(t, func() { hs.frames.RunFrame() })
}
