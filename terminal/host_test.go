package terminal

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivierh59500/particle-network/config"
	"github.com/olivierh59500/particle-network/network"
)

type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(cols, rows)
	t.Cleanup(s.Fini)
	return s
}

func newHost(t *testing.T, s tcell.Screen, hook func(network.Frame)) *Host {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Terminal.FPS = 200

	h, err := NewHost(s, Options{
		Config:    cfg,
		Dark:      true,
		Rand:      fixedRand(0.5),
		Logger:    slog.New(slog.DiscardHandler),
		FrameHook: hook,
	})
	require.NoError(t, err)
	return h
}

func runWithTimeout(t *testing.T, ctx context.Context, h *Host) {
	t.Helper()
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, h.Run(runCtx))
	require.NotErrorIs(t, runCtx.Err(), context.DeadlineExceeded, "host did not stop before the deadline")
}

func TestHostDrawsFieldAsBraille(t *testing.T) {
	s := newSimScreen(t, 40, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := 0
	h := newHost(t, s, func(network.Frame) {
		frames++
		if frames == 3 {
			cancel()
		}
	})
	runWithTimeout(t, ctx, h)

	cells, width, _ := s.GetContents()
	// Every particle sits at the surface center: (160, 80) -> dot (40, 20)
	// -> cell (20, 5).
	center := cells[5*width+20]
	require.NotEmpty(t, center.Runes)
	assert.GreaterOrEqual(t, center.Runes[0], rune(0x2801))
	assert.LessOrEqual(t, center.Runes[0], rune(0x28ff))

	lit := 0
	for _, c := range cells {
		if len(c.Runes) > 0 && c.Runes[0] >= 0x2801 && c.Runes[0] <= 0x28ff {
			lit++
		}
	}
	assert.Equal(t, 1, lit)
	assert.False(t, h.Network().Running())
}

func TestHostQuitsOnKey(t *testing.T) {
	s := newSimScreen(t, 20, 5)
	h := newHost(t, s, nil)

	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	runWithTimeout(t, context.Background(), h)
	assert.False(t, h.Network().Running())
}

func TestHostResizeReseeds(t *testing.T) {
	s := newSimScreen(t, 40, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var h *Host
	frames := 0
	h = newHost(t, s, func(network.Frame) {
		frames++
		switch {
		case frames == 1:
			s.SetSize(20, 5)
			require.NoError(t, s.PostEvent(tcell.NewEventResize(20, 5)))
		case frames > 1:
			if w, ht := h.Network().Size(); w == 160 && ht == 80 {
				cancel()
			}
		}
	})
	runWithTimeout(t, ctx, h)

	w, ht := h.Network().Size()
	assert.Equal(t, 160, w)
	assert.Equal(t, 80, ht)
	for _, p := range h.Network().Particles() {
		assert.Equal(t, 80.0, p.Pos.X)
		assert.Equal(t, 40.0, p.Pos.Y)
	}
}

func TestHandleEventTogglesThemeAndPause(t *testing.T) {
	s := newSimScreen(t, 20, 5)
	h := newHost(t, s, nil)
	h.start()
	defer func() { h.handle.Stop() }()

	assert.True(t, h.handleEvent(tcell.NewEventKey(tcell.KeyRune, 't', tcell.ModNone)))
	assert.False(t, h.dark)

	assert.True(t, h.handleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)))
	assert.False(t, h.Network().Running())
	assert.Zero(t, h.frames.Pending())

	assert.True(t, h.handleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)))
	assert.True(t, h.Network().Running())

	assert.False(t, h.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}
