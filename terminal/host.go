// Package terminal hosts the particle network in a terminal using tcell,
// drawing the field with braille dots.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivierh59500/particle-network/config"
	"github.com/olivierh59500/particle-network/network"
)

// Options configures the terminal host.
type Options struct {
	Config    *config.Config
	Dark      bool
	Rand      network.Rand
	Logger    *slog.Logger
	FrameHook func(network.Frame)
}

// Host drives a network on a tcell screen. All methods run on the goroutine
// calling Run.
type Host struct {
	cfg    *config.Config
	screen tcell.Screen
	logger *slog.Logger
	hook   func(network.Frame)

	canvas  *Braille
	frames  network.FrameQueue
	resizes network.Notifier
	net     *network.Network
	handle  *network.Handle
	dark    bool
}

// Run opens the terminal and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	h, err := NewHost(screen, opts)
	if err != nil {
		return err
	}
	return h.Run(ctx)
}

// NewHost wires a network to an initialized screen.
func NewHost(screen tcell.Screen, opts Options) (*Host, error) {
	params, err := opts.Config.Params()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &Host{
		cfg:    opts.Config,
		screen: screen,
		logger: logger,
		hook:   opts.FrameHook,
		canvas: NewBraille(opts.Config.Terminal.DotSize),
		dark:   opts.Dark,
	}

	netOpts := []network.Option{
		network.WithLogger(logger),
		network.WithFrameHook(h.present),
	}
	if opts.Rand != nil {
		netOpts = append(netOpts, network.WithRand(opts.Rand))
	}

	h.net, err = network.New(params, network.Env{
		Surface: h.canvas,
		Viewport: network.ViewportFunc(func() (int, int) {
			return h.canvas.ViewportFor(h.screen.Size())
		}),
		Resizes: &h.resizes,
		Frames:  &h.frames,
		Theme:   network.ThemeFunc(func() bool { return h.dark }),
	}, netOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating network: %w", err)
	}
	return h, nil
}

// Network returns the hosted network.
func (h *Host) Network() *network.Network {
	return h.net
}

// Run starts the network and pumps frames and terminal events until quit.
func (h *Host) Run(ctx context.Context) error {
	h.start()
	defer func() { h.handle.Stop() }()

	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(h.cfg.Terminal.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !h.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			h.frames.RunFrame()
		}
	}
}

func (h *Host) start() {
	handle, err := h.net.Start()
	if err != nil {
		h.logger.Warn("background animation unavailable", "error", err)
		return
	}
	h.handle = handle
}

// handleEvent reports false when the host should exit.
func (h *Host) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q', 'Q':
			return false
		case 't', 'T':
			h.dark = !h.dark
		case ' ':
			if h.handle.Running() {
				h.handle.Stop()
			} else {
				h.start()
			}
		}

	case *tcell.EventResize:
		h.screen.Sync()
		h.resizes.Notify()
	}
	return true
}

// present copies the braille canvas to the screen after each drawn tick.
func (h *Host) present(f network.Frame) {
	bg := h.background()
	bgStyle := tcell.StyleDefault.Background(tcellColor(bg))

	h.screen.Fill(' ', bgStyle)
	cols, rows := h.canvas.CellSize()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cell, ok := h.canvas.Cell(col, row, bg, h.cfg.Terminal.Gain)
			if !ok {
				continue
			}
			h.screen.SetContent(col, row, cell.Rune, nil, bgStyle.Foreground(tcellColor(cell.Color)))
		}
	}
	h.screen.Show()

	if h.hook != nil {
		h.hook(f)
	}
}

func (h *Host) background() colorful.Color {
	bg, _ := colorful.MakeColor(h.cfg.Background(h.dark))
	return bg
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
