// Package display hosts the particle network in a desktop window using
// Ebitengine. The window stands in for the page: it is filled with the theme's
// background and the network surface is composited behind everything else.
package display

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/olivierh59500/particle-network/config"
	"github.com/olivierh59500/particle-network/network"
)

// Options configures the window host.
type Options struct {
	Config    *config.Config
	Dark      bool
	Rand      network.Rand        // nil for a time-seeded source
	Logger    *slog.Logger        // nil for slog.Default()
	FrameHook func(network.Frame) // optional, e.g. a telemetry recorder
}

// Game implements ebiten.Game.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger

	canvas  *Canvas
	frames  network.FrameQueue
	resizes network.Notifier
	net     *network.Network
	handle  *network.Handle

	dark           bool
	outerW, outerH int
	resized        bool
}

// NewGame builds the host and starts the network at the configured window
// size.
func NewGame(opts Options) (*Game, error) {
	params, err := opts.Config.Params()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Game{
		cfg:    opts.Config,
		logger: logger,
		canvas: &Canvas{},
		dark:   opts.Dark,
		outerW: opts.Config.Window.Width,
		outerH: opts.Config.Window.Height,
	}

	netOpts := []network.Option{network.WithLogger(logger)}
	if opts.Rand != nil {
		netOpts = append(netOpts, network.WithRand(opts.Rand))
	}
	if opts.FrameHook != nil {
		netOpts = append(netOpts, network.WithFrameHook(opts.FrameHook))
	}

	g.net, err = network.New(params, network.Env{
		Surface:  g.canvas,
		Viewport: network.ViewportFunc(func() (int, int) { return g.outerW, g.outerH }),
		Resizes:  &g.resizes,
		Frames:   &g.frames,
		Theme:    network.ThemeFunc(func() bool { return g.dark }),
	}, netOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating network: %w", err)
	}
	g.start()
	return g, nil
}

func (g *Game) start() {
	h, err := g.net.Start()
	if err != nil {
		// No surface means no animation; the window still shows the page.
		g.logger.Warn("background animation unavailable", "error", err)
		return
	}
	g.handle = h
}

// Update is called each tick by Ebitengine
func (g *Game) Update() error {
	if err := g.handleInput(); err != nil {
		return err
	}

	if g.resized {
		g.resized = false
		g.resizes.Notify()
	}
	g.frames.RunFrame()
	return nil
}

// Draw is called each frame by Ebitengine
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.cfg.Background(g.dark))
	if img := g.canvas.Image(); img != nil {
		screen.DrawImage(img, nil)
	}
}

// Layout follows the window size so the surface always matches the viewport.
// The resize is delivered from the next Update.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.outerW || outsideHeight != g.outerH {
		g.outerW, g.outerH = outsideWidth, outsideHeight
		g.resized = true
	}
	return outsideWidth, outsideHeight
}

// handleInput processes keyboard input
func (g *Game) handleInput() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.dark = !g.dark
		g.logger.Info("theme toggled", "dark", g.dark)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.handle.Running() {
			g.handle.Stop()
		} else {
			g.start()
		}
	}
	return nil
}

// Close stops the network.
func (g *Game) Close() {
	g.handle.Stop()
}

// Run opens the window and blocks until it is closed.
func Run(opts Options) error {
	g, err := NewGame(opts)
	if err != nil {
		return err
	}
	defer g.Close()

	win := opts.Config.Window
	ebiten.SetWindowSize(win.Width, win.Height)
	ebiten.SetWindowTitle(win.Title)
	ebiten.SetTPS(win.TPS)
	if win.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}
