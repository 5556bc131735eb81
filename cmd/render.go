package cmd

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/olivierh59500/particle-network/network"
	"github.com/olivierh59500/particle-network/raster"
	"github.com/olivierh59500/particle-network/telemetry"
)

type renderOptions struct {
	width, height int
	frames        int
	out           string
	every         int
	dir           string
	stats         string
}

var (
	summaryTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#34d399"))
	summaryLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	summaryBox   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#10b981")).Padding(0, 1)
)

func newRenderCmd(global *globalOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render frames without a window",
		Long: `Render runs the animation headless for a fixed number of frames.

The last frame is written to --out, every Nth frame to --dir when --every is
set, and per-frame statistics to --stats as CSV.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.OutOrStdout(), global, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.width, "width", 0, "surface width in pixels (default from config)")
	flags.IntVar(&opts.height, "height", 0, "surface height in pixels (default from config)")
	flags.IntVar(&opts.frames, "frames", 0, "number of frames to run (default from config)")
	flags.StringVar(&opts.out, "out", "", "PNG file for the last frame")
	flags.IntVar(&opts.every, "every", 0, "write every Nth frame to --dir")
	flags.StringVar(&opts.dir, "dir", "frames", "directory for --every frames")
	flags.StringVar(&opts.stats, "stats", "", "CSV file for per-frame statistics")
	return cmd
}

func (o *renderOptions) resolve(global *globalOptions) error {
	r := global.cfg.Render
	if o.width == 0 {
		o.width = r.Width
	}
	if o.height == 0 {
		o.height = r.Height
	}
	if o.frames == 0 {
		o.frames = r.Frames
	}

	var errs []error
	if o.width <= 0 || o.height <= 0 {
		errs = append(errs, fmt.Errorf("size %dx%d must be positive", o.width, o.height))
	}
	if o.frames <= 0 {
		errs = append(errs, fmt.Errorf("frames %d must be positive", o.frames))
	}
	if o.every < 0 {
		errs = append(errs, fmt.Errorf("every %d must not be negative", o.every))
	}
	return errors.Join(errs...)
}

func runRender(stdout io.Writer, global *globalOptions, opts *renderOptions) (err error) {
	if err := opts.resolve(global); err != nil {
		return err
	}
	params, err := global.cfg.Params()
	if err != nil {
		return err
	}
	logger := global.logger
	background := global.cfg.Background(global.dark)

	var statsOut io.Writer
	if opts.stats != "" {
		f, err := os.Create(opts.stats)
		if err != nil {
			return fmt.Errorf("creating stats file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing stats file: %w", cerr)
			}
		}()
		statsOut = f
	}
	if opts.every > 0 {
		if err := os.MkdirAll(opts.dir, 0o755); err != nil {
			return fmt.Errorf("creating frame directory: %w", err)
		}
	}

	canvas := raster.NewCanvas(opts.width, opts.height)
	recorder := telemetry.NewRecorder(statsOut)
	var frameErr error
	var frames network.FrameQueue

	hook := func(f network.Frame) {
		recorder.Record(f)
		if opts.every > 0 && f.Index%uint64(opts.every) == 0 && frameErr == nil {
			name := filepath.Join(opts.dir, fmt.Sprintf("frame-%06d.png", f.Index))
			frameErr = writePNG(canvas, name, background)
		}
	}

	n, err := network.New(params, network.Env{
		Surface:  canvas,
		Viewport: network.ViewportFunc(func() (int, int) { return opts.width, opts.height }),
		Frames:   &frames,
		Theme:    network.FixedTheme(global.dark),
	}, network.WithLogger(logger), network.WithRand(global.rand()), network.WithFrameHook(hook))
	if err != nil {
		return fmt.Errorf("creating network: %w", err)
	}

	handle, err := n.Start()
	if err != nil {
		return fmt.Errorf("starting network: %w", err)
	}
	defer handle.Stop()

	logger.Info("rendering", "width", opts.width, "height", opts.height, "frames", opts.frames)
	for i := 0; i < opts.frames && frameErr == nil; i++ {
		frames.RunFrame()
	}
	if frameErr != nil {
		return frameErr
	}
	if err := recorder.Err(); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	if opts.out != "" {
		if err := writePNG(canvas, opts.out, background); err != nil {
			return err
		}
	}

	fmt.Fprintln(stdout, renderSummary(recorder.Summary(), opts))
	return nil
}

func writePNG(canvas *raster.Canvas, name string, background color.Color) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", name, cerr)
		}
	}()
	if err := canvas.WritePNG(f, background); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func renderSummary(s telemetry.Summary, opts *renderOptions) string {
	rows := [][2]string{
		{"frames", fmt.Sprint(s.Frames)},
		{"surface", fmt.Sprintf("%dx%d", opts.width, opts.height)},
		{"avg connections", fmt.Sprintf("%.1f", s.AvgConnections)},
		{"max connections", fmt.Sprint(s.MaxConnections)},
		{"avg frame time", s.AvgFrameTime.String()},
		{"max frame time", s.MaxFrameTime.String()},
	}
	if opts.out != "" {
		rows = append(rows, [2]string{"image", opts.out})
	}
	if opts.stats != "" {
		rows = append(rows, [2]string{"stats", opts.stats})
	}

	lines := []string{summaryTitle.Render("particle network render")}
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, summaryLabel.Render(r[0]), r[1]))
	}
	return summaryBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
