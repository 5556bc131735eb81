package cmd

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/olivierh59500/particle-network/config"
	"github.com/olivierh59500/particle-network/display"
	"github.com/olivierh59500/particle-network/network"
)

var version = "dev"

// SetVersion sets the version reported by the version command and --version.
func SetVersion(v string) {
	version = v
}

// globalOptions holds the persistent flags and what is derived from them
// before any command runs.
type globalOptions struct {
	configPath string
	seed       int64
	theme      string
	logLevel   string

	cfg    *config.Config
	dark   bool
	level  slog.Level
	logger *slog.Logger
}

// Execute runs the command line. This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "particle-network",
		Short: "Animated particle network background",
		Long: `particle-network draws slowly drifting particles that bounce off the
edges of the viewport, joined by faint lines whenever two of them are close.

Without a subcommand it opens a resizable window. Use "term" to run it in the
terminal and "render" to write frames to disk.`,
		Version: version,
		// SilenceUsage is set to true to prevent printing usage message on
		// errors that are not about flags
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return display.Run(display.Options{
				Config: opts.cfg,
				Dark:   opts.dark,
				Rand:   opts.rand(),
				Logger: opts.logger,
			})
		},
	}
	cmd.SetVersionTemplate(`{{printf "particle-network version %s\n" .Version}}`)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML file overriding the embedded defaults")
	flags.Int64Var(&opts.seed, "seed", 0, "random seed for particle placement (0 uses the clock)")
	flags.StringVar(&opts.theme, "theme", "", "color theme, dark or light (default from config)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	cmd.AddCommand(newRenderCmd(opts))
	cmd.AddCommand(newTermCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// load reads the configuration and installs the default logger.
func (o *globalOptions) load(cmd *cobra.Command) error {
	if err := o.level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", o.logLevel, err)
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: o.level}))
	slog.SetDefault(o.logger)

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	switch o.theme {
	case "":
	case config.ThemeDark, config.ThemeLight:
		cfg.Theme = o.theme
	default:
		return fmt.Errorf("invalid --theme %q: must be %q or %q", o.theme, config.ThemeDark, config.ThemeLight)
	}
	o.cfg = cfg
	o.dark = cfg.Dark()

	o.logger.Debug("configuration loaded",
		"path", o.configPath,
		"theme", cfg.Theme,
		"particles", cfg.Network.ParticleCount,
		"seed", o.seed)
	return nil
}

// rand returns the particle placement source for --seed.
func (o *globalOptions) rand() network.Rand {
	seed := o.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
