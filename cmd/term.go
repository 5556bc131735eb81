package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/olivierh59500/particle-network/terminal"
)

func newTermCmd(global *globalOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "term",
		Short: "Run the animation in the terminal",
		Long: `Term draws the particle network with braille characters.

Keys: t toggles the theme, space pauses and resumes, q, Esc or Ctrl-C quit.
The terminal owns stderr while running, so logs go to --log-file or nowhere.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.DiscardHandler)
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: global.level}))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return terminal.Run(ctx, terminal.Options{
				Config: global.cfg,
				Dark:   global.dark,
				Rand:   global.rand(),
				Logger: logger,
			})
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	return cmd
}
