package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chetbox/jexl-to-string/pkg/watch"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var (
		debounce time.Duration
		write    bool
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-format an expression file whenever it changes",
		Long: `Watch a file of JEXL expressions, one per line, and format it whenever it
changes. The formatted text is printed to stdout, or written back to the file
with --write. Runs until interrupted.

Examples:
  # Print the formatted file on every save
  jexlfmt watch rules.jexl

  # Keep the file itself formatted
  jexlfmt watch --write rules.jexl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flags.formatter(cmd)
			if err != nil {
				return err
			}
			logger := flags.logger(cmd)

			w, err := watch.New(&watch.Config{Path: args[0], DebounceInterval: debounce}, f, logger)
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return w.Watch(ctx, func(r watch.Result) {
				if r.Lines == nil {
					// Unreadable file; already logged.
					return
				}
				text := r.Text()
				if !write {
					fmt.Fprintln(cmd.OutOrStdout(), text)
					return
				}
				current, err := os.ReadFile(r.Path)
				if err == nil && string(current) == text {
					return
				}
				if err := os.WriteFile(r.Path, []byte(text), 0o644); err != nil {
					logger.Error("Writing formatted file failed", "path", r.Path, "error", err)
				}
			})
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "quiet period before re-formatting")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file")
	return cmd
}
