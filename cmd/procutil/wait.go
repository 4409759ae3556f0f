// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/invowk/procutil/pkg/sigspec"

	"github.com/spf13/cobra"
)

func newWaitCommand(app *App) *cobra.Command {
	var (
		timeout time.Duration
		poll    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait [signal]...",
		Short: "Wait for a signal and print its name",
		Long: `Block until one of the given signals is delivered to procutil, then
print its name without the SIG prefix. Signals without a name print as
"unnamed <n>".

Signals may be given by name (TERM, SIGTERM) or number (15). With no
signals, wait blocks until --timeout expires.

Signals that arrive while waiting are consumed; nothing else sees them.`,
		Example: `  procutil wait TERM INT
  procutil wait --timeout 30s USR1`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("poll-interval") {
				poll = app.cfg.Wait.PollInterval.Duration()
			}
			return waitForSignal(cmd, app, args, timeout, poll)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 waits forever)")
	cmd.Flags().DurationVar(&poll, "poll-interval", 0, "interval between cancellation checks (default from config)")

	return cmd
}

func waitForSignal(cmd *cobra.Command, app *App, args []string, timeout, poll time.Duration) error {
	specs := make([]sigspec.Spec, len(args))
	for i, arg := range args {
		specs[i] = sigspec.Parse(arg)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	slog.Debug("waiting for signals", "signals", args, "timeout", timeout, "poll", poll)
	fired, err := app.NewWaiter(poll).Wait(ctx, specs...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no signal received within %s: %w", timeout, err)
		}
		return app.fail(cmd, err)
	}

	fmt.Fprintln(app.stdout, fired)
	return nil
}
