// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/invowk/procutil/internal/issue"
	"github.com/invowk/procutil/pkg/platform"
	"github.com/invowk/procutil/pkg/sigspec"
	"github.com/invowk/procutil/pkg/types"

	"github.com/spf13/cobra"
)

func newRunCommand(app *App) *cobra.Command {
	var (
		forward []string
		host    bool
	)

	cmd := &cobra.Command{
		Use:   "run [--forward signal]... [--host] -- program [args]...",
		Short: "Run a child and forward termination signals to it",
		Long: `Start program as a child process and relay signals that procutil
receives to it until it exits. procutil exits with the child's status, or
128+N when the child was killed by signal N.

The relayed signals come from run.forward_signals in the config file
(TERM, INT, HUP, USR1 and USR2 by default). --forward replaces that list.

With --host, a sandboxed procutil (Flatpak or Snap) starts the program on
the host instead.

Signals that arrive before the child has started are delivered to it as
soon as it starts.`,
		Example: `  procutil run -- make test
  procutil run --forward TERM -- ./server`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := app.cfg.Run.ForwardSpecs()
			if cmd.Flags().Changed("forward") {
				specs = make([]sigspec.Spec, len(forward))
				for i, f := range forward {
					specs[i] = sigspec.Parse(f)
				}
			}
			if host {
				args = platform.HostArgv(args)
			}
			return runChild(cmd, app, args, specs)
		},
	}
	cmd.Flags().StringArrayVar(&forward, "forward", nil, "signal to relay to the child (repeatable)")
	cmd.Flags().BoolVar(&host, "host", false, "run the program on the host when sandboxed")

	return cmd
}

func runChild(cmd *cobra.Command, app *App, argv []string, forward []sigspec.Spec) error {
	child := exec.Command(argv[0], argv[1:]...)
	child.Stdin = os.Stdin
	child.Stdout = app.stdout
	child.Stderr = app.stderr

	relay := &signalRelay{}
	var started bool
	err := app.Traps.WithTrap(forward, relay.handle, func() error {
		if err := child.Start(); err != nil {
			return err
		}
		started = true
		relay.attach(child.Process)
		return child.Wait()
	})

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		childErr := fmt.Errorf("%s: %w", argv[0], err)
		if app.verbose {
			app.renderError(childErr, issue.ChildFailedId)
		}
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		code, sig := childExitCode(exitErr)
		return &ExitError{Code: code, Signal: sig, Err: childErr}
	case !started && !errors.Is(err, sigspec.ErrInvalidSignalSpec):
		return app.fail(cmd, execError(argv[0], err))
	default:
		return app.fail(cmd, err)
	}
}

// signalRelay forwards trapped signals to the child. Signals that arrive
// before the child exists are held and sent by attach.
type signalRelay struct {
	mu      sync.Mutex
	proc    *os.Process
	pending []syscall.Signal
}

func (r *signalRelay) handle(sig syscall.Signal, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.proc == nil {
		slog.Debug("holding signal until the child starts", "signal", name)
		r.pending = append(r.pending, sig)
		return
	}
	r.send(sig, name)
}

func (r *signalRelay) attach(p *os.Process) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proc = p
	for _, sig := range r.pending {
		r.send(sig, sig.String())
	}
	r.pending = nil
}

// send signals the child. r.mu must be held.
func (r *signalRelay) send(sig syscall.Signal, name string) {
	if err := r.proc.Signal(sig); err != nil {
		slog.Debug("relay signal failed", "signal", name, "pid", r.proc.Pid, "error", err)
		return
	}
	slog.Debug("relayed signal", "signal", name, "pid", r.proc.Pid)
}

// childExitCode returns the status procutil exits with for a failed child,
// and the signal that killed it, if any.
func childExitCode(err *exec.ExitError) (types.ExitCode, syscall.Signal) {
	if ws, ok := err.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return types.SignalExitCode(int(ws.Signal())), ws.Signal()
	}
	return types.ExitCode(err.ExitCode()), 0
}
