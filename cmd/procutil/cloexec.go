// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"log/slog"

	"github.com/invowk/procutil/pkg/types"

	"github.com/spf13/cobra"
)

func newCloexecCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cloexec <fd>",
		Short: "Mark a descriptor close-on-exec",
		Long: `Set FD_CLOEXEC on a descriptor of this process. The flag word is
replaced, not merged.

Fails with exit code 2 when fd is not a non-negative number, and with
exit code 1 when the descriptor is not open.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fd, err := types.ParseFD(args[0])
			if err != nil {
				return app.fail(cmd, err)
			}
			if err := app.FDs.SetCloseOnExec(fd); err != nil {
				return app.fail(cmd, err)
			}
			slog.Debug("close-on-exec set", "fd", fd.Int())
			return nil
		},
	}
}

func newCloexecExceptCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cloexec-except <fd>...",
		Short: "Mark every other open descriptor close-on-exec",
		Long: `Set FD_CLOEXEC on every open descriptor of this process except the
ones listed. Standard streams are only kept when listed.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keep, err := parseFDs(args)
			if err != nil {
				return app.fail(cmd, err)
			}
			if err := app.FDs.CloseOnExecAllExcept(keep); err != nil {
				return app.fail(cmd, err)
			}
			slog.Debug("close-on-exec set on all descriptors", "kept", keep)
			return nil
		},
	}
}

// parseFDs parses descriptor arguments, failing on the first invalid one.
func parseFDs(args []string) ([]int, error) {
	fds := make([]int, 0, len(args))
	for _, arg := range args {
		fd, err := types.ParseFD(arg)
		if err != nil {
			return nil, err
		}
		fds = append(fds, fd.Int())
	}
	return fds, nil
}
