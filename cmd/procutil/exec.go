// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"log/slog"
	"os"
	"os/exec"
	"slices"

	"github.com/invowk/procutil/internal/issue"

	"github.com/spf13/cobra"
)

// stdioFDs are always inherited by exec.
var stdioFDs = []int{0, 1, 2}

func newExecCommand(app *App) *cobra.Command {
	var keep []string

	cmd := &cobra.Command{
		Use:   "exec [--keep fd]... -- program [args]...",
		Short: "Exec a program without leaking descriptors",
		Long: `Mark every open descriptor except stdin, stdout, stderr and the
--keep descriptors close-on-exec, then replace procutil with program.

The program inherits exactly the kept descriptors.`,
		Example: `  procutil exec -- env
  3<config.json procutil exec --keep 3 -- server --config-fd 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kept, err := parseFDs(keep)
			if err != nil {
				return app.fail(cmd, err)
			}
			return execProgram(cmd, app, args, slices.Concat(stdioFDs, kept))
		},
	}
	cmd.Flags().StringArrayVar(&keep, "keep", nil, "descriptor to inherit (repeatable)")

	return cmd
}

func execProgram(cmd *cobra.Command, app *App, argv []string, keep []int) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return app.fail(cmd, execError(argv[0], err))
	}

	if err := app.FDs.CloseOnExecAllExcept(keep); err != nil {
		return app.fail(cmd, err)
	}

	slog.Debug("exec", "path", path, "args", argv[1:], "keep", keep)
	err = app.Exec(path, argv, os.Environ())
	// Descriptors stay marked; procutil exits right after.
	return app.fail(cmd, execError(path, err))
}

func execError(program string, err error) error {
	return issue.NewErrorContext().
		WithOperation(opExecute).
		WithResource(program).
		WithIssue(issue.ExecFailedId).
		WithSuggestion("Check that the program exists and is on your PATH").
		WithSuggestion("Check that the program file is executable").
		Wrap(err).
		BuildError()
}
