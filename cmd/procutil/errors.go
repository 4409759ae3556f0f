// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/invowk/procutil/internal/config"
	"github.com/invowk/procutil/internal/issue"
	"github.com/invowk/procutil/internal/sigwait"
	"github.com/invowk/procutil/pkg/sigspec"
	"github.com/invowk/procutil/pkg/types"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

const opExecute = "execute program"

// errUnknownConfigKey is returned by `config set` for keys it does not know.
var errUnknownConfigKey = errors.New("unknown configuration key")

// classifyError maps a command failure to its exit code and the issue
// catalog entry that explains it. A zero Id means no catalog entry applies.
func classifyError(err error) (types.ExitCode, issue.Id) {
	var ue *sigwait.UsageError
	var ae *issue.ActionableError

	switch {
	case errors.As(err, &ue):
		if ue.Reason == sigwait.ReasonWaitInProgress {
			return types.ExitUsage, issue.WaitInProgressId
		}
		return types.ExitUsage, issue.NotSignalContextId
	case errors.Is(err, sigwait.ErrInvalidArgument), errors.Is(err, sigspec.ErrInvalidSignalSpec):
		return types.ExitUsage, issue.InvalidSignalId
	case errors.Is(err, types.ErrInvalidFD):
		return types.ExitUsage, issue.BadDescriptorId
	case errors.As(err, &ae) && ae.Issue != 0:
		return types.ExitFailure, ae.Issue
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, errUnknownConfigKey):
		return types.ExitUsage, 0
	case errors.Is(err, unix.EBADF):
		return types.ExitFailure, issue.BadDescriptorId
	case errors.Is(err, os.ErrPermission):
		return types.ExitFailure, issue.PermissionDeniedId
	case errors.Is(err, errors.ErrUnsupported):
		return types.ExitFailure, issue.PlatformNotSupportedId
	default:
		return types.ExitFailure, 0
	}
}

// fail renders err and returns the ExitError the command should return.
func (a *App) fail(cmd *cobra.Command, err error) error {
	code, id := classifyError(err)
	a.renderError(err, id)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: code, Err: err}
}

// renderError prints err to stderr. Verbose mode also prints the issue
// catalog entry for id.
func (a *App) renderError(err error, id issue.Id) {
	fmt.Fprintf(a.stderr, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, a.verbose))
	if !a.verbose || id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(a.cfg.UI.ColorScheme.String())
	if renderErr != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", id, "error", renderErr)
		return
	}
	fmt.Fprint(a.stderr, rendered)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
