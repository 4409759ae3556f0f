// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/invowk/procutil/internal/config"
	"github.com/invowk/procutil/internal/issue"
	"github.com/invowk/procutil/internal/sigwait"
	"github.com/invowk/procutil/internal/syserr"
	"github.com/invowk/procutil/pkg/sigspec"
	"github.com/invowk/procutil/pkg/types"

	"golang.org/x/sys/unix"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode types.ExitCode
		wantID   issue.Id
	}{
		{
			name:     "wait from wrong context",
			err:      &sigwait.UsageError{Reason: sigwait.ReasonNotSignalContext},
			wantCode: types.ExitUsage,
			wantID:   issue.NotSignalContextId,
		},
		{
			name:     "concurrent wait",
			err:      &sigwait.UsageError{Reason: sigwait.ReasonWaitInProgress},
			wantCode: types.ExitUsage,
			wantID:   issue.WaitInProgressId,
		},
		{
			name:     "invalid signal",
			err:      &sigspec.InvalidSignalSpecError{Spec: sigspec.Name("X"), Reason: "unknown signal name"},
			wantCode: types.ExitUsage,
			wantID:   issue.InvalidSignalId,
		},
		{
			name:     "invalid fd argument",
			err:      &types.InvalidFDError{Value: "x"},
			wantCode: types.ExitUsage,
			wantID:   issue.BadDescriptorId,
		},
		{
			name:     "closed descriptor",
			err:      syserr.New("set close-on-exec on fd 9", unix.EBADF),
			wantCode: types.ExitFailure,
			wantID:   issue.BadDescriptorId,
		},
		{
			name:     "permission",
			err:      fmt.Errorf("open: %w", os.ErrPermission),
			wantCode: types.ExitFailure,
			wantID:   issue.PermissionDeniedId,
		},
		{
			name:     "unsupported",
			err:      errors.ErrUnsupported,
			wantCode: types.ExitFailure,
			wantID:   issue.PlatformNotSupportedId,
		},
		{
			name:     "config load",
			err:      issue.NewErrorContext().WithOperation("load configuration").WithIssue(issue.ConfigLoadFailedId).Wrap(errors.New("bad")).BuildError(),
			wantCode: types.ExitFailure,
			wantID:   issue.ConfigLoadFailedId,
		},
		{
			name:     "invalid config value",
			err:      &config.InvalidConfigError{FieldErrors: []error{&config.InvalidLogLevelError{Value: "loud"}}},
			wantCode: types.ExitUsage,
		},
		{
			name:     "exec",
			err:      execError("prog", unix.ENOEXEC),
			wantCode: types.ExitFailure,
			wantID:   issue.ExecFailedId,
		},
		{
			name:     "exec permission keeps the exec entry",
			err:      execError("prog", os.ErrPermission),
			wantCode: types.ExitFailure,
			wantID:   issue.ExecFailedId,
		},
		{
			name:     "timeout",
			err:      fmt.Errorf("no signal: %w", context.DeadlineExceeded),
			wantCode: types.ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, id := classifyError(tt.err)
			if code != tt.wantCode || id != tt.wantID {
				t.Errorf("classifyError() = (%d, %d), want (%d, %d)", code, id, tt.wantCode, tt.wantID)
			}
			if id != 0 && issue.Get(id) == nil {
				t.Errorf("issue %d is not in the catalog", id)
			}
		})
	}
}

func TestRenderError_VerboseAddsIssue(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	app, err := NewApp(Dependencies{Stdout: &bytes.Buffer{}, Stderr: &stderr})
	if err != nil {
		t.Fatal(err)
	}
	app.cfg.UI.ColorScheme = "notty"

	app.renderError(errors.New("plain"), issue.InvalidSignalId)
	if strings.Contains(stderr.String(), "Invalid signal") {
		t.Errorf("non-verbose output included the issue text:\n%s", stderr.String())
	}

	stderr.Reset()
	app.verbose = true
	app.renderError(errors.New("plain"), issue.InvalidSignalId)
	out := stderr.String()
	if !strings.Contains(out, "Error:") || !strings.Contains(out, "Invalid signal") {
		t.Errorf("verbose output = %q", out)
	}
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	ae := issue.NewErrorContext().
		WithOperation(opExecute).
		WithResource("prog").
		WithSuggestion("Check PATH").
		Wrap(unix.ENOENT).
		BuildError()

	got := formatErrorForDisplay(ae, false)
	if !strings.Contains(got, "failed to execute program: prog") || !strings.Contains(got, "Check PATH") {
		t.Errorf("formatErrorForDisplay() = %q", got)
	}
	if got := formatErrorForDisplay(errors.New("plain"), true); got != "plain" {
		t.Errorf("plain error formatted as %q", got)
	}
}
