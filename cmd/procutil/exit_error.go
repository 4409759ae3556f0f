// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"syscall"

	"github.com/invowk/procutil/pkg/sigspec"
	"github.com/invowk/procutil/pkg/types"
)

// ExitError carries a non-zero status out of a RunE handler. The handler
// has already printed whatever the user should see; Execute only exits.
// Signal is set when the status mirrors a child killed by that signal.
type ExitError struct {
	Code   types.ExitCode
	Signal syscall.Signal
	Err    error
}

func (e *ExitError) Error() string {
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Signal != 0:
		if name, ok := sigspec.NameOf(e.Signal); ok {
			return "child killed by signal " + name
		}
		return "child killed by signal " + e.Signal.String()
	default:
		return "exit status " + e.Code.String()
	}
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
