// SPDX-License-Identifier: MPL-2.0

//go:build unix && !linux

package sigwait

import (
	"context"
	"errors"

	"golang.org/x/sys/unix"
)

// MainThread accepts no caller: there is no portable main-thread probe
// outside Linux.
type MainThread struct{}

// IsSignalContext always reports false on this platform.
func (MainThread) IsSignalContext() bool { return false }

func (w *Waiter) wait(context.Context, []unix.Signal) (unix.Signal, error) {
	return 0, errors.ErrUnsupported
}
