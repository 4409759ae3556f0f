// SPDX-License-Identifier: MPL-2.0

package sigwait

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/invowk/procutil/pkg/sigspec"

	"golang.org/x/sys/unix"
)

// DefaultPollInterval bounds each blocking wait so the context and the
// notify channel are rechecked.
const DefaultPollInterval = 100 * time.Millisecond

// UsageError reasons.
const (
	ReasonNotSignalContext = "called outside the designated signal context"
	ReasonWaitInProgress   = "another wait is already in progress"
)

var (
	// ErrUsage is returned when Wait is called from the wrong context or
	// while another Wait is in progress.
	ErrUsage = errors.New("signal wait usage error")
	// ErrInvalidArgument is returned when a signal spec does not resolve.
	// The underlying *sigspec.InvalidSignalSpecError is also in the chain.
	ErrInvalidArgument = errors.New("invalid argument")
)

type (
	// ContextCheck reports whether the caller is the designated signal context.
	ContextCheck interface {
		IsSignalContext() bool
	}

	// ContextCheckFunc adapts a function to ContextCheck.
	ContextCheckFunc func() bool

	// UsageError describes a violated Wait precondition.
	// It wraps ErrUsage for errors.Is() compatibility.
	UsageError struct {
		Reason string
	}

	// Option configures a Waiter.
	Option func(*Waiter)

	// Waiter waits for signals on behalf of the designated context.
	Waiter struct {
		check ContextCheck
		poll  time.Duration
		busy  atomic.Bool
	}

	// Fired is the signal that ended a Wait.
	Fired struct {
		Signal unix.Signal
		// Name is the canonical name without the SIG prefix.
		Name string
		// Named is false when the platform has no name for Signal.
		Named bool
	}
)

// IsSignalContext calls f.
func (f ContextCheckFunc) IsSignalContext() bool { return f() }

// Error implements the error interface for UsageError.
func (e *UsageError) Error() string { return "signal wait: " + e.Reason }

// Unwrap returns ErrUsage for errors.Is() compatibility.
func (e *UsageError) Unwrap() error { return ErrUsage }

// WithContextCheck replaces the designated-context check.
func WithContextCheck(c ContextCheck) Option {
	return func(w *Waiter) { w.check = c }
}

// WithPollInterval sets the timeout of each blocking wait. Non-positive
// values keep the default.
func WithPollInterval(d time.Duration) Option {
	return func(w *Waiter) {
		if d > 0 {
			w.poll = d
		}
	}
}

// NewWaiter returns a Waiter that accepts the process main thread unless
// another ContextCheck is supplied.
func NewWaiter(opts ...Option) *Waiter {
	w := &Waiter{check: MainThread{}, poll: DefaultPollInterval}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// String returns the name, or "unnamed <n>" when the signal has none.
func (f Fired) String() string {
	if f.Named {
		return f.Name
	}
	return "unnamed " + strconv.Itoa(int(f.Signal))
}

// Wait blocks until one of the signals named by specs is delivered and
// reports which one. An empty spec list blocks until ctx is done.
//
// Precondition failures and bad specs are reported before the signal mask
// is touched.
func (w *Waiter) Wait(ctx context.Context, specs ...sigspec.Spec) (Fired, error) {
	if !w.check.IsSignalContext() {
		return Fired{}, &UsageError{Reason: ReasonNotSignalContext}
	}
	if !w.busy.CompareAndSwap(false, true) {
		return Fired{}, &UsageError{Reason: ReasonWaitInProgress}
	}
	defer w.busy.Store(false)

	sigs, err := sigspec.ResolveAll(specs)
	if err != nil {
		return Fired{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	sig, err := w.wait(ctx, sigs)
	if err != nil {
		return Fired{}, err
	}
	name, named := sigspec.NameOf(sig)
	return Fired{Signal: sig, Name: name, Named: named}, nil
}
