// SPDX-License-Identifier: MPL-2.0

//go:build linux

package sigwait

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/invowk/procutil/internal/syserr"

	"golang.org/x/sys/unix"
)

// MainThread accepts callers running on the process main thread.
type MainThread struct{}

// IsSignalContext reports whether the calling thread is the main thread.
func (MainThread) IsSignalContext() bool {
	return unix.Gettid() == unix.Getpid()
}

func (w *Waiter) wait(ctx context.Context, sigs []unix.Signal) (unix.Signal, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// signal.Notify with no signals means "all signals"; an empty wait set
	// must not register anything.
	notified := make(chan os.Signal, 1)
	if len(sigs) > 0 {
		osSigs := make([]os.Signal, len(sigs))
		for i, sig := range sigs {
			osSigs[i] = sig
		}
		signal.Notify(notified, osSigs...)
		defer signal.Stop(notified)
	}

	set := NewSet(sigs...)
	var fired unix.Signal
	err := WithMask(set, func() error {
		var werr error
		fired, werr = w.pollPending(ctx, set, notified)
		return werr
	})
	return fired, err
}

// pollPending loops over bounded rt_sigtimedwait calls until a signal of
// set is taken, one arrives through notified, or ctx is done.
func (w *Waiter) pollPending(ctx context.Context, set *Set, notified <-chan os.Signal) (unix.Signal, error) {
	timeout := unix.NsecToTimespec(w.poll.Nanoseconds())
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case s := <-notified:
			if sig, ok := s.(syscall.Signal); ok {
				return sig, nil
			}
		default:
		}

		sig, err := sigtimedwait(set, &timeout)
		switch {
		case err == nil:
			return sig, nil
		case errors.Is(err, unix.EAGAIN):
		case errors.Is(err, unix.EINTR):
			slog.Debug("signal wait interrupted, retrying")
		default:
			return 0, syserr.New("rt_sigtimedwait", err)
		}
	}
}
