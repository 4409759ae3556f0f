// SPDX-License-Identifier: MPL-2.0

//go:build linux

package sigwait

import (
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/invowk/procutil/internal/syserr"

	"golang.org/x/sys/unix"
)

const (
	// maxSignal is _NSIG - 1.
	maxSignal = 64
	// kernelSigsetSize is the sigsetsize argument the kernel expects (_NSIG / 8).
	kernelSigsetSize = 8
	wordBits         = int(unsafe.Sizeof(unix.Sigset_t{}.Val[0])) * 8
)

// Set is a set of signal numbers in the kernel's sigset layout.
type Set struct {
	raw unix.Sigset_t
}

// NewSet returns a set containing exactly sigs.
func NewSet(sigs ...unix.Signal) *Set {
	s := &Set{}
	for _, sig := range sigs {
		s.Add(sig)
	}
	return s
}

// Add inserts sig. Numbers outside 1-64 are ignored.
func (s *Set) Add(sig unix.Signal) {
	if sig < 1 || sig > maxSignal {
		return
	}
	bit := int(sig) - 1
	s.raw.Val[bit/wordBits] |= 1 << uint(bit%wordBits)
}

// Has reports whether sig is in the set.
func (s *Set) Has(sig unix.Signal) bool {
	if sig < 1 || sig > maxSignal {
		return false
	}
	bit := int(sig) - 1
	return s.raw.Val[bit/wordBits]&(1<<uint(bit%wordBits)) != 0
}

// Signals returns the members in ascending order.
func (s *Set) Signals() []unix.Signal {
	var sigs []unix.Signal
	for n := unix.Signal(1); n <= maxSignal; n++ {
		if s.Has(n) {
			sigs = append(sigs, n)
		}
	}
	return sigs
}

// Equal reports whether both sets hold the same signals.
func (s *Set) Equal(o *Set) bool {
	return s.raw == o.raw
}

// CurrentMask returns the signal mask of the calling OS thread. Callers
// comparing masks across calls must hold runtime.LockOSThread.
func CurrentMask() (*Set, error) {
	cur := &Set{}
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, nil, &cur.raw); err != nil {
		return nil, syserr.New("pthread_sigmask", err)
	}
	return cur, nil
}

// WithMask runs fn with the calling thread's mask replaced by set, then
// restores the previous mask whatever fn returns. A failed restore is
// reported only when fn itself succeeded.
func WithMask(set *Set, fn func() error) (err error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var saved unix.Sigset_t
	if err := unix.PthreadSigmask(unix.SIG_SETMASK, &set.raw, &saved); err != nil {
		return syserr.New("pthread_sigmask SIG_SETMASK", err)
	}
	defer func() {
		if rerr := unix.PthreadSigmask(unix.SIG_SETMASK, &saved, nil); rerr != nil {
			slog.Debug("restoring signal mask failed", "error", rerr)
			if err == nil {
				err = syserr.New("restore signal mask", rerr)
			}
		}
	}()

	return fn()
}

// sigtimedwait takes one signal of set from the pending set of the calling
// thread or process, waiting at most timeout.
func sigtimedwait(set *Set, timeout *unix.Timespec) (unix.Signal, error) {
	r, _, errno := unix.Syscall6(
		unix.SYS_RT_SIGTIMEDWAIT,
		uintptr(unsafe.Pointer(&set.raw)),
		0,
		uintptr(unsafe.Pointer(timeout)),
		kernelSigsetSize,
		0, 0,
	)
	if errno != 0 {
		return 0, errno
	}
	return unix.Signal(r), nil
}
