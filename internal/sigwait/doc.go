// SPDX-License-Identifier: MPL-2.0

// Package sigwait blocks the calling goroutine until one of a set of signals arrives.
//
// Wait pins the goroutine to its OS thread, replaces that thread's signal
// mask with exactly the wait set, and collects the signal with
// rt_sigtimedwait. The previous mask is restored on every return path.
//
// The Go runtime keeps process-directed signals unblocked on its other
// threads, so such deliveries never become pending on the waiting thread.
// Wait therefore also holds a signal.Notify registration for the wait set
// while it blocks; whichever path observes the signal first wins. The
// blocking call uses a short timeout so both paths, and the context, are
// checked regularly. Timeouts and EINTR are retried without surfacing.
//
// Only one goroutine may wait at a time. The injected ContextCheck decides
// which caller is the designated signal context; the default accepts only
// the process main thread, which main packages claim by calling
// runtime.LockOSThread from an init function.
package sigwait
