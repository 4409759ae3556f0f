// SPDX-License-Identifier: MPL-2.0

// Package traps lets several independent handlers share one signal.
//
// The first handler registered for a signal installs a signal.Notify
// channel for it; removing the last handler stops that channel, which puts
// the signal back to whatever delivery behavior it had before. Handlers run
// on a single dispatcher goroutine in registration order. Deliveries are
// queued, so a slow handler delays later deliveries instead of dropping them.
package traps
