// SPDX-License-Identifier: MPL-2.0

package cmd

import "runtime"

// The main goroutine stays on the main thread so `procutil wait` runs in
// the context sigwait.MainThread accepts.
func init() {
	runtime.LockOSThread()
}
