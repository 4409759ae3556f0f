// SPDX-License-Identifier: MPL-2.0

//go:build unix

package testutil

import (
	"testing"

	"golang.org/x/sys/unix"
)

// MustRawPipe opens a pipe without going through os.File, so the descriptors
// keep the flags the kernel gave them. Both ends are closed when the test ends.
func MustRawPipe(t testing.TB) (r, w int) {
	t.Helper()
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		_ = unix.Close(p[0])
		_ = unix.Close(p[1])
	})
	return p[0], p[1]
}
