// SPDX-License-Identifier: MPL-2.0

//go:build unix && !linux

package sigspec

import "golang.org/x/sys/unix"

// maxSignal is the highest signal number on the BSD family (NSIG - 1).
const maxSignal = 31

var aliases = map[string]unix.Signal{
	"IOT": unix.SIGIOT,
}
