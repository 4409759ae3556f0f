// SPDX-License-Identifier: MPL-2.0

//go:build linux

package sigspec

import "golang.org/x/sys/unix"

// maxSignal is the highest signal number the kernel accepts (_NSIG - 1).
const maxSignal = 64

// aliases are secondary names that the unix name table does not carry.
var aliases = map[string]unix.Signal{
	"IOT":  unix.SIGIOT,
	"CLD":  unix.SIGCHLD,
	"POLL": unix.SIGPOLL,
}
