// SPDX-License-Identifier: MPL-2.0

// Package syserr reports failed operating-system calls.
//
// An *Error keeps the original errno so callers can match it with
// errors.Is(err, unix.EBADF), and it also matches ErrSystem so the CLI can
// classify it without knowing which call failed.
package syserr

import (
	"errors"
	"fmt"
)

// ErrSystem matches every *Error through errors.Is.
var ErrSystem = errors.New("system error")

// Error is a failed OS call.
type Error struct {
	// Op names the call or operation, e.g. "fcntl F_SETFD".
	Op string
	// Err is the underlying error, normally a unix.Errno.
	Err error
}

// New wraps err as a system error for op. A nil err yields nil.
func New(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the errno and ErrSystem.
func (e *Error) Unwrap() []error {
	return []error{e.Err, ErrSystem}
}
