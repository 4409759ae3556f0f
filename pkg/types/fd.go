// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidFD is the sentinel error wrapped by InvalidFDError.
var ErrInvalidFD = errors.New("invalid file descriptor")

type (
	// FD represents a file descriptor number in the current process table.
	// Descriptor numbers are non-negative; whether the descriptor is open
	// is a runtime property checked by the OS, not by Validate.
	FD int

	// InvalidFDError is returned when an FD value is negative or cannot be
	// parsed as a decimal descriptor number.
	InvalidFDError struct {
		Value string
	}
)

// ParseFD parses a decimal descriptor number and validates it.
func ParseFD(s string) (FD, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &InvalidFDError{Value: s}
	}
	fd := FD(n)
	if err := fd.Validate(); err != nil {
		return 0, err
	}
	return fd, nil
}

// String returns the decimal string representation of the FD.
func (fd FD) String() string { return strconv.Itoa(int(fd)) }

// Int returns the descriptor as a plain int for syscall arguments.
func (fd FD) Int() int { return int(fd) }

// Validate returns an error if the FD is negative.
func (fd FD) Validate() error {
	if fd < 0 {
		return &InvalidFDError{Value: fd.String()}
	}
	return nil
}

// IsStandard reports whether fd is stdin, stdout or stderr.
func (fd FD) IsStandard() bool { return fd >= 0 && fd <= 2 }

// Error implements the error interface for InvalidFDError.
func (e *InvalidFDError) Error() string {
	return fmt.Sprintf("invalid file descriptor %q: must be a non-negative integer", e.Value)
}

// Unwrap returns ErrInvalidFD for errors.Is() compatibility.
func (e *InvalidFDError) Unwrap() error { return ErrInvalidFD }
