// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath is a path handed to open(2) or stat(2), such as the
	// --config file. It must name something: the zero value is invalid.
	FilesystemPath string

	// InvalidFilesystemPathError is returned when a FilesystemPath cannot
	// be passed to the kernel.
	InvalidFilesystemPathError struct {
		Value  FilesystemPath
		Reason string
	}
)

// String returns the path as given.
func (p FilesystemPath) String() string { return string(p) }

// IsValid rejects blank paths and paths containing a NUL byte, which the
// kernel would silently truncate.
func (p FilesystemPath) IsValid() (bool, []error) {
	switch {
	case strings.TrimSpace(string(p)) == "":
		return false, []error{&InvalidFilesystemPathError{Value: p, Reason: "must be non-empty"}}
	case strings.ContainsRune(string(p), 0):
		return false, []error{&InvalidFilesystemPathError{Value: p, Reason: "contains a NUL byte"}}
	}
	return true, nil
}

func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is() compatibility.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
