// SPDX-License-Identifier: MPL-2.0

// Package sigspec resolves user-supplied signal specifications to signal numbers.
//
// A Spec is a tagged variant holding either a platform signal number or a
// signal name. Names are matched case-sensitively against the platform table
// from golang.org/x/sys/unix, with an optional "SIG" prefix stripped before
// lookup. Canonical names are reported without the prefix ("USR1", "TERM").
package sigspec
