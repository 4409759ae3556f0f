// SPDX-License-Identifier: MPL-2.0

// Package fdtable inspects and adjusts the calling process's file descriptor table.
//
// ListOpen probes every descriptor number below the table size with
// fcntl(F_GETFD) and reports the ones that answer. The probe cannot tell a
// closed descriptor from any other fcntl failure; both are simply omitted.
//
// SetCloseOnExec writes FD_CLOEXEC as the whole descriptor flag word with
// F_SETFD. It does not read and merge the existing flags.
package fdtable
