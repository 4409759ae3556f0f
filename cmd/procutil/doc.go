// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the procutil CLI commands.
//
// Commands receive an *App built by NewApp. The App holds the descriptor
// table, signal waiter, trap registry and configuration provider, so tests
// can substitute any of them through Dependencies.
package cmd
