// SPDX-License-Identifier: MPL-2.0

// Package platform holds OS name constants and sandbox detection used when
// procutil has to reach the host from inside Flatpak or Snap.
package platform
