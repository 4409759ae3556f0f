// SPDX-License-Identifier: MPL-2.0

package platform

// OS name constants for runtime.GOOS comparisons.
const (
	Darwin = "darwin"
	Linux  = "linux"
)
