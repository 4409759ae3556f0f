// SPDX-License-Identifier: MPL-2.0

//go:build unix && !linux

package fdtable

// descriptorTarget is unavailable without procfs.
func descriptorTarget(int) string { return "" }
