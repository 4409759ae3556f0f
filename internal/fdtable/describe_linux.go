// SPDX-License-Identifier: MPL-2.0

//go:build linux

package fdtable

import (
	"os"
	"path/filepath"
	"strconv"
)

const procSelfFD = "/proc/self/fd"

// descriptorTarget returns what fd points at ("pipe:[1234]", a path, ...).
// An unreadable link yields "".
func descriptorTarget(fd int) string {
	link, err := os.Readlink(filepath.Join(procSelfFD, strconv.Itoa(fd)))
	if err != nil {
		return ""
	}
	return link
}
