// SPDX-License-Identifier: MPL-2.0

//go:build unix

package fdtable

import (
	"math"

	"golang.org/x/sys/unix"
)

// unixSyscaller is the production Syscaller backed by getrlimit and fcntl.
type unixSyscaller struct{}

// TableSize returns the soft RLIMIT_NOFILE, which is what getdtablesize reports.
func (unixSyscaller) TableSize() (int, error) {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return 0, err
	}
	if rl.Cur > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	return int(rl.Cur), nil
}

func (unixSyscaller) DescriptorFlags(fd int) (int, error) {
	return unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
}

func (unixSyscaller) SetDescriptorFlags(fd, flags int) error {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_SETFD, flags)
	return err
}
