// SPDX-License-Identifier: MPL-2.0

package fdtable

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/invowk/procutil/internal/syserr"
	"github.com/invowk/procutil/pkg/types"

	"golang.org/x/sys/unix"
)

// fallbackTableSize is used when the table size cannot be queried.
const fallbackTableSize = 1024

type (
	// Syscaller is the OS surface used by Table. Tests substitute a fake to
	// observe the exact flag values written.
	Syscaller interface {
		// TableSize returns the number of descriptor slots to probe.
		TableSize() (int, error)
		// DescriptorFlags returns the F_GETFD flag word of fd.
		DescriptorFlags(fd int) (int, error)
		// SetDescriptorFlags writes flags as the F_SETFD flag word of fd.
		SetDescriptorFlags(fd, flags int) error
	}

	// Table operates on the descriptor table of the current process.
	Table struct {
		sys Syscaller
	}

	// Descriptor describes one open descriptor.
	Descriptor struct {
		FD int
		// Target is the /proc link target; empty when unavailable.
		Target string
		// CloseOnExec reports whether FD_CLOEXEC is set.
		CloseOnExec bool
	}
)

// New returns a Table backed by the real OS calls.
func New() *Table {
	return &Table{sys: unixSyscaller{}}
}

// NewWithSyscaller returns a Table backed by sys.
func NewWithSyscaller(sys Syscaller) *Table {
	return &Table{sys: sys}
}

// Size returns the descriptor table size, falling back to 1024 when the
// limit cannot be read.
func (t *Table) Size() int {
	n, err := t.sys.TableSize()
	if err != nil {
		slog.Debug("descriptor table size unavailable, using fallback", "error", err, "fallback", fallbackTableSize)
		return fallbackTableSize
	}
	return n
}

// IsOpen reports whether the F_GETFD probe on fd succeeds.
func (t *Table) IsOpen(fd int) bool {
	_, err := t.sys.DescriptorFlags(fd)
	return err == nil
}

// ListOpen returns the open descriptors in ascending order.
func (t *Table) ListOpen() []int {
	size := t.Size()
	open := []int{}
	for fd := 0; fd < size; fd++ {
		if t.IsOpen(fd) {
			open = append(open, fd)
		}
	}
	return open
}

// SetCloseOnExec sets FD_CLOEXEC as the complete flag word of fd.
func (t *Table) SetCloseOnExec(fd types.FD) error {
	if err := t.sys.SetDescriptorFlags(fd.Int(), unix.FD_CLOEXEC); err != nil {
		return syserr.New(fmt.Sprintf("set close-on-exec on fd %d", fd), err)
	}
	return nil
}

// CloseOnExec reports whether FD_CLOEXEC is set on fd.
func (t *Table) CloseOnExec(fd types.FD) (bool, error) {
	flags, err := t.sys.DescriptorFlags(fd.Int())
	if err != nil {
		return false, syserr.New(fmt.Sprintf("get descriptor flags of fd %d", fd), err)
	}
	return flags&unix.FD_CLOEXEC != 0, nil
}

// CloseOnExecAllExcept sets close-on-exec on every open descriptor that is
// not listed in keep. It stops at the first failure.
func (t *Table) CloseOnExecAllExcept(keep []int) error {
	for _, fd := range t.ListOpen() {
		if slices.Contains(keep, fd) {
			continue
		}
		if err := t.SetCloseOnExec(types.FD(fd)); err != nil {
			return err
		}
	}
	return nil
}

// Describe returns target and close-on-exec state for each of fds.
// Descriptors that are no longer open are skipped.
func (t *Table) Describe(fds []int) []Descriptor {
	out := make([]Descriptor, 0, len(fds))
	for _, fd := range fds {
		flags, err := t.sys.DescriptorFlags(fd)
		if err != nil {
			continue
		}
		out = append(out, Descriptor{
			FD:          fd,
			Target:      descriptorTarget(fd),
			CloseOnExec: flags&unix.FD_CLOEXEC != 0,
		})
	}
	return out
}
