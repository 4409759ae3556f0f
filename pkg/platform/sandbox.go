// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"slices"
	"sync"
)

const (
	// SandboxNone means no sandbox was detected.
	SandboxNone SandboxType = ""
	// SandboxFlatpak is a Flatpak sandbox (/.flatpak-info exists).
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap is a Snap confinement (SNAP_NAME is set).
	SandboxSnap SandboxType = "snap"
)

// SandboxType identifies the application sandbox, if any.
type SandboxType string

// detectOnce must not panic: sync.OnceValue re-panics on every call.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// DetectSandbox returns the sandbox the process runs in. The result is
// cached for the lifetime of the process.
func DetectSandbox() SandboxType {
	return detectOnce()
}

// HostArgv returns argv prefixed with the command that runs it on the host
// when procutil is sandboxed. Outside a sandbox argv is returned as is.
func HostArgv(argv []string) []string {
	return HostArgvFor(DetectSandbox(), argv)
}

// HostArgvFor is HostArgv for an explicit sandbox type.
func HostArgvFor(st SandboxType, argv []string) []string {
	switch st {
	case SandboxFlatpak:
		return slices.Concat([]string{"flatpak-spawn", "--host"}, argv)
	case SandboxSnap:
		return slices.Concat([]string{"snap", "run", "--shell"}, argv)
	default:
		return argv
	}
}

func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	// Flatpak takes precedence.
	if err := statFile("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}
	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
