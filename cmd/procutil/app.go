// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/invowk/procutil/internal/config"
	"github.com/invowk/procutil/internal/fdtable"
	"github.com/invowk/procutil/internal/sigwait"
	"github.com/invowk/procutil/internal/traps"
	"github.com/invowk/procutil/pkg/sigspec"
	"github.com/invowk/procutil/pkg/types"

	"golang.org/x/sys/unix"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and goes
	// through its interfaces instead of calling the OS directly.
	App struct {
		Config    ConfigProvider
		FDs       DescriptorTable
		NewWaiter WaiterFactory
		Traps     TrapRegistry
		Exec      ExecFunc
		stdout    io.Writer
		stderr    io.Writer

		// Set by the root command before any subcommand runs.
		cfg        *config.Config
		verbose    bool
		configPath string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		FDs       DescriptorTable
		NewWaiter WaiterFactory
		Traps     TrapRegistry
		Exec      ExecFunc
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// DescriptorTable is the part of *fdtable.Table the commands use.
	DescriptorTable interface {
		ListOpen() []int
		Describe(fds []int) []fdtable.Descriptor
		SetCloseOnExec(fd types.FD) error
		CloseOnExecAllExcept(keep []int) error
	}

	// SignalWaiter blocks until one of the given signals arrives.
	SignalWaiter interface {
		Wait(ctx context.Context, specs ...sigspec.Spec) (sigwait.Fired, error)
	}

	// WaiterFactory builds a SignalWaiter polling at the given interval.
	WaiterFactory func(poll time.Duration) SignalWaiter

	// TrapRegistry installs signal handlers for the duration of body.
	TrapRegistry interface {
		WithTrap(specs []sigspec.Spec, fn traps.HandlerFunc, body func() error) error
	}

	// ExecFunc replaces the current process image. It only returns on failure.
	ExecFunc func(argv0 string, argv, envv []string) error
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.FDs == nil {
		deps.FDs = fdtable.New()
	}
	if deps.NewWaiter == nil {
		deps.NewWaiter = defaultWaiter
	}
	if deps.Traps == nil {
		deps.Traps = traps.NewRegistry()
	}
	if deps.Exec == nil {
		deps.Exec = unix.Exec
	}

	return &App{
		Config:    deps.Config,
		FDs:       deps.FDs,
		NewWaiter: deps.NewWaiter,
		Traps:     deps.Traps,
		Exec:      deps.Exec,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
		cfg:       config.DefaultConfig(),
	}, nil
}

func defaultWaiter(poll time.Duration) SignalWaiter {
	return sigwait.NewWaiter(sigwait.WithPollInterval(poll))
}

// Settings returns the configuration loaded for this invocation.
func (a *App) Settings() *config.Config {
	return a.cfg
}
