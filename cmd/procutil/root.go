// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/invowk/procutil/internal/config"
	"github.com/invowk/procutil/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the procutil command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "procutil",
		Short: "Inspect file descriptors and wait for signals",
		Long: TitleStyle.Render("procutil") + SubtitleStyle.Render(" - process introspection from the shell") + `

procutil lists the descriptors a process inherited, marks them
close-on-exec, and waits synchronously for signals.

` + SubtitleStyle.Render("Examples:") + `
  procutil fds --long                   Show what this process inherited
  procutil exec --keep 3 -- server      Exec without leaking other descriptors
  procutil wait TERM HUP                Block until SIGTERM or SIGHUP arrives
  procutil run -- make test             Run a child, forwarding termination signals
  procutil config show                  Show current configuration`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.loadConfig(cmd.Context()); err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/procutil/config.cue)")

	rootCmd.AddCommand(
		newFDsCommand(app),
		newCloexecCommand(app),
		newCloexecExceptCommand(app),
		newWaitCommand(app),
		newSignalsCommand(app),
		newExecCommand(app),
		newRunCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// loadConfig loads the configuration and sets up logging from it. A broken
// implicit config file is reported and replaced by defaults; a file named
// with --config must load.
func (a *App) loadConfig(ctx context.Context) error {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		if a.configPath != "" {
			return err
		}
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.verbose))
		cfg = config.DefaultConfig()
	}

	if !a.verbose {
		a.verbose = cfg.UI.Verbose
	}
	a.cfg = cfg

	installLogger(newLogger(a.stderr, cfg.Log.Level, a.verbose))
	applyColorScheme(cfg.UI.ColorScheme)
	return nil
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: types.FilesystemPath(a.configPath)}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the procutil CLI and exits the process. It is called by
// main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(types.ExitFailure))
	}

	// No fang.WithNotifySignal: interrupt must reach `wait` and `run`
	// instead of cancelling the command context.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		// Errors that never reached a RunE come from flag and argument parsing.
		os.Exit(int(types.ExitUsage))
	}
}
