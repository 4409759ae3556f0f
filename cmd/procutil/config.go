// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/invowk/procutil/internal/config"
	"github.com/invowk/procutil/internal/issue"

	"github.com/spf13/cobra"
)

// configKeys lists the keys `config set` accepts, in display order.
var configKeys = []string{
	"log.level",
	"ui.color_scheme",
	"ui.verbose",
	"wait.poll_interval",
	"fds.describe",
	"run.forward_signals",
}

// newConfigCommand creates the `procutil config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage procutil configuration",
		Long: `Manage procutil configuration.

Configuration is stored in:
  - Linux: $XDG_CONFIG_HOME/procutil/config.cue (default ~/.config)
  - macOS: ~/Library/Application Support/procutil/config.cue

A config.cue in the working directory is used when the user file is missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := showConfig(cmd.Context(), app); err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return app.fail(cmd, fmt.Errorf("failed to create config: %w", err))
			}
			fmt.Fprintf(app.stdout, "%s Configuration file at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return app.fail(cmd, err)
			}
			path, found, err := config.FilePath(app.loadOptions())
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", path)
			if !found {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("(file does not exist, defaults in use)"))
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a configuration value and save it.\n\nKeys: " + strings.Join(configKeys, ", ") +
			"\n\nrun.forward_signals takes a comma-separated list of signal names.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setConfigValue(cmd.Context(), app, args[0], args[1]); err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), app.loadOptions())
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load(ctx, app.loadOptions())
	if err != nil {
		rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render(app.cfg.UI.ColorScheme.String())
		if renderErr == nil {
			fmt.Fprint(app.stderr, rendered)
		}
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	path, found, pathErr := config.FilePath(app.loadOptions())
	if pathErr == nil && found {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(out, "  level: %s\n", valueStyle.Render(cfg.Log.Level.String()))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(out, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("wait"))
	fmt.Fprintf(out, "  poll_interval: %s\n", valueStyle.Render(cfg.Wait.PollInterval.String()))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("fds"))
	fmt.Fprintf(out, "  describe: %s\n", valueStyle.Render(strconv.FormatBool(cfg.FDs.Describe)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("run"))
	if len(cfg.Run.ForwardSignals) == 0 {
		fmt.Fprintf(out, "  forward_signals: %s\n", SubtitleStyle.Render("(none)"))
	} else {
		fmt.Fprintf(out, "  forward_signals: %s\n", valueStyle.Render(strings.Join(cfg.Run.ForwardSignals, ", ")))
	}

	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	cfg, err := app.Config.Load(ctx, app.loadOptions())
	if err != nil {
		return err
	}

	switch key {
	case "log.level":
		cfg.Log.Level = config.LogLevel(value)
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)
	case "ui.verbose":
		cfg.UI.Verbose = parseBool(value)
	case "wait.poll_interval":
		cfg.Wait.PollInterval = config.PollInterval(value)
	case "fds.describe":
		cfg.FDs.Describe = parseBool(value)
	case "run.forward_signals":
		cfg.Run.ForwardSignals = splitList(value)
	default:
		return fmt.Errorf("%w: %s (valid keys: %s)", errUnknownConfigKey, key, strings.Join(configKeys, ", "))
	}

	if valid, errs := cfg.IsValid(); !valid {
		return errs[0]
	}

	path, _, err := config.FilePath(app.loadOptions())
	if err != nil {
		return err
	}
	if err := config.WriteFile(path, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

func parseBool(s string) bool {
	return s == "true" || s == "1"
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(s string) []string {
	out := []string{}
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
