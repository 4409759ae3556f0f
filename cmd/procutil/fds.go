// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newFDsCommand(app *App) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "fds",
		Short: "List open file descriptors",
		Long: `List the file descriptors open in this process, one per line in
ascending order. These are the descriptors procutil inherited from its
parent plus any the runtime opened.

With --long, also show each descriptor's target and close-on-exec state.
Set fds.describe in the config file to make --long the default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("long") {
				long = app.cfg.FDs.Describe
			}
			return listDescriptors(app, long)
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show targets and close-on-exec state")

	return cmd
}

func listDescriptors(app *App, long bool) error {
	fds := app.FDs.ListOpen()
	if !long {
		for _, fd := range fds {
			fmt.Fprintln(app.stdout, fd)
		}
		return nil
	}

	rows := make([][]string, 0, len(fds))
	for _, d := range app.FDs.Describe(fds) {
		target := d.Target
		if target == "" {
			target = "-"
		}
		rows = append(rows, []string{strconv.Itoa(d.FD), yesNo(d.CloseOnExec), target})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("FD", "CLOEXEC", "TARGET").
		Rows(rows...)
	fmt.Fprintln(app.stdout, t.String())
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
