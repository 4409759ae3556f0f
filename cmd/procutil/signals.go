// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/invowk/procutil/pkg/sigspec"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newSignalsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signals",
		Short: "List the signals this platform knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := sigspec.List()
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{strconv.Itoa(int(e.Signal)), e.Name, e.Description}
			}

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("NUM", "NAME", "DESCRIPTION").
				Rows(rows...)
			fmt.Fprintln(app.stdout, t.String())
			return nil
		},
	}
}
