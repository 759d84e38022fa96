package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/bnema/winject/internal/backend"
	"github.com/bnema/winject/internal/config"
	"github.com/bnema/winject/internal/ui"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "Show injection backend readiness",
	Long: `Probe every injection backend and report whether its prerequisites are
present: the simulator DLL for the in-process path, plus an AutoHotkey v2
interpreter and the AHK binding for the scripted path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		infos := backend.Probe(backendOptions(cfg))

		var output strings.Builder
		output.WriteString(ui.FormatAppHeader("BACKENDS", fmt.Sprintf("Preference: %s", cfg.Input.Backend)))
		output.WriteString("\n\n")

		rows := [][]string{}
		for _, info := range infos {
			status := "not ready"
			if info.Ready {
				status = "ready"
			}
			rows = append(rows, []string{info.Name, status, info.Details})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(ui.ColorSubtle)).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == 0:
					return lipgloss.NewStyle().
						Foreground(ui.ColorPrimary).
						Bold(true).
						Padding(0, 1)
				case col == 1 && rows[row-1][1] == "ready":
					return lipgloss.NewStyle().
						Foreground(ui.ColorSuccess).
						Bold(true).
						Padding(0, 1)
				case col == 1:
					return lipgloss.NewStyle().
						Foreground(ui.ColorError).
						Padding(0, 1)
				default:
					return lipgloss.NewStyle().
						Foreground(ui.ColorText).
						Padding(0, 1)
				}
			}).
			Headers("BACKEND", "STATUS", "DETAILS").
			Rows(rows...)

		output.WriteString(t.String())
		output.WriteString("\n\n")
		output.WriteString(ui.SubtleStyle.Render("Point WINJECT_SIM_DIR (or input.sim_dir) at the directory holding IbInputSimulator.dll"))
		fmt.Println(output.String())
		return nil
	},
}
