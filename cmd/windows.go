package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/bnema/winject/internal/ui"
	"github.com/bnema/winject/internal/winman"
)

var (
	windowsTitle string
	windowsAll   bool
	windowsLimit int
)

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List top-level windows",
	Long:  `List top-level windows with their handles, for use with the window tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := winman.List()
		if err != nil {
			return err
		}

		filtered := winman.Apply(all, winman.Filter{
			Title:       windowsTitle,
			VisibleOnly: !windowsAll,
			SkipCloaked: !windowsAll,
			Limit:       windowsLimit,
		})

		var output strings.Builder
		output.WriteString(ui.FormatAppHeader("WINDOWS", fmt.Sprintf("%d of %d shown", len(filtered), len(all))))
		output.WriteString("\n\n")

		rows := [][]string{}
		for _, w := range filtered {
			title := w.Title
			if len(title) > 60 {
				title = title[:57] + "..."
			}
			geometry := fmt.Sprintf("%dx%d at (%d,%d)", w.Rect.Width(), w.Rect.Height(), w.Rect.Left, w.Rect.Top)
			rows = append(rows, []string{winman.FormatHWND(w.HWND), title, w.Class, fmt.Sprintf("%d", w.PID), geometry})
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
				case col == 0:
					return lipgloss.NewStyle().
						Foreground(ui.ColorInfo).
						Padding(0, 1)
				default:
					return lipgloss.NewStyle().
						Foreground(ui.ColorText).
						Padding(0, 1)
				}
			}).
			Headers("HWND", "TITLE", "CLASS", "PID", "GEOMETRY").
			Rows(rows...)

		output.WriteString(t.String())
		fmt.Println(output.String())
		return nil
	},
}

func init() {
	windowsCmd.Flags().StringVarP(&windowsTitle, "title", "t", "", "Filter by title substring")
	windowsCmd.Flags().BoolVarP(&windowsAll, "all", "a", false, "Include invisible and cloaked windows")
	windowsCmd.Flags().IntVarP(&windowsLimit, "limit", "n", 50, "Maximum windows to show")
}
