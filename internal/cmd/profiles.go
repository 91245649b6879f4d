package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wpieterse/pipegen/internal/config"
	"github.com/wpieterse/pipegen/internal/pipeline"
	"github.com/wpieterse/pipegen/internal/util"
)

const maxDescriptionWidth = 48

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the available pipeline profiles",
		Long: `List the built-in profiles and the ones defined under "profiles" in the
config file. The active profile is marked with an asterisk.`,
		Args: noArgs,
		RunE: runProfiles,
	}
}

func runProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), renderProfiles(registry.Profiles(), cfg.Profile))
	return nil
}

// renderProfiles lays profiles out as an aligned three-column table.
func renderProfiles(profiles []pipeline.Profile, active string) string {
	rows := make([][3]string, 0, len(profiles))
	for _, p := range profiles {
		name := "  " + p.Name
		if p.Name == active {
			name = "* " + p.Name
		}
		rows = append(rows, [3]string{
			name,
			strings.Join(p.StageNames(), " -> "),
			util.TruncateANSI(p.Description, maxDescriptionWidth),
		})
	}

	header := [3]string{"  NAME", "STAGES", "DESCRIPTION"}
	names := []string{header[0]}
	stages := []string{header[1]}
	for _, r := range rows {
		names = append(names, r[0])
		stages = append(stages, r[1])
	}
	widths := [2]int{util.MaxWidth(names), util.MaxWidth(stages)}

	var sb strings.Builder
	line := func(cells [3]string, style lipgloss.Style) {
		sb.WriteString(style.Render(util.PadANSI(cells[0], widths[0])))
		sb.WriteString("  ")
		sb.WriteString(util.PadANSI(cells[1], widths[1]))
		sb.WriteString("  ")
		sb.WriteString(mutedStyle.Render(cells[2]))
		sb.WriteString("\n")
	}

	sb.WriteString(headerStyle.Render(util.PadANSI(header[0], widths[0]) + "  " +
		util.PadANSI(header[1], widths[1]) + "  " + header[2]))
	sb.WriteString("\n")
	for i, r := range rows {
		style := lipgloss.NewStyle()
		if profiles[i].Name == active {
			style = selectedStyle
		}
		line(r, style)
	}
	return sb.String()
}
