package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/matjam/vidpaper"
	"github.com/spf13/cobra"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vidpaper version",
		Run: func(cmd *cobra.Command, args []string) {
			babyBlue := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
			yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
			green := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
			log.Infof("%v version %v © 2025 %v",
				babyBlue.Render(vidpaper.AppName),
				green.Render(vidpaper.VersionString()),
				yellow.Render("Nathan Ollerenshaw"))
		},
	}
}
