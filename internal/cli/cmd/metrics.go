package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/vidpaper/internal/cli/cmd/utils"
	"github.com/matjam/vidpaper/internal/metrics"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func NewMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <file>",
		Short: "Print a frame-rate snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := metrics.ReadSnapshot(afero.NewOsFs(), utils.CanonicalPath(args[0]))
			if err != nil {
				return err
			}
			if snap == nil {
				log.Info("no metrics yet")
				return nil
			}
			utils.PrintJSONColored(snap)
			return nil
		},
	}
}
