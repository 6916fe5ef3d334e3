package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/vidpaper/internal/cli/cmd/utils"
	"github.com/matjam/vidpaper/internal/ipc"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Get vidpaper status",
		Long:  `Returns the status and latest frame-rate snapshot of a running vidpaper.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			client := ipc.NewClient(ipc.SocketPath(output))
			defer client.Close()

			response, err := client.Status()
			if err != nil {
				log.Errorf("Error requesting status: %v", err)
				return err
			}

			utils.PrintJSONColored(response)
			return nil
		},
	}
	cmd.Flags().String("output", "", "Output the instance was started for")
	return cmd
}
