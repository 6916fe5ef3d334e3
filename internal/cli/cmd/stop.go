package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/vidpaper/internal/ipc"
	"github.com/spf13/cobra"
)

func NewStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a running vidpaper",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			client := ipc.NewClient(ipc.SocketPath(output))
			defer client.Close()

			if err := client.Stop(); err != nil {
				log.Errorf("Failed to send 'stop' command: %v", err)
				return err
			}
			log.Info("Stop command sent")
			return nil
		},
	}
	cmd.Flags().String("output", "", "Output the instance was started for")
	return cmd
}
