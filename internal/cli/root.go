/*
Copyright © 2025 Nathan Ollerenshaw <chrome@stupendous.net>
*/
package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/matjam/vidpaper/internal/cli/cmd"
	"github.com/matjam/vidpaper/internal/cli/cmd/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vidpaper",
	Short: "A video wallpaper for Wayland compositors",
	Long: `Vidpaper plays a video as the desktop background, either through a
layer-shell surface on every output or through a fullscreen waylandsink
window.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("debug") {
			log.SetLevel(log.DebugLevel)
			log.SetReportCaller(true)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if v, err := cmd.Flags().GetBool("show-config"); err == nil && v {
			log.Infof("Using config file: %v", viper.ConfigFileUsed())
			log.Infof("All settings:")
			utils.PrintJSONColored(viper.AllSettings())
			return
		}
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RegisterFlags(rootCmd)

	rootCmd.AddCommand(
		cmd.NewPlayCmd(),
		cmd.NewStatusCmd(),
		cmd.NewStopCmd(),
		cmd.NewMetricsCmd(),
		cmd.NewVersionCmd(),
		cmd.NewGenManCmd(rootCmd),
	)
}
