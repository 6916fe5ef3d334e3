package cli

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/matjam/vidpaper/internal/cli/cmd/utils"
	"github.com/matjam/vidpaper/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("vidpaper")
		viper.SetConfigType("toml")
		viper.AddConfigPath("$HOME/.config/vidpaper")
		viper.AddConfigPath("/etc/xdg/vidpaper")
	}

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		path, installErr := utils.InstallDefaultConfig(afero.NewOsFs(), utils.ConfigDir())
		if installErr != nil {
			log.Warnf("no config file and the default could not be installed: %v", installErr)
			return
		}
		log.Infof("Installed default config file at %v", path)
		viper.SetConfigFile(path)
		err = viper.ReadInConfig()
	}
	cobra.CheckErr(err)
}
