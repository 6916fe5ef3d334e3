package utils

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/matjam/vidpaper"
	"github.com/spf13/afero"
	"github.com/tidwall/pretty"
)

func CanonicalPath(path string) string {
	if path == "" {
		return ""
	}

	if path == "~" {
		return os.Getenv("HOME")
	}

	if strings.HasPrefix(path, "~/") {
		homeDir := os.Getenv("HOME")
		return strings.Replace(path, "~", homeDir, 1)
	}

	return path
}

func PrintJSONColored(data interface{}) {
	j, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Errorf("Error marshalling JSON: %v", err)
		return
	}

	jPretty := pretty.Color(j, nil)
	log.Info(string(jPretty))
}

// ConfigDir is $XDG_CONFIG_HOME/vidpaper, or ~/.config/vidpaper.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, vidpaper.AppName)
}

// StateDir is $XDG_STATE_HOME/vidpaper, or ~/.local/state/vidpaper.
func StateDir() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".local", "state")
	}
	return filepath.Join(dir, vidpaper.AppName)
}

// InstallDefaultConfig writes the embedded config template into dir unless a
// config file already exists there.
func InstallDefaultConfig(fs afero.Fs, dir string) (string, error) {
	configPath := filepath.Join(dir, vidpaper.AppName+".toml")

	if _, err := fs.Stat(configPath); err == nil {
		return configPath, errors.New("config file already exists at " + configPath)
	}

	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	if err := afero.WriteFile(fs, configPath, []byte(vidpaper.DefaultConfig), 0644); err != nil {
		return "", err
	}

	return configPath, nil
}

// SetupRotatingLogger sends log output to a daily rotated file in dir.
func SetupRotatingLogger(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	logPath := filepath.Join(dir, vidpaper.AppName+".log")

	writer, err := rotatelogs.New(
		logPath+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationSize(10*1024*1024),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return err
	}

	log.SetOutput(writer)
	return nil
}
