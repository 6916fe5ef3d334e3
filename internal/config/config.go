// Package config resolves playback settings from the config file and the
// VIDPAPER_* environment once at startup.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/matjam/vidpaper/internal/types"
	"github.com/spf13/viper"
)

const EnvPrefix = "VIDPAPER"

const (
	KeyBackend       = "backend"
	KeyScaleMode     = "scale_mode"
	KeyDmabuf        = "dmabuf"
	KeyOutput        = "output"
	KeyLoop          = "loop"
	KeyMute          = "mute"
	KeyMetricsFile   = "metrics_file"
	KeyControlSocket = "control_socket"
	KeyDebug         = "debug"
)

var ErrInvalidValue = errors.New("invalid configuration value")

// InvalidValueError names the offending variable and the accepted literals.
type InvalidValueError struct {
	Key      string
	Value    string
	Expected []string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s value '%s', expected one of: %s",
		EnvName(e.Key), e.Value, strings.Join(e.Expected, ", "))
}

func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

// EnvName returns the environment variable bound to a config key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

// Settings is the resolved, typed configuration handed to the player.
type Settings struct {
	Backend       types.Backend
	ScaleMode     types.ScaleMode
	Dmabuf        types.DmabufMode
	Output        string
	Loop          bool
	Mute          bool
	MetricsFile   string
	ControlSocket bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBackend, string(types.BackendAuto))
	v.SetDefault(KeyScaleMode, string(types.ScaleModeFill))
	v.SetDefault(KeyDmabuf, string(types.DmabufAuto))
	v.SetDefault(KeyOutput, "")
	v.SetDefault(KeyLoop, true)
	v.SetDefault(KeyMute, true)
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeyControlSocket, true)
	v.SetDefault(KeyDebug, false)
}

// BindEnv makes every key readable from its VIDPAPER_* variable.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
}

// Resolve parses every setting held by v. getenv supplies the session hints
// used when the backend is auto.
func Resolve(v *viper.Viper, getenv func(string) string) (Settings, error) {
	backend, err := ParseBackend(v.GetString(KeyBackend))
	if err != nil {
		return Settings{}, err
	}
	if backend == types.BackendAuto {
		backend = DetectBackend(getenv)
		log.Debugf("backend auto-detected as %s", backend)
	}

	scale, err := ParseScaleMode(v.GetString(KeyScaleMode))
	if err != nil {
		return Settings{}, err
	}

	dmabuf, err := ParseDmabufMode(v.GetString(KeyDmabuf))
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Backend:       backend,
		ScaleMode:     scale,
		Dmabuf:        dmabuf,
		Output:        strings.TrimSpace(v.GetString(KeyOutput)),
		Loop:          v.GetBool(KeyLoop),
		Mute:          v.GetBool(KeyMute),
		MetricsFile:   strings.TrimSpace(v.GetString(KeyMetricsFile)),
		ControlSocket: v.GetBool(KeyControlSocket),
	}, nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func ParseBackend(value string) (types.Backend, error) {
	switch normalize(value) {
	case "", "auto":
		return types.BackendAuto, nil
	case "gstreamer", "windowed", "simple":
		return types.BackendGStreamer, nil
	case "layer-shell", "layershell", "layer":
		return types.BackendLayerShell, nil
	}
	return "", &InvalidValueError{
		Key:      KeyBackend,
		Value:    value,
		Expected: []string{"auto", "gstreamer", "layer-shell"},
	}
}

func ParseScaleMode(value string) (types.ScaleMode, error) {
	switch normalize(value) {
	case "", "fill", "cover":
		return types.ScaleModeFill, nil
	case "fit", "contain":
		return types.ScaleModeFit, nil
	case "stretch":
		return types.ScaleModeStretch, nil
	}
	return "", &InvalidValueError{
		Key:      KeyScaleMode,
		Value:    value,
		Expected: []string{"fit", "fill", "stretch"},
	}
}

func ParseDmabufMode(value string) (types.DmabufMode, error) {
	switch normalize(value) {
	case "", "auto":
		return types.DmabufAuto, nil
	case "on", "true", "1", "yes":
		return types.DmabufOn, nil
	case "off", "false", "0", "no":
		return types.DmabufOff, nil
	}
	return "", &InvalidValueError{
		Key:      KeyDmabuf,
		Value:    value,
		Expected: []string{"auto", "on", "off"},
	}
}

var (
	sessionSockets = []string{"NIRI_SOCKET", "SWAYSOCK", "HYPRLAND_INSTANCE_SIGNATURE"}
	sessionVars    = []string{"XDG_CURRENT_DESKTOP", "XDG_SESSION_DESKTOP", "DESKTOP_SESSION"}
	layerShellWMs  = []string{"niri", "sway", "hyprland", "river", "wayfire"}
)

// DetectBackend picks layer-shell on compositors known to implement
// wlr-layer-shell and the windowed sink everywhere else.
func DetectBackend(getenv func(string) string) types.Backend {
	for _, key := range sessionSockets {
		if strings.TrimSpace(getenv(key)) != "" {
			return types.BackendLayerShell
		}
	}
	for _, key := range sessionVars {
		value := strings.ToLower(getenv(key))
		for _, wm := range layerShellWMs {
			if strings.Contains(value, wm) {
				return types.BackendLayerShell
			}
		}
	}
	return types.BackendGStreamer
}
