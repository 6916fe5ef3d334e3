package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/matjam/vidpaper/internal/types"
	"github.com/spf13/viper"
)

func TestParseScaleMode(t *testing.T) {
	cases := map[string]types.ScaleMode{
		"":        types.ScaleModeFill,
		"fill":    types.ScaleModeFill,
		"Cover":   types.ScaleModeFill,
		" fit ":   types.ScaleModeFit,
		"contain": types.ScaleModeFit,
		"STRETCH": types.ScaleModeStretch,
	}
	for in, want := range cases {
		got, err := ParseScaleMode(in)
		if err != nil {
			t.Fatalf("ParseScaleMode(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseScaleMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDmabufMode(t *testing.T) {
	cases := map[string]types.DmabufMode{
		"":      types.DmabufAuto,
		"auto":  types.DmabufAuto,
		"on":    types.DmabufOn,
		"TRUE":  types.DmabufOn,
		"1":     types.DmabufOn,
		"yes":   types.DmabufOn,
		"off":   types.DmabufOff,
		"false": types.DmabufOff,
		"0":     types.DmabufOff,
		"No":    types.DmabufOff,
	}
	for in, want := range cases {
		got, err := ParseDmabufMode(in)
		if err != nil {
			t.Fatalf("ParseDmabufMode(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseDmabufMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseBackend(t *testing.T) {
	cases := map[string]types.Backend{
		"":            types.BackendAuto,
		"auto":        types.BackendAuto,
		"gstreamer":   types.BackendGStreamer,
		"layer-shell": types.BackendLayerShell,
		"LayerShell":  types.BackendLayerShell,
	}
	for in, want := range cases {
		got, err := ParseBackend(in)
		if err != nil {
			t.Fatalf("ParseBackend(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseBackend(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParsersRejectUnknownValues(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(string) error
		varName string
	}{
		{"scale", func(v string) error { _, err := ParseScaleMode(v); return err }, "VIDPAPER_SCALE_MODE"},
		{"dmabuf", func(v string) error { _, err := ParseDmabufMode(v); return err }, "VIDPAPER_DMABUF"},
		{"backend", func(v string) error { _, err := ParseBackend(v); return err }, "VIDPAPER_BACKEND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse("sideways")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidValue) {
				t.Errorf("error %v does not wrap ErrInvalidValue", err)
			}
			if !strings.Contains(err.Error(), tt.varName) {
				t.Errorf("error %q does not name %s", err, tt.varName)
			}
			if !strings.Contains(err.Error(), "'sideways'") {
				t.Errorf("error %q does not quote the value", err)
			}
		})
	}
}

func TestDetectBackend(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want types.Backend
	}{
		{"niri socket", map[string]string{"NIRI_SOCKET": "/run/user/1000/niri.sock"}, types.BackendLayerShell},
		{"desktop hint", map[string]string{"XDG_CURRENT_DESKTOP": "niri"}, types.BackendLayerShell},
		{"session hint", map[string]string{"DESKTOP_SESSION": "Hyprland"}, types.BackendLayerShell},
		{"gnome", map[string]string{"XDG_CURRENT_DESKTOP": "GNOME"}, types.BackendGStreamer},
		{"empty", map[string]string{}, types.BackendGStreamer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectBackend(func(k string) string { return tt.env[k] })
			if got != tt.want {
				t.Errorf("DetectBackend = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveFromEnvironment(t *testing.T) {
	t.Setenv("VIDPAPER_SCALE_MODE", "contain")
	t.Setenv("VIDPAPER_DMABUF", "off")
	t.Setenv("VIDPAPER_BACKEND", "auto")

	v := viper.New()
	SetDefaults(v)
	BindEnv(v)

	s, err := Resolve(v, func(k string) string {
		if k == "SWAYSOCK" {
			return "/run/sway.sock"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.ScaleMode != types.ScaleModeFit {
		t.Errorf("scale = %q", s.ScaleMode)
	}
	if s.Dmabuf != types.DmabufOff {
		t.Errorf("dmabuf = %q", s.Dmabuf)
	}
	if s.Backend != types.BackendLayerShell {
		t.Errorf("backend = %q", s.Backend)
	}
	if !s.Loop || !s.Mute || !s.ControlSocket {
		t.Errorf("defaults not applied: %+v", s)
	}
}

func TestResolveRejectsBadEnvironment(t *testing.T) {
	t.Setenv("VIDPAPER_DMABUF", "maybe")

	v := viper.New()
	SetDefaults(v)
	BindEnv(v)

	_, err := Resolve(v, func(string) string { return "" })
	if err == nil || !strings.Contains(err.Error(), "VIDPAPER_DMABUF") {
		t.Fatalf("expected VIDPAPER_DMABUF error, got %v", err)
	}
}
