package decode

import (
	"strings"
	"testing"
)

func TestHardwareDecoderCandidatesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, name := range HardwareDecoderCandidates {
		if seen[name] {
			t.Errorf("duplicate candidate %s", name)
		}
		seen[name] = true
	}
	if !seen["vah264dec"] || !seen["vtdec"] {
		t.Errorf("candidate list is missing expected decoders: %v", HardwareDecoderCandidates)
	}
}

func TestBusError(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
		debug   string
		want    string
	}{
		{"with debug", "qtdemux0", "Internal data stream error.", "streaming stopped", "GStreamer error from qtdemux0: Internal data stream error. (streaming stopped)"},
		{"without debug", "playbin", "Resource not found.", "", "GStreamer error from playbin: Resource not found."},
		{"unknown source", "", "boom", "", "GStreamer error from unknown: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := busError(tt.source, tt.message, tt.debug).Error(); got != tt.want {
				t.Errorf("busError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOutputLabel(t *testing.T) {
	if got := outputLabel(""); got != "<auto>" {
		t.Errorf("outputLabel(\"\") = %q", got)
	}
	if got := outputLabel("DP-1"); !strings.Contains(got, "DP-1") {
		t.Errorf("outputLabel(DP-1) = %q", got)
	}
}
