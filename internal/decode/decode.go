// Package decode drives GStreamer: it builds the playbin/appsink pipeline that
// feeds the layer-shell renderer, converts samples into frame payloads, and
// plays the windowed waylandsink path.
package decode

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tinyzimmer/go-gst/gst"
)

const CodecHint = "codec hint: install gstreamer, gst-plugins-base, gst-plugins-good, gst-plugins-bad, gst-plugins-ugly and gst-libav"

var logger = log.WithPrefix("decode")

// HardwareDecoderCandidates are raised above every software decoder when
// present.
var HardwareDecoderCandidates = []string{
	"v4l2slh264dec", "v4l2slh265dec", "v4l2slvp9dec", "v4l2slav1dec",
	"v4l2h264dec", "v4l2h265dec", "v4l2vp9dec", "v4l2av1dec",
	"vah264dec", "vah265dec", "vavp9dec", "vaav1dec",
	"vaapih264dec", "vaapih265dec", "vaapivp9dec",
	"nvh264dec", "nvh265dec", "nvav1dec",
	"d3d11h264dec", "d3d11h265dec", "d3d11vp9dec", "d3d11av1dec",
	"qsvh264dec", "qsvh265dec",
	"vtdec",
}

var (
	libavDecoders = []string{"avdec_h264", "avdec_h265", "avdec_vp9", "avdec_av1"}
	av1Decoders   = []string{"dav1ddec", "av1dec", "avdec_av1"}
)

var initOnce sync.Once

// Init initializes GStreamer once per process, raises the rank of the
// available hardware decoders and warns about missing codec plugins. It
// returns the names of the preferred hardware decoders.
func Init() []string {
	initOnce.Do(func() { gst.Init(nil) })

	found := PreferHardwareDecoders()
	WarnCodecRuntime()
	return found
}

// PreferHardwareDecoders raises every available candidate to PRIMARY+512.
func PreferHardwareDecoders() []string {
	found := []string{}
	for _, name := range HardwareDecoderCandidates {
		if raiseRank(name) {
			found = append(found, name)
		}
	}

	if len(found) == 0 {
		logger.Warn("no known hardware decoders detected, using default decoder selection")
	} else {
		logger.Infof("hardware decode preference enabled for %d decoder(s): %s",
			len(found), strings.Join(found, ", "))
	}
	return found
}

// WarnCodecRuntime logs advisories for missing codec plugins.
func WarnCodecRuntime() {
	hasLibav := anyFactory(libavDecoders)
	hasAV1 := anyFactory(av1Decoders)
	if hasLibav && hasAV1 {
		return
	}

	logger.Warn(CodecHint)
	if !hasLibav {
		logger.Warn("no gst-libav ffmpeg decoder was detected")
	}
	if !hasAV1 {
		logger.Warnf("no AV1 decoder detected (%s)", strings.Join(av1Decoders, ", "))
	}
}

func anyFactory(names []string) bool {
	for _, name := range names {
		if hasFactory(name) {
			return true
		}
	}
	return false
}

// busError formats a pipeline error message.
func busError(source, message, debug string) error {
	if source == "" {
		source = "unknown"
	}
	if debug == "" {
		return fmt.Errorf("GStreamer error from %s: %s", source, message)
	}
	return fmt.Errorf("GStreamer error from %s: %s (%s)", source, message, debug)
}

func newElement(factory string, hint string) (*gst.Element, error) {
	el, err := gst.NewElement(factory)
	if err != nil {
		if hint != "" {
			return nil, fmt.Errorf("GStreamer element '%s' is unavailable. %s: %w", factory, hint, err)
		}
		return nil, fmt.Errorf("GStreamer element '%s' is unavailable: %w", factory, err)
	}
	return el, nil
}
