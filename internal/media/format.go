package media

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matjam/vidpaper/internal/frame"
)

// FormatDRM is the video format name of caps carrying a drm-format field.
const FormatDRM = "DMA_DRM"

var ErrBadDrmFormat = errors.New("invalid drm-format")

// VideoFormat maps a GStreamer video format name to its DRM fourcc.
func VideoFormat(name string) (fourcc uint32, bpp int, ok bool) {
	switch strings.ToUpper(name) {
	case "BGRA":
		return frame.FormatARGB8888, 4, true
	case "BGRX":
		return frame.FormatXRGB8888, 4, true
	}
	return 0, 0, false
}

// ParseDrmFormat parses "FOURCC" or "FOURCC:MODIFIER". A missing modifier is
// linear.
func ParseDrmFormat(value string) (uint32, uint64, error) {
	code, mod, hasMod := strings.Cut(strings.TrimSpace(value), ":")
	if len(code) != 4 {
		return 0, 0, fmt.Errorf("%w %q: fourcc must be four characters", ErrBadDrmFormat, value)
	}
	fourcc := frame.Fourcc(code[0], code[1], code[2], code[3])
	if !hasMod {
		return fourcc, frame.ModifierLinear, nil
	}
	modifier, ok := parseModifier(mod)
	if !ok {
		return 0, 0, fmt.Errorf("%w %q: bad modifier", ErrBadDrmFormat, value)
	}
	return fourcc, modifier, nil
}

// DrmFormatModifier extracts only the modifier of a drm-format string.
func DrmFormatModifier(value string) (uint64, bool) {
	_, mod, ok := strings.Cut(value, ":")
	if !ok {
		return 0, false
	}
	return parseModifier(mod)
}

func parseModifier(s string) (uint64, bool) {
	if hex, ok := strings.CutPrefix(s, "0x"); ok {
		v, err := strconv.ParseUint(hex, 16, 64)
		return v, err == nil
	}
	if hex, ok := strings.CutPrefix(s, "0X"); ok {
		v, err := strconv.ParseUint(hex, 16, 64)
		return v, err == nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	return v, err == nil
}

// ModifierValue accepts a caps "modifier" field, which elements publish as
// either unsigned or signed 64-bit.
func ModifierValue(v any) (uint64, bool) {
	switch m := v.(type) {
	case uint64:
		return m, true
	case uint:
		return uint64(m), true
	case int64:
		if m >= 0 {
			return uint64(m), true
		}
	case int:
		if m >= 0 {
			return uint64(m), true
		}
	case string:
		return parseModifier(m)
	}
	return 0, false
}
