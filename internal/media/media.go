// Package media holds the GStreamer-independent parts of decoding: source
// naming, appsink caps, DRM format parsing and dmabuf plane layout.
package media

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// BlankURI selects the no-source sentinel.
const BlankURI = "blank://"

// IsBlankSource reports whether input names no video at all.
func IsBlankSource(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "blank", "none", BlankURI:
		return true
	}
	return false
}

// ToURI turns a local path into a canonical file URI. Anything that already
// has a scheme passes through unchanged.
func ToURI(input string) (string, error) {
	if strings.Contains(input, "://") {
		return input, nil
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", input, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
