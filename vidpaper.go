package vidpaper

import (
	_ "embed"
	"strings"
)

// AppName is used for the layer-shell namespace, socket names and log paths.
const AppName = "vidpaper"

//go:embed VERSION
var Version string

//go:embed vidpaper.toml
var DefaultConfig string

// VersionString returns Version without surrounding whitespace.
func VersionString() string {
	return strings.Trim(Version, "\n\r ")
}
