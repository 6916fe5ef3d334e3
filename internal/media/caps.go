package media

import (
	"strings"

	"github.com/matjam/vidpaper/internal/types"
)

// FeatureDMABuf is the caps feature of dmabuf-backed memory.
const FeatureDMABuf = "memory:DMABuf"

const (
	capsDrm        = "video/x-raw(" + FeatureDMABuf + "),format=DMA_DRM"
	capsDmabufBGRA = "video/x-raw(" + FeatureDMABuf + "),format=BGRA"
	capsCPU        = "video/x-raw,format=BGRA"
)

// CapsString is the appsink caps for mode, most preferred structure first:
// generic DRM, then dmabuf BGRA, then system-memory BGRA when zero-copy is
// optional.
func CapsString(mode types.DmabufMode) string {
	switch mode {
	case types.DmabufOff:
		return capsCPU
	case types.DmabufOn:
		return strings.Join([]string{capsDrm, capsDmabufBGRA}, "; ")
	default:
		return strings.Join([]string{capsDrm, capsDmabufBGRA, capsCPU}, "; ")
	}
}
