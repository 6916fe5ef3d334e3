package scaler

import (
	"math"

	"github.com/matjam/vidpaper/internal/types"
)

// Rect is a source rectangle in buffer pixels.
type Rect struct {
	X, Y, W, H float64
}

// Delegates reports whether the compositor may scale for this policy. Fit
// needs letterbox pixels the compositor will not synthesize.
func Delegates(mode types.ScaleMode, viewporter bool) bool {
	return viewporter && mode != types.ScaleModeFit
}

// SourceCrop is the rectangle of a srcW x srcH buffer shown on a dstW x dstH
// surface. Fill crops the centre to the destination aspect ratio; the other
// policies show the whole buffer.
func SourceCrop(srcW, srcH, dstW, dstH int, mode types.ScaleMode) Rect {
	sw := float64(max(srcW, 1))
	sh := float64(max(srcH, 1))

	if mode != types.ScaleModeFill {
		return Rect{W: sw, H: sh}
	}

	dstAspect := float64(max(dstW, 1)) / float64(max(dstH, 1))
	if sw/sh > dstAspect {
		w := clamp(sh*dstAspect, 1, sw)
		return Rect{X: math.Max((sw-w)*0.5, 0), W: w, H: sh}
	}
	h := clamp(sw/dstAspect, 1, sh)
	return Rect{Y: math.Max((sh-h)*0.5, 0), W: sw, H: h}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
