// Package scaler resamples BGRA frames into surface buffers and computes the
// source rectangle declared to the compositor when it does the scaling.
package scaler

import (
	"math"

	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/types"
)

const bpp = frame.BytesPerPixel

// FillBlack paints dst opaque black.
func FillBlack(dst []byte) {
	for i := 0; i+bpp <= len(dst); i += bpp {
		dst[i] = 0
		dst[i+1] = 0
		dst[i+2] = 0
		dst[i+3] = 255
	}
}

// Render writes f, scaled by mode, into a tightly packed dstW x dstH buffer.
// A nil frame yields black.
func Render(dst []byte, f *frame.Frame, dstW, dstH int, mode types.ScaleMode) {
	if f == nil {
		FillBlack(dst)
		return
	}
	Blit(f, dst, dstW, dstH, mode)
}

// Copy writes f unscaled when it already matches the destination, stretching
// otherwise.
func Copy(f *frame.Frame, dst []byte, dstW, dstH int) {
	if f.Width != dstW || f.Height != dstH {
		Blit(f, dst, dstW, dstH, types.ScaleModeStretch)
		return
	}
	rowLen := dstW * bpp
	if len(dst) < rowLen*dstH {
		FillBlack(dst)
		return
	}
	for y := 0; y < dstH; y++ {
		out := dst[y*rowLen : (y+1)*rowLen]
		start := y * f.Stride
		if start+rowLen > len(f.Pixels) {
			FillBlack(out)
			continue
		}
		copy(out, f.Pixels[start:start+rowLen])
	}
}

// Blit resamples f into dst with bilinear filtering. Fit leaves the area
// outside the scaled picture black; fill crops it.
func Blit(f *frame.Frame, dst []byte, dstW, dstH int, mode types.ScaleMode) {
	if f.Width <= 0 || f.Height <= 0 || dstW <= 0 || dstH <= 0 {
		FillBlack(dst)
		return
	}
	rowLen := dstW * bpp
	if len(dst) < rowLen*dstH {
		FillBlack(dst)
		return
	}

	if mode == types.ScaleModeStretch && f.Width == dstW && f.Height == dstH &&
		f.Stride == rowLen && len(f.Pixels) >= rowLen*dstH {
		copy(dst, f.Pixels[:rowLen*dstH])
		return
	}

	FillBlack(dst)

	srcW, srcH := float64(f.Width), float64(f.Height)
	dw, dh := float64(dstW), float64(dstH)

	var scaleX, scaleY float64
	switch mode {
	case types.ScaleModeStretch:
		scaleX, scaleY = dw/srcW, dh/srcH
	case types.ScaleModeFit:
		s := math.Min(dw/srcW, dh/srcH)
		scaleX, scaleY = s, s
	default:
		s := math.Max(dw/srcW, dh/srcH)
		scaleX, scaleY = s, s
	}
	if scaleX <= 0 || scaleY <= 0 {
		return
	}

	scaledW := srcW * scaleX
	scaledH := srcH * scaleY
	offX := (dw - scaledW) * 0.5
	offY := (dh - scaledH) * 0.5

	cols := make([]tap, dstW)
	for x := range cols {
		center := float64(x) + 0.5
		cols[x] = newTap((center-offX)/scaleX-0.5, f.Width)
		cols[x].skip = mode == types.ScaleModeFit && (center < offX || center >= offX+scaledW)
	}

	for y := 0; y < dstH; y++ {
		center := float64(y) + 0.5
		if mode == types.ScaleModeFit && (center < offY || center >= offY+scaledH) {
			continue
		}
		row := newTap((center-offY)/scaleY-0.5, f.Height)
		out := dst[y*rowLen : (y+1)*rowLen]
		for x := range cols {
			if cols[x].skip {
				continue
			}
			px := interpolate(f, &cols[x], &row)
			copy(out[x*bpp:x*bpp+bpp], px[:])
		}
	}
}

// SampleBilinear returns the filtered pixel at source coordinate (x, y),
// where integer coordinates are pixel centres. Coordinates are clamped to the
// frame.
func SampleBilinear(f *frame.Frame, x, y float64) [bpp]byte {
	col := newTap(x, f.Width)
	row := newTap(y, f.Height)
	return interpolate(f, &col, &row)
}

type tap struct {
	i0, i1 int
	t      float64
	skip   bool
}

func newTap(v float64, size int) tap {
	maxV := float64(size - 1)
	if maxV < 0 {
		maxV = 0
	}
	v = math.Max(0, math.Min(v, maxV))
	i0 := int(math.Floor(v))
	i1 := i0 + 1
	if i1 > size-1 {
		i1 = size - 1
	}
	if i1 < 0 {
		i1 = 0
	}
	return tap{i0: i0, i1: i1, t: v - float64(i0)}
}

func interpolate(f *frame.Frame, col, row *tap) [bpp]byte {
	var out [bpp]byte
	r0 := row.i0 * f.Stride
	r1 := row.i1 * f.Stride
	c0 := col.i0 * bpp
	c1 := col.i1 * bpp
	for ch := 0; ch < bpp; ch++ {
		p00 := pixel(f, r0+c0+ch)
		p10 := pixel(f, r0+c1+ch)
		p01 := pixel(f, r1+c0+ch)
		p11 := pixel(f, r1+c1+ch)

		top := p00 + (p10-p00)*col.t
		bottom := p01 + (p11-p01)*col.t
		v := math.Round(top + (bottom-top)*row.t)
		out[ch] = uint8(math.Max(0, math.Min(v, 255)))
	}
	return out
}

func pixel(f *frame.Frame, i int) float64 {
	if i < 0 || i >= len(f.Pixels) {
		return 0
	}
	return float64(f.Pixels[i])
}
