package scaler

import (
	"bytes"
	"math"
	"testing"

	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/types"
)

func solidFrame(w, h int, px [4]byte) *frame.Frame {
	pixels := make([]byte, w*h*4)
	for i := 0; i < len(pixels); i += 4 {
		copy(pixels[i:], px[:])
	}
	return &frame.Frame{Width: w, Height: h, Stride: w * 4, Pixels: pixels}
}

func TestSampleBilinearAtPixelCentres(t *testing.T) {
	colors := [4][4]byte{
		{10, 20, 30, 255},
		{200, 0, 50, 255},
		{0, 255, 0, 128},
		{90, 90, 250, 255},
	}
	pixels := make([]byte, 0, 16)
	for _, c := range colors {
		pixels = append(pixels, c[:]...)
	}
	f := &frame.Frame{Width: 2, Height: 2, Stride: 8, Pixels: pixels}

	for i, c := range colors {
		x, y := float64(i%2), float64(i/2)
		if got := SampleBilinear(f, x, y); got != c {
			t.Errorf("sample(%v,%v) = %v, want %v", x, y, got, c)
		}
	}

	mid := SampleBilinear(f, 0.5, 0)
	if mid[0] != 105 {
		t.Errorf("midpoint blue = %d, want 105", mid[0])
	}

	if got := SampleBilinear(f, -3, 7); got != colors[2] {
		t.Errorf("clamped sample = %v, want %v", got, colors[2])
	}
}

func TestSourceCropFillMatchesDestinationAspect(t *testing.T) {
	r := SourceCrop(1920, 1080, 1024, 768, types.ScaleModeFill)
	if r.H != 1080 || r.Y != 0 {
		t.Fatalf("crop lost source height: %+v", r)
	}
	if math.Abs(r.W/r.H-4.0/3.0) > 1e-9 {
		t.Errorf("crop aspect %v, want 4/3", r.W/r.H)
	}
	if math.Abs(r.X-240) > 1e-9 {
		t.Errorf("crop not centred: x=%v", r.X)
	}

	tall := SourceCrop(1080, 1920, 1920, 1080, types.ScaleModeFill)
	if tall.W != 1080 || tall.X != 0 {
		t.Fatalf("vertical crop lost source width: %+v", tall)
	}
	if math.Abs(tall.W/tall.H-16.0/9.0) > 1e-9 {
		t.Errorf("vertical crop aspect %v", tall.W/tall.H)
	}
}

func TestSourceCropFullExtentForStretchAndFit(t *testing.T) {
	for _, mode := range []types.ScaleMode{types.ScaleModeStretch, types.ScaleModeFit} {
		r := SourceCrop(640, 480, 1920, 1080, mode)
		if r != (Rect{W: 640, H: 480}) {
			t.Errorf("%s: crop %+v", mode, r)
		}
	}
}

func TestDelegates(t *testing.T) {
	if Delegates(types.ScaleModeFit, true) {
		t.Error("fit must never be delegated")
	}
	if !Delegates(types.ScaleModeFill, true) || !Delegates(types.ScaleModeStretch, true) {
		t.Error("fill and stretch delegate when viewporter is present")
	}
	if Delegates(types.ScaleModeFill, false) {
		t.Error("no delegation without viewporter")
	}
}

func TestBlitFitLeavesBordersBlack(t *testing.T) {
	black := [4]byte{0, 0, 0, 255}
	sizes := []struct{ sw, sh, dw, dh int }{
		{16, 9, 40, 40},
		{3, 2, 10, 10},
		{9, 16, 50, 20},
		{7, 7, 7, 7},
	}
	for _, s := range sizes {
		src := solidFrame(s.sw, s.sh, [4]byte{255, 255, 255, 255})
		dst := make([]byte, s.dw*s.dh*4)
		Blit(src, dst, s.dw, s.dh, types.ScaleModeFit)

		scale := math.Min(float64(s.dw)/float64(s.sw), float64(s.dh)/float64(s.sh))
		w, h := float64(s.sw)*scale, float64(s.sh)*scale
		offX, offY := (float64(s.dw)-w)/2, (float64(s.dh)-h)/2

		for y := 0; y < s.dh; y++ {
			for x := 0; x < s.dw; x++ {
				cx, cy := float64(x)+0.5, float64(y)+0.5
				inside := cx >= offX && cx < offX+w && cy >= offY && cy < offY+h
				var got [4]byte
				copy(got[:], dst[(y*s.dw+x)*4:])
				if !inside && got != black {
					t.Fatalf("%+v: border pixel (%d,%d) = %v", s, x, y, got)
				}
				if inside && got == black {
					t.Fatalf("%+v: picture pixel (%d,%d) is black", s, x, y)
				}
			}
		}
	}
}

func TestBlitFillCoversDestination(t *testing.T) {
	src := solidFrame(16, 9, [4]byte{1, 2, 3, 255})
	dst := make([]byte, 8*6*4)
	Blit(src, dst, 8, 6, types.ScaleModeFill)
	for i := 0; i < len(dst); i += 4 {
		if !bytes.Equal(dst[i:i+4], []byte{1, 2, 3, 255}) {
			t.Fatalf("pixel %d = %v", i/4, dst[i:i+4])
		}
	}
}

func TestBlitStretchSameSizeCopies(t *testing.T) {
	src := solidFrame(4, 4, [4]byte{9, 8, 7, 6})
	src.Pixels[5] = 42
	dst := make([]byte, len(src.Pixels))
	Blit(src, dst, 4, 4, types.ScaleModeStretch)
	if !bytes.Equal(dst, src.Pixels) {
		t.Error("stretch at equal size altered pixels")
	}
}

func TestCopyHonoursSourceStride(t *testing.T) {
	src := &frame.Frame{Width: 2, Height: 2, Stride: 12, Pixels: []byte{
		1, 1, 1, 1, 2, 2, 2, 2, 0xEE, 0xEE, 0xEE, 0xEE,
		3, 3, 3, 3, 4, 4, 4, 4, 0xEE, 0xEE, 0xEE, 0xEE,
	}}
	dst := make([]byte, 16)
	Copy(src, dst, 2, 2)
	want := []byte{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4}
	if !bytes.Equal(dst, want) {
		t.Errorf("Copy = %v", dst)
	}
}

func TestRenderWithoutFrameIsBlack(t *testing.T) {
	dst := bytes.Repeat([]byte{7}, 32)
	Render(dst, nil, 4, 2, types.ScaleModeFill)
	for i := 0; i < len(dst); i += 4 {
		if !bytes.Equal(dst[i:i+4], []byte{0, 0, 0, 255}) {
			t.Fatalf("pixel %d = %v", i/4, dst[i:i+4])
		}
	}
}
