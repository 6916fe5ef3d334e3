package media

import (
	"errors"
	"os"
	"testing"
)

func TestSingleStrideFallback(t *testing.T) {
	tests := []struct {
		name                      string
		total, width, height, bpp int
		want                      uint32
		wantErr                   bool
	}{
		{name: "tight", total: 1920 * 4 * 1080, width: 1920, height: 1080, bpp: 4, want: 7680},
		{name: "padded", total: 2048 * 1080, width: 500, height: 1080, bpp: 4, want: 2048},
		{name: "too narrow", total: 100 * 10, width: 30, height: 10, bpp: 4, wantErr: true},
		{name: "not divisible", total: 1001, width: 10, height: 10, bpp: 4, wantErr: true},
		{name: "zero height", total: 100, width: 10, height: 0, bpp: 4, wantErr: true},
		{name: "unknown bpp", total: 10 * 10, width: 1000, height: 10, bpp: 0, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SingleStride(tt.total, tt.width, tt.height, tt.bpp)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedLayout) {
					t.Fatalf("err = %v, want ErrUnsupportedLayout", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got %d, %v; want %d", got, err, tt.want)
			}
		})
	}
}

func TestPlaneCountBounds(t *testing.T) {
	for _, n := range []int{0, 5, -1} {
		if _, err := PlaneCount(&VideoMeta{NPlanes: n}, false); !errors.Is(err, ErrUnsupportedLayout) {
			t.Errorf("plane count %d: err = %v", n, err)
		}
	}
	if n, err := PlaneCount(nil, false); err != nil || n != 1 {
		t.Errorf("no meta: %d, %v", n, err)
	}
	if _, err := PlaneCount(nil, true); !errors.Is(err, ErrUnsupportedLayout) {
		t.Errorf("DRM without meta: %v", err)
	}
}

func pipeFD(t *testing.T) int {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return int(r.Fd())
}

func TestResolvePlanesSharedMemory(t *testing.T) {
	fd := pipeFD(t)
	meta := &VideoMeta{NPlanes: 2}
	meta.Offset[1] = 1920 * 1080
	meta.Stride[0], meta.Stride[1] = 1920, 1920

	layouts, err := ResolvePlanes([]Memory{{FD: fd, Size: 1920 * 1080 * 3 / 2}}, meta, 1920, 1080, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(layouts) != 2 {
		t.Fatalf("got %d planes", len(layouts))
	}
	if layouts[1].Offset != 1920*1080 || layouts[1].Stride != 1920 {
		t.Errorf("plane 1 = %+v", layouts[1])
	}

	planes, err := DupPlanes(layouts)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[int]bool{fd: true}
	for i, p := range planes {
		if seen[p.FD()] {
			t.Errorf("plane %d reuses descriptor %d", i, p.FD())
		}
		seen[p.FD()] = true
		if err := p.Close(); err != nil {
			t.Errorf("closing plane %d: %v", i, err)
		}
	}
}

func TestResolvePlanesPerPlaneMemory(t *testing.T) {
	a, b := pipeFD(t), pipeFD(t)
	meta := &VideoMeta{NPlanes: 2}
	meta.Stride[0], meta.Stride[1] = 256, 128
	meta.Offset[1] = 4096

	layouts, err := ResolvePlanes([]Memory{{FD: a, Size: 256 * 64}, {FD: b, Size: 128 * 32}}, meta, 256, 64, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if layouts[0].FD != a || layouts[1].FD != b {
		t.Errorf("memories not mapped in order: %+v", layouts)
	}
	if layouts[1].Offset != 0 || layouts[1].Stride != 128 {
		t.Errorf("per-plane memory must start at 0: %+v", layouts[1])
	}
}

func TestResolvePlanesRejectsMismatch(t *testing.T) {
	fd := pipeFD(t)
	meta := &VideoMeta{NPlanes: 3}
	mems := []Memory{{FD: fd, Size: 10}, {FD: fd, Size: 10}}
	if _, err := ResolvePlanes(mems, meta, 4, 4, 0, false); !errors.Is(err, ErrUnsupportedLayout) {
		t.Fatalf("err = %v", err)
	}
	if _, err := ResolvePlanes(nil, nil, 4, 4, 4, false); !errors.Is(err, ErrUnsupportedLayout) {
		t.Fatalf("no memories: err = %v", err)
	}
}

func TestResolvePlanesWithoutMeta(t *testing.T) {
	fd := pipeFD(t)
	layouts, err := ResolvePlanes([]Memory{{FD: fd, Size: 64 * 4 * 16}}, nil, 64, 16, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(layouts) != 1 || layouts[0].Stride != 256 || layouts[0].Offset != 0 {
		t.Errorf("layouts = %+v", layouts)
	}
}
