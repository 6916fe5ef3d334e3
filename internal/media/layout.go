package media

import (
	"errors"
	"fmt"

	"github.com/matjam/vidpaper/internal/frame"
)

var ErrUnsupportedLayout = errors.New("unsupported dmabuf layout")

// Memory is one dmabuf-backed allocation of a sample buffer. FD belongs to
// the decoder.
type Memory struct {
	FD   int
	Size int
}

// VideoMeta mirrors the plane fields of GstVideoMeta.
type VideoMeta struct {
	NPlanes int
	Offset  [frame.MaxPlanes]uint64
	Stride  [frame.MaxPlanes]int32
}

// PlaneLayout is a plane still referring to the decoder's descriptor.
type PlaneLayout struct {
	FD     int
	Offset uint32
	Stride uint32
}

// PlaneCount is the number of planes to import. Without video meta a single
// plane is assumed, except for DRM caps which carry no implicit layout.
func PlaneCount(meta *VideoMeta, drm bool) (int, error) {
	if meta == nil {
		if drm {
			return 0, fmt.Errorf("%w: %s sample has no video meta", ErrUnsupportedLayout, FormatDRM)
		}
		return 1, nil
	}
	if meta.NPlanes <= 0 || meta.NPlanes > frame.MaxPlanes {
		return 0, fmt.Errorf("%w: plane count %d", ErrUnsupportedLayout, meta.NPlanes)
	}
	return meta.NPlanes, nil
}

// SingleStride derives the stride of a lone plane from its allocation size.
// bpp of zero skips the minimum-stride check.
func SingleStride(total, width, height, bpp int) (uint32, error) {
	if height <= 0 || total < height {
		return 0, fmt.Errorf("%w: %d bytes for height %d", ErrUnsupportedLayout, total, height)
	}
	if total%height != 0 {
		return 0, fmt.Errorf("%w: plane size %d is not divisible by height %d", ErrUnsupportedLayout, total, height)
	}
	stride := total / height
	if bpp > 0 && stride < bpp*width {
		return 0, fmt.Errorf("%w: stride %d is smaller than required %d", ErrUnsupportedLayout, stride, bpp*width)
	}
	return uint32(stride), nil
}

func metaPlane(meta *VideoMeta, i int) (uint32, uint32, error) {
	if i >= frame.MaxPlanes {
		return 0, 0, fmt.Errorf("%w: plane index %d", ErrUnsupportedLayout, i)
	}
	if meta.Offset[i] > 0xffffffff {
		return 0, 0, fmt.Errorf("%w: plane offset %d overflows", ErrUnsupportedLayout, meta.Offset[i])
	}
	if meta.Stride[i] < 0 {
		return 0, 0, fmt.Errorf("%w: plane stride %d", ErrUnsupportedLayout, meta.Stride[i])
	}
	return uint32(meta.Offset[i]), uint32(meta.Stride[i]), nil
}

// ResolvePlanes maps the sample's memories onto planes. One memory is shared
// by every plane at its meta offset; otherwise there must be one memory per
// plane.
func ResolvePlanes(mems []Memory, meta *VideoMeta, width, height, bpp int, drm bool) ([]PlaneLayout, error) {
	n, err := PlaneCount(meta, drm)
	if err != nil {
		return nil, err
	}
	if len(mems) == 0 {
		return nil, fmt.Errorf("%w: sample has no memories", ErrUnsupportedLayout)
	}

	planes := make([]PlaneLayout, 0, n)
	switch {
	case len(mems) == 1:
		for i := 0; i < n; i++ {
			var offset, stride uint32
			if meta != nil {
				if offset, stride, err = metaPlane(meta, i); err != nil {
					return nil, err
				}
			} else if stride, err = SingleStride(mems[0].Size, width, height, bpp); err != nil {
				return nil, err
			}
			planes = append(planes, PlaneLayout{FD: mems[0].FD, Offset: offset, Stride: stride})
		}
	case len(mems) == n:
		for i, m := range mems {
			var stride uint32
			if meta != nil {
				if _, stride, err = metaPlane(meta, i); err != nil {
					return nil, err
				}
			} else if stride, err = SingleStride(m.Size, width, height, bpp); err != nil {
				return nil, err
			}
			planes = append(planes, PlaneLayout{FD: m.FD, Stride: stride})
		}
	default:
		return nil, fmt.Errorf("%w: %d memories for %d planes", ErrUnsupportedLayout, len(mems), n)
	}
	return planes, nil
}

// DupPlanes gives every layout its own close-on-exec descriptor. On error the
// duplicates made so far are closed.
func DupPlanes(layouts []PlaneLayout) ([]*frame.Plane, error) {
	planes := make([]*frame.Plane, 0, len(layouts))
	for _, l := range layouts {
		p, err := frame.DupPlane(l.FD, l.Offset, l.Stride)
		if err != nil {
			for _, done := range planes {
				done.Close()
			}
			return nil, err
		}
		planes = append(planes, p)
	}
	return planes, nil
}
