package decode

import (
	"errors"
	"fmt"
	"sync"

	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/media"
	"github.com/tinyzimmer/go-gst/gst"
)

var errNotDmabuf = errors.New("sample memory is not dmabuf-backed")

type sampleInfo struct {
	width    int
	height   int
	format   string
	fourcc   uint32
	modifier uint64
	bpp      int
	drm      bool
}

func readSampleInfo(sample *gst.Sample) (sampleInfo, error) {
	caps := sample.GetCaps()
	if caps == nil || caps.GetSize() == 0 {
		return sampleInfo{}, errors.New("sample has no caps")
	}
	st := caps.GetStructureAt(0)

	width, err := intField(st, "width")
	if err != nil {
		return sampleInfo{}, err
	}
	height, err := intField(st, "height")
	if err != nil {
		return sampleInfo{}, err
	}
	format, err := stringField(st, "format")
	if err != nil {
		return sampleInfo{}, err
	}

	info := sampleInfo{width: width, height: height, format: format, bpp: frame.BytesPerPixel}
	if format == media.FormatDRM {
		drm, err := stringField(st, "drm-format")
		if err != nil {
			return sampleInfo{}, err
		}
		if info.fourcc, info.modifier, err = media.ParseDrmFormat(drm); err != nil {
			return sampleInfo{}, err
		}
		info.drm = true
		return info, nil
	}

	fourcc, bpp, ok := media.VideoFormat(format)
	if !ok {
		return sampleInfo{}, fmt.Errorf("unsupported video format %s", format)
	}
	info.fourcc, info.bpp = fourcc, bpp
	info.modifier = frame.ModifierLinear
	if v, err := st.GetValue("modifier"); err == nil {
		if mod, ok := media.ModifierValue(v); ok {
			info.modifier = mod
		}
	}
	return info, nil
}

func intField(st *gst.Structure, name string) (int, error) {
	v, err := st.GetValue(name)
	if err != nil {
		return 0, fmt.Errorf("caps field %s: %w", name, err)
	}
	n, ok := v.(int)
	if !ok || n <= 0 {
		return 0, fmt.Errorf("caps field %s has invalid value %v", name, v)
	}
	return n, nil
}

func stringField(st *gst.Structure, name string) (string, error) {
	v, err := st.GetValue(name)
	if err != nil {
		return "", fmt.Errorf("caps field %s: %w", name, err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("caps field %s is not a string", name)
	}
	return s, nil
}

// sampleRef keeps the decoder's memory alive while the compositor may still
// read from it.
type sampleRef struct {
	once   sync.Once
	sample *gst.Sample
}

func (s *sampleRef) Close() error {
	s.once.Do(func() {
		s.sample.Unref()
		s.sample = nil
	})
	return nil
}

// importSample wraps a dmabuf-backed sample without copying pixels. On
// success the returned payload owns sample.
func importSample(sample *gst.Sample) (*frame.Imported, error) {
	info, err := readSampleInfo(sample)
	if err != nil {
		return nil, err
	}
	buf := sample.GetBuffer()
	if buf == nil {
		return nil, errors.New("sample has no buffer")
	}
	mems, ok := dmabufMemories(buf)
	if !ok || len(mems) == 0 {
		return nil, errNotDmabuf
	}

	layouts, err := media.ResolvePlanes(mems, videoMeta(buf), info.width, info.height, info.bpp, info.drm)
	if err != nil {
		return nil, err
	}
	planes, err := media.DupPlanes(layouts)
	if err != nil {
		return nil, err
	}

	offset, stride := int(planes[0].Offset), int(planes[0].Stride)
	mapper := func() (*frame.Frame, error) {
		return mapPixels(sample, func(data []byte) (*frame.Frame, error) {
			if offset > len(data) {
				return nil, fmt.Errorf("plane offset %d beyond buffer of %d bytes", offset, len(data))
			}
			return newFrameCopy(info.width, info.height, stride, data[offset:])
		})
	}
	return frame.NewImported(info.width, info.height, info.fourcc, info.modifier,
		planes, &sampleRef{sample: sample}, mapper), nil
}

// copySample maps sample and copies its pixels. The stride is derived from
// the mapped size.
func copySample(sample *gst.Sample) (*frame.Frame, error) {
	info, err := readSampleInfo(sample)
	if err != nil {
		return nil, err
	}
	if info.drm {
		return nil, fmt.Errorf("%s samples cannot be copied to CPU memory", media.FormatDRM)
	}
	return mapPixels(sample, func(data []byte) (*frame.Frame, error) {
		stride, err := media.SingleStride(len(data), info.width, info.height, info.bpp)
		if err != nil {
			return nil, err
		}
		return newFrameCopy(info.width, info.height, int(stride), data)
	})
}

func mapPixels(sample *gst.Sample, convert func([]byte) (*frame.Frame, error)) (*frame.Frame, error) {
	buf := sample.GetBuffer()
	if buf == nil {
		return nil, errors.New("sample has no buffer")
	}
	mapped := buf.Map(gst.MapRead)
	if mapped == nil {
		return nil, errors.New("failed to map sample buffer for reading")
	}
	defer buf.Unmap()
	return convert(mapped.Bytes())
}

// newFrameCopy copies the rows of data, which the decoder will reuse.
func newFrameCopy(width, height, stride int, data []byte) (*frame.Frame, error) {
	need := stride*(height-1) + width*frame.BytesPerPixel
	if len(data) < need {
		return nil, fmt.Errorf("sample buffer too small: %d bytes for %dx%d stride %d",
			len(data), width, height, stride)
	}
	pixels := make([]byte, need)
	copy(pixels, data[:need])
	return frame.NewFrame(width, height, stride, pixels)
}
