// Package frame holds decoded pictures and the single-slot mailbox that hands
// them from the decode loop to the renderer.
package frame

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// BytesPerPixel of every CPU frame. Pixels are stored B, G, R, A.
const BytesPerPixel = 4

// MaxPlanes is the largest plane count an imported buffer may carry.
const MaxPlanes = 4

var ErrNotMappable = errors.New("imported frame cannot be mapped to CPU memory")

// Payload is either a *Frame or an *Imported. Holders of a payload own one
// reference and must call Release exactly once.
type Payload interface {
	Size() (width, height int)
	Retain()
	Release()
	payload()
}

// Frame is a CPU picture. It is never mutated after construction, so sharing
// it between goroutines needs no reference counting.
type Frame struct {
	Width  int
	Height int
	Stride int
	Pixels []byte
}

// NewFrame validates the layout of pixels before wrapping them.
func NewFrame(width, height, stride int, pixels []byte) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if stride < width*BytesPerPixel {
		return nil, fmt.Errorf("stride %d is smaller than row size %d", stride, width*BytesPerPixel)
	}
	if len(pixels) < stride*(height-1)+width*BytesPerPixel {
		return nil, fmt.Errorf("frame buffer too small: %d bytes for %dx%d stride %d",
			len(pixels), width, height, stride)
	}
	return &Frame{Width: width, Height: height, Stride: stride, Pixels: pixels}, nil
}

func (f *Frame) Size() (int, int) { return f.Width, f.Height }
func (f *Frame) Retain()          {}
func (f *Frame) Release()         {}
func (f *Frame) payload()         {}

// Row returns the visible bytes of row y.
func (f *Frame) Row(y int) []byte {
	start := y * f.Stride
	return f.Pixels[start : start+f.Width*BytesPerPixel]
}

// Imported is a decoder-owned zero-copy buffer described by its planes. The
// keepalive (the decoder sample) is closed together with the planes when the
// last reference is released.
type Imported struct {
	Width    int
	Height   int
	Format   uint32
	Modifier uint64
	Planes   []*Plane

	keepalive io.Closer
	mapper    func() (*Frame, error)
	refs      atomic.Int32

	cpuOnce sync.Once
	cpu     *Frame
	cpuErr  error
}

// NewImported takes ownership of planes and keepalive. mapper, when non-nil,
// copies the buffer contents into a CPU frame.
func NewImported(width, height int, format uint32, modifier uint64, planes []*Plane,
	keepalive io.Closer, mapper func() (*Frame, error)) *Imported {
	i := &Imported{
		Width:     width,
		Height:    height,
		Format:    format,
		Modifier:  modifier,
		Planes:    planes,
		keepalive: keepalive,
		mapper:    mapper,
	}
	i.refs.Store(1)
	return i
}

func (i *Imported) Size() (int, int) { return i.Width, i.Height }
func (i *Imported) payload()         {}

func (i *Imported) Retain() { i.refs.Add(1) }

func (i *Imported) Release() {
	n := i.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		log.Errorf("imported frame released more often than retained (refs=%d)", n)
		return
	}
	for _, p := range i.Planes {
		if err := p.Close(); err != nil {
			log.Warnf("closing plane fd: %v", err)
		}
	}
	if i.keepalive != nil {
		if err := i.keepalive.Close(); err != nil {
			log.Warnf("releasing decoder sample: %v", err)
		}
	}
}

// CPUFrame converts a single-plane 32-bit RGB buffer to a CPU frame. The
// result is cached for the lifetime of i.
func (i *Imported) CPUFrame() (*Frame, error) {
	i.cpuOnce.Do(func() {
		switch {
		case len(i.Planes) != 1:
			i.cpuErr = fmt.Errorf("%w: %d planes", ErrNotMappable, len(i.Planes))
		case i.Format != FormatARGB8888 && i.Format != FormatXRGB8888:
			i.cpuErr = fmt.Errorf("%w: format %s", ErrNotMappable, FourccString(i.Format))
		case i.mapper == nil:
			i.cpuErr = fmt.Errorf("%w: no mapper", ErrNotMappable)
		default:
			i.cpu, i.cpuErr = i.mapper()
		}
	})
	return i.cpu, i.cpuErr
}
