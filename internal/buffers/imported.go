package buffers

import (
	"fmt"

	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/proto/linux_dmabuf"
	"github.com/rajveermalviya/go-wayland/wayland/client"
)

// MaxInFlight bounds directly imported buffers held by the compositor per
// surface.
const MaxInFlight = 3

// ImportedBuffer wraps decoder-owned planes as a wl_buffer without copying.
// It holds a reference on the frame until destroyed.
type ImportedBuffer struct {
	Buffer *client.Buffer

	params *linux_dmabuf.ZwpLinuxBufferParamsV1
	frame  *frame.Imported
}

// Import shares the frame's plane descriptors with the compositor; the frame
// keeps its own.
func Import(dmabuf *linux_dmabuf.ZwpLinuxDmabufV1, f *frame.Imported, onFailed func()) (*ImportedBuffer, error) {
	if n := len(f.Planes); n == 0 || n > frame.MaxPlanes {
		return nil, fmt.Errorf("cannot import buffer with %d planes", n)
	}
	planes := make([]planeDesc, len(f.Planes))
	for i, p := range f.Planes {
		planes[i] = planeDesc{fd: p.FD(), offset: p.Offset, stride: p.Stride}
	}
	params, buf, err := createBuffer(dmabuf, planes, f.Width, f.Height, f.Format, f.Modifier, onFailed)
	if err != nil {
		return nil, err
	}
	f.Retain()
	return &ImportedBuffer{Buffer: buf, params: params, frame: f}, nil
}

func (b *ImportedBuffer) Destroy() {
	if b.Buffer != nil {
		destroy(b.Buffer)
		b.Buffer = nil
	}
	if b.params != nil {
		destroy(b.params)
		b.params = nil
	}
	if b.frame != nil {
		b.frame.Release()
		b.frame = nil
	}
}

// InFlight tracks imported buffers submitted but not yet released.
type InFlight struct {
	limit int
	bufs  []*ImportedBuffer
}

func NewInFlight(limit int) *InFlight { return &InFlight{limit: limit} }

func (q *InFlight) Full() bool { return len(q.bufs) >= q.limit }
func (q *InFlight) Len() int   { return len(q.bufs) }

// Add reports false when the limit is reached; b is then left to the caller.
func (q *InFlight) Add(b *ImportedBuffer) bool {
	if q.Full() {
		return false
	}
	q.bufs = append(q.bufs, b)
	return true
}

// Remove destroys and forgets b.
func (q *InFlight) Remove(b *ImportedBuffer) bool {
	for i, cur := range q.bufs {
		if cur == b {
			q.bufs = append(q.bufs[:i], q.bufs[i+1:]...)
			b.Destroy()
			return true
		}
	}
	return false
}

func (q *InFlight) Clear() {
	for _, b := range q.bufs {
		b.Destroy()
	}
	q.bufs = nil
}
