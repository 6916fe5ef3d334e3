package buffers

import (
	"fmt"

	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/proto/linux_dmabuf"
	"github.com/rajveermalviya/go-wayland/wayland/client"
)

// DmabufBuffer is a linear XRGB8888 dma-heap allocation shared with the
// compositor through zwp_linux_dmabuf_v1. The params object lives as long as
// the buffer so a late failed event can still be delivered.
type DmabufBuffer struct {
	Width  int
	Height int
	Stride int
	Buffer *client.Buffer

	heap   *HeapBuffer
	params *linux_dmabuf.ZwpLinuxBufferParamsV1
}

// NewDmabufBuffer allocates from heap and creates the compositor buffer.
// onFailed runs on the render thread if the compositor rejects it.
func NewDmabufBuffer(dmabuf *linux_dmabuf.ZwpLinuxDmabufV1, heap *Heap, width, height int, onFailed func()) (*DmabufBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dmabuf size %dx%d", width, height)
	}
	stride := width * frame.BytesPerPixel
	hb, err := heap.Alloc(stride * height)
	if err != nil {
		return nil, err
	}

	b := &DmabufBuffer{Width: width, Height: height, Stride: stride, heap: hb}
	planes := []planeDesc{{fd: hb.FD(), stride: uint32(stride)}}
	b.params, b.Buffer, err = createBuffer(dmabuf, planes, width, height, frame.FormatXRGB8888, frame.ModifierLinear, onFailed)
	if err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

func (b *DmabufBuffer) Canvas() []byte { return b.heap.Data()[:b.Stride*b.Height] }

func (b *DmabufBuffer) BeginWrite() error { return b.heap.BeginWrite() }
func (b *DmabufBuffer) EndWrite() error   { return b.heap.EndWrite() }

func (b *DmabufBuffer) Destroy() {
	if b.Buffer != nil {
		destroy(b.Buffer)
		b.Buffer = nil
	}
	if b.params != nil {
		destroy(b.params)
		b.params = nil
	}
	if b.heap != nil {
		b.heap.Close()
		b.heap = nil
	}
}

type planeDesc struct {
	fd     int
	offset uint32
	stride uint32
}

// createBuffer sends every plane and asks for the buffer with create_immed.
// Descriptors are copied into the message, so the caller keeps its own.
func createBuffer(dmabuf *linux_dmabuf.ZwpLinuxDmabufV1, planes []planeDesc, width, height int, format uint32, modifier uint64, onFailed func()) (*linux_dmabuf.ZwpLinuxBufferParamsV1, *client.Buffer, error) {
	params, err := dmabuf.CreateParams()
	if err != nil {
		return nil, nil, fmt.Errorf("zwp_linux_dmabuf_v1.create_params: %w", err)
	}
	params.SetFailedHandler(func(linux_dmabuf.ZwpLinuxBufferParamsV1FailedEvent) {
		if onFailed != nil {
			onFailed()
		}
	})
	for i, p := range planes {
		if err := params.Add(p.fd, uint32(i), p.offset, p.stride, uint32(modifier>>32), uint32(modifier)); err != nil {
			destroy(params)
			return nil, nil, fmt.Errorf("adding dmabuf plane %d: %w", i, err)
		}
	}
	buf, err := params.CreateImmed(int32(width), int32(height), format, 0)
	if err != nil {
		destroy(params)
		return nil, nil, fmt.Errorf("zwp_linux_buffer_params_v1.create_immed: %w", err)
	}
	return params, buf, nil
}
