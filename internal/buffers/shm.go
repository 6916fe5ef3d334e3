package buffers

import (
	"fmt"

	"github.com/matjam/vidpaper/internal/frame"
	"github.com/rajveermalviya/go-wayland/wayland/client"
	"golang.org/x/sys/unix"
)

// ShmBuffer is a memfd-backed wl_buffer. XRGB8888 is little-endian B, G, R, X,
// which matches the decoder output byte order.
type ShmBuffer struct {
	Width  int
	Height int
	Stride int
	Buffer *client.Buffer

	fd   int
	data []byte
}

// NewShmBuffer maps width*height XRGB pixels and wraps them as a wl_buffer.
func NewShmBuffer(shm *client.Shm, width, height int) (*ShmBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid shm buffer size %dx%d", width, height)
	}
	stride := width * frame.BytesPerPixel
	size := stride * height

	fd, err := unix.MemfdCreate("vidpaper-shm", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("sizing shm buffer: %w", err)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mapping shm buffer: %w", err)
	}

	pool, err := shm.CreatePool(fd, int32(size))
	if err != nil {
		unix.Munmap(data)
		unix.Close(fd)
		return nil, fmt.Errorf("wl_shm.create_pool: %w", err)
	}
	buf, err := pool.CreateBuffer(0, int32(width), int32(height), int32(stride), uint32(client.ShmFormatXrgb8888))
	if perr := pool.Destroy(); err == nil && perr != nil {
		err = perr
	}
	if err != nil {
		unix.Munmap(data)
		unix.Close(fd)
		return nil, fmt.Errorf("wl_shm_pool.create_buffer: %w", err)
	}

	return &ShmBuffer{
		Width:  width,
		Height: height,
		Stride: stride,
		Buffer: buf,
		fd:     fd,
		data:   data,
	}, nil
}

// Canvas is the mapped pixel memory.
func (b *ShmBuffer) Canvas() []byte { return b.data }

func (b *ShmBuffer) Destroy() {
	if b.Buffer != nil {
		destroy(b.Buffer)
		b.Buffer = nil
	}
	if b.data != nil {
		unix.Munmap(b.data)
		b.data = nil
	}
	if b.fd >= 0 {
		unix.Close(b.fd)
		b.fd = -1
	}
}
