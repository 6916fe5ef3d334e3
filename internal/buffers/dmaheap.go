package buffers

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

var ErrNoHeap = errors.New("no usable dma-heap device")

// HeapCandidates are tried in order.
var HeapCandidates = []string{
	"/dev/dma_heap/system",
	"/dev/dma_heap/linux,cma",
	"/dev/dma_heap/reserved",
}

const (
	pageSize = 4096

	// _IOWR('H', 0, struct dma_heap_allocation_data)
	dmaHeapIoctlAlloc = 0xC0184800
	// _IOW('b', 0, struct dma_buf_sync)
	dmaBufIoctlSync = 0x40086200

	dmaBufSyncRead  = 1 << 0
	dmaBufSyncWrite = 2 << 0
	dmaBufSyncStart = 0 << 2
	dmaBufSyncEnd   = 1 << 2
)

type heapAllocationData struct {
	Len       uint64
	FD        uint32
	FDFlags   uint32
	HeapFlags uint64
}

// Heap is an open dma-heap device.
type Heap struct {
	Path string
	f    *os.File
}

// OpenHeap opens the first candidate that exists and is writable.
func OpenHeap(candidates []string) (*Heap, error) {
	var errs []error
	for _, path := range candidates {
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return &Heap{Path: path, f: f}, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrNoHeap, errors.Join(errs...))
}

// Alloc returns a page-aligned, CPU-mapped dmabuf of at least size bytes.
func (h *Heap) Alloc(size int) (*HeapBuffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid dma-heap allocation size %d", size)
	}
	aligned := (size + pageSize - 1) &^ (pageSize - 1)
	req := heapAllocationData{
		Len:     uint64(aligned),
		FDFlags: uint32(unix.O_RDWR | unix.O_CLOEXEC),
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, h.f.Fd(), dmaHeapIoctlAlloc, uintptr(unsafe.Pointer(&req)))
	if errno != 0 {
		return nil, fmt.Errorf("DMA_HEAP_IOCTL_ALLOC on %s: %w", h.Path, errno)
	}
	fd := int(req.FD)
	data, err := unix.Mmap(fd, 0, aligned, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mapping dma-heap buffer: %w", err)
	}
	return &HeapBuffer{fd: fd, data: data}, nil
}

func (h *Heap) Close() error { return h.f.Close() }

// HeapBuffer owns one dmabuf descriptor and its mapping.
type HeapBuffer struct {
	fd   int
	data []byte
}

func (b *HeapBuffer) FD() int      { return b.fd }
func (b *HeapBuffer) Data() []byte { return b.data }

// BeginWrite and EndWrite bracket CPU writes so caches are kept coherent
// with the device.
func (b *HeapBuffer) BeginWrite() error { return b.sync(dmaBufSyncStart | dmaBufSyncWrite) }
func (b *HeapBuffer) EndWrite() error   { return b.sync(dmaBufSyncEnd | dmaBufSyncWrite) }

func (b *HeapBuffer) sync(flags uint64) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), dmaBufIoctlSync, uintptr(unsafe.Pointer(&flags)))
	if errno != 0 {
		return fmt.Errorf("DMA_BUF_IOCTL_SYNC: %w", errno)
	}
	return nil
}

func (b *HeapBuffer) Close() error {
	if b.data != nil {
		unix.Munmap(b.data)
		b.data = nil
	}
	if b.fd < 0 {
		return nil
	}
	err := unix.Close(b.fd)
	b.fd = -1
	return err
}
