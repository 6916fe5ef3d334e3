package buffers

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/proto/linux_dmabuf"
	"github.com/matjam/vidpaper/internal/types"
	"github.com/rajveermalviya/go-wayland/wayland/client"
)

// PoolSize is the number of dma-heap buffers, and of shm buffers, kept per
// surface.
const PoolSize = 2

// Manager hands out per-surface buffers for whichever transports are
// currently usable. It is owned by the render thread.
type Manager struct {
	mode   types.DmabufMode
	shm    *client.Shm
	dmabuf *linux_dmabuf.ZwpLinuxDmabufV1
	heap   *Heap

	zeroCopy bool
}

// NewManager opens a dma-heap when zero-copy is enabled and the compositor
// exposes zwp_linux_dmabuf_v1. Failing to find a heap is fatal only when
// zero-copy is required.
func NewManager(mode types.DmabufMode, shm *client.Shm, dmabuf *linux_dmabuf.ZwpLinuxDmabufV1, heaps []string) (*Manager, error) {
	m := &Manager{mode: mode, shm: shm, dmabuf: dmabuf}
	if !mode.Enabled() || dmabuf == nil {
		return m, nil
	}
	heap, err := OpenHeap(heaps)
	if err != nil {
		if mode.Required() {
			return nil, fmt.Errorf("VIDPAPER_DMABUF=on, but %w", err)
		}
		log.Warnf("dmabuf: %v; using shared memory", err)
	} else {
		log.Debugf("dmabuf: allocating from %s", heap.Path)
		m.heap = heap
	}
	m.zeroCopy = true
	return m, nil
}

// ZeroCopy reports whether dmabuf transport has not been disabled.
func (m *Manager) ZeroCopy() bool { return m.zeroCopy }

// CanAllocate reports whether self-allocated dmabufs are available.
func (m *Manager) CanAllocate() bool { return m.zeroCopy && m.heap != nil }

// CanImport reports whether decoder buffers may be imported directly.
func (m *Manager) CanImport() bool { return m.zeroCopy }

// Disable switches every surface to shared memory for the rest of the run.
// It returns an error when zero-copy is required.
func (m *Manager) Disable(reason error) error {
	if m.mode.Required() {
		return fmt.Errorf("dmabuf transport failed with VIDPAPER_DMABUF=on: %w", reason)
	}
	if m.zeroCopy {
		log.Warnf("dmabuf transport disabled, falling back to shared memory: %v", reason)
	}
	m.zeroCopy = false
	return nil
}

func (m *Manager) NewShmBuffer(width, height int) (*ShmBuffer, error) {
	return NewShmBuffer(m.shm, width, height)
}

func (m *Manager) NewDmabufBuffer(width, height int, onFailed func()) (*DmabufBuffer, error) {
	if !m.CanAllocate() {
		return nil, ErrNoHeap
	}
	return NewDmabufBuffer(m.dmabuf, m.heap, width, height, onFailed)
}

func (m *Manager) Import(f *frame.Imported, onFailed func()) (*ImportedBuffer, error) {
	return Import(m.dmabuf, f, onFailed)
}

func (m *Manager) Close() {
	if m.heap != nil {
		m.heap.Close()
		m.heap = nil
	}
}

// destroy sends a destructor request. Failures only mean the connection is
// already gone.
func destroy(p interface{ Destroy() error }) {
	if err := p.Destroy(); err != nil {
		log.Debugf("destroying wayland object: %v", err)
	}
}
