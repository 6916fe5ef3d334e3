package wlrenderer

import (
	"errors"
	"fmt"

	"github.com/matjam/vidpaper/internal/buffers"
	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/scaler"
	"github.com/matjam/vidpaper/internal/types"
	"github.com/rajveermalviya/go-wayland/wayland/client"
)

// draw submits the current mailbox payload. Zero-copy paths are tried first;
// a failure there either degrades to shared memory or is returned when
// zero-copy is required.
func (s *outputSurface) draw() error {
	p := s.r.opts.Mailbox.Load()
	if p != nil {
		defer p.Release()
	}

	if s.r.buffers.ZeroCopy() {
		drawn, err := s.drawZeroCopy(p)
		if err == nil && drawn {
			return nil
		}
		if err != nil {
			if derr := s.r.disableZeroCopy(err); derr != nil {
				return derr
			}
		}
	}
	return s.drawShm(s.r.cpuFrame(p))
}

func (s *outputSurface) drawZeroCopy(p frame.Payload) (bool, error) {
	if imported, ok := p.(*frame.Imported); ok && s.viewport != nil && s.r.buffers.CanImport() {
		return true, s.drawImported(imported)
	}
	if s.r.buffers.CanAllocate() {
		return true, s.drawDmabuf(s.r.cpuFrame(p))
	}
	return false, nil
}

// geometry is the buffer size and scale for a frame. With compositor scaling
// the buffer holds the frame at its own resolution.
func (s *outputSurface) geometry(f *frame.Frame) (w, h int, scale int32) {
	if s.viewport != nil {
		if f == nil {
			return 1, 1, 1
		}
		return f.Width, f.Height, 1
	}
	w, h = s.width*int(s.scale), s.height*int(s.scale)
	if s.transform.SwapsAxes() {
		w, h = h, w
	}
	return w, h, s.scale
}

func (s *outputSurface) paint(dst []byte, f *frame.Frame, w, h int) {
	if s.viewport == nil {
		scaler.Render(dst, f, w, h, s.r.opts.Scale)
		return
	}
	if f == nil {
		scaler.FillBlack(dst)
		return
	}
	scaler.Copy(f, dst, w, h)
}

func (s *outputSurface) drawShm(f *frame.Frame) error {
	w, h, scale := s.geometry(f)
	if s.shm == nil || s.shmW != w || s.shmH != h {
		if s.shm != nil {
			s.shm.Clear()
		}
		var pool *buffers.Pool[*buffers.ShmBuffer]
		pool = buffers.NewPool(buffers.PoolSize, func() (*buffers.ShmBuffer, error) {
			b, err := s.r.buffers.NewShmBuffer(w, h)
			if err != nil {
				return nil, err
			}
			b.Buffer.SetReleaseHandler(func(client.BufferReleaseEvent) {
				pool.Release(b)
				s.released()
			})
			return b, nil
		})
		s.shm, s.shmW, s.shmH = pool, w, h
	}

	b, ok, err := s.shm.Acquire()
	if err != nil {
		return fmt.Errorf("output %s: %w", s.label(), err)
	}
	if !ok {
		s.pending = true
		return s.requestFrame()
	}
	s.paint(b.Canvas(), f, w, h)
	return s.present(b.Buffer, w, h, scale)
}

func (s *outputSurface) drawDmabuf(f *frame.Frame) error {
	w, h, scale := s.geometry(f)
	if s.dmabufs == nil || s.dmabufW != w || s.dmabufH != h {
		if s.dmabufs != nil {
			s.dmabufs.Clear()
		}
		var pool *buffers.Pool[*buffers.DmabufBuffer]
		pool = buffers.NewPool(buffers.PoolSize, func() (*buffers.DmabufBuffer, error) {
			b, err := s.r.buffers.NewDmabufBuffer(w, h, s.r.dmabufRejected)
			if err != nil {
				return nil, err
			}
			b.Buffer.SetReleaseHandler(func(client.BufferReleaseEvent) {
				pool.Release(b)
				s.released()
			})
			return b, nil
		})
		s.dmabufs, s.dmabufW, s.dmabufH = pool, w, h
	}

	b, ok, err := s.dmabufs.Acquire()
	if err != nil {
		return err
	}
	if !ok {
		s.pending = true
		return s.requestFrame()
	}
	if err := b.BeginWrite(); err != nil {
		s.dmabufs.Release(b)
		return err
	}
	s.paint(b.Canvas(), f, w, h)
	if err := b.EndWrite(); err != nil {
		s.dmabufs.Release(b)
		return err
	}
	return s.present(b.Buffer, w, h, scale)
}

func (s *outputSurface) drawImported(f *frame.Imported) error {
	if s.inflight.Full() {
		s.pending = true
		return s.requestFrame()
	}
	ib, err := s.r.buffers.Import(f, s.r.dmabufRejected)
	if err != nil {
		return err
	}
	ib.Buffer.SetReleaseHandler(func(client.BufferReleaseEvent) {
		s.inflight.Remove(ib)
		s.released()
	})
	s.inflight.Add(ib)
	return s.present(ib.Buffer, f.Width, f.Height, 1)
}

// present attaches buf, declares the viewport and asks for the next frame
// callback.
func (s *outputSurface) present(buf *client.Buffer, w, h int, scale int32) error {
	transform := s.transform
	if s.viewport != nil {
		src := scaler.SourceCrop(w, h, s.width, s.height, s.r.opts.Scale)
		err := errors.Join(
			s.viewport.SetSource(src.X, src.Y, src.W, src.H),
			s.viewport.SetDestination(int32(s.width), int32(s.height)),
		)
		if err != nil {
			return fmt.Errorf("output %s: setting viewport: %w", s.label(), err)
		}
		transform = types.TransformNormal
	}
	err := errors.Join(
		s.surface.SetBufferScale(scale),
		s.surface.SetBufferTransform(int32(transform)),
		s.surface.Attach(buf, 0, 0),
		s.surface.DamageBuffer(0, 0, int32(w), int32(h)),
	)
	if err != nil {
		return fmt.Errorf("output %s: attaching buffer: %w", s.label(), err)
	}
	if err := s.requestFrame(); err != nil {
		return err
	}
	if !s.rendering {
		logger.Debugf("output %s: first buffer attached (%dx%d)", s.label(), w, h)
		s.rendering = true
	}
	return nil
}
