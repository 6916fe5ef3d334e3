package wlrenderer

import (
	"errors"
	"fmt"

	"github.com/matjam/vidpaper/internal/buffers"
	"github.com/matjam/vidpaper/internal/proto/viewporter"
	"github.com/matjam/vidpaper/internal/proto/wlr_layer_shell"
	"github.com/matjam/vidpaper/internal/types"
	"github.com/rajveermalviya/go-wayland/wayland/client"
)

// anchorAll stretches the layer surface over the whole output.
const anchorAll = uint32(wlr_layer_shell.ZwlrLayerSurfaceV1AnchorTop |
	wlr_layer_shell.ZwlrLayerSurfaceV1AnchorBottom |
	wlr_layer_shell.ZwlrLayerSurfaceV1AnchorLeft |
	wlr_layer_shell.ZwlrLayerSurfaceV1AnchorRight)

// outputSurface is the background layer on one output. It moves from
// awaiting its first configure, to configured, to rendering once a buffer
// has been attached, and finally to destroyed.
type outputSurface struct {
	r      *WLRenderer
	output *output

	surface  *client.Surface
	layer    *wlr_layer_shell.ZwlrLayerSurfaceV1
	viewport *viewporter.WpViewport

	width      int
	height     int
	scale      int32
	transform  types.Transform
	configured bool
	rendering  bool
	destroyed  bool

	// frameCB is the outstanding frame callback; at most one exists.
	frameCB *client.Callback
	// pending is set when a redraw was deferred.
	pending bool

	shm      *buffers.Pool[*buffers.ShmBuffer]
	shmW     int
	shmH     int
	dmabufs  *buffers.Pool[*buffers.DmabufBuffer]
	dmabufW  int
	dmabufH  int
	inflight *buffers.InFlight
}

func newOutputSurface(r *WLRenderer, o *output) (*outputSurface, error) {
	s := &outputSurface{
		r:         r,
		output:    o,
		scale:     max(o.scale, 1),
		transform: types.Transform(o.transform),
		inflight:  buffers.NewInFlight(buffers.MaxInFlight),
	}

	surface, err := r.compositor.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("wl_compositor.create_surface: %w", err)
	}
	s.surface = surface

	// An empty input region lets pointer events fall through to the desktop.
	region, err := r.compositor.CreateRegion()
	if err != nil {
		destroy(surface)
		return nil, fmt.Errorf("wl_compositor.create_region: %w", err)
	}
	err = surface.SetInputRegion(region)
	destroy(region)
	if err != nil {
		destroy(surface)
		return nil, err
	}

	if r.delegates() {
		if s.viewport, err = r.viewporter.GetViewport(surface); err != nil {
			destroy(surface)
			return nil, fmt.Errorf("wp_viewporter.get_viewport: %w", err)
		}
	}

	s.layer, err = r.layerShell.GetLayerSurface(surface, o.Output,
		uint32(wlr_layer_shell.ZwlrLayerShellV1LayerBackground), Namespace)
	if err != nil {
		s.destroy()
		return nil, fmt.Errorf("zwlr_layer_shell_v1.get_layer_surface: %w", err)
	}
	s.layer.SetConfigureHandler(func(e wlr_layer_shell.ZwlrLayerSurfaceV1ConfigureEvent) {
		s.configure(e.Serial, e.Width, e.Height)
	})
	s.layer.SetClosedHandler(func(wlr_layer_shell.ZwlrLayerSurfaceV1ClosedEvent) {
		s.closed()
	})
	err = errors.Join(
		s.layer.SetSize(0, 0),
		s.layer.SetAnchor(anchorAll),
		s.layer.SetExclusiveZone(0),
		s.layer.SetMargin(0, 0, 0, 0),
		s.layer.SetKeyboardInteractivity(uint32(wlr_layer_shell.ZwlrLayerSurfaceV1KeyboardInteractivityNone)),
		surface.Commit(),
	)
	if err != nil {
		s.destroy()
		return nil, err
	}
	return s, nil
}

func (s *outputSurface) label() string { return s.output.label() }

func (s *outputSurface) configure(serial, width, height uint32) {
	if err := s.layer.AckConfigure(serial); err != nil {
		s.r.fail(fmt.Errorf("output %s: ack_configure: %w", s.label(), err))
		return
	}

	w, h := int(width), int(height)
	if w == 0 || h == 0 {
		scale := int(max(s.output.scale, 1))
		w, h = int(s.output.width)/scale, int(s.output.height)/scale
	}
	w, h = max(w, 1), max(h, 1)

	if !s.configured || w != s.width || h != s.height {
		logger.Debugf("output %s configured %dx%d scale=%d", s.label(), w, h, s.scale)
		s.width, s.height = w, h
		s.invalidate()
	}
	s.configured = true

	if s.frameCB != nil {
		// Apply the ack now; the deferred redraw follows the frame callback.
		if err := s.surface.Commit(); err != nil {
			s.r.fail(err)
			return
		}
	}
	s.redraw()
}

func (s *outputSurface) closed() {
	logger.Infof("layer surface on output %s was closed by the compositor", s.label())
	s.r.stop.Store(true)
}

func (s *outputSurface) setGeometry(scale int32, transform types.Transform) {
	scale = max(scale, 1)
	if scale == s.scale && transform == s.transform {
		return
	}
	logger.Debugf("output %s scale=%d transform=%d", s.label(), scale, transform)
	s.scale, s.transform = scale, transform
	s.invalidate()
	s.redraw()
}

// invalidate drops cached buffers so the next draw recreates them.
func (s *outputSurface) invalidate() {
	if s.shm != nil {
		s.shm.Clear()
		s.shm = nil
	}
	if s.dmabufs != nil {
		s.dmabufs.Clear()
		s.dmabufs = nil
	}
}

func (s *outputSurface) dropZeroCopy() {
	if s.dmabufs != nil {
		s.dmabufs.Clear()
		s.dmabufs = nil
	}
	s.inflight.Clear()
}

// redraw draws now, or marks a redraw pending while a frame callback is
// outstanding.
func (s *outputSurface) redraw() {
	if !s.configured || s.destroyed {
		return
	}
	if s.frameCB != nil {
		s.pending = true
		return
	}
	s.pending = false
	if err := s.draw(); err != nil {
		s.r.fail(err)
	}
}

func (s *outputSurface) frameDone(cb *client.Callback) {
	destroy(cb)
	if s.frameCB != cb {
		return
	}
	s.frameCB = nil
	s.redraw()
}

// requestFrame commits with a new frame callback unless one is outstanding.
// Redraws deferred for lack of a free buffer are retried from it.
func (s *outputSurface) requestFrame() error {
	if s.frameCB != nil {
		return nil
	}
	cb, err := s.surface.Frame()
	if err != nil {
		return fmt.Errorf("output %s: wl_surface.frame: %w", s.label(), err)
	}
	cb.SetDoneHandler(func(client.CallbackDoneEvent) { s.frameDone(cb) })
	s.frameCB = cb
	if err := s.surface.Commit(); err != nil {
		return fmt.Errorf("output %s: wl_surface.commit: %w", s.label(), err)
	}
	return nil
}

// released runs when the compositor hands back a pool or imported buffer.
func (s *outputSurface) released() {
	if s.pending && s.frameCB == nil {
		s.redraw()
	}
}

func (s *outputSurface) destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.invalidate()
	s.inflight.Clear()
	if s.viewport != nil {
		destroy(s.viewport)
	}
	if s.layer != nil {
		destroy(s.layer)
	}
	destroy(s.surface)
	// An outstanding callback stays registered; its done event still arrives
	// and frameDone drops it.
	s.frameCB = nil
}
