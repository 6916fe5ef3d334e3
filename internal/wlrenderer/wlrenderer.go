// Package wlrenderer draws the wallpaper on wlr-layer-shell background
// surfaces, one per output, paced by compositor frame callbacks.
package wlrenderer

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/vidpaper/internal/buffers"
	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/proto/linux_dmabuf"
	"github.com/matjam/vidpaper/internal/proto/viewporter"
	"github.com/matjam/vidpaper/internal/proto/wlr_layer_shell"
	"github.com/matjam/vidpaper/internal/scaler"
	"github.com/matjam/vidpaper/internal/types"
	"github.com/matjam/vidpaper/internal/wayland"
	"github.com/rajveermalviya/go-wayland/wayland/client"
)

// Namespace identifies our layer surfaces to the compositor.
const Namespace = "vidpaper"

const (
	// stopPoll is how often the stop flag is checked while Dispatch blocks.
	stopPoll = 100 * time.Millisecond
	// stopGrace is how long a set stop flag may wait for the next event
	// before the connection is closed under Dispatch.
	stopGrace = 250 * time.Millisecond
)

var (
	ErrMissingGlobal  = errors.New("required wayland global is missing")
	ErrNoOutputs      = errors.New("no outputs advertised by the compositor")
	ErrOutputNotFound = errors.New("requested output not found")
)

var logger = log.WithPrefix("renderer")

// OutputNotFoundError lists the named outputs that do exist.
type OutputNotFoundError struct {
	Name      string
	Available []string
}

func (e *OutputNotFoundError) Error() string {
	available := "<none named>"
	if len(e.Available) > 0 {
		available = strings.Join(e.Available, ", ")
	}
	return fmt.Sprintf("requested output '%s' was not found (available outputs: %s)", e.Name, available)
}

func (e *OutputNotFoundError) Unwrap() error { return ErrOutputNotFound }

type Options struct {
	// Connect defaults to dialing $WAYLAND_DISPLAY.
	Connect func() (*wayland.Conn, error)
	Mailbox *frame.Mailbox
	Scale   types.ScaleMode
	Dmabuf  types.DmabufMode
	// Output restricts rendering to one named output; empty means all.
	Output string
	// Stop is shared with the decode loop. Either side may set it.
	Stop *atomic.Bool
	// Heaps defaults to buffers.HeapCandidates.
	Heaps []string
}

type WLRenderer struct {
	opts Options
	stop *atomic.Bool

	conn       *wayland.Conn
	registry   *client.Registry
	compositor *client.Compositor
	shm        *client.Shm
	layerShell *wlr_layer_shell.ZwlrLayerShellV1
	dmabuf     *linux_dmabuf.ZwpLinuxDmabufV1
	viewporter *viewporter.WpViewporter

	buffers *buffers.Manager

	outputs  map[uint32]*output
	surfaces map[uint32]*outputSurface
	running  bool

	// lastCPU is shown when an imported frame cannot be mapped.
	lastCPU          *frame.Frame
	warnedUnmappable bool

	fatal error
}

// Start runs a renderer on its own locked OS thread. It returns once the
// surfaces exist, or with the startup error. The channel yields the result
// of the event loop.
func Start(opts Options) (<-chan error, error) {
	ready := make(chan error, 1)
	done := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		r, err := NewRenderer(opts)
		ready <- err
		if err != nil {
			return
		}
		done <- r.Run()
	}()
	if err := <-ready; err != nil {
		return nil, err
	}
	return done, nil
}

// NewRenderer connects, binds globals and creates one layer surface per
// target output. Every error is returned before any surface is created.
func NewRenderer(opts Options) (*WLRenderer, error) {
	if opts.Mailbox == nil {
		return nil, errors.New("wlrenderer: no frame mailbox")
	}
	if opts.Connect == nil {
		opts.Connect = func() (*wayland.Conn, error) { return wayland.Connect("") }
	}
	if opts.Heaps == nil {
		opts.Heaps = buffers.HeapCandidates
	}
	r := &WLRenderer{
		opts:     opts,
		stop:     opts.Stop,
		outputs:  make(map[uint32]*output),
		surfaces: make(map[uint32]*outputSurface),
	}
	if r.stop == nil {
		r.stop = new(atomic.Bool)
	}

	conn, err := opts.Connect()
	if err != nil {
		return nil, fmt.Errorf("connecting to wayland compositor: %w", err)
	}
	r.conn = conn

	if err := r.setup(); err != nil {
		r.teardown()
		return nil, err
	}
	return r, nil
}

func (r *WLRenderer) setup() error {
	registry, err := r.conn.Display.GetRegistry()
	if err != nil {
		return fmt.Errorf("wl_display.get_registry: %w", err)
	}
	r.registry = registry

	var globals []client.RegistryGlobalEvent
	registry.SetGlobalHandler(func(e client.RegistryGlobalEvent) {
		globals = append(globals, e)
	})
	if err := r.conn.Roundtrip(); err != nil {
		return fmt.Errorf("reading wayland registry: %w", err)
	}

	for _, g := range globals {
		if err := r.bind(g); err != nil {
			return err
		}
	}
	required := []struct {
		iface string
		bound bool
	}{
		{client.CompositorInterfaceName, r.compositor != nil},
		{client.ShmInterfaceName, r.shm != nil},
		{wlr_layer_shell.ZwlrLayerShellV1InterfaceName, r.layerShell != nil},
	}
	for _, g := range required {
		if !g.bound {
			return fmt.Errorf("compositor does not expose %s: %w", g.iface, ErrMissingGlobal)
		}
	}
	if r.opts.Dmabuf.Required() && r.dmabuf == nil {
		return fmt.Errorf("VIDPAPER_DMABUF=on, but compositor does not expose %s: %w",
			linux_dmabuf.ZwpLinuxDmabufV1InterfaceName, ErrMissingGlobal)
	}
	if r.opts.Dmabuf.Enabled() && r.dmabuf == nil {
		logger.Warnf("compositor does not expose %s; using shared memory", linux_dmabuf.ZwpLinuxDmabufV1InterfaceName)
	}
	if r.viewporter == nil && r.opts.Scale != types.ScaleModeFit {
		logger.Infof("compositor does not expose %s; scaling on the CPU", viewporter.WpViewporterInterfaceName)
	}

	// Output properties arrive after bind.
	if err := r.conn.Roundtrip(); err != nil {
		return fmt.Errorf("reading output properties: %w", err)
	}
	targets, err := r.selectOutputs()
	if err != nil {
		return err
	}

	mgr, err := buffers.NewManager(r.opts.Dmabuf, r.shm, r.dmabuf, r.opts.Heaps)
	if err != nil {
		return err
	}
	r.buffers = mgr

	registry.SetGlobalHandler(func(e client.RegistryGlobalEvent) {
		if err := r.bind(e); err != nil {
			r.fail(err)
		}
	})
	registry.SetGlobalRemoveHandler(func(e client.RegistryGlobalRemoveEvent) {
		r.globalRemoved(e.Name)
	})

	for _, o := range targets {
		if err := r.addSurface(o); err != nil {
			return err
		}
	}
	r.running = true
	return nil
}

func (r *WLRenderer) bindProxy(g client.RegistryGlobalEvent, version uint32, p client.Proxy) error {
	if err := r.registry.Bind(g.Name, g.Interface, version, p); err != nil {
		return fmt.Errorf("binding %s: %w", g.Interface, err)
	}
	logger.Debugf("bound %s v%d global=%d", g.Interface, version, g.Name)
	return nil
}

func (r *WLRenderer) bind(g client.RegistryGlobalEvent) error {
	ctx := r.conn.Context
	switch g.Interface {
	case client.CompositorInterfaceName:
		if r.compositor == nil {
			r.compositor = client.NewCompositor(ctx)
			return r.bindProxy(g, min(g.Version, 4), r.compositor)
		}
	case client.ShmInterfaceName:
		if r.shm == nil {
			r.shm = client.NewShm(ctx)
			return r.bindProxy(g, 1, r.shm)
		}
	case wlr_layer_shell.ZwlrLayerShellV1InterfaceName:
		if r.layerShell == nil {
			r.layerShell = wlr_layer_shell.NewZwlrLayerShellV1(ctx)
			return r.bindProxy(g, min(g.Version, 4), r.layerShell)
		}
	case linux_dmabuf.ZwpLinuxDmabufV1InterfaceName:
		if r.dmabuf == nil && r.opts.Dmabuf.Enabled() {
			r.dmabuf = linux_dmabuf.NewZwpLinuxDmabufV1(ctx)
			return r.bindProxy(g, min(g.Version, 3), r.dmabuf)
		}
	case viewporter.WpViewporterInterfaceName:
		if r.viewporter == nil {
			r.viewporter = viewporter.NewWpViewporter(ctx)
			return r.bindProxy(g, 1, r.viewporter)
		}
	case client.OutputInterfaceName:
		if _, ok := r.outputs[g.Name]; ok {
			return nil
		}
		o := newOutput(ctx, g.Name)
		o.onDone = r.outputDone
		r.outputs[g.Name] = o
		return r.bindProxy(g, min(g.Version, 4), o.Output)
	}
	return nil
}

func (r *WLRenderer) wants(o *output) bool {
	return r.opts.Output == "" || o.name == r.opts.Output
}

func (r *WLRenderer) selectOutputs() ([]*output, error) {
	if len(r.outputs) == 0 {
		return nil, ErrNoOutputs
	}
	names := make([]uint32, 0, len(r.outputs))
	for name := range r.outputs {
		names = append(names, name)
	}
	slices.Sort(names)

	var targets []*output
	var available []string
	for _, name := range names {
		o := r.outputs[name]
		if o.name != "" {
			available = append(available, o.name)
		}
		if r.wants(o) {
			targets = append(targets, o)
		}
	}
	if len(targets) == 0 {
		return nil, &OutputNotFoundError{Name: r.opts.Output, Available: available}
	}
	return targets, nil
}

// outputDone applies geometry changes, and picks up outputs plugged in after
// startup.
func (r *WLRenderer) outputDone(o *output) {
	if !r.running {
		return
	}
	if s, ok := r.surfaces[o.global]; ok {
		s.setGeometry(o.scale, types.Transform(o.transform))
		return
	}
	if r.wants(o) {
		logger.Infof("output %s appeared", o.label())
		if err := r.addSurface(o); err != nil {
			r.fail(err)
		}
	}
}

func (r *WLRenderer) globalRemoved(name uint32) {
	if s, ok := r.surfaces[name]; ok {
		logger.Infof("output %s removed", s.label())
		s.destroy()
		delete(r.surfaces, name)
	}
	if o, ok := r.outputs[name]; ok {
		o.release()
		delete(r.outputs, name)
	}
}

func (r *WLRenderer) addSurface(o *output) error {
	s, err := newOutputSurface(r, o)
	if err != nil {
		return fmt.Errorf("creating layer surface for output %s: %w", o.label(), err)
	}
	r.surfaces[o.global] = s
	logger.Debugf("created layer surface for output %s", s.label())
	return nil
}

// Run dispatches compositor events until stopped, closed, or a fatal error.
// Resources are released before it returns.
func (r *WLRenderer) Run() error {
	defer r.teardown()
	quit := make(chan struct{})
	defer close(quit)
	go r.watchStop(quit)

	for {
		if r.fatal != nil {
			return r.fatal
		}
		if r.stop.Load() {
			return nil
		}
		if err := r.conn.Dispatch(); err != nil {
			if r.fatal != nil {
				return r.fatal
			}
			var perr *wayland.ProtocolError
			if !errors.As(err, &perr) && (r.stop.Load() || errors.Is(err, wayland.ErrClosed)) {
				return nil
			}
			r.stop.Store(true)
			return fmt.Errorf("wayland dispatch: %w", err)
		}
	}
}

// watchStop closes the connection when the stop flag stays set while
// Dispatch is blocked on a quiet compositor.
func (r *WLRenderer) watchStop(quit <-chan struct{}) {
	ticker := time.NewTicker(stopPoll)
	defer ticker.Stop()
	var since time.Time
	for {
		select {
		case <-quit:
			return
		case now := <-ticker.C:
			if !r.stop.Load() {
				continue
			}
			if since.IsZero() {
				since = now
				continue
			}
			if now.Sub(since) >= stopGrace {
				r.conn.Close()
				return
			}
		}
	}
}

// fail records the first fatal error and asks both loops to stop.
func (r *WLRenderer) fail(err error) {
	if r.fatal == nil {
		logger.Errorf("renderer: %v", err)
		r.fatal = err
	}
	r.stop.Store(true)
}

// disableZeroCopy moves every surface to shared memory, unless zero-copy is
// required.
func (r *WLRenderer) disableZeroCopy(reason error) error {
	if err := r.buffers.Disable(reason); err != nil {
		return err
	}
	for _, s := range r.surfaces {
		s.dropZeroCopy()
	}
	return nil
}

// dmabufRejected handles zwp_linux_buffer_params_v1.failed.
func (r *WLRenderer) dmabufRejected() {
	if err := r.disableZeroCopy(errors.New("compositor rejected a dmabuf buffer")); err != nil {
		r.fail(err)
		return
	}
	for _, s := range r.surfaces {
		s.redraw()
	}
}

// cpuFrame resolves the payload to pixels the CPU paths can draw. An
// imported frame that cannot be mapped keeps the previous picture on screen.
func (r *WLRenderer) cpuFrame(p frame.Payload) *frame.Frame {
	switch v := p.(type) {
	case *frame.Frame:
		r.lastCPU = v
		return v
	case *frame.Imported:
		f, err := v.CPUFrame()
		if err == nil {
			r.lastCPU = f
			return f
		}
		if !r.warnedUnmappable {
			logger.Warnf("%v; keeping the previous frame on screen", err)
			r.warnedUnmappable = true
		}
		return r.lastCPU
	}
	return nil
}

func (r *WLRenderer) delegates() bool {
	return scaler.Delegates(r.opts.Scale, r.viewporter != nil)
}

func (r *WLRenderer) teardown() {
	for name, s := range r.surfaces {
		s.destroy()
		delete(r.surfaces, name)
	}
	if r.buffers != nil {
		r.buffers.Close()
	}
	if r.viewporter != nil {
		destroy(r.viewporter)
	}
	if r.dmabuf != nil {
		destroy(r.dmabuf)
	}
	if r.layerShell != nil {
		destroy(r.layerShell)
	}
	for name, o := range r.outputs {
		o.release()
		delete(r.outputs, name)
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			logger.Debugf("closing wayland connection: %v", err)
		}
	}
}

// destroy sends a destructor request. Errors only mean the connection is
// already gone.
func destroy(p interface{ Destroy() error }) {
	if err := p.Destroy(); err != nil {
		logger.Debugf("destroying wayland object: %v", err)
	}
}
