// Package wltest runs an in-process compositor good enough to drive the
// renderer through startup, configure, frame callbacks and buffer release.
// It listens on a real unix socket so clients connect the same way they do
// to a desktop session.
package wltest

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matjam/vidpaper/internal/proto/linux_dmabuf"
	"github.com/matjam/vidpaper/internal/proto/viewporter"
	"github.com/matjam/vidpaper/internal/proto/wlr_layer_shell"
	"github.com/rajveermalviya/go-wayland/wayland/client"
	"golang.org/x/sys/unix"
)

type OutputSpec struct {
	Name      string
	Width     int32
	Height    int32
	Scale     int32
	Transform int32
}

type Options struct {
	Outputs      []OutputSpec
	Dmabuf       bool
	Viewporter   bool
	NoLayerShell bool
	// FailDmabuf answers every create_immed with failed.
	FailDmabuf bool
	// HoldBuffers keeps replaced buffers instead of releasing them; see
	// ReleaseHeld.
	HoldBuffers   bool
	FrameInterval time.Duration
}

type Rect struct {
	X, Y, W, H float64
}

// BufferInfo describes one wl_buffer the client created.
type BufferInfo struct {
	Kind   string
	Width  int32
	Height int32
}

// Stats counts requests the client made.
type Stats struct {
	Surfaces         int
	LiveSurfaces     int
	LayerSurfaces    int
	ShmBuffers       int
	DmabufBuffers    int
	DestroyedBuffers int
	Commits          int
	Attaches         int
	Releases         int
	AckConfigures    int
	Viewports        int
	FrameRequests    int
	Held             int
	Namespaces       []string
	Anchors          []uint32
	Margins          [][4]int32
	Buffers          []BufferInfo
	Sources          []Rect
	Destinations     [][2]int32
	Transforms       []int32
}

type global struct {
	name    uint32
	iface   string
	version uint32
	output  int
}

type boundOutput struct {
	idx     int
	version uint32
}

type surfaceState struct {
	layer      uint32
	output     int
	configured bool
	pending    uint32
	attached   uint32
	frames     []uint32
}

// Compositor is the server side of one client connection.
type Compositor struct {
	opts    Options
	dir     string
	ln      *net.UnixListener
	globals []global

	mu       sync.Mutex
	wire     *wire
	objects  map[uint32]string
	outputs  map[uint32]boundOutput
	surfaces map[uint32]*surfaceState
	held     []uint32
	serial   uint32
	stats    Stats
	closed   bool

	done chan struct{}
	err  error
}

// Start listens on a fresh socket and serves the first client that connects.
func Start(opts Options) (*Compositor, error) {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 16 * time.Millisecond
	}
	dir, err := os.MkdirTemp("", "wltest-")
	if err != nil {
		return nil, err
	}
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: filepath.Join(dir, "wayland-0"), Net: "unix"})
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	c := &Compositor{
		opts:     opts,
		dir:      dir,
		ln:       ln,
		objects:  map[uint32]string{1: "wl_display"},
		outputs:  make(map[uint32]boundOutput),
		surfaces: make(map[uint32]*surfaceState),
		done:     make(chan struct{}),
	}
	c.opts.Outputs = append([]OutputSpec(nil), opts.Outputs...)

	add := func(iface string, version uint32, output int) {
		c.globals = append(c.globals, global{
			name: uint32(len(c.globals) + 1), iface: iface, version: version, output: output,
		})
	}
	add(client.CompositorInterfaceName, 4, -1)
	add(client.ShmInterfaceName, 1, -1)
	if !opts.NoLayerShell {
		add(wlr_layer_shell.ZwlrLayerShellV1InterfaceName, 4, -1)
	}
	if opts.Dmabuf {
		add(linux_dmabuf.ZwpLinuxDmabufV1InterfaceName, 3, -1)
	}
	if opts.Viewporter {
		add(viewporter.WpViewporterInterfaceName, 1, -1)
	}
	for i := range opts.Outputs {
		add(client.OutputInterfaceName, 4, i)
	}

	go c.serve()
	return c, nil
}

// Addr is the socket path to pass to the client.
func (c *Compositor) Addr() string { return c.ln.Addr().String() }

func (c *Compositor) serve() {
	defer close(c.done)
	conn, err := c.ln.AcceptUnix()
	c.ln.Close()
	if err != nil {
		c.setErr(err)
		return
	}
	c.mu.Lock()
	c.wire = newWire(conn)
	c.mu.Unlock()

	for {
		msg, err := c.wire.read()
		if err != nil {
			c.setErr(err)
			return
		}
		c.mu.Lock()
		herr := c.handle(msg)
		c.mu.Unlock()
		if herr != nil {
			c.setErr(herr)
			return
		}
	}
}

func (c *Compositor) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed && c.err == nil {
		c.err = err
	}
}

// Done is closed once the client disconnected.
func (c *Compositor) Done() <-chan struct{} { return c.done }

// Err is the reason serving stopped, nil after Close.
func (c *Compositor) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Compositor) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.LiveSurfaces = len(c.surfaces)
	s.Held = len(c.held)
	s.Namespaces = append([]string(nil), c.stats.Namespaces...)
	s.Anchors = append([]uint32(nil), c.stats.Anchors...)
	s.Margins = append([][4]int32(nil), c.stats.Margins...)
	s.Buffers = append([]BufferInfo(nil), c.stats.Buffers...)
	s.Sources = append([]Rect(nil), c.stats.Sources...)
	s.Destinations = append([][2]int32(nil), c.stats.Destinations...)
	s.Transforms = append([]int32(nil), c.stats.Transforms...)
	return s
}

// Close disconnects the client.
func (c *Compositor) Close() error {
	c.mu.Lock()
	c.closed = true
	w := c.wire
	c.mu.Unlock()
	c.ln.Close()
	defer os.RemoveAll(c.dir)
	if w == nil {
		return nil
	}
	return w.close()
}

// PostError sends wl_display.error and disconnects, as a compositor does on
// a protocol violation.
func (c *Compositor) PostError(code uint32, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wire == nil {
		return
	}
	e := newEncoder(1, 0)
	e.uint(1)
	e.uint(code)
	e.string(message)
	_ = c.wire.write(e.bytes())
	c.closed = true
	c.wire.close()
}

// CloseLayerSurfaces sends closed to every layer surface.
func (c *Compositor) CloseLayerSurfaces() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, iface := range c.objects {
		if iface == wlr_layer_shell.ZwlrLayerSurfaceV1InterfaceName {
			c.send(id, 1)
		}
	}
}

// RemoveOutput withdraws the global of output idx.
func (c *Compositor) RemoveOutput(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, g := range c.globals {
		if g.output != idx {
			continue
		}
		for id, iface := range c.objects {
			if iface == "wl_registry" {
				c.send(id, 1, g.name)
			}
		}
	}
}

// SetOutputGeometry changes the scale and transform of output idx and
// announces them to every client object bound to it.
func (c *Compositor) SetOutputGeometry(idx int, scale, transform int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Outputs[idx].Scale = scale
	c.opts.Outputs[idx].Transform = transform
	for id, o := range c.outputs {
		if o.idx == idx {
			c.announceOutput(id, o)
		}
	}
}

// ReleaseHeld releases every buffer kept back by HoldBuffers.
func (c *Compositor) ReleaseHeld() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.held {
		if _, live := c.objects[id]; live {
			c.send(id, 0)
			c.stats.Releases++
		}
	}
	c.held = nil
}

func (c *Compositor) send(sender uint32, opcode uint16, args ...any) {
	if c.wire == nil || c.closed {
		return
	}
	e := newEncoder(sender, opcode)
	for _, a := range args {
		switch v := a.(type) {
		case uint32:
			e.uint(v)
		case int32:
			e.uint(uint32(v))
		case string:
			e.string(v)
		}
	}
	_ = c.wire.write(e.bytes())
}

func (c *Compositor) deleteID(id uint32) {
	delete(c.objects, id)
	c.send(1, 1, id)
}

func (c *Compositor) handle(msg *message) error {
	iface, ok := c.objects[msg.sender]
	if !ok {
		return fmt.Errorf("request %d on unknown object %d", msg.opcode, msg.sender)
	}
	a := msg.args
	switch iface {
	case "wl_display":
		switch msg.opcode {
		case 0:
			cb := a.uint()
			c.serial++
			c.send(cb, 0, c.serial)
			c.send(1, 1, cb)
		case 1:
			id := a.uint()
			c.objects[id] = "wl_registry"
			for _, g := range c.globals {
				c.send(id, 0, g.name, g.iface, g.version)
			}
		}

	case "wl_registry":
		name := a.uint()
		ifaceName := a.string()
		version := a.uint()
		id := a.uint()
		c.objects[id] = ifaceName
		for _, g := range c.globals {
			if g.name == name && g.output >= 0 {
				o := boundOutput{idx: g.output, version: version}
				c.outputs[id] = o
				c.announceOutput(id, o)
			}
		}
		if ifaceName == client.ShmInterfaceName {
			c.send(id, 0, uint32(0))
			c.send(id, 0, uint32(1))
		}

	case client.CompositorInterfaceName:
		id := a.uint()
		switch msg.opcode {
		case 0:
			c.objects[id] = "wl_surface"
			c.surfaces[id] = &surfaceState{output: -1}
			c.stats.Surfaces++
		case 1:
			c.objects[id] = "wl_region"
		}

	case "wl_region":
		if msg.opcode == 0 {
			c.deleteID(msg.sender)
		}

	case "wl_surface":
		c.handleSurface(msg)

	case client.ShmInterfaceName:
		id := a.uint()
		if fd := a.fd(); fd >= 0 {
			unix.Close(fd)
		}
		a.int()
		c.objects[id] = "wl_shm_pool"

	case "wl_shm_pool":
		switch msg.opcode {
		case 0:
			id := a.uint()
			a.int() // offset
			w, h := a.int(), a.int()
			c.objects[id] = "wl_buffer"
			c.stats.ShmBuffers++
			c.stats.Buffers = append(c.stats.Buffers, BufferInfo{Kind: "shm", Width: w, Height: h})
		case 1:
			c.deleteID(msg.sender)
		}

	case "wl_buffer":
		if msg.opcode == 0 {
			c.stats.DestroyedBuffers++
			for i, id := range c.held {
				if id == msg.sender {
					c.held = append(c.held[:i], c.held[i+1:]...)
					break
				}
			}
			c.deleteID(msg.sender)
		}

	case wlr_layer_shell.ZwlrLayerShellV1InterfaceName:
		if msg.opcode == 0 {
			id := a.uint()
			surface := a.uint()
			output := a.uint()
			a.uint() // layer
			ns := a.string()
			c.objects[id] = wlr_layer_shell.ZwlrLayerSurfaceV1InterfaceName
			if s := c.surfaces[surface]; s != nil {
				s.layer = id
				if o, ok := c.outputs[output]; ok {
					s.output = o.idx
				}
			}
			c.stats.LayerSurfaces++
			c.stats.Namespaces = append(c.stats.Namespaces, ns)
		} else {
			c.deleteID(msg.sender)
		}

	case wlr_layer_shell.ZwlrLayerSurfaceV1InterfaceName:
		switch msg.opcode {
		case 1:
			c.stats.Anchors = append(c.stats.Anchors, a.uint())
		case 3:
			c.stats.Margins = append(c.stats.Margins, [4]int32{a.int(), a.int(), a.int(), a.int()})
		case 6:
			c.stats.AckConfigures++
		case 7:
			c.deleteID(msg.sender)
		}

	case linux_dmabuf.ZwpLinuxDmabufV1InterfaceName:
		if msg.opcode == 1 {
			c.objects[a.uint()] = linux_dmabuf.ZwpLinuxBufferParamsV1InterfaceName
		} else {
			c.deleteID(msg.sender)
		}

	case linux_dmabuf.ZwpLinuxBufferParamsV1InterfaceName:
		switch msg.opcode {
		case 0:
			c.deleteID(msg.sender)
		case 1:
			if fd := a.fd(); fd >= 0 {
				unix.Close(fd)
			}
		case 3:
			id := a.uint()
			w, h := a.int(), a.int()
			c.objects[id] = "wl_buffer"
			c.stats.DmabufBuffers++
			c.stats.Buffers = append(c.stats.Buffers, BufferInfo{Kind: "dmabuf", Width: w, Height: h})
			if c.opts.FailDmabuf {
				c.send(msg.sender, 1)
			}
		}

	case viewporter.WpViewporterInterfaceName:
		if msg.opcode == 1 {
			c.objects[a.uint()] = viewporter.WpViewportInterfaceName
			c.stats.Viewports++
		} else {
			c.deleteID(msg.sender)
		}

	case viewporter.WpViewportInterfaceName:
		switch msg.opcode {
		case 0:
			c.deleteID(msg.sender)
		case 1:
			c.stats.Sources = append(c.stats.Sources, Rect{X: a.fixed(), Y: a.fixed(), W: a.fixed(), H: a.fixed()})
		case 2:
			c.stats.Destinations = append(c.stats.Destinations, [2]int32{a.int(), a.int()})
		}

	case client.OutputInterfaceName:
		if msg.opcode == 0 {
			delete(c.outputs, msg.sender)
			c.deleteID(msg.sender)
		}
	}
	return a.err
}

func (c *Compositor) announceOutput(id uint32, o boundOutput) {
	spec := c.opts.Outputs[o.idx]
	c.send(id, 0, int32(0), int32(0), int32(0), int32(0), int32(0), "vidpaper", "virtual", spec.Transform)
	c.send(id, 1, uint32(3), spec.Width, spec.Height, int32(60000))
	if o.version >= 2 {
		c.send(id, 3, max(spec.Scale, 1))
	}
	if o.version >= 4 && spec.Name != "" {
		c.send(id, 4, spec.Name)
	}
	if o.version >= 2 {
		c.send(id, 2)
	}
}

func (c *Compositor) handleSurface(msg *message) {
	s := c.surfaces[msg.sender]
	if s == nil {
		return
	}
	a := msg.args
	switch msg.opcode {
	case 0:
		delete(c.surfaces, msg.sender)
		c.deleteID(msg.sender)
	case 1:
		s.pending = a.uint()
		c.stats.Attaches++
	case 3:
		cb := a.uint()
		c.objects[cb] = "wl_callback"
		s.frames = append(s.frames, cb)
		c.stats.FrameRequests++
	case 6:
		c.stats.Commits++
		c.commit(s)
	case 7:
		c.stats.Transforms = append(c.stats.Transforms, a.int())
	}
}

func (c *Compositor) commit(s *surfaceState) {
	if s.layer != 0 && !s.configured {
		s.configured = true
		w, h := int32(1920), int32(1080)
		if s.output >= 0 {
			spec := c.opts.Outputs[s.output]
			w, h = spec.Width/max(spec.Scale, 1), spec.Height/max(spec.Scale, 1)
		}
		c.serial++
		c.send(s.layer, 0, c.serial, uint32(w), uint32(h))
		return
	}

	if s.pending != 0 {
		if prev := s.attached; prev != 0 && prev != s.pending {
			if _, live := c.objects[prev]; live {
				if c.opts.HoldBuffers {
					c.held = append(c.held, prev)
				} else {
					c.send(prev, 0)
					c.stats.Releases++
				}
			}
		}
		s.attached = s.pending
		s.pending = 0
	}

	if len(s.frames) == 0 {
		return
	}
	frames := s.frames
	s.frames = nil
	time.AfterFunc(c.opts.FrameInterval, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for _, cb := range frames {
			if _, live := c.objects[cb]; !live {
				continue
			}
			c.serial++
			c.send(cb, 0, c.serial)
			c.deleteID(cb)
		}
	})
}
