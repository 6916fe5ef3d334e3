package buffers

import (
	"testing"

	"github.com/matjam/vidpaper/internal/proto/linux_dmabuf"
	"github.com/matjam/vidpaper/internal/types"
	"github.com/matjam/vidpaper/internal/wayland"
	"github.com/matjam/vidpaper/internal/wayland/wltest"
	"github.com/rajveermalviya/go-wayland/wayland/client"
)

func bindShm(t *testing.T, opts wltest.Options) (*wayland.Conn, *wltest.Compositor, *client.Shm, *linux_dmabuf.ZwpLinuxDmabufV1) {
	t.Helper()
	comp, err := wltest.Start(opts)
	if err != nil {
		t.Fatal(err)
	}
	conn, err := wayland.Connect(comp.Addr())
	if err != nil {
		comp.Close()
		t.Fatal(err)
	}
	t.Cleanup(func() {
		conn.Close()
		comp.Close()
	})

	reg, err := conn.Display.GetRegistry()
	if err != nil {
		t.Fatal(err)
	}
	var shm *client.Shm
	var dmabuf *linux_dmabuf.ZwpLinuxDmabufV1
	reg.SetGlobalHandler(func(e client.RegistryGlobalEvent) {
		switch e.Interface {
		case client.ShmInterfaceName:
			shm = client.NewShm(conn.Context)
			if err := reg.Bind(e.Name, e.Interface, 1, shm); err != nil {
				t.Error(err)
			}
		case linux_dmabuf.ZwpLinuxDmabufV1InterfaceName:
			dmabuf = linux_dmabuf.NewZwpLinuxDmabufV1(conn.Context)
			if err := reg.Bind(e.Name, e.Interface, min(e.Version, 3), dmabuf); err != nil {
				t.Error(err)
			}
		}
	})
	if err := conn.Roundtrip(); err != nil {
		t.Fatal(err)
	}
	if shm == nil {
		t.Fatal("wl_shm not bound")
	}
	return conn, comp, shm, dmabuf
}

func TestShmBufferMapsCanvas(t *testing.T) {
	conn, comp, shm, _ := bindShm(t, wltest.Options{})

	b, err := NewShmBuffer(shm, 64, 32)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(b.Canvas()), 64*32*4; got != want {
		t.Fatalf("canvas is %d bytes, want %d", got, want)
	}
	b.Canvas()[0] = 0xff
	if err := conn.Roundtrip(); err != nil {
		t.Fatal(err)
	}
	if n := comp.Stats().ShmBuffers; n != 1 {
		t.Errorf("compositor saw %d shm buffers", n)
	}
	b.Destroy()
	b.Destroy()
	if b.Canvas() != nil {
		t.Error("canvas still mapped after Destroy")
	}
}

func TestShmBufferRejectsEmptySize(t *testing.T) {
	_, _, shm, _ := bindShm(t, wltest.Options{})
	if _, err := NewShmBuffer(shm, 0, 10); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestManagerWithoutHeapDegrades(t *testing.T) {
	_, _, shm, dmabuf := bindShm(t, wltest.Options{Dmabuf: true})
	if dmabuf == nil {
		t.Fatal("dmabuf not bound")
	}
	missing := []string{t.TempDir() + "/no-such-heap"}

	m, err := NewManager(types.DmabufAuto, shm, dmabuf, missing)
	if err != nil {
		t.Fatalf("auto mode: %v", err)
	}
	if m.CanAllocate() {
		t.Error("allocation enabled without a heap")
	}
	if !m.CanImport() {
		t.Error("import disabled although the protocol is present")
	}
	if err := m.Disable(ErrNoHeap); err != nil {
		t.Fatal(err)
	}
	if m.ZeroCopy() {
		t.Error("zero-copy still enabled after Disable")
	}

	if _, err := NewManager(types.DmabufOn, shm, dmabuf, missing); err == nil {
		t.Fatal("on mode accepted a missing heap")
	}

	off, err := NewManager(types.DmabufOff, shm, dmabuf, missing)
	if err != nil || off.ZeroCopy() {
		t.Fatalf("off mode: zeroCopy=%v err=%v", off.ZeroCopy(), err)
	}
}
