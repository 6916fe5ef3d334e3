package frame

import (
	"errors"
	"os"
	"sync"
	"testing"

	"golang.org/x/sys/unix"
)

type countingCloser struct{ n int }

func (c *countingCloser) Close() error { c.n++; return nil }

func pipeFD(t *testing.T) int {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close(); w.Close() })
	return int(r.Fd())
}

func fdOpen(fd int) bool {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	return err == nil
}

func TestDupPlaneOwnsIndependentDescriptor(t *testing.T) {
	src := pipeFD(t)
	p, err := DupPlane(src, 64, 256)
	if err != nil {
		t.Fatal(err)
	}
	if p.FD() == src {
		t.Fatal("plane shares the source descriptor")
	}
	flags, err := unix.FcntlInt(uintptr(p.FD()), unix.F_GETFD, 0)
	if err != nil {
		t.Fatal(err)
	}
	if flags&unix.FD_CLOEXEC == 0 {
		t.Error("duplicate is not close-on-exec")
	}
	dup := p.FD()
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if fdOpen(dup) {
		t.Error("duplicate still open after Close")
	}
	if !fdOpen(src) {
		t.Error("source descriptor was closed")
	}
}

func TestImportedReleaseClosesOnLastReference(t *testing.T) {
	p, err := DupPlane(pipeFD(t), 0, 64)
	if err != nil {
		t.Fatal(err)
	}
	keep := &countingCloser{}
	img := NewImported(16, 16, FormatXRGB8888, ModifierLinear, []*Plane{p}, keep, nil)

	img.Retain()
	img.Release()
	if keep.n != 0 {
		t.Fatal("released while a reference was outstanding")
	}
	img.Release()
	if keep.n != 1 {
		t.Fatalf("keepalive closed %d times", keep.n)
	}
	img.Release()
	if keep.n != 1 {
		t.Fatalf("keepalive closed again on over-release")
	}
}

func TestImportedCPUFrameRequiresSinglePackedPlane(t *testing.T) {
	mapped := &Frame{Width: 1, Height: 1, Stride: 4, Pixels: []byte{1, 2, 3, 4}}
	mapper := func() (*Frame, error) { return mapped, nil }

	two := NewImported(1, 1, FormatARGB8888, 0, []*Plane{{fd: -1}, {fd: -1}}, nil, mapper)
	if _, err := two.CPUFrame(); !errors.Is(err, ErrNotMappable) {
		t.Errorf("two planes: err = %v", err)
	}

	nv12 := NewImported(1, 1, Fourcc('N', 'V', '1', '2'), 0, []*Plane{{fd: -1}}, nil, mapper)
	if _, err := nv12.CPUFrame(); !errors.Is(err, ErrNotMappable) {
		t.Errorf("NV12: err = %v", err)
	}

	calls := 0
	ok := NewImported(1, 1, FormatARGB8888, 0, []*Plane{{fd: -1}}, nil, func() (*Frame, error) {
		calls++
		return mapped, nil
	})
	for i := 0; i < 2; i++ {
		f, err := ok.CPUFrame()
		if err != nil || f != mapped {
			t.Fatalf("CPUFrame = %v, %v", f, err)
		}
	}
	if calls != 1 {
		t.Errorf("mapper called %d times", calls)
	}
}

func TestMailboxLatestWins(t *testing.T) {
	var m Mailbox
	if m.Load() != nil {
		t.Fatal("empty mailbox returned a payload")
	}

	first := &countingCloser{}
	a := NewImported(1, 1, FormatARGB8888, 0, nil, first, nil)
	m.Store(a)

	held := m.Load()
	b := &Frame{Width: 2, Height: 2, Stride: 8, Pixels: make([]byte, 16)}
	m.Store(b)

	if first.n != 0 {
		t.Fatal("payload released while a reader still held it")
	}
	held.Release()
	if first.n != 1 {
		t.Fatal("replaced payload was not released")
	}

	got := m.Load()
	if got != Payload(b) {
		t.Fatalf("Load = %v, want the newest frame", got)
	}
	if m.Writes() != 2 {
		t.Errorf("Writes = %d", m.Writes())
	}
}

func TestMailboxConcurrentAccess(t *testing.T) {
	var m Mailbox
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= 500; i++ {
			m.Store(&Frame{Width: i, Height: 1, Stride: i * 4})
		}
	}()
	go func() {
		defer wg.Done()
		last := 0
		for i := 0; i < 500; i++ {
			p := m.Load()
			if p == nil {
				continue
			}
			w, _ := p.Size()
			if w < last {
				t.Errorf("observed width %d after %d", w, last)
			}
			last = w
			p.Release()
		}
	}()
	wg.Wait()
}

func TestNewFrameValidatesLayout(t *testing.T) {
	if _, err := NewFrame(2, 2, 4, make([]byte, 16)); err == nil {
		t.Error("short stride accepted")
	}
	if _, err := NewFrame(2, 2, 8, make([]byte, 12)); err == nil {
		t.Error("short buffer accepted")
	}
	f, err := NewFrame(2, 2, 12, make([]byte, 20))
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Row(1)) != 8 {
		t.Errorf("row length %d", len(f.Row(1)))
	}
}

func TestFourccString(t *testing.T) {
	if s := FourccString(FormatARGB8888); s != "AR24" {
		t.Errorf("FourccString = %q", s)
	}
	if s := FourccString(0); s != "0x00000000" {
		t.Errorf("FourccString(0) = %q", s)
	}
}
