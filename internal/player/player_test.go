package player

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/metrics"
	"github.com/matjam/vidpaper/internal/types"
	"github.com/matjam/vidpaper/internal/wayland"
	"github.com/matjam/vidpaper/internal/wayland/wltest"
	"github.com/spf13/afero"
)

const metricsPath = "/run/vidpaper/metrics.json"

type fakeSource struct {
	total    int
	left     int
	drainErr error
	rewinds  int
	onRewind func()
	closed   bool
}

func newFakeSource(frames int) *fakeSource {
	return &fakeSource{total: frames, left: frames}
}

func (f *fakeSource) TryPull() (frame.Payload, error) {
	if f.left == 0 {
		return nil, nil
	}
	f.left--
	px := make([]byte, 4*4*frame.BytesPerPixel)
	return frame.NewFrame(4, 4, 4*frame.BytesPerPixel, px)
}

func (f *fakeSource) Drain() (bool, error) {
	if f.drainErr != nil {
		return false, f.drainErr
	}
	return f.left == 0, nil
}

func (f *fakeSource) Rewind() error {
	f.rewinds++
	f.left = f.total
	if f.onRewind != nil {
		f.onRewind()
	}
	return nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func newTestSession(t *testing.T, opts Options) (*Session, afero.Fs) {
	t.Helper()
	s, fs, _ := newTestSessionWith(t, opts)
	return s, fs
}

func newTestSessionWith(t *testing.T, opts Options) (*Session, afero.Fs, *wltest.Compositor) {
	t.Helper()
	comp, err := wltest.Start(wltest.Options{
		Outputs: []wltest.OutputSpec{{Name: "DP-1", Width: 320, Height: 180}},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { comp.Close() })

	fs := afero.NewMemMapFs()
	opts.Backend = types.BackendLayerShell
	opts.Scale = types.ScaleModeFill
	opts.Dmabuf = types.DmabufOff
	opts.MetricsFile = metricsPath
	opts.Fs = fs
	opts.Connect = func() (*wayland.Conn, error) { return wayland.Connect(comp.Addr()) }

	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	s.initDecoders = func() []string { return []string{"vah264dec"} }
	return s, fs, comp
}

func readSnapshot(t *testing.T, fs afero.Fs) *metrics.Snapshot {
	t.Helper()
	snap, err := metrics.ReadSnapshot(fs, metricsPath)
	if err != nil {
		t.Fatal(err)
	}
	if snap == nil {
		t.Fatal("no metrics snapshot was written")
	}
	return snap
}

func TestBlankSourceWritesPlaceholderSnapshot(t *testing.T) {
	s, fs := newTestSession(t, Options{Input: "blank://"})
	s.initDecoders = func() []string {
		t.Error("blank source initialized the decoder")
		return nil
	}

	if err := s.Play(context.Background()); err != nil {
		t.Fatalf("Play() = %v", err)
	}

	snap := readSnapshot(t, fs)
	if snap.SampleCount != 0 {
		t.Errorf("sample_count = %d, want 0", snap.SampleCount)
	}
	if snap.Notes == nil || *snap.Notes == "" {
		t.Error("placeholder snapshot has no note")
	}
	if snap.Backend != string(types.BackendLayerShell) {
		t.Errorf("backend = %q", snap.Backend)
	}
	if len(snap.HardwareDecoders) != 0 {
		t.Errorf("hardware_decoders = %v, want empty", snap.HardwareDecoders)
	}
	if s.Snapshot() == nil {
		t.Error("session does not expose the flushed snapshot")
	}
}

func TestBlankLoopRunsUntilCancelled(t *testing.T) {
	s, _ := newTestSession(t, Options{Input: "none", Loop: true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Play(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("looping blank playback returned early: %v", err)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Play() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Play did not return after cancellation")
	}
}

func TestStopEndsSession(t *testing.T) {
	s, _ := newTestSession(t, Options{Input: "blank", Loop: true})

	done := make(chan error, 1)
	go func() { done <- s.Play(context.Background()) }()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Play() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Play did not return after Stop")
	}
}

func TestPlaybackFlushesStoppedNote(t *testing.T) {
	s, fs := newTestSession(t, Options{Input: "clip.mp4"})
	src := newFakeSource(20)
	s.openSource = func(Options) (source, error) { return src, nil }

	if err := s.Play(context.Background()); err != nil {
		t.Fatalf("Play() = %v", err)
	}

	snap := readSnapshot(t, fs)
	if snap.SampleCount != 19 {
		t.Errorf("sample_count = %d, want 19", snap.SampleCount)
	}
	if snap.Notes == nil || *snap.Notes != metrics.StoppedNote {
		t.Errorf("notes = %v, want %q", snap.Notes, metrics.StoppedNote)
	}
	if len(snap.HardwareDecoders) != 1 || snap.HardwareDecoders[0] != "vah264dec" {
		t.Errorf("hardware_decoders = %v", snap.HardwareDecoders)
	}
	if !src.closed {
		t.Error("source was not closed")
	}
}

func TestPipelineErrorIsFatal(t *testing.T) {
	s, fs := newTestSession(t, Options{Input: "clip.mp4", Loop: true})
	src := newFakeSource(3)
	src.drainErr = errors.New("GStreamer error from qtdemux0: Internal data stream error.")
	s.openSource = func(Options) (source, error) { return src, nil }

	err := s.Play(context.Background())
	if err == nil || err.Error() != src.drainErr.Error() {
		t.Fatalf("Play() = %v, want %v", err, src.drainErr)
	}

	snap := readSnapshot(t, fs)
	if snap.Notes == nil || *snap.Notes != src.drainErr.Error() {
		t.Errorf("notes = %v, want the pipeline error", snap.Notes)
	}
}

func TestRendererFailureIsPersisted(t *testing.T) {
	s, fs, comp := newTestSessionWith(t, Options{Input: "clip.mp4", Loop: true})
	src := newFakeSource(3)
	s.openSource = func(Options) (source, error) { return src, nil }

	done := make(chan error, 1)
	go func() { done <- s.Play(context.Background()) }()
	time.Sleep(100 * time.Millisecond)
	comp.Close()

	var err error
	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Play did not return after the compositor went away")
	}
	if err == nil {
		t.Fatal("Play() succeeded after losing the compositor")
	}

	snap := readSnapshot(t, fs)
	if snap.Notes == nil || *snap.Notes != err.Error() {
		t.Errorf("notes = %v, want %q", snap.Notes, err.Error())
	}
	if *snap.Notes == metrics.StoppedNote {
		t.Error("renderer failure recorded as a clean stop")
	}
}

func TestDecodeLoopStoresLatestFrame(t *testing.T) {
	src := newFakeSource(5)
	mailbox := new(frame.Mailbox)
	var stop atomic.Bool

	if err := decodeLoop(src, mailbox, nil, &stop, false); err != nil {
		t.Fatal(err)
	}
	if n := mailbox.Writes(); n != 5 {
		t.Errorf("mailbox writes = %d, want 5", n)
	}
	if p := mailbox.Load(); p == nil {
		t.Error("mailbox is empty after playback")
	} else {
		p.Release()
	}
	if src.rewinds != 0 {
		t.Errorf("rewound %d times without looping", src.rewinds)
	}
}

func TestDecodeLoopRewindsWhenLooping(t *testing.T) {
	src := newFakeSource(2)
	var stop atomic.Bool
	src.onRewind = func() {
		if src.rewinds == 3 {
			stop.Store(true)
		}
	}

	if err := decodeLoop(src, new(frame.Mailbox), nil, &stop, true); err != nil {
		t.Fatal(err)
	}
	if src.rewinds != 3 {
		t.Errorf("rewinds = %d, want 3", src.rewinds)
	}
}

func TestDecodeLoopErrorSetsStop(t *testing.T) {
	src := newFakeSource(1)
	src.drainErr = errors.New("boom")
	var stop atomic.Bool

	if err := decodeLoop(src, new(frame.Mailbox), nil, &stop, true); err == nil {
		t.Fatal("expected pipeline error")
	}
	if !stop.Load() {
		t.Error("pipeline error did not request shutdown")
	}
}

func TestBackendMustBeResolved(t *testing.T) {
	if _, err := New(Options{Backend: types.BackendAuto}); err == nil {
		t.Error("auto backend accepted without detection")
	}
	for _, b := range []types.Backend{types.BackendGStreamer, types.BackendLayerShell} {
		s, err := New(Options{Backend: b})
		if err != nil {
			t.Fatalf("New(%s) = %v", b, err)
		}
		if s.Backend() != b {
			t.Errorf("Backend() = %s, want %s", s.Backend(), b)
		}
		if s.SessionID() == "" {
			t.Error("session has no id")
		}
	}
}
