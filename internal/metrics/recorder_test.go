package metrics

import (
	"testing"
	"time"

	"github.com/spf13/afero"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRecorder(t *testing.T) (*Recorder, afero.Fs, *fakeClock) {
	t.Helper()
	fs := afero.NewMemMapFs()
	clock := &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
	r := New(Options{
		Path:             "/state/vidpaper/metrics.json",
		Backend:          "layer-shell",
		Input:            "file:///videos/loop.mp4",
		Output:           "DP-1",
		HardwareDecoders: []string{"vah264dec"},
		Fs:               fs,
		Clock:            clock.Now,
	})
	return r, fs, clock
}

func TestMeanFPS(t *testing.T) {
	if got := MeanFPS([]float64{30, 60, 90}); got != 60 {
		t.Errorf("MeanFPS = %v", got)
	}
	if got := MeanFPS(nil); got != 0 {
		t.Errorf("MeanFPS(nil) = %v", got)
	}
}

func TestPercentileLowFPS(t *testing.T) {
	samples := []float64{120, 90, 60, 45, 30}
	for _, keep := range []float64{0.95, 0.99} {
		if got := PercentileLowFPS(samples, keep); got != 30 {
			t.Errorf("PercentileLowFPS(%v) = %v, want 30", keep, got)
		}
	}
	if got := PercentileLowFPS(samples, 0.5); got != 60 {
		t.Errorf("median = %v, want 60", got)
	}
	if got := PercentileLowFPS(samples, 2); got != 30 {
		t.Errorf("keep clamp = %v", got)
	}
	if samples[0] != 120 {
		t.Error("input slice was reordered")
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	r := New(Options{})
	if r != nil {
		t.Fatal("recorder without a path should be nil")
	}
	r.Record()
	r.FlushIfDue()
	r.Flush("x")
	if r.Latest() != nil || r.Writes() != 0 {
		t.Error("nil recorder produced output")
	}
}

func TestFlushCadenceProducesIncreasingTimestamps(t *testing.T) {
	r, fs, clock := newTestRecorder(t)

	r.Record()
	r.FlushIfDue()
	first, err := ReadSnapshot(fs, "/state/vidpaper/metrics.json")
	if err != nil || first == nil {
		t.Fatalf("first snapshot: %v %v", first, err)
	}
	if first.SampleCount != 0 {
		t.Errorf("first frame produced %d samples", first.SampleCount)
	}

	clock.Advance(250 * time.Millisecond)
	r.Record()
	r.FlushIfDue()
	second, err := ReadSnapshot(fs, "/state/vidpaper/metrics.json")
	if err != nil {
		t.Fatal(err)
	}

	if r.Writes() != 2 {
		t.Fatalf("writes = %d, want 2", r.Writes())
	}
	if second.UpdatedUnixMS <= first.UpdatedUnixMS {
		t.Errorf("timestamps not increasing: %d then %d", first.UpdatedUnixMS, second.UpdatedUnixMS)
	}
	if second.SampleCount != 1 || second.LastFPS != 4 {
		t.Errorf("second snapshot = %+v", second)
	}
	if second.Output == nil || *second.Output != "DP-1" {
		t.Errorf("output = %v", second.Output)
	}
	if second.Notes != nil {
		t.Errorf("unexpected note %q", *second.Notes)
	}
	if ok, _ := afero.Exists(fs, "/state/vidpaper/metrics.json.tmp"); ok {
		t.Error("temporary file left behind")
	}
}

func TestFlushIfDueWaitsForInterval(t *testing.T) {
	r, _, clock := newTestRecorder(t)
	r.Record()
	r.FlushIfDue()
	for i := 0; i < 5; i++ {
		clock.Advance(30 * time.Millisecond)
		r.Record()
		r.FlushIfDue()
	}
	if r.Writes() != 1 {
		t.Errorf("writes = %d after 150ms, want 1", r.Writes())
	}
	clock.Advance(60 * time.Millisecond)
	r.FlushIfDue()
	if r.Writes() != 2 {
		t.Errorf("writes = %d after 210ms, want 2", r.Writes())
	}
}

func TestHistoryIsBoundedButCountIsNot(t *testing.T) {
	r, _, clock := newTestRecorder(t)
	r.Record()
	for i := 0; i < HistoryLimit+100; i++ {
		clock.Advance(10 * time.Millisecond)
		r.Record()
	}
	r.Flush(StoppedNote)
	snap := r.Latest()
	if snap.SampleCount != HistoryLimit+100 {
		t.Errorf("sample_count = %d", snap.SampleCount)
	}
	if len(snap.RecentFPS) != HistoryLimit {
		t.Errorf("recent_fps has %d entries", len(snap.RecentFPS))
	}
	if snap.AvgFPS != 100 || snap.MinFPS != 100 || snap.MaxFPS != 100 {
		t.Errorf("stats = %+v", snap)
	}
	if snap.Notes == nil || *snap.Notes != StoppedNote {
		t.Errorf("notes = %v", snap.Notes)
	}
}

func TestRateIsClamped(t *testing.T) {
	r, _, clock := newTestRecorder(t)
	r.Record()
	clock.Advance(100 * time.Microsecond)
	r.Record()
	r.Flush("")
	if got := r.Latest().LastFPS; got != MaxSampleRate {
		t.Errorf("LastFPS = %v, want clamp to %v", got, MaxSampleRate)
	}
}

func TestRecentKeepsArrivalOrder(t *testing.T) {
	r, _, clock := newTestRecorder(t)
	r.Record()
	for i := 0; i < HistoryLimit; i++ {
		clock.Advance(20 * time.Millisecond)
		r.Record()
	}
	clock.Advance(10 * time.Millisecond)
	r.Record()
	r.Flush("")
	recent := r.Latest().RecentFPS
	if recent[len(recent)-1] != 100 || recent[0] != 50 {
		t.Errorf("ring order wrong: first=%v last=%v", recent[0], recent[len(recent)-1])
	}
}

func TestBlankPlaceholderSnapshot(t *testing.T) {
	r, fs, _ := newTestRecorder(t)
	r.Flush(BlankSourceNote)
	snap, err := ReadSnapshot(fs, "/state/vidpaper/metrics.json")
	if err != nil {
		t.Fatal(err)
	}
	if snap.SampleCount != 0 || len(snap.RecentFPS) != 0 {
		t.Errorf("placeholder has samples: %+v", snap)
	}
	if snap.Notes == nil || *snap.Notes == "" {
		t.Error("placeholder has no note")
	}
	if snap.SchemaVersion != SchemaVersion || snap.Backend != "layer-shell" {
		t.Errorf("header = %+v", snap)
	}
}

func TestReadSnapshotMissingFile(t *testing.T) {
	snap, err := ReadSnapshot(afero.NewMemMapFs(), "/nope.json")
	if snap != nil || err != nil {
		t.Errorf("ReadSnapshot = %v, %v", snap, err)
	}
}
