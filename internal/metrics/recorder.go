// Package metrics samples inter-frame timing and persists frame-rate
// snapshots for external status tools.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

const (
	SchemaVersion   = 1
	HistoryLimit    = 900
	FlushInterval   = 200 * time.Millisecond
	MaxSampleRate   = 1000.0
	BlankSourceNote = "blank source does not emit FPS samples"
	StoppedNote     = "playback stopped"
	WindowedNote    = "FPS sampling is only available on layer-shell backend. Switch VIDPAPER_BACKEND=layer-shell for frame metrics."
)

// Snapshot is the persisted telemetry record. It is rewritten wholesale on
// every flush.
type Snapshot struct {
	SchemaVersion    int       `json:"schema_version"`
	Backend          string    `json:"backend"`
	Input            string    `json:"input"`
	Output           *string   `json:"output"`
	SampleCount      uint64    `json:"sample_count"`
	AvgFPS           float64   `json:"avg_fps"`
	Low95FPS         float64   `json:"low95_fps"`
	Low99FPS         float64   `json:"low99_fps"`
	MinFPS           float64   `json:"min_fps"`
	MaxFPS           float64   `json:"max_fps"`
	LastFPS          float64   `json:"last_fps"`
	UpdatedUnixMS    uint64    `json:"updated_unix_ms"`
	RecentFPS        []float64 `json:"recent_fps"`
	HardwareDecoders []string  `json:"hardware_decoders"`
	Notes            *string   `json:"notes"`
}

type Options struct {
	Path             string
	Backend          string
	Input            string
	Output           string
	HardwareDecoders []string

	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Interval defaults to FlushInterval.
	Interval time.Duration
}

// Recorder accumulates frame timings. A nil *Recorder is valid and records
// nothing, which is what New returns when no path was requested.
type Recorder struct {
	opts Options
	log  *log.Logger

	mu        sync.Mutex
	lastFrame time.Time
	lastFlush time.Time
	history   []float64
	head      int
	count     uint64
	last      float64
	writes    uint64

	latest atomic.Pointer[Snapshot]
}

func New(opts Options) *Recorder {
	if opts.Path == "" {
		return nil
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Interval <= 0 {
		opts.Interval = FlushInterval
	}
	if opts.HardwareDecoders == nil {
		opts.HardwareDecoders = []string{}
	}
	return &Recorder{
		opts:    opts,
		log:     log.WithPrefix("metrics"),
		history: make([]float64, 0, HistoryLimit),
	}
}

// Record notes that a frame was decoded now. The first frame yields no sample.
func (r *Recorder) Record() {
	if r == nil {
		return
	}
	now := r.opts.Clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.lastFrame.IsZero() {
		if delta := now.Sub(r.lastFrame).Seconds(); delta > 0 {
			r.push(clampRate(1 / delta))
		}
	}
	r.lastFrame = now
}

func (r *Recorder) push(rate float64) {
	if len(r.history) < HistoryLimit {
		r.history = append(r.history, rate)
	} else {
		r.history[r.head] = rate
		r.head = (r.head + 1) % HistoryLimit
	}
	r.count++
	r.last = rate
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > MaxSampleRate {
		return MaxSampleRate
	}
	return rate
}

// FlushIfDue persists a snapshot when the interval elapsed since the last one
// or when nothing was written yet.
func (r *Recorder) FlushIfDue() {
	if r == nil {
		return
	}
	now := r.opts.Clock()
	r.mu.Lock()
	due := r.lastFlush.IsZero() || now.Sub(r.lastFlush) >= r.opts.Interval
	r.mu.Unlock()
	if due {
		r.flush(now, "")
	}
}

// Flush persists a snapshot unconditionally, attaching note when non-empty.
func (r *Recorder) Flush(note string) {
	if r == nil {
		return
	}
	r.flush(r.opts.Clock(), note)
}

func (r *Recorder) flush(now time.Time, note string) {
	r.mu.Lock()
	snap := r.snapshot(now, note)
	r.lastFlush = now
	r.mu.Unlock()

	r.latest.Store(snap)
	if err := WriteSnapshot(r.opts.Fs, r.opts.Path, snap); err != nil {
		r.log.Warnf("failed to write metrics file %s: %v", r.opts.Path, err)
		return
	}
	r.mu.Lock()
	r.writes++
	r.mu.Unlock()
}

func (r *Recorder) snapshot(now time.Time, note string) *Snapshot {
	recent := r.recent()
	snap := &Snapshot{
		SchemaVersion:    SchemaVersion,
		Backend:          r.opts.Backend,
		Input:            r.opts.Input,
		SampleCount:      r.count,
		AvgFPS:           MeanFPS(recent),
		Low95FPS:         PercentileLowFPS(recent, 0.95),
		Low99FPS:         PercentileLowFPS(recent, 0.99),
		LastFPS:          r.last,
		UpdatedUnixMS:    uint64(max(now.UnixMilli(), 0)),
		RecentFPS:        recent,
		HardwareDecoders: r.opts.HardwareDecoders,
	}
	if len(recent) > 0 {
		snap.MinFPS, snap.MaxFPS = recent[0], recent[0]
		for _, v := range recent[1:] {
			snap.MinFPS = min(snap.MinFPS, v)
			snap.MaxFPS = max(snap.MaxFPS, v)
		}
	}
	if r.opts.Output != "" {
		output := r.opts.Output
		snap.Output = &output
	}
	if note != "" {
		snap.Notes = &note
	}
	return snap
}

// recent returns the ring in arrival order.
func (r *Recorder) recent() []float64 {
	out := make([]float64, 0, len(r.history))
	if len(r.history) < HistoryLimit {
		return append(out, r.history...)
	}
	out = append(out, r.history[r.head:]...)
	return append(out, r.history[:r.head]...)
}

// Latest is the most recently flushed snapshot, or nil.
func (r *Recorder) Latest() *Snapshot {
	if r == nil {
		return nil
	}
	return r.latest.Load()
}

// Writes counts successful snapshot writes.
func (r *Recorder) Writes() uint64 {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func MeanFPS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	return sum / float64(len(samples))
}

// PercentileLowFPS returns the sample at the (1-keep) tail boundary of the
// ascending-sorted samples, e.g. keep=0.95 gives the 5th percentile low.
func PercentileLowFPS(samples []float64, keep float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	tail := 1 - keep
	if tail < 0 {
		tail = 0
	}
	if tail > 1 {
		tail = 1
	}
	idx := int(roundHalfAway(float64(len(sorted)-1) * tail))
	return sorted[min(idx, len(sorted)-1)]
}

func roundHalfAway(v float64) float64 {
	if v < 0 {
		return -roundHalfAway(-v)
	}
	return float64(int64(v + 0.5))
}
