// Package player runs one playback session: it picks the backend, drives the
// decode loop and keeps the session's telemetry for the control socket.
package player

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/matjam/vidpaper/internal/decode"
	"github.com/matjam/vidpaper/internal/metrics"
	"github.com/matjam/vidpaper/internal/types"
	"github.com/matjam/vidpaper/internal/wayland"
	"github.com/spf13/afero"
)

var logger = log.WithPrefix("player")

type Options struct {
	Input       string
	Loop        bool
	Output      string
	Mute        bool
	MetricsFile string

	Backend types.Backend
	Scale   types.ScaleMode
	Dmabuf  types.DmabufMode

	// Fs receives the metrics snapshot; defaults to the OS filesystem.
	Fs afero.Fs
	// Connect overrides the compositor connection of the layer-shell backend.
	Connect func() (*wayland.Conn, error)
	// Heaps overrides the dma-heap candidates.
	Heaps []string
}

// Session is one call of Play. Its status methods are safe to use from other
// goroutines while it plays.
type Session struct {
	id      string
	started time.Time

	opts    Options
	backend backend

	stop     atomic.Bool
	mu       sync.Mutex
	cancel   context.CancelFunc
	recorder atomic.Pointer[metrics.Recorder]

	initDecoders func() []string
	openSource   func(Options) (source, error)
}

func New(opts Options) (*Session, error) {
	b, err := backendFor(opts.Backend)
	if err != nil {
		return nil, err
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	return &Session{
		id:           uuid.NewString(),
		started:      time.Now(),
		opts:         opts,
		backend:      b,
		initDecoders: decode.Init,
		openSource:   openPipeline,
	}, nil
}

// Play runs a session until the source ends without looping, ctx is
// cancelled, Stop is called, or playback fails.
func Play(ctx context.Context, opts Options) error {
	s, err := New(opts)
	if err != nil {
		return err
	}
	return s.Play(ctx)
}

func (s *Session) Play(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	stopped := s.stop.Load()
	s.mu.Unlock()
	if stopped {
		return nil
	}

	release := context.AfterFunc(ctx, func() { s.stop.Store(true) })
	defer release()

	logger.Debugf("session %s starting %s backend for %s", s.id, s.backend.kind(), s.opts.Input)
	if err := s.backend.play(ctx, s); err != nil {
		logger.Errorf("playback failed: %v", err)
		return err
	}
	return nil
}

// Stop requests a cooperative shutdown.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop.Store(true)
	if s.cancel != nil {
		s.cancel()
	}
}

// SessionID is a random UUID identifying this playback.
func (s *Session) SessionID() string      { return s.id }
func (s *Session) StartedAt() time.Time   { return s.started }
func (s *Session) Backend() types.Backend { return s.backend.kind() }
func (s *Session) Input() string          { return s.opts.Input }
func (s *Session) Output() string         { return s.opts.Output }

// Snapshot is the latest flushed metrics snapshot, or nil when metrics are
// off or nothing was flushed yet.
func (s *Session) Snapshot() *metrics.Snapshot {
	return s.recorder.Load().Latest()
}

func (s *Session) newRecorder(hardwareDecoders []string) *metrics.Recorder {
	rec := metrics.New(metrics.Options{
		Path:             s.opts.MetricsFile,
		Backend:          string(s.backend.kind()),
		Input:            s.opts.Input,
		Output:           s.opts.Output,
		HardwareDecoders: hardwareDecoders,
		Fs:               s.opts.Fs,
	})
	s.recorder.Store(rec)
	return rec
}

func outputLabel(output string) string {
	if output == "" {
		return "<all>"
	}
	return output
}

func describe(o Options) string {
	return fmt.Sprintf("loop=%t, output=%s, mute=%t, scale-mode=%s",
		o.Loop, outputLabel(o.Output), o.Mute, o.Scale)
}
