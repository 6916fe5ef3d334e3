package player

import (
	"context"
	"fmt"
	"time"

	"github.com/matjam/vidpaper/internal/decode"
	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/media"
	"github.com/matjam/vidpaper/internal/metrics"
	"github.com/matjam/vidpaper/internal/types"
	"github.com/matjam/vidpaper/internal/wlrenderer"
)

const (
	blankIdleInterval = 200 * time.Millisecond
	blankHold         = 400 * time.Millisecond
)

// backend is implemented only by windowedBackend and layerShellBackend.
type backend interface {
	kind() types.Backend
	play(ctx context.Context, s *Session) error
}

func backendFor(b types.Backend) (backend, error) {
	switch b {
	case types.BackendGStreamer:
		return windowedBackend{}, nil
	case types.BackendLayerShell:
		return layerShellBackend{}, nil
	}
	return nil, fmt.Errorf("backend %q must be resolved before playback", b)
}

type windowedBackend struct{}

func (windowedBackend) kind() types.Backend { return types.BackendGStreamer }

func (windowedBackend) play(ctx context.Context, s *Session) error {
	hw := s.initDecoders()

	note := metrics.WindowedNote
	if media.IsBlankSource(s.opts.Input) {
		note = metrics.BlankSourceNote
	}
	s.newRecorder(hw).Flush(note)

	return decode.PlayWindowed(ctx, decode.WindowedOptions{
		Input:  s.opts.Input,
		Loop:   s.opts.Loop,
		Output: s.opts.Output,
		Mute:   s.opts.Mute,
	})
}

type layerShellBackend struct{}

func (layerShellBackend) kind() types.Backend { return types.BackendLayerShell }

func (layerShellBackend) play(ctx context.Context, s *Session) error {
	mailbox := new(frame.Mailbox)
	defer mailbox.Clear()

	done, err := wlrenderer.Start(wlrenderer.Options{
		Connect: s.opts.Connect,
		Mailbox: mailbox,
		Scale:   s.opts.Scale,
		Dmabuf:  s.opts.Dmabuf,
		Output:  s.opts.Output,
		Stop:    &s.stop,
		Heaps:   s.opts.Heaps,
	})
	if err != nil {
		return err
	}

	rec, feedErr := s.feed(mailbox)
	s.stop.Store(true)
	renderErr := <-done

	err = feedErr
	if err == nil {
		err = renderErr
	}
	if err != nil {
		rec.Flush(err.Error())
		return err
	}
	rec.Flush(metrics.StoppedNote)
	return nil
}

// feed runs on the calling goroutine until the session stops. The returned
// recorder still needs its final flush once the renderer has exited; it is
// nil for blank sources.
func (s *Session) feed(mailbox *frame.Mailbox) (*metrics.Recorder, error) {
	if media.IsBlankSource(s.opts.Input) {
		s.newRecorder(nil).Flush(metrics.BlankSourceNote)
		logger.Infof("playing blank layer-shell background (%s)", describe(s.opts))
		if !s.opts.Loop {
			time.Sleep(blankHold)
			return nil, nil
		}
		for !s.stop.Load() {
			time.Sleep(blankIdleInterval)
		}
		return nil, nil
	}

	hw := s.initDecoders()
	src, err := s.openSource(s.opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn(err)
		}
	}()

	rec := s.newRecorder(hw)
	logger.Infof("playing layer-shell background: %s (%s)", s.opts.Input, describe(s.opts))

	return rec, decodeLoop(src, mailbox, rec, &s.stop, s.opts.Loop)
}
