package player

import (
	"sync/atomic"
	"time"

	"github.com/matjam/vidpaper/internal/decode"
	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/media"
	"github.com/matjam/vidpaper/internal/metrics"
)

const decodeInterval = 8 * time.Millisecond

// source is a running decode pipeline; *decode.Pipeline in production.
type source interface {
	TryPull() (frame.Payload, error)
	Drain() (eos bool, err error)
	Rewind() error
	Close() error
}

func openPipeline(opts Options) (source, error) {
	uri, err := media.ToURI(opts.Input)
	if err != nil {
		return nil, err
	}
	p, err := decode.NewPipeline(decode.Options{URI: uri, Mute: opts.Mute, Dmabuf: opts.Dmabuf})
	if err != nil {
		return nil, err
	}
	if err := p.Start(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// decodeLoop moves frames from src into mailbox until stop is set, the
// stream ends without looping, or the pipeline fails. A failure sets stop.
func decodeLoop(src source, mailbox *frame.Mailbox, rec *metrics.Recorder, stop *atomic.Bool, loop bool) error {
	for !stop.Load() {
		payload, err := src.TryPull()
		switch {
		case err != nil:
			logger.Warnf("failed to decode sample frame: %v", err)
		case payload != nil:
			mailbox.Store(payload)
			rec.Record()
			rec.FlushIfDue()
		}

		eos, err := src.Drain()
		if err != nil {
			stop.Store(true)
			return err
		}
		if eos {
			if !loop {
				logger.Info("end of stream")
				return nil
			}
			if err := src.Rewind(); err != nil {
				stop.Store(true)
				return err
			}
		}

		time.Sleep(decodeInterval)
	}
	return nil
}
