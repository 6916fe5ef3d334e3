package decode

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/media"
	"github.com/matjam/vidpaper/internal/types"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

const appsinkMaxBuffers = 8

type Options struct {
	URI    string
	Mute   bool
	Dmabuf types.DmabufMode
}

// Pipeline is a playbin whose video sink is a polled appsink.
type Pipeline struct {
	playbin *gst.Element
	sink    *app.Sink
	bus     *gst.Bus

	zeroCopy      bool
	warnedCPUCopy bool
}

func NewPipeline(opts Options) (*Pipeline, error) {
	playbin, err := newElement("playbin", "")
	if err != nil {
		return nil, err
	}

	sink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("GStreamer element 'appsink' is unavailable: %w", err)
	}

	capsString := media.CapsString(opts.Dmabuf)
	caps := gst.NewCapsFromString(capsString)
	if caps == nil {
		return nil, fmt.Errorf("invalid appsink caps %q", capsString)
	}
	sink.SetCaps(caps)

	props := []struct {
		name  string
		value any
	}{
		{"emit-signals", false},
		{"sync", true},
		{"max-buffers", uint(appsinkMaxBuffers)},
		{"drop", false},
	}
	for _, p := range props {
		if err := sink.SetProperty(p.name, p.value); err != nil {
			return nil, fmt.Errorf("setting appsink %s: %w", p.name, err)
		}
	}

	setObject(playbin, "video-sink", sink.Element)
	if err := playbin.SetProperty("uri", opts.URI); err != nil {
		return nil, fmt.Errorf("setting playbin uri: %w", err)
	}
	if err := playbin.SetProperty("mute", opts.Mute); err != nil {
		return nil, fmt.Errorf("setting playbin mute: %w", err)
	}

	bus := playbin.GetBus()
	if bus == nil {
		return nil, errors.New("failed to retrieve GStreamer bus")
	}

	logger.Debugf("appsink caps: %s", capsString)
	return &Pipeline{
		playbin:  playbin,
		sink:     sink,
		bus:      bus,
		zeroCopy: opts.Dmabuf.Enabled(),
	}, nil
}

func (p *Pipeline) Start() error {
	if err := p.playbin.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("failed to set pipeline to Playing: %w", err)
	}
	return nil
}

// TryPull returns the next decoded frame without blocking, or nil when none
// is ready.
func (p *Pipeline) TryPull() (frame.Payload, error) {
	sample := p.sink.TryPullSample(0)
	if sample == nil {
		return nil, nil
	}
	// The sample's reference is released explicitly, not by the collector.
	runtime.SetFinalizer(sample, nil)

	if p.zeroCopy {
		imported, err := importSample(sample)
		if err == nil {
			return imported, nil
		}
		if !p.warnedCPUCopy {
			logger.Debugf("sample is not importable, copying to CPU memory: %v", err)
			p.warnedCPUCopy = true
		}
	}

	defer sample.Unref()
	return copySample(sample)
}

// Drain handles every pending bus message. It reports end of stream, or the
// first pipeline error.
func (p *Pipeline) Drain() (eos bool, err error) {
	for {
		msg := p.bus.TimedPop(0)
		if msg == nil {
			return eos, nil
		}
		switch msg.Type() {
		case gst.MessageEOS:
			eos = true
		case gst.MessageError:
			gerr := msg.ParseError()
			return eos, busError(msg.Source(), gerr.Error(), gerr.DebugString())
		case gst.MessageWarning:
			gerr := msg.ParseWarning()
			logger.Warnf("GStreamer warning from %s: %s", msg.Source(), gerr.Error())
		}
	}
}

// Rewind seeks back to the start for looped playback.
func (p *Pipeline) Rewind() error {
	if !p.playbin.SeekSimple(0, gst.FormatTime, gst.SeekFlagFlush|gst.SeekFlagKeyUnit) {
		return errors.New("failed to seek to start for looped playback")
	}
	return nil
}

func (p *Pipeline) Close() error {
	if err := p.playbin.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("failed to set pipeline to Null: %w", err)
	}
	return nil
}
