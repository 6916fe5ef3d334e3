package decode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matjam/vidpaper/internal/media"
	"github.com/tinyzimmer/go-gst/gst"
)

const (
	busPollInterval = 100 * time.Millisecond
	waylandSinkHint = "Install gst-plugins-bad with Wayland support"
)

type WindowedOptions struct {
	Input  string
	Loop   bool
	Output string
	Mute   bool
}

// PlayWindowed plays the source through waylandsink. It returns when the
// stream ends without looping, ctx is done, or the pipeline reports an error.
func PlayWindowed(ctx context.Context, opts WindowedOptions) error {
	if media.IsBlankSource(opts.Input) {
		return playBlank(ctx, opts)
	}

	uri, err := media.ToURI(opts.Input)
	if err != nil {
		return err
	}

	playbin, err := newElement("playbin", "")
	if err != nil {
		return err
	}
	sink, err := newElement("waylandsink", waylandSinkHint+". "+CodecHint)
	if err != nil {
		return err
	}
	applyOutputTarget(sink, opts.Output)

	setObject(playbin, "video-sink", sink)
	if err := playbin.SetProperty("uri", uri); err != nil {
		return fmt.Errorf("setting playbin uri: %w", err)
	}
	if err := playbin.SetProperty("mute", opts.Mute); err != nil {
		return fmt.Errorf("setting playbin mute: %w", err)
	}

	bus := playbin.GetBus()
	if bus == nil {
		return errors.New("failed to retrieve GStreamer bus")
	}

	logger.Infof("playing %s (loop=%t, output=%s, mute=%t)", uri, opts.Loop, outputLabel(opts.Output), opts.Mute)
	return run(ctx, playbin, bus, opts.Loop)
}

func playBlank(ctx context.Context, opts WindowedOptions) error {
	desc := "videotestsrc name=blank_src pattern=black is-live=true"
	if !opts.Loop {
		desc += " num-buffers=1"
	}
	desc += " ! videoconvert name=blank_convert ! waylandsink name=blank_sink"

	pipeline, err := gst.NewPipelineFromString(desc)
	if err != nil {
		return fmt.Errorf("failed to build blank pipeline: %w", err)
	}
	sink, err := pipeline.GetElementByName("blank_sink")
	if err != nil {
		return fmt.Errorf("GStreamer element 'waylandsink' is unavailable. %s: %w", waylandSinkHint, err)
	}
	applyOutputTarget(sink, opts.Output)

	bus := pipeline.GetPipelineBus()
	if bus == nil {
		return errors.New("failed to retrieve GStreamer bus")
	}

	logger.Infof("playing blank background (loop=%t, output=%s, mute=%t)", opts.Loop, outputLabel(opts.Output), opts.Mute)
	// A live test source never needs rewinding; end of stream always stops.
	return run(ctx, pipeline.Element, bus, false)
}

func run(ctx context.Context, el *gst.Element, bus *gst.Bus, loop bool) error {
	if err := el.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("failed to set pipeline to Playing: %w", err)
	}

	runErr := watch(ctx, el, bus, loop)

	if err := el.SetState(gst.StateNull); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to set pipeline to Null: %w", err)
	}
	return runErr
}

func watch(ctx context.Context, el *gst.Element, bus *gst.Bus, loop bool) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		msg := bus.TimedPop(busPollInterval)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			if !loop {
				logger.Info("end of stream")
				return nil
			}
			if !el.SeekSimple(0, gst.FormatTime, gst.SeekFlagFlush|gst.SeekFlagKeyUnit) {
				return errors.New("failed to seek to start for looped playback")
			}
		case gst.MessageError:
			gerr := msg.ParseError()
			return busError(msg.Source(), gerr.Error(), gerr.DebugString())
		}
	}
}

// applyOutputTarget asks waylandsink to go fullscreen on the named output,
// using whichever property this GStreamer version has.
func applyOutputTarget(sink *gst.Element, output string) {
	output = strings.TrimSpace(output)
	if output == "" {
		return
	}
	if hasProperty(sink, "fullscreen") {
		if err := sink.SetProperty("fullscreen", true); err != nil {
			logger.Warnf("setting waylandsink fullscreen: %v", err)
		}
	}
	for _, prop := range []string{"fullscreen-output", "output"} {
		if !hasProperty(sink, prop) {
			continue
		}
		if err := sink.SetProperty(prop, output); err != nil {
			logger.Warnf("setting waylandsink %s: %v", prop, err)
		}
		return
	}
	logger.Warnf("requested output '%s', but waylandsink does not expose a supported output target property", output)
}

func outputLabel(output string) string {
	if output == "" {
		return "<auto>"
	}
	return output
}
