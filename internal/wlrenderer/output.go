package wlrenderer

import (
	"fmt"

	"github.com/rajveermalviya/go-wayland/wayland/client"
)

type outputProps struct {
	name      string
	width     int32
	height    int32
	scale     int32
	transform int32
}

// output is a bound wl_output. Property events are staged until done.
type output struct {
	*client.Output
	global uint32
	outputProps

	pending outputProps
	onDone  func(*output)
}

func newOutput(ctx *client.Context, global uint32) *output {
	o := &output{
		Output:      client.NewOutput(ctx),
		global:      global,
		outputProps: outputProps{scale: 1},
		pending:     outputProps{scale: 1},
	}
	o.SetGeometryHandler(func(e client.OutputGeometryEvent) {
		o.pending.transform = int32(e.Transform)
	})
	o.SetModeHandler(func(e client.OutputModeEvent) {
		if e.Flags&uint32(client.OutputModeCurrent) == 0 {
			return
		}
		o.pending.width, o.pending.height = e.Width, e.Height
	})
	o.SetScaleHandler(func(e client.OutputScaleEvent) {
		o.pending.scale = max(e.Factor, 1)
	})
	o.SetNameHandler(func(e client.OutputNameEvent) {
		o.pending.name = e.Name
	})
	o.SetDoneHandler(func(client.OutputDoneEvent) {
		o.outputProps = o.pending
		if o.onDone != nil {
			o.onDone(o)
		}
	})
	return o
}

func (o *output) label() string {
	if o.name != "" {
		return o.name
	}
	return fmt.Sprintf("#%d", o.global)
}

func (o *output) release() {
	if err := o.Release(); err != nil {
		logger.Debugf("releasing output %s: %v", o.label(), err)
	}
}
