package types

type ScaleMode string

const (
	ScaleModeFill    ScaleMode = "fill"
	ScaleModeFit     ScaleMode = "fit"
	ScaleModeStretch ScaleMode = "stretch"
)

type Backend string

const (
	BackendAuto       Backend = "auto"
	BackendGStreamer  Backend = "gstreamer"
	BackendLayerShell Backend = "layer-shell"
)

type DmabufMode string

const (
	DmabufAuto DmabufMode = "auto"
	DmabufOn   DmabufMode = "on"
	DmabufOff  DmabufMode = "off"
)

// Enabled reports whether zero-copy transport should be attempted.
func (m DmabufMode) Enabled() bool { return m != DmabufOff }

// Required reports whether a zero-copy failure must be fatal.
func (m DmabufMode) Required() bool { return m == DmabufOn }

// Transform mirrors wl_output.transform.
type Transform int32

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

// SwapsAxes reports whether the transform rotates by a quarter turn, in which
// case buffer width and height are exchanged relative to the logical size.
func (t Transform) SwapsAxes() bool {
	switch t {
	case Transform90, Transform270, TransformFlipped90, TransformFlipped270:
		return true
	}
	return false
}
