package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exposes the latest snapshot of a recorder to Prometheus.
type Exporter struct {
	registry *prometheus.Registry
	source   func() *Snapshot
}

// NewExporter reads from source on every scrape; source may return nil.
func NewExporter(source func() *Snapshot) *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		source:   source,
	}
	e.register()
	return e
}

func (e *Exporter) gauge(name, help string, value func(*Snapshot) float64) {
	e.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: name, Help: help},
		func() float64 {
			snap := e.source()
			if snap == nil {
				return 0
			}
			return value(snap)
		},
	))
}

func (e *Exporter) register() {
	e.gauge("vidpaper_fps_avg", "Mean frame rate over the recent window",
		func(s *Snapshot) float64 { return s.AvgFPS })
	e.gauge("vidpaper_fps_low95", "Frame rate at the worst 5% boundary",
		func(s *Snapshot) float64 { return s.Low95FPS })
	e.gauge("vidpaper_fps_low99", "Frame rate at the worst 1% boundary",
		func(s *Snapshot) float64 { return s.Low99FPS })
	e.gauge("vidpaper_fps_min", "Lowest frame rate in the recent window",
		func(s *Snapshot) float64 { return s.MinFPS })
	e.gauge("vidpaper_fps_max", "Highest frame rate in the recent window",
		func(s *Snapshot) float64 { return s.MaxFPS })
	e.gauge("vidpaper_fps_last", "Most recent instantaneous frame rate",
		func(s *Snapshot) float64 { return s.LastFPS })
	e.gauge("vidpaper_frames_sampled_total", "Frame intervals sampled since start",
		func(s *Snapshot) float64 { return float64(s.SampleCount) })
	e.gauge("vidpaper_hardware_decoders", "Hardware decoders available to the pipeline",
		func(s *Snapshot) float64 { return float64(len(s.HardwareDecoders)) })
}

// Handler returns the Prometheus HTTP handler.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests.
func (e *Exporter) Gatherer() prometheus.Gatherer {
	return e.registry
}
