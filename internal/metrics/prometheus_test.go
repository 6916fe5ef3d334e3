package metrics

import (
	"testing"
)

func TestExporterReadsLatestSnapshot(t *testing.T) {
	var snap *Snapshot
	e := NewExporter(func() *Snapshot { return snap })

	values := func() map[string]float64 {
		families, err := e.Gatherer().Gather()
		if err != nil {
			t.Fatal(err)
		}
		out := map[string]float64{}
		for _, mf := range families {
			out[mf.GetName()] = mf.GetMetric()[0].GetGauge().GetValue()
		}
		return out
	}

	if got := values()["vidpaper_fps_avg"]; got != 0 {
		t.Errorf("avg without snapshot = %v", got)
	}

	snap = &Snapshot{AvgFPS: 59.9, SampleCount: 42, HardwareDecoders: []string{"a", "b"}}
	got := values()
	if got["vidpaper_fps_avg"] != 59.9 {
		t.Errorf("avg = %v", got["vidpaper_fps_avg"])
	}
	if got["vidpaper_frames_sampled_total"] != 42 {
		t.Errorf("samples = %v", got["vidpaper_frames_sampled_total"])
	}
	if got["vidpaper_hardware_decoders"] != 2 {
		t.Errorf("decoders = %v", got["vidpaper_hardware_decoders"])
	}
}
