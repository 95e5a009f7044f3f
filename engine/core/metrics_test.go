package core

import "testing"

// Frame times chosen so the millisecond math stays exact in floating
// point.
func TestMetricsWindowAverage(t *testing.T) {
	MetricsInitialize()
	base := MetricsFrame()

	for i := 0; i < metricsWindowSize; i++ {
		MetricsUpdate(0.25)
	}
	if got := MetricsFrameTime(); got != 250 {
		t.Errorf("MetricsFrameTime() = %v, want 250", got)
	}
	if got := MetricsFPS(); got != 4 {
		t.Errorf("MetricsFPS() = %v, want 4", got)
	}

	// A full window of slower frames pushes every old sample out.
	for i := 0; i < metricsWindowSize; i++ {
		MetricsUpdate(0.5)
	}
	if got := MetricsFrameTime(); got != 500 {
		t.Errorf("MetricsFrameTime() after window rollover = %v, want 500", got)
	}
	if got := MetricsFPS(); got != 2 {
		t.Errorf("MetricsFPS() after window rollover = %v, want 2", got)
	}

	if got := MetricsFrame(); got != base+2*metricsWindowSize {
		t.Errorf("MetricsFrame() = %d, want %d", got, base+2*metricsWindowSize)
	}
}
