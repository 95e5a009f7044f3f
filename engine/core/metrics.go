package core

import (
	"sync"

	"github.com/mnrn/ReVK/engine/containers"
)

// Number of frame samples the rolling average covers.
const metricsWindowSize = 30

type MetricsState struct {
	frameTimes *containers.RingQueue[float64]
	msAvg      float64
	fps        float64
	frames     uint64
}

var metricsOnce sync.Once
var metricsState *MetricsState

func MetricsInitialize() {
	metricsOnce.Do(func() {
		rq, _ := containers.NewRingQueue[float64](metricsWindowSize)
		metricsState = &MetricsState{
			frameTimes: rq,
		}
	})
}

// MetricsUpdate records one frame of frameElapsedTime seconds and refreshes
// the rolling frame-time average and FPS.
func MetricsUpdate(frameElapsedTime float64) {
	if metricsState == nil {
		return
	}
	ms := frameElapsedTime * 1000.0

	if metricsState.frameTimes.IsFull() {
		metricsState.frameTimes.Dequeue()
	}
	metricsState.frameTimes.Enqueue(ms)

	sum := 0.0
	values := metricsState.frameTimes.Values()
	for _, v := range values {
		sum += v
	}
	metricsState.msAvg = sum / float64(len(values))
	if metricsState.msAvg > 0 {
		metricsState.fps = 1000.0 / metricsState.msAvg
	}
	metricsState.frames++
}

// MetricsFPS returns frames per second averaged over the sample window.
func MetricsFPS() float64 {
	if metricsState == nil {
		return 0
	}
	return metricsState.fps
}

// MetricsFrameTime returns the average frame time in milliseconds.
func MetricsFrameTime() float64 {
	if metricsState == nil {
		return 0
	}
	return metricsState.msAvg
}

// MetricsFrame returns the number of frames recorded since startup.
func MetricsFrame() uint64 {
	if metricsState == nil {
		return 0
	}
	return metricsState.frames
}
