package render

import (
	"sync/atomic"
	"time"
)

// FrameMetrics tracks frame timing. All methods are safe for concurrent use:
// the loop records while other goroutines read.
type FrameMetrics struct {
	frames        atomic.Int64 // since Reset
	periodFrames  atomic.Int64 // since the last FPS update
	lastFPS       atomic.Int64 // FPS * 1000
	lastFrameTime atomic.Int64 // ns
	minFrameTime  atomic.Int64 // ns
	maxFrameTime  atomic.Int64 // ns
	totalTime     atomic.Int64 // ns
	lastUpdate    atomic.Int64 // unix ns
	updatePeriod  time.Duration
}

// NewFrameMetrics creates a FrameMetrics that recalculates FPS every
// updatePeriod (one second when not positive).
func NewFrameMetrics(updatePeriod time.Duration) *FrameMetrics {
	if updatePeriod <= 0 {
		updatePeriod = time.Second
	}
	fm := &FrameMetrics{updatePeriod: updatePeriod}
	fm.Reset()
	return fm
}

// RecordFrame records one frame that took frameTime to compose and present.
func (fm *FrameMetrics) RecordFrame(frameTime time.Duration) {
	ns := frameTime.Nanoseconds()

	fm.frames.Add(1)
	fm.periodFrames.Add(1)
	fm.lastFrameTime.Store(ns)
	fm.totalTime.Add(ns)

	for {
		cur := fm.minFrameTime.Load()
		if ns >= cur || fm.minFrameTime.CompareAndSwap(cur, ns) {
			break
		}
	}
	for {
		cur := fm.maxFrameTime.Load()
		if ns <= cur || fm.maxFrameTime.CompareAndSwap(cur, ns) {
			break
		}
	}

	now := time.Now().UnixNano()
	last := fm.lastUpdate.Load()
	elapsed := time.Duration(now - last)
	if elapsed >= fm.updatePeriod && fm.lastUpdate.CompareAndSwap(last, now) {
		n := fm.periodFrames.Swap(0)
		fm.lastFPS.Store(int64(float64(n) / elapsed.Seconds() * 1000))
	}
}

// Frames returns the number of frames recorded since the last Reset.
func (fm *FrameMetrics) Frames() int64 { return fm.frames.Load() }

// FPS returns the frame rate measured over the last full update period.
func (fm *FrameMetrics) FPS() float64 { return float64(fm.lastFPS.Load()) / 1000 }

// LastFrameTime returns the duration of the most recent frame.
func (fm *FrameMetrics) LastFrameTime() time.Duration {
	return time.Duration(fm.lastFrameTime.Load())
}

// MinFrameTime returns the shortest recorded frame, or zero before any frame.
func (fm *FrameMetrics) MinFrameTime() time.Duration {
	if fm.frames.Load() == 0 {
		return 0
	}
	return time.Duration(fm.minFrameTime.Load())
}

// MaxFrameTime returns the longest recorded frame.
func (fm *FrameMetrics) MaxFrameTime() time.Duration {
	return time.Duration(fm.maxFrameTime.Load())
}

// AverageFrameTime returns the mean frame duration since the last Reset.
func (fm *FrameMetrics) AverageFrameTime() time.Duration {
	n := fm.frames.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(fm.totalTime.Load() / n)
}

// Reset clears all metrics.
func (fm *FrameMetrics) Reset() {
	fm.frames.Store(0)
	fm.periodFrames.Store(0)
	fm.lastFPS.Store(0)
	fm.lastFrameTime.Store(0)
	fm.minFrameTime.Store(int64(time.Hour))
	fm.maxFrameTime.Store(0)
	fm.totalTime.Store(0)
	fm.lastUpdate.Store(time.Now().UnixNano())
}
