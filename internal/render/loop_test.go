package render

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recordingLogger struct {
	mu    sync.Mutex
	debug []string
	warn  []string
}

func (l *recordingLogger) Debug(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = append(l.debug, msg)
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warn = append(l.warn, msg)
}

func (l *recordingLogger) warnings() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warn)
}

type failingSurface struct {
	lockErr    error
	presentErr error
	back       *image.RGBA
}

func (s *failingSurface) Lock() (*image.RGBA, error) {
	if s.lockErr != nil {
		return nil, s.lockErr
	}
	return s.back, nil
}

func (s *failingSurface) Present(*image.RGBA) error { return s.presentErr }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.FrameInterval = time.Millisecond
	cfg.ErrorBackoff = time.Millisecond
	cfg.ErrorHandler = func(error) {}
	return cfg
}

func fill(c color.RGBA) ComposeFunc {
	return func(dst *image.RGBA) {
		for i := 0; i < len(dst.Pix); i += 4 {
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoopPresentsFrames(t *testing.T) {
	surface := NewMemorySurface(4, 4)
	red := color.RGBA{R: 255, A: 255}
	loop := NewLoop(testConfig(), surface, fill(red))

	if err := loop.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	waitFor(t, "three frames", func() bool { return surface.Presented() >= 3 })
	loop.Stop()

	if loop.Running() {
		t.Error("Running() = true after Stop")
	}
	frame := surface.LastFrame()
	if frame == nil {
		t.Fatal("LastFrame() = nil")
	}
	if got := frame.RGBAAt(2, 2); got != red {
		t.Errorf("pixel = %v, want %v", got, red)
	}
}

func TestLoopStartAfterStop(t *testing.T) {
	loop := NewLoop(testConfig(), NewMemorySurface(1, 1), fill(color.RGBA{}))
	if err := loop.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	loop.Stop()

	if err := loop.Start(); !errors.Is(err, ErrLoopStopped) {
		t.Errorf("Start() after Stop = %v, want ErrLoopStopped", err)
	}
}

func TestLoopStartWithoutSurface(t *testing.T) {
	loop := NewLoop(testConfig(), nil, fill(color.RGBA{}))
	if err := loop.Start(); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Start() = %v, want ErrNoSurface", err)
	}
	loop.Stop()
}

func TestLoopStopWithoutStart(t *testing.T) {
	loop := NewLoop(testConfig(), NewMemorySurface(1, 1), fill(color.RGBA{}))

	done := make(chan struct{})
	go func() {
		loop.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() on an unstarted loop blocked")
	}
}

func TestLoopPauseResume(t *testing.T) {
	surface := NewMemorySurface(2, 2)
	loop := NewLoop(testConfig(), surface, fill(color.RGBA{G: 255, A: 255}))
	if err := loop.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer loop.Stop()
	waitFor(t, "first frame", func() bool { return surface.Presented() > 0 })

	loop.Pause()
	if !loop.Paused() {
		t.Fatal("Paused() = false after Pause")
	}
	before := surface.Presented()
	time.Sleep(20 * time.Millisecond)
	if got := surface.Presented(); got != before {
		t.Fatalf("presented %d frames while paused", got-before)
	}

	loop.Resume(nil)
	waitFor(t, "frames after resume", func() bool { return surface.Presented() > before })
}

func TestLoopResumeWithNewSurface(t *testing.T) {
	first := NewMemorySurface(2, 2)
	loop := NewLoop(testConfig(), first, fill(color.RGBA{B: 255, A: 255}))
	if err := loop.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer loop.Stop()
	waitFor(t, "first frame", func() bool { return first.Presented() > 0 })

	loop.Pause()
	stale := first.Presented()
	second := NewMemorySurface(3, 3)
	loop.Resume(second)

	waitFor(t, "frame on new surface", func() bool { return second.Presented() > 0 })
	if first.Presented() != stale {
		t.Error("old surface presented after being replaced")
	}
	if got := second.LastFrame().Bounds().Dx(); got != 3 {
		t.Errorf("frame width = %d, want 3", got)
	}
}

func TestLoopStartResumesPausedLoop(t *testing.T) {
	surface := NewMemorySurface(1, 1)
	loop := NewLoop(testConfig(), surface, fill(color.RGBA{}))
	if err := loop.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer loop.Stop()

	loop.Pause()
	before := surface.Presented()
	if err := loop.Start(); err != nil {
		t.Fatalf("Start() on paused loop = %v", err)
	}
	waitFor(t, "frames after restart", func() bool { return surface.Presented() > before })
}

func TestLoopStopWhilePaused(t *testing.T) {
	loop := NewLoop(testConfig(), NewMemorySurface(1, 1), fill(color.RGBA{}))
	if err := loop.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	loop.Pause()
	loop.Stop()

	if loop.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestLoopSurfaceErrors(t *testing.T) {
	tests := []struct {
		name    string
		surface *failingSurface
	}{
		{"lock fails", &failingSurface{lockErr: errors.New("lost device")}},
		{"present fails", &failingSurface{
			back:       image.NewRGBA(image.Rect(0, 0, 1, 1)),
			presentErr: errors.New("swap failed"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs atomic.Int32
			cfg := testConfig()
			cfg.ErrorHandler = func(error) { errs.Add(1) }
			cfg.Metrics = NewFrameMetrics(time.Second)

			loop := NewLoop(cfg, tt.surface, fill(color.RGBA{}))
			if err := loop.Start(); err != nil {
				t.Fatalf("Start() = %v", err)
			}
			waitFor(t, "error reports", func() bool { return errs.Load() >= 2 })
			loop.Stop()

			if cfg.Metrics.Frames() != 0 {
				t.Errorf("recorded %d failed frames", cfg.Metrics.Frames())
			}
		})
	}
}

func TestLoopRecordsMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics = NewFrameMetrics(time.Second)
	surface := NewMemorySurface(2, 2)

	loop := NewLoop(cfg, surface, fill(color.RGBA{}))
	if err := loop.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	waitFor(t, "recorded frames", func() bool { return cfg.Metrics.Frames() >= 2 })
	loop.Stop()
}

func TestLoopStopWaitsForFrame(t *testing.T) {
	logger := &recordingLogger{}
	cfg := testConfig()
	cfg.Logger = logger
	cfg.JoinWarnInterval = 5 * time.Millisecond

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	compose := func(*image.RGBA) {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	loop := NewLoop(cfg, NewMemorySurface(1, 1), compose)
	if err := loop.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	<-entered

	stopped := make(chan struct{})
	go func() {
		loop.Stop()
		close(stopped)
	}()

	waitFor(t, "join warning", func() bool { return logger.warnings() > 0 })
	select {
	case <-stopped:
		t.Fatal("Stop() returned while a frame was still composing")
	default:
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return after the frame finished")
	}
}
