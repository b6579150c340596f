package render

import (
	"fmt"
	"sync"
	"time"
)

// Loop repeatedly locks its surface, composes a frame and presents it.
//
// The loop can be paused while its surface is torn down and resumed with a
// new one without losing any canvas state. Stop ends the loop for good and
// does not return until the loop goroutine has exited, so the caller may
// release anything the compose function reads.
type Loop struct {
	cfg     Config
	compose ComposeFunc

	mu          sync.Mutex
	cond        *sync.Cond
	surface     Surface
	keepRunning bool
	paused      bool
	parked      bool
	stopped     bool
	exited      bool
	done        chan struct{}
	wake        chan struct{}
}

// NewLoop creates a loop presenting on surface. It does not start it.
func NewLoop(cfg Config, surface Surface, compose ComposeFunc) *Loop {
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}
	if cfg.JoinWarnInterval <= 0 {
		cfg.JoinWarnInterval = time.Second
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = 100 * time.Millisecond
	}
	l := &Loop{
		cfg:     cfg,
		compose: compose,
		surface: surface,
		wake:    make(chan struct{}, 1),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Start launches the loop goroutine on the first call and resumes a paused
// loop on later calls. It fails with ErrLoopStopped once Stop was called.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.stopped:
		return ErrLoopStopped
	case l.surface == nil:
		return ErrNoSurface
	case l.done == nil:
		l.keepRunning = true
		l.done = make(chan struct{})
		go l.run()
		l.debug("render loop started")
	case l.paused:
		l.paused = false
		l.cond.Broadcast()
		l.debug("render loop resumed")
	}
	return nil
}

// Pause suspends the loop and waits until it is parked between frames.
// No frame is presented after Pause returns until the loop is resumed.
func (l *Loop) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done == nil || l.exited || l.stopped || l.paused {
		return
	}
	l.paused = true
	l.signal()
	for l.paused && !l.parked && !l.exited {
		l.cond.Wait()
	}
	l.debug("render loop paused")
}

// Resume continues a paused loop. A non-nil surface replaces the current
// one, typically because the old one was destroyed while paused.
func (l *Loop) Resume(surface Surface) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if surface != nil {
		l.surface = surface
	}
	if l.paused {
		l.paused = false
		l.cond.Broadcast()
		l.debug("render loop resumed")
	}
}

// Paused reports whether the loop is paused.
func (l *Loop) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// Running reports whether the loop goroutine is alive.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done != nil && !l.exited
}

// Stop ends the loop and blocks until its goroutine has exited. While
// waiting it logs a warning every JoinWarnInterval; it never gives up.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.keepRunning = false
	l.paused = false
	l.cond.Broadcast()
	l.signal()
	done := l.done
	l.mu.Unlock()

	if done == nil {
		return
	}

	ticker := time.NewTicker(l.cfg.JoinWarnInterval)
	defer ticker.Stop()
	waited := time.Duration(0)
	for {
		select {
		case <-done:
			l.debug("render loop stopped")
			return
		case <-ticker.C:
			waited += l.cfg.JoinWarnInterval
			if l.cfg.Logger != nil {
				l.cfg.Logger.Warn("render loop still running, waiting for it to exit", "waited", waited)
			}
		}
	}
}

// signal interrupts a frame-pacing sleep. The caller holds l.mu.
func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run() {
	defer func() {
		l.mu.Lock()
		l.exited = true
		l.cond.Broadcast()
		l.mu.Unlock()
		close(l.done)
	}()

	for {
		surface, ok := l.await()
		if !ok {
			return
		}

		start := time.Now()
		delay := l.cfg.FrameInterval
		if err := l.frame(surface); err != nil {
			l.cfg.ErrorHandler(err)
			delay = l.cfg.ErrorBackoff
		} else if l.cfg.Metrics != nil {
			l.cfg.Metrics.RecordFrame(time.Since(start))
		}

		if wait := delay - time.Since(start); wait > 0 {
			l.sleep(wait)
		}
	}
}

// await blocks while the loop is paused and returns the surface for the
// next frame, or false when the loop must exit.
func (l *Loop) await() (Surface, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.paused && l.keepRunning {
		if !l.parked {
			l.parked = true
			l.cond.Broadcast()
		}
		l.cond.Wait()
	}
	l.parked = false
	return l.surface, l.keepRunning
}

func (l *Loop) frame(surface Surface) error {
	dst, err := surface.Lock()
	if err != nil {
		return fmt.Errorf("lock surface: %w", err)
	}
	if dst == nil {
		return nil
	}
	l.compose(dst)
	if err := surface.Present(dst); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	return nil
}

func (l *Loop) sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-l.wake:
	}
}

func (l *Loop) debug(msg string) {
	if l.cfg.Logger != nil {
		l.cfg.Logger.Debug(msg)
	}
}
