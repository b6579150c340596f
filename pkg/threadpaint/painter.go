package threadpaint

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
	"github.com/opd-ai/go-threadpaint/internal/config"
	"github.com/opd-ai/go-threadpaint/internal/display"
	"github.com/opd-ai/go-threadpaint/internal/history"
	"github.com/opd-ai/go-threadpaint/internal/paint"
	"github.com/opd-ai/go-threadpaint/internal/render"
	"github.com/opd-ai/go-threadpaint/internal/transform"
)

// painterImpl is the private implementation of Painter.
//
// Two locks guard it. mu guards configuration, lifecycle and handlers.
// state guards the canvas tuple shared with the render goroutine: the log
// with its bitmaps, the path in progress, the view transform and the
// current style. state is never held while mu is acquired.
type painterImpl struct {
	// Configuration
	cfg          *config.Config
	opts         Options
	configSource string
	configPath   string
	configLoader func() (*config.Config, error)

	logger  Logger
	metrics *Metrics

	// Lifecycle
	mu           sync.RWMutex
	running      atomic.Bool
	startTime    time.Time
	backend      string
	loop         *render.Loop
	frames       *render.FrameMetrics
	ctx          context.Context
	cancel       context.CancelFunc
	closeSurface func()
	watcher      *fileWatcher
	done         chan struct{}
	wg           sync.WaitGroup
	lastError    atomic.Value

	errorHandler ErrorHandler
	eventHandler EventHandler

	// Canvas state
	state       sync.Mutex
	log         *history.Log
	view        *transform.Transform
	path        canvas.Path
	drawing     bool
	attrs       paint.Attrs
	tool        Tool
	compositor  *render.Compositor
	surfaceW    int
	surfaceH    int
	maxCommands int
}

var (
	_ Painter            = (*painterImpl)(nil)
	_ display.Controller = (*painterImpl)(nil)
)

func newPainter(cfg *config.Config, opts *Options, source string, loader func() (*config.Config, error)) *painterImpl {
	if opts == nil {
		def := DefaultOptions()
		opts = &def
	}
	p := &painterImpl{
		cfg:          cfg,
		opts:         *opts,
		configSource: source,
		configLoader: loader,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		log:          history.NewLog(cfg.History.MaxCommands),
		view:         transform.New(),
		attrs:        cfg.Brush.Attrs(),
		compositor:   render.NewCompositor(backgroundOf(cfg)),
		maxCommands:  cfg.History.MaxCommands,
	}
	if p.logger == nil {
		p.logger = NopLogger()
	}
	if p.metrics == nil {
		p.metrics = DefaultMetrics()
	}
	p.done = make(chan struct{})
	close(p.done)
	return p
}

func backgroundOf(cfg *config.Config) render.Background {
	return render.Background{
		Light: cfg.Render.CheckerLight,
		Dark:  cfg.Render.CheckerDark,
		Cell:  cfg.Render.CheckerSize,
	}
}

// Start opens the surface and starts the render loop.
func (p *painterImpl) Start() error {
	p.mu.Lock()

	if p.running.Load() {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}

	cfg := p.cfg
	backend, err := p.selectBackend(cfg)
	if err != nil {
		p.mu.Unlock()
		return err
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	surf, err := p.openSurface(backend, cfg)
	if err != nil {
		p.cancel()
		p.mu.Unlock()
		return opError("open "+backend+" surface", ErrorCategoryWindow, err)
	}

	p.frames = render.NewFrameMetrics(time.Second)
	p.loop = render.NewLoop(render.Config{
		FrameInterval:    cfg.Render.FrameInterval(),
		JoinWarnInterval: cfg.Render.JoinWarnInterval,
		Background:       backgroundOf(cfg),
		Logger:           p.logger,
		ErrorHandler:     p.renderError,
		Metrics:          p.frames,
	}, surf.surface, p.compose)
	if err := p.loop.Start(); err != nil {
		p.cancel()
		if surf.close != nil {
			surf.close()
		}
		p.mu.Unlock()
		return fmt.Errorf("failed to start render loop: %w", err)
	}

	p.backend = backend
	p.closeSurface = surf.close
	p.startTime = time.Now()
	p.done = make(chan struct{})
	p.running.Store(true)
	p.metrics.IncrementStarts()
	p.metrics.SetRunning(true)

	if surf.run != nil {
		ctx := p.ctx
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			err := surf.run(ctx)
			if err != nil {
				p.notifyError(opError("window", ErrorCategoryWindow, err))
			}
			if ctx.Err() == nil {
				// Closed by the user rather than by Stop.
				go p.Stop()
			}
		}()
	}

	if p.opts.WatchConfig && p.configPath != "" {
		w, err := newFileWatcher(p.configPath, p.opts.WatchDebounce, p.ReloadConfig, func(err error) {
			p.notifyError(opError("watch config", ErrorCategoryConfig, err))
		})
		if err != nil {
			p.logger.Warn("config watcher disabled", "path", p.configPath, "error", err)
		} else {
			p.watcher = w
		}
	}
	p.mu.Unlock()

	if surf.width > 0 && surf.height > 0 {
		if err := p.SetSurfaceSize(surf.width, surf.height); err != nil {
			p.notifyError(opError("size surface", ErrorCategoryWindow, err))
		}
	}

	p.logger.Info("painter started", "backend", backend, "config", p.configSource)
	p.emitEvent(Event{Type: EventStarted, Message: "Painter started on " + backend})
	return nil
}

func (p *painterImpl) selectBackend(cfg *config.Config) (string, error) {
	switch {
	case p.opts.Surface != nil:
		return "custom", nil
	case p.opts.Headless:
		return BackendHeadless, nil
	case p.opts.Backend != "":
		b, err := config.ParseBackend(p.opts.Backend)
		if err != nil {
			return "", err
		}
		return b.String(), nil
	default:
		return cfg.Window.Backend.String(), nil
	}
}

// Stop ends the render loop, joining it before anything it reads is
// released, then closes the surface.
func (p *painterImpl) Stop() error {
	if !p.running.CompareAndSwap(true, false) {
		return nil
	}

	p.mu.Lock()
	loop := p.loop
	cancel := p.cancel
	closeSurface := p.closeSurface
	watcher := p.watcher
	done := p.done
	p.watcher = nil
	p.closeSurface = nil
	p.mu.Unlock()

	if watcher != nil {
		watcher.Close()
	}
	if loop != nil {
		loop.Stop()
	}
	if cancel != nil {
		cancel()
	}

	var err error
	waited := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(waited)
	}()
	timeout := p.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	select {
	case <-waited:
	case <-time.After(timeout):
		err = fmt.Errorf("shutdown timeout after %v: window did not close", timeout)
		p.notifyError(opError("stop", ErrorCategoryWindow, err))
	}

	if closeSurface != nil {
		closeSurface()
	}

	p.metrics.IncrementStops()
	p.metrics.SetRunning(false)
	close(done)
	p.logger.Info("painter stopped")
	p.emitEvent(Event{Type: EventStopped, Message: "Painter stopped"})
	return err
}

// Restart stops, reloads the configuration and starts again.
func (p *painterImpl) Restart() error {
	if err := p.Stop(); err != nil {
		wrapped := fmt.Errorf("stop failed: %w", err)
		p.notifyError(wrapped)
		return wrapped
	}

	if p.configLoader != nil {
		cfg, err := p.configLoader()
		if err != nil {
			wrapped := opError("reload config", ErrorCategoryConfig, err)
			p.notifyError(wrapped)
			return wrapped
		}
		p.applyConfig(cfg)
		p.emitEvent(Event{Type: EventConfigReloaded, Message: "Configuration reloaded"})
	}

	if err := p.Start(); err != nil {
		wrapped := fmt.Errorf("start failed: %w", err)
		p.notifyError(wrapped)
		return wrapped
	}

	p.metrics.IncrementRestarts()
	p.emitEvent(Event{Type: EventRestarted, Message: "Painter restarted"})
	return nil
}

// ReloadConfig applies a fresh configuration without stopping. The
// previous configuration stays active if loading fails.
func (p *painterImpl) ReloadConfig() error {
	if !p.running.Load() {
		return ErrNotRunning
	}
	if p.configLoader == nil {
		return ErrNoConfigLoader
	}

	cfg, err := p.configLoader()
	if err != nil {
		wrapped := opError("reload config", ErrorCategoryConfig, err)
		p.notifyError(wrapped)
		return wrapped
	}
	p.applyConfig(cfg)

	p.metrics.IncrementConfigReloads()
	p.logger.Info("configuration reloaded", "config", p.configSource)
	p.emitEvent(Event{Type: EventConfigReloaded, Message: "Configuration reloaded in-place"})
	return nil
}

// applyConfig installs cfg. The brush is only read at construction so that
// a reload does not undo the user's style choices.
func (p *painterImpl) applyConfig(cfg *config.Config) {
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()

	p.state.Lock()
	p.compositor.SetBackground(backgroundOf(cfg))
	p.maxCommands = cfg.History.MaxCommands
	p.state.Unlock()
}

// Pause parks the render loop, for example while its surface is rebuilt.
func (p *painterImpl) Pause() {
	p.mu.RLock()
	loop := p.loop
	p.mu.RUnlock()
	if loop != nil && p.running.Load() {
		loop.Pause()
	}
}

// Resume continues a paused render loop.
func (p *painterImpl) Resume() {
	p.mu.RLock()
	loop := p.loop
	p.mu.RUnlock()
	if loop != nil && p.running.Load() {
		loop.Resume(nil)
	}
}

// IsRunning reports whether the render loop runs.
func (p *painterImpl) IsRunning() bool {
	return p.running.Load()
}

// Done is closed when the running painter stops.
func (p *painterImpl) Done() <-chan struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.done
}

// Status returns a point-in-time view of the painter.
func (p *painterImpl) Status() Status {
	p.mu.RLock()
	s := Status{
		Running:      p.running.Load(),
		StartTime:    p.startTime,
		Backend:      p.backend,
		ConfigSource: p.configSource,
	}
	loop, frames := p.loop, p.frames
	p.mu.RUnlock()

	if loop != nil {
		s.Paused = loop.Paused()
	}
	if frames != nil {
		s.Frames = frames.Frames()
		s.FPS = frames.FPS()
	}
	s.History = p.History()
	s.LastError = p.getError()
	return s
}

// SetErrorHandler registers a callback for runtime errors.
func (p *painterImpl) SetErrorHandler(handler ErrorHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errorHandler = handler
}

// SetEventHandler registers a callback for events.
func (p *painterImpl) SetEventHandler(handler EventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eventHandler = handler
}

// Metrics returns the metrics collector of the painter.
func (p *painterImpl) Metrics() *Metrics {
	return p.metrics
}

// compose draws one frame. It runs on the render goroutine and holds the
// state lock for the duration of the frame only.
func (p *painterImpl) compose(dst *image.RGBA) {
	start := time.Now()
	p.state.Lock()
	p.compositor.Compose(dst, p.log.Canonical(), p.view.Matrix())
	if p.drawing {
		p.compositor.DrawPreview(dst, &p.path, p.attrs, p.view.Zoom(), p.view.ToScreen)
	}
	p.state.Unlock()
	p.metrics.RecordFrame(time.Since(start))
}

func (p *painterImpl) renderError(err error) {
	p.notifyError(opError("render", ErrorCategoryRender, err))
}

func (p *painterImpl) getError() error {
	if v := p.lastError.Load(); v != nil {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

// notifyError stores err for Status, logs it and hands it to the error
// handler.
func (p *painterImpl) notifyError(err error) {
	p.lastError.Store(err)
	p.metrics.IncrementErrors()
	p.logger.Error("runtime error", "category", CategoryOf(err).String(), "error", err)

	p.mu.RLock()
	handler := p.errorHandler
	p.mu.RUnlock()

	if handler != nil {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("error handler panicked", "panic", r, "original_error", err)
				}
			}()
			handler(err)
		}()
	}

	p.emitEvent(Event{Type: EventError, Message: err.Error()})
}

// emitEvent hands ev to the event handler. A panicking handler is reported
// to the error handler.
func (p *painterImpl) emitEvent(ev Event) {
	p.metrics.IncrementEventsEmitted()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	p.mu.RLock()
	handler := p.eventHandler
	p.mu.RUnlock()

	if handler == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.mu.RLock()
				errHandler := p.errorHandler
				p.mu.RUnlock()
				if errHandler != nil {
					errHandler(fmt.Errorf("panic in event handler: %v", r))
				}
			}
		}()
		handler(ev)
	}()
}

// Health reports the state of the painter and its parts.
func (p *painterImpl) Health() HealthCheck {
	now := time.Now()
	running := p.running.Load()
	components := make(map[string]ComponentHealth, 5)

	p.mu.RLock()
	var uptime time.Duration
	if running && !p.startTime.IsZero() {
		uptime = now.Sub(p.startTime)
	}
	loop, frames, backend := p.loop, p.frames, p.backend
	p.mu.RUnlock()

	if running {
		components["instance"] = ComponentHealth{HealthOK, "Painter is running on " + backend, now}
	} else {
		components["instance"] = ComponentHealth{HealthUnhealthy, "Painter is not running", now}
	}

	switch {
	case loop == nil || !running:
		components["renderer"] = ComponentHealth{HealthUnhealthy, "Render loop not active", now}
	case loop.Paused():
		components["renderer"] = ComponentHealth{HealthDegraded, "Render loop paused", now}
	default:
		components["renderer"] = ComponentHealth{HealthOK,
			fmt.Sprintf("%d frames presented, %.1f fps", frames.Frames(), frames.FPS()), now}
	}

	p.state.Lock()
	canonical := p.log.Canonical()
	size, cursor, capacity := p.log.Size(), p.log.Cursor(), p.log.Cap()
	p.state.Unlock()

	if canonical != nil {
		b := canonical.Bounds()
		components["canvas"] = ComponentHealth{HealthOK, fmt.Sprintf("%dx%d canvas", b.Dx(), b.Dy()), now}
	} else {
		components["canvas"] = ComponentHealth{HealthDegraded, "Waiting for a surface size", now}
	}
	components["history"] = ComponentHealth{HealthOK,
		fmt.Sprintf("%d of %d commands, cursor at %d", size, capacity, cursor), now}

	lastErr := p.getError()
	if lastErr != nil {
		components["errors"] = ComponentHealth{HealthDegraded, lastErr.Error(), now}
	} else {
		components["errors"] = ComponentHealth{HealthOK, "No recent errors", now}
	}

	overall := HealthOK
	for _, c := range components {
		overall = worst(overall, c.Status)
	}
	var message string
	switch {
	case !running:
		message = "Painter is not running"
	case lastErr != nil:
		message = "Running with recent errors"
	case overall != HealthOK:
		message = "Running with idle components"
	default:
		message = "All components healthy"
	}

	return HealthCheck{
		Status:     overall,
		Timestamp:  now,
		Uptime:     uptime,
		Components: components,
		Message:    message,
	}
}
