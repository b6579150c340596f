package threadpaint

import (
	"image"
	"time"
)

// DefaultShutdownTimeout bounds how long Stop waits for the window
// goroutine after the render loop has been joined.
const DefaultShutdownTimeout = 5 * time.Second

// Backend names accepted by Options.Backend.
const (
	BackendEbiten   = "ebiten"
	BackendX11      = "x11"
	BackendHeadless = "headless"
)

// Surface is a presentation target for the render loop. Lock returns the
// buffer the next frame is composed into and Present shows it. Both are
// called from the render goroutine only.
type Surface interface {
	Lock() (*image.RGBA, error)
	Present(frame *image.RGBA) error
}

// Options configures a Painter beyond what its configuration file holds.
type Options struct {
	// Backend overrides window.backend from the configuration.
	// Empty means use the configuration's value.
	Backend string

	// Headless renders offscreen regardless of Backend.
	Headless bool

	// Surface replaces the backend with a caller-provided presentation
	// target. It is sized from window.width and window.height.
	Surface Surface

	// WindowTitle overrides the window title.
	WindowTitle string

	// ShutdownTimeout bounds the wait for the window goroutine in Stop.
	// Zero means DefaultShutdownTimeout. The render loop itself is always
	// joined without a timeout.
	ShutdownTimeout time.Duration

	// Logger receives lifecycle and diagnostic messages.
	// If nil, nothing is logged.
	Logger Logger

	// Metrics collects operational counters. If nil, DefaultMetrics() is used.
	Metrics *Metrics

	// WatchConfig reloads the configuration file in place when it changes
	// on disk. Only painters created with New watch a file.
	WatchConfig bool

	// WatchDebounce coalesces rapid file changes into a single reload.
	// Zero means DefaultWatchDebounce.
	WatchDebounce time.Duration
}

// DefaultOptions returns Options that defer to the configuration.
func DefaultOptions() Options {
	return Options{}
}

// Logger is the structured logger used by the painter.
// It follows the slog-style signature.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
