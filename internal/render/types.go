// Package render runs the background loop that composes the canvas onto a
// presentation surface, frame after frame, until it is stopped.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"
)

var (
	// ErrLoopStopped is returned when starting a loop that was stopped.
	ErrLoopStopped = errors.New("render loop stopped")
	// ErrNoSurface is returned when starting a loop without a surface.
	ErrNoSurface = errors.New("render loop has no surface")
)

// ErrorHandler is a function type for handling errors raised while
// presenting frames.
type ErrorHandler func(err error)

// DefaultErrorHandler writes errors to stderr.
func DefaultErrorHandler(err error) {
	fmt.Fprintf(os.Stderr, "render error: %v\n", err)
}

// Logger is the subset of a structured logger used by the loop.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Surface is a presentation target. Lock returns the buffer the next frame
// is drawn into; Present shows it. Both are called from the loop goroutine
// only, and never while the canvas state lock is held.
type Surface interface {
	Lock() (*image.RGBA, error)
	Present(frame *image.RGBA) error
}

// ComposeFunc draws one frame into dst. It is responsible for taking and
// releasing whatever lock guards the state it reads.
type ComposeFunc func(dst *image.RGBA)

// Config holds the render loop options.
type Config struct {
	// FrameInterval is the minimum time between frame starts.
	// Zero renders as fast as the surface allows.
	FrameInterval time.Duration
	// JoinWarnInterval is how often Stop logs while waiting for the loop
	// goroutine to exit.
	JoinWarnInterval time.Duration
	// ErrorBackoff is the pause after a failed Lock or Present.
	ErrorBackoff time.Duration
	// Background is drawn behind the canvas.
	Background Background
	// Logger receives lifecycle messages. Nil disables logging.
	Logger Logger
	// ErrorHandler receives surface errors. Nil uses DefaultErrorHandler.
	ErrorHandler ErrorHandler
	// Metrics records frame timing. Nil disables recording.
	Metrics *FrameMetrics
}

// DefaultConfig returns a Config limited to 60 frames per second.
func DefaultConfig() Config {
	return Config{
		FrameInterval:    time.Second / 60,
		JoinWarnInterval: time.Second,
		ErrorBackoff:     100 * time.Millisecond,
		Background:       DefaultBackground(),
	}
}

// Validate checks if the Config has valid values.
func (c Config) Validate() error {
	if c.FrameInterval < 0 {
		return fmt.Errorf("frame interval must not be negative, got %v", c.FrameInterval)
	}
	if c.JoinWarnInterval < 0 {
		return fmt.Errorf("join warn interval must not be negative, got %v", c.JoinWarnInterval)
	}
	if c.Background.Cell < 0 {
		return fmt.Errorf("checker cell size must not be negative, got %d", c.Background.Cell)
	}
	return nil
}

// Background describes what shows through transparent canvas pixels and
// around a canvas smaller than the surface.
type Background struct {
	Light color.RGBA
	Dark  color.RGBA
	// Cell is the checker square size in pixels; zero paints Light only.
	Cell int
}

// DefaultBackground returns a grey checkerboard with 8 pixel cells.
func DefaultBackground() Background {
	return Background{
		Light: color.RGBA{R: 204, G: 204, B: 204, A: 255},
		Dark:  color.RGBA{R: 153, G: 153, B: 153, A: 255},
		Cell:  8,
	}
}
