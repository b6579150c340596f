// Package config provides configuration data structures for threadpaint.
// Configurations are written either in Lua (a threadpaint.config table) or
// in TOML, and both decode into the same Config.
package config

import (
	"fmt"
	"image/color"
	"time"

	"github.com/opd-ai/go-threadpaint/internal/paint"
)

// Config represents the complete threadpaint configuration.
type Config struct {
	// Canvas sets the initial bitmap.
	Canvas CanvasConfig
	// Brush is the style of the first stroke.
	Brush BrushConfig
	// History bounds the undo log.
	History HistoryConfig
	// Render controls frame pacing and the backdrop.
	Render RenderConfig
	// Input tunes gesture recognition.
	Input InputConfig
	// Window selects and sizes the presentation surface.
	Window WindowConfig
	// Export sets where snapshots are saved.
	Export ExportConfig
}

// CanvasConfig describes the bitmap created when the first surface size
// arrives.
type CanvasConfig struct {
	// Width and Height fix the bitmap size. Zero means the surface size.
	Width  int
	Height int
	// Background fills a fresh canvas.
	Background color.RGBA
	// Image is loaded as the baseline instead of a blank canvas.
	Image string
}

// BrushConfig holds the initial paint attributes.
type BrushConfig struct {
	Color color.RGBA
	Width float64
	Cap   paint.Cap
	Join  paint.Join
}

// Attrs converts the brush settings to paint attributes.
func (b BrushConfig) Attrs() paint.Attrs {
	return paint.DefaultAttrs().
		WithColor(b.Color).
		WithWidth(float32(b.Width)).
		WithCap(b.Cap).
		WithJoin(b.Join)
}

// HistoryConfig bounds the command log.
type HistoryConfig struct {
	// MaxCommands is the number of undoable commands kept.
	MaxCommands int
}

// RenderConfig controls the render loop.
type RenderConfig struct {
	// FrameRate caps the frames presented per second.
	FrameRate int
	// CheckerLight and CheckerDark color the transparency backdrop.
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
	// CheckerSize is the backdrop square size in pixels; zero paints
	// CheckerLight only.
	CheckerSize int
	// JoinWarnInterval is how often shutdown warns while waiting for the
	// render loop to exit.
	JoinWarnInterval time.Duration
}

// FrameInterval returns the time between frames for FrameRate.
func (r RenderConfig) FrameInterval() time.Duration {
	if r.FrameRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(r.FrameRate)
}

// InputConfig tunes pointer gestures.
type InputConfig struct {
	// MoveThreshold is the travel in screen pixels separating a point
	// from a stroke.
	MoveThreshold float64
	// WheelZoomStep is the relative zoom change per wheel notch.
	WheelZoomStep float64
}

// WindowConfig selects the presentation surface.
type WindowConfig struct {
	Backend Backend
	Title   string
	Width   int
	Height  int
}

// ExportConfig holds snapshot settings.
type ExportConfig struct {
	// Path is the default file written by Save. The extension selects
	// PNG or PDF.
	Path string
}

// Backend is a presentation surface implementation.
type Backend int

const (
	// BackendEbiten opens an interactive ebiten window.
	BackendEbiten Backend = iota
	// BackendX11 presents into a plain X11 window without input.
	BackendX11
	// BackendHeadless renders offscreen.
	BackendHeadless
)

// String returns the string representation of a Backend.
func (b Backend) String() string {
	switch b {
	case BackendEbiten:
		return "ebiten"
	case BackendX11:
		return "x11"
	case BackendHeadless:
		return "headless"
	default:
		return "unknown"
	}
}

// ParseBackend parses a string into a Backend.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "ebiten":
		return BackendEbiten, nil
	case "x11":
		return BackendX11, nil
	case "headless":
		return BackendHeadless, nil
	default:
		return BackendEbiten, fmt.Errorf("unknown backend: %s", s)
	}
}
