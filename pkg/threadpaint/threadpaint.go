package threadpaint

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"io/fs"

	"github.com/opd-ai/go-threadpaint/internal/config"
	"github.com/opd-ai/go-threadpaint/internal/display"
	"github.com/opd-ai/go-threadpaint/internal/paint"
)

// Configuration formats accepted by NewFromReader.
const (
	FormatLua  = "lua"
	FormatTOML = "toml"
)

// Tool selects what pointer gestures do.
type Tool = display.Tool

// Tools.
const (
	ToolBrush = display.ToolBrush
	ToolMove  = display.ToolMove
	ToolFill  = display.ToolFill
	ToolErase = display.ToolErase
)

// Cap is the shape of stroke ends and single points.
type Cap = paint.Cap

// Caps.
const (
	CapRound  = paint.CapRound
	CapSquare = paint.CapSquare
	CapButt   = paint.CapButt
)

// Join is the shape of stroke corners.
type Join = paint.Join

// Joins.
const (
	JoinRound = paint.JoinRound
	JoinMiter = paint.JoinMiter
	JoinBevel = paint.JoinBevel
)

// Attrs is the drawing style captured by each command.
type Attrs = paint.Attrs

// Painter is a raster paint engine: a canvas with bounded undo and redo, a
// zoomable view of it, and a render loop presenting that view.
//
// Canvas operations work whether or not the render loop runs. Coordinates
// passed to StartPath, UpdatePath and DrawPoint are screen pixels and are
// mapped through the current zoom and scroll.
//
// A Painter is safe for concurrent use from multiple goroutines.
type Painter interface {
	// Start opens the presentation surface and starts the render loop.
	// It returns immediately; rendering runs in background goroutines.
	Start() error

	// Stop ends the render loop and waits until it has exited. The canvas
	// is kept; call Clear afterwards to release it. Safe to call more than
	// once.
	Stop() error

	// Restart stops, reloads configuration from its source and starts.
	Restart() error

	// ReloadConfig applies a fresh configuration while running: the
	// backdrop, the export path and the history capacity of the next
	// canvas reset. Frame pacing and the backend change on Restart.
	ReloadConfig() error

	// Pause parks the render loop between frames. Resume continues it.
	Pause()
	Resume()

	// IsRunning reports whether the render loop runs.
	IsRunning() bool

	// Done is closed when the running painter stops, including when its
	// window is closed.
	Done() <-chan struct{}

	Status() Status
	Health() HealthCheck
	Metrics() *Metrics

	// SetErrorHandler and SetEventHandler register asynchronous callbacks.
	// Panics in them are recovered.
	SetErrorHandler(handler ErrorHandler)
	SetEventHandler(handler EventHandler)

	// SetSurfaceSize records the presentation size and resets the view.
	// The first valid size creates the canvas; later sizes keep it.
	SetSurfaceSize(w, h int) error
	// SetBitmap replaces the canvas with img scaled to fit the surface and
	// drops all history.
	SetBitmap(img image.Image) error
	// LoadImage reads an image file and passes it to SetBitmap.
	LoadImage(path string) error
	// ResetCanvas replaces the canvas with a blank one of the same size.
	ResetCanvas()
	// Clear releases the canvas and its history.
	Clear()

	StartPath(x, y float32)
	UpdatePath(x1, y1, x2, y2 float32)
	FinishPath()
	CancelPath()
	DrawPoint(x, y float32)
	FillWithPaint()
	Undo() bool
	Redo() bool

	ScrollBy(dx, dy float32)
	SetZoom(scale float32)
	Zoom() float32
	ResetPerspective()
	// ToCanvas maps a screen position to canvas coordinates.
	ToCanvas(x, y float32) (float32, float32)

	// SetColor sets the paint color. A fully transparent color erases.
	SetColor(c color.RGBA)
	SetStrokeWidth(w float32)
	SetCap(c Cap)
	SetJoin(j Join)
	SetTool(t Tool)
	Tool() Tool
	Attrs() Attrs

	// CanonicalBitmap returns a copy of the canvas, or nil before the first
	// surface size.
	CanonicalBitmap() *image.RGBA
	// Digest returns a hex blake2b-256 digest of the canvas pixels.
	Digest() string
	History() HistoryInfo
	// Save writes the canvas to path, or to the configured export path when
	// path is empty. The extension selects PNG or PDF.
	Save(path string) error
}

// New creates a Painter from a Lua or TOML configuration file.
// The painter is not started.
//
// Example:
//
//	p, err := threadpaint.New("~/.config/threadpaint/config.toml", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer p.Stop()
//	if err := p.Start(); err != nil {
//		log.Fatal(err)
//	}
func New(configPath string, opts *Options) (Painter, error) {
	loader := func() (*config.Config, error) {
		return parseWith(func(p *config.Parser) (*config.Config, error) {
			return p.ParseFile(configPath)
		})
	}
	cfg, err := loader()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	p := newPainter(cfg, opts, configPath, loader)
	p.configPath = configPath
	return p, nil
}

// NewFromFS creates a Painter from a configuration file inside fsys, such
// as an embed.FS.
func NewFromFS(fsys fs.FS, configPath string, opts *Options) (Painter, error) {
	loader := func() (*config.Config, error) {
		return parseWith(func(p *config.Parser) (*config.Config, error) {
			return p.ParseFromFS(fsys, configPath)
		})
	}
	cfg, err := loader()
	if err != nil {
		return nil, fmt.Errorf("parse config from FS: %w", err)
	}
	return newPainter(cfg, opts, "embedded:"+configPath, loader), nil
}

// NewFromReader creates a Painter from configuration content in format
// FormatLua or FormatTOML. The content is read once and kept for reloads.
func NewFromReader(r io.Reader, format string, opts *Options) (Painter, error) {
	if format != FormatLua && format != FormatTOML {
		return nil, fmt.Errorf("invalid format: %s (expected '%s' or '%s')", format, FormatLua, FormatTOML)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	loader := func() (*config.Config, error) {
		return parseWith(func(p *config.Parser) (*config.Config, error) {
			return p.ParseReader(bytes.NewReader(content), format)
		})
	}
	cfg, err := loader()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return newPainter(cfg, opts, "reader", loader), nil
}

// NewDefault creates a Painter with the default configuration. It has no
// configuration source, so Restart keeps the defaults and ReloadConfig
// fails with ErrNoConfigLoader.
func NewDefault(opts *Options) Painter {
	cfg := config.DefaultConfig()
	return newPainter(&cfg, opts, "defaults", nil)
}

// parseWith runs parse with a fresh parser and validates the result.
func parseWith(parse func(*config.Parser) (*config.Config, error)) (*config.Config, error) {
	p, err := config.NewParser()
	if err != nil {
		return nil, fmt.Errorf("parser init: %w", err)
	}
	defer p.Close()

	cfg, err := parse(p)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
