package config

import (
	"image/color"
	"time"

	"github.com/opd-ai/go-threadpaint/internal/history"
	"github.com/opd-ai/go-threadpaint/internal/paint"
)

// Default values for configuration options.
const (
	// DefaultFrameRate is the default frame cap.
	DefaultFrameRate = 60
	// DefaultCheckerSize is the default backdrop square size.
	DefaultCheckerSize = 8
	// DefaultMoveThreshold is the default point/stroke travel threshold.
	DefaultMoveThreshold = 4.0
	// DefaultWheelZoomStep is the default zoom change per wheel notch.
	DefaultWheelZoomStep = 0.1
	// DefaultWidth is the default window width in pixels.
	DefaultWidth = 800
	// DefaultHeight is the default window height in pixels.
	DefaultHeight = 600
	// DefaultTitle is the default window title.
	DefaultTitle = "threadpaint"
	// DefaultJoinWarnInterval is the default shutdown warning period.
	DefaultJoinWarnInterval = time.Second
)

// Default colors.
var (
	// DefaultCanvasColor fills a fresh canvas (white).
	DefaultCanvasColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	// DefaultCheckerLight is the light backdrop square.
	DefaultCheckerLight = color.RGBA{R: 204, G: 204, B: 204, A: 255}
	// DefaultCheckerDark is the dark backdrop square.
	DefaultCheckerDark = color.RGBA{R: 153, G: 153, B: 153, A: 255}
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Canvas: CanvasConfig{
			Background: DefaultCanvasColor,
		},
		Brush: BrushConfig{
			Color: paint.DefaultColor,
			Width: paint.DefaultWidth,
			Cap:   paint.CapRound,
			Join:  paint.JoinRound,
		},
		History: HistoryConfig{
			MaxCommands: history.DefaultMaxCommands,
		},
		Render: RenderConfig{
			FrameRate:        DefaultFrameRate,
			CheckerLight:     DefaultCheckerLight,
			CheckerDark:      DefaultCheckerDark,
			CheckerSize:      DefaultCheckerSize,
			JoinWarnInterval: DefaultJoinWarnInterval,
		},
		Input: InputConfig{
			MoveThreshold: DefaultMoveThreshold,
			WheelZoomStep: DefaultWheelZoomStep,
		},
		Window: WindowConfig{
			Backend: BackendEbiten,
			Title:   DefaultTitle,
			Width:   DefaultWidth,
			Height:  DefaultHeight,
		},
	}
}
