package config

import (
	"fmt"
	"time"

	"github.com/opd-ai/go-threadpaint/internal/paint"
)

// rawConfig is the decoded form shared by the Lua and TOML parsers.
// Nil fields were not set and keep their defaults. The toml tags name the
// keys in both formats.
type rawConfig struct {
	Canvas  rawCanvas  `toml:"canvas"`
	Brush   rawBrush   `toml:"brush"`
	History rawHistory `toml:"history"`
	Render  rawRender  `toml:"render"`
	Input   rawInput   `toml:"input"`
	Window  rawWindow  `toml:"window"`
	Export  rawExport  `toml:"export"`
}

type rawCanvas struct {
	Width      *int    `toml:"width"`
	Height     *int    `toml:"height"`
	Background *string `toml:"background"`
	Image      *string `toml:"image"`
}

type rawBrush struct {
	Color *string  `toml:"color"`
	Width *float64 `toml:"width"`
	Cap   *string  `toml:"cap"`
	Join  *string  `toml:"join"`
}

type rawHistory struct {
	MaxCommands *int `toml:"max_commands"`
}

type rawRender struct {
	FrameRate        *int     `toml:"frame_rate"`
	CheckerLight     *string  `toml:"checker_light"`
	CheckerDark      *string  `toml:"checker_dark"`
	CheckerSize      *int     `toml:"checker_size"`
	JoinWarnInterval *float64 `toml:"join_warn_interval"`
}

type rawInput struct {
	MoveThreshold *float64 `toml:"move_threshold"`
	WheelZoomStep *float64 `toml:"wheel_zoom_step"`
}

type rawWindow struct {
	Backend *string `toml:"backend"`
	Title   *string `toml:"title"`
	Width   *int    `toml:"width"`
	Height  *int    `toml:"height"`
}

type rawExport struct {
	Path *string `toml:"path"`
}

// config applies the set fields over the defaults.
func (r *rawConfig) config() (*Config, error) {
	cfg := DefaultConfig()

	setInt(&cfg.Canvas.Width, r.Canvas.Width)
	setInt(&cfg.Canvas.Height, r.Canvas.Height)
	setString(&cfg.Canvas.Image, r.Canvas.Image)
	if r.Canvas.Background != nil {
		c, err := paint.ParseColor(*r.Canvas.Background)
		if err != nil {
			return nil, fmt.Errorf("invalid canvas.background: %w", err)
		}
		cfg.Canvas.Background = c
	}

	if r.Brush.Color != nil {
		c, err := paint.ParseColor(*r.Brush.Color)
		if err != nil {
			return nil, fmt.Errorf("invalid brush.color: %w", err)
		}
		cfg.Brush.Color = c
	}
	setFloat(&cfg.Brush.Width, r.Brush.Width)
	if r.Brush.Cap != nil {
		c, err := paint.ParseCap(*r.Brush.Cap)
		if err != nil {
			return nil, fmt.Errorf("invalid brush.cap: %w", err)
		}
		cfg.Brush.Cap = c
	}
	if r.Brush.Join != nil {
		j, err := paint.ParseJoin(*r.Brush.Join)
		if err != nil {
			return nil, fmt.Errorf("invalid brush.join: %w", err)
		}
		cfg.Brush.Join = j
	}

	setInt(&cfg.History.MaxCommands, r.History.MaxCommands)

	setInt(&cfg.Render.FrameRate, r.Render.FrameRate)
	setInt(&cfg.Render.CheckerSize, r.Render.CheckerSize)
	if r.Render.CheckerLight != nil {
		c, err := paint.ParseColor(*r.Render.CheckerLight)
		if err != nil {
			return nil, fmt.Errorf("invalid render.checker_light: %w", err)
		}
		cfg.Render.CheckerLight = c
	}
	if r.Render.CheckerDark != nil {
		c, err := paint.ParseColor(*r.Render.CheckerDark)
		if err != nil {
			return nil, fmt.Errorf("invalid render.checker_dark: %w", err)
		}
		cfg.Render.CheckerDark = c
	}
	if r.Render.JoinWarnInterval != nil {
		cfg.Render.JoinWarnInterval = time.Duration(*r.Render.JoinWarnInterval * float64(time.Second))
	}

	setFloat(&cfg.Input.MoveThreshold, r.Input.MoveThreshold)
	setFloat(&cfg.Input.WheelZoomStep, r.Input.WheelZoomStep)

	if r.Window.Backend != nil {
		b, err := ParseBackend(*r.Window.Backend)
		if err != nil {
			return nil, fmt.Errorf("invalid window.backend: %w", err)
		}
		cfg.Window.Backend = b
	}
	setString(&cfg.Window.Title, r.Window.Title)
	setInt(&cfg.Window.Width, r.Window.Width)
	setInt(&cfg.Window.Height, r.Window.Height)

	setString(&cfg.Export.Path, r.Export.Path)

	return &cfg, nil
}

func setInt(dst, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}
