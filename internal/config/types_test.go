package config

import (
	"testing"
	"time"

	"github.com/opd-ai/go-threadpaint/internal/paint"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Window.Width != DefaultWidth || cfg.Window.Height != DefaultHeight {
		t.Errorf("window = %dx%d, want %dx%d", cfg.Window.Width, cfg.Window.Height, DefaultWidth, DefaultHeight)
	}
	if cfg.Window.Backend != BackendEbiten {
		t.Errorf("backend = %v, want ebiten", cfg.Window.Backend)
	}
	if cfg.History.MaxCommands != 256 {
		t.Errorf("max commands = %d, want 256", cfg.History.MaxCommands)
	}
	if cfg.Canvas.Background != DefaultCanvasColor {
		t.Errorf("canvas background = %v, want white", cfg.Canvas.Background)
	}
	if err := ValidateConfig(&cfg); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestBackendString(t *testing.T) {
	tests := []struct {
		backend Backend
		want    string
	}{
		{BackendEbiten, "ebiten"},
		{BackendX11, "x11"},
		{BackendHeadless, "headless"},
		{Backend(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.backend.String(); got != tt.want {
			t.Errorf("Backend(%d).String() = %q, want %q", int(tt.backend), got, tt.want)
		}
	}
}

func TestParseBackend(t *testing.T) {
	for _, name := range []string{"ebiten", "x11", "headless"} {
		b, err := ParseBackend(name)
		if err != nil {
			t.Errorf("ParseBackend(%q) error = %v", name, err)
		}
		if b.String() != name {
			t.Errorf("ParseBackend(%q) = %v", name, b)
		}
	}
	if _, err := ParseBackend("wayland"); err == nil {
		t.Error("ParseBackend(wayland) succeeded")
	}
}

func TestFrameInterval(t *testing.T) {
	tests := []struct {
		rate int
		want time.Duration
	}{
		{60, time.Second / 60},
		{1, time.Second},
		{0, 0},
		{-5, 0},
	}
	for _, tt := range tests {
		if got := (RenderConfig{FrameRate: tt.rate}).FrameInterval(); got != tt.want {
			t.Errorf("FrameInterval(%d) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestBrushAttrs(t *testing.T) {
	b := BrushConfig{
		Color: paint.MustParseColor("#00ff00"),
		Width: 12,
		Cap:   paint.CapSquare,
		Join:  paint.JoinBevel,
	}
	a := b.Attrs()
	if a.Width != 12 || a.Cap != paint.CapSquare || a.Join != paint.JoinBevel || a.Erasing() {
		t.Errorf("Attrs() = %v", a)
	}

	b.Color.A = 0
	if !b.Attrs().Erasing() {
		t.Error("transparent brush color should erase")
	}
}
