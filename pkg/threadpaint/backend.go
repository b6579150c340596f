package threadpaint

import (
	"context"

	"github.com/opd-ai/go-threadpaint/internal/config"
	"github.com/opd-ai/go-threadpaint/internal/display"
	"github.com/opd-ai/go-threadpaint/internal/render"
)

// surfaceHandle is an opened presentation surface.
type surfaceHandle struct {
	surface render.Surface
	// width and height are forwarded to SetSurfaceSize after start. Zero
	// means the surface reports its own size.
	width, height int
	// run drives an event loop until ctx is cancelled or the user closes
	// the window. Nil for surfaces without one.
	run func(ctx context.Context) error
	// close releases the surface after the render loop has exited.
	close func()
}

// openSurface opens the surface of backend. The caller holds p.mu.
func (p *painterImpl) openSurface(backend string, cfg *config.Config) (*surfaceHandle, error) {
	w, h := cfg.Window.Width, cfg.Window.Height
	title := cfg.Window.Title
	if p.opts.WindowTitle != "" {
		title = p.opts.WindowTitle
	}

	switch backend {
	case "custom":
		return &surfaceHandle{surface: p.opts.Surface, width: w, height: h}, nil
	case BackendHeadless:
		return &surfaceHandle{surface: render.NewMemorySurface(w, h), width: w, height: h}, nil
	case BackendX11:
		s, err := display.NewX11Surface(title, w, h)
		if err != nil {
			return nil, err
		}
		return &surfaceHandle{surface: s, width: w, height: h, close: s.Close}, nil
	default:
		return p.openWindow(title, w, h, cfg.Input)
	}
}
