//go:build !noebiten

package threadpaint

import (
	"context"

	"github.com/opd-ai/go-threadpaint/internal/config"
	"github.com/opd-ai/go-threadpaint/internal/display"
)

// openWindow creates an ebiten window driving the painter. The window
// reports its own size through SetSurfaceSize once it is laid out.
func (p *painterImpl) openWindow(title string, w, h int, in config.InputConfig) (*surfaceHandle, error) {
	win := display.NewWindow(display.WindowConfig{
		Title:  title,
		Width:  w,
		Height: h,
		Input: display.InputConfig{
			MoveThreshold: float32(in.MoveThreshold),
			WheelZoomStep: float32(in.WheelZoomStep),
		},
	}, p)
	win.SetErrorHandler(func(err error) {
		p.notifyError(opError("window event", ErrorCategoryWindow, err))
	})

	return &surfaceHandle{
		surface: win,
		run: func(ctx context.Context) error {
			win.SetContext(ctx)
			return win.Run()
		},
	}, nil
}
