//go:build linux

package display

import (
	"fmt"
	"image"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// X11Surface presents frames into a plain X11 window. It has no input
// handling; it is a display-only render target.
type X11Surface struct {
	mu      sync.Mutex
	conn    *xgb.Conn
	window  xproto.Window
	gc      xproto.Gcontext
	depth   byte
	maxReq  int
	back    *image.RGBA
	scratch []byte
}

// NewX11Surface opens a w by h window titled title on the default display.
func NewX11Surface(title string, w, h int) (*X11Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid x11 surface size %dx%d", w, h)
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	if len(setup.Roots) == 0 {
		conn.Close()
		return nil, fmt.Errorf("no screens found")
	}
	screen := setup.Roots[0]
	if screen.RootDepth != 24 && screen.RootDepth != 32 {
		conn.Close()
		return nil, fmt.Errorf("unsupported color depth: %d", screen.RootDepth)
	}

	win, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("allocate window id: %w", err)
	}
	err = xproto.CreateWindowChecked(conn, screen.RootDepth, win, screen.Root,
		0, 0, uint16(w), uint16(h), 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{screen.BlackPixel, xproto.EventMaskExposure | xproto.EventMaskStructureNotify},
	).Check()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create window: %w", err)
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, win)
		conn.Close()
		return nil, fmt.Errorf("allocate graphics context id: %w", err)
	}
	xproto.CreateGC(conn, gc, xproto.Drawable(win), 0, nil)

	xproto.ChangeProperty(conn, xproto.PropModeReplace, win,
		xproto.AtomWmName, xproto.AtomString, 8, uint32(len(title)), []byte(title))
	xproto.MapWindow(conn, win)

	return &X11Surface{
		conn:   conn,
		window: win,
		gc:     gc,
		depth:  screen.RootDepth,
		maxReq: int(setup.MaximumRequestLength) * 4,
		back:   image.NewRGBA(image.Rect(0, 0, w, h)),
	}, nil
}

// Lock implements render.Surface.
func (s *X11Surface) Lock() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, fmt.Errorf("x11 surface closed")
	}
	return s.back, nil
}

// Present implements render.Surface. The frame is sent in horizontal
// strips that each fit in one request.
func (s *X11Surface) Present(frame *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("x11 surface closed")
	}

	b := frame.Bounds()
	w := b.Dx()
	rows := stripRows(w, s.maxReq)
	for y := b.Min.Y; y < b.Max.Y; y += rows {
		y1 := min(y+rows, b.Max.Y)
		s.scratch = toBGRX(s.scratch, frame, y, y1)
		err := xproto.PutImageChecked(s.conn, xproto.ImageFormatZPixmap,
			xproto.Drawable(s.window), s.gc,
			uint16(w), uint16(y1-y), 0, int16(y-b.Min.Y), 0, s.depth, s.scratch,
		).Check()
		if err != nil {
			return fmt.Errorf("put image rows %d-%d: %w", y, y1, err)
		}
	}
	return nil
}

// Close destroys the window and closes the connection.
func (s *X11Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	xproto.FreeGC(s.conn, s.gc)
	xproto.DestroyWindow(s.conn, s.window)
	s.conn.Close()
	s.conn = nil
}
