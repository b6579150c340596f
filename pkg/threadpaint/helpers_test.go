package threadpaint

import (
	"strings"
	"testing"
	"time"
)

const headlessTOML = `
[window]
backend = "headless"
width = 40
height = 30

[render]
frame_rate = 120
`

var (
	white = [4]uint8{255, 255, 255, 255}
	black = [4]uint8{0, 0, 0, 255}
	red   = [4]uint8{255, 0, 0, 255}
	blue  = [4]uint8{0, 0, 255, 255}
)

func testOptions() *Options {
	return &Options{Logger: NopLogger(), Metrics: NewMetrics()}
}

// newCanvasPainter returns a stopped painter with a w by h canvas.
func newCanvasPainter(t *testing.T, w, h int) *painterImpl {
	t.Helper()
	p := NewDefault(testOptions()).(*painterImpl)
	if err := p.SetSurfaceSize(w, h); err != nil {
		t.Fatalf("SetSurfaceSize(%d, %d) failed: %v", w, h, err)
	}
	return p
}

// newTOMLPainter returns a stopped painter configured by content. It is
// stopped at cleanup.
func newTOMLPainter(t *testing.T, content string, opts *Options) *painterImpl {
	t.Helper()
	if opts == nil {
		opts = testOptions()
	}
	p, err := NewFromReader(strings.NewReader(content), FormatTOML, opts)
	if err != nil {
		t.Fatalf("NewFromReader failed: %v", err)
	}
	t.Cleanup(func() { p.Stop() })
	return p.(*painterImpl)
}

// pixel returns the canvas pixel at (x, y).
func pixel(t *testing.T, p Painter, x, y int) [4]uint8 {
	t.Helper()
	img := p.CanonicalBitmap()
	if img == nil {
		t.Fatal("no canvas")
	}
	c := img.RGBAAt(x, y)
	return [4]uint8{c.R, c.G, c.B, c.A}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// recordEvents routes the events of p into a buffered channel.
func recordEvents(p Painter) <-chan Event {
	ch := make(chan Event, 256)
	p.SetEventHandler(func(ev Event) {
		select {
		case ch <- ev:
		default:
		}
	})
	return ch
}

// waitEvent returns the first event of type typ, skipping others.
func waitEvent(t *testing.T, ch <-chan Event, typ EventType) Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Type == typ {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s event", typ)
		}
	}
}
