package transform

import "github.com/opd-ai/go-threadpaint/internal/canvas"

// minPinchSpacing is the smallest finger distance, in screen pixels, that
// starts a pinch. Closer touches give unstable ratios.
const minPinchSpacing = 10

// PinchState is the state of a Pinch tracker.
type PinchState int

const (
	// PinchIdle means no zoom gesture is in progress.
	PinchIdle PinchState = iota
	// PinchZooming means two pointers are down and moves change the zoom.
	PinchZooming
)

// String implements fmt.Stringer.
func (s PinchState) String() string {
	if s == PinchZooming {
		return "zooming"
	}
	return "idle"
}

// Pinch turns two-pointer gestures into zoom levels.
type Pinch struct {
	state    PinchState
	refSpace float32
	refZoom  float32
}

// State returns the current state.
func (p *Pinch) State() PinchState { return p.state }

// Down handles a second pointer going down at distance spacing from the
// first while the view is at zoom. It reports whether zooming began.
func (p *Pinch) Down(spacing, zoom float32) bool {
	if spacing < minPinchSpacing {
		return false
	}
	p.state = PinchZooming
	p.refSpace = spacing
	p.refZoom = zoom
	return true
}

// Move handles a pointer move with the pointers at distance spacing. While
// zooming it returns the new zoom level and true.
func (p *Pinch) Move(spacing float32) (float32, bool) {
	if p.state != PinchZooming || spacing <= 0 {
		return 0, false
	}
	return p.refZoom * spacing / p.refSpace, true
}

// End handles any event other than a move and returns to idle.
func (p *Pinch) End() {
	p.state = PinchIdle
}

// Spacing returns the distance between two pointer positions.
func Spacing(a, b canvas.Point) float32 {
	return b.Sub(a).Len()
}
