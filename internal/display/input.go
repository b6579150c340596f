// Package display connects the paint engine to the outside world: window
// surfaces the render loop presents to, and the input glue that turns
// pointer, touch and keyboard events into engine calls.
package display

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
	"github.com/opd-ai/go-threadpaint/internal/transform"
)

// Tool selects what a pointer drag does.
type Tool int

const (
	// ToolBrush draws strokes and points.
	ToolBrush Tool = iota
	// ToolMove scrolls the view.
	ToolMove
	// ToolFill paints the whole canvas on tap.
	ToolFill
	// ToolErase draws strokes that remove pixels.
	ToolErase
)

var toolNames = [...]string{"brush", "move", "fill", "erase"}

// String returns the tool name.
func (t Tool) String() string {
	if t >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// ParseTool parses a tool name.
func ParseTool(s string) (Tool, error) {
	for i, n := range toolNames {
		if n == s {
			return Tool(i), nil
		}
	}
	return ToolBrush, fmt.Errorf("unknown tool %q", s)
}

// Controller is the engine surface driven by input. Coordinates are in
// screen pixels.
type Controller interface {
	SetSurfaceSize(w, h int) error
	StartPath(x, y float32)
	UpdatePath(x1, y1, x2, y2 float32)
	FinishPath()
	CancelPath()
	DrawPoint(x, y float32)
	FillWithPaint()
	ScrollBy(dx, dy float32)
	SetZoom(scale float32)
	Zoom() float32
	Undo() bool
	Redo() bool
	ResetPerspective()
	SetTool(t Tool)
}

// Action is a discrete command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionUndo
	ActionRedo
	ActionBrush
	ActionMove
	ActionFill
	ActionErase
	ActionResetPerspective
)

// InputConfig tunes gesture recognition.
type InputConfig struct {
	// MoveThreshold is the pointer travel in screen pixels below which a
	// press and release is a point rather than a stroke.
	MoveThreshold float32
	// WheelZoomStep is the relative zoom change per wheel notch.
	WheelZoomStep float32
}

// DefaultInputConfig returns the default gesture settings.
func DefaultInputConfig() InputConfig {
	return InputConfig{MoveThreshold: 4, WheelZoomStep: 0.1}
}

// Input is the gesture state machine. It is not safe for concurrent use;
// the window feeds it from its update goroutine.
type Input struct {
	ctrl    Controller
	cfg     InputConfig
	tool    Tool
	pressed bool
	moved   bool
	start   canvas.Point
	last    canvas.Point
	pinch   transform.Pinch
}

// NewInput returns an Input driving ctrl with the brush tool selected.
func NewInput(ctrl Controller, cfg InputConfig) *Input {
	if cfg.MoveThreshold < 0 {
		cfg.MoveThreshold = 0
	}
	if cfg.WheelZoomStep <= 0 {
		cfg.WheelZoomStep = DefaultInputConfig().WheelZoomStep
	}
	return &Input{ctrl: ctrl, cfg: cfg}
}

// Tool returns the selected tool.
func (in *Input) Tool() Tool { return in.tool }

// SetTool selects t. A stroke in progress is dropped.
func (in *Input) SetTool(t Tool) {
	if in.pressed {
		in.cancel()
	}
	in.tool = t
	in.ctrl.SetTool(t)
}

// Pressed reports whether a pointer gesture is in progress.
func (in *Input) Pressed() bool { return in.pressed }

// PointerDown begins a gesture at (x, y).
func (in *Input) PointerDown(x, y float32) {
	if in.pinch.State() == transform.PinchZooming {
		return
	}
	in.pressed = true
	in.moved = false
	in.start = canvas.Point{X: x, Y: y}
	in.last = in.start
	if in.draws() {
		in.ctrl.StartPath(x, y)
	}
}

// PointerMove continues a gesture.
func (in *Input) PointerMove(x, y float32) {
	if !in.pressed {
		return
	}
	p := canvas.Point{X: x, Y: y}
	if p == in.last {
		return
	}
	if !in.moved {
		if p.Sub(in.start).Len() < in.cfg.MoveThreshold {
			return
		}
		in.moved = true
	}

	switch in.tool {
	case ToolMove:
		d := p.Sub(in.last)
		in.ctrl.ScrollBy(d.X, d.Y)
	case ToolBrush, ToolErase:
		in.ctrl.UpdatePath(in.last.X, in.last.Y, x, y)
	}
	in.last = p
}

// PointerUp ends a gesture. A press that never travelled past the move
// threshold becomes a point, or a fill with the fill tool.
func (in *Input) PointerUp(x, y float32) {
	if !in.pressed {
		return
	}
	in.PointerMove(x, y)
	in.pressed = false

	switch in.tool {
	case ToolBrush, ToolErase:
		if in.moved {
			in.ctrl.FinishPath()
		} else {
			in.ctrl.DrawPoint(in.start.X, in.start.Y)
		}
	case ToolFill:
		if !in.moved {
			in.ctrl.FillWithPaint()
		}
	}
}

// Wheel zooms by notches; positive values zoom in.
func (in *Input) Wheel(notches float32) {
	if notches == 0 {
		return
	}
	factor := math32.Pow(1+in.cfg.WheelZoomStep, notches)
	in.ctrl.SetZoom(in.ctrl.Zoom() * factor)
}

// Touches reports the current touch points. Exactly two points drive a
// pinch zoom; any other count ends it.
func (in *Input) Touches(pts []canvas.Point) {
	if len(pts) != 2 {
		in.pinch.End()
		return
	}
	spacing := transform.Spacing(pts[0], pts[1])
	if in.pinch.State() == transform.PinchIdle {
		if !in.pinch.Down(spacing, in.ctrl.Zoom()) {
			return
		}
		if in.pressed {
			in.cancel()
		}
		return
	}
	if zoom, ok := in.pinch.Move(spacing); ok {
		in.ctrl.SetZoom(zoom)
	}
}

// Do runs a key action.
func (in *Input) Do(a Action) {
	switch a {
	case ActionUndo:
		in.ctrl.Undo()
	case ActionRedo:
		in.ctrl.Redo()
	case ActionBrush:
		in.SetTool(ToolBrush)
	case ActionMove:
		in.SetTool(ToolMove)
	case ActionFill:
		in.SetTool(ToolFill)
	case ActionErase:
		in.SetTool(ToolErase)
	case ActionResetPerspective:
		in.ctrl.ResetPerspective()
	}
}

func (in *Input) draws() bool {
	return in.tool == ToolBrush || in.tool == ToolErase
}

func (in *Input) cancel() {
	if in.draws() {
		in.ctrl.CancelPath()
	}
	in.pressed = false
}
