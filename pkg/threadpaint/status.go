package threadpaint

import "time"

// Status is a point-in-time view of a Painter.
type Status struct {
	// Running reports whether the render loop is active.
	Running bool
	// Paused reports whether the render loop is parked.
	Paused bool
	// StartTime is when the painter was last started.
	StartTime time.Time
	// Backend names the presentation surface of the last start.
	Backend string
	// Frames is the number of frames presented since the last start.
	Frames int64
	// FPS is the measured frame rate.
	FPS float64
	// History describes the command log.
	History HistoryInfo
	// LastError is the most recent runtime error, or nil.
	LastError error
	// ConfigSource describes where the configuration came from.
	ConfigSource string
}

// HistoryInfo describes the command log.
type HistoryInfo struct {
	// Size is the number of recorded commands, redo branch included.
	Size int
	// Cursor is the number of applied commands.
	Cursor int
	// Cap is the maximum number of recorded commands.
	Cap int
	// Evicted counts commands folded into the baseline since the last reset.
	Evicted int
}

// CanUndo reports whether an undo would change the canvas.
func (h HistoryInfo) CanUndo() bool { return h.Cursor > 0 }

// CanRedo reports whether a redo would change the canvas.
func (h HistoryInfo) CanRedo() bool { return h.Cursor < h.Size }

// ErrorHandler is a callback for runtime errors. It is called
// asynchronously; do not block in it.
type ErrorHandler func(err error)

// EventHandler is a callback for painter events. It is called
// asynchronously; do not block in it.
type EventHandler func(event Event)

// Event is a lifecycle or canvas event.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Message   string
	// CommandID identifies the command of committed, undone and redone
	// events.
	CommandID string
}

// EventType enumerates event types. Compare against the constants; the
// underlying values are not stable.
type EventType int

const (
	// EventStarted is emitted when the painter starts.
	EventStarted EventType = iota
	// EventStopped is emitted when the painter stops.
	EventStopped
	// EventRestarted is emitted after a successful restart.
	EventRestarted
	// EventConfigReloaded is emitted when configuration is reloaded.
	EventConfigReloaded
	// EventError is emitted for every runtime error.
	EventError
	// EventCommitted is emitted after a command was drawn and recorded.
	EventCommitted
	// EventUndone is emitted after an undo changed the canvas.
	EventUndone
	// EventRedone is emitted after a redo changed the canvas.
	EventRedone
	// EventCanvasReset is emitted when the canvas was replaced and its
	// history dropped.
	EventCanvasReset
)

// String returns a human-readable representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventRestarted:
		return "restarted"
	case EventConfigReloaded:
		return "config_reloaded"
	case EventError:
		return "error"
	case EventCommitted:
		return "committed"
	case EventUndone:
		return "undone"
	case EventRedone:
		return "redone"
	case EventCanvasReset:
		return "canvas_reset"
	default:
		return "unknown"
	}
}
