package threadpaint

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Start on a running painter.
	ErrAlreadyRunning = errors.New("painter already running")
	// ErrNotRunning is returned by operations that need a running painter.
	ErrNotRunning = errors.New("painter not running")
	// ErrInvalidGeometry is returned when a surface size has a zero or
	// negative dimension.
	ErrInvalidGeometry = errors.New("invalid surface geometry")
	// ErrNoCanvas is returned when reading or saving before the first valid
	// surface size created a canvas.
	ErrNoCanvas = errors.New("no canvas")
	// ErrNoConfigLoader is returned when a painter has no configuration
	// source to reload from.
	ErrNoConfigLoader = errors.New("no config loader available")
	// ErrNoExportPath is returned by Save without a path when the
	// configuration sets none either.
	ErrNoExportPath = errors.New("no export path")
	// ErrBackendUnavailable is returned when the selected backend was not
	// compiled in.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// ErrorCategory groups runtime errors for health reporting.
type ErrorCategory int

const (
	// ErrorCategoryUnknown is the default category.
	ErrorCategoryUnknown ErrorCategory = iota
	// ErrorCategoryConfig is for configuration loading and validation.
	ErrorCategoryConfig
	// ErrorCategoryRender is for frame presentation.
	ErrorCategoryRender
	// ErrorCategoryWindow is for window events and backend setup.
	ErrorCategoryWindow
	// ErrorCategoryIO is for image loading and export.
	ErrorCategoryIO
)

// String returns a human-readable name for the error category.
func (c ErrorCategory) String() string {
	switch c {
	case ErrorCategoryConfig:
		return "config"
	case ErrorCategoryRender:
		return "render"
	case ErrorCategoryWindow:
		return "window"
	case ErrorCategoryIO:
		return "io"
	default:
		return "unknown"
	}
}

// OpError records the operation and category of a runtime error.
type OpError struct {
	Op       string
	Category ErrorCategory
	Err      error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: <nil>", e.Op)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OpError) Unwrap() error { return e.Err }

func opError(op string, cat ErrorCategory, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Category: cat, Err: err}
}

// CategoryOf returns the category of err, or ErrorCategoryUnknown when it
// carries none.
func CategoryOf(err error) ErrorCategory {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Category
	}
	return ErrorCategoryUnknown
}
