// Package history implements the bounded undo/redo log of drawing commands
// and the pair of bitmaps it maintains.
//
// The canonical bitmap always equals the baseline with every applied
// command drawn on top, in order. Commands evicted from the log are folded
// into the baseline, so eviction loses history but never pixels.
package history

import (
	"errors"
	"image"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
	"github.com/opd-ai/go-threadpaint/internal/command"
)

var (
	// ErrEmptyImage is returned when a surface would have zero width or height.
	ErrEmptyImage = errors.New("history: image has zero size")
	// ErrNoSurface is returned when committing before any image was set.
	ErrNoSurface = errors.New("history: no surface")
)

// Surface owns the baseline and canonical bitmaps.
type Surface struct {
	baseline  *image.RGBA
	canonical *image.RGBA
}

// NewSurface returns a surface whose baseline and canonical bitmaps are
// independent copies of img.
func NewSurface(img image.Image) (*Surface, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	base := canvas.Clone(img)
	return &Surface{
		baseline:  base,
		canonical: canvas.Clone(base),
	}, nil
}

// Apply draws cmd onto the canonical bitmap.
func (s *Surface) Apply(cmd command.Command) {
	cmd.Apply(s.canonical)
}

// ReplayFromBaseline resets the canonical bitmap to the baseline and applies
// cmds in order.
func (s *Surface) ReplayFromBaseline(cmds []command.Command) {
	canvas.CopyInto(s.canonical, s.baseline)
	for _, c := range cmds {
		c.Apply(s.canonical)
	}
}

// FoldIntoBaseline draws cmd onto the baseline permanently.
func (s *Surface) FoldIntoBaseline(cmd command.Command) {
	cmd.Apply(s.baseline)
}

// Canonical returns the live canonical bitmap.
func (s *Surface) Canonical() *image.RGBA { return s.canonical }

// Baseline returns the live baseline bitmap.
func (s *Surface) Baseline() *image.RGBA { return s.baseline }

// Bounds returns the bitmap bounds.
func (s *Surface) Bounds() image.Rectangle { return s.canonical.Bounds() }

// Release drops both bitmaps. The surface must not be used afterwards.
func (s *Surface) Release() {
	s.baseline = nil
	s.canonical = nil
}
