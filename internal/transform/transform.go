// Package transform maps between screen and bitmap coordinates for a
// zoomed and scrolled view.
//
// The view scales by Zoom around the surface center and then shifts by
// Scroll, measured in bitmap pixels:
//
//	screen = (bitmap + scroll - center) * zoom + center
package transform

import (
	"github.com/chewxy/math32"
	"golang.org/x/image/math/f64"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
)

// MinZoom is the smallest zoom level; bitmaps are never shown below their
// native resolution.
const MinZoom = 1

// Transform holds the zoom and scroll state of a view.
// The zero value is not ready; use New.
type Transform struct {
	zoom     float32
	scroll   canvas.Point
	surfaceW float32
	surfaceH float32
	bitmapW  float32
	bitmapH  float32
}

// New returns a transform at zoom 1 with no scroll.
func New() *Transform {
	return &Transform{zoom: MinZoom}
}

// SetSurfaceSize records the size of the presentation surface. Its center
// is the zoom pivot.
func (t *Transform) SetSurfaceSize(w, h int) {
	t.surfaceW, t.surfaceH = float32(w), float32(h)
	t.clamp()
}

// SetBitmapSize records the size of the bitmap being viewed.
func (t *Transform) SetBitmapSize(w, h int) {
	t.bitmapW, t.bitmapH = float32(w), float32(h)
	t.clamp()
}

// Pivot returns the zoom center in screen coordinates.
func (t *Transform) Pivot() canvas.Point {
	return canvas.Point{X: t.surfaceW / 2, Y: t.surfaceH / 2}
}

// Zoom returns the current zoom level.
func (t *Transform) Zoom() float32 { return t.zoom }

// Scroll returns the current scroll offset in bitmap pixels.
func (t *Transform) Scroll() canvas.Point { return t.scroll }

// ToCanvas maps a screen position to bitmap coordinates.
func (t *Transform) ToCanvas(sx, sy float32) canvas.Point {
	c := t.Pivot()
	return canvas.Point{
		X: (sx-c.X)/t.zoom + c.X - t.scroll.X,
		Y: (sy-c.Y)/t.zoom + c.Y - t.scroll.Y,
	}
}

// ToScreen maps a bitmap position to screen coordinates.
func (t *Transform) ToScreen(p canvas.Point) canvas.Point {
	c := t.Pivot()
	return canvas.Point{
		X: (p.X+t.scroll.X-c.X)*t.zoom + c.X,
		Y: (p.Y+t.scroll.Y-c.Y)*t.zoom + c.Y,
	}
}

// SetZoom sets the zoom level, raising values below MinZoom to MinZoom.
// NaN and infinite values are ignored. The scroll offset is clamped again
// for the new level.
func (t *Transform) SetZoom(scale float32) {
	if math32.IsNaN(scale) || math32.IsInf(scale, 0) {
		return
	}
	t.zoom = math32.Max(scale, MinZoom)
	t.clamp()
}

// ScrollBy moves the view by a screen-space distance.
func (t *Transform) ScrollBy(dx, dy float32) {
	t.scroll.X += dx / t.zoom
	t.scroll.Y += dy / t.zoom
	t.clamp()
}

// Reset returns to zoom 1 with no scroll.
func (t *Transform) Reset() {
	t.zoom = MinZoom
	t.scroll = canvas.Point{}
}

// clamp keeps the bitmap edges from moving inside the visible area on any
// axis where the zoomed bitmap is larger than the viewport. An axis where
// the bitmap fits has its scroll reset to zero.
func (t *Transform) clamp() {
	t.scroll.X = clampAxis(t.scroll.X, t.surfaceW, t.bitmapW, t.zoom)
	t.scroll.Y = clampAxis(t.scroll.Y, t.surfaceH, t.bitmapH, t.zoom)
}

func clampAxis(s, surface, bitmap, zoom float32) float32 {
	visible := surface / zoom
	if bitmap <= visible {
		return 0
	}
	c := surface / 2
	pivot := c - c/zoom
	lo := visible - bitmap + pivot
	return math32.Min(math32.Max(s, lo), pivot)
}

// Matrix returns the affine map from bitmap to screen coordinates in the
// row-major form used by golang.org/x/image/draw.
func (t *Transform) Matrix() f64.Aff3 {
	z := float64(t.zoom)
	c := t.Pivot()
	return f64.Aff3{
		z, 0, z*float64(t.scroll.X-c.X) + float64(c.X),
		0, z, z*float64(t.scroll.Y-c.Y) + float64(c.Y),
	}
}
