package render

import (
	"image"
	"sync"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
)

// MemorySurface is an offscreen Surface. It keeps a copy of the last
// presented frame and counts presentations. It is used headless and in
// tests.
type MemorySurface struct {
	mu        sync.Mutex
	back      *image.RGBA
	last      *image.RGBA
	presented int
	onPresent func(*image.RGBA)
}

// NewMemorySurface returns a w by h offscreen surface.
func NewMemorySurface(w, h int) *MemorySurface {
	return &MemorySurface{back: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// OnPresent registers f to be called with every presented frame, on the
// loop goroutine. The frame must not be retained.
func (s *MemorySurface) OnPresent(f func(*image.RGBA)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPresent = f
}

// Lock implements Surface.
func (s *MemorySurface) Lock() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.back, nil
}

// Present implements Surface.
func (s *MemorySurface) Present(frame *image.RGBA) error {
	s.mu.Lock()
	if s.last == nil || s.last.Bounds() != frame.Bounds() {
		s.last = canvas.Clone(frame)
	} else {
		canvas.CopyInto(s.last, frame)
	}
	s.presented++
	f := s.onPresent
	s.mu.Unlock()

	if f != nil {
		f(frame)
	}
	return nil
}

// Resize replaces the back buffer with a w by h one.
func (s *MemorySurface) Resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.back = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Presented returns the number of frames presented so far.
func (s *MemorySurface) Presented() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presented
}

// LastFrame returns a copy of the most recently presented frame, or nil.
func (s *MemorySurface) LastFrame() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	return canvas.Clone(s.last)
}
