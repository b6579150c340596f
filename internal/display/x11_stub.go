//go:build !linux

package display

import "image"

// X11Surface is unavailable on this platform.
type X11Surface struct{}

// NewX11Surface always returns ErrX11Unsupported.
func NewX11Surface(title string, w, h int) (*X11Surface, error) {
	return nil, ErrX11Unsupported
}

// Lock implements render.Surface.
func (s *X11Surface) Lock() (*image.RGBA, error) { return nil, ErrX11Unsupported }

// Present implements render.Surface.
func (s *X11Surface) Present(*image.RGBA) error { return ErrX11Unsupported }

// Close does nothing.
func (s *X11Surface) Close() {}
