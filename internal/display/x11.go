package display

import (
	"errors"
	"image"
)

// ErrX11Unsupported is returned by NewX11Surface on platforms without X11.
var ErrX11Unsupported = errors.New("x11 surface not supported on this platform")

// putImageHeader is the size in bytes of a PutImage request before its
// pixel data.
const putImageHeader = 24

// stripRows returns how many rows of a width-pixel wide 32bpp image fit
// in one request of at most maxRequestBytes. It is at least 1.
func stripRows(width, maxRequestBytes int) int {
	if width <= 0 {
		return 1
	}
	rows := (maxRequestBytes - putImageHeader) / (width * 4)
	if rows < 1 {
		return 1
	}
	return rows
}

// toBGRX packs rows [y0, y1) of src into dst as 32-bit little-endian
// BGRX pixels and returns the filled part of dst.
func toBGRX(dst []byte, src *image.RGBA, y0, y1 int) []byte {
	b := src.Bounds()
	w := b.Dx()
	n := w * (y1 - y0) * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	i := 0
	for y := y0; y < y1; y++ {
		row := src.Pix[(y-b.Min.Y)*src.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			dst[i] = p[2]
			dst[i+1] = p[1]
			dst[i+2] = p[0]
			dst[i+3] = 0
			i += 4
		}
	}
	return dst
}
