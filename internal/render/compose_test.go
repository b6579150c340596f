package render

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/math/f64"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
	"github.com/opd-ai/go-threadpaint/internal/paint"
)

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

func TestComposeBackground(t *testing.T) {
	bg := DefaultBackground()
	c := NewCompositor(bg)
	dst := image.NewRGBA(image.Rect(0, 0, 32, 32))

	c.Compose(dst, nil, identity)

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, bg.Light},
		{8, 0, bg.Dark},
		{0, 8, bg.Dark},
		{8, 8, bg.Light},
		{31, 31, bg.Light},
	}
	for _, tt := range tests {
		if got := dst.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestComposeFlatBackground(t *testing.T) {
	bg := Background{Light: color.RGBA{R: 10, G: 20, B: 30, A: 255}}
	c := NewCompositor(bg)
	dst := image.NewRGBA(image.Rect(0, 0, 16, 16))

	c.Compose(dst, nil, identity)

	if got := dst.RGBAAt(9, 9); got != bg.Light {
		t.Errorf("pixel = %v, want %v", got, bg.Light)
	}
}

func TestComposeBitmapIdentity(t *testing.T) {
	c := NewCompositor(DefaultBackground())
	red := color.RGBA{R: 255, A: 255}
	bitmap := canvas.Blank(10, 10, red)
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))

	c.Compose(dst, bitmap, identity)

	if got := dst.RGBAAt(5, 5); got != red {
		t.Errorf("inside pixel = %v, want %v", got, red)
	}
	if got := dst.RGBAAt(15, 15); got == red {
		t.Error("pixel outside the bitmap was painted")
	}
}

func TestComposeTransparentBitmapShowsBackground(t *testing.T) {
	bg := DefaultBackground()
	c := NewCompositor(bg)
	bitmap := canvas.Blank(16, 16, color.RGBA{})
	dst := image.NewRGBA(image.Rect(0, 0, 16, 16))

	c.Compose(dst, bitmap, identity)

	if got := dst.RGBAAt(0, 0); got != bg.Light {
		t.Errorf("pixel = %v, want background %v", got, bg.Light)
	}
}

func TestComposeZoomed(t *testing.T) {
	c := NewCompositor(DefaultBackground())
	blue := color.RGBA{B: 255, A: 255}
	bitmap := canvas.Blank(4, 4, color.RGBA{})
	bitmap.SetRGBA(1, 1, blue)
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))

	c.Compose(dst, bitmap, f64.Aff3{2, 0, 0, 0, 2, 0})

	for _, p := range []image.Point{{2, 2}, {3, 2}, {2, 3}, {3, 3}} {
		if got := dst.RGBAAt(p.X, p.Y); got != blue {
			t.Errorf("pixel %v = %v, want %v", p, got, blue)
		}
	}
	if got := dst.RGBAAt(4, 4); got == blue {
		t.Error("zoomed pixel leaked outside its 2x2 block")
	}
}

func TestSetBackgroundInvalidatesCache(t *testing.T) {
	c := NewCompositor(DefaultBackground())
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	c.Compose(dst, nil, identity)

	green := color.RGBA{G: 200, A: 255}
	c.SetBackground(Background{Light: green, Dark: green, Cell: 4})
	c.Compose(dst, nil, identity)

	if got := dst.RGBAAt(0, 0); got != green {
		t.Errorf("pixel = %v, want %v", got, green)
	}
}

func TestDrawPreview(t *testing.T) {
	bg := DefaultBackground()
	c := NewCompositor(bg)
	ident := func(p canvas.Point) canvas.Point { return p }

	var path canvas.Path
	path.MoveTo(2, 10)
	path.LineTo(18, 10)

	tests := []struct {
		name  string
		attrs paint.Attrs
		want  color.RGBA
	}{
		{"paint", paint.DefaultAttrs().WithColor(color.RGBA{R: 255, A: 255}).WithWidth(4), color.RGBA{R: 255, A: 255}},
		{"erase previews as background", paint.DefaultAttrs().WithColor(color.RGBA{}).WithWidth(4), bg.Light},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := canvas.Blank(20, 20, color.RGBA{A: 255})
			c.DrawPreview(dst, &path, tt.attrs, 1, ident)
			if got := dst.RGBAAt(10, 10); got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDrawPreviewScalesWidth(t *testing.T) {
	c := NewCompositor(DefaultBackground())
	red := color.RGBA{R: 255, A: 255}
	var path canvas.Path
	path.MoveTo(1, 5)
	path.LineTo(9, 5)

	toScreen := func(p canvas.Point) canvas.Point { return p.Mul(2) }
	dst := canvas.Blank(20, 20, color.RGBA{A: 255})
	c.DrawPreview(dst, &path, paint.DefaultAttrs().WithColor(red).WithWidth(2), 2, toScreen)

	if got := dst.RGBAAt(10, 11); got != red {
		t.Errorf("pixel inside zoomed stroke = %v, want %v", got, red)
	}
	if got := dst.RGBAAt(10, 15); got == red {
		t.Error("zoomed stroke is wider than width*zoom")
	}
}

func TestDrawPreviewEmptyPath(t *testing.T) {
	c := NewCompositor(DefaultBackground())
	dst := canvas.Blank(4, 4, color.RGBA{A: 255})
	before := canvas.Digest(dst)

	c.DrawPreview(dst, nil, paint.DefaultAttrs(), 1, nil)
	c.DrawPreview(dst, &canvas.Path{}, paint.DefaultAttrs(), 1, nil)

	if canvas.Digest(dst) != before {
		t.Error("empty preview changed the frame")
	}
}
