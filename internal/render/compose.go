package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
	"github.com/opd-ai/go-threadpaint/internal/paint"
)

// Compositor draws the canvas bitmap onto frames. It caches the background
// pattern, so each goroutine composing frames needs its own Compositor.
type Compositor struct {
	bg       Background
	backdrop *image.RGBA
}

// NewCompositor returns a compositor painting bg behind the canvas.
func NewCompositor(bg Background) *Compositor {
	return &Compositor{bg: bg}
}

// SetBackground changes the background for later frames.
func (c *Compositor) SetBackground(bg Background) {
	if bg != c.bg {
		c.bg = bg
		c.backdrop = nil
	}
}

// Compose fills dst with the background and draws bitmap over it through
// m, the bitmap-to-screen affine map. A nil bitmap leaves only the
// background.
func (c *Compositor) Compose(dst, bitmap *image.RGBA, m f64.Aff3) {
	c.drawBackdrop(dst)
	if bitmap == nil {
		return
	}

	var interp draw.Transformer = draw.ApproxBiLinear
	if m[0] == float64(int(m[0])) && m[4] == float64(int(m[4])) {
		interp = draw.NearestNeighbor
	}
	interp.Transform(dst, m, bitmap, bitmap.Bounds(), draw.Over, nil)
}

// DrawPreview draws a stroke that is still being drawn. The path is in
// bitmap coordinates and toScreen maps it onto dst. Erasing strokes are
// previewed in the light background color since erasing the frame itself
// would punch through to nothing.
func (c *Compositor) DrawPreview(dst *image.RGBA, path *canvas.Path, a paint.Attrs, zoom float32, toScreen func(canvas.Point) canvas.Point) {
	if path == nil || path.Empty() {
		return
	}
	screen := path.Map(toScreen)
	a = a.WithWidth(a.Width * zoom)
	if a.Erasing() {
		a = a.WithColor(c.bg.Light)
	}
	canvas.StrokePath(dst, &screen, a)
}

func (c *Compositor) drawBackdrop(dst *image.RGBA) {
	b := dst.Bounds()
	if c.bg.Cell <= 0 {
		draw.Draw(dst, b, image.NewUniform(c.bg.Light), image.Point{}, draw.Src)
		return
	}
	if c.backdrop == nil || c.backdrop.Bounds() != b {
		c.backdrop = image.NewRGBA(b)
		drawCheckerboard(c.backdrop, c.bg.Cell, c.bg.Light, c.bg.Dark)
	}
	draw.Draw(dst, b, c.backdrop, b.Min, draw.Src)
}

func drawCheckerboard(dst *image.RGBA, size int, light, dark color.RGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.SetRGBA(x, y, light)
			} else {
				dst.SetRGBA(x, y, dark)
			}
		}
	}
}
