package canvas

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/opd-ai/go-threadpaint/internal/paint"
)

// StrokePath strokes p onto dst with the width, caps, joins, color and
// blend mode of a.
func StrokePath(dst *image.RGBA, p *Path, a paint.Attrs) {
	if p == nil || p.Empty() {
		return
	}
	fillOutline(dst, strokeOutline(p, a), a)
}

// DrawPoint marks the single position c on dst.
func DrawPoint(dst *image.RGBA, c Point, a paint.Attrs) {
	fillOutline(dst, pointOutline(c, a), a)
}

// Paint covers all of dst with a. In erase mode dst becomes transparent.
func Paint(dst *image.RGBA, a paint.Attrs) {
	if dst == nil {
		return
	}
	if a.Erasing() {
		draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
		return
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(a.Source()), image.Point{}, draw.Over)
}

// fillOutline rasterizes the union of o into a coverage mask limited to the
// outline's bounding box, then composites the mask onto dst.
func fillOutline(dst *image.RGBA, o outline, a paint.Attrs) {
	if dst == nil || len(o) == 0 {
		return
	}
	r := o.bounds().Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	mask := coverage(o, r)
	if a.Erasing() {
		eraseMask(dst, r, mask)
		return
	}
	draw.DrawMask(dst, r, image.NewUniform(a.Source()), image.Point{}, mask, image.Point{}, draw.Over)
}

// bounds returns the pixel rectangle touched by o, accounting for the
// half pixel shift from pixel-center to pixel-edge coordinates.
func (o outline) bounds() image.Rectangle {
	lo := Point{math32.MaxFloat32, math32.MaxFloat32}
	hi := Point{-math32.MaxFloat32, -math32.MaxFloat32}
	for _, poly := range o {
		for _, pt := range poly {
			lo.X, lo.Y = math32.Min(lo.X, pt.X), math32.Min(lo.Y, pt.Y)
			hi.X, hi.Y = math32.Max(hi.X, pt.X), math32.Max(hi.Y, pt.Y)
		}
	}
	return image.Rect(
		int(math32.Floor(lo.X+0.5)), int(math32.Floor(lo.Y+0.5)),
		int(math32.Ceil(hi.X+0.5)), int(math32.Ceil(hi.Y+0.5)),
	)
}

// coverage returns an alpha mask the size of r holding the antialiased
// coverage of o. Polygons are clipped to the mask grown by one pixel, which
// keeps far-off vertices inside the rasterizer's fixed-point range. Every
// polygon is fed with the same orientation so overlapping parts add up
// instead of cancelling.
func coverage(o outline, r image.Rectangle) *image.Alpha {
	w, h := r.Dx(), r.Dy()
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src

	off := Point{0.5 - float32(r.Min.X), 0.5 - float32(r.Min.Y)}
	lo, hi := Point{-1, -1}, Point{float32(w + 1), float32(h + 1)}
	for _, poly := range o {
		shifted, ok := shift(poly, off)
		if !ok {
			continue
		}
		clipped := clipPolygon(shifted, lo, hi)
		n := len(clipped)
		if n < 3 {
			continue
		}
		ccw := signedArea(clipped) < 0
		at := func(i int) Point {
			if ccw {
				return clipped[n-1-i]
			}
			return clipped[i]
		}
		first := at(0)
		z.MoveTo(first.X, first.Y)
		for i := 1; i < n; i++ {
			pt := at(i)
			z.LineTo(pt.X, pt.Y)
		}
		z.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// clipPolygon clips poly to the rectangle lo-hi, one edge at a time
// (Sutherland-Hodgman). The area inside the rectangle is unchanged and so
// is the winding direction.
func clipPolygon(poly []Point, lo, hi Point) []Point {
	edges := []struct {
		inside func(Point) bool
		cross  func(a, b Point) Point
	}{
		{func(p Point) bool { return p.X >= lo.X }, func(a, b Point) Point { return atX(a, b, lo.X) }},
		{func(p Point) bool { return p.X <= hi.X }, func(a, b Point) Point { return atX(a, b, hi.X) }},
		{func(p Point) bool { return p.Y >= lo.Y }, func(a, b Point) Point { return atY(a, b, lo.Y) }},
		{func(p Point) bool { return p.Y <= hi.Y }, func(a, b Point) Point { return atY(a, b, hi.Y) }},
	}
	out := poly
	for _, e := range edges {
		if len(out) == 0 {
			return nil
		}
		in := out
		out = make([]Point, 0, len(in)+4)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch cin, pin := e.inside(cur), e.inside(prev); {
			case cin && pin:
				out = append(out, cur)
			case cin:
				out = append(out, e.cross(prev, cur), cur)
			case pin:
				out = append(out, e.cross(prev, cur))
			}
			prev = cur
		}
	}
	return out
}

// shift translates poly by off. It reports false when a vertex is not finite.
func shift(poly []Point, off Point) ([]Point, bool) {
	out := make([]Point, len(poly))
	for i, pt := range poly {
		if math32.IsNaN(pt.X) || math32.IsNaN(pt.Y) || math32.IsInf(pt.X, 0) || math32.IsInf(pt.Y, 0) {
			return nil, false
		}
		out[i] = pt.Add(off)
	}
	return out, true
}

// atX returns the point of segment a-b on the vertical line x. The
// interpolation runs in float64 to keep precision for distant endpoints.
func atX(a, b Point, x float32) Point {
	t := (float64(x) - float64(a.X)) / (float64(b.X) - float64(a.X))
	return Point{X: x, Y: float32(float64(a.Y) + t*(float64(b.Y)-float64(a.Y)))}
}

// atY returns the point of segment a-b on the horizontal line y.
func atY(a, b Point, y float32) Point {
	t := (float64(y) - float64(a.Y)) / (float64(b.Y) - float64(a.Y))
	return Point{X: float32(float64(a.X) + t*(float64(b.X)-float64(a.X))), Y: y}
}

func signedArea(poly []Point) float32 {
	var s float32
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		s += p.X*q.Y - q.X*p.Y
	}
	return s / 2
}

// eraseMask scales every premultiplied channel of dst inside r by the
// inverse of the mask coverage.
func eraseMask(dst *image.RGBA, r image.Rectangle, mask *image.Alpha) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		mrow := mask.Pix[(y-r.Min.Y)*mask.Stride:]
		drow := dst.Pix[dst.PixOffset(r.Min.X, y):]
		for x := 0; x < r.Dx(); x++ {
			m := uint32(mrow[x])
			if m == 0 {
				continue
			}
			keep := 255 - m
			px := drow[4*x : 4*x+4 : 4*x+4]
			for i := range px {
				px[i] = uint8((uint32(px[i])*keep + 127) / 255)
			}
		}
	}
}

// Blank returns a w by h bitmap filled with c.
func Blank(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if c != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	}
	return img
}

// Clone copies src into a new bitmap whose bounds start at the origin.
func Clone(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// CopyInto overwrites dst with src. Both must have the same size.
func CopyInto(dst, src *image.RGBA) {
	if dst.Rect == src.Rect && dst.Stride == src.Stride {
		copy(dst.Pix, src.Pix)
		return
	}
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
}
