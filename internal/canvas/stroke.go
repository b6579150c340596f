package canvas

import (
	"github.com/chewxy/math32"

	"github.com/opd-ai/go-threadpaint/internal/paint"
)

// hairline is the half width used for strokes narrower than one pixel.
const hairline = 0.5

// outline collects closed polygons whose union is the painted area.
type outline [][]Point

func (o *outline) add(poly ...Point) {
	if len(poly) >= 3 {
		*o = append(*o, poly)
	}
}

// disc adds a polygonal circle of radius r around c.
func (o *outline) disc(c Point, r float32) {
	n := int(math32.Ceil(2 * math32.Pi * r / 1.5))
	n = min(max(n, 12), 128)
	poly := make([]Point, n)
	for i := range poly {
		s, k := math32.Sincos(2 * math32.Pi * float32(i) / float32(n))
		poly[i] = Point{c.X + r*k, c.Y + r*s}
	}
	o.add(poly...)
}

// square adds an axis aligned square of half side h around c.
func (o *outline) square(c Point, h float32) {
	o.add(
		Point{c.X - h, c.Y - h},
		Point{c.X + h, c.Y - h},
		Point{c.X + h, c.Y + h},
		Point{c.X - h, c.Y + h},
	)
}

// band adds the rectangle of half width hw around the segment a-b.
func (o *outline) band(a, b Point, hw float32) {
	n := normal(a, b).Mul(hw)
	o.add(a.Add(n), b.Add(n), b.Sub(n), a.Sub(n))
}

// normal returns the unit left normal of a-b, or zero for a degenerate segment.
func normal(a, b Point) Point {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return Point{}
	}
	return Point{-d.Y / l, d.X / l}
}

// unit returns the unit direction of a-b, or zero for a degenerate segment.
func unit(a, b Point) Point {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return Point{}
	}
	return d.Mul(1 / l)
}

// strokeOutline expands every subpath of p into polygons covering the
// stroke of the given style.
func strokeOutline(p *Path, a paint.Attrs) outline {
	hw := a.Width / 2
	if hw < hairline {
		hw = hairline
	}

	var o outline
	for _, line := range p.Flatten() {
		if len(line) == 1 {
			// A subpath without length still leaves a mark with round or
			// square caps.
			switch a.Cap {
			case paint.CapRound:
				o.disc(line[0], hw)
			case paint.CapSquare:
				o.square(line[0], hw)
			}
			continue
		}
		o.polyline(line, hw, a)
	}
	return o
}

func (o *outline) polyline(line []Point, hw float32, a paint.Attrs) {
	last := len(line) - 1
	for i := 0; i < last; i++ {
		o.band(line[i], line[i+1], hw)
	}
	for i := 1; i < last; i++ {
		o.join(line[i-1], line[i], line[i+1], hw, a.Join)
	}

	switch a.Cap {
	case paint.CapRound:
		o.disc(line[0], hw)
		o.disc(line[last], hw)
	case paint.CapSquare:
		head := line[0].Sub(unit(line[0], line[1]).Mul(hw))
		o.band(head, line[0], hw)
		tail := line[last].Add(unit(line[last-1], line[last]).Mul(hw))
		o.band(line[last], tail, hw)
	}
}

// join fills the wedge left open on the outer side of the corner at v.
func (o *outline) join(prev, v, next Point, hw float32, j paint.Join) {
	if j == paint.JoinRound {
		o.disc(v, hw)
		return
	}

	d1, d2 := unit(prev, v), unit(v, next)
	cross := d1.X*d2.Y - d1.Y*d2.X
	if cross == 0 {
		return
	}
	side := float32(1)
	if cross > 0 {
		side = -1
	}
	n1 := normal(prev, v).Mul(hw * side)
	n2 := normal(v, next).Mul(hw * side)

	if j == paint.JoinMiter {
		bis := n1.Add(n2)
		if l := bis.Len(); l > 0 {
			bis = bis.Mul(1 / l)
			cos := (bis.X*n1.X + bis.Y*n1.Y) / hw
			if cos > 0 && 1/cos <= paint.MiterLimit {
				o.add(v, v.Add(n1), v.Add(bis.Mul(hw/cos)), v.Add(n2))
				return
			}
		}
	}
	o.add(v, v.Add(n1), v.Add(n2))
}

// pointOutline returns the mark left by a single point: a disc for round
// caps and a square otherwise. Widths below one pixel cover one pixel.
func pointOutline(c Point, a paint.Attrs) outline {
	var o outline
	hw := a.Width / 2
	if hw < hairline {
		o.square(c, hairline)
		return o
	}
	if a.Cap == paint.CapRound {
		o.disc(c, hw)
	} else {
		o.square(c, hw)
	}
	return o
}
