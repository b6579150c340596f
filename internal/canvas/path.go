// Package canvas rasterizes paths, points and fills onto RGBA bitmaps.
//
// Bitmap coordinates address pixel centers: the point (2, 2) lies in the
// middle of pixel (2, 2). All drawing is antialiased and deterministic, so
// replaying the same operations on equal bitmaps yields equal pixels.
package canvas

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Point is a position in bitmap coordinates.
type Point struct {
	X, Y float32
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul returns p scaled by k.
func (p Point) Mul(k float32) Point { return Point{p.X * k, p.Y * k} }

// Len returns the distance of p from the origin.
func (p Point) Len() float32 { return math32.Hypot(p.X, p.Y) }

// String implements fmt.Stringer.
func (p Point) String() string { return fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y) }

// Verb identifies a path element.
type Verb uint8

const (
	// VerbMove starts a new subpath at one point.
	VerbMove Verb = iota
	// VerbLine draws a straight line to one point.
	VerbLine
	// VerbQuad draws a quadratic curve through a control point to an end point.
	VerbQuad
)

// Path is an ordered sequence of move, line and quadratic segments.
// The zero value is an empty path.
type Path struct {
	verbs []Verb
	pts   []Point
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float32) {
	p.verbs = append(p.verbs, VerbMove)
	p.pts = append(p.pts, Point{x, y})
}

// LineTo adds a line from the current point to (x, y).
// Without a current point it behaves like MoveTo.
func (p *Path) LineTo(x, y float32) {
	if len(p.verbs) == 0 {
		p.MoveTo(x, y)
		return
	}
	p.verbs = append(p.verbs, VerbLine)
	p.pts = append(p.pts, Point{x, y})
}

// QuadTo adds a quadratic curve from the current point via (cx, cy) to (x, y).
// Without a current point it behaves like MoveTo(x, y).
func (p *Path) QuadTo(cx, cy, x, y float32) {
	if len(p.verbs) == 0 {
		p.MoveTo(x, y)
		return
	}
	p.verbs = append(p.verbs, VerbQuad)
	p.pts = append(p.pts, Point{cx, cy}, Point{x, y})
}

// Reset empties the path, keeping its storage.
func (p *Path) Reset() {
	p.verbs = p.verbs[:0]
	p.pts = p.pts[:0]
}

// Empty reports whether the path has no elements.
func (p *Path) Empty() bool {
	return len(p.verbs) == 0
}

// Len returns the number of path elements.
func (p *Path) Len() int {
	return len(p.verbs)
}

// Current returns the end point of the last element.
func (p *Path) Current() (Point, bool) {
	if len(p.pts) == 0 {
		return Point{}, false
	}
	return p.pts[len(p.pts)-1], true
}

// Clone returns a deep copy that shares no storage with p.
func (p *Path) Clone() Path {
	return Path{
		verbs: append([]Verb(nil), p.verbs...),
		pts:   append([]Point(nil), p.pts...),
	}
}

// Map returns a copy of p with every point passed through f.
func (p *Path) Map(f func(Point) Point) Path {
	out := p.Clone()
	for i, pt := range out.pts {
		out.pts[i] = f(pt)
	}
	return out
}

// Bounds returns the smallest rectangle containing every point of the
// path, control points included. ok is false for an empty path.
func (p *Path) Bounds() (lo, hi Point, ok bool) {
	if len(p.pts) == 0 {
		return Point{}, Point{}, false
	}
	lo, hi = p.pts[0], p.pts[0]
	for _, pt := range p.pts[1:] {
		lo.X, lo.Y = math32.Min(lo.X, pt.X), math32.Min(lo.Y, pt.Y)
		hi.X, hi.Y = math32.Max(hi.X, pt.X), math32.Max(hi.Y, pt.Y)
	}
	return lo, hi, true
}

// flattenTolerance is the maximum distance in pixels between a curve and
// the polyline that replaces it.
const flattenTolerance = 0.2

// Flatten converts the path into polylines, one per subpath.
// Curves are subdivided so no point strays more than flattenTolerance from
// the true curve. Consecutive duplicate points are dropped.
func (p *Path) Flatten() [][]Point {
	var (
		out  [][]Point
		cur  []Point
		last Point
		i    int
	)
	push := func(pt Point) {
		if len(cur) > 0 && cur[len(cur)-1] == pt {
			return
		}
		cur = append(cur, pt)
	}
	for _, v := range p.verbs {
		switch v {
		case VerbMove:
			if len(cur) > 0 {
				out = append(out, cur)
			}
			cur = nil
			last = p.pts[i]
			push(last)
			i++
		case VerbLine:
			last = p.pts[i]
			push(last)
			i++
		case VerbQuad:
			ctrl, end := p.pts[i], p.pts[i+1]
			n := quadSteps(last, ctrl, end)
			for s := 1; s <= n; s++ {
				t := float32(s) / float32(n)
				u := 1 - t
				push(Point{
					X: u*u*last.X + 2*u*t*ctrl.X + t*t*end.X,
					Y: u*u*last.Y + 2*u*t*ctrl.Y + t*t*end.Y,
				})
			}
			last = end
			i += 2
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// quadSteps returns the number of line segments needed to approximate the
// quadratic a-b-c within flattenTolerance.
func quadSteps(a, b, c Point) int {
	dd := a.Sub(b.Mul(2)).Add(c).Len()
	n := int(math32.Ceil(math32.Sqrt(dd / (8 * flattenTolerance))))
	return min(max(n, 1), 64)
}
