// Package command defines the replayable drawing operations recorded in
// the undo history.
package command

import (
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
	"github.com/opd-ai/go-threadpaint/internal/paint"
)

// Kind identifies the variant of a Command.
type Kind uint8

const (
	// KindStroke strokes a path.
	KindStroke Kind = iota
	// KindPoint marks a single position.
	KindPoint
	// KindFill covers the whole canvas.
	KindFill
)

var kindNames = [...]string{
	KindStroke: "stroke",
	KindPoint:  "point",
	KindFill:   "fill",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Command is an immutable drawing operation together with the style it was
// created with. Only the fields of its Kind are meaningful.
//
// Applying a Command reads nothing but its own fields, so replaying it on
// equal bitmaps always produces equal pixels.
type Command struct {
	kind  Kind
	id    string
	attrs paint.Attrs
	path  canvas.Path
	pos   canvas.Point
}

// NewStroke returns a command stroking a copy of path.
func NewStroke(attrs paint.Attrs, path *canvas.Path) Command {
	c := Command{kind: KindStroke, id: uuid.NewString(), attrs: attrs}
	if path != nil {
		c.path = path.Clone()
	}
	return c
}

// NewPoint returns a command marking the position pos.
func NewPoint(attrs paint.Attrs, pos canvas.Point) Command {
	return Command{kind: KindPoint, id: uuid.NewString(), attrs: attrs, pos: pos}
}

// NewFill returns a command covering the whole canvas.
func NewFill(attrs paint.Attrs) Command {
	return Command{kind: KindFill, id: uuid.NewString(), attrs: attrs}
}

// Kind returns the variant of c.
func (c Command) Kind() Kind { return c.kind }

// ID returns the unique identifier assigned at construction.
// It labels log lines and events and never affects drawing.
func (c Command) ID() string { return c.id }

// Attrs returns the style captured by c.
func (c Command) Attrs() paint.Attrs { return c.attrs }

// Pos returns the position of a point command.
func (c Command) Pos() canvas.Point { return c.pos }

// Path returns a copy of the path of a stroke command.
func (c Command) Path() canvas.Path { return c.path.Clone() }

// Apply draws c onto dst. A nil or empty dst is left alone.
func (c Command) Apply(dst *image.RGBA) {
	if dst == nil || dst.Bounds().Empty() {
		return
	}
	switch c.kind {
	case KindStroke:
		canvas.StrokePath(dst, &c.path, c.attrs)
	case KindPoint:
		canvas.DrawPoint(dst, c.pos, c.attrs)
	case KindFill:
		canvas.Paint(dst, c.attrs)
	}
}

// String describes c for log output.
func (c Command) String() string {
	switch c.kind {
	case KindStroke:
		return fmt.Sprintf("stroke[%d elems %s]", c.path.Len(), c.attrs)
	case KindPoint:
		return fmt.Sprintf("point[%s %s]", c.pos, c.attrs)
	default:
		return fmt.Sprintf("%s[%s]", c.kind, c.attrs)
	}
}
