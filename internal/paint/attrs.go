// Package paint describes the drawing style captured by every command:
// color, stroke width, cap and join style, and blend mode.
package paint

import (
	"fmt"
	"image/color"
	"strings"
)

// Cap is the shape drawn at the ends of an open stroke and for single points.
type Cap int

const (
	// CapRound ends strokes with a half disc and draws points as discs.
	CapRound Cap = iota
	// CapSquare extends strokes by half the width and draws points as squares.
	CapSquare
	// CapButt ends strokes flush with their end points.
	CapButt
)

// String returns the configuration name of the cap.
func (c Cap) String() string {
	switch c {
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	case CapButt:
		return "butt"
	default:
		return "unknown"
	}
}

// ParseCap parses a cap name as used in configuration files.
func ParseCap(s string) (Cap, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "round", "":
		return CapRound, nil
	case "square":
		return CapSquare, nil
	case "butt", "flat":
		return CapButt, nil
	default:
		return CapRound, fmt.Errorf("unknown cap style: %q", s)
	}
}

// Join is the shape drawn where two stroke segments meet.
type Join int

const (
	// JoinRound rounds segment corners.
	JoinRound Join = iota
	// JoinMiter extends the outer edges until they meet, up to MiterLimit.
	JoinMiter
	// JoinBevel cuts the corner with a straight edge.
	JoinBevel
)

// MiterLimit is the ratio of miter length to half width beyond which
// a miter join falls back to a bevel.
const MiterLimit = 4

// String returns the configuration name of the join.
func (j Join) String() string {
	switch j {
	case JoinRound:
		return "round"
	case JoinMiter:
		return "miter"
	case JoinBevel:
		return "bevel"
	default:
		return "unknown"
	}
}

// ParseJoin parses a join name as used in configuration files.
func ParseJoin(s string) (Join, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "round", "":
		return JoinRound, nil
	case "miter", "mitre":
		return JoinMiter, nil
	case "bevel":
		return JoinBevel, nil
	default:
		return JoinRound, fmt.Errorf("unknown join style: %q", s)
	}
}

// Blend selects how a command combines with the pixels underneath it.
type Blend int

const (
	// BlendNormal composites the color over the destination.
	BlendNormal Blend = iota
	// BlendErase removes destination coverage where the command draws.
	BlendErase
)

// String returns the name of the blend mode.
func (b Blend) String() string {
	if b == BlendErase {
		return "erase"
	}
	return "normal"
}

// Default brush values.
const (
	// DefaultWidth is the stroke width of a fresh brush in bitmap pixels.
	DefaultWidth = 5
)

// DefaultColor is the color of a fresh brush.
var DefaultColor = color.RGBA{A: 255}

// Attrs is an immutable snapshot of a drawing style.
// It is a plain value; commands copy it when they are constructed.
type Attrs struct {
	Color color.RGBA // non-premultiplied
	Width float32
	Cap   Cap
	Join  Join
	Blend Blend
}

// DefaultAttrs returns the style of a fresh brush: opaque black,
// round caps and joins, normal blending.
func DefaultAttrs() Attrs {
	return Attrs{
		Color: DefaultColor,
		Width: DefaultWidth,
		Cap:   CapRound,
		Join:  JoinRound,
		Blend: BlendNormal,
	}
}

// WithColor returns a copy of a using c. A fully transparent color turns
// the brush into an eraser; any other color restores normal blending.
func (a Attrs) WithColor(c color.RGBA) Attrs {
	a.Color = c
	if c.A == 0 {
		a.Blend = BlendErase
	} else {
		a.Blend = BlendNormal
	}
	return a
}

// WithWidth returns a copy of a using width w. Negative widths become zero.
func (a Attrs) WithWidth(w float32) Attrs {
	if w < 0 || w != w {
		w = 0
	}
	a.Width = w
	return a
}

// WithCap returns a copy of a using cap c.
func (a Attrs) WithCap(c Cap) Attrs {
	a.Cap = c
	return a
}

// WithJoin returns a copy of a using join j.
func (a Attrs) WithJoin(j Join) Attrs {
	a.Join = j
	return a
}

// Source returns the brush color as a non-premultiplied color for compositing.
func (a Attrs) Source() color.NRGBA {
	return color.NRGBA(a.Color)
}

// Erasing reports whether commands drawn with a remove pixels.
func (a Attrs) Erasing() bool {
	return a.Blend == BlendErase
}

// String returns a compact description used in log output.
func (a Attrs) String() string {
	return fmt.Sprintf("%s w=%.1f cap=%s join=%s blend=%s", ToHex(a.Color), a.Width, a.Cap, a.Join, a.Blend)
}
