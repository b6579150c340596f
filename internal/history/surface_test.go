package history

import (
	"errors"
	"testing"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
	"github.com/opd-ai/go-threadpaint/internal/command"
)

func TestNewSurfaceRejectsEmpty(t *testing.T) {
	if _, err := NewSurface(nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("NewSurface(nil) error = %v", err)
	}
}

func TestSurfaceFoldAndReplay(t *testing.T) {
	s, err := NewSurface(canvas.Blank(10, 10, white))
	if err != nil {
		t.Fatal(err)
	}

	a := point(red, 2, 2)
	b := point(blue, 7, 7)

	s.FoldIntoBaseline(a)
	if s.Canonical().RGBAAt(2, 2) != white {
		t.Error("folding touched the canonical bitmap")
	}

	s.ReplayFromBaseline([]command.Command{b})
	if s.Canonical().RGBAAt(2, 2) != red || s.Canonical().RGBAAt(7, 7) != blue {
		t.Error("replay did not start from the folded baseline")
	}

	s.ReplayFromBaseline(nil)
	if !canvas.Equal(s.Canonical(), s.Baseline()) {
		t.Error("empty replay should equal the baseline")
	}
}
