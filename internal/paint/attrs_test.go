package paint

import (
	"image/color"
	"testing"
)

func TestWithColorSelectsBlend(t *testing.T) {
	a := DefaultAttrs()
	if a.Erasing() {
		t.Fatal("default brush should not erase")
	}

	erase := a.WithColor(color.RGBA{})
	if !erase.Erasing() {
		t.Error("transparent color should select erase blend")
	}
	if a.Erasing() {
		t.Error("WithColor modified the receiver")
	}

	back := erase.WithColor(color.RGBA{G: 255, A: 255})
	if back.Blend != BlendNormal {
		t.Errorf("opaque color blend = %v, want normal", back.Blend)
	}
}

func TestWithWidth(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{3, 3},
		{0, 0},
		{-2, 0},
	}
	for _, tt := range tests {
		if got := DefaultAttrs().WithWidth(tt.in).Width; got != tt.want {
			t.Errorf("WithWidth(%v).Width = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseCapJoin(t *testing.T) {
	capTests := []struct {
		in      string
		want    Cap
		wantErr bool
	}{
		{"round", CapRound, false},
		{"SQUARE", CapSquare, false},
		{"butt", CapButt, false},
		{"", CapRound, false},
		{"triangle", CapRound, true},
	}
	for _, tt := range capTests {
		got, err := ParseCap(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseCap(%q) = %v, %v", tt.in, got, err)
		}
		if !tt.wantErr && tt.in != "" {
			if rt, _ := ParseCap(got.String()); rt != got {
				t.Errorf("cap %v does not round-trip through String", got)
			}
		}
	}

	joinTests := []struct {
		in      string
		want    Join
		wantErr bool
	}{
		{"round", JoinRound, false},
		{"mitre", JoinMiter, false},
		{"bevel", JoinBevel, false},
		{"spiky", JoinRound, true},
	}
	for _, tt := range joinTests {
		got, err := ParseJoin(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseJoin(%q) = %v, %v", tt.in, got, err)
		}
	}
}
