package colorutil

import (
	"image/color"
	"math"
	"testing"
)

func TestRGBToLab(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		wantL   float64
	}{
		{"white", 255, 255, 255, 100},
		{"black", 0, 0, 0, 0},
		{"mid gray", 128, 128, 128, 53.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, a, b := RGBToLab(tt.r, tt.g, tt.b)
			if math.Abs(l-tt.wantL) > 1 {
				t.Errorf("L = %v, want %v", l, tt.wantL)
			}
			// Neutral grays carry no chroma.
			if math.Abs(a) > 0.5 || math.Abs(b) > 0.5 {
				t.Errorf("a,b = %v,%v, want near zero", a, b)
			}
		})
	}

	t.Run("red has positive a", func(t *testing.T) {
		_, a, _ := RGBToLab(255, 0, 0)
		if a < 40 {
			t.Errorf("a = %v, want strongly positive", a)
		}
	})
	t.Run("blue has negative b", func(t *testing.T) {
		_, _, b := RGBToLab(0, 0, 255)
		if b > -40 {
			t.Errorf("b = %v, want strongly negative", b)
		}
	})
}

func TestLabRoundTrip(t *testing.T) {
	colors := [][3]uint8{
		{255, 255, 255},
		{0, 0, 0},
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
		{200, 120, 40},
		{17, 93, 211},
	}

	for _, c := range colors {
		l, a, b := RGBToLab(c[0], c[1], c[2])
		r, g, bl := LabToRGB(l, a, b)
		if absDiff(r, c[0]) > 2 || absDiff(g, c[1]) > 2 || absDiff(bl, c[2]) > 2 {
			t.Errorf("round trip %v = %v,%v,%v", c, r, g, bl)
		}
	}
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

func TestHex(t *testing.T) {
	tests := []struct {
		c    color.RGBA
		want string
	}{
		{color.RGBA{255, 255, 255, 255}, "#ffffff"},
		{color.RGBA{0, 0, 0, 255}, "#000000"},
		{color.RGBA{255, 0, 10, 255}, "#ff000a"},
	}

	for _, tt := range tests {
		if got := Hex(tt.c); got != tt.want {
			t.Errorf("Hex(%v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestNearWhite(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want bool
	}{
		{"pure white", color.RGBA{255, 255, 255, 255}, true},
		{"just above threshold", color.RGBA{241, 241, 241, 255}, true},
		{"at threshold", color.RGBA{240, 240, 240, 255}, false},
		{"one low channel", color.RGBA{255, 255, 200, 255}, false},
		{"red", color.RGBA{255, 0, 0, 255}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearWhite(tt.c); got != tt.want {
				t.Errorf("NearWhite(%v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestDistLab(t *testing.T) {
	if got := DistLab(50, 10, -10, 50, 10, -10); got != 0 {
		t.Errorf("identical colors distance = %v", got)
	}
	if got := DistLab(0, 0, 0, 3, 4, 0); got != 25 {
		t.Errorf("DistLab = %v, want 25 (squared)", got)
	}
}
