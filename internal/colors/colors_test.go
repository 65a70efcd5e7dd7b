package colors

import (
	"math"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"#667EEA", RGB{0x66, 0x7E, 0xEA}, false},
		{"764ba2", RGB{0x76, 0x4B, 0xA2}, false},
		{"#FFF", RGB{}, true},
		{"#GGGGGG", RGB{}, true},
		{"", RGB{}, true},
	}

	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if MustHex("nope") != (RGB{255, 255, 255}) {
		t.Error("MustHex should fall back to white")
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, hex := range []string{"#000000", "#FFFFFF", "#4A90E2", "#667EEA"} {
		if got := MustHex(hex).Hex(); got != hex {
			t.Errorf("round trip %s -> %s", hex, got)
		}
	}
}

func TestLightenSaturates(t *testing.T) {
	c := RGB{200, 240, 10}
	tests := []struct {
		delta int
		want  RGB
	}{
		{30, RGB{230, 255, 40}},
		{60, RGB{255, 255, 70}},
		{-20, RGB{180, 220, 0}},
	}
	for _, tt := range tests {
		if got := c.Lighten(tt.delta); got != tt.want {
			t.Errorf("Lighten(%d) = %v, want %v", tt.delta, got, tt.want)
		}
	}
}

func TestGradientEndpoints(t *testing.T) {
	start, end := MustHex("#667EEA"), MustHex("#764BA2")
	grad := Gradient(start, end, 10)

	if len(grad) != 10 {
		t.Fatalf("len = %d, want 10", len(grad))
	}
	if distance(grad[0], start) > 3 || distance(grad[9], end) > 3 {
		t.Errorf("endpoints drifted: %v .. %v", grad[0].Hex(), grad[9].Hex())
	}

	if got := Gradient(start, end, 0); len(got) != 2 {
		t.Errorf("steps below 2 should clamp, got %d", len(got))
	}
}

func TestLCHRoundTrip(t *testing.T) {
	for _, c := range []RGB{{0, 0, 0}, {255, 255, 255}, {74, 144, 226}, {200, 30, 90}} {
		l, ch, h := c.lch()
		if got := fromLCH(l, ch, h); distance(got, c) > 2 {
			t.Errorf("lch round trip %v -> %v", c, got)
		}
	}
}

func TestLightnessOrdering(t *testing.T) {
	if !(RGB{0, 0, 0}.Lightness() < RGB{128, 128, 128}.Lightness()) {
		t.Error("black should be darker than gray")
	}
	if l := (RGB{255, 255, 255}).Lightness(); math.Abs(l-100) > 0.5 {
		t.Errorf("white lightness = %v, want ~100", l)
	}
}

func TestRoughness(t *testing.T) {
	a := MustHex("#8BA4E8")
	if r := Roughness(a, a, 20); r != 0 {
		t.Errorf("same color roughness = %v, want 0", r)
	}
	near := Roughness(a, MustHex("#9BB4F8"), 20)
	far := Roughness(MustHex("#000000"), MustHex("#FFFFFF"), 20)
	if near >= far {
		t.Errorf("expected close colors to be smoother (%v >= %v)", near, far)
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{59.9, "0:59"},
		{61, "1:01"},
		{3600, "60:00"},
		{-3, "0:00"},
		{math.NaN(), "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
