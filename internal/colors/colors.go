package colors

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type RGB struct {
	R, G, B uint8
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGB) Lighten(delta int) RGB {
	return RGB{
		R: clampChannel(int(c.R) + delta),
		G: clampChannel(int(c.G) + delta),
		B: clampChannel(int(c.B) + delta),
	}
}

func (c RGB) Scale(factor float64) RGB {
	return RGB{
		R: clampChannel(int(float64(c.R) * factor)),
		G: clampChannel(int(float64(c.G) * factor)),
		B: clampChannel(int(float64(c.B) * factor)),
	}
}

// L in LCH space, 0 to 100
func (c RGB) Lightness() float64 {
	l, _, _ := c.lch()
	return l
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// accepts "#RRGGBB" or "RRGGBB"
func ParseHex(hex string) (RGB, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", hex)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}

	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// invalid input yields white
func MustHex(hex string) RGB {
	c, err := ParseHex(hex)
	if err != nil {
		return RGB{255, 255, 255}
	}
	return c
}

func Lighten(hex string, delta int) string {
	return MustHex(hex).Lighten(delta).Hex()
}

func AdjustBrightness(hex string, factor float64) string {
	return MustHex(hex).Scale(factor).Hex()
}

// interpolates in LCH along the shorter hue arc. distant endpoints are eased.
func Gradient(start, end RGB, steps int) []RGB {
	if steps < 2 {
		steps = 2
	}

	l1, c1, h1 := start.lch()
	l2, c2, h2 := end.lch()
	dh := hueDelta(h1, h2)

	ease := math.Abs(c2-c1) > 30 || math.Abs(dh) > 60 || math.Abs(l2-l1) > 30

	out := make([]RGB, steps)
	for i := range out {
		t := float64(i) / float64(steps-1)
		if ease {
			t = smoothStep(smoothStep(t))
		}
		out[i] = fromLCH(l1+t*(l2-l1), c1+t*(c2-c1), wrapHue(h1+t*dh))
	}
	return out
}

func GradientHex(startHex, endHex string, steps int) []string {
	grad := Gradient(MustHex(startHex), MustHex(endHex), steps)
	out := make([]string, len(grad))
	for i, c := range grad {
		out[i] = c.Hex()
	}
	return out
}

// t=0 is a, t=1 is b
func Blend(a, b RGB, t float64) RGB {
	l1, c1, h1 := a.lch()
	l2, c2, h2 := b.lch()
	return fromLCH(l1+t*(l2-l1), c1+t*(c2-c1), wrapHue(h1+t*hueDelta(h1, h2)))
}

// largest redmean step between gradient neighbours, lower is smoother
func Roughness(start, end RGB, steps int) float64 {
	grad := Gradient(start, end, steps)
	worst := 0.0
	for i := 1; i < len(grad); i++ {
		if d := distance(grad[i-1], grad[i]); d > worst {
			worst = d
		}
	}
	return worst
}

func distance(a, b RGB) float64 {
	rmean := (float64(a.R) + float64(b.R)) / 2
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt((2+rmean/256)*dr*dr + 4*dg*dg + (2+(255-rmean)/256)*db*db)
}

func hueDelta(from, to float64) float64 {
	d := to - from
	switch {
	case d > 180:
		d -= 360
	case d < -180:
		d += 360
	}
	return d
}

func wrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func smoothStep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// D65 white point
var white = [3]float64{0.95047, 1.0, 1.08883}

func (c RGB) lch() (l, chroma, hue float64) {
	r := toLinear(float64(c.R) / 255)
	g := toLinear(float64(c.G) / 255)
	b := toLinear(float64(c.B) / 255)

	x := labF((r*0.4124564 + g*0.3575761 + b*0.1804375) / white[0])
	y := labF((r*0.2126729 + g*0.7151522 + b*0.0721750) / white[1])
	z := labF((r*0.0193339 + g*0.1191920 + b*0.9503041) / white[2])

	l = 116*y - 16
	a, bb := 500*(x-y), 200*(y-z)
	chroma = math.Hypot(a, bb)
	hue = wrapHue(math.Atan2(bb, a) * 180 / math.Pi)
	return l, chroma, hue
}

func fromLCH(l, chroma, hue float64) RGB {
	rad := hue * math.Pi / 180
	a, bb := chroma*math.Cos(rad), chroma*math.Sin(rad)

	fy := (l + 16) / 116
	x := labFInv(a/500+fy) * white[0]
	y := labFInv(fy) * white[1]
	z := labFInv(fy-bb/200) * white[2]

	r := fromLinear(x*3.2404542 - y*1.5371385 - z*0.4985314)
	g := fromLinear(-x*0.9692660 + y*1.8760108 + z*0.0415560)
	b := fromLinear(x*0.0556434 - y*0.2040259 + z*1.0572252)

	return RGB{
		R: clampChannel(int(r*255 + 0.5)),
		G: clampChannel(int(g*255 + 0.5)),
		B: clampChannel(int(b*255 + 0.5)),
	}
}

func toLinear(v float64) float64 {
	if v > 0.04045 {
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return v / 12.92
}

func fromLinear(v float64) float64 {
	if v > 0.0031308 {
		return 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return 12.92 * v
}

func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116
}

func labFInv(t float64) float64 {
	if t3 := t * t * t; t3 > 0.008856 {
		return t3
	}
	return (t - 16.0/116) / 7.787
}

func RenderGradientText(text string, gradient []string, bold bool) string {
	runes := []rune(text)
	if len(runes) == 0 || len(gradient) == 0 {
		return text
	}

	var sb strings.Builder
	for i, r := range runes {
		idx := 0
		if len(runes) > 1 {
			idx = i * (len(gradient) - 1) / (len(runes) - 1)
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradient[idx])).Bold(bold)
		sb.WriteString(style.Render(string(r)))
	}
	return sb.String()
}

func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
