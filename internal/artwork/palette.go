package artwork

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/EdlinOrg/prominentcolor"

	"karolbroda.com/lrcplay/internal/colors"
)

// DefaultDominant is used when a cover has no opaque pixels.
var DefaultDominant = colors.RGB{R: 74, G: 144, B: 226}

const (
	// every 4th pixel is sampled
	sampleStride = 4
	// channels are bucketed to multiples of this
	quantStep   = 32
	alphaCutoff = 128

	gradientSteps = 20
)

// DominantColor returns the most frequent quantized color among the sampled
// opaque pixels. Ties go to the bucket seen first in row-major order.
func DominantColor(img image.Image) colors.RGB {
	if img == nil {
		return DefaultDominant
	}

	b := img.Bounds()
	width, total := b.Dx(), b.Dx()*b.Dy()

	counts := make(map[colors.RGB]int)
	var seen []colors.RGB

	for i := 0; i < total; i += sampleStride {
		px := color.NRGBAModel.Convert(img.At(b.Min.X+i%width, b.Min.Y+i/width)).(color.NRGBA)
		if px.A <= alphaCutoff {
			continue
		}

		key := colors.RGB{R: quantize(px.R), G: quantize(px.G), B: quantize(px.B)}
		if counts[key] == 0 {
			seen = append(seen, key)
		}
		counts[key]++
	}

	best, bestCount := DefaultDominant, 0
	for _, key := range seen {
		if counts[key] > bestCount {
			best, bestCount = key, counts[key]
		}
	}
	return best
}

func quantize(v uint8) uint8 {
	return v / quantStep * quantStep
}

// Ambient is the background wash behind the lyrics.
type Ambient struct {
	Stops []colors.RGB
}

// DefaultAmbient is shown with no cover loaded.
func DefaultAmbient() Ambient {
	return Ambient{Stops: []colors.RGB{colors.MustHex("#667EEA"), colors.MustHex("#764BA2")}}
}

// AmbientFrom spreads c into three stops: c, c+30 and c+60 per channel.
func AmbientFrom(c colors.RGB) Ambient {
	return Ambient{Stops: []colors.RGB{c, c.Lighten(30), c.Lighten(60)}}
}

// Gradient samples the ambient into steps hex colors, first stop to last.
func (a Ambient) Gradient(steps int) []string {
	switch {
	case len(a.Stops) == 0:
		return nil
	case len(a.Stops) == 1 || steps < 2:
		return []string{a.Stops[0].Hex()}
	}

	last := len(a.Stops) - 1
	out := make([]string, steps)
	for i := range out {
		t := float64(i) / float64(steps-1) * float64(last)
		seg := int(t)
		if seg >= last {
			seg = last - 1
		}
		out[i] = colors.Blend(a.Stops[seg], a.Stops[seg+1], t-float64(seg)).Hex()
	}
	return out
}

type Palette struct {
	Primary   string
	Secondary string
	Accent    string
	Dim       string
	Gradient  []string
	Ambient   Ambient
}

func DefaultPalette() *Palette {
	return &Palette{
		Primary:   "#8BA4E8",
		Secondary: "#E8A4C8",
		Accent:    "#B8A8E8",
		Dim:       "#6272A4",
		Gradient:  colors.GradientHex("#8BA4E8", "#E8A4C8", gradientSteps),
		Ambient:   DefaultAmbient(),
	}
}

type swatch struct {
	rgb        colors.RGB
	saturation float64
	brightness float64
}

func newSwatch(c colors.RGB) swatch {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	hi := math.Max(math.Max(r, g), b)
	lo := math.Min(math.Min(r, g), b)

	s := swatch{rgb: c, brightness: hi}
	if hi > 0 {
		s.saturation = (hi - lo) / hi
	}
	return s
}

// score favours saturated colors of medium brightness
func (s swatch) score() float64 {
	return s.saturation * (1 - math.Abs(s.brightness-0.6))
}

// boosted lifts dark colors and tames very bright ones so text stays legible.
func (s swatch) boosted() colors.RGB {
	c := s.rgb
	if s.brightness > 0 && s.brightness < 0.4 {
		c = c.Scale(math.Min(0.4/s.brightness, 2.5))
	}
	if s.brightness > 0.85 {
		avg := (float64(c.R) + float64(c.G) + float64(c.B)) / 3
		mute := func(v uint8) uint8 { return uint8(avg + (float64(v)-avg)*0.7) }
		c = colors.RGB{R: mute(c.R), G: mute(c.G), B: mute(c.B)}
	}
	return c
}

// ExtractPalette builds text colors from the cover's k-means clusters and the
// ambient wash from its dominant color.
func ExtractPalette(img image.Image) *Palette {
	if img == nil {
		return DefaultPalette()
	}

	ambient := AmbientFrom(DominantColor(img))

	clusters, err := prominentcolor.KmeansWithAll(5, img, prominentcolor.ArgumentDefault, prominentcolor.DefaultSize, nil)
	if err != nil || len(clusters) < 3 {
		p := DefaultPalette()
		p.Ambient = ambient
		return p
	}

	swatches := make([]swatch, len(clusters))
	for i, c := range clusters {
		swatches[i] = newSwatch(colors.RGB{R: uint8(c.Color.R), G: uint8(c.Color.G), B: uint8(c.Color.B)})
	}

	picked := pickSwatches(swatches)
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].brightness > picked[j].brightness
	})

	primary := picked[0].boosted()
	accent := picked[1].boosted()
	secondary := picked[2].boosted()

	start, end := smoothestPair(primary, secondary, accent)

	grad := colors.Gradient(start, end, gradientSteps)
	gradHex := make([]string, len(grad))
	for i, c := range grad {
		gradHex[i] = c.Hex()
	}

	return &Palette{
		Primary:   primary.Hex(),
		Secondary: secondary.Hex(),
		Accent:    accent.Hex(),
		Dim:       "#6272A4",
		Gradient:  gradHex,
		Ambient:   ambient,
	}
}

// pickSwatches chooses three distinct swatches with descending requirements.
func pickSwatches(swatches []swatch) []swatch {
	var picked []swatch
	used := func(c colors.RGB) bool {
		for _, p := range picked {
			if p.rgb == c {
				return true
			}
		}
		return false
	}

	best := -1
	for i, s := range swatches {
		if s.brightness > 0.3 && s.saturation > 0.2 && (best < 0 || s.score() > swatches[best].score()) {
			best = i
		}
	}
	if best < 0 {
		picked = append(picked, swatch{})
	} else {
		picked = append(picked, swatches[best])
	}

	for _, limits := range [][2]float64{{0.15, 0.3}, {0.1, 0.25}} {
		next := swatch{}
		for _, s := range swatches {
			if !used(s.rgb) && s.saturation > limits[0] && s.brightness > limits[1] {
				next = s
				break
			}
		}
		picked = append(picked, next)
	}
	return picked
}

// smoothestPair returns the ordered pair with the least rough gradient,
// preferring a brighter start when roughness is within 5.
func smoothestPair(a, b, c colors.RGB) (colors.RGB, colors.RGB) {
	type pair struct {
		start, end colors.RGB
		rough      float64
	}

	pairs := []pair{{start: a, end: b}, {start: a, end: c}, {start: b, end: a}, {start: b, end: c}, {start: c, end: a}, {start: c, end: b}}
	for i := range pairs {
		pairs[i].rough = colors.Roughness(pairs[i].start, pairs[i].end, gradientSteps)
	}

	best := 0
	for i := range pairs {
		if pairs[i].rough < pairs[best].rough {
			best = i
		}
	}
	for i := range pairs {
		if i != best && pairs[i].rough-pairs[best].rough < 5 &&
			pairs[i].start.Lightness() > pairs[best].start.Lightness() {
			best = i
		}
	}

	return pairs[best].start, pairs[best].end
}
