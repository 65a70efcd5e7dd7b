package ui

import "math"

// scroll easing takes this many ticks
const transitionTicks = 6

// AnimState eases the lyric list between focus lines and fades the glow on
// a newly highlighted line.
type AnimState struct {
	Progress float64
	Glow     float64
	Scroll   float64
	from     float64
	target   float64
}

// Jump moves to line without easing.
func (a *AnimState) Jump(line int) {
	a.Progress = 1
	a.Glow = 0
	a.Scroll = float64(line)
	a.from = a.Scroll
	a.target = a.Scroll
}

// Retarget starts easing from the current scroll position toward line.
func (a *AnimState) Retarget(line int, glow bool) {
	if float64(line) == a.target && a.Progress >= 1 {
		return
	}
	a.from = a.Scroll
	a.target = float64(line)
	a.Progress = 0
	if glow {
		a.Glow = 1
	}
}

func (a *AnimState) Step() {
	if a.Progress < 1 {
		a.Progress = math.Min(1, a.Progress+1.0/transitionTicks)
	}
	a.Scroll = lerp(a.from, a.target, easeOutCubic(a.Progress))

	if a.Glow > 0 {
		a.Glow *= 0.85
		if a.Glow < 0.01 {
			a.Glow = 0
		}
	}
}

// Line is the list index currently centered.
func (a *AnimState) Line() int {
	return int(math.Round(a.Scroll))
}

func easeOutCubic(t float64) float64 {
	if t >= 1 {
		return 1
	}
	if t <= 0 {
		return 0
	}
	return 1 - math.Pow(1-t, 3)
}

func lerp(a float64, b float64, t float64) float64 {
	return a + (b-a)*t
}
