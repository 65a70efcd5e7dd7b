package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"

	"karolbroda.com/lrcplay/internal/artwork"
	"karolbroda.com/lrcplay/internal/colors"
	"karolbroda.com/lrcplay/internal/lyrics"
	"karolbroda.com/lrcplay/internal/terminal"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	errorColor    = "#FF6B6B"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width, height := m.screenSize()
	header := m.headerLines(width)
	footer := m.footerLines(width)
	bodyHeight := max(height-len(header)-len(footer), 1)

	var body []string
	if m.session.HasLyrics() {
		body = m.renderLyrics(width, bodyHeight)
	} else {
		body = m.renderEmpty(width, bodyHeight)
	}

	lines := make([]string, 0, height)
	lines = append(lines, header...)
	lines = append(lines, body...)
	for len(lines) < height-len(footer) {
		lines = append(lines, "")
	}
	lines = append(lines, footer...)
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func (m Model) screenSize() (int, int) {
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return width, height
}

func (m Model) currentPalette() *artwork.Palette {
	if m.palette == nil {
		return artwork.DefaultPalette()
	}
	return m.palette
}

// lyricsArea returns the first screen row of the lyric list and its height.
func (m Model) lyricsArea() (int, int) {
	width, height := m.screenSize()
	top := len(m.headerLines(width))
	return top, max(height-top-len(m.footerLines(width)), 1)
}

// lineAtRow maps a screen row to the lyric drawn there, or -1.
func (m Model) lineAtRow(y int) int {
	if !m.session.HasLyrics() {
		return -1
	}

	top, height := m.lyricsArea()
	row := y - top
	if row < 0 || row >= height {
		return -1
	}

	idx := m.animState.Line() + row - height/2
	if idx < 0 || idx >= len(m.session.Lines()) {
		return -1
	}
	return idx
}

func (m Model) ambientBar(width int) string {
	var sb strings.Builder
	for _, hex := range m.currentPalette().Ambient.Gradient(width) {
		sb.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render(" "))
	}
	return sb.String()
}

func (m Model) headerLines(width int) []string {
	lines := []string{m.ambientBar(width)}
	if m.hideHeader {
		return lines
	}

	lines = append(lines, "")

	_, height := m.screenSize()
	cover := m.coverImage()
	artWidth, artHeight := 12, 6
	if width < 80 {
		artWidth, artHeight = 8, 4
	}
	if width < 50 || height < 25 || cover == nil {
		artWidth, artHeight = 0, 0
	}

	info := m.infoLines(width - artWidth - 6)

	kitty := ""
	if artWidth > 0 && m.termCaps != nil && m.termCaps.SupportsKittyGraphics {
		kitty = terminal.EncodeImageForKitty(cover, artWidth, artHeight)
	}

	switch {
	case kitty != "":
		lines = append(lines, "  "+kitty)
		for i := 1; i < artHeight; i++ {
			lines = append(lines, "")
		}
		for _, l := range info {
			lines = append(lines, "  "+l)
		}

	default:
		art := artwork.RenderHalfBlockArt(cover, artWidth, artHeight)
		rows := max(len(info), len(art))
		for i := 0; i < rows; i++ {
			var sb strings.Builder
			if artWidth > 0 {
				sb.WriteString("  ")
				if i < len(art) {
					sb.WriteString(art[i])
				} else {
					sb.WriteString(strings.Repeat(" ", artWidth))
				}
				sb.WriteString("  ")
			} else {
				sb.WriteString("  ")
			}
			if i < len(info) {
				sb.WriteString(info[i])
			}
			lines = append(lines, sb.String())
		}
	}

	lines = append(lines, "", m.progressLine(width), "")
	return lines
}

func (m Model) infoLines(maxWidth int) []string {
	p := m.currentPalette()
	maxWidth = max(maxWidth, 20)

	var title string
	if m.editing {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)).Render("✎ ") + m.titleInput.View()
	} else {
		title = colors.RenderGradientText(truncate(m.title, maxWidth), p.Gradient, true)
	}
	lines := []string{title}

	if m.track != nil && m.track.Artist != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(p.Secondary)).Render(truncate(m.track.Artist, maxWidth)))
	}
	if m.track != nil && m.track.Album != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(p.Dim)).Render(truncate(m.track.Album, maxWidth)))
	}

	state := "⏸ paused"
	if m.playing {
		state = "▶ playing"
	}
	parts := []string{state, "offset " + lyrics.FormatOffset(m.session.Offset())}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(p.Dim)).Render(strings.Join(parts, " · ")))

	return lines
}

func (m Model) progressLine(width int) string {
	p := m.currentPalette()
	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Dim))
	position := m.session.Position()

	if m.track == nil || m.track.DurationSecs <= 0 {
		return "  " + timeStyle.Render(colors.FormatTime(position))
	}

	bar := m.progress
	bar.Width = max(width-20, 10)
	bar.FullColor = p.Primary
	bar.EmptyColor = p.Dim

	pct := math.Min(math.Max(position/m.track.DurationSecs, 0), 1)
	return fmt.Sprintf("  %s  %s  %s",
		timeStyle.Render(colors.FormatTime(position)),
		bar.ViewAs(pct),
		timeStyle.Render(colors.FormatTime(m.track.DurationSecs)))
}

func (m Model) footerLines(width int) []string {
	helpView := m.help.View(m.keys)
	lines := strings.Split(helpView, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return append(lines, m.ambientBar(width))
}

func (m Model) renderLyrics(width int, height int) []string {
	lines := m.session.Lines()
	active := m.session.ActiveIndex()
	focus := m.cursor
	if focus < 0 {
		focus = max(active, 0)
	}

	center := height / 2
	base := m.animState.Line()

	out := make([]string, height)
	for row := range out {
		idx := base + row - center
		if idx < 0 || idx >= len(lines) {
			continue
		}
		out[row] = m.renderLine(lines[idx].Text, idx, active, focus, width)
	}
	return out
}

func (m Model) renderLine(text string, idx, active, focus, width int) string {
	p := m.currentPalette()
	text = truncate(text, width-6)

	var rendered string
	switch {
	case idx == active:
		gradient := p.Gradient
		if glow := m.animState.Glow; glow > 0 {
			gradient = make([]string, len(p.Gradient))
			for i, hex := range p.Gradient {
				gradient[i] = colors.Lighten(hex, int(glow*40))
			}
		}
		rendered = colors.RenderGradientText(text, gradient, true)

	default:
		dist := math.Abs(float64(idx - focus))
		c := colors.Blend(colors.MustHex(p.Primary), colors.MustHex(p.Dim), math.Min(dist/4, 1))
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
		if active >= 0 && idx < active {
			style = style.Faint(true)
		}
		rendered = style.Render(text)
	}

	if idx == m.cursor {
		marker := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent))
		rendered = marker.Render("› ") + rendered + marker.Render(" ‹")
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, rendered)
}

func (m Model) renderEmpty(width int, height int) []string {
	p := m.currentPalette()

	var content []string

	banner := figure.NewFigure("lrcplay", "", true).Slicify()
	bannerWidth := 0
	for _, l := range banner {
		bannerWidth = max(bannerWidth, len(l))
	}
	if bannerWidth <= width && len(banner)+3 <= height {
		gradient := p.Ambient.Gradient(max(bannerWidth, 2))
		for _, l := range banner {
			content = append(content, colors.RenderGradientText(l, gradient, true))
		}
		content = append(content, "")
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Dim))
	switch {
	case m.loadingLyrics:
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		spinner := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Secondary)).Render(frames[m.tickCount%len(frames)])
		content = append(content, spinner+dim.Render(" loading lyrics"))
	case m.err != nil:
		content = append(content, lipgloss.NewStyle().Foreground(lipgloss.Color(errorColor)).Render(m.err.Error()))
	default:
		content = append(content, dim.Render("♪ no lyrics loaded"))
	}

	out := make([]string, 0, height)
	for i := 0; i < (height-len(content))/2; i++ {
		out = append(out, "")
	}
	for _, l := range content {
		out = append(out, lipgloss.PlaceHorizontal(width, lipgloss.Center, l))
	}
	return out
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 1 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
