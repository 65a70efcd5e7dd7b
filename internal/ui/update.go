package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/lrcplay/internal/artwork"
	"karolbroda.com/lrcplay/internal/logger"
	"karolbroda.com/lrcplay/internal/lyrics"
	"karolbroda.com/lrcplay/internal/player"
	"karolbroda.com/lrcplay/internal/resource"
	"karolbroda.com/lrcplay/internal/session"
	"karolbroda.com/lrcplay/internal/track"
)

var errNoSyncedLyrics = errors.New("no synced lyrics available")

const (
	statusDuration = 2 * time.Second
	fetchTimeout   = 30 * time.Second
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.handleEditKey(msg)
		}
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case PlayerEventMsg:
		return m.handlePlayerEvent(msg.Event)

	case CoverLoadedMsg:
		return m.handleCoverLoaded(msg)

	case LyricsFetchedMsg:
		return m.handleLyricsFetched(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	if m.editing {
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.PlayPause):
		m.togglePlayback()

	case key.Matches(msg, m.keys.OffsetUp):
		m.dispatch(session.AdjustOffset{Delta: m.fineOffsetStep})

	case key.Matches(msg, m.keys.OffsetDown):
		m.dispatch(session.AdjustOffset{Delta: -m.fineOffsetStep})

	case key.Matches(msg, m.keys.OffsetUpBig):
		m.dispatch(session.AdjustOffset{Delta: m.offsetStep})

	case key.Matches(msg, m.keys.OffsetDownBig):
		m.dispatch(session.AdjustOffset{Delta: -m.offsetStep})

	case key.Matches(msg, m.keys.ResetOffset):
		m.dispatch(session.ResetOffset{})

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.Seek):
		if m.cursor >= 0 {
			m.selectLine(m.cursor)
		}

	case key.Matches(msg, m.keys.Follow):
		m.followActive()

	case key.Matches(msg, m.keys.EditTitle):
		return m.startEditing()

	case key.Matches(msg, m.keys.ResetAll):
		m.dispatch(session.ResetAll{})

	case key.Matches(msg, m.keys.ToggleHeader):
		m.hideHeader = !m.hideHeader
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		m.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			break
		}
		if idx := m.lineAtRow(msg.Y); idx >= 0 {
			m.selectLine(idx)
		}
	}
	return m, nil
}

func (m Model) startEditing() (tea.Model, tea.Cmd) {
	if !track.CanEditTitle(m.title) {
		m.setStatus("no title to edit")
		return m, nil
	}

	m.editing = true
	m.titleInput.SetValue(m.title)
	m.titleInput.CursorEnd()
	return m, m.titleInput.Focus()
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if title, changed := track.EditTitle(m.title, m.titleInput.Value()); changed {
			m.title = title
			if m.track != nil {
				renamed := *m.track
				renamed.Title = title
				m.track = &renamed
			}
			logger.Info("title edited", "title", title)
		}
		m.stopEditing()
		return m, nil

	case tea.KeyEsc:
		m.stopEditing()
		return m, nil

	case tea.KeyCtrlC:
		m.quitting = true
		m.Stop()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func (m *Model) stopEditing() {
	m.editing = false
	m.titleInput.Blur()
	m.titleInput.SetValue("")
}

func (m *Model) dispatch(cmd session.Command) {
	m.applyEffects(m.session.Dispatch(cmd))
}

// applyEffects carries session notifications out to the source, the
// registry and the view.
func (m *Model) applyEffects(effects []session.Effect) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case session.HighlightChanged:
			if m.cursor < 0 {
				m.animState.Retarget(max(e.Index, 0), e.Index >= 0)
			}

		case session.SeekRequested:
			m.seekSource(e.Position)

		case session.OffsetChanged:
			m.setStatus("offset " + lyrics.FormatOffset(e.Offset))

		case session.LyricsLoaded:
			m.cursor = -1
			m.animState.Jump(0)

		case session.Cleared:
			m.clear()
		}
	}
}

func (m *Model) seekSource(position float64) {
	m.polled = true
	m.lastPosition = position

	if m.source == nil {
		return
	}
	if err := m.source.SetPosition(position); err != nil {
		logger.Warn("seek failed", "position", position, "err", err)
		m.setStatus("seek failed")
	}
}

func (m *Model) togglePlayback() {
	if m.source == nil {
		return
	}
	if err := m.source.Toggle(); err != nil {
		logger.Warn("toggle failed", "err", err)
		m.setStatus("play/pause failed")
		return
	}
	// the player reports its new state asynchronously
	m.playing = !m.playing
}

// clear returns the view to its empty state and releases every media
// reference. Playback is paused, not stopped.
func (m *Model) clear() {
	if err := m.registry.ReleaseAll(); err != nil {
		logger.Warn("failed to release resources", "err", err)
	}
	m.coverHandle = resource.Handle{}
	m.audioHandle = resource.Handle{}
	m.lyricsHandle = resource.Handle{}

	m.track = nil
	m.title = track.Placeholder
	m.palette = artwork.DefaultPalette()
	if m.lrclib != nil {
		m.lrclib.ClearCache()
	}
	m.fetchLyrics = true
	m.fixedCover = false
	m.loadingLyrics = false
	m.lyricsFor = nil
	m.loadingCover = false
	m.err = nil
	m.cursor = -1
	m.polled = false
	m.animState.Jump(0)
	if m.editing {
		m.stopEditing()
	}

	if m.source != nil && m.source.Playing() {
		if err := m.source.Toggle(); err != nil {
			logger.Warn("failed to pause on reset", "err", err)
		}
	}
	m.playing = false
}

func (m *Model) moveCursor(delta int) {
	n := len(m.session.Lines())
	if n == 0 {
		return
	}

	from := m.cursor
	if from < 0 {
		from = max(m.session.ActiveIndex(), 0)
	}
	m.cursor = min(max(from+delta, 0), n-1)
	m.animState.Retarget(m.cursor, false)
}

func (m *Model) selectLine(idx int) {
	m.cursor = -1
	m.dispatch(session.SelectLine{Index: idx})
	m.followActive()
}

func (m *Model) followActive() {
	m.cursor = -1
	m.animState.Retarget(max(m.session.ActiveIndex(), 0), false)
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusUntil = time.Now().Add(statusDuration)
}

func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.tickCount++

	if m.status != "" && now.After(m.statusUntil) {
		m.status = ""
	}

	if m.source != nil {
		if err := m.source.Poll(); err != nil && !errors.Is(err, player.ErrNoTrack) {
			logger.Debug("poll failed", "err", err)
		}

		// unchanged positions are not reported
		if pos, err := m.source.Position(); err == nil && (!m.polled || pos != m.lastPosition) {
			m.polled = true
			m.lastPosition = pos
			m.dispatch(session.PositionUpdate{Position: pos})
		}
	}

	m.animState.Step()

	return m, tickCmd()
}

func (m Model) handlePlayerEvent(event player.EventData) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.listenForPlayerEvents()}

	switch event.Type {
	case player.EventTrackChanged:
		cmds = append(cmds, m.trackChanged(event.Track)...)

	case player.EventSeeked:
		m.polled = true
		m.lastPosition = event.Position
		m.dispatch(session.PositionUpdate{Position: event.Position})
		if m.cursor < 0 {
			m.animState.Jump(max(m.session.ActiveIndex(), 0))
		}

	case player.EventPlaybackStateChanged:
		m.playing = event.Playing

	case player.EventEnded:
		m.playing = false
		m.dispatch(session.Ended{})
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) trackChanged(info *track.Info) []tea.Cmd {
	if info == nil {
		return nil
	}

	m.track = info
	m.title = displayTitle(info)
	m.cursor = -1

	ref := info.AudioPath
	if ref == "" {
		ref = info.TrackID
	}
	handle, err := m.registry.Replace(m.audioHandle, resource.KindAudio, ref, info, nil)
	if err != nil {
		logger.Warn("failed to release previous audio", "err", err)
	}
	m.audioHandle = handle
	logger.Debug("audio registered", "handle", handle.URI(), "source", ref)

	var cmds []tea.Cmd

	if !m.fixedCover {
		m.releaseCover()
		m.palette = artwork.DefaultPalette()
		if info.ArtworkURL != "" {
			m.loadingCover = true
			cmds = append(cmds, loadCoverCmd(info.ArtworkURL))
		}
	}

	if m.fetchLyrics && m.lrclib != nil && info.Artist != "" {
		m.dispatch(session.LoadLyrics{Raw: ""})
		m.loadingLyrics = true
		m.lyricsFor = info
		m.err = nil
		cmds = append(cmds, fetchLyricsCmd(m.lrclib, info))
	}

	logger.Info("track changed", "title", info.Title, "artist", info.Artist)
	return cmds
}

func displayTitle(info *track.Info) string {
	if strings.TrimSpace(info.Title) == "" {
		if title := track.TitleFromPath(info.AudioPath); title != "" {
			return title
		}
	}
	return info.DisplayTitle()
}

func (m *Model) releaseCover() {
	if m.coverHandle.IsZero() {
		return
	}
	if err := m.registry.Release(m.coverHandle); err != nil && !errors.Is(err, resource.ErrReleased) {
		logger.Warn("failed to release cover", "err", err)
	}
	m.coverHandle = resource.Handle{}
}

func (m Model) handleCoverLoaded(msg CoverLoadedMsg) (tea.Model, tea.Cmd) {
	// a cover for a track that is no longer current
	if !m.fixedCover && (m.track == nil || m.track.ArtworkURL != msg.Ref) {
		return m, nil
	}
	if m.fixedCover && msg.Ref != m.coverRef {
		return m, nil
	}

	m.loadingCover = false

	if msg.Err != nil || msg.Image == nil {
		logger.LogWithErr("cover unavailable", msg.Err, "ref", msg.Ref)
		return m, nil
	}

	handle, err := m.registry.Replace(m.coverHandle, resource.KindCover, msg.Ref, msg.Image, nil)
	if err != nil {
		logger.Warn("failed to release previous cover", "err", err)
	}
	m.coverHandle = handle
	logger.Debug("cover registered", "handle", handle.URI(), "source", msg.Ref)
	if msg.Palette != nil {
		m.palette = msg.Palette
	}

	return m, nil
}

func (m Model) handleLyricsFetched(msg LyricsFetchedMsg) (tea.Model, tea.Cmd) {
	if msg.Track == nil || msg.Track != m.lyricsFor {
		return m, nil
	}

	m.loadingLyrics = false

	if msg.Err != nil {
		logger.LogWithErr("lyrics unavailable", msg.Err, "title", msg.Track.Title)
		m.err = msg.Err
		return m, nil
	}

	source := fmt.Sprintf("lrclib:%s/%s", msg.Track.Artist, msg.Track.Title)
	handle, err := m.registry.Replace(m.lyricsHandle, resource.KindLyrics, source, nil, nil)
	if err != nil {
		logger.Warn("failed to release previous lyrics", "err", err)
	}
	m.lyricsHandle = handle

	m.dispatch(session.LoadLyrics{Raw: msg.Raw})
	if !m.session.HasLyrics() {
		m.err = errNoSyncedLyrics
	}

	return m, nil
}

func loadCoverCmd(ref string) tea.Cmd {
	return func() tea.Msg {
		img, err := artwork.Load(context.Background(), ref)
		if err != nil {
			return CoverLoadedMsg{Ref: ref, Err: err}
		}
		return CoverLoadedMsg{Ref: ref, Image: img, Palette: artwork.ExtractPalette(img)}
	}
}

func fetchLyricsCmd(client *lyrics.Client, info *track.Info) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		resp, err := client.Fetch(ctx, &lyrics.TrackParams{
			Title:        info.Title,
			Artist:       info.Artist,
			Album:        info.Album,
			DurationSecs: int64(info.DurationSecs),
		})
		if err != nil {
			return LyricsFetchedMsg{Track: info, Err: err}
		}
		if resp.SyncedLyrics == "" {
			return LyricsFetchedMsg{Track: info, Err: errNoSyncedLyrics}
		}

		return LyricsFetchedMsg{Track: info, Raw: resp.SyncedLyrics}
	}
}
