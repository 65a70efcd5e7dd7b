package ui

import (
	"image"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/lrcplay/internal/artwork"
	"karolbroda.com/lrcplay/internal/config"
	"karolbroda.com/lrcplay/internal/lyrics"
	"karolbroda.com/lrcplay/internal/player"
	"karolbroda.com/lrcplay/internal/resource"
	"karolbroda.com/lrcplay/internal/session"
	"karolbroda.com/lrcplay/internal/terminal"
	"karolbroda.com/lrcplay/internal/track"
)

type TickMsg time.Time

type PlayerEventMsg struct {
	Event player.EventData
}

type CoverLoadedMsg struct {
	Ref     string
	Image   image.Image
	Palette *artwork.Palette
	Err     error
}

type LyricsFetchedMsg struct {
	Track *track.Info
	Raw   string
	Err   error
}

type ModelConfig struct {
	Source   player.Source
	Lrclib   *lyrics.Client
	Registry *resource.Registry
	TermCaps *terminal.Capabilities

	SyncOffset     float64
	OffsetStep     float64
	FineOffsetStep float64
	HideHeader     bool

	// LyricsText is LRC text given up front. When set, lyrics are not
	// fetched on track changes.
	LyricsText   string
	LyricsSource string
	CoverRef     string
}

type Model struct {
	source   player.Source
	lrclib   *lyrics.Client
	registry *resource.Registry
	session  *session.Session
	termCaps *terminal.Capabilities

	offsetStep     float64
	fineOffsetStep float64
	fetchLyrics    bool
	fixedCover     bool
	coverRef       string

	track        *track.Info
	title        string
	palette      *artwork.Palette
	coverHandle  resource.Handle
	audioHandle  resource.Handle
	lyricsHandle resource.Handle

	polled       bool
	lastPosition float64
	playing      bool

	// cursor is the line picked with the keyboard, -1 while following playback
	cursor int

	editing    bool
	titleInput textinput.Model

	keys     keyMap
	help     help.Model
	progress progress.Model

	loadingLyrics bool
	lyricsFor     *track.Info
	loadingCover  bool
	err           error
	status        string
	statusUntil   time.Time

	hideHeader bool
	width      int
	height     int
	tickCount  int
	animState  AnimState
	quitting   bool
}

func NewModel(cfg ModelConfig) Model {
	registry := cfg.Registry
	if registry == nil {
		registry = resource.NewRegistry()
	}

	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 200

	m := Model{
		source:         cfg.Source,
		lrclib:         cfg.Lrclib,
		registry:       registry,
		session:        session.New(session.WithOffset(cfg.SyncOffset)),
		termCaps:       cfg.TermCaps,
		offsetStep:     positiveOr(cfg.OffsetStep, config.DefaultOffsetStep),
		fineOffsetStep: positiveOr(cfg.FineOffsetStep, config.DefaultFineOffsetStep),
		fetchLyrics:    cfg.LyricsText == "",
		fixedCover:     cfg.CoverRef != "",
		coverRef:       cfg.CoverRef,
		title:          track.Placeholder,
		palette:        artwork.DefaultPalette(),
		cursor:         -1,
		titleInput:     input,
		keys:           defaultKeyMap(),
		help:           help.New(),
		progress:       progress.New(progress.WithoutPercentage()),
		hideHeader:     cfg.HideHeader,
		loadingCover:   cfg.CoverRef != "",
	}

	if cfg.LyricsText != "" {
		m.lyricsHandle = m.registry.Register(resource.KindLyrics, cfg.LyricsSource, nil, nil)
		m.applyEffects(m.session.Dispatch(session.LoadLyrics{Raw: cfg.LyricsText}))
	}

	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(),
		m.listenForPlayerEvents(),
	}
	if m.coverRef != "" {
		cmds = append(cmds, loadCoverCmd(m.coverRef))
	}

	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(config.PollInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) listenForPlayerEvents() tea.Cmd {
	if m.source == nil {
		return nil
	}

	events := m.source.Events()
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return PlayerEventMsg{Event: event}
	}
}

func positiveOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

func (m Model) Session() *session.Session { return m.session }
func (m Model) Title() string             { return m.title }
func (m Model) Track() *track.Info        { return m.track }
func (m Model) Palette() *artwork.Palette { return m.palette }
func (m Model) Cursor() int               { return m.cursor }
func (m Model) Editing() bool             { return m.editing }
func (m Model) Playing() bool             { return m.playing }
func (m Model) HideHeader() bool          { return m.hideHeader }
func (m Model) Err() error                { return m.err }
func (m Model) Status() string            { return m.status }
func (m Model) IsQuitting() bool          { return m.quitting }

// coverImage resolves the cover through the registry. A released handle
// draws nothing.
func (m Model) coverImage() image.Image {
	if m.coverHandle.IsZero() {
		return nil
	}
	value, err := m.registry.Lookup(m.coverHandle)
	if err != nil {
		return nil
	}
	img, _ := value.(image.Image)
	return img
}

func (m *Model) Stop() {
	if m.source != nil {
		m.source.Stop()
	}
}
