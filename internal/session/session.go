package session

import (
	"fmt"
	"math"

	"karolbroda.com/lrcplay/internal/logger"
	"karolbroda.com/lrcplay/internal/lyrics"
)

// ActiveIndex is -1 when no line is active
type State struct {
	Lines       []lyrics.Line
	Position    float64
	Offset      float64
	ActiveIndex int
}

func Initial() State {
	return State{
		Lines:       []lyrics.Line{},
		ActiveIndex: -1,
	}
}

func (s State) EffectiveTime() float64 {
	return s.Position + s.Offset
}

// Transition is pure, effects come back in the order they happened.
func Transition(s State, cmd Command) (State, []Effect) {
	switch c := cmd.(type) {
	case LoadLyrics:
		s.Lines = lyrics.Parse(c.Raw)
		// a freshly displayed set starts without a highlight
		s.ActiveIndex = -1
		return relocate(s, []Effect{LyricsLoaded{Lines: s.Lines}})

	case PositionUpdate:
		s.Position = clampPosition(c.Position)
		return relocate(s, nil)

	case Seek:
		s.Position = clampPosition(c.Position)
		return relocate(s, []Effect{SeekRequested{Position: s.Position}})

	case SelectLine:
		if c.Index < 0 || c.Index >= len(s.Lines) {
			return s, nil
		}
		s.Position = s.Lines[c.Index].Time
		return relocate(s, []Effect{SeekRequested{Position: s.Position}})

	case AdjustOffset:
		if !isFinite(c.Delta) {
			return s, nil
		}
		s.Offset += c.Delta
		return relocate(s, []Effect{OffsetChanged{Offset: s.Offset}})

	case ResetOffset:
		s.Offset = 0
		return relocate(s, []Effect{OffsetChanged{Offset: 0}})

	case ResetAll:
		previous := s.ActiveIndex
		return Initial(), []Effect{
			Cleared{},
			OffsetChanged{Offset: 0},
			HighlightChanged{Index: -1, Previous: previous},
		}

	case Ended:
		previous := s.ActiveIndex
		s.ActiveIndex = -1
		return s, []Effect{HighlightChanged{Index: -1, Previous: previous}}
	}

	return s, nil
}

// emits HighlightChanged only when the index moved
func relocate(s State, effects []Effect) (State, []Effect) {
	index := lyrics.Locate(s.Lines, s.Position, s.Offset)
	if index != s.ActiveIndex {
		effects = append(effects, HighlightChanged{Index: index, Previous: s.ActiveIndex})
		s.ActiveIndex = index
	}
	return s, effects
}

func clampPosition(position float64) float64 {
	if math.IsNaN(position) || position < 0 {
		return 0
	}
	return position
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type Handler func(Effect)

type Option func(*Session)

func WithHandler(h Handler) Option {
	return func(s *Session) {
		s.handler = h
	}
}

func WithOffset(offset float64) Option {
	return func(s *Session) {
		if isFinite(offset) {
			s.state.Offset = offset
		}
	}
}

// not safe for concurrent use
type Session struct {
	state   State
	handler Handler
}

func New(opts ...Option) *Session {
	s := &Session{state: Initial()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Dispatch(cmd Command) []Effect {
	next, effects := Transition(s.state, cmd)
	s.state = next

	if _, tick := cmd.(PositionUpdate); !tick || len(effects) > 0 {
		logger.Debug("session command", "command", fmt.Sprintf("%T", cmd), "active", next.ActiveIndex, "offset", next.Offset, "effects", len(effects))
	}

	if s.handler != nil {
		for _, effect := range effects {
			s.handler(effect)
		}
	}

	return effects
}

func (s *Session) State() State         { return s.state }
func (s *Session) Lines() []lyrics.Line { return s.state.Lines }
func (s *Session) ActiveIndex() int     { return s.state.ActiveIndex }
func (s *Session) Offset() float64      { return s.state.Offset }
func (s *Session) Position() float64    { return s.state.Position }
func (s *Session) HasLyrics() bool      { return len(s.state.Lines) > 0 }
