package session

import "karolbroda.com/lrcplay/internal/lyrics"

// Command is the closed set of inputs a Session accepts.
type Command interface {
	command()
}

// LoadLyrics replaces the lyric set with the parsed contents of Raw.
type LoadLyrics struct {
	Raw string
}

type PositionUpdate struct {
	Position float64
}

// Seek moves playback to Position and asks the media source to follow.
type Seek struct {
	Position float64
}

type SelectLine struct {
	Index int
}

type AdjustOffset struct {
	Delta float64
}

type ResetOffset struct{}

type ResetAll struct{}

// Ended reports that playback reached the end of the track.
type Ended struct{}

func (LoadLyrics) command()     {}
func (PositionUpdate) command() {}
func (Seek) command()           {}
func (SelectLine) command()     {}
func (AdjustOffset) command()   {}
func (ResetOffset) command()    {}
func (ResetAll) command()       {}
func (Ended) command()          {}

// Effect is a notification produced by a transition, for the shell to act on.
type Effect interface {
	effect()
}

// HighlightChanged carries the new active index (-1 for none).
type HighlightChanged struct {
	Index    int
	Previous int
}

type SeekRequested struct {
	Position float64
}

type OffsetChanged struct {
	Offset float64
}

type LyricsLoaded struct {
	Lines []lyrics.Line
}

// Cleared tells the shell to drop everything tied to the session,
// including transient media references.
type Cleared struct{}

func (HighlightChanged) effect() {}
func (SeekRequested) effect()    {}
func (OffsetChanged) effect()    {}
func (LyricsLoaded) effect()     {}
func (Cleared) effect()          {}
