package track

import (
	"path/filepath"
	"strings"
)

// Placeholder is shown before any audio is chosen and cannot be edited.
const Placeholder = "no track loaded"

type Info struct {
	Title        string
	Artist       string
	Album        string
	DurationSecs float64
	ArtworkURL   string
	TrackID      string
	AudioPath    string
}

func (t *Info) IsValid() bool {
	if t == nil {
		return false
	}
	return t.Title != "" && t.Artist != ""
}

func (t *Info) IsSameTrack(other *Info) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.TrackID != "" && other.TrackID != "" {
		return t.TrackID == other.TrackID
	}
	return t.Title == other.Title && t.Artist == other.Artist
}

// DisplayTitle never returns an empty string.
func (t *Info) DisplayTitle() string {
	if t == nil || strings.TrimSpace(t.Title) == "" {
		return Placeholder
	}
	return t.Title
}

// TitleFromPath derives a title from an audio file name by dropping the
// directory and the final extension.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// EditTitle applies an inline edit. Blank input keeps the current title.
// The placeholder is never editable; ok reports whether the title changed.
func EditTitle(current string, input string) (string, bool) {
	if !CanEditTitle(current) {
		return current, false
	}
	next := strings.TrimSpace(input)
	if next == "" || next == current {
		return current, false
	}
	return next, true
}

func CanEditTitle(current string) bool {
	return current != "" && current != Placeholder
}
