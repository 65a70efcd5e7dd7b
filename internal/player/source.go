package player

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"karolbroda.com/lrcplay/internal/track"
)

var ErrNoTrack = errors.New("no track playing")

type Event int

const (
	EventTrackChanged Event = iota
	EventSeeked
	EventPlaybackStateChanged
	EventEnded
)

func (e Event) String() string {
	switch e {
	case EventTrackChanged:
		return "track-changed"
	case EventSeeked:
		return "seeked"
	case EventPlaybackStateChanged:
		return "playback-state-changed"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

type EventData struct {
	Type     Event
	Track    *track.Info
	Position float64
	Playing  bool
}

// positions are seconds
type Source interface {
	Position() (float64, error)
	SetPosition(seconds float64) error
	Toggle() error
	Open(uri string) error
	CurrentTrack() (*track.Info, error)
	Playing() bool
	Poll() error
	Events() <-chan EventData
	Stop()
}

// values that already carry a scheme are returned as is
func FileURI(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if strings.Contains(path, "://") {
		return path, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

var (
	_ Source = (*Service)(nil)
	_ Source = (*Clock)(nil)
)

func emit(ch chan EventData, event EventData) {
	select {
	case ch <- event:
	default:
	}
}
