package player

import (
	"errors"
	"sync"
	"time"

	"karolbroda.com/lrcplay/internal/track"
)

// Clock is a silent software timeline. It advances with wall time while
// playing and stops at its duration, reporting EventEnded once per run.
// A zero duration never ends.
type Clock struct {
	mu       sync.Mutex
	now      func() time.Time
	base     float64
	anchor   time.Time
	playing  bool
	ended    bool
	duration float64
	info     *track.Info
	events   chan EventData
	stopOnce sync.Once
}

type ClockOption func(*Clock)

// WithNow replaces the wall clock, mostly for tests.
func WithNow(now func() time.Time) ClockOption {
	return func(c *Clock) { c.now = now }
}

func WithDuration(seconds float64) ClockOption {
	return func(c *Clock) {
		if seconds > 0 {
			c.duration = seconds
		}
	}
}

func NewClock(opts ...ClockOption) *Clock {
	c := &Clock{
		now:    time.Now,
		events: make(chan EventData, 16),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.anchor = c.now()
	return c
}

func (c *Clock) positionLocked() float64 {
	pos := c.base
	if c.playing {
		pos += c.now().Sub(c.anchor).Seconds()
	}
	if c.duration > 0 && pos > c.duration {
		pos = c.duration
	}
	return pos
}

func (c *Clock) Position() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked(), nil
}

func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func (c *Clock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// Open starts a new run for uri from zero.
func (c *Clock) Open(uri string) error {
	if uri == "" {
		return errors.New("empty uri")
	}

	info := &track.Info{
		Title:        track.TitleFromPath(uri),
		AudioPath:    uri,
		DurationSecs: c.Duration(),
	}

	c.mu.Lock()
	c.info = info
	c.base = 0
	c.anchor = c.now()
	c.playing = true
	c.ended = false
	c.mu.Unlock()

	emit(c.events, EventData{Type: EventTrackChanged, Track: info})
	return nil
}

func (c *Clock) CurrentTrack() (*track.Info, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info == nil {
		return nil, ErrNoTrack
	}
	info := *c.info
	return &info, nil
}

func (c *Clock) SetPosition(seconds float64) error {
	if seconds != seconds {
		return errors.New("position is not a number")
	}

	c.mu.Lock()
	if seconds < 0 {
		seconds = 0
	}
	if c.duration > 0 && seconds > c.duration {
		seconds = c.duration
	}
	c.base = seconds
	c.anchor = c.now()
	if c.duration == 0 || seconds < c.duration {
		c.ended = false
	}
	c.mu.Unlock()

	emit(c.events, EventData{Type: EventSeeked, Position: seconds})
	return nil
}

// Toggle pauses or resumes. Resuming after the end restarts from zero.
func (c *Clock) Toggle() error {
	c.mu.Lock()
	if c.playing {
		c.base = c.positionLocked()
		c.playing = false
	} else {
		if c.ended {
			c.base = 0
			c.ended = false
		}
		c.anchor = c.now()
		c.playing = true
	}
	playing := c.playing
	c.mu.Unlock()

	emit(c.events, EventData{Type: EventPlaybackStateChanged, Playing: playing})
	return nil
}

// Poll reports EventEnded when a playing clock reaches its duration.
func (c *Clock) Poll() error {
	c.mu.Lock()
	if !c.playing || c.ended || c.duration == 0 {
		c.mu.Unlock()
		return nil
	}

	pos := c.positionLocked()
	if pos < c.duration {
		c.mu.Unlock()
		return nil
	}

	c.base = c.duration
	c.playing = false
	c.ended = true
	c.mu.Unlock()

	emit(c.events, EventData{Type: EventEnded, Position: pos})
	return nil
}

func (c *Clock) Events() <-chan EventData {
	return c.events
}

func (c *Clock) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.base = c.positionLocked()
		c.playing = false
		c.mu.Unlock()
	})
}
