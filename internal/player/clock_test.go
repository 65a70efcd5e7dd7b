package player

import (
	"errors"
	"math"
	"testing"
	"time"
)

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) advance(seconds float64) {
	f.t = f.t.Add(time.Duration(seconds * float64(time.Second)))
}

func newTestClock(duration float64) (*Clock, *fakeTime) {
	ft := &fakeTime{t: time.Unix(1_700_000_000, 0)}
	return NewClock(WithNow(ft.now), WithDuration(duration)), ft
}

func drain(c *Clock) []EventData {
	var out []EventData
	for {
		select {
		case ev := <-c.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestClockAdvancesOnlyWhilePlaying(t *testing.T) {
	c, ft := newTestClock(0)

	ft.advance(5)
	if pos, _ := c.Position(); pos != 0 {
		t.Errorf("paused clock moved to %v", pos)
	}

	if err := c.Toggle(); err != nil {
		t.Fatal(err)
	}
	ft.advance(2.5)
	if pos, _ := c.Position(); !near(pos, 2.5) {
		t.Errorf("position = %v, want 2.5", pos)
	}

	c.Toggle()
	ft.advance(10)
	if pos, _ := c.Position(); !near(pos, 2.5) {
		t.Errorf("position after pause = %v, want 2.5", pos)
	}
	if c.Playing() {
		t.Error("clock should be paused")
	}
}

func TestClockSetPosition(t *testing.T) {
	c, ft := newTestClock(60)
	c.Toggle()

	tests := []struct {
		seek float64
		want float64
	}{
		{12.34, 12.34},
		{-4, 0},
		{90, 60},
	}

	for _, tt := range tests {
		if err := c.SetPosition(tt.seek); err != nil {
			t.Fatalf("SetPosition(%v): %v", tt.seek, err)
		}
		if pos, _ := c.Position(); !near(pos, tt.want) {
			t.Errorf("SetPosition(%v) -> %v, want %v", tt.seek, pos, tt.want)
		}
	}

	c.SetPosition(10)
	ft.advance(1)
	if pos, _ := c.Position(); !near(pos, 11) {
		t.Errorf("position = %v, want 11", pos)
	}

	if err := c.SetPosition(math.NaN()); err == nil {
		t.Error("expected error for NaN position")
	}

	var seeks int
	for _, ev := range drain(c) {
		if ev.Type == EventSeeked {
			seeks++
		}
	}
	if seeks != 4 {
		t.Errorf("expected 4 seeked events, got %d", seeks)
	}
}

func TestClockEndsOnce(t *testing.T) {
	c, ft := newTestClock(3)
	if err := c.Open("/music/song.ogg"); err != nil {
		t.Fatal(err)
	}
	drain(c)

	ft.advance(2)
	c.Poll()
	if evs := drain(c); len(evs) != 0 {
		t.Fatalf("unexpected events before end: %#v", evs)
	}

	ft.advance(2)
	c.Poll()
	c.Poll()
	evs := drain(c)
	if len(evs) != 1 || evs[0].Type != EventEnded {
		t.Fatalf("expected a single ended event, got %#v", evs)
	}
	if c.Playing() {
		t.Error("clock should stop at the end")
	}
	if pos, _ := c.Position(); pos != 3 {
		t.Errorf("position = %v, want 3", pos)
	}

	// resuming after the end restarts
	c.Toggle()
	ft.advance(1)
	if pos, _ := c.Position(); !near(pos, 1) {
		t.Errorf("position after restart = %v, want 1", pos)
	}
}

func TestClockWithoutDurationNeverEnds(t *testing.T) {
	c, ft := newTestClock(0)
	c.Toggle()
	ft.advance(1e6)
	c.Poll()
	for _, ev := range drain(c) {
		if ev.Type == EventEnded {
			t.Fatal("clock without duration should not end")
		}
	}
}

func TestClockOpen(t *testing.T) {
	c, _ := newTestClock(0)

	if _, err := c.CurrentTrack(); !errors.Is(err, ErrNoTrack) {
		t.Errorf("expected ErrNoTrack, got %v", err)
	}
	if err := c.Open(""); err == nil {
		t.Error("expected error for empty uri")
	}

	c.Open("/music/Artist - Song.flac")
	info, err := c.CurrentTrack()
	if err != nil {
		t.Fatal(err)
	}
	if info.Title != "Artist - Song" {
		t.Errorf("title = %q", info.Title)
	}
	if !c.Playing() {
		t.Error("open should start playback")
	}
	evs := drain(c)
	if len(evs) != 1 || evs[0].Type != EventTrackChanged {
		t.Errorf("expected track changed event, got %#v", evs)
	}
}

func TestFileURI(t *testing.T) {
	uri, err := FileURI("/music/a b.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if uri != "file:///music/a%20b.mp3" {
		t.Errorf("uri = %q", uri)
	}

	if uri, _ := FileURI("https://example.com/a.mp3"); uri != "https://example.com/a.mp3" {
		t.Errorf("uri with scheme changed: %q", uri)
	}
	if _, err := FileURI(""); err == nil {
		t.Error("expected error for empty path")
	}
}
