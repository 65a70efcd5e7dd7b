package session

import (
	"math"
	"reflect"
	"testing"
)

const sample = "[00:01.50]Hello\n[00:00.25]World\njunk line\n"

func loaded(t *testing.T) *Session {
	t.Helper()
	s := New()
	s.Dispatch(LoadLyrics{Raw: sample})
	return s
}

func highlights(effects []Effect) []int {
	var out []int
	for _, e := range effects {
		if h, ok := e.(HighlightChanged); ok {
			out = append(out, h.Index)
		}
	}
	return out
}

func TestLoadLyricsEmitsLoaded(t *testing.T) {
	s := New()
	effects := s.Dispatch(LoadLyrics{Raw: sample})

	if len(effects) != 1 {
		t.Fatalf("expected only LyricsLoaded at position 0, got %#v", effects)
	}
	ll, ok := effects[0].(LyricsLoaded)
	if !ok || len(ll.Lines) != 2 {
		t.Fatalf("unexpected effect %#v", effects[0])
	}
	if s.ActiveIndex() != -1 {
		t.Errorf("active index = %d, want -1", s.ActiveIndex())
	}
}

func TestLoadLyricsReplacesAndRelocates(t *testing.T) {
	s := loaded(t)
	s.Dispatch(PositionUpdate{Position: 2})
	if s.ActiveIndex() != 1 {
		t.Fatalf("active index = %d, want 1", s.ActiveIndex())
	}

	effects := s.Dispatch(LoadLyrics{Raw: "[00:00.10]only"})
	if got := highlights(effects); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("highlights = %v, want [0]", got)
	}
	if len(s.Lines()) != 1 {
		t.Errorf("lines should be replaced, got %d", len(s.Lines()))
	}

	effects = s.Dispatch(LoadLyrics{Raw: "nothing here"})
	if s.HasLyrics() || s.ActiveIndex() != -1 {
		t.Errorf("empty load should leave no lyrics and index -1")
	}
	if got := highlights(effects); len(got) != 0 {
		t.Errorf("empty load from fresh baseline should not highlight, got %v", got)
	}
}

func TestPositionUpdatesNotifyOnlyOnChange(t *testing.T) {
	s := loaded(t)

	tests := []struct {
		position float64
		want     []int
	}{
		{0.1, nil},
		{0.25, []int{0}},
		{0.5, nil},
		{1.0, nil},
		{1.5, []int{1}},
		{1.6, nil},
		{0.0, []int{-1}},
		{0.0, nil},
	}

	for _, tt := range tests {
		got := highlights(s.Dispatch(PositionUpdate{Position: tt.position}))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("position %v: highlights = %v, want %v", tt.position, got, tt.want)
		}
	}
}

func TestOffsetRelocatesImmediately(t *testing.T) {
	s := loaded(t)
	s.Dispatch(PositionUpdate{Position: 1.5})

	effects := s.Dispatch(AdjustOffset{Delta: -0.6})
	if got := highlights(effects); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("highlights = %v, want [0]", got)
	}
	if oc, ok := effects[0].(OffsetChanged); !ok || math.Abs(oc.Offset+0.6) > 1e-9 {
		t.Errorf("expected OffsetChanged(-0.6) first, got %#v", effects[0])
	}

	effects = s.Dispatch(ResetOffset{})
	if got := highlights(effects); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("highlights after reset = %v, want [1]", got)
	}
}

func TestResetOffsetMatchesZero(t *testing.T) {
	s := loaded(t)
	for _, d := range []float64{0.5, 0.5, -0.1, 3, -7.25, 0.1} {
		s.Dispatch(AdjustOffset{Delta: d})
	}
	s.Dispatch(ResetOffset{})

	if s.Offset() != 0 {
		t.Fatalf("offset = %v, want 0", s.Offset())
	}

	for _, pos := range []float64{0, 0.25, 1, 1.5, 9} {
		s.Dispatch(PositionUpdate{Position: pos})
		ref := New()
		ref.Dispatch(LoadLyrics{Raw: sample})
		ref.Dispatch(PositionUpdate{Position: pos})
		if s.ActiveIndex() != ref.ActiveIndex() {
			t.Errorf("position %v: index %d, zero-offset index %d", pos, s.ActiveIndex(), ref.ActiveIndex())
		}
	}
}

func TestAdjustOffsetIgnoresNonFinite(t *testing.T) {
	s := loaded(t)
	for _, d := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if effects := s.Dispatch(AdjustOffset{Delta: d}); len(effects) != 0 {
			t.Errorf("delta %v should be ignored, got %#v", d, effects)
		}
	}
	if s.Offset() != 0 {
		t.Errorf("offset = %v, want 0", s.Offset())
	}
}

func TestEndedAlwaysNotifies(t *testing.T) {
	s := loaded(t)
	s.Dispatch(PositionUpdate{Position: 5})

	effects := s.Dispatch(Ended{})
	if got := highlights(effects); !reflect.DeepEqual(got, []int{-1}) {
		t.Errorf("highlights = %v, want [-1]", got)
	}

	effects = s.Dispatch(Ended{})
	if got := highlights(effects); !reflect.DeepEqual(got, []int{-1}) {
		t.Errorf("second Ended highlights = %v, want [-1]", got)
	}
}

func TestResetAllAlwaysNotifies(t *testing.T) {
	s := New()

	effects := s.Dispatch(ResetAll{})
	if got := highlights(effects); !reflect.DeepEqual(got, []int{-1}) {
		t.Errorf("reset on idle session: highlights = %v, want [-1]", got)
	}
	if _, ok := effects[0].(Cleared); !ok {
		t.Errorf("expected Cleared first, got %#v", effects[0])
	}

	s = loaded(t)
	s.Dispatch(AdjustOffset{Delta: 2})
	s.Dispatch(PositionUpdate{Position: 1})
	s.Dispatch(ResetAll{})

	st := s.State()
	if len(st.Lines) != 0 || st.Offset != 0 || st.Position != 0 || st.ActiveIndex != -1 {
		t.Errorf("state not reset: %#v", st)
	}
}

func TestSeekRequestsAndRelocates(t *testing.T) {
	s := loaded(t)

	effects := s.Dispatch(Seek{Position: 1.5})
	if len(effects) != 2 {
		t.Fatalf("expected seek + highlight, got %#v", effects)
	}
	if sr, ok := effects[0].(SeekRequested); !ok || sr.Position != 1.5 {
		t.Errorf("unexpected first effect %#v", effects[0])
	}
	if s.ActiveIndex() != 1 {
		t.Errorf("active index = %d, want 1", s.ActiveIndex())
	}
}

func TestSelectLine(t *testing.T) {
	s := loaded(t)

	effects := s.Dispatch(SelectLine{Index: 1})
	if sr, ok := effects[0].(SeekRequested); !ok || sr.Position != 1.5 {
		t.Fatalf("expected seek to 1.5, got %#v", effects)
	}
	if s.ActiveIndex() != 1 {
		t.Errorf("active index = %d, want 1", s.ActiveIndex())
	}

	s.Dispatch(ResetAll{})
	if effects := s.Dispatch(SelectLine{Index: 1}); len(effects) != 0 {
		t.Errorf("select after reset should be a no-op, got %#v", effects)
	}
	if effects := s.Dispatch(SelectLine{Index: -1}); len(effects) != 0 {
		t.Errorf("negative select should be a no-op, got %#v", effects)
	}
}

func TestNonFinitePosition(t *testing.T) {
	s := loaded(t)
	s.Dispatch(PositionUpdate{Position: 1})

	s.Dispatch(PositionUpdate{Position: math.NaN()})
	if s.Position() != 0 || s.ActiveIndex() != -1 {
		t.Errorf("NaN position: position=%v index=%d", s.Position(), s.ActiveIndex())
	}

	s.Dispatch(PositionUpdate{Position: -3})
	if s.Position() != 0 {
		t.Errorf("negative position should clamp to 0, got %v", s.Position())
	}

	s.Dispatch(PositionUpdate{Position: math.Inf(1)})
	if s.ActiveIndex() != -1 {
		t.Errorf("infinite position should give -1, got %d", s.ActiveIndex())
	}
}

func TestEmptyLyricsNeverActive(t *testing.T) {
	s := New()
	s.Dispatch(LoadLyrics{Raw: ""})
	for _, pos := range []float64{0, 1, 100, 1e6} {
		s.Dispatch(PositionUpdate{Position: pos})
		if s.ActiveIndex() != -1 {
			t.Errorf("position %v: index %d, want -1", pos, s.ActiveIndex())
		}
	}
}

func TestHandlerReceivesEffectsInOrder(t *testing.T) {
	var got []Effect
	s := New(WithHandler(func(e Effect) { got = append(got, e) }), WithOffset(0.5))

	s.Dispatch(LoadLyrics{Raw: sample})
	returned := s.Dispatch(Seek{Position: 1})

	if len(got) < len(returned) {
		t.Fatalf("handler saw %d effects, want at least %d", len(got), len(returned))
	}
	tail := got[len(got)-len(returned):]
	if !reflect.DeepEqual(tail, returned) {
		t.Errorf("handler order %#v differs from returned %#v", tail, returned)
	}
	// 1.0 + 0.5 offset reaches the second line
	if s.ActiveIndex() != 1 {
		t.Errorf("active index = %d, want 1", s.ActiveIndex())
	}
}

func TestTransitionIsPure(t *testing.T) {
	before := Initial()
	after, _ := Transition(before, LoadLyrics{Raw: sample})

	if len(before.Lines) != 0 || before.ActiveIndex != -1 {
		t.Error("Transition mutated its input state")
	}
	if len(after.Lines) != 2 {
		t.Errorf("expected 2 lines, got %d", len(after.Lines))
	}
}
