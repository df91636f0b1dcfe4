package player_test

import (
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/desertthunder/downyt/internal/player"
	"github.com/desertthunder/downyt/internal/shared"
	tu "github.com/desertthunder/downyt/internal/testing"
)

func newController(durations map[string]float64) (*player.Controller, *tu.FakeElement, *[]player.State) {
	el := tu.NewFakeElement()
	var states []player.State
	c := player.NewController(el, player.Options{
		StreamURL:  func(name string) string { return "http://backend/api/stream/" + name },
		DurationOf: func(name string) float64 { return durations[name] },
		Logger:     shared.NewLogger(io.Discard),
		Listener:   func(s player.State) { states = append(states, s) },
	})
	return c, el, &states
}

var library = []string{"a.mp3", "b.mp3", "c.mp3"}

func TestController(t *testing.T) {
	t.Run("PlayTrack", func(t *testing.T) {
		t.Run("Cursor Follows Track In List", func(t *testing.T) {
			c, el, _ := newController(nil)

			if err := c.PlayTrack("b.mp3", library); err != nil {
				t.Fatalf("PlayTrack() error = %v", err)
			}
			if c.Cursor() != 1 || c.Current() != "b.mp3" {
				t.Errorf("cursor=%d current=%s", c.Cursor(), c.Current())
			}
			if el.Source().URL != "http://backend/api/stream/b.mp3" {
				t.Errorf("unexpected stream URL %s", el.Source().URL)
			}
			if el.Paused() {
				t.Error("expected element to be playing")
			}
		})

		t.Run("Absent Track Starts At Zero", func(t *testing.T) {
			c, _, _ := newController(nil)

			c.PlayTrack("zzz.mp3", library)
			if c.Cursor() != 0 || c.Current() != "a.mp3" {
				t.Errorf("cursor=%d current=%s", c.Cursor(), c.Current())
			}
		})

		t.Run("Empty List Makes Singleton Queue", func(t *testing.T) {
			c, _, _ := newController(nil)

			c.PlayTrack("solo.mp3", nil)
			if s := c.State(); !reflect.DeepEqual(s.Tracks, []string{"solo.mp3"}) || s.Cursor != 0 {
				t.Errorf("unexpected state %+v", s)
			}
			c.Next()
			if c.Current() != "solo.mp3" {
				t.Errorf("Next on singleton should replay, got %s", c.Current())
			}
		})

		t.Run("List Is Copied", func(t *testing.T) {
			c, _, _ := newController(nil)
			list := []string{"a.mp3", "b.mp3"}

			c.PlayTrack("a.mp3", list)
			list[1] = "mutated.mp3"
			c.Next()
			if c.Current() != "b.mp3" {
				t.Errorf("queue should not alias caller's slice, got %s", c.Current())
			}
		})

		t.Run("Requires Name", func(t *testing.T) {
			c, _, _ := newController(nil)
			if err := c.PlayTrack("", library); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})

		t.Run("Play Failure Is Reported", func(t *testing.T) {
			c, el, _ := newController(nil)
			el.PlayErr = errors.New("no audio device")
			if err := c.PlayTrack("a.mp3", library); err == nil {
				t.Error("expected play error")
			}
		})
	})

	t.Run("Next And Previous Wrap", func(t *testing.T) {
		c, _, _ := newController(nil)
		c.PlayTrack("c.mp3", library)

		c.Next()
		if c.Cursor() != 0 {
			t.Errorf("Next from last should wrap to 0, got %d", c.Cursor())
		}
		c.Previous()
		if c.Cursor() != 2 {
			t.Errorf("Previous from 0 should wrap to last, got %d", c.Cursor())
		}
	})

	t.Run("Next Then Previous Round Trip", func(t *testing.T) {
		for n := 1; n <= 4; n++ {
			list := library[:0:0]
			for i := 0; i < n; i++ {
				list = append(list, string(rune('a'+i))+".mp3")
			}
			for start := range list {
				c, _, _ := newController(nil)
				c.PlayTrack(list[start], list)
				c.Next()
				c.Previous()
				if c.Cursor() != start {
					t.Errorf("n=%d start=%d: cursor %d after round trip", n, start, c.Cursor())
				}
			}
		}
	})

	t.Run("Previous Restart Threshold", func(t *testing.T) {
		tt := []struct {
			position    float64
			wantCursor  int
			wantRestart bool
		}{
			{position: 2.9, wantCursor: 0},
			{position: 3.0, wantCursor: 0},
			{position: 3.1, wantCursor: 1, wantRestart: true},
		}

		for _, tc := range tt {
			c, el, _ := newController(nil)
			c.PlayTrack("b.mp3", library)
			el.SetCurrentTime(tc.position)

			c.Previous()

			if c.Cursor() != tc.wantCursor {
				t.Errorf("position %.1f: cursor = %d, want %d", tc.position, c.Cursor(), tc.wantCursor)
			}
			if tc.wantRestart && el.CurrentTime() != 0 {
				t.Errorf("position %.1f: expected seek to 0, got %v", tc.position, el.CurrentTime())
			}
			if tc.wantRestart && len(el.Loads) != 1 {
				t.Errorf("position %.1f: restart should not reload", tc.position)
			}
		}
	})

	t.Run("Empty Queue Is No-Op", func(t *testing.T) {
		c, el, states := newController(nil)

		if err := c.Next(); err != nil {
			t.Errorf("Next() error = %v", err)
		}
		if err := c.Previous(); err != nil {
			t.Errorf("Previous() error = %v", err)
		}
		if err := c.TogglePlay(); err != nil {
			t.Errorf("TogglePlay() error = %v", err)
		}
		if len(el.Loads) != 0 || len(*states) != 0 {
			t.Error("empty queue should not touch the element")
		}
	})

	t.Run("Ended Advances", func(t *testing.T) {
		c, el, _ := newController(nil)
		c.PlayTrack("a.mp3", library)

		el.End()
		if c.Current() != "b.mp3" {
			t.Errorf("expected b.mp3 after end, got %s", c.Current())
		}
		el.End()
		el.End()
		if c.Current() != "a.mp3" {
			t.Errorf("expected wrap to a.mp3, got %s", c.Current())
		}
	})

	t.Run("Ended For Replaced Track Is Ignored", func(t *testing.T) {
		c, el, _ := newController(nil)
		c.PlayTrack("a.mp3", library)
		old := el.Source()
		c.Next()

		el.EndWith(old)
		if c.Current() != "b.mp3" {
			t.Errorf("stale ended event moved the cursor to %s", c.Current())
		}
	})

	t.Run("Seek Maps Percent To Duration", func(t *testing.T) {
		c, el, _ := newController(map[string]float64{"a.mp3": 200})
		c.PlayTrack("a.mp3", library)

		c.Seek(25)
		if el.CurrentTime() != 50 {
			t.Errorf("Seek(25) position = %v, want 50", el.CurrentTime())
		}
		c.Seek(150)
		if el.CurrentTime() != 200 {
			t.Errorf("Seek(150) should clamp, got %v", el.CurrentTime())
		}
	})

	t.Run("Seek Ignored Without Duration", func(t *testing.T) {
		c, el, _ := newController(nil)
		c.PlayTrack("a.mp3", library)
		el.SetCurrentTime(7)

		c.Seek(50)
		if el.CurrentTime() != 7 {
			t.Errorf("seek with unknown duration moved to %v", el.CurrentTime())
		}
	})

	t.Run("Volume And Mute", func(t *testing.T) {
		c, el, _ := newController(nil)

		c.SetVolume(40)
		if el.Volume() != 0.4 {
			t.Errorf("SetVolume(40) = %v", el.Volume())
		}
		if c.State().VolumeIcon != player.IconLow {
			t.Errorf("expected low icon, got %s", c.State().VolumeIcon)
		}

		c.ToggleMute()
		if !el.Muted() || c.State().VolumeIcon != player.IconMuted {
			t.Error("expected muted")
		}
		c.ToggleMute()
		if el.Muted() {
			t.Error("expected unmuted")
		}
	})

	t.Run("TogglePlay", func(t *testing.T) {
		c, el, _ := newController(nil)
		c.PlayTrack("a.mp3", library)

		c.TogglePlay()
		if !el.Paused() || c.State().Playing {
			t.Error("expected paused")
		}
		c.TogglePlay()
		if el.Paused() {
			t.Error("expected playing")
		}
	})

	t.Run("Close", func(t *testing.T) {
		c, el, states := newController(nil)
		c.PlayTrack("b.mp3", library)

		if err := c.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		s := c.State()
		if s.Current != "" || len(s.Tracks) != 0 || s.Cursor != 0 || s.Title != "" {
			t.Errorf("unexpected state after close %+v", s)
		}
		if el.Source().URL != "" {
			t.Error("expected element to be unloaded")
		}
		last := (*states)[len(*states)-1]
		if last.Current != "" {
			t.Error("listener should see the cleared state")
		}
		if err := c.Next(); err != nil || len(el.Loads) != 1 {
			t.Error("Next after Close should be a no-op")
		}
	})

	t.Run("State Title Strips Extension", func(t *testing.T) {
		c, _, states := newController(nil)
		c.PlayTrack("Song Name.MP3", nil)

		if got := c.State().Title; got != "Song Name" {
			t.Errorf("Title = %q", got)
		}
		if len(*states) == 0 || (*states)[0].Current != "Song Name.MP3" {
			t.Error("listener should be notified on track change")
		}
	})
}

func TestVolumeIcon(t *testing.T) {
	tt := []struct {
		volume float64
		muted  bool
		want   string
	}{
		{1, true, player.IconMuted},
		{0, false, player.IconMuted},
		{0.49, false, player.IconLow},
		{0.5, false, player.IconHigh},
		{1, false, player.IconHigh},
	}

	for _, tc := range tt {
		if got := player.VolumeIcon(tc.volume, tc.muted); got != tc.want {
			t.Errorf("VolumeIcon(%v, %v) = %s, want %s", tc.volume, tc.muted, got, tc.want)
		}
	}
}

func TestHighlight(t *testing.T) {
	rows := []string{"a.mp3", "b.mp3", "a.mp3"}

	if got := player.Highlight("a.mp3", rows); !reflect.DeepEqual(got, []bool{true, false, true}) {
		t.Errorf("Highlight() = %v", got)
	}
	if got := player.Highlight("", rows); !reflect.DeepEqual(got, []bool{false, false, false}) {
		t.Errorf("Highlight(\"\") = %v", got)
	}
	if got := player.Highlight("a.mp3", nil); len(got) != 0 {
		t.Errorf("Highlight with no rows = %v", got)
	}
}
