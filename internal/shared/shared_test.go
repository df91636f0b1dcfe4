package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateURL(t *testing.T) {
	tt := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "video url", raw: "https://www.youtube.com/watch?v=abc", want: "https://www.youtube.com/watch?v=abc"},
		{name: "trims whitespace", raw: "  https://youtu.be/abc \n", want: "https://youtu.be/abc"},
		{name: "empty", raw: "   ", wantErr: true},
		{name: "no scheme", raw: "www.youtube.com/watch?v=abc", wantErr: true},
		{name: "ftp scheme", raw: "ftp://example.com/file", wantErr: true},
		{name: "missing host", raw: "https:///watch", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateURL(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidURL) {
					t.Errorf("ValidateURL(%q) error = %v, want ErrInvalidURL", tc.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateURL(%q) unexpected error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Errorf("ValidateURL(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSplitURLs(t *testing.T) {
	got := SplitURLs("https://a\n\n   \n  https://b  \nhttps://c")
	if strings.Join(got, ",") != "https://a,https://b,https://c" {
		t.Errorf("SplitURLs() = %v", got)
	}
	if len(SplitURLs("")) != 0 {
		t.Error("SplitURLs(\"\") should be empty")
	}
}

func TestFormatting(t *testing.T) {
	t.Run("FormatDuration", func(t *testing.T) {
		cases := map[float64]string{0: "--:--", 59: "0:59", 61.9: "1:01", 3600: "60:00"}
		for in, want := range cases {
			if got := FormatDuration(in); got != want {
				t.Errorf("FormatDuration(%v) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("FormatTime", func(t *testing.T) {
		cases := map[float64]string{0: "0:00", -1: "0:00", 5.5: "0:05", 125: "2:05"}
		for in, want := range cases {
			if got := FormatTime(in); got != want {
				t.Errorf("FormatTime(%v) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("FormatFileSize", func(t *testing.T) {
		if got := FormatFileSize(512); got != "512 B" {
			t.Errorf("FormatFileSize(512) = %q", got)
		}
		if got := FormatFileSize(5 * 1024 * 1024); got != "5.0 MiB" {
			t.Errorf("FormatFileSize(5MiB) = %q", got)
		}
	})

	t.Run("FormatModified", func(t *testing.T) {
		if got := FormatModified(0); got != "-" {
			t.Errorf("FormatModified(0) = %q", got)
		}
		twoHoursAgo := float64(time.Now().Add(-2 * time.Hour).Unix())
		if got := FormatModified(twoHoursAgo); got != "2 hours ago" {
			t.Errorf("FormatModified(2h ago) = %q", got)
		}
	})

	t.Run("Truncate", func(t *testing.T) {
		if got := Truncate("short", 10); got != "short" {
			t.Errorf("Truncate() = %q", got)
		}
		if got := Truncate("música longa demais", 6); got != "música..." {
			t.Errorf("Truncate() = %q", got)
		}
	})

	t.Run("TrackTitle", func(t *testing.T) {
		cases := map[string]string{"Song.mp3": "Song", "Song.MP3": "Song", "Song.mp3.wav": "Song.mp3.wav", "Mix.mp3 (live).mp3": "Mix.mp3 (live)"}
		for in, want := range cases {
			if got := TrackTitle(in); got != want {
				t.Errorf("TrackTitle(%q) = %q, want %q", in, got, want)
			}
		}
	})
}

func TestLoggers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tui.log")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Info("hello", "component", "test")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "hello") || !strings.Contains(content, "component=test") {
		t.Errorf("log file content = %q", content)
	}

	if id := GenerateID(); len(id) != 36 {
		t.Errorf("GenerateID() = %q, want uuid", id)
	}
}

func TestMarshalJSON(t *testing.T) {
	compact, err := MarshalJSON(map[string]int{"a": 1}, false)
	if err != nil || string(compact) != `{"a":1}` {
		t.Errorf("MarshalJSON(compact) = %s, %v", compact, err)
	}

	pretty, err := MarshalJSON(map[string]int{"a": 1}, true)
	if err != nil || string(pretty) != "{\n  \"a\": 1\n}" {
		t.Errorf("MarshalJSON(pretty) = %s, %v", pretty, err)
	}
}
