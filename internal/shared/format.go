package shared

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var mp3Ext = regexp.MustCompile(`(?i)\.mp3$`)

// ValidateURL trims raw and checks that it is an absolute http(s) URL.
//
// Validation failures wrap [ErrInvalidURL] and happen before any request is made.
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: URL is empty", ErrInvalidURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return trimmed, nil
}

// SplitURLs returns the non-blank lines of text, trimmed.
func SplitURLs(text string) []string {
	var urls []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			urls = append(urls, line)
		}
	}
	return urls
}

// FormatDuration renders seconds as m:ss, or "--:--" when unknown.
func FormatDuration(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) {
		return "--:--"
	}
	return minutesSeconds(seconds)
}

// FormatTime renders a playback position as m:ss, or "0:00" when unknown.
func FormatTime(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "0:00"
	}
	return minutesSeconds(seconds)
}

func minutesSeconds(seconds float64) string {
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatFileSize renders a byte count with binary units.
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatModified renders a unix timestamp (seconds) relative to now.
func FormatModified(unix float64) string {
	if unix <= 0 {
		return "-"
	}
	sec, frac := math.Modf(unix)
	return humanize.Time(time.Unix(int64(sec), int64(frac*1e9)))
}

// Truncate shortens text to max runes, appending "..." when cut.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// TrackTitle strips a trailing .mp3 extension (any case) from a filename.
func TrackTitle(filename string) string {
	return mp3Ext.ReplaceAllString(filename, "")
}
