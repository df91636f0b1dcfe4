// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/downyt/internal/player"
	"github.com/desertthunder/downyt/internal/tasks"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// ManualScheduler is a [tasks.Scheduler] whose timers only fire when the test calls Tick.
type ManualScheduler struct {
	mu     sync.Mutex
	timers []*ManualTimer
}

// ManualTimer is a timer installed on a [ManualScheduler].
type ManualTimer struct {
	Interval time.Duration
	fn       func()
	mu       sync.Mutex
	stopped  bool
}

func (s *ManualScheduler) Every(d time.Duration, fn func()) tasks.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &ManualTimer{Interval: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Stop is idempotent.
func (t *ManualTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *ManualTimer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Active returns the timers that have not been stopped.
func (s *ManualScheduler) Active() []*ManualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []*ManualTimer
	for _, t := range s.timers {
		if !t.Stopped() {
			active = append(active, t)
		}
	}
	return active
}

// Installed returns how many timers were ever installed.
func (s *ManualScheduler) Installed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Tick fires every active timer once, synchronously, and returns how many fired.
func (s *ManualScheduler) Tick() int {
	active := s.Active()
	for _, t := range active {
		t.fn()
	}
	return len(active)
}

// FakeElement is an in-memory [player.Element]. Events are only emitted through End, EndWith and Fail.
type FakeElement struct {
	mu       sync.Mutex
	src      player.Source
	loaded   bool
	paused   bool
	position float64
	volume   float64
	muted    bool
	handler  func(player.Event)

	Loads   []player.Source
	PlayErr error
}

func NewFakeElement() *FakeElement {
	return &FakeElement{paused: true, volume: 1, handler: func(player.Event) {}}
}

func (f *FakeElement) Load(src player.Source) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.src, f.loaded, f.paused, f.position = src, true, true, 0
	f.Loads = append(f.Loads, src)
	return nil
}

func (f *FakeElement) Unload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.src, f.loaded, f.paused, f.position = player.Source{}, false, true, 0
	return nil
}

func (f *FakeElement) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PlayErr != nil {
		return f.PlayErr
	}
	f.paused = false
	return nil
}

func (f *FakeElement) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
	return nil
}

func (f *FakeElement) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *FakeElement) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *FakeElement) SetCurrentTime(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = seconds
	return nil
}

func (f *FakeElement) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.src.Duration
}

func (f *FakeElement) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *FakeElement) SetVolume(v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
	return nil
}

func (f *FakeElement) Muted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted
}

func (f *FakeElement) SetMuted(muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = muted
	return nil
}

func (f *FakeElement) OnEvent(fn func(player.Event)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = fn
}

// Source returns the loaded source.
func (f *FakeElement) Source() player.Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.src
}

// End simulates the loaded track playing to its end.
func (f *FakeElement) End() {
	f.mu.Lock()
	src, handler := f.src, f.handler
	f.paused = true
	f.mu.Unlock()
	handler(player.Event{Kind: player.EventEnded, Source: src})
}

// Fail simulates the player failing on the loaded track.
func (f *FakeElement) Fail(err error) {
	f.mu.Lock()
	src, handler := f.src, f.handler
	f.paused = true
	f.mu.Unlock()
	handler(player.Event{Kind: player.EventError, Source: src, Err: err})
}

// EndWith emits an ended event for src, which may no longer be loaded.
func (f *FakeElement) EndWith(src player.Source) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	handler(player.Event{Kind: player.EventEnded, Source: src})
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
