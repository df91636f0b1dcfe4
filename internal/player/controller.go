package player

import (
	"fmt"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/downyt/internal/shared"
)

const defaultRestartThreshold = 3.0

const (
	IconMuted = "🔇"
	IconLow   = "🔉"
	IconHigh  = "🔊"
)

// Options configures a [Controller].
type Options struct {
	// StreamURL maps a library filename to the URL the element loads.
	StreamURL func(name string) string
	// DurationOf returns a known duration for a filename, or zero.
	DurationOf func(name string) float64
	// RestartThreshold is the position in seconds above which Previous restarts the track (default 3).
	RestartThreshold float64
	Logger           *log.Logger
	// Listener receives the state after every change. It runs with the controller's lock held and must not
	// call back into the controller.
	Listener func(State)
}

// State is a snapshot of the controller.
type State struct {
	Tracks     []string `json:"tracks"`
	Cursor     int      `json:"cursor"`
	Current    string   `json:"current,omitempty"`
	Title      string   `json:"title,omitempty"`
	Playing    bool     `json:"playing"`
	Position   float64  `json:"position"`
	Duration   float64  `json:"duration"`
	Volume     float64  `json:"volume"`
	Muted      bool     `json:"muted"`
	VolumeIcon string   `json:"volume_icon"`
}

// Controller keeps a play queue and a cursor on top of one [Element].
type Controller struct {
	mu         sync.Mutex
	el         Element
	streamURL  func(string) string
	durationOf func(string) float64
	threshold  float64
	logger     *log.Logger
	listener   func(State)

	tracks  []string
	cursor  int
	current string
}

// NewController wires a controller to el and subscribes to its events.
func NewController(el Element, opts Options) *Controller {
	if opts.StreamURL == nil {
		opts.StreamURL = func(name string) string { return name }
	}
	if opts.DurationOf == nil {
		opts.DurationOf = func(string) float64 { return 0 }
	}
	if opts.RestartThreshold <= 0 {
		opts.RestartThreshold = defaultRestartThreshold
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Listener == nil {
		opts.Listener = func(State) {}
	}

	c := &Controller{
		el:         el,
		streamURL:  opts.StreamURL,
		durationOf: opts.DurationOf,
		threshold:  opts.RestartThreshold,
		logger:     shared.WithLogger(opts.Logger, "component", "player"),
		listener:   opts.Listener,
	}
	el.OnEvent(c.handleEvent)
	return c
}

// PlayTrack plays name. A non-empty list becomes the play queue with the cursor on name, or on the first
// track when name is not in it. An empty list plays name as a queue of one.
func (c *Controller) PlayTrack(name string, list []string) error {
	if name == "" {
		return fmt.Errorf("%w: track name", shared.ErrMissingArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(list) > 0 {
		c.tracks = append([]string(nil), list...)
		c.cursor = indexOf(c.tracks, name)
	} else {
		c.tracks = []string{name}
		c.cursor = 0
	}

	return c.loadCursorLocked()
}

// Next advances the cursor, wrapping to the first track. It does nothing on an empty queue.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextLocked()
}

func (c *Controller) nextLocked() error {
	if len(c.tracks) == 0 {
		return nil
	}
	c.cursor = (c.cursor + 1) % len(c.tracks)
	return c.loadCursorLocked()
}

// Previous restarts the current track when it has played past the restart threshold; otherwise it moves the
// cursor back, wrapping to the last track. It does nothing on an empty queue.
func (c *Controller) Previous() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.tracks) == 0 {
		return nil
	}

	if c.el.CurrentTime() > c.threshold {
		if err := c.el.SetCurrentTime(0); err != nil {
			return err
		}
		c.notifyLocked()
		return nil
	}

	c.cursor = (c.cursor - 1 + len(c.tracks)) % len(c.tracks)
	return c.loadCursorLocked()
}

// TogglePlay pauses a playing track or resumes a paused one.
func (c *Controller) TogglePlay() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return nil
	}

	var err error
	if c.el.Paused() {
		err = c.el.Play()
	} else {
		err = c.el.Pause()
	}
	c.notifyLocked()
	return err
}

// Seek moves to pct (0-100) of the track. It is ignored while the duration is unknown.
func (c *Controller) Seek(pct float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration := c.el.Duration()
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil
	}

	if err := c.el.SetCurrentTime(clampPercent(pct) / 100 * duration); err != nil {
		return err
	}
	c.notifyLocked()
	return nil
}

// SetVolume sets the volume to pct (0-100).
func (c *Controller) SetVolume(pct float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.el.SetVolume(clampPercent(pct) / 100); err != nil {
		return err
	}
	c.notifyLocked()
	return nil
}

// ToggleMute flips the muted flag.
func (c *Controller) ToggleMute() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.el.SetMuted(!c.el.Muted()); err != nil {
		return err
	}
	c.notifyLocked()
	return nil
}

// Close stops playback, unloads the element and forgets the queue.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.el.Pause()
	if uerr := c.el.Unload(); err == nil {
		err = uerr
	}
	c.tracks = nil
	c.cursor = 0
	c.current = ""
	c.notifyLocked()
	return err
}

// State returns a snapshot of the queue and element.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Current returns the loaded filename, or "" when nothing is loaded.
func (c *Controller) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Cursor returns the index of the current track within the queue.
func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

func (c *Controller) handleEvent(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.Source.Name != c.current {
		c.logger.Debug("ignoring event for replaced track", "event", ev.Kind, "track", ev.Source.Name)
		return
	}

	switch ev.Kind {
	case EventEnded:
		c.logger.Debug("track ended", "track", ev.Source.Name)
		if err := c.nextLocked(); err != nil {
			c.logger.Error("failed to advance", "err", err)
		}
	case EventError:
		c.logger.Warn("playback error", "track", ev.Source.Name, "err", ev.Err)
		c.notifyLocked()
	}
}

func (c *Controller) loadCursorLocked() error {
	name := c.tracks[c.cursor]
	src := Source{Name: name, URL: c.streamURL(name), Duration: c.durationOf(name)}

	if err := c.el.Load(src); err != nil {
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	c.current = name

	if err := c.el.Play(); err != nil {
		c.notifyLocked()
		return fmt.Errorf("failed to play %s: %w", name, err)
	}

	c.logger.Debug("playing", "track", name, "cursor", c.cursor, "tracks", len(c.tracks))
	c.notifyLocked()
	return nil
}

func (c *Controller) notifyLocked() {
	c.listener(c.stateLocked())
}

func (c *Controller) stateLocked() State {
	volume, muted := c.el.Volume(), c.el.Muted()
	s := State{
		Tracks:     append([]string(nil), c.tracks...),
		Cursor:     c.cursor,
		Current:    c.current,
		Volume:     volume,
		Muted:      muted,
		VolumeIcon: VolumeIcon(volume, muted),
	}
	if c.current != "" {
		s.Title = shared.TrackTitle(c.current)
		s.Playing = !c.el.Paused()
		s.Position = c.el.CurrentTime()
		s.Duration = c.el.Duration()
	}
	return s
}

// VolumeIcon picks the speaker glyph for a volume level.
func VolumeIcon(volume float64, muted bool) string {
	switch {
	case muted || volume == 0:
		return IconMuted
	case volume < 0.5:
		return IconLow
	default:
		return IconHigh
	}
}

// Highlight marks the rows that show the current track.
func Highlight(current string, rows []string) []bool {
	marks := make([]bool, len(rows))
	if current == "" {
		return marks
	}
	for i, row := range rows {
		marks[i] = row == current
	}
	return marks
}

func indexOf(list []string, name string) int {
	for i, v := range list {
		if v == name {
			return i
		}
	}
	return 0
}

func clampPercent(pct float64) float64 {
	switch {
	case math.IsNaN(pct) || pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}
