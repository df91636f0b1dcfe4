package player

// EventKind identifies an [Event] emitted by an [Element].
type EventKind int

const (
	// EventEnded fires when the loaded track plays to its end.
	EventEnded EventKind = iota
	// EventError fires when playback stops abnormally.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is emitted by an element outside of any of its method calls.
type Event struct {
	Kind   EventKind
	Source Source
	Err    error
}

// Source is the media loaded into an element.
type Source struct {
	Name     string  // library filename
	URL      string  // stream URL
	Duration float64 // seconds; zero when unknown
}

// Element is a single audio output. Positions and durations are in seconds, volume is 0.0-1.0.
//
// Implementations must not invoke the event handler from inside their own methods.
type Element interface {
	Load(src Source) error
	Unload() error
	Play() error
	Pause() error
	Paused() bool
	CurrentTime() float64
	SetCurrentTime(seconds float64) error
	Duration() float64
	Volume() float64
	SetVolume(v float64) error
	Muted() bool
	SetMuted(muted bool) error
	OnEvent(fn func(Event))
}
