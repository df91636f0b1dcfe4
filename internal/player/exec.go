package player

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/downyt/internal/shared"
)

// CommandFunc builds the player process. It defaults to [exec.CommandContext].
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// ExecOpts configures an [ExecElement].
type ExecOpts struct {
	Command CommandFunc
	Volume  float64 // initial volume, 0.0-1.0
	Now     func() time.Time
	Logger  *log.Logger
}

// ExecElement plays audio through an external player process such as mpv.
//
// The process has no control channel: pausing stops it and remembers the position, playing starts a new
// process at that position, and seek or volume changes while playing restart it. A process that exits on its
// own ends the track.
type ExecElement struct {
	mu      sync.Mutex
	program string
	args    []string
	command CommandFunc
	now     func() time.Time
	logger  *log.Logger
	handler func(Event)

	src     Source
	loaded  bool
	volume  float64
	muted   bool
	playing bool
	offset  float64 // position when the process started or was stopped
	started time.Time
	cancel  context.CancelFunc
	gen     uint64
}

// NewExecElement creates an element that runs program with args followed by position, volume and URL flags.
func NewExecElement(program string, args []string, opts ExecOpts) *ExecElement {
	if opts.Command == nil {
		opts.Command = exec.CommandContext
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Volume <= 0 || opts.Volume > 1 {
		opts.Volume = 1
	}

	return &ExecElement{
		program: program,
		args:    append([]string(nil), args...),
		command: opts.Command,
		now:     opts.Now,
		logger:  shared.WithLogger(opts.Logger, "component", "exec-element"),
		volume:  opts.Volume,
		handler: func(Event) {},
	}
}

// OnEvent sets the handler for ended and error events.
func (e *ExecElement) OnEvent(fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fn == nil {
		fn = func(Event) {}
	}
	e.handler = fn
}

// Load replaces the source and rewinds. Playback stops until [ExecElement.Play].
func (e *ExecElement) Load(src Source) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.killLocked()
	e.src = src
	e.loaded = true
	e.offset = 0
	return nil
}

// Unload stops playback and forgets the source.
func (e *ExecElement) Unload() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.killLocked()
	e.src = Source{}
	e.loaded = false
	e.offset = 0
	return nil
}

// Play starts the process at the remembered position.
func (e *ExecElement) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return fmt.Errorf("%w: nothing loaded", shared.ErrInvalidInput)
	}
	if e.playing {
		return nil
	}
	return e.startLocked()
}

// Pause stops the process and keeps its position.
func (e *ExecElement) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.playing {
		e.offset = e.positionLocked()
		e.killLocked()
	}
	return nil
}

func (e *ExecElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.playing
}

func (e *ExecElement) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

// SetCurrentTime moves the position, restarting the process when playing.
func (e *ExecElement) SetCurrentTime(seconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seconds < 0 {
		seconds = 0
	}
	return e.restartAtLocked(seconds)
}

func (e *ExecElement) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src.Duration
}

func (e *ExecElement) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// SetVolume changes the volume, restarting the process when playing.
func (e *ExecElement) SetVolume(v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.volume = v
	return e.restartAtLocked(e.positionLocked())
}

func (e *ExecElement) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// SetMuted changes the muted flag, restarting the process when playing.
func (e *ExecElement) SetMuted(muted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.muted = muted
	return e.restartAtLocked(e.positionLocked())
}

// Args returns the argument list used for the next process start.
func (e *ExecElement) Args() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.argsLocked()
}

func (e *ExecElement) argsLocked() []string {
	volume := int(e.volume*100 + 0.5)
	mute := "no"
	if e.muted {
		mute = "yes"
	}

	args := append([]string(nil), e.args...)
	return append(args,
		"--start="+strconv.FormatFloat(e.offset, 'f', 3, 64),
		"--volume="+strconv.Itoa(volume),
		"--mute="+mute,
		e.src.URL,
	)
}

func (e *ExecElement) restartAtLocked(seconds float64) error {
	if !e.playing {
		e.offset = seconds
		return nil
	}
	e.killLocked()
	e.offset = seconds
	return e.startLocked()
}

func (e *ExecElement) positionLocked() float64 {
	pos := e.offset
	if e.playing {
		pos += e.now().Sub(e.started).Seconds()
	}
	if e.src.Duration > 0 && pos > e.src.Duration {
		pos = e.src.Duration
	}
	return pos
}

func (e *ExecElement) startLocked() error {
	ctx, cancel := context.WithCancel(context.Background())
	cmd := e.command(ctx, e.program, e.argsLocked()...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w", e.program, err)
	}

	e.gen++
	gen, src := e.gen, e.src
	e.cancel = cancel
	e.playing = true
	e.started = e.now()
	e.logger.Debug("player started", "track", src.Name, "start", e.offset, "pid", cmd.Process.Pid)

	go e.wait(cmd, gen, src)
	return nil
}

func (e *ExecElement) wait(cmd *exec.Cmd, gen uint64, src Source) {
	err := cmd.Wait()

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.cancel()
	e.cancel = nil
	e.playing = false
	if err == nil {
		e.offset = 0
	}
	handler := e.handler
	e.mu.Unlock()

	if err != nil {
		handler(Event{Kind: EventError, Source: src, Err: fmt.Errorf("%s exited: %w", e.program, err)})
		return
	}
	handler(Event{Kind: EventEnded, Source: src})
}

// killLocked stops the process; its wait goroutine sees a newer generation and emits nothing.
func (e *ExecElement) killLocked() {
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.playing = false
}
