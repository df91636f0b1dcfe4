package tasks

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
)

const (
	defaultProgressInterval = time.Second

	msgDownloading     = "Baixando..."
	msgConverting      = "Convertendo para MP3..."
	msgSingleDone      = "Arquivo baixado com sucesso!"
	msgPlaylistDone    = "%d arquivos baixados com sucesso!"
	msgDownloadFailed  = "Erro no download"
	msgDownloadStopped = "Download cancelado"
)

// ProgressFetcher fetches the state of one task.
type ProgressFetcher interface {
	Progress(ctx context.Context, taskID string) (*models.Task, error)
}

// EventKind classifies a [TaskEvent].
type EventKind int

const (
	EventProgress EventKind = iota
	EventCompleted
	EventFailed
	EventCancelled
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TaskEvent is reported to the listener after every applied poll.
type TaskEvent struct {
	Kind           EventKind
	TaskID         string
	Type           models.DownloadType
	Task           models.Task
	Percent        int    // progress rounded to 0-100
	StatusLine     string // set for progress events
	Message        string // set for terminal events
	CompletedCount int    // completed playlist entries, set on completion
}

// Terminal reports whether the event ends the poll loop.
func (e TaskEvent) Terminal() bool {
	return e.Kind != EventProgress
}

// TaskPollerOpts configures a [TaskPoller].
type TaskPollerOpts struct {
	Interval  time.Duration
	Scheduler Scheduler
	Logger    *log.Logger
	Listener  func(TaskEvent)
}

// TaskPoller polls a single task until the backend reports a terminal status.
//
// At most one poll loop is active. Starting a new loop stops the previous one, and responses that arrive
// for a replaced or stopped loop are dropped. The listener runs with the poller's lock held and must not
// call back into the poller.
type TaskPoller struct {
	mu       sync.Mutex
	fetcher  ProgressFetcher
	sched    Scheduler
	interval time.Duration
	logger   *log.Logger
	listener func(TaskEvent)

	handle  Handle
	gen     uint64
	issued  uint64
	applied uint64
	taskID  string
	kind    models.DownloadType
}

// NewTaskPoller creates a poller reading task state from fetcher.
func NewTaskPoller(fetcher ProgressFetcher, opts TaskPollerOpts) *TaskPoller {
	if opts.Interval <= 0 {
		opts.Interval = defaultProgressInterval
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Listener == nil {
		opts.Listener = func(TaskEvent) {}
	}

	return &TaskPoller{
		fetcher:  fetcher,
		sched:    opts.Scheduler,
		interval: opts.Interval,
		logger:   shared.WithLogger(opts.Logger, "component", "task-poller"),
		listener: opts.Listener,
	}
}

// Start begins polling taskID, replacing any active loop. kind selects the completion message.
func (p *TaskPoller) Start(ctx context.Context, taskID string, kind models.DownloadType) error {
	if taskID == "" {
		return fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.taskID = taskID
	p.kind = kind
	gen := p.gen
	p.handle = p.sched.Every(p.interval, func() { p.tick(ctx, gen, taskID) })
	p.logger.Debug("polling started", "task", taskID, "type", kind, "interval", p.interval)
	return nil
}

// Stop cancels the active loop. No request is sent to the backend.
func (p *TaskPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Active reports whether a poll loop is installed.
func (p *TaskPoller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle != nil
}

// TaskID returns the task of the current or last loop.
func (p *TaskPoller) TaskID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.taskID
}

func (p *TaskPoller) stopLocked() {
	if p.handle != nil {
		p.handle.Stop()
		p.handle = nil
	}
	p.gen++
}

func (p *TaskPoller) tick(ctx context.Context, gen uint64, taskID string) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	if err := ctx.Err(); err != nil {
		p.stopLocked()
		p.mu.Unlock()
		return
	}
	p.issued++
	seq := p.issued
	p.mu.Unlock()

	task, err := p.fetcher.Progress(ctx, taskID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen || seq <= p.applied {
		p.logger.Debug("dropping stale progress", "task", taskID)
		return
	}
	if err != nil {
		p.logger.Warn("progress poll failed", "task", taskID, "err", err)
		return
	}
	p.applied = seq

	event := EvaluateTask(*task, p.kind)
	event.TaskID = taskID
	if event.Terminal() {
		p.stopLocked()
		p.logger.Info("task finished", "task", taskID, "status", task.Status)
	}
	p.listener(event)
}

// EvaluateTask maps a polled task to the event reported for it.
func EvaluateTask(task models.Task, kind models.DownloadType) TaskEvent {
	if kind == "" {
		kind = task.Type
	}

	event := TaskEvent{
		Kind:    EventProgress,
		TaskID:  task.ID,
		Type:    kind,
		Task:    task,
		Percent: Percent(task.Progress),
	}

	switch task.Status {
	case models.StatusCompleted:
		event.Kind = EventCompleted
		event.CompletedCount = task.CountCompleted()
		event.Message = CompletionMessage(task, kind)
	case models.StatusError:
		event.Kind = EventFailed
		event.Message = task.Error
		if event.Message == "" {
			event.Message = msgDownloadFailed
		}
	case models.StatusCancelled:
		event.Kind = EventCancelled
		event.Message = msgDownloadStopped
	default:
		event.StatusLine = StatusLine(task)
	}

	return event
}

// StatusLine renders the progress caption of an intermediate task.
func StatusLine(task models.Task) string {
	switch {
	case task.Status == models.StatusConverting:
		return msgConverting
	case task.CurrentVideo != "":
		return fmt.Sprintf("Baixando: %s (%d/%d)", task.CurrentVideo, task.CurrentIndex, task.Total)
	default:
		return msgDownloading
	}
}

// CompletionMessage renders the message shown once a task completes.
func CompletionMessage(task models.Task, kind models.DownloadType) string {
	if kind == models.TypePlaylist {
		return fmt.Sprintf(msgPlaylistDone, task.CountCompleted())
	}
	if task.Filename != "" {
		return task.Filename
	}
	return msgSingleDone
}

// Percent rounds progress and clamps it to 0-100.
func Percent(progress float64) int {
	if math.IsNaN(progress) || progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return int(math.Round(progress))
}
