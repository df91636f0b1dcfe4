package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
)

const (
	defaultQueueFast = time.Second
	defaultQueueSlow = 3 * time.Second
)

// QueueFetcher fetches the whole batch queue.
type QueueFetcher interface {
	Queue(ctx context.Context) (*models.QueueResponse, error)
}

// QueuePollerOpts configures a [QueuePoller].
type QueuePollerOpts struct {
	Fast      time.Duration
	Slow      time.Duration
	Scheduler Scheduler
	Logger    *log.Logger
	Listener  func(QueueSnapshot)
}

// QueuePoller keeps the queue view fresh and adapts its own rate to what the queue contains.
//
// After every applied fetch the cadence is recomputed; the timer is replaced only when the tier changes.
// A fetch that began before [QueuePoller.Stop] or that is older than the last applied one is dropped.
// The listener runs with the poller's lock held and must not call back into the poller.
type QueuePoller struct {
	mu       sync.Mutex
	fetcher  QueueFetcher
	sched    Scheduler
	fast     time.Duration
	slow     time.Duration
	logger   *log.Logger
	listener func(QueueSnapshot)

	handle  Handle
	cadence Cadence
	issued  uint64
	applied uint64
	epoch   uint64
	last    *QueueSnapshot
}

// NewQueuePoller creates a stopped poller reading the queue from fetcher.
func NewQueuePoller(fetcher QueueFetcher, opts QueuePollerOpts) *QueuePoller {
	if opts.Fast <= 0 {
		opts.Fast = defaultQueueFast
	}
	if opts.Slow <= 0 {
		opts.Slow = defaultQueueSlow
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Listener == nil {
		opts.Listener = func(QueueSnapshot) {}
	}

	return &QueuePoller{
		fetcher:  fetcher,
		sched:    opts.Scheduler,
		fast:     opts.Fast,
		slow:     opts.Slow,
		logger:   shared.WithLogger(opts.Logger, "component", "queue-poller"),
		listener: opts.Listener,
		cadence:  CadenceStopped,
	}
}

// Refresh fetches the queue once, reports it and adjusts the cadence. A failed fetch is returned and leaves
// the cadence unchanged.
func (p *QueuePoller) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.issued++
	seq, epoch := p.issued, p.epoch
	p.mu.Unlock()

	resp, err := p.fetcher.Queue(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.logger.Warn("queue poll failed", "err", err)
		return err
	}
	if epoch != p.epoch || seq <= p.applied {
		p.logger.Debug("dropping stale queue response", "seq", seq)
		return nil
	}
	p.applied = seq

	snapshot := BuildSnapshot(*resp)
	p.last = &snapshot
	p.setCadenceLocked(ctx, snapshot.Cadence)
	p.listener(snapshot)
	return nil
}

// Stop cancels the timer. Fetches already in flight are dropped when they return.
func (p *QueuePoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.epoch++
	p.setCadenceLocked(context.Background(), CadenceStopped)
}

// Cadence returns the installed tier.
func (p *QueuePoller) Cadence() Cadence {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cadence
}

// Last returns the most recently applied snapshot.
func (p *QueuePoller) Last() (QueueSnapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return QueueSnapshot{}, false
	}
	return *p.last, true
}

// Interval returns the poll interval of tier c, or zero when stopped.
func (p *QueuePoller) Interval(c Cadence) time.Duration {
	switch c {
	case CadenceFast:
		return p.fast
	case CadenceSlow:
		return p.slow
	default:
		return 0
	}
}

func (p *QueuePoller) setCadenceLocked(ctx context.Context, c Cadence) {
	if c == p.cadence && (c == CadenceStopped) == (p.handle == nil) {
		return
	}

	if p.handle != nil {
		p.handle.Stop()
		p.handle = nil
	}
	p.logger.Debug("queue cadence changed", "from", p.cadence, "to", c)
	p.cadence = c

	if c == CadenceStopped {
		return
	}
	p.handle = p.sched.Every(p.Interval(c), func() { p.tick(ctx) })
}

func (p *QueuePoller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		p.Stop()
		return
	}
	_ = p.Refresh(ctx)
}

// PlayableFile resolves the library filename of a finished video item, asking the backend when the queue
// listing does not carry it.
func PlayableFile(ctx context.Context, fetcher ProgressFetcher, item models.QueueItem) (string, error) {
	if !ActionsFor(item.Status, item.Type).Has(ActionPlay) {
		return "", fmt.Errorf("%w: item %s is not playable", shared.ErrInvalidArgument, item.ID)
	}
	if item.Filename != "" {
		return item.Filename, nil
	}

	task, err := fetcher.Progress(ctx, item.ID)
	if err != nil {
		return "", err
	}
	if task.Filename == "" {
		return "", fmt.Errorf("%w: no file recorded for task %s", shared.ErrFileNotFound, item.ID)
	}
	return task.Filename, nil
}
