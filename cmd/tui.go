package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/downyt/internal/player"
	"github.com/desertthunder/downyt/internal/shared"
	"github.com/desertthunder/downyt/internal/tasks"
	"github.com/desertthunder/downyt/internal/ui"
	"github.com/gofrs/flock"
	"github.com/urfave/cli/v3"
)

// acquireLock takes the TUI lock file so only one interactive session drives the controllers.
func acquireLock(path string) (*flock.Flock, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create lock directory: %w", err)
		}
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is locked", shared.ErrAlreadyRunning, path)
	}
	return lock, nil
}

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	lock, err := acquireLock(r.config.TUI.LockFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release TUI lock", "err", err)
		}
	}()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.TUI.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if err := r.openStores(); err != nil {
		return err
	}

	ch := ui.NewChannels()
	library := r.newLibrary()
	deps := ui.Deps{
		Backend: r.api,
		Tasks: tasks.NewTaskPoller(r.api, tasks.TaskPollerOpts{
			Interval:  r.config.Polling.ProgressInterval(),
			Scheduler: r.scheduler,
			Logger:    r.logger,
			Listener:  tasks.ChannelListener(ch.Tasks),
		}),
		Queue: tasks.NewQueuePoller(r.api, tasks.QueuePollerOpts{
			Fast:      r.config.Polling.QueueFast(),
			Slow:      r.config.Polling.QueueSlow(),
			Scheduler: r.scheduler,
			Logger:    r.logger,
			Listener:  tasks.ChannelListener(ch.Queue),
		}),
		Library: library,
		Player: player.NewController(r.newElement(), player.Options{
			StreamURL: r.api.StreamURL,
			DurationOf: func(name string) float64 {
				for _, f := range library.Files() {
					if f.Name == name {
						return f.Duration
					}
				}
				return 0
			},
			RestartThreshold: r.config.Player.RestartThresholdS,
			Logger:           r.logger,
			Listener:         tasks.ChannelListener(ch.Player),
		}),
		Cookies:   r.cookies,
		History:   r.history,
		Channels:  ch,
		OutputDir: cmd.String("output"),
		ZipName:   r.config.Library.ZipName,
		Logger:    r.logger,
	}

	r.logger.Info("starting TUI", "backend", r.api.BaseURL())
	if err := ui.Run(ctx, deps); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
