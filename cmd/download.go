package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/downyt/internal/formatter"
	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
	"github.com/desertthunder/downyt/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Info fetches and prints metadata for a video or playlist URL.
func (r *Runner) Info(ctx context.Context, cmd *cli.Command) error {
	u, err := shared.ValidateURL(cmd.StringArg("url"))
	if err != nil {
		return err
	}

	r.withStores()
	r.logger.Debug("fetching info", "url", u)

	info, err := r.api.Info(ctx, u)
	if err != nil {
		return fmt.Errorf("failed to fetch info: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(info, true)
	}

	r.writePlainHeader(info.Title)
	if info.Type == models.TypePlaylist {
		count := info.Count
		if count == 0 {
			count = len(info.Videos)
		}
		r.writePlain("Playlist • %d vídeos\n\n", count)
		r.writePlain("%s\n", formatter.PlaylistTable(info))
		return nil
	}

	if info.Channel != "" {
		r.writePlain("Canal: %s\n", info.Channel)
	}
	r.writePlain("Duração: %s\n", shared.FormatDuration(info.Duration))
	return nil
}

// Download starts a download, follows it until the backend reports a terminal status and saves the result.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	u, err := shared.ValidateURL(cmd.StringArg("url"))
	if err != nil {
		return err
	}

	r.withStores()

	var title string
	kind := models.TypeVideo
	if t := cmd.String("type"); t != "" {
		if kind, err = models.ParseDownloadType(t); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
	} else {
		info, err := r.api.Info(ctx, u)
		if err != nil {
			return fmt.Errorf("failed to fetch info: %w", err)
		}
		title = info.Title
		if info.Type != "" {
			kind = info.Type
		}
	}

	taskID, err := r.api.Download(ctx, u, kind)
	if err != nil {
		return fmt.Errorf("failed to start download: %w", err)
	}
	r.logger.Info("download started", "task", taskID, "type", kind)
	r.recordHistory(ctx, &models.HistoryEntry{TaskID: taskID, URL: u, Type: kind, Title: title})

	ev, err := r.followTask(ctx, taskID, kind)
	if err != nil {
		return err
	}
	r.updateHistory(ctx, ev)

	switch ev.Kind {
	case tasks.EventCompleted:
		r.writePlain("✓ %s\n", ev.Message)
	case tasks.EventCancelled:
		r.writePlain("%s\n", ev.Message)
		return nil
	default:
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, ev.Message)
	}

	if cmd.Bool("no-save") {
		r.writePlain("Task: %s\n", taskID)
		return nil
	}

	path, err := tasks.SaveTaskResult(ctx, r.api, taskID, kind, cmd.String("output"))
	if err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}
	r.writePlain("Salvo em %s\n", path)
	return nil
}

// followTask polls taskID, printing each new status line, and returns the terminal event.
func (r *Runner) followTask(ctx context.Context, taskID string, kind models.DownloadType) (tasks.TaskEvent, error) {
	progress := make(chan tasks.TaskEvent, 16)
	done := make(chan tasks.TaskEvent, 1)
	sendProgress, sendDone := tasks.ChannelListener(progress), tasks.ChannelListener(done)

	poller := tasks.NewTaskPoller(r.api, tasks.TaskPollerOpts{
		Interval:  r.config.Polling.ProgressInterval(),
		Scheduler: r.scheduler,
		Logger:    r.logger,
		Listener: func(ev tasks.TaskEvent) {
			if ev.Terminal() {
				sendDone(ev)
				return
			}
			sendProgress(ev)
		},
	})
	defer poller.Stop()

	if err := poller.Start(ctx, taskID, kind); err != nil {
		return tasks.TaskEvent{}, err
	}

	var last string
	report := func(ev tasks.TaskEvent) {
		line := fmt.Sprintf("[%3d%%] %s", ev.Percent, ev.StatusLine)
		if line != last {
			r.writePlain("%s\n", line)
			last = line
		}
	}

	for {
		select {
		case <-ctx.Done():
			return tasks.TaskEvent{}, ctx.Err()
		case ev := <-progress:
			report(ev)
		case ev := <-done:
			for len(progress) > 0 {
				report(<-progress)
			}
			return ev, nil
		}
	}
}

func (r *Runner) recordHistory(ctx context.Context, entry *models.HistoryEntry) {
	if r.history == nil {
		return
	}
	if err := r.history.Create(ctx, entry); err != nil {
		r.logger.Warn("failed to record download", "task", entry.TaskID, "err", err)
	}
}

func (r *Runner) updateHistory(ctx context.Context, ev tasks.TaskEvent) {
	if r.history == nil {
		return
	}
	if err := r.history.UpdateStatus(ctx, ev.TaskID, ev.Task.Status, ev.Message); err != nil {
		r.logger.Warn("failed to update download history", "task", ev.TaskID, "err", err)
	}
}
