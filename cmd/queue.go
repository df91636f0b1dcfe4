package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/downyt/internal/formatter"
	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
	"github.com/desertthunder/downyt/internal/tasks"
	"github.com/urfave/cli/v3"
)

// QueueAdd validates every URL before sending them in one batch request.
func (r *Runner) QueueAdd(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.Args().Slice()
	if path := cmd.String("file"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read URL file: %w", err)
		}
		raw = append(raw, shared.SplitURLs(string(content))...)
	}

	if len(raw) == 0 {
		return fmt.Errorf("%w: no URLs", shared.ErrMissingArgument)
	}

	urls := make([]string, 0, len(raw))
	for _, u := range raw {
		valid, err := shared.ValidateURL(u)
		if err != nil {
			return err
		}
		urls = append(urls, valid)
	}

	r.withStores()
	resp, err := r.api.Batch(ctx, urls)
	if err != nil {
		return fmt.Errorf("failed to add to queue: %w", err)
	}

	if resp.Message != "" {
		r.writePlain("%s\n", resp.Message)
	}
	for _, item := range resp.Items {
		r.writePlain("+ %s  %s\n", item.ID, item.URL)
	}
	return nil
}

// QueueList prints the queue once.
func (r *Runner) QueueList(ctx context.Context, cmd *cli.Command) error {
	resp, err := r.api.Queue(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch queue: %w", err)
	}

	snap := tasks.BuildSnapshot(*resp)
	if cmd.Bool("json") {
		return r.writeJSON(snap, true)
	}

	r.writePlain("%s\n", formatter.QueueTable(snap, formatter.ShouldColorize(r.output)))
	return nil
}

// QueueWatch redraws the queue on every poll and returns once the poller stops because nothing is queued
// or processing.
func (r *Runner) QueueWatch(ctx context.Context, cmd *cli.Command) error {
	snapshots := make(chan tasks.QueueSnapshot, 16)
	poller := tasks.NewQueuePoller(r.api, tasks.QueuePollerOpts{
		Fast:      r.config.Polling.QueueFast(),
		Slow:      r.config.Polling.QueueSlow(),
		Scheduler: r.scheduler,
		Logger:    r.logger,
		Listener:  tasks.ChannelListener(snapshots),
	})
	defer poller.Stop()

	if err := poller.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to fetch queue: %w", err)
	}

	colorize := formatter.ShouldColorize(r.output)
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-snapshots:
			r.writePlain("%s\n", formatter.QueueTable(snap, colorize))
			if snap.Cadence == tasks.CadenceStopped {
				return nil
			}
		}
	}
}

// QueueRemove removes one item from the queue.
func (r *Runner) QueueRemove(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.StringArg("task-id")
	if taskID == "" {
		return fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}

	if err := r.api.RemoveFromQueue(ctx, taskID); err != nil {
		return fmt.Errorf("failed to remove %s: %w", taskID, err)
	}
	r.writePlain("Item removido da fila\n")
	return nil
}

// QueueClear empties the queue.
func (r *Runner) QueueClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.api.ClearQueue(ctx); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	r.writePlain("Fila limpa\n")
	return nil
}

// QueueGet saves the result of a completed task. The task's type picks a file or a zip download.
func (r *Runner) QueueGet(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.StringArg("task-id")
	if taskID == "" {
		return fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}

	task, err := r.api.Progress(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to fetch task: %w", err)
	}
	if task.Status != models.StatusCompleted {
		return fmt.Errorf("%w: task %s is %s", shared.ErrInvalidArgument, taskID, tasks.StatusLabel(task.Status))
	}

	kind := task.Type
	if kind == "" {
		kind = models.TypeVideo
	}

	path, err := tasks.SaveTaskResult(ctx, r.api, taskID, kind, cmd.String("output"))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", taskID, err)
	}
	r.writePlain("Salvo em %s\n", path)
	return nil
}
