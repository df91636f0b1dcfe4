// Package tasks keeps the client in sync with long-running backend work.
//
// # Pollers
//
// [TaskPoller] follows one download by id until the backend reports completed, error or cancelled.
// [QueuePoller] follows the whole batch queue and picks its own rate with [CadenceFor]:
// fast while an item is processing, slow while items are only queued, stopped otherwise.
//
// Both own at most one timer, obtained from a [Scheduler]. [TickerScheduler] is the real one; tests use a
// manual scheduler and fire ticks themselves. Responses that arrive after their loop was replaced or stopped
// are dropped.
//
// # Queue Rows
//
// [BuildSnapshot] is a pure function of the queue items: per-status [Stats], the [Badge] count, the
// [Cadence] and the [Action] set of each row.
//
// # Library
//
// [Library] holds the listing sorted newest first plus a selection set. Batch deletes go through a
// [rate.Limiter] and always clear the selection.
//
// # Progress Reporting
//
// Listeners and [ProgressUpdate] channels never block the sender. [ChannelListener] adapts a channel to a
// listener func.
package tasks
