package tasks

import (
	"sync"
	"time"
)

// Handle cancels a repeating timer. Stop is idempotent.
type Handle interface {
	Stop()
}

// Scheduler installs repeating timers. Pollers take one so tests can drive ticks by hand.
type Scheduler interface {
	Every(d time.Duration, fn func()) Handle
}

// TickerScheduler is the [Scheduler] backed by [time.Ticker]; each tick runs fn in its own goroutine
// so a slow request never delays the next tick.
type TickerScheduler struct{}

type tickerHandle struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// Every calls fn every d until the returned handle is stopped. The first call happens after d.
func (TickerScheduler) Every(d time.Duration, fn func()) Handle {
	h := &tickerHandle{ticker: time.NewTicker(d), done: make(chan struct{})}

	go func() {
		for {
			select {
			case <-h.ticker.C:
				go fn()
			case <-h.done:
				return
			}
		}
	}()

	return h
}

func (h *tickerHandle) Stop() {
	h.once.Do(func() {
		h.ticker.Stop()
		close(h.done)
	})
}
