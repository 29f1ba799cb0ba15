// Package debounce provides the shared debounce/cancellation utility used by
// the interactive components: action is delayed until input activity pauses,
// and a firing action aborts the previous in-flight one.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls. Each Do replaces the pending call; when
// the wait window elapses, the previous in-flight invocation is cancelled and
// the latest function runs with a fresh context. At most one invocation is
// active at a time.
type Debouncer struct {
	mu      sync.Mutex
	wait    time.Duration
	timer   *time.Timer
	cancel  context.CancelFunc
	stopped bool
}

// New creates a debouncer with the given wait window.
func New(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Do schedules fn to run after the wait window, replacing any pending call.
// fn runs on a timer goroutine and must honor its context.
func (d *Debouncer) Do(fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() {
		d.fire(fn)
	})
}

func (d *Debouncer) fire(fn func(ctx context.Context)) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	fn(ctx)
}

// Cancel drops any pending call and aborts the in-flight invocation. The
// debouncer stays usable.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Stop cancels like Cancel and permanently disables the debouncer.
func (d *Debouncer) Stop() {
	d.Cancel()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
