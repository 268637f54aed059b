package relayout

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a relayout runs.
const DefaultDebounce = 120 * time.Millisecond

// Debouncer coalesces bursts of triggers into single runs of fn.
//
// A trigger (re)arms a timer. When it fires fn runs, unless a run is already
// in flight: runs are never cancelled, the trigger instead marks one
// follow-up run that starts as soon as the current one returns. Any number
// of triggers during a run collapse into that single follow-up.
type Debouncer struct {
	ctx   context.Context
	delay time.Duration
	fn    func(context.Context)

	mu      sync.Mutex
	idle    *sync.Cond
	timer   *time.Timer
	gen     uint64
	running bool
	pending bool
	stopped bool
	runs    int
}

// NewDebouncer returns a debouncer that calls fn with ctx.
func NewDebouncer(ctx context.Context, delay time.Duration, fn func(context.Context)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	d := &Debouncer{ctx: ctx, delay: delay, fn: fn}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Trigger schedules a run after the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	if d.running {
		d.pending = true
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	for {
		if d.ctx.Err() == nil {
			d.fn(d.ctx)
		}
		d.mu.Lock()
		d.runs++
		if d.pending && !d.stopped {
			d.pending = false
			d.mu.Unlock()
			continue
		}
		d.pending = false
		d.running = false
		d.idle.Broadcast()
		d.mu.Unlock()
		return
	}
}

// Wait blocks until no run is scheduled or in flight.
func (d *Debouncer) Wait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.timer != nil || d.running {
		d.idle.Wait()
	}
}

// Runs returns how many runs have completed.
func (d *Debouncer) Runs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runs
}

// Stop cancels a scheduled run. A run in flight completes, without a
// follow-up.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.idle.Broadcast()
}
