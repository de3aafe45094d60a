package syncer

import (
	"context"
	"time"
)

// DefaultDebounce coalesces the burst of change notifications a review
// session produces into one sync round trip.
const DefaultDebounce = time.Second

// Debouncer listens on a change channel and invokes fn once per burst
// of notifications. It keeps the timing policy outside the record store
// and the orchestrator.
type Debouncer struct {
	delay time.Duration
	fn    func(ctx context.Context)
}

func NewDebouncer(delay time.Duration, fn func(ctx context.Context)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		delay: delay,
		fn:    fn,
	}
}

// Run blocks until ctx is done, firing fn after each quiet period that
// follows one or more change notifications. A notification still
// pending at shutdown is flushed with a detached context, so the final
// sync of a session is not aborted by the session's own cancellation.
func (d *Debouncer) Run(ctx context.Context, changes <-chan struct{}) {
	timer := time.NewTimer(d.delay)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			if pending {
				d.fn(context.WithoutCancel(ctx))
			}
			return
		case <-changes:
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(d.delay)
			pending = true
		case <-timer.C:
			pending = false
			d.fn(ctx)
		}
	}
}
