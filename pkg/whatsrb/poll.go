package whatsrb

import (
	"context"
	"fmt"
	"time"
)

// WaitOptions bounds a polling loop. Zero fields fall back to the defaults of
// the operation being waited on.
type WaitOptions struct {
	// Timeout is the overall deadline for the wait, measured from the first
	// poll. It does not change the per-request timeout.
	Timeout time.Duration
	// Interval is the pause between polls.
	Interval time.Duration
}

const (
	defaultQRTimeout       = 60 * time.Second
	defaultAccountTimeout  = 300 * time.Second
	defaultPollingInterval = 2 * time.Second
)

func (o WaitOptions) withDefaults(timeout time.Duration) WaitOptions {
	if o.Timeout <= 0 {
		o.Timeout = timeout
	}
	if o.Interval <= 0 {
		o.Interval = defaultPollingInterval
	}
	return o
}

// pollUntil runs step until it reports done or fails. The deadline is only
// evaluated after step, so a terminal state observed at the deadline wins
// over the timeout.
func pollUntil(ctx context.Context, clock Clock, opts WaitOptions, timeoutMessage string, step func(context.Context) (bool, error)) error {
	deadline := clock.Now().Add(opts.Timeout)
	for {
		done, err := step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if !clock.Now().Before(deadline) {
			return newError(ErrTimeout, timeoutMessage)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("whatsrb: wait cancelled: %w", ctx.Err())
		case <-clock.After(opts.Interval):
		}
	}
}
