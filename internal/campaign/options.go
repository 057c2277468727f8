package campaign

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mergeflow/pkg/activity"
	"github.com/dmitrymomot/mergeflow/pkg/logger"
	"github.com/dmitrymomot/mergeflow/pkg/mailer"
)

type options struct {
	logger    *slog.Logger
	activity  activity.Log
	converter Converter
	locator   mailer.Locator
	bounces   mailer.BounceChecker
	now       func() time.Time
	sleep     func(context.Context, time.Duration) error
}

// Option configures a Generator, Tracker or Reconciler. Options a
// component does not use are ignored.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		logger: logger.NewNope(),
		now:    time.Now,
		sleep:  sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithActivityLog appends every outcome and batch summary to l.
func WithActivityLog(l activity.Log) Option {
	return func(o *options) {
		o.activity = l
	}
}

// WithConverter enables the PDF operations.
func WithConverter(c Converter) Option {
	return func(o *options) {
		o.converter = c
	}
}

// WithLocator looks up message ids the transport did not return.
func WithLocator(l mailer.Locator) Option {
	return func(o *options) {
		o.locator = l
	}
}

// WithBounceChecker enables bounce polling.
func WithBounceChecker(b mailer.BounceChecker) Option {
	return func(o *options) {
		o.bounces = b
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithSleep replaces the inter-send wait.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(o *options) {
		if fn != nil {
			o.sleep = fn
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
