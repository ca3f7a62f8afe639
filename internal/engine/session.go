package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/apartsfinder/afind/internal/driver"
	"github.com/apartsfinder/afind/internal/filter"
	"github.com/apartsfinder/afind/internal/observer"
	"github.com/apartsfinder/afind/internal/reqctx"
	"github.com/apartsfinder/afind/internal/site"
	"github.com/apartsfinder/afind/pkg/models"
)

// DefaultTeardownDelay is the pause between extraction and closing the browser
const DefaultTeardownDelay = 2500 * time.Millisecond

// ObserverFunc builds the observer for one request. ctx carries the request id.
type ObserverFunc func(ctx context.Context) observer.Observer

// Runner performs one complete session per call: open a driver, apply the
// filter, extract, tear down.
type Runner struct {
	factory  driver.Factory
	observe  ObserverFunc
	teardown time.Duration
	opts     []Option
}

// NewRunner creates a Runner opening sessions with factory
func NewRunner(factory driver.Factory, teardown time.Duration, opts ...Option) *Runner {
	if teardown < 0 {
		teardown = 0
	}
	return &Runner{
		factory:  factory,
		teardown: teardown,
		opts:     opts,
	}
}

// WithObserverFunc sets the per-request observer builder
func (r *Runner) WithObserverFunc(fn ObserverFunc) *Runner {
	r.observe = fn
	return r
}

// Run executes one request against s. Configuration failures are reported
// through the observer and returned as ErrConfigurationFailed; extraction
// faults only surface through the observer.
func (r *Runner) Run(ctx context.Context, s site.Site, cfg filter.Configuration) ([]models.Apartment, error) {
	ctx = reqctx.WithRequestContext(ctx, s.Name())

	drv, err := r.factory(ctx)
	if err != nil {
		return nil, reqctx.NewRequestError(ctx, fmt.Errorf("failed to open driver: %w", err))
	}

	opts := append([]Option(nil), r.opts...)
	if r.observe != nil {
		opts = append(opts, WithObserver(r.observe(ctx)))
	}

	o, err := New(ctx, drv, s, cfg, opts...)
	if err != nil {
		_ = drv.Close()
		return nil, reqctx.NewRequestError(ctx, err)
	}
	defer o.Close()

	if !o.ApplyConfiguration(ctx) {
		_ = o.Deinit(ctx, r.teardown)
		return nil, reqctx.NewRequestError(ctx, ErrConfigurationFailed)
	}

	records := o.CollectRecords(ctx)
	if err := o.Deinit(ctx, r.teardown); err != nil {
		logger := reqctx.Logger(ctx)
		logger.Warn().Err(err).Msg("Failed to close driver")
	}
	return records, nil
}
