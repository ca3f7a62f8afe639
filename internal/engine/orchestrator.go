// Package engine drives a listing site through its filter form and extracts
// the resulting listings.
package engine

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/apartsfinder/afind/internal/driver"
	"github.com/apartsfinder/afind/internal/filter"
	"github.com/apartsfinder/afind/internal/observer"
	"github.com/apartsfinder/afind/internal/ratelimit"
	"github.com/apartsfinder/afind/internal/site"
	"github.com/apartsfinder/afind/pkg/models"
)

const (
	DefaultWidth        = 1024
	DefaultHeight       = 768
	DefaultImplicitWait = 15 * time.Second
)

// Orchestrator owns one automation session against one site.
// It is not safe for concurrent use.
type Orchestrator struct {
	drv     driver.Driver
	site    site.Site
	cfg     filter.Configuration
	obs     observer.Observer
	limiter ratelimit.Limiter
	width   int
	height  int
	wait    time.Duration

	closeOnce sync.Once
	closeErr  error
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithObserver sets the notification receiver; nil disables notifications
func WithObserver(obs observer.Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.obs = obs
		}
	}
}

// WithLimiter gates the initial navigation
func WithLimiter(l ratelimit.Limiter) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.limiter = l
		}
	}
}

// WithViewport overrides the window size
func WithViewport(width, height int) Option {
	return func(o *Orchestrator) {
		o.width, o.height = width, height
	}
}

// WithImplicitWait overrides how long element lookups wait
func WithImplicitWait(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.wait = d
	}
}

// New binds drv to s and cfg, sizes the window and sets the lookup wait.
// The caller keeps ownership of drv if New fails.
func New(ctx context.Context, drv driver.Driver, s site.Site, cfg filter.Configuration, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		drv:     drv,
		site:    s,
		cfg:     cfg,
		obs:     observer.Nop{},
		limiter: ratelimit.Unlimited{},
		width:   DefaultWidth,
		height:  DefaultHeight,
		wait:    DefaultImplicitWait,
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := drv.SetViewport(ctx, o.width, o.height); err != nil {
		fault := NewEngineError(ErrCodeSession, "failed to set viewport", err).
			WithDetail("width", o.width).
			WithDetail("height", o.height)
		o.obs.Fault(fault)
		return nil, fault
	}
	drv.SetImplicitWait(o.wait)

	o.obs.SessionCreated(observer.SessionInfo{
		Site:         s.Name(),
		Width:        o.width,
		Height:       o.height,
		ImplicitWait: o.wait,
	})
	return o, nil
}

// ApplyConfiguration opens the site and fills in the filter form.
// It stops at the first fault, reports it once and returns false.
func (o *Orchestrator) ApplyConfiguration(ctx context.Context) bool {
	if err := o.configure(ctx); err != nil {
		o.obs.Fault(err)
		return false
	}
	o.obs.ConfigurationCompleted()
	return true
}

func (o *Orchestrator) configure(ctx context.Context) error {
	if err := o.open(ctx); err != nil {
		return err
	}
	if err := o.selectCategory(ctx); err != nil {
		return err
	}
	if err := o.setRooms(ctx); err != nil {
		return err
	}
	return o.setPrice(ctx)
}

func (o *Orchestrator) open(ctx context.Context) error {
	url := o.site.BaseURL()
	if err := o.limiter.Wait(ctx, url); err != nil {
		return NewEngineError(ErrCodeNavigation, "navigation not admitted", err).WithDetail("url", url)
	}
	if err := o.drv.Navigate(ctx, url); err != nil {
		return NewEngineError(ErrCodeNavigation, "failed to open site", err).WithDetail("url", url)
	}
	return nil
}

func (o *Orchestrator) selectCategory(ctx context.Context) error {
	if err := o.click(ctx, o.site.Category()); err != nil {
		return NewEngineError(ErrCodeCategory, "failed to select category", err)
	}
	o.obs.SiteSelected(o.site.BaseURL())
	return nil
}

// setRooms clicks the room checkboxes. With no rooms configured the
// zero-room (studio) option is chosen.
func (o *Orchestrator) setRooms(ctx context.Context) error {
	rooms := o.cfg.Rooms()
	if len(rooms) == 0 {
		rooms = []int{0}
	}

	for _, n := range rooms {
		loc, ok := o.site.Room(n)
		if !ok {
			return NewEngineError(ErrCodeRooms, "failed to set rooms", ErrUnknownRoomCount).WithDetail("rooms", n)
		}
		if err := o.click(ctx, loc); err != nil {
			return NewEngineError(ErrCodeRooms, "failed to set rooms", err).WithDetail("rooms", n)
		}
	}

	o.obs.RoomsConfigured(rooms)
	return nil
}

// setPrice types the bounds into the price inputs. The form is left
// unsubmitted.
func (o *Orchestrator) setPrice(ctx context.Context) error {
	price, ok := o.cfg.Price()
	if !ok {
		return nil
	}

	lower, upper := o.site.PriceBounds()
	if err := o.fill(ctx, lower, strconv.Itoa(price.Lower)); err != nil {
		return NewEngineError(ErrCodePrice, "failed to set lower price", err).WithDetail("price", price.String())
	}
	if err := o.fill(ctx, upper, strconv.Itoa(price.Upper)); err != nil {
		return NewEngineError(ErrCodePrice, "failed to set upper price", err).WithDetail("price", price.String())
	}

	o.obs.PriceConfigured(price)
	return nil
}

func (o *Orchestrator) click(ctx context.Context, loc driver.Locator) error {
	el, err := o.drv.FindElement(ctx, loc)
	if err != nil {
		return err
	}
	return el.Click(ctx)
}

func (o *Orchestrator) fill(ctx context.Context, loc driver.Locator, text string) error {
	el, err := o.drv.FindElement(ctx, loc)
	if err != nil {
		return err
	}
	return el.SendKeys(ctx, text)
}

// CollectRecords extracts one record per listing container on the current
// page. Field faults leave that field nil; a container lookup fault yields
// an empty batch. Faults are reported, never returned.
func (o *Orchestrator) CollectRecords(ctx context.Context) []models.Apartment {
	o.obs.ExtractionStarted()

	containers, err := o.drv.FindElements(ctx, o.site.ListingContainer())
	if err != nil {
		o.obs.Fault(NewEngineError(ErrCodeContainer, "failed to find listings", err))
		containers = nil
	}

	records := make([]models.Apartment, 0, len(containers))
	for _, el := range containers {
		if err := ctx.Err(); err != nil {
			o.obs.Fault(NewEngineError(ErrCodeContainer, "extraction interrupted", err).WithDetail("extracted", len(records)))
			break
		}

		var record models.Apartment
		for _, f := range models.ExtractedFields {
			record.Set(f, o.extract(ctx, el, f))
		}
		records = append(records, record)
		o.obs.RecordExtracted(record)
	}

	o.obs.BatchCompleted(len(records), 1)
	return records
}

// extract reads one field below el. A fault is reported and yields nil.
func (o *Orchestrator) extract(ctx context.Context, el driver.Element, f models.Field) *string {
	v, err := o.read(ctx, el, o.site.Field(f))
	if err != nil {
		o.obs.Fault(NewEngineError(ErrCodeField, "failed to extract "+string(f), err).WithDetail("field", string(f)))
		return nil
	}
	return &v
}

func (o *Orchestrator) read(ctx context.Context, el driver.Element, loc site.FieldLocator) (string, error) {
	child, err := el.FindElement(ctx, loc.Locator)
	if err != nil {
		return "", err
	}
	if loc.Attribute != "" {
		return child.Attribute(ctx, loc.Attribute)
	}
	return child.Text(ctx)
}

// Deinit waits for delay, or until ctx is done, then closes the session
func (o *Orchestrator) Deinit(ctx context.Context, delay time.Duration) error {
	if delay > 0 {
		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}
	return o.Close()
}

// Close ends the driver session. Safe to call multiple times; the driver
// is closed and SessionTornDown emitted only once.
func (o *Orchestrator) Close() error {
	o.closeOnce.Do(func() {
		o.closeErr = o.drv.Close()
		o.obs.SessionTornDown()
	})
	return o.closeErr
}
