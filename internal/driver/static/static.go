// Package static implements driver.Driver over a parsed HTML snapshot.
//
// Pages are fetched once per navigation (over HTTP with colly, or read from
// disk) and queried with goquery and htmlquery. Interactions do not change the
// page; they are recorded so callers can inspect what the engine did.
package static

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/apartsfinder/afind/internal/driver"
	urlutil "github.com/apartsfinder/afind/internal/utils/url"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
)

var errNoPage = errors.New("no page loaded")

// Options configures HTTP fetching of snapshots
type Options struct {
	UserAgent string
	Proxy     string
	Timeout   time.Duration
	Headers   map[string]string
}

// Action names a recorded interaction
type Action string

const (
	ActionClick    Action = "click"
	ActionSendKeys Action = "send_keys"
)

// Interaction is one click or keystroke sequence applied to an element
type Interaction struct {
	Action  Action
	Locator driver.Locator
	Text    string
}

// Driver serves lookups from the last navigated snapshot
type Driver struct {
	opts Options

	mu           sync.Mutex
	doc          *goquery.Document
	url          string
	width        int
	height       int
	wait         time.Duration
	interactions []Interaction
	closed       bool
}

// New creates a snapshot driver
func New(opts Options) *Driver {
	return &Driver{opts: opts}
}

// Factory returns a driver.Factory producing snapshot drivers
func Factory(opts Options) driver.Factory {
	return func(ctx context.Context) (driver.Driver, error) {
		return New(opts), nil
	}
}

// Navigate loads target, an http(s) URL, a file:// URL or a filesystem path
func (d *Driver) Navigate(ctx context.Context, target string) error {
	if err := d.checkOpen("navigate"); err != nil {
		return err
	}

	var (
		body []byte
		err  error
	)
	if urlutil.IsRemote(target) {
		body, err = d.fetch(ctx, target)
	} else {
		body, err = os.ReadFile(urlutil.LocalPath(target))
	}
	if err != nil {
		return driver.NewFault(driver.CodeNavigation, "navigate", driver.Locator{}, fmt.Errorf("%s: %w", target, err))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return driver.NewFault(driver.CodeNavigation, "navigate", driver.Locator{}, fmt.Errorf("failed to parse HTML: %w", err))
	}

	d.mu.Lock()
	d.doc = doc
	d.url = target
	d.mu.Unlock()

	log.Debug().Str("url", target).Int("bytes", len(body)).Msg("Snapshot loaded")
	return nil
}

func (d *Driver) fetch(ctx context.Context, target string) ([]byte, error) {
	c := colly.NewCollector(
		colly.StdlibContext(ctx),
	)
	if d.opts.UserAgent != "" {
		c.UserAgent = d.opts.UserAgent
	}
	if d.opts.Timeout > 0 {
		c.SetRequestTimeout(d.opts.Timeout)
	}
	if d.opts.Proxy != "" {
		if err := c.SetProxy(d.opts.Proxy); err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
	}
	if len(d.opts.Headers) > 0 {
		c.OnRequest(func(r *colly.Request) {
			for k, v := range d.opts.Headers {
				r.Headers.Set(k, v)
			}
		})
	}

	var (
		body     []byte
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		fetchErr = err
	})

	if err := c.Visit(target); err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return body, nil
}

// FindElement returns the first element in the snapshot matching loc
func (d *Driver) FindElement(ctx context.Context, loc driver.Locator) (driver.Element, error) {
	root, err := d.root("find_element")
	if err != nil {
		return nil, err
	}
	return d.first(root, loc)
}

// FindElements returns every element in the snapshot matching loc
func (d *Driver) FindElements(ctx context.Context, loc driver.Locator) ([]driver.Element, error) {
	root, err := d.root("find_elements")
	if err != nil {
		return nil, err
	}
	return d.all(root, loc)
}

// SetViewport records the requested window size
func (d *Driver) SetViewport(ctx context.Context, width, height int) error {
	if err := d.checkOpen("set_viewport"); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return driver.NewFault(driver.CodeInteraction, "set_viewport", driver.Locator{}, fmt.Errorf("invalid size %dx%d", width, height))
	}
	d.mu.Lock()
	d.width, d.height = width, height
	d.mu.Unlock()
	return nil
}

// SetImplicitWait records the lookup timeout; snapshots never change so lookups do not wait
func (d *Driver) SetImplicitWait(wait time.Duration) {
	d.mu.Lock()
	d.wait = wait
	d.mu.Unlock()
}

// Close releases the snapshot. Safe to call multiple times.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.doc = nil
	return nil
}

// URL returns the address of the loaded snapshot
func (d *Driver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

// Viewport returns the last size passed to SetViewport
func (d *Driver) Viewport() (width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

// ImplicitWait returns the last value passed to SetImplicitWait
func (d *Driver) ImplicitWait() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wait
}

// Interactions returns a copy of the recorded interactions in order
func (d *Driver) Interactions() []Interaction {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Interaction, len(d.interactions))
	copy(out, d.interactions)
	return out
}

// Closed reports whether Close has been called
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Driver) checkOpen(op string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return driver.NewFault(driver.CodeSessionClosed, op, driver.Locator{}, nil)
	}
	return nil
}

func (d *Driver) root(op string) (*goquery.Selection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, driver.NewFault(driver.CodeSessionClosed, op, driver.Locator{}, nil)
	}
	if d.doc == nil {
		return nil, driver.NewFault(driver.CodeNavigation, op, driver.Locator{}, errNoPage)
	}
	return d.doc.Selection, nil
}

func (d *Driver) record(i Interaction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return driver.NewFault(driver.CodeSessionClosed, string(i.Action), i.Locator, nil)
	}
	d.interactions = append(d.interactions, i)
	return nil
}

// query evaluates loc below scope. XPath expressions are evaluated against
// the whole document, matching browser semantics for absolute paths.
func (d *Driver) query(scope *goquery.Selection, loc driver.Locator) (*goquery.Selection, error) {
	if loc.By == driver.ByXPath {
		d.mu.Lock()
		doc := d.doc
		d.mu.Unlock()
		if doc == nil || len(scope.Nodes) == 0 {
			return nil, driver.NewFault(driver.CodeNavigation, "xpath", loc, errNoPage)
		}
		top := scope.Nodes[0]
		if strings.HasPrefix(loc.Value, "/") {
			top = doc.Nodes[0]
		}
		nodes, err := htmlquery.QueryAll(top, loc.Value)
		if err != nil {
			return nil, driver.NewFault(driver.CodeUnsupportedLocator, "xpath", loc, err)
		}
		return doc.FindNodes(nodes...), nil
	}

	sel, err := loc.Selector()
	if err != nil {
		return nil, err
	}
	return scope.Find(sel), nil
}

func (d *Driver) first(scope *goquery.Selection, loc driver.Locator) (driver.Element, error) {
	found, err := d.query(scope, loc)
	if err != nil {
		return nil, err
	}
	if found.Length() == 0 {
		return nil, driver.NewFault(driver.CodeNoSuchElement, "find_element", loc, nil)
	}
	return &element{d: d, sel: found.First(), loc: loc}, nil
}

func (d *Driver) all(scope *goquery.Selection, loc driver.Locator) ([]driver.Element, error) {
	found, err := d.query(scope, loc)
	if err != nil {
		return nil, err
	}
	out := make([]driver.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &element{d: d, sel: s, loc: loc})
	})
	return out, nil
}
