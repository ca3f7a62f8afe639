// Package chrome implements driver.Driver on a live Chrome session via chromedp.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/apartsfinder/afind/internal/driver"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Options configures the browser process
type Options struct {
	Headless   bool
	ChromePath string
	UserAgent  string
	Proxy      string
	Cookies    []*network.CookieParam
	Headers    map[string]string
	ExtraArgs  []chromedp.ExecAllocatorOption
}

// Driver is one Chrome tab
type Driver struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	// exec runs actions in the tab; nil means chromedp.Run
	exec func(context.Context, ...chromedp.Action) error

	mu     sync.Mutex
	wait   time.Duration
	closed bool
}

// minInteractionWait bounds clicks and keystrokes when the implicit wait is off
const minInteractionWait = time.Second

var errNotInteractable = errors.New("element not interactable")

// Factory returns a driver.Factory launching a browser per session
func Factory(opts Options) driver.Factory {
	return func(ctx context.Context) (driver.Driver, error) {
		return New(ctx, opts)
	}
}

// New launches Chrome and opens a tab. Cookies and extra headers are
// installed before the first navigation.
func New(ctx context.Context, opts Options) (*Driver, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	tabCtx, cancel := chromedp.NewContext(allocCtx)

	start := []chromedp.Action{}
	if len(opts.Headers) > 0 {
		headers := network.Headers{}
		for k, v := range opts.Headers {
			headers[k] = v
		}
		start = append(start, network.Enable(), network.SetExtraHTTPHeaders(headers))
	}
	if len(opts.Cookies) > 0 {
		cookies := opts.Cookies
		start = append(start, chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetCookies(cookies).Do(ctx)
		}))
	}

	if err := chromedp.Run(tabCtx, start...); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Debug().
		Bool("headless", opts.Headless).
		Int("cookies", len(opts.Cookies)).
		Int("headers", len(opts.Headers)).
		Msg("Browser session started")

	return &Driver{ctx: tabCtx, cancel: cancel, allocCancel: allocCancel}, nil
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("log-level", "3"),
	}

	path := opts.ChromePath
	if path == "" {
		path = Find()
	}
	if path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}

	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	return append(allocOpts, opts.ExtraArgs...)
}

// Navigate loads url and waits for the page load event
func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := d.run(ctx, 0, chromedp.Navigate(url)); err != nil {
		return d.fault(driver.CodeNavigation, "navigate", driver.Locator{}, fmt.Errorf("%s: %w", url, err))
	}
	return nil
}

// FindElement waits up to the implicit wait for the first match of loc
func (d *Driver) FindElement(ctx context.Context, loc driver.Locator) (driver.Element, error) {
	return d.findFirst(ctx, loc, nil)
}

// FindElements waits up to the implicit wait for at least one match of loc.
// An empty result after the wait is not a fault.
func (d *Driver) FindElements(ctx context.Context, loc driver.Locator) ([]driver.Element, error) {
	return d.findAll(ctx, loc, nil)
}

// SetViewport resizes the tab's layout viewport
func (d *Driver) SetViewport(ctx context.Context, width, height int) error {
	if err := d.run(ctx, 0, chromedp.EmulateViewport(int64(width), int64(height))); err != nil {
		return d.fault(driver.CodeInteraction, "set_viewport", driver.Locator{}, err)
	}
	return nil
}

// SetImplicitWait bounds how long lookups poll for a match
func (d *Driver) SetImplicitWait(wait time.Duration) {
	d.mu.Lock()
	d.wait = wait
	d.mu.Unlock()
}

// Close shuts the browser down. Safe to call multiple times.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	err := chromedp.Cancel(d.ctx)
	d.cancel()
	d.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	log.Debug().Msg("Browser session closed")
	return nil
}

func (d *Driver) implicitWait() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wait
}

func (d *Driver) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// run executes actions in the tab, bounded by the caller's context and,
// when timeout > 0, by a deadline.
func (d *Driver) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if d.isClosed() {
		return driver.ErrSessionClosed
	}

	runCtx, cancel := context.WithCancel(d.ctx)
	defer cancel()
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, timeout)
		defer cancelTimeout()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if d.exec != nil {
		return d.exec(runCtx, actions...)
	}
	return chromedp.Run(runCtx, actions...)
}

// interact runs an action on an element that chromedp first waits to be
// visible, bounded by the implicit wait.
func (d *Driver) interact(ctx context.Context, op string, loc driver.Locator, action chromedp.Action) error {
	wait := d.implicitWait()
	if wait <= 0 {
		wait = minInteractionWait
	}
	err := d.run(ctx, wait, action)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		err = fmt.Errorf("%w after %s", errNotInteractable, wait)
	}
	return d.fault(driver.CodeInteraction, op, loc, err)
}

func (d *Driver) fault(code driver.FaultCode, op string, loc driver.Locator, err error) error {
	var f *driver.Fault
	if errors.As(err, &f) && f.Code == driver.CodeSessionClosed {
		return driver.NewFault(driver.CodeSessionClosed, op, loc, nil)
	}
	return driver.NewFault(code, op, loc, err)
}

// query builds the chromedp selector and options for loc, scoped below
// parent when it is non-nil.
func query(loc driver.Locator, parent *cdp.Node) (string, []chromedp.QueryOption, error) {
	if loc.By == driver.ByXPath {
		if parent != nil && (len(loc.Value) == 0 || loc.Value[0] != '/') {
			return "", nil, driver.NewFault(driver.CodeUnsupportedLocator, "query", loc, errors.New("relative xpath below an element"))
		}
		return loc.Value, []chromedp.QueryOption{chromedp.BySearch}, nil
	}

	sel, err := loc.Selector()
	if err != nil {
		return "", nil, err
	}
	opts := []chromedp.QueryOption{chromedp.ByQueryAll}
	if parent != nil {
		opts = append(opts, chromedp.FromNode(parent))
	}
	return sel, opts, nil
}

func (d *Driver) lookup(ctx context.Context, loc driver.Locator, parent *cdp.Node) ([]*cdp.Node, error) {
	sel, opts, err := query(loc, parent)
	if err != nil {
		return nil, err
	}

	wait := d.implicitWait()
	if wait <= 0 {
		opts = append(opts, chromedp.AtLeast(0))
	}

	var nodes []*cdp.Node
	err = d.run(ctx, wait, chromedp.Nodes(sel, &nodes, opts...))
	switch {
	case err == nil:
		return nodes, nil
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return nil, nil
	default:
		return nil, d.fault(driver.CodeInteraction, "find", loc, err)
	}
}

func (d *Driver) findAll(ctx context.Context, loc driver.Locator, parent *cdp.Node) ([]driver.Element, error) {
	nodes, err := d.lookup(ctx, loc, parent)
	if err != nil {
		return nil, err
	}
	out := make([]driver.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &element{d: d, node: n, loc: loc})
	}
	return out, nil
}

func (d *Driver) findFirst(ctx context.Context, loc driver.Locator, parent *cdp.Node) (driver.Element, error) {
	nodes, err := d.lookup(ctx, loc, parent)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, driver.NewFault(driver.CodeNoSuchElement, "find_element", loc, nil)
	}
	return &element{d: d, node: nodes[0], loc: loc}, nil
}
