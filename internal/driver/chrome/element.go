package chrome

import (
	"context"
	"strings"

	"github.com/apartsfinder/afind/internal/driver"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// properties a browser reports resolved against the document URL
var urlProperties = map[string]bool{
	"href": true,
	"src":  true,
}

type element struct {
	d    *Driver
	node *cdp.Node
	loc  driver.Locator
}

func (e *element) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *element) FindElement(ctx context.Context, loc driver.Locator) (driver.Element, error) {
	return e.d.findFirst(ctx, loc, e.node)
}

func (e *element) FindElements(ctx context.Context, loc driver.Locator) ([]driver.Element, error) {
	return e.d.findAll(ctx, loc, e.node)
}

func (e *element) Attribute(ctx context.Context, name string) (string, error) {
	var (
		value string
		ok    bool
	)
	if err := e.d.run(ctx, 0, chromedp.AttributeValue(e.ids(), name, &value, &ok, chromedp.ByNodeID)); err != nil {
		return "", e.d.fault(driver.CodeInteraction, "attribute "+name, e.loc, err)
	}
	if !ok {
		return "", driver.NewFault(driver.CodeNoSuchAttribute, "attribute "+name, e.loc, nil)
	}

	if urlProperties[strings.ToLower(name)] {
		var resolved string
		if err := e.d.run(ctx, 0, chromedp.JavascriptAttribute(e.ids(), name, &resolved, chromedp.ByNodeID)); err == nil && resolved != "" {
			value = resolved
		}
	}
	return value, nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	var text string
	if err := e.d.run(ctx, 0, chromedp.Text(e.ids(), &text, chromedp.ByNodeID)); err != nil {
		return "", e.d.fault(driver.CodeInteraction, "text", e.loc, err)
	}
	return strings.Join(strings.Fields(text), " "), nil
}

func (e *element) SendKeys(ctx context.Context, text string) error {
	return e.d.interact(ctx, "send_keys", e.loc, chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID))
}

func (e *element) Click(ctx context.Context) error {
	return e.d.interact(ctx, "click", e.loc, chromedp.Click(e.ids(), chromedp.ByNodeID))
}
