package static

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/apartsfinder/afind/internal/driver"
	urlutil "github.com/apartsfinder/afind/internal/utils/url"
)

// attributes that a browser reports as resolved absolute URLs
var urlAttributes = map[string]bool{
	"href":   true,
	"src":    true,
	"action": true,
}

type element struct {
	d   *Driver
	sel *goquery.Selection
	loc driver.Locator
}

func (e *element) FindElement(ctx context.Context, loc driver.Locator) (driver.Element, error) {
	if err := e.d.checkOpen("find_element"); err != nil {
		return nil, err
	}
	return e.d.first(e.sel, loc)
}

func (e *element) FindElements(ctx context.Context, loc driver.Locator) ([]driver.Element, error) {
	if err := e.d.checkOpen("find_elements"); err != nil {
		return nil, err
	}
	return e.d.all(e.sel, loc)
}

func (e *element) Attribute(ctx context.Context, name string) (string, error) {
	if err := e.d.checkOpen("attribute"); err != nil {
		return "", err
	}
	v, ok := e.sel.Attr(name)
	if !ok {
		return "", driver.NewFault(driver.CodeNoSuchAttribute, "attribute "+name, e.loc, nil)
	}
	if urlAttributes[strings.ToLower(name)] {
		if base := e.d.URL(); urlutil.IsRemote(base) || strings.HasPrefix(base, "file://") {
			v = urlutil.ResolveURL(base, v)
		}
	}
	return v, nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	if err := e.d.checkOpen("text"); err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(e.sel.Text()), " "), nil
}

func (e *element) SendKeys(ctx context.Context, text string) error {
	if err := e.d.record(Interaction{Action: ActionSendKeys, Locator: e.loc, Text: text}); err != nil {
		return err
	}
	e.sel.SetAttr("value", e.sel.AttrOr("value", "")+text)
	return nil
}

func (e *element) Click(ctx context.Context) error {
	return e.d.record(Interaction{Action: ActionClick, Locator: e.loc})
}
