// Package driver defines the browser automation boundary used by the engine.
//
// Implementations live in subpackages:
//   - chrome: a live headless Chrome session driven by chromedp
//   - static: an HTML snapshot (file or plain HTTP fetch) queried with goquery
package driver

import (
	"context"
	"fmt"
	"time"
)

// Strategy selects how a Locator value is interpreted
type Strategy string

const (
	ByClassName Strategy = "class"
	ByXPath     Strategy = "xpath"
	ByCSS       Strategy = "css"
)

// Locator addresses page elements for the driver
type Locator struct {
	By    Strategy `json:"by" yaml:"by"`
	Value string   `json:"value" yaml:"value"`
}

// ClassName builds a class name locator
func ClassName(v string) Locator { return Locator{By: ByClassName, Value: v} }

// XPath builds an XPath locator
func XPath(v string) Locator { return Locator{By: ByXPath, Value: v} }

// CSS builds a CSS selector locator
func CSS(v string) Locator { return Locator{By: ByCSS, Value: v} }

// IsZero reports whether the locator is unset
func (l Locator) IsZero() bool {
	return l.Value == ""
}

// Selector returns the CSS selector equivalent for class and CSS locators
func (l Locator) Selector() (string, error) {
	switch l.By {
	case ByClassName:
		return "." + l.Value, nil
	case ByCSS:
		return l.Value, nil
	}
	return "", NewFault(CodeUnsupportedLocator, "selector", l, nil)
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.By, l.Value)
}

// Element is one page element returned by a lookup
type Element interface {
	// FindElement finds the first descendant matching loc
	FindElement(ctx context.Context, loc Locator) (Element, error)
	// FindElements finds all descendants matching loc; no match is not a fault
	FindElements(ctx context.Context, loc Locator) ([]Element, error)
	// Attribute reads an attribute (or the matching DOM property) of the element
	Attribute(ctx context.Context, name string) (string, error)
	// Text reads the rendered text of the element
	Text(ctx context.Context) (string, error)
	// SendKeys types text into the element
	SendKeys(ctx context.Context, text string) error
	// Click activates the element
	Click(ctx context.Context) error
}

// Driver is one automation session
type Driver interface {
	// Navigate loads the given address
	Navigate(ctx context.Context, url string) error
	// FindElement finds the first element in the document matching loc
	FindElement(ctx context.Context, loc Locator) (Element, error)
	// FindElements finds all elements in the document matching loc
	FindElements(ctx context.Context, loc Locator) ([]Element, error)
	// SetViewport fixes the window size
	SetViewport(ctx context.Context, width, height int) error
	// SetImplicitWait bounds how long lookups keep retrying before faulting
	SetImplicitWait(d time.Duration)
	// Close ends the session
	Close() error
}

// Factory opens a new automation session
type Factory func(ctx context.Context) (Driver, error)
