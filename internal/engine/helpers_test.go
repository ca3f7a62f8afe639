package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/apartsfinder/afind/internal/driver"
	"github.com/apartsfinder/afind/internal/driver/static"
	"github.com/apartsfinder/afind/internal/filter"
	"github.com/apartsfinder/afind/internal/observer"
	"github.com/apartsfinder/afind/internal/site"
	urlutil "github.com/apartsfinder/afind/internal/utils/url"
	"github.com/apartsfinder/afind/pkg/models"
)

func roomXPath(n int) driver.Locator {
	return driver.XPath(fmt.Sprintf("//ul[@class='rooms']/li[%d]/label", n+1))
}

// fixtureSite describes testdata/listings.html
func fixtureSite(t *testing.T) site.Descriptor {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", "listings.html"))
	if err != nil {
		t.Fatal(err)
	}
	rooms := make(map[int]driver.Locator, site.MaxRooms+1)
	for n := 0; n <= site.MaxRooms; n++ {
		rooms[n] = roomXPath(n)
	}
	return site.Descriptor{
		Key:       "fixture",
		URL:       urlutil.FileURL(path),
		Container: driver.ClassName("item"),
		Fields: map[models.Field]site.FieldLocator{
			models.FieldName:    {Locator: driver.ClassName("link"), Attribute: "title"},
			models.FieldURL:     {Locator: driver.ClassName("link"), Attribute: "href"},
			models.FieldPrice:   {Locator: driver.ClassName("price-text")},
			models.FieldAddress: {Locator: driver.ClassName("geo")},
		},
		CategoryAt: driver.CSS("a#flats"),
		Rooms:      rooms,
		PriceLower: driver.CSS("input[name=from]"),
		PriceUpper: driver.CSS("input[name=to]"),
		Apply:      driver.CSS("button.apply"),
	}
}

// recorder captures notifications in order
type recorder struct {
	mu      sync.Mutex
	events  []string
	faults  []error
	rooms   []int
	price   *filter.PriceRange
	records []models.Apartment
	batch   [2]int
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) SessionCreated(observer.SessionInfo) { r.add("session_created") }
func (r *recorder) SiteSelected(string)                 { r.add("site_selected") }
func (r *recorder) ConfigurationCompleted()             { r.add("configuration_completed") }
func (r *recorder) ExtractionStarted()                  { r.add("extraction_started") }
func (r *recorder) SessionTornDown()                    { r.add("session_torn_down") }

func (r *recorder) RoomsConfigured(rooms []int) {
	r.add("rooms_configured")
	r.rooms = rooms
}

func (r *recorder) PriceConfigured(p filter.PriceRange) {
	r.add("price_configured")
	r.price = &p
}

func (r *recorder) RecordExtracted(a models.Apartment) {
	r.add("record_extracted")
	r.records = append(r.records, a)
}

func (r *recorder) BatchCompleted(count, pages int) {
	r.add("batch_completed")
	r.batch = [2]int{count, pages}
}

func (r *recorder) Fault(err error) {
	r.add("fault")
	r.faults = append(r.faults, err)
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

// openFixture starts an orchestrator on a snapshot driver
func openFixture(t *testing.T, s site.Site, cfg filter.Configuration) (*Orchestrator, *static.Driver, *recorder) {
	t.Helper()
	drv := static.New(static.Options{})
	rec := &recorder{}
	o, err := New(context.Background(), drv, s, cfg, WithObserver(rec), WithImplicitWait(time.Second))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { o.Close() })
	return o, drv, rec
}

// fakeDriver is a scripted driver.Driver
type fakeDriver struct {
	navigateErr error
	findErr     error
	findAllErr  error
	viewportErr error
	closeErr    error

	closes   int
	viewport [2]int
	wait     time.Duration
}

func (f *fakeDriver) Navigate(context.Context, string) error { return f.navigateErr }

func (f *fakeDriver) FindElement(_ context.Context, loc driver.Locator) (driver.Element, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return fakeElement{}, nil
}

func (f *fakeDriver) FindElements(context.Context, driver.Locator) ([]driver.Element, error) {
	if f.findAllErr != nil {
		return nil, f.findAllErr
	}
	return nil, nil
}

func (f *fakeDriver) SetViewport(_ context.Context, w, h int) error {
	f.viewport = [2]int{w, h}
	return f.viewportErr
}

func (f *fakeDriver) SetImplicitWait(d time.Duration) { f.wait = d }

func (f *fakeDriver) Close() error {
	f.closes++
	return f.closeErr
}

type fakeElement struct{}

func (fakeElement) FindElement(context.Context, driver.Locator) (driver.Element, error) {
	return fakeElement{}, nil
}
func (fakeElement) FindElements(context.Context, driver.Locator) ([]driver.Element, error) {
	return nil, nil
}
func (fakeElement) Attribute(context.Context, string) (string, error) { return "", nil }
func (fakeElement) Text(context.Context) (string, error)              { return "", nil }
func (fakeElement) SendKeys(context.Context, string) error            { return nil }
func (fakeElement) Click(context.Context) error                       { return nil }
