// Package site describes the target sites and their locator tables.
package site

import (
	"errors"
	"fmt"

	"github.com/apartsfinder/afind/internal/driver"
	"github.com/apartsfinder/afind/pkg/models"
)

// MaxRooms is the highest room count every site must provide a locator for
const MaxRooms = 5

var ErrUnknownSite = errors.New("unknown site")

// FieldLocator addresses one listing field inside a listing container.
// An empty Attribute means the element text is read.
type FieldLocator struct {
	driver.Locator `yaml:",inline"`
	Attribute      string `yaml:"attribute,omitempty"`
}

// Site is one target site and its fixed set of locators
type Site interface {
	// Name returns the registry key of the site
	Name() string
	// BaseURL returns the address navigated to before configuration
	BaseURL() string
	// ListingContainer locates every listing on a results page
	ListingContainer() driver.Locator
	// Field locates a listing field within a container
	Field(f models.Field) FieldLocator
	// Category locates the long-term rental category switch
	Category() driver.Locator
	// Room locates the switch for a room count; 0 means studio / any
	Room(count int) (driver.Locator, bool)
	// RoomCounts lists the room counts Room has a locator for, ascending
	RoomCounts() []int
	// PriceBounds locates the lower and upper price inputs
	PriceBounds() (lower, upper driver.Locator)
	// ApplyButton locates the button that submits the filter form
	ApplyButton() driver.Locator
}

// Validate checks that every accessor of s yields a locator
func Validate(s Site) error {
	if s == nil {
		return fmt.Errorf("site is nil")
	}
	if s.Name() == "" {
		return fmt.Errorf("site name must not be empty")
	}
	if s.BaseURL() == "" {
		return fmt.Errorf("site %s: base url must not be empty", s.Name())
	}
	if s.ListingContainer().IsZero() {
		return fmt.Errorf("site %s: listing container locator missing", s.Name())
	}
	for _, f := range models.ExtractedFields {
		if s.Field(f).IsZero() {
			return fmt.Errorf("site %s: locator for field %s missing", s.Name(), f)
		}
	}
	if s.Category().IsZero() {
		return fmt.Errorf("site %s: category locator missing", s.Name())
	}
	for n := 0; n <= MaxRooms; n++ {
		if loc, ok := s.Room(n); !ok || loc.IsZero() {
			return fmt.Errorf("site %s: locator for %d rooms missing", s.Name(), n)
		}
	}
	lower, upper := s.PriceBounds()
	if lower.IsZero() || upper.IsZero() {
		return fmt.Errorf("site %s: price bound locators missing", s.Name())
	}
	if s.ApplyButton().IsZero() {
		return fmt.Errorf("site %s: apply button locator missing", s.Name())
	}
	return nil
}

// WithBaseURL returns s navigating to url instead of its own base address
func WithBaseURL(s Site, url string) Site {
	if url == "" {
		return s
	}
	return rebased{Site: s, url: url}
}

type rebased struct {
	Site
	url string
}

func (r rebased) BaseURL() string { return r.url }
