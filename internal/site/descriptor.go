package site

import (
	"fmt"
	"os"
	"sort"

	"github.com/apartsfinder/afind/internal/driver"
	"github.com/apartsfinder/afind/pkg/models"
	"gopkg.in/yaml.v3"
)

// Descriptor is a Site backed by a static locator table.
// It is the form used by built-in sites and by sites loaded from YAML.
type Descriptor struct {
	Key        string                        `yaml:"name"`
	URL        string                        `yaml:"base_url"`
	Container  driver.Locator                `yaml:"listing_container"`
	Fields     map[models.Field]FieldLocator `yaml:"fields"`
	CategoryAt driver.Locator                `yaml:"category"`
	Rooms      map[int]driver.Locator        `yaml:"rooms"`
	PriceLower driver.Locator                `yaml:"price_lower"`
	PriceUpper driver.Locator                `yaml:"price_upper"`
	Apply      driver.Locator                `yaml:"apply_button"`
}

func (d Descriptor) Name() string                      { return d.Key }
func (d Descriptor) BaseURL() string                   { return d.URL }
func (d Descriptor) ListingContainer() driver.Locator  { return d.Container }
func (d Descriptor) Field(f models.Field) FieldLocator { return d.Fields[f] }
func (d Descriptor) Category() driver.Locator          { return d.CategoryAt }
func (d Descriptor) ApplyButton() driver.Locator       { return d.Apply }

func (d Descriptor) Room(count int) (driver.Locator, bool) {
	loc, ok := d.Rooms[count]
	return loc, ok
}

func (d Descriptor) PriceBounds() (lower, upper driver.Locator) {
	return d.PriceLower, d.PriceUpper
}

// RoomCounts returns the room counts the descriptor has locators for, ascending
func (d Descriptor) RoomCounts() []int {
	counts := make([]int, 0, len(d.Rooms))
	for n := range d.Rooms {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	return counts
}

type descriptorFile struct {
	Sites []Descriptor `yaml:"sites"`
}

// LoadFile reads site descriptors from a YAML file and validates each of them
func LoadFile(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}

	var file descriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sites file: %w", err)
	}

	for _, d := range file.Sites {
		if err := Validate(d); err != nil {
			return nil, fmt.Errorf("invalid site in %s: %w", path, err)
		}
	}
	return file.Sites, nil
}
