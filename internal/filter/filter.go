// Package filter holds the listing filter criteria applied to a site.
package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// PriceRange is a half-open price interval [Lower, Upper)
type PriceRange struct {
	Lower int
	Upper int
}

// Contains reports whether v lies within the range
func (r PriceRange) Contains(v int) bool {
	return v >= r.Lower && v < r.Upper
}

func (r PriceRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Lower, r.Upper)
}

// Configuration is the immutable set of filter criteria for one session
type Configuration struct {
	price    *PriceRange
	location *string
	rooms    []int
}

// Option sets one criterion on a Configuration under construction
type Option func(*Configuration)

// WithPrice sets the price range [lower, upper)
func WithPrice(lower, upper int) Option {
	return func(c *Configuration) {
		c.price = &PriceRange{Lower: lower, Upper: upper}
	}
}

// WithLocation sets the location criterion
func WithLocation(location string) Option {
	return func(c *Configuration) {
		c.location = &location
	}
}

// WithRooms sets the room counts, in selection order
func WithRooms(rooms ...int) Option {
	return func(c *Configuration) {
		c.rooms = append([]int{}, rooms...)
	}
}

// New builds a Configuration from options; criteria not given stay unset
func New(opts ...Option) Configuration {
	var c Configuration
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Parse decodes a JSON payload into a Configuration
func Parse(data []byte) (Configuration, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Configuration{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return FromMap(raw)
}

// FromMap builds a Configuration from loosely typed input.
// Recognized keys are "price", "location" and "rooms"; anything else is ignored.
// No bounds checking is done on the price pair.
func FromMap(raw map[string]any) (Configuration, error) {
	var c Configuration

	if v, ok := raw["price"]; ok {
		bounds, err := toInts(v)
		if err != nil {
			return Configuration{}, fmt.Errorf("price: %w", err)
		}
		if len(bounds) != 2 {
			return Configuration{}, fmt.Errorf("price: expected 2 values, got %d", len(bounds))
		}
		c.price = &PriceRange{Lower: bounds[0], Upper: bounds[1]}
	}

	if v, ok := raw["location"]; ok {
		s, ok := v.(string)
		if !ok {
			return Configuration{}, fmt.Errorf("location: expected string, got %T", v)
		}
		c.location = &s
	}

	if v, ok := raw["rooms"]; ok {
		rooms, err := toInts(v)
		if err != nil {
			return Configuration{}, fmt.Errorf("rooms: %w", err)
		}
		c.rooms = rooms
	}

	return c, nil
}

// Price returns the price range, if set
func (c Configuration) Price() (PriceRange, bool) {
	if c.price == nil {
		return PriceRange{}, false
	}
	return *c.price, true
}

// Location returns the location, if set
func (c Configuration) Location() (string, bool) {
	if c.location == nil {
		return "", false
	}
	return *c.location, true
}

// Rooms returns a copy of the configured room counts; nil when unset
func (c Configuration) Rooms() []int {
	if c.rooms == nil {
		return nil
	}
	return append([]int{}, c.rooms...)
}

// HasRooms reports whether a room list was given at all
func (c Configuration) HasRooms() bool {
	return c.rooms != nil
}

func (c Configuration) String() string {
	var sb strings.Builder
	sb.WriteString("Config(")
	if c.price != nil {
		fmt.Fprintf(&sb, "price=%s", c.price)
	} else {
		sb.WriteString("price=None")
	}
	if c.location != nil {
		fmt.Fprintf(&sb, " location=%q", *c.location)
	} else {
		sb.WriteString(" location=None")
	}
	if c.rooms != nil {
		fmt.Fprintf(&sb, " rooms=%v", c.rooms)
	} else {
		sb.WriteString(" rooms=None")
	}
	sb.WriteString(")")
	return sb.String()
}

func toInts(v any) ([]int, error) {
	items, ok := v.([]any)
	if !ok {
		if ints, ok := v.([]int); ok {
			return append([]int{}, ints...), nil
		}
		return nil, fmt.Errorf("expected a sequence, got %T", v)
	}

	out := make([]int, 0, len(items))
	for i, item := range items {
		n, err := toInt(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %s", n)
		}
		return int(i), nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}
