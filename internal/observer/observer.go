// Package observer defines the notifications emitted around a scraping session.
package observer

import (
	"time"

	"github.com/apartsfinder/afind/internal/filter"
	"github.com/apartsfinder/afind/pkg/models"
)

// SessionInfo describes the automation session as it was set up
type SessionInfo struct {
	Site         string
	Width        int
	Height       int
	ImplicitWait time.Duration
}

// Observer receives lifecycle notifications from the engine.
// Notifications are fire and forget; implementations must not block for long.
type Observer interface {
	SessionCreated(info SessionInfo)
	SiteSelected(baseURL string)
	RoomsConfigured(rooms []int)
	PriceConfigured(price filter.PriceRange)
	ConfigurationCompleted()
	ExtractionStarted()
	RecordExtracted(record models.Apartment)
	BatchCompleted(count, pages int)
	SessionTornDown()
	Fault(err error)
}

// Nop ignores every notification; embed it to implement a subset
type Nop struct{}

func (Nop) SessionCreated(SessionInfo)        {}
func (Nop) SiteSelected(string)               {}
func (Nop) RoomsConfigured([]int)             {}
func (Nop) PriceConfigured(filter.PriceRange) {}
func (Nop) ConfigurationCompleted()           {}
func (Nop) ExtractionStarted()                {}
func (Nop) RecordExtracted(models.Apartment)  {}
func (Nop) BatchCompleted(int, int)           {}
func (Nop) SessionTornDown()                  {}
func (Nop) Fault(error)                       {}

// Multi fans each notification out to every observer, in order
type Multi []Observer

func (m Multi) SessionCreated(info SessionInfo) {
	for _, o := range m {
		o.SessionCreated(info)
	}
}

func (m Multi) SiteSelected(baseURL string) {
	for _, o := range m {
		o.SiteSelected(baseURL)
	}
}

func (m Multi) RoomsConfigured(rooms []int) {
	for _, o := range m {
		o.RoomsConfigured(rooms)
	}
}

func (m Multi) PriceConfigured(price filter.PriceRange) {
	for _, o := range m {
		o.PriceConfigured(price)
	}
}

func (m Multi) ConfigurationCompleted() {
	for _, o := range m {
		o.ConfigurationCompleted()
	}
}

func (m Multi) ExtractionStarted() {
	for _, o := range m {
		o.ExtractionStarted()
	}
}

func (m Multi) RecordExtracted(record models.Apartment) {
	for _, o := range m {
		o.RecordExtracted(record)
	}
}

func (m Multi) BatchCompleted(count, pages int) {
	for _, o := range m {
		o.BatchCompleted(count, pages)
	}
}

func (m Multi) SessionTornDown() {
	for _, o := range m {
		o.SessionTornDown()
	}
}

func (m Multi) Fault(err error) {
	for _, o := range m {
		o.Fault(err)
	}
}
