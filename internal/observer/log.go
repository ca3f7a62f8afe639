package observer

import (
	"github.com/apartsfinder/afind/internal/filter"
	"github.com/apartsfinder/afind/pkg/models"
	"github.com/rs/zerolog"
)

// Log writes every notification as a structured zerolog event
type Log struct {
	logger zerolog.Logger
}

// NewLog creates a Log observer writing to logger
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SessionCreated(info SessionInfo) {
	l.logger.Info().
		Str("site", info.Site).
		Int("width", info.Width).
		Int("height", info.Height).
		Dur("implicit_wait", info.ImplicitWait).
		Msg("Web driver was configured")
}

func (l *Log) SiteSelected(baseURL string) {
	l.logger.Info().Str("url", baseURL).Msg("Web site was configured")
}

func (l *Log) RoomsConfigured(rooms []int) {
	l.logger.Info().Ints("rooms", rooms).Msg("Rooms were set")
}

func (l *Log) PriceConfigured(price filter.PriceRange) {
	l.logger.Info().
		Int("from", price.Lower).
		Int("to", price.Upper).
		Msg("Price was set")
}

func (l *Log) ConfigurationCompleted() {
	l.logger.Info().Msg("Configuration was completed")
}

func (l *Log) ExtractionStarted() {
	l.logger.Info().Msg("Starting parsing apartments")
}

func (l *Log) RecordExtracted(record models.Apartment) {
	l.logger.Debug().Str("record", record.String()).Msg("Apartment was parsed")
}

func (l *Log) BatchCompleted(count, pages int) {
	l.logger.Info().
		Int("apartments", count).
		Int("pages", pages).
		Msg("All apartments were parsed")
}

func (l *Log) SessionTornDown() {
	l.logger.Info().Msg("Parser was deallocated")
}

func (l *Log) Fault(err error) {
	l.logger.Warn().Err(err).Msg("Error occurred")
}
