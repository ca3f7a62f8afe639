package observer

import (
	"fmt"
	"io"

	"github.com/apartsfinder/afind/pkg/models"
	"github.com/schollz/progressbar/v3"
)

// Progress renders extraction progress as a spinner on an interactive terminal.
// The number of listings is unknown until the batch completes.
type Progress struct {
	Nop
	out    io.Writer
	bar    *progressbar.ProgressBar
	faults int
}

// NewProgress creates a Progress observer drawing to out
func NewProgress(out io.Writer) *Progress {
	return &Progress{out: out}
}

func (p *Progress) ExtractionStarted() {
	p.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Extracting listings"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *Progress) RecordExtracted(models.Apartment) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *Progress) Fault(error) {
	p.faults++
	if p.bar != nil {
		p.bar.Describe(fmt.Sprintf("Extracting listings (%d errors)", p.faults))
	}
}

func (p *Progress) BatchCompleted(count, pages int) {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
	fmt.Fprintf(p.out, "Extracted %d listings from %d page(s)\n", count, pages)
}
