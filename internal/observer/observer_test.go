package observer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/apartsfinder/afind/pkg/models"
	"github.com/rs/zerolog"
)

type counter struct {
	Nop
	records int
	faults  int
}

func (c *counter) RecordExtracted(models.Apartment) { c.records++ }
func (c *counter) Fault(error)                      { c.faults++ }

func TestMulti_FansOut(t *testing.T) {
	a, b := &counter{}, &counter{}
	m := Multi{a, b}

	m.RecordExtracted(models.Apartment{})
	m.RecordExtracted(models.Apartment{})
	m.Fault(errors.New("boom"))

	for i, c := range []*counter{a, b} {
		if c.records != 2 || c.faults != 1 {
			t.Errorf("observer %d: records=%d faults=%d", i, c.records, c.faults)
		}
	}
}

func TestLog_WritesEvents(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(zerolog.New(&buf).Level(zerolog.DebugLevel))

	l.RoomsConfigured([]int{2, 1})
	l.BatchCompleted(3, 1)
	l.Fault(errors.New("no such element"))

	out := buf.String()
	for _, want := range []string{`"rooms":[2,1]`, `"apartments":3`, `"pages":1`, `"error":"no such element"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %s, got:\n%s", want, out)
		}
	}
}

func TestProgress_Summary(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)

	p.ExtractionStarted()
	p.RecordExtracted(models.Apartment{})
	p.BatchCompleted(1, 1)

	if !strings.Contains(buf.String(), "Extracted 1 listings from 1 page(s)") {
		t.Errorf("unexpected progress output: %q", buf.String())
	}
}
