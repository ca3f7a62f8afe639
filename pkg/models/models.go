// Package models defines the listing record written by every output format.
package models

import (
	"fmt"
	"strings"
)

// Field names a single extractable attribute of a listing
type Field string

const (
	FieldName           Field = "name"
	FieldURL            Field = "url"
	FieldPrice          Field = "price"
	FieldAdditionalInfo Field = "additional_info"
	FieldAddress        Field = "address"
)

// ExtractedFields lists the fields read from a listing container, in extraction order
var ExtractedFields = []Field{FieldName, FieldURL, FieldPrice, FieldAddress}

// Columns lists every serialized field in output order
var Columns = []Field{FieldName, FieldURL, FieldPrice, FieldAdditionalInfo, FieldAddress}

// Missing is the placeholder written for absent values in tabular output
const Missing = "None"

// Apartment represents one listing extracted from a results page.
// A nil field means extraction of that field failed (or was never attempted).
type Apartment struct {
	Name           *string `json:"name" yaml:"name"`
	URL            *string `json:"url" yaml:"url"`
	Price          *string `json:"price" yaml:"price"`
	AdditionalInfo *string `json:"additional_info" yaml:"additional_info"`
	Address        *string `json:"address" yaml:"address"`
}

// StringPtr returns a pointer to a copy of s
func StringPtr(s string) *string {
	return &s
}

// Get returns the value of the given field
func (a Apartment) Get(f Field) *string {
	switch f {
	case FieldName:
		return a.Name
	case FieldURL:
		return a.URL
	case FieldPrice:
		return a.Price
	case FieldAdditionalInfo:
		return a.AdditionalInfo
	case FieldAddress:
		return a.Address
	}
	return nil
}

// Set assigns the value of the given field
func (a *Apartment) Set(f Field, v *string) {
	switch f {
	case FieldName:
		a.Name = v
	case FieldURL:
		a.URL = v
	case FieldPrice:
		a.Price = v
	case FieldAdditionalInfo:
		a.AdditionalInfo = v
	case FieldAddress:
		a.Address = v
	}
}

// Value returns the field's value or the Missing placeholder
func (a Apartment) Value(f Field) string {
	if v := a.Get(f); v != nil {
		return *v
	}
	return Missing
}

// Equal reports whether both apartments hold the same values, nil included
func (a Apartment) Equal(b Apartment) bool {
	for _, f := range Columns {
		x, y := a.Get(f), b.Get(f)
		if (x == nil) != (y == nil) {
			return false
		}
		if x != nil && *x != *y {
			return false
		}
	}
	return true
}

// Row returns the values for the given columns, absent values as Missing
func (a Apartment) Row(columns []Field) []string {
	row := make([]string, len(columns))
	for i, f := range columns {
		row[i] = a.Value(f)
	}
	return row
}

// ApartmentFromRow rebuilds an apartment from tabular values. Missing becomes
// nil, so a value that was literally "None" does not survive a round trip.
func ApartmentFromRow(columns []Field, row []string) (Apartment, error) {
	if len(row) != len(columns) {
		return Apartment{}, fmt.Errorf("invalid row size: expected %d, given %d", len(columns), len(row))
	}
	var a Apartment
	for i, f := range columns {
		if row[i] == Missing {
			continue
		}
		a.Set(f, StringPtr(row[i]))
	}
	return a, nil
}

// String renders the apartment as a single table line
func (a Apartment) String() string {
	var sb strings.Builder
	sb.WriteString("|")
	for _, f := range Columns {
		sb.WriteString(" ")
		sb.WriteString(a.Value(f))
		sb.WriteString(" |")
	}
	return sb.String()
}

// ParseColumns converts column names to fields, rejecting unknown names
func ParseColumns(names []string) ([]Field, error) {
	if len(names) == 0 {
		return Columns, nil
	}
	fields := make([]Field, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		f := Field(n)
		if !isColumn(f) {
			return nil, fmt.Errorf("unknown column %q", n)
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return Columns, nil
	}
	return fields, nil
}

func isColumn(f Field) bool {
	for _, c := range Columns {
		if c == f {
			return true
		}
	}
	return false
}
