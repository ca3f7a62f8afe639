// Package output writes extracted apartments as JSON, CSV, YAML or markdown.
package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/apartsfinder/afind/pkg/models"
)

// DefaultFile is used when the output name is "default"
const DefaultFile = "apartments.csv"

// Format is an output encoding
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// FormatFor picks the format from the file extension; unknown extensions are JSON
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".yaml", ".yml":
		return FormatYAML
	case ".md", ".markdown":
		return FormatMarkdown
	}
	return FormatJSON
}

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatJSON, FormatCSV, FormatYAML, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q", name)
}

// ResolvePath maps the "default" name to DefaultFile
func ResolvePath(path string) string {
	if path == "default" {
		return DefaultFile
	}
	return path
}

// Save writes records to path in the format implied by its extension.
// CSV output merges with an existing file.
func Save(records []models.Apartment, path string, columns []models.Field) error {
	path = ResolvePath(path)

	var err error
	switch FormatFor(path) {
	case FormatCSV:
		err = SaveCSV(records, path, columns)
	case FormatYAML:
		err = SaveYAML(records, path)
	case FormatMarkdown:
		err = SaveMarkdown(records, path, columns)
	default:
		err = SaveJSON(records, path)
	}
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// Write encodes records to w in the given format
func Write(w io.Writer, records []models.Apartment, format Format, columns []models.Field) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records, columns)
	case FormatYAML:
		return WriteYAML(w, records)
	case FormatMarkdown:
		s, err := RenderMarkdown(records, columns)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, s)
		return err
	default:
		return WriteJSON(w, records)
	}
}
