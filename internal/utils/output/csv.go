package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apartsfinder/afind/pkg/models"
)

// ReadCSV reads records from a CSV table whose first row names the columns
func ReadCSV(r io.Reader) ([]models.Apartment, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns, err := models.ParseColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("invalid header: %w", err)
	}

	records := make([]models.Apartment, 0, len(rows)-1)
	for i, row := range rows[1:] {
		a, err := models.ApartmentFromRow(columns, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, a)
	}
	return records, nil
}

// WriteCSV writes a header and one row per record; absent values are written as None
func WriteCSV(w io.Writer, records []models.Apartment, columns []models.Field) error {
	if len(columns) == 0 {
		columns = models.Columns
	}

	writer := csv.NewWriter(w)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = string(c)
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, a := range records {
		if err := writer.Write(a.Row(columns)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV merges records into the CSV table at filepath. Rows already in the
// file come first; duplicates are dropped keeping the first occurrence.
func SaveCSV(records []models.Apartment, filepath string, columns []models.Field) error {
	existing, err := readCSVFile(filepath)
	if err != nil {
		return err
	}

	merged := Dedupe(append(existing, records...), columns)

	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, merged, columns)
}

func readCSVFile(filepath string) ([]models.Apartment, error) {
	file, err := os.Open(filepath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing table %s: %w", filepath, err)
	}
	return records, nil
}

// Dedupe drops records whose values in columns repeat an earlier record, keeping order
func Dedupe(records []models.Apartment, columns []models.Field) []models.Apartment {
	if len(columns) == 0 {
		columns = models.Columns
	}
	seen := make(map[string]bool, len(records))
	out := make([]models.Apartment, 0, len(records))
	for _, a := range records {
		key := rowKey(a, columns)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

// rowKey distinguishes a nil field from one holding the text "None"
func rowKey(a models.Apartment, columns []models.Field) string {
	var sb strings.Builder
	for _, c := range columns {
		if v := a.Get(c); v != nil {
			sb.WriteString("+")
			sb.WriteString(*v)
		} else {
			sb.WriteString("-")
		}
		sb.WriteByte(0)
	}
	return sb.String()
}
