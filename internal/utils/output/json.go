package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/apartsfinder/afind/pkg/models"
)

// WriteJSON writes records as an indented JSON array; absent fields are null
func WriteJSON(w io.Writer, records []models.Apartment) error {
	if records == nil {
		records = []models.Apartment{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// SaveJSON writes records to filepath as JSON
func SaveJSON(records []models.Apartment, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, records)
}

// ReadJSON decodes a JSON array of records
func ReadJSON(r io.Reader) ([]models.Apartment, error) {
	var records []models.Apartment
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}
