package output

import (
	"io"
	"os"

	"github.com/apartsfinder/afind/pkg/models"
	"gopkg.in/yaml.v3"
)

// WriteYAML writes records as a YAML sequence
func WriteYAML(w io.Writer, records []models.Apartment) error {
	if records == nil {
		records = []models.Apartment{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}

// SaveYAML writes records to filepath as YAML
func SaveYAML(records []models.Apartment, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteYAML(file, records)
}
