package output

import (
	"os"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/apartsfinder/afind/pkg/models"
)

// RenderMarkdown renders records as a GitHub flavored markdown table
func RenderMarkdown(records []models.Apartment, columns []models.Field) (string, error) {
	table, err := RenderTable(records, columns)
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return converter.ConvertString(table)
}

// SaveMarkdown writes records to filepath as a markdown table
func SaveMarkdown(records []models.Apartment, filepath string, columns []models.Field) error {
	mdStr, err := RenderMarkdown(records, columns)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, []byte(mdStr+"\n"), 0644)
}
