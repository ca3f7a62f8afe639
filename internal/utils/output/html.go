package output

import (
	"bytes"

	"github.com/apartsfinder/afind/pkg/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderTable renders records as an HTML table with a header row.
// The url column is rendered as a link.
func RenderTable(records []models.Apartment, columns []models.Field) (string, error) {
	if len(columns) == 0 {
		columns = models.Columns
	}

	table := element(atom.Table)
	head := element(atom.Thead)
	headRow := element(atom.Tr)
	for _, c := range columns {
		th := element(atom.Th)
		th.AppendChild(text(string(c)))
		headRow.AppendChild(th)
	}
	head.AppendChild(headRow)
	table.AppendChild(head)

	body := element(atom.Tbody)
	for _, a := range records {
		tr := element(atom.Tr)
		for _, c := range columns {
			td := element(atom.Td)
			td.AppendChild(cell(a, c))
			tr.AppendChild(td)
		}
		body.AppendChild(tr)
	}
	table.AppendChild(body)

	var buf bytes.Buffer
	if err := html.Render(&buf, table); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func cell(a models.Apartment, c models.Field) *html.Node {
	v := a.Get(c)
	if v == nil {
		return text(models.Missing)
	}
	if c != models.FieldURL {
		return text(*v)
	}
	link := element(atom.A)
	link.Attr = []html.Attribute{{Key: "href", Val: *v}}
	link.AppendChild(text(*v))
	return link
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
