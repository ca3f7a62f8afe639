package output

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/apartsfinder/afind/pkg/models"
)

func sample() []models.Apartment {
	return []models.Apartment{
		{
			Name:    models.StringPtr("Квартира-студия, 25 м²"),
			URL:     models.StringPtr("https://www.avito.ru/sankt-peterburg/kvartiry/1"),
			Price:   models.StringPtr("25 000 ₽ в месяц"),
			Address: models.StringPtr("Невский пр., 1"),
		},
		{
			Name:    models.StringPtr("1-к. квартира, 38 м²"),
			URL:     models.StringPtr("https://www.avito.ru/sankt-peterburg/kvartiry/2"),
			Address: models.StringPtr("Лиговский пр., 10"),
		},
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sample()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{`"additional_info": null`, `"price": null`, `"name": "Квартира-студия, 25 м²"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output:\n%s", want, out)
		}
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || !got[0].Equal(sample()[0]) || !got[1].Equal(sample()[1]) {
		t.Errorf("round trip changed records: %+v", got)
	}
}

func TestJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

func TestSaveCSV_MergesAndDedupes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	records := sample()

	if err := SaveCSV(records[:1], path, nil); err != nil {
		t.Fatal(err)
	}
	if err := SaveCSV(records, path, nil); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got:\n%s", data)
	}
	if lines[0] != "name,url,price,additional_info,address" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[2], ",None,None,") {
		t.Errorf("expected absent price and info as None, got %q", lines[2])
	}

	got, err := ReadCSV(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if !got[1].Equal(records[1]) {
		t.Errorf("None did not read back as absent: %+v", got[1])
	}
}

func TestWriteCSV_Columns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample(), []models.Field{models.FieldPrice, models.FieldName}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "price,name" || lines[2] != "None,\"1-к. квартира, 38 м²\"" {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestDedupe_KeepsFirst(t *testing.T) {
	a := sample()
	dup := a[0]
	dup.Price = models.StringPtr("25 000 ₽ в месяц")

	got := Dedupe([]models.Apartment{a[1], a[0], dup, a[1]}, nil)
	if len(got) != 2 || !got[0].Equal(a[1]) || !got[1].Equal(a[0]) {
		t.Errorf("unexpected dedupe result %+v", got)
	}

	none := models.Apartment{Price: models.StringPtr(models.Missing)}
	if len(Dedupe([]models.Apartment{{}, none}, nil)) != 2 {
		t.Error("absent field and literal None text should differ")
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown(sample(), []models.Field{models.FieldName, models.FieldURL, models.FieldPrice})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"| name", "price", "https://www.avito.ru/sankt-peterburg/kvartiry/2", "None"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in markdown:\n%s", want, out)
		}
	}
	if strings.Contains(out, "address") {
		t.Errorf("unselected column rendered:\n%s", out)
	}
}

func TestSave_DispatchByExtension(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		file string
		want string
	}{
		{"out.json", `"url": "https://www.avito.ru/sankt-peterburg/kvartiry/1"`},
		{"out.yaml", "additional_info: null"},
		{"out.csv", "name,url,price,additional_info,address"},
		{"out.md", "| name"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := Save(sample(), path, nil); err != nil {
				t.Fatal(err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("expected %q in %s:\n%s", tt.want, tt.file, data)
			}
		})
	}
}

func TestFormats(t *testing.T) {
	if ResolvePath("default") != DefaultFile {
		t.Error("default should map to the csv table")
	}
	if FormatFor("x.YML") != FormatYAML || FormatFor("x") != FormatJSON {
		t.Error("unexpected format detection")
	}
	if f, err := ParseFormat("md"); err != nil || f != FormatMarkdown {
		t.Errorf("ParseFormat(md) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if !reflect.DeepEqual(Dedupe(nil, nil), []models.Apartment{}) {
		t.Error("dedupe of nothing should be empty")
	}
}
