package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/apartsfinder/afind/internal/utils/output"
	urlutil "github.com/apartsfinder/afind/internal/utils/url"
	"github.com/apartsfinder/afind/pkg/models"
)

const page = `<html><body>
<a id="rent" href="/rent">Rent</a>
<ul>
  <li><label data-rooms="0">Studio</label></li>
  <li><label data-rooms="1">1</label></li>
  <li><label data-rooms="2">2</label></li>
  <li><label data-rooms="3">3</label></li>
  <li><label data-rooms="4">4</label></li>
  <li><label data-rooms="5">5+</label></li>
</ul>
<input id="from"><input id="to"><button class="apply">Go</button>
<div class="item">
  <a class="title" href="/flats/1" title="Studio, 25 m2">Studio</a>
  <span class="price">25 000</span>
  <span class="address">Nevsky 1</span>
</div>
<div class="item">
  <a class="title" href="/flats/2" title="2-room, 54 m2">2-room</a>
  <span class="address">Marata 7</span>
</div>
</body></html>`

const sitesYAML = `
sites:
  - name: mirror
    base_url: %s
    listing_container: {by: class, value: item}
    fields:
      name: {by: class, value: title, attribute: title}
      url: {by: class, value: title, attribute: href}
      price: {by: class, value: price}
      address: {by: class, value: address}
    category: {by: xpath, value: "//a[@id='rent']"}
    rooms:
      0: {by: xpath, value: "//label[@data-rooms='0']"}
      1: {by: xpath, value: "//label[@data-rooms='1']"}
      2: {by: xpath, value: "//label[@data-rooms='2']"}
      3: {by: xpath, value: "//label[@data-rooms='3']"}
      4: {by: xpath, value: "//label[@data-rooms='4']"}
      5: {by: xpath, value: "//label[@data-rooms='5']"}
    price_lower: {by: css, value: "input#from"}
    price_upper: {by: css, value: "input#to"}
    apply_button: {by: css, value: "button.apply"}
`

// resetFlags restores every flag of cmd and its children to its default
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args in an isolated home directory
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CI", "1")
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeMirror(t *testing.T) (dir, sitesFile string) {
	t.Helper()
	dir = t.TempDir()
	pagePath := filepath.Join(dir, "flats.html")
	if err := os.WriteFile(pagePath, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}
	sitesFile = filepath.Join(dir, "sites.yaml")
	content := fmt.Sprintf(sitesYAML, urlutil.FileURL(pagePath))
	if err := os.WriteFile(sitesFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, sitesFile
}

func staticArgs(sitesFile string) []string {
	return []string{
		"--driver", "static",
		"--sites-file", sitesFile,
		"--implicit-wait", "1s",
		"--teardown-delay", "0s",
		"--quiet",
	}
}

func TestPriceBounds(t *testing.T) {
	tests := []struct {
		name    string
		values  []int
		want    []int
		wantErr bool
	}{
		{"single upper bound", []int{30000}, []int{0, 30000}, false},
		{"negative single", []int{-30000}, []int{0, 30000}, false},
		{"ordered pair", []int{10000, 20000}, []int{10000, 20000}, false},
		{"reversed pair", []int{20000, 10000}, []int{10000, 20000}, false},
		{"by magnitude", []int{-25000, 5000}, []int{5000, 25000}, false},
		{"duplicates collapse", []int{7000, 7000}, []int{0, 7000}, false},
		{"too many", []int{1, 2, 3}, nil, true},
		{"none", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := priceBounds(tt.values)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUniqueRooms(t *testing.T) {
	got := uniqueRooms([]int{3, 1, 3, 0, 1})
	if want := []int{0, 1, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := uniqueRooms(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestBuildConfiguration(t *testing.T) {
	defer func() { findPrice, findRooms, findLocation = nil, nil, "" }()

	fs := pflag.NewFlagSet("find", pflag.ContinueOnError)
	fs.IntSliceVar(&findPrice, "price", nil, "")
	fs.IntSliceVar(&findRooms, "rooms", nil, "")
	fs.StringVar(&findLocation, "location", "", "")
	if err := fs.Parse([]string{"--rooms", "2,1,2", "--price", "40000"}); err != nil {
		t.Fatal(err)
	}

	payload := map[string]any{"price": []any{1.0, 2.0}, "location": "Центр"}
	cfg, err := buildConfiguration(payload, fs)
	if err != nil {
		t.Fatalf("buildConfiguration failed: %v", err)
	}

	price, ok := cfg.Price()
	if !ok || price.Lower != 0 || price.Upper != 40000 {
		t.Errorf("flag price should override payload, got %v", price)
	}
	if loc, ok := cfg.Location(); !ok || loc != "Центр" {
		t.Errorf("payload location should survive, got %q", loc)
	}
	if rooms := cfg.Rooms(); !reflect.DeepEqual(rooms, []int{1, 2}) {
		t.Errorf("unexpected rooms %v", rooms)
	}
}

func TestBuildConfiguration_NullPayload(t *testing.T) {
	defer func() { findRooms = nil }()

	fs := pflag.NewFlagSet("find", pflag.ContinueOnError)
	fs.IntSliceVar(&findRooms, "rooms", nil, "")
	if err := fs.Parse([]string{"--rooms", "2"}); err != nil {
		t.Fatal(err)
	}

	raw, err := readPayload("-", strings.NewReader("null"))
	if err != nil {
		t.Fatalf("readPayload failed: %v", err)
	}
	cfg, err := buildConfiguration(raw, fs)
	if err != nil {
		t.Fatalf("buildConfiguration failed: %v", err)
	}
	if rooms := cfg.Rooms(); !reflect.DeepEqual(rooms, []int{2}) {
		t.Errorf("unexpected rooms %v", rooms)
	}

	if _, err := buildConfiguration(nil, fs); err != nil {
		t.Errorf("nil payload should be accepted: %v", err)
	}
}

func TestReadPayload(t *testing.T) {
	raw, err := readPayload("-", strings.NewReader(`{"rooms": [1]}`))
	if err != nil {
		t.Fatalf("readPayload failed: %v", err)
	}
	if _, ok := raw["rooms"]; !ok {
		t.Errorf("expected rooms key, got %v", raw)
	}

	raw, err = readPayload("", nil)
	if err != nil || len(raw) != 0 {
		t.Errorf("expected empty payload, got %v, %v", raw, err)
	}

	raw, err = readPayload("-", strings.NewReader("null"))
	if err != nil || raw == nil {
		t.Fatalf("null payload should decode to an empty map, got %v, %v", raw, err)
	}
	raw["rooms"] = []int{2}

	if _, err := readPayload("-", strings.NewReader("not json")); err == nil {
		t.Error("expected decode error")
	}
	if _, err := readPayload(filepath.Join(t.TempDir(), "none.json"), nil); err == nil {
		t.Error("expected read error")
	}
}

func TestSnapshotURL(t *testing.T) {
	if got, err := snapshotURL("https://example.com/flats"); err != nil || got != "https://example.com/flats" {
		t.Errorf("remote url should pass through, got %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := snapshotURL(path)
	if err != nil {
		t.Fatalf("snapshotURL failed: %v", err)
	}
	if !strings.HasPrefix(got, "file://") {
		t.Errorf("expected file url, got %q", got)
	}

	if _, err := snapshotURL(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Error("expected error for missing snapshot")
	}
}

func TestFindCommand_JSON(t *testing.T) {
	_, sitesFile := writeMirror(t)

	args := append([]string{"find", "mirror"}, staticArgs(sitesFile)...)
	args = append(args, "--rooms", "1", "--price", "30000")
	out, err := execute(t, "", args...)
	if err != nil {
		t.Fatalf("find failed: %v\n%s", err, out)
	}

	var records []models.Apartment
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, out)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Price != nil {
		t.Errorf("expected null price on second record, got %q", *records[1].Price)
	}
	if !strings.Contains(out, `"price": null`) {
		t.Errorf("expected explicit null in output:\n%s", out)
	}
}

func TestFindCommand_CSVMerge(t *testing.T) {
	dir, sitesFile := writeMirror(t)
	target := filepath.Join(dir, "out.csv")

	args := append([]string{"find", "mirror"}, staticArgs(sitesFile)...)
	args = append(args, "-o", target)
	for i := 0; i < 2; i++ {
		if out, err := execute(t, "", args...); err != nil {
			t.Fatalf("run %d failed: %v\n%s", i, err, out)
		}
	}

	f, err := os.Open(target)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := output.ReadCSV(f)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected duplicates to be merged into 2 rows, got %d", len(records))
	}
}

func TestFindCommand_Payload(t *testing.T) {
	_, sitesFile := writeMirror(t)

	args := append([]string{"find", "mirror"}, staticArgs(sitesFile)...)
	args = append(args, "--payload", "-", "--format", "csv", "--columns", "name,price")
	out, err := execute(t, `{"price": [12000, 24000], "rooms": [2, 1]}`, args...)
	if err != nil {
		t.Fatalf("find failed: %v\n%s", err, out)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got:\n%s", out)
	}
	if lines[0] != "name,price" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasSuffix(lines[2], ","+models.Missing) {
		t.Errorf("expected missing price as %s, got %q", models.Missing, lines[2])
	}
}

func TestFindCommand_Errors(t *testing.T) {
	_, sitesFile := writeMirror(t)
	base := append([]string{"find"}, staticArgs(sitesFile)...)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown site", []string{"nowhere"}, "unknown site"},
		{"bad column", []string{"mirror", "--columns", "rent"}, "unknown column"},
		{"bad format", []string{"mirror", "--format", "xml"}, "unknown output format"},
		{"too many prices", []string{"mirror", "-p", "1", "-p", "2", "-p", "3"}, "expected 1 or 2 values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{}, base...), tt.args...)
			_, err := execute(t, "", args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSitesCommand(t *testing.T) {
	_, sitesFile := writeMirror(t)

	out, err := execute(t, "", "sites", "--sites-file", sitesFile, "--locators", "--quiet")
	if err != nil {
		t.Fatalf("sites failed: %v", err)
	}
	for _, want := range []string{"avito", "mirror", "category", "class=title @href", "rooms 0", "rooms 5"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCookiesCommands(t *testing.T) {
	home := t.TempDir()
	run := func(stdin string, args ...string) string {
		t.Helper()
		// execute isolates HOME per call; keep one home for the whole flow
		t.Setenv("HOME", home)
		resetFlags(rootCmd)
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetIn(strings.NewReader(stdin))
		rootCmd.SetArgs(append(args, "--quiet"))
		if err := rootCmd.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, out.String())
		}
		return out.String()
	}
	t.Setenv("CI", "1")
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	}()

	out := run(`[{"name": "sid", "value": "abc", "domain": ".example.com", "path": "/"}]`,
		"cookies", "import", "example", "--url", "https://example.com")
	if !strings.Contains(out, "Session 'example' saved") {
		t.Errorf("unexpected import output:\n%s", out)
	}

	if _, err := os.Stat(filepath.Join(home, ".afind", "sessions", "example.json")); err != nil {
		t.Errorf("expected session file: %v", err)
	}

	out = run("", "cookies", "list")
	if !strings.Contains(out, "example") || !strings.Contains(out, "1 cookies") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	out = run("n\n", "cookies", "delete", "example")
	if !strings.Contains(out, "Cancelled") {
		t.Errorf("expected cancellation, got:\n%s", out)
	}

	run("", "cookies", "delete", "example", "--yes")
	out = run("", "cookies", "list")
	if !strings.Contains(out, "No stored sessions") {
		t.Errorf("expected empty list, got:\n%s", out)
	}
}

func TestHelp(t *testing.T) {
	out, err := execute(t, "", "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, want := range []string{"AFIND", "Commands", "find", "sites", "cookies"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in root help:\n%s", want, out)
		}
	}

	out, err = execute(t, "", "find", "--help")
	if err != nil {
		t.Fatalf("find help failed: %v", err)
	}
	for _, want := range []string{"Examples", "$ afind find --rooms 2 --price 20000,40000", "--payload", "Global Flags", "--driver", "literally", "marks a missing value"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in find help:\n%s", want, out)
		}
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four\n- keep bullet\n\nnext paragraph", 9)
	want := "one two\nthree\nfour\n- keep bullet\n\nnext\nparagraph"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
