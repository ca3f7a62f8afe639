package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/apartsfinder/afind/internal/filter"
	"github.com/apartsfinder/afind/internal/site"
	"github.com/apartsfinder/afind/internal/ui"
	"github.com/apartsfinder/afind/internal/utils/output"
	urlutil "github.com/apartsfinder/afind/internal/utils/url"
	"github.com/apartsfinder/afind/pkg/models"
)

var (
	findPayload  string
	findPrice    []int
	findLocation string
	findRooms    []int
	findOutput   string
	findFormat   string
	findColumns  []string
	findSnapshot string
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find [site]",
	Short: "Search a site for apartments matching a filter",
	Long: `Open a listing site, select the long-term rental category, tick the requested
room counts and fill in the price range, then collect every listing on the results page.

The filter comes from a JSON payload with "price", "location" and "rooms" keys, from flags,
or both; flags override payload keys.

Fields that cannot be read on a listing are written as null (None in tables).
CSV output merges with an existing file and drops duplicate rows. Rows read
back from the file treat the text None as a missing value, so a listing field
that literally reads "None" comes back as null after a merge.`,
	Example: `  # Two-room flats from 20 000 to 40 000
  afind find --rooms 2 --price 20000,40000

  # Studios and one-room flats under 30 000, saved as a table
  afind find -r 0 -r 1 -p 30000 -o default

  # Filter from a payload on stdin
  echo '{"price": [12000, 24000], "rooms": [2, 1]}' | afind find --payload -

  # Only names and links, as markdown
  afind find --rooms 1 --columns name,url -o flats.md

  # Run against a saved page without a browser
  afind find --driver static --snapshot page.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)

	f := findCmd.Flags()
	f.StringVar(&findPayload, "payload", "", "JSON filter file, or - for stdin")
	f.IntSliceVarP(&findPrice, "price", "p", nil, "Price bound(s): one value is an upper bound, two a range")
	f.StringVarP(&findLocation, "location", "l", "", "Location to search in")
	f.IntSliceVarP(&findRooms, "rooms", "r", nil, "Room counts to select (0 is a studio)")
	f.StringVarP(&findOutput, "output", "o", "", "Output file (json, csv, yaml or md by extension; \"default\" is apartments.csv)")
	f.StringVar(&findFormat, "format", string(output.FormatJSON), "Format when writing to stdout: json, csv, yaml, markdown")
	f.StringSliceVar(&findColumns, "columns", nil, "Columns to include in table output (name,url,price,additional_info,address); None marks a missing value")
	f.StringVar(&findSnapshot, "snapshot", "", "Saved page or URL to use instead of the site address")
}

func runFind(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	name := a.Config.Site
	if len(args) == 1 {
		name = args[0]
	}
	s, err := a.Site(name)
	if err != nil {
		return err
	}
	if findSnapshot != "" {
		target, err := snapshotURL(findSnapshot)
		if err != nil {
			return err
		}
		s = site.WithBaseURL(s, target)
	}

	payload, err := readPayload(findPayload, cmd.InOrStdin())
	if err != nil {
		return err
	}
	cfg, err := buildConfiguration(payload, cmd.Flags())
	if err != nil {
		return err
	}

	columns, err := models.ParseColumns(findColumns)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(findFormat)
	if err != nil {
		return err
	}

	runner, err := a.Runner()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.Config.Timeout)
	defer cancel()

	a.Logger.Debug().Str("site", s.Name()).Str("filter", cfg.String()).Msg("Starting search")
	records, err := runner.Run(ctx, s, cfg)
	if err != nil {
		return err
	}

	if err := persist(ctx, cmd, s.Name(), records); err != nil {
		return err
	}

	if findOutput == "" {
		return output.Write(cmd.OutOrStdout(), records, format, columns)
	}

	path := output.ResolvePath(findOutput)
	if err := output.Save(records, path, columns); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), ui.Success(fmt.Sprintf("Saved %d listings to %s", len(records), path)))
	return nil
}

// persist stores records in the configured database, if any
func persist(ctx context.Context, cmd *cobra.Command, siteName string, records []models.Apartment) error {
	a := GetAppFromCmd(cmd)
	store, err := a.Store(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	n, err := store.SaveApartments(ctx, siteName, records)
	if err != nil {
		return err
	}
	a.Logger.Info().Int("rows", n).Msg("Listings stored")
	return nil
}

// readPayload reads the filter payload from a file, or stdin for "-"
func readPayload(source string, stdin io.Reader) (map[string]any, error) {
	if source == "" {
		return map[string]any{}, nil
	}

	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	// a literal null decodes to a nil map
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// buildConfiguration overlays the filter flags that were set on the payload
func buildConfiguration(raw map[string]any, flags *pflag.FlagSet) (filter.Configuration, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	if flags.Changed("price") {
		bounds, err := priceBounds(findPrice)
		if err != nil {
			return filter.Configuration{}, err
		}
		raw["price"] = bounds
	}
	if flags.Changed("location") {
		raw["location"] = findLocation
	}
	if flags.Changed("rooms") {
		raw["rooms"] = uniqueRooms(findRooms)
	}
	return filter.FromMap(raw)
}

// priceBounds turns one or two price values into a [lower, upper) pair.
// A single value v means [0, |v|); two values are ordered by magnitude.
func priceBounds(values []int) ([]int, error) {
	seen := map[int]bool{}
	var unique []int
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}

	switch len(unique) {
	case 1:
		return []int{0, abs(unique[0])}, nil
	case 2:
		lo, hi := abs(unique[0]), abs(unique[1])
		if lo > hi {
			lo, hi = hi, lo
		}
		return []int{lo, hi}, nil
	}
	return nil, fmt.Errorf("price: expected 1 or 2 values, got %d", len(unique))
}

func uniqueRooms(rooms []int) []int {
	seen := map[int]bool{}
	out := []int{}
	for _, r := range rooms {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	sort.Ints(out)
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// snapshotURL accepts a URL or a local file and returns a navigable address
func snapshotURL(target string) (string, error) {
	if urlutil.ValidateURL(target) == nil {
		return target, nil
	}
	path, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("snapshot not found: %w", err)
	}
	return urlutil.FileURL(path), nil
}
